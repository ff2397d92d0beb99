package processor

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// DuplicatePolicy decides which row wins when a reference table carries the
// same key more than once.
type DuplicatePolicy string

const (
	// PolicyFirst keeps the first occurrence in table order.
	PolicyFirst DuplicatePolicy = "first"

	// PolicyLast keeps the last occurrence in table order.
	PolicyLast DuplicatePolicy = "last"

	// PolicyReject fails the run when an order line hits a duplicated key.
	PolicyReject DuplicatePolicy = "reject"
)

// ParseDuplicatePolicy converts a configuration value into a policy.
func ParseDuplicatePolicy(value string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyFirst:
		return PolicyFirst, nil
	case PolicyLast:
		return PolicyLast, nil
	case PolicyReject:
		return PolicyReject, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q (want first, last or reject)", value)
	}
}

// pick returns the index of the winning candidate.
func (p DuplicatePolicy) pick(candidates []int) int {
	if p == PolicyLast {
		return candidates[len(candidates)-1]
	}
	return candidates[0]
}

// Options controls the processing pipeline.
type Options struct {
	// GroupTagPrefixes are the prefixes that mark an "expand into N parts"
	// tag. The first prefix is the canonical one.
	GroupTagPrefixes []string

	// DuplicatePolicy applies to header rows, anchor rows and catalog keys.
	DuplicatePolicy DuplicatePolicy

	// CouponMarker is stripped from product names before key derivation.
	CouponMarker string

	// DefaultOption replaces blank option text.
	DefaultOption string

	// Logger receives recoverable warnings. Nil disables logging.
	Logger *zap.Logger
}

// DefaultOptions returns the options matching the source workbooks.
func DefaultOptions() Options {
	return Options{
		GroupTagPrefixes: []string{"OptionGroup", "옵션구분"},
		DuplicatePolicy:  PolicyFirst,
		CouponMarker:     "[쿠폰]",
		DefaultOption:    "NO",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if len(o.GroupTagPrefixes) == 0 {
		o.GroupTagPrefixes = d.GroupTagPrefixes
	}
	if o.DuplicatePolicy == "" {
		o.DuplicatePolicy = d.DuplicatePolicy
	}
	if o.DefaultOption == "" {
		o.DefaultOption = d.DefaultOption
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// ParseGroupTag extracts N from a tag of the form <prefix><N>. It reports
// false unless the whole tag is one of the prefixes followed only by digits.
func ParseGroupTag(tag string, prefixes []string) (int, bool) {
	tag = strings.TrimSpace(tag)
	for _, prefix := range prefixes {
		if prefix == "" || !strings.HasPrefix(tag, prefix) {
			continue
		}

		rest := tag[len(prefix):]
		end := 0
		for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
			end++
		}
		if end == 0 || end != len(rest) {
			continue
		}

		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}
