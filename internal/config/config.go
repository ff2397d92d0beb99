// =============================================================================
// Purchase Order Builder - Configuration Module
// =============================================================================
//
// This module loads the application configuration with viper.
//
// SOURCES (later wins):
//   1. Built-in defaults (setDefaults)
//   2. config.yaml (current directory or ./etc, or the --config path)
//   3. Environment variables prefixed with POSPLIT_, dots replaced by
//      underscores (e.g. POSPLIT_SERVER_ADDR, POSPLIT_PROCESSING_DUPLICATE_POLICY)
//
// A missing configuration file is not an error; defaults and environment
// variables are used instead. A file that exists but cannot be parsed is.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ginjaninja78/purchase-order-builder/internal/csvparser"
	"github.com/ginjaninja78/purchase-order-builder/internal/logger"
	"github.com/ginjaninja78/purchase-order-builder/internal/processor"
	"github.com/ginjaninja78/purchase-order-builder/internal/types"
	"github.com/ginjaninja78/purchase-order-builder/internal/xlsxparser"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "POSPLIT"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	Input      InputConfig      `mapstructure:"input" yaml:"input"`
	Processing ProcessingConfig `mapstructure:"processing" yaml:"processing"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`

	// ConfigFile is the file the values were read from, empty when none.
	ConfigFile string `mapstructure:"-" yaml:"-"`
}

// =========================================================================
// INPUT SETTINGS
// =========================================================================

// SheetConfig overrides the layout of one input sheet.
type SheetConfig struct {
	// Sheet is the preferred sheet name.
	Sheet string `mapstructure:"sheet" yaml:"sheet"`

	// HeaderRow is the 1-based header row.
	HeaderRow int `mapstructure:"header_row" yaml:"header_row"`

	// Columns maps logical field names (e.g. "quantity", "list_price") to
	// the column headers used in the workbook.
	Columns map[string]string `mapstructure:"columns" yaml:"columns"`
}

// Apply returns schema with the overrides applied.
func (c SheetConfig) Apply(schema xlsxparser.Schema) xlsxparser.Schema {
	return schema.WithSheet(c.Sheet, c.HeaderRow).WithHeaders(c.Columns)
}

// CSVConfig controls order exports delivered as CSV.
type CSVConfig struct {
	// Delimiter is ",", "tab", "|" or ";".
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`

	// Encoding is UTF-8 or CP949.
	Encoding string `mapstructure:"encoding" yaml:"encoding"`
}

// Settings converts the values into reader settings.
func (c CSVConfig) Settings() csvparser.Settings {
	return csvparser.Settings{Delimiter: c.Delimiter, Encoding: c.Encoding}
}

// InputConfig describes the input workbooks.
type InputConfig struct {
	// Dir is scanned for order files by batch runs.
	Dir string `mapstructure:"dir" yaml:"dir"`

	// ArchiveDir receives processed order files. Empty disables archival.
	ArchiveDir string `mapstructure:"archive_dir" yaml:"archive_dir"`

	Orders        SheetConfig `mapstructure:"orders" yaml:"orders"`
	OptionMapping SheetConfig `mapstructure:"option_mapping" yaml:"option_mapping"`
	Catalog       SheetConfig `mapstructure:"catalog" yaml:"catalog"`
	CSV           CSVConfig   `mapstructure:"csv" yaml:"csv"`
}

// Schemas returns the order, option mapping and catalog schemas.
func (c InputConfig) Schemas() (orders, mapping, catalog xlsxparser.Schema) {
	return c.Orders.Apply(xlsxparser.OrderSchema()),
		c.OptionMapping.Apply(xlsxparser.OptionMappingSchema()),
		c.Catalog.Apply(xlsxparser.CatalogSchema())
}

// =========================================================================
// PROCESSING SETTINGS
// =========================================================================

// ProcessingConfig controls the order pipeline.
type ProcessingConfig struct {
	// GroupTagPrefixes mark "expand into N parts" tags.
	GroupTagPrefixes []string `mapstructure:"group_tag_prefixes" yaml:"group_tag_prefixes"`

	// DuplicatePolicy is one of first, last or reject.
	DuplicatePolicy string `mapstructure:"duplicate_policy" yaml:"duplicate_policy"`

	CouponMarker  string `mapstructure:"coupon_marker" yaml:"coupon_marker"`
	DefaultOption string `mapstructure:"default_option" yaml:"default_option"`
}

// Options converts the settings into processor options.
func (c ProcessingConfig) Options(log *zap.Logger) (processor.Options, error) {
	policy, err := processor.ParseDuplicatePolicy(c.DuplicatePolicy)
	if err != nil {
		return processor.Options{}, err
	}
	return processor.Options{
		GroupTagPrefixes: c.GroupTagPrefixes,
		DuplicatePolicy:  policy,
		CouponMarker:     c.CouponMarker,
		DefaultOption:    c.DefaultOption,
		Logger:           log,
	}, nil
}

// =========================================================================
// OUTPUT SETTINGS
// =========================================================================

// OutputConfig controls the generated files.
type OutputConfig struct {
	// Dir receives CLI output when no explicit path is given.
	Dir string `mapstructure:"dir" yaml:"dir"`

	// FileNameFormat names generated CSV files.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	FileNameFormat string `mapstructure:"file_name_format" yaml:"file_name_format"`

	// BOM prefixes the CSV with a UTF-8 byte order mark so spreadsheet
	// applications detect the encoding.
	BOM bool `mapstructure:"bom" yaml:"bom"`

	// Report writes a YAML run report next to every CSV.
	Report bool `mapstructure:"report" yaml:"report"`
}

// =========================================================================
// SERVER SETTINGS
// =========================================================================

// ServerConfig controls the upload service.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`

	// Mode is the gin mode: debug, release or test.
	Mode string `mapstructure:"mode" yaml:"mode"`

	// MaxUploadMB limits the multipart body size.
	MaxUploadMB int64 `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`

	// WorkspaceDir holds one directory per request plus the results
	// offered for download.
	WorkspaceDir string `mapstructure:"workspace_dir" yaml:"workspace_dir"`

	// Retention is how long result files are kept.
	Retention time.Duration `mapstructure:"retention" yaml:"retention"`
}

// =========================================================================
// LOGGING SETTINGS
// =========================================================================

// LogConfig controls logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`

	// Format is console (human readable, stdout) or json (rotated file).
	Format string `mapstructure:"format" yaml:"format"`

	Dir        string `mapstructure:"dir" yaml:"dir"`
	Filename   string `mapstructure:"filename" yaml:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// ToLoggerOptions converts the settings into logger options.
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Level,
		Format:     c.Format,
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration. An empty path searches for config.yaml in
// the current directory and ./etc.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./etc")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFile := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFile = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ConfigFile = configFile

	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	applyDefaults(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input.dir", "./input")
	v.SetDefault("input.archive_dir", "")
	v.SetDefault("input.csv.delimiter", ",")
	v.SetDefault("input.csv.encoding", "UTF-8")
	v.SetDefault("input.orders.sheet", types.SheetOrders)
	v.SetDefault("input.orders.header_row", 1)
	v.SetDefault("input.option_mapping.sheet", types.SheetOptionMapping)
	v.SetDefault("input.option_mapping.header_row", 2)
	v.SetDefault("input.catalog.sheet", types.SheetCatalog)
	v.SetDefault("input.catalog.header_row", 2)

	defaults := processor.DefaultOptions()
	v.SetDefault("processing.group_tag_prefixes", defaults.GroupTagPrefixes)
	v.SetDefault("processing.duplicate_policy", string(defaults.DuplicatePolicy))
	v.SetDefault("processing.coupon_marker", defaults.CouponMarker)
	v.SetDefault("processing.default_option", defaults.DefaultOption)

	v.SetDefault("output.dir", "./output")
	v.SetDefault("output.file_name_format", "결과물_{uuid}.csv")
	v.SetDefault("output.bom", true)
	v.SetDefault("output.report", false)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("server.workspace_dir", "./workspace")
	v.SetDefault("server.retention", "24h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "posplit.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
}

// applyDefaults fills values an explicit empty setting would leave unusable.
func applyDefaults(cfg *Config) {
	if len(cfg.Processing.GroupTagPrefixes) == 0 {
		cfg.Processing.GroupTagPrefixes = processor.DefaultOptions().GroupTagPrefixes
	}
	if cfg.Processing.DefaultOption == "" {
		cfg.Processing.DefaultOption = types.DefaultOptionText
	}
	if cfg.Output.FileNameFormat == "" {
		cfg.Output.FileNameFormat = "결과물_{uuid}.csv"
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "./output"
	}
	if cfg.Server.WorkspaceDir == "" {
		cfg.Server.WorkspaceDir = "./workspace"
	}
	if cfg.Input.Dir == "" {
		cfg.Input.Dir = "./input"
	}
	if cfg.Server.Retention <= 0 {
		cfg.Server.Retention = 24 * time.Hour
	}
	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = 32
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// validateConfig rejects settings the pipeline cannot run with.
func validateConfig(cfg *Config) error {
	if _, err := processor.ParseDuplicatePolicy(cfg.Processing.DuplicatePolicy); err != nil {
		return err
	}

	for name, sheet := range map[string]SheetConfig{
		"input.orders":         cfg.Input.Orders,
		"input.option_mapping": cfg.Input.OptionMapping,
		"input.catalog":        cfg.Input.Catalog,
	} {
		if sheet.HeaderRow < 1 {
			return fmt.Errorf("%s.header_row must be at least 1, got %d", name, sheet.HeaderRow)
		}
	}

	if err := cfg.Input.CSV.Settings().Validate(); err != nil {
		return fmt.Errorf("input.csv: %w", err)
	}

	if !strings.Contains(cfg.Output.FileNameFormat, "{uuid}") &&
		!strings.Contains(cfg.Output.FileNameFormat, "{timestamp}") {
		return fmt.Errorf("output.file_name_format must contain {uuid} or {timestamp}")
	}

	switch cfg.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", cfg.Server.Mode)
	}

	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", cfg.Log.Format)
	}

	return nil
}
