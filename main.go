// =============================================================================
// Purchase Order Builder - Main Entry Point
// =============================================================================
//
// USAGE:
//   posplit process   - Expand order files into purchase-order CSV files
//   posplit serve     - Run the upload service
//   posplit template  - Write blank input workbooks
//   posplit version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core business logic (not for external import)
//   - pkg/           : Shared utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/purchase-order-builder/cmd"
)

func main() {
	cmd.Execute()
}
