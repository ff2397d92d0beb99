package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/purchase-order-builder/internal/xlsxparser"
)

var templateDir string

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write blank input workbooks",
	Long: `The template command writes two blank workbooks with the sheet names and
column headers the process command expects:

  주문_템플릿.xlsx    통합주문리스트
  마스터_템플릿.xlsx  옵션분리, 마스터

Sheet names and headers follow the input section of the configuration.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(templateDir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", templateDir, err)
		}

		orders, mapping, catalog := appConfig.Input.Schemas()

		orderPath := filepath.Join(templateDir, "주문_템플릿.xlsx")
		if err := xlsxparser.WriteTemplate(orderPath, orders); err != nil {
			return err
		}
		masterPath := filepath.Join(templateDir, "마스터_템플릿.xlsx")
		if err := xlsxparser.WriteTemplate(masterPath, mapping, catalog); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nWrote %s\n", orderPath, masterPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.Flags().StringVar(&templateDir, "dir", ".", "Directory to write the templates to")
}
