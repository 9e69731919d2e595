package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	reportFormat string
	reportOutput string
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report <job-id>",
	Short: "Download the report of a finished background check",
	Long: `Download the report of a finished background check.

HTML and PDF reports are written exactly as sent by the API. JSON reports are
printed as indented JSON.`,
	Example: `  tusdatos report 6460fc34-4154-43db-9438-8c5a059304c0 --format pdf --output report.pdf`,
	Args:    cobra.ExactArgs(1),
	RunE:    runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "json", "report format: html, pdf or json")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "write the report to a file instead of stdout")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := args[0]

	switch strings.ToLower(reportFormat) {
	case "html":
		html, err := client.Report(ctx, id)
		if err != nil {
			return err
		}
		return writeOutput(cmd, reportOutput, []byte(html))

	case "pdf":
		pdf, err := client.ReportPDF(ctx, id)
		if err != nil {
			return err
		}
		return writeOutput(cmd, reportOutput, pdf)

	case "json":
		report, err := client.ReportJSON(ctx, id)
		if err != nil {
			return err
		}
		if reportOutput == "" {
			return printJSON(cmd, report)
		}
		var buf strings.Builder
		if err := writeJSON(&buf, report); err != nil {
			return err
		}
		return writeOutput(cmd, reportOutput, []byte(buf.String()))

	default:
		return fmt.Errorf("invalid report format: %s (must be html, pdf or json)", reportFormat)
	}
}
