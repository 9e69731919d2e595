package cmd

import (
	"github.com/spf13/cobra"

	"github.com/s0up4200/tusdatos/tusdatos"
)

var (
	verifyDoc       string
	verifyDocType   string
	verifyIssueDate string

	verifyNIT string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:     "verify",
	Short:   "Verify a person's identity against the civil registry",
	Example: `  tusdatos verify --doc 111 --typedoc CC --issue-date 01/12/2014`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client.LaunchVerify(cmd.Context(), tusdatos.VerifyRequest{
			Document:  tusdatos.Document(verifyDoc),
			DocType:   verifyDocType,
			IssueDate: verifyIssueDate,
		})
		if err != nil {
			return err
		}
		if !resp.OK() {
			logger.Warn().Str("doc", verifyDoc).Msg("Identity could not be verified")
		}
		return printJSON(cmd, resp)
	},
}

// verifyNITCmd represents the verify-nit command
var verifyNITCmd = &cobra.Command{
	Use:     "verify-nit",
	Short:   "Verify a company by its NIT",
	Example: `  tusdatos verify-nit --nit 901235691`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client.LaunchVerifyNIT(cmd.Context(), tusdatos.VerifyNITRequest{
			NIT: tusdatos.Document(verifyNIT),
		})
		if err != nil {
			return err
		}
		if !resp.OK() {
			logger.Warn().Str("nit", verifyNIT).Msg("Company could not be verified")
		}
		return printJSON(cmd, resp)
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyDoc, "doc", "", "document number")
	verifyCmd.Flags().StringVar(&verifyDocType, "typedoc", tusdatos.DocTypeCC, "document type")
	verifyCmd.Flags().StringVar(&verifyIssueDate, "issue-date", "", "document issue date (dd/mm/yyyy)")
	_ = verifyCmd.MarkFlagRequired("doc")
	_ = verifyCmd.MarkFlagRequired("issue-date")

	verifyNITCmd.Flags().StringVar(&verifyNIT, "nit", "", "company NIT")
	_ = verifyNITCmd.MarkFlagRequired("nit")

	rootCmd.AddCommand(verifyCmd, verifyNITCmd)
}
