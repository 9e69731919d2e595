package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/tusdatos/tusdatos"
)

var (
	launchDoc       string
	launchDocType   string
	launchIssueDate string
	launchForce     bool
	launchWebhook   string
	launchWait      bool

	retryDocType string

	vehicleDoc     string
	vehicleDocType string
	vehiclePlate   string
)

// launchCmd represents the launch command
var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch a background check for a person",
	Long: `Launch a background check for a person by document number.

The API answers with a job id to poll with "results" or "wait". Use --wait to
poll until the job has finished and print its result instead.`,
	Example: `  tusdatos launch --doc 111 --typedoc CC --issue-date 01/12/2014
  tusdatos launch --doc 111 --wait`,
	Args: cobra.NoArgs,
	RunE: runLaunch,
}

// resultsCmd represents the results command
var resultsCmd = &cobra.Command{
	Use:   "results <job-id>",
	Short: "Get the status and result of a background check",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := client.Results(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

// retryCmd represents the retry command
var retryCmd = &cobra.Command{
	Use:   "retry <job-id>",
	Short: "Retry the sources that failed in a background check",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := client.Retry(cmd.Context(), tusdatos.RetryRequest{
			ID:      args[0],
			DocType: retryDocType,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

// vehicleCmd represents the vehicle command
var vehicleCmd = &cobra.Command{
	Use:     "vehicle",
	Short:   "Launch a background check for a vehicle and its owner",
	Example: `  tusdatos vehicle --doc 111 --typedoc CC --plate ABC123`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client.VehicleQuery(cmd.Context(), tusdatos.VehicleQueryRequest{
			OwnerDocument: tusdatos.Document(vehicleDoc),
			DocType:       vehicleDocType,
			Plate:         vehiclePlate,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, resp)
	},
}

func init() {
	launchCmd.Flags().StringVar(&launchDoc, "doc", "", "document number")
	launchCmd.Flags().StringVar(&launchDocType, "typedoc", tusdatos.DocTypeCC, "document type: CC, CE, NIT, PP or PPT")
	launchCmd.Flags().StringVar(&launchIssueDate, "issue-date", "", "document issue date (dd/mm/yyyy)")
	launchCmd.Flags().BoolVar(&launchForce, "force", true, "bypass the API's cache of recent results")
	launchCmd.Flags().StringVar(&launchWebhook, "webhook", "", "URL notified when the job finishes (production only)")
	launchCmd.Flags().BoolVarP(&launchWait, "wait", "w", false, "wait for the job to finish and print its result")
	_ = launchCmd.MarkFlagRequired("doc")

	retryCmd.Flags().StringVar(&retryDocType, "typedoc", tusdatos.DocTypeCC, "document type of the original query")

	vehicleCmd.Flags().StringVar(&vehicleDoc, "doc", "", "owner document number")
	vehicleCmd.Flags().StringVar(&vehicleDocType, "typedoc", tusdatos.DocTypeCC, "owner document type")
	vehicleCmd.Flags().StringVar(&vehiclePlate, "plate", "", "license plate")
	_ = vehicleCmd.MarkFlagRequired("doc")
	_ = vehicleCmd.MarkFlagRequired("plate")

	rootCmd.AddCommand(launchCmd, resultsCmd, retryCmd, vehicleCmd)
}

func runLaunch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	resp, err := client.StartQuery(ctx, tusdatos.StartQueryRequest{
		Document:  tusdatos.Document(launchDoc),
		DocType:   launchDocType,
		IssueDate: launchIssueDate,
		Force:     launchForce,
		Webhook:   launchWebhook,
	})
	if err != nil {
		return err
	}

	logger.Info().
		Str("job_id", resp.JobRef()).
		Str("doc", resp.Document.String()).
		Msg("Background check launched")

	if !launchWait {
		return printJSON(cmd, resp)
	}

	if resp.JobRef() == "" {
		return fmt.Errorf("launch response carries no job id")
	}

	result, err := jobs.Wait(ctx, resp.JobRef())
	if err != nil {
		return err
	}
	return printJSON(cmd, result)
}
