package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/tusdatos/tracker"
	"github.com/s0up4200/tusdatos/tusdatos"
)

var (
	maxWait   time.Duration
	batchWait bool
)

// waitCmd represents the wait command
var waitCmd = &cobra.Command{
	Use:   "wait <job-id>",
	Short: "Poll a background check until it has finished",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withMaxWait(cmd.Context())
		defer cancel()

		result, err := jobs.Wait(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	},
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <job-id>...",
	Short: "Get the results of several background checks concurrently",
	Long: `Get the results of several background checks concurrently.

Failures are reported per job and do not stop the batch. The command fails
only when every job failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	waitCmd.Flags().DurationVar(&maxWait, "max-wait", 0, "give up after this long (0 waits indefinitely)")

	batchCmd.Flags().BoolVarP(&batchWait, "wait", "w", false, "wait for every job to finish")
	batchCmd.Flags().DurationVar(&maxWait, "max-wait", 0, "give up after this long (0 waits indefinitely)")

	rootCmd.AddCommand(waitCmd, batchCmd)
}

func withMaxWait(ctx context.Context) (context.Context, context.CancelFunc) {
	if maxWait > 0 {
		return context.WithTimeout(ctx, maxWait)
	}
	return context.WithCancel(ctx)
}

type batchOutput struct {
	Requested int                            `json:"requested"`
	Finished  []string                       `json:"finished"`
	Results   map[string]*tusdatos.JobResult `json:"results"`
	Failed    map[string]string              `json:"failed,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := withMaxWait(cmd.Context())
	defer cancel()

	var result tracker.BatchResult
	if batchWait {
		result = jobs.WaitAll(ctx, args)
	} else {
		result = jobs.FetchAll(ctx, args)
	}

	out := batchOutput{
		Requested: result.Requested,
		Finished:  result.Finished(),
		Results:   result.Results,
	}
	if len(result.Failed) > 0 {
		out.Failed = make(map[string]string, len(result.Failed))
		for _, f := range result.Failed {
			out.Failed[f.ID] = f.Err.Error()
		}
	}

	if err := printJSON(cmd, out); err != nil {
		return err
	}

	if len(result.Failed) == result.Requested {
		return fmt.Errorf("all %d jobs failed", result.Requested)
	}
	return nil
}
