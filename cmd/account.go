package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/tusdatos/filter"
	"github.com/s0up4200/tusdatos/tusdatos"
)

var (
	filterExpr string
	preset     string
)

// plansCmd represents the plans command
var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Show the status of the account's plan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := client.PlanStatus(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, status)
	},
}

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the queries performed by the account",
	Long: `List the queries performed by the account, optionally narrowed by a filter.

Filters are expr expressions over the fields of each entry, for example:

  estado == "finalizado" and hallazgo == true
  typedoc in ["CC", "CE"] and containsFold(nombre, "perez")
  has("webhook")

Named filters can be defined under "filters" in the config file and selected
with --preset.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	historyCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	historyCmd.MarkFlagsMutuallyExclusive("filter", "preset")

	rootCmd.AddCommand(plansCmd, historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	f, err := getFilter()
	if err != nil {
		return err
	}

	history, err := client.QueryHistory(cmd.Context())
	if err != nil {
		return err
	}

	matched := filter.Apply(f, history)
	if f != nil {
		logger.Debug().
			Str("filter", f.Expression()).
			Int("total", len(history)).
			Int("matched", len(matched)).
			Msg("History filtered")
	}

	if matched == nil {
		matched = tusdatos.History{}
	}
	return printJSON(cmd, matched)
}

// getFilter determines the filter to use. Without --filter or --preset it
// returns nil, which matches every entry.
func getFilter() (filter.CompiledFilter, error) {
	if filterExpr != "" {
		f, err := filters.Compile(filterExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		return f, nil
	}

	if preset != "" {
		f, err := filters.Filter(preset)
		if err != nil {
			return nil, fmt.Errorf("preset '%s' not found in config", preset)
		}
		return f, nil
	}

	return nil, nil
}
