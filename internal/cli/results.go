package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/abtrack/internal/domain"
	"github.com/emiliopalmerini/abtrack/internal/util"
)

var resultsCmd = &cobra.Command{
	Use:   "results <experiment-id>",
	Short: "Show per-variant results from the ingest database",
	Long: `Aggregate the events received by the ingest server for an experiment.

Examples:
  abtrack results hero-cta-test`,
	Args: cobra.ExactArgs(1),
	RunE: runResults,
}

func init() {
	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	id := args[0]

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.DB.Sync(); err != nil {
		app.Logger.Warn("failed to sync replica", zap.Error(err))
	}

	events, err := app.Events.ListByExperiment(ctx, id, 0)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Experiment: %s\n", id)
	fmt.Fprintf(out, "Total events: %s\n", util.FormatNumber(int64(len(events))))
	if len(events) == 0 {
		return nil
	}
	fmt.Fprintln(out)

	stats := domain.ComputeVariantStats(events)
	total := int64(len(events))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VARIANT\tEVENTS\tSHARE\tUSERS\tTOTAL VALUE\tAVG VALUE\tEVENT TYPES")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\t%s\t%s\n",
			s.VariantID,
			s.TotalEvents,
			util.FormatPercent(s.TotalEvents, total),
			s.UniqueUsers,
			util.FormatFloat(s.TotalValue),
			util.FormatFloat(s.AvgValue),
			formatEventTypes(s.EventTypes),
		)
	}
	return w.Flush()
}

func formatEventTypes(types map[string]int64) string {
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, types[name])
	}
	return strings.Join(parts, " ")
}
