package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Inspect registered experiments",
	Long:  `List and inspect the experiments in the registry. Experiments are defined in the registry file and are read-only here.`,
}

var experimentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all experiments",
	RunE:  runExperimentList,
}

var experimentShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an experiment and its variants",
	Long: `Show an experiment, its variants and their configuration.

Examples:
  abtrack experiment show hero-cta-test`,
	Args: cobra.ExactArgs(1),
	RunE: runExperimentShow,
}

func init() {
	rootCmd.AddCommand(experimentCmd)

	experimentCmd.AddCommand(experimentListCmd)
	experimentCmd.AddCommand(experimentShowCmd)
}

func runExperimentList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	exps := app.Registry.List()
	out := cmd.OutOrStdout()
	if len(exps) == 0 {
		fmt.Fprintln(out, "No experiments found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tTRAFFIC\tVARIANTS\tEVENTS")
	for _, e := range exps {
		ids := make([]string, len(e.Variants))
		for i, v := range e.Variants {
			ids[i] = fmt.Sprintf("%s(%d)", v.ID, v.Weight)
		}

		count, err := app.Events.CountByExperiment(ctx, e.ID)
		if err != nil {
			return fmt.Errorf("failed to count events: %w", err)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%s\t%d\n",
			e.ID, e.Name, e.Status, e.TrafficPercent, strings.Join(ids, ", "), count)
	}
	return w.Flush()
}

func runExperimentShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	exp, ok := app.Registry.Get(args[0])
	if !ok {
		return fmt.Errorf("experiment %q not found", args[0])
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Experiment: %s (%s)\n", exp.Name, exp.ID)
	if exp.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", exp.Description)
	}
	fmt.Fprintf(out, "Status: %s\n", exp.Status)
	fmt.Fprintf(out, "Traffic: %d%%\n", exp.TrafficPercent)
	if exp.Goal != "" {
		fmt.Fprintf(out, "Goal: %s\n", exp.Goal)
	}
	if exp.TargetMetric != "" {
		fmt.Fprintf(out, "Target metric: %s\n", exp.TargetMetric)
	}
	if total := exp.WeightTotal(); total != 100 {
		fmt.Fprintf(out, "Warning: variant weights sum to %d\n", total)
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VARIANT\tNAME\tWEIGHT\tCONFIG")
	for _, v := range exp.Variants {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", v.ID, v.Name, v.Weight, formatConfig(v.Config))
	}
	return w.Flush()
}
