package cli

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var variantCmd = &cobra.Command{
	Use:   "variant <experiment-id>",
	Short: "Show the variant assigned to this device",
	Long: `Resolve the variant for this device's identity. The first call assigns
and persists the variant; later calls return the stored assignment.

Examples:
  abtrack variant hero-cta-test`,
	Args: cobra.ExactArgs(1),
	RunE: runVariant,
}

var configCmd = &cobra.Command{
	Use:   "config <experiment-id>",
	Short: "Print the assigned variant's configuration as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfig,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show this device's identity and stored assignments",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(variantCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func runVariant(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	id := args[0]
	if _, ok := app.Registry.Get(id); !ok {
		return fmt.Errorf("experiment %q not found", id)
	}

	out := cmd.OutOrStdout()
	v := app.Manager(ctx).GetVariant(ctx, id)
	if v == nil {
		fmt.Fprintf(out, "Not enrolled in %s\n", id)
		return nil
	}

	fmt.Fprintf(out, "%s\t%s\n", v.ID, v.Name)
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	cfg := app.Manager(ctx).GetConfig(ctx, args[0])
	data, err := toJSON(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), data)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	m := app.Manager(ctx)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "User ID: %s\n", m.UserID())
	fmt.Fprintf(out, "Namespace: %s\n", app.Config.Namespace)

	assignments := m.Assignments()
	if len(assignments) == 0 {
		fmt.Fprintln(out, "No assignments yet")
		return nil
	}

	ids := make([]string, 0, len(assignments))
	for id := range assignments {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EXPERIMENT\tVARIANT")
	for _, id := range ids {
		fmt.Fprintf(w, "%s\t%s\n", id, assignments[id])
	}
	return w.Flush()
}
