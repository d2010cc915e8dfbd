package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abtrack/internal/util"
)

var trackCmd = &cobra.Command{
	Use:   "track <experiment-id> <event> [value]",
	Short: "Record an event for this device's variant",
	Long: `Record an event against the variant this device is assigned to. The event
is appended to the local history and sent to every configured sink.
Nothing is recorded when the device is not enrolled.

Examples:
  abtrack track hero-cta-test cta_click
  abtrack track pricing-display-test purchase 49.90`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runTrack,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the locally retained events",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of most recent events to show (0 for all)")
}

func runTrack(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	id, event := args[0], args[1]

	var value *float64
	if len(args) == 3 {
		v, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[2], err)
		}
		value = &v
	}

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if _, ok := app.Registry.Get(id); !ok {
		return fmt.Errorf("experiment %q not found", id)
	}

	m := app.Manager(ctx)
	out := cmd.OutOrStdout()

	v := m.GetVariant(ctx, id)
	if v == nil {
		fmt.Fprintf(out, "Not enrolled in %s, event not recorded\n", id)
		return nil
	}

	if value != nil {
		m.TrackValue(ctx, id, event, *value)
	} else {
		m.Track(ctx, id, event)
	}

	fmt.Fprintf(out, "Tracked %s for %s (%s)\n", event, id, v.ID)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	history := app.Manager(ctx).History(ctx)
	out := cmd.OutOrStdout()
	if len(history) == 0 {
		fmt.Fprintln(out, "No events recorded")
		return nil
	}
	if historyLimit > 0 && len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tEXPERIMENT\tVARIANT\tEVENT\tVALUE")
	for _, ev := range history {
		value := "-"
		if ev.Value != nil {
			value = util.FormatFloat(*ev.Value)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			ev.Timestamp.Local().Format(time.DateTime), ev.TestID, ev.VariantID, ev.Event, value)
	}
	return w.Flush()
}
