package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "abtrack",
	Short: "Deterministic A/B test assignment and event tracking",
	Long: `abtrack assigns identities to experiment variants deterministically,
remembers the assignment, and records conversion events per variant.

The same binary runs the ingest server that collects events from devices
and forwards them to analytics vendors.`,
	SilenceUsage: true,
}

var (
	registryPath string
	namespace    string
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&registryPath, "registry", "", "Experiment registry YAML file (defaults to the built-in experiments)")
	rootCmd.PersistentFlags().StringVar(&namespace, "namespace", "", "Key/value namespace holding this device's identity")
}
