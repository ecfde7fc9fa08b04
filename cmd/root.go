package cmd

import (
	"github.com/sbomtools/bomsync/common"
	"github.com/sbomtools/bomsync/config"
	"github.com/sbomtools/bomsync/pretty"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bomsync",
	Short: "bomsync is a tool to synchronize SBOM documents into a software catalog.",
	Long: `bomsync uploads CycloneDX SBOM documents into a Dependency-Track style
catalog service, creating and updating the matching projects on the way.
Settings come from INPUT_* environment variables (or a local .env file),
so it drops directly into CI pipelines.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		pretty.Setup()
	},
	SilenceUsage: true,
}

// Execute is the CLI entry. Errors end the process through the panic
// protection in main.
func Execute() {
	defer common.WaitLogs()
	err := rootCmd.Execute()
	pretty.Guard(err == nil, 1, "Error: %v", err)
}

// runSettings reads the environment and folds in the global flags.
func runSettings() *config.Settings {
	settings := config.Load()
	if common.DryRun {
		settings.DryRun = true
	}
	return settings
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&common.DebugEnabled, "debug", "d", false, "to get debug output where available (not for production use)")
	rootCmd.PersistentFlags().BoolVarP(&common.TraceEnabled, "trace", "T", false, "to get trace output where available (not for production use)")
	rootCmd.PersistentFlags().BoolVar(&common.SilentEnabled, "silent", false, "be less verbose on output")
	rootCmd.PersistentFlags().BoolVar(&common.DryRun, "dry-run", false, "plan everything, but touch nothing remote")
	rootCmd.PersistentFlags().BoolVar(&pretty.Colorless, "colorless", false, "do not use colors on CLI UI")
	rootCmd.PersistentFlags().BoolVar(&common.LogLinenumbers, "numbers", false, "put line numbers on log output (not for production use)")
}
