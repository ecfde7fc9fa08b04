package cmd

import (
	"github.com/sbomtools/bomsync/operations"
	"github.com/sbomtools/bomsync/pretty"

	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:     "configuration",
	Aliases: []string{"configure", "config"},
	Short:   "Group of commands related to run settings.",
}

var configureShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings with the credential masked.",
	Run: func(cmd *cobra.Command, args []string) {
		runSettings().Dump()
		pretty.Ok()
	},
}

var configureTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Verify connectivity and the API key against the catalog.",
	Run: func(cmd *cobra.Command, args []string) {
		settings := runSettings()
		services, err := operations.NewServices(settings)
		pretty.Guard(err == nil, 2, "%v", err)
		err = services.TestConnection()
		pretty.Guard(err == nil, 3, "Connection test failed: %v", err)
		pretty.Ok()
	},
}

func init() {
	rootCmd.AddCommand(configureCmd)
	configureCmd.AddCommand(configureShowCmd)
	configureCmd.AddCommand(configureTestCmd)
}
