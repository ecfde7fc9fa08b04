package cmd

import (
	"github.com/sbomtools/bomsync/journal"
	"github.com/sbomtools/bomsync/operations"
	"github.com/sbomtools/bomsync/pretty"

	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Group of commands related to catalog projects.",
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <name> <version>",
	Short: "Delete one project from the catalog.",
	Long: `Delete one project from the catalog. A project that does not
exist counts as already deleted.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		services, err := operations.NewServices(runSettings())
		pretty.Guard(err == nil, 2, "%v", err)
		err = services.Projects.Delete(args[0], args[1])
		pretty.Guard(err == nil, 3, "Deleting %s@%s failed: %v", args[0], args[1], err)
		journal.Post("project-delete", args[0]+"@"+args[1], "requested from CLI")
		pretty.Ok()
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}
