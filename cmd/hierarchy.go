package cmd

import (
	"github.com/sbomtools/bomsync/common"
	"github.com/sbomtools/bomsync/hierarchy"
	"github.com/sbomtools/bomsync/journal"
	"github.com/sbomtools/bomsync/operations"
	"github.com/sbomtools/bomsync/pretty"

	"github.com/spf13/cobra"
)

var (
	treeOutputFlag   string
	treeDocumentFlag string
	absolutePaths    bool
)

var hierarchyCmd = &cobra.Command{
	Use:     "hierarchy",
	Aliases: []string{"tree"},
	Short:   "Group of commands related to project tree handling.",
}

var hierarchyBuildCmd = &cobra.Command{
	Use:   "build <directory>",
	Short: "Scan a directory of SBOM files into a tree document.",
	Long: `Scan a directory of SBOM files into a tree document.

Filenames matching <name>_<version>_sbom.json become leaf projects and
<name>_<version>_merged_sbom.json files mark collection groupings. The
resulting document can be edited and fed to "hierarchy upload" later.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if common.DebugFlag() {
			defer common.Stopwatch("Tree build lasted").Report()
		}
		document, err := hierarchy.NewBuilder(args[0], absolutePaths).Build()
		pretty.Guard(err == nil, 2, "Tree build failed: %v", err)
		pretty.Guard(len(document) > 0, 3, "Nothing found below %s.", args[0])
		if len(treeOutputFlag) > 0 {
			err = document.Save(treeOutputFlag)
			pretty.Guard(err == nil, 4, "Writing %s failed: %v", treeOutputFlag, err)
			common.Log("Wrote %d tree root(s) into %s.", len(document), treeOutputFlag)
		} else {
			for _, name := range document.Roots() {
				common.Stdout("%s (%d nodes)\n", name, document[name].Size())
			}
		}
		pretty.Ok()
	},
}

var hierarchyUploadCmd = &cobra.Command{
	Use:   "upload [directory]",
	Short: "Walk a project tree against the catalog, uploading payloads.",
	Long: `Walk a project tree against the catalog, uploading payloads.

The tree comes either from a directory scan (give the directory as the
argument) or from a previously saved document (use --document). Parents
are always materialized before their children, and one broken branch
never blocks its siblings.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if common.DebugFlag() {
			defer common.Stopwatch("Tree upload lasted").Report()
		}
		pretty.Guard(len(args) == 1 || len(treeDocumentFlag) > 0, 1, "Give a directory to scan or --document to replay.")
		settings := runSettings()
		if len(args) == 1 {
			settings.HierarchyDir = args[0]
		}
		services, err := operations.NewServices(settings)
		pretty.Guard(err == nil, 2, "%v", err)
		var summary operations.Summary
		if len(args) == 1 {
			summary, err = services.UploadHierarchy(args[0])
		} else {
			var document hierarchy.Document
			document, err = hierarchy.LoadDocument(treeDocumentFlag)
			pretty.Guard(err == nil, 3, "Reading %s failed: %v", treeDocumentFlag, err)
			summary, err = services.WalkHierarchy(document, ".")
		}
		journal.Post("hierarchy-upload", summary.String(), "tree upload against %q (dry run: %v)", settings.URL, settings.DryRun)
		pretty.Guard(err == nil, 4, "Tree upload failed: %v", err)
		common.Log("Done: %s.", summary)
		pretty.Ok()
	},
}

func init() {
	rootCmd.AddCommand(hierarchyCmd)
	hierarchyCmd.AddCommand(hierarchyBuildCmd)
	hierarchyCmd.AddCommand(hierarchyUploadCmd)
	hierarchyBuildCmd.Flags().StringVarP(&treeOutputFlag, "output", "o", "", "file to write the tree document into (JSON or YAML by extension)")
	hierarchyBuildCmd.Flags().BoolVar(&absolutePaths, "absolute", false, "emit absolute payload paths instead of relative ones")
	hierarchyUploadCmd.Flags().StringVar(&treeDocumentFlag, "document", "", "previously saved tree document to replay")
}
