package cmd

import (
	"github.com/sbomtools/bomsync/common"
	"github.com/sbomtools/bomsync/journal"
	"github.com/sbomtools/bomsync/operations"
	"github.com/sbomtools/bomsync/pretty"

	"github.com/spf13/cobra"
)

var (
	sbomFileFlag       string
	sbomListFlag       string
	sbomDirFlag        string
	projectNameFlag    string
	projectVersionFlag string
	projectUuidFlag    string
	parentNameFlag     string
	parentVersionFlag  string
	autoCreateFlag     bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload SBOM documents, creating catalog projects on the way.",
	Long: `Upload SBOM documents, creating catalog projects on the way.

The payload source is one of: a single file, a list manifest, or a
directory. Flags override the matching INPUT_* environment settings.`,
	Run: func(cmd *cobra.Command, args []string) {
		if common.DebugFlag() {
			defer common.Stopwatch("Upload lasted").Report()
		}
		settings := runSettings()
		if len(sbomFileFlag) > 0 {
			settings.SBOMFile = sbomFileFlag
		}
		if len(sbomListFlag) > 0 {
			settings.SBOMList = sbomListFlag
		}
		if len(sbomDirFlag) > 0 {
			settings.SBOMDir = sbomDirFlag
		}
		if len(projectNameFlag) > 0 {
			settings.ProjectName = projectNameFlag
		}
		if len(projectVersionFlag) > 0 {
			settings.ProjectVersion = projectVersionFlag
		}
		if len(projectUuidFlag) > 0 {
			settings.ProjectUUID = projectUuidFlag
		}
		if len(parentNameFlag) > 0 {
			settings.ParentName = parentNameFlag
		}
		if len(parentVersionFlag) > 0 {
			settings.ParentVersion = parentVersionFlag
		}
		if autoCreateFlag {
			settings.AutoCreate = true
		}
		services, err := operations.NewServices(settings)
		pretty.Guard(err == nil, 2, "%v", err)
		summary, err := services.Run()
		journal.Post("upload", summary.String(), "upload against %q (dry run: %v)", settings.URL, settings.DryRun)
		pretty.Guard(err == nil, 3, "Upload failed: %v", err)
		pretty.Guard(summary.Success(), 4, "Upload failed: %s.", summary)
		common.Log("Done: %s.", summary)
		pretty.Ok()
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringVarP(&sbomFileFlag, "file", "f", "", "one SBOM file to upload")
	uploadCmd.Flags().StringVarP(&sbomListFlag, "list", "l", "", "manifest file naming SBOM files to upload, one per line")
	uploadCmd.Flags().StringVar(&sbomDirFlag, "directory", "", "directory of SBOM files to upload")
	uploadCmd.Flags().StringVar(&projectNameFlag, "project-name", "", "project name (single file upload only)")
	uploadCmd.Flags().StringVar(&projectVersionFlag, "project-version", "", "project version (single file upload only)")
	uploadCmd.Flags().StringVar(&projectUuidFlag, "project-uuid", "", "upload straight into this project uuid")
	uploadCmd.Flags().StringVar(&parentNameFlag, "parent-name", "", "parent project to nest uploads under")
	uploadCmd.Flags().StringVar(&parentVersionFlag, "parent-version", "", "version of the parent project")
	uploadCmd.Flags().BoolVar(&autoCreateFlag, "auto-create", false, "let the service create the project during the upload itself")
}
