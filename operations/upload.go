package operations

import (
	"fmt"

	"github.com/sbomtools/bomsync/catalog"
	"github.com/sbomtools/bomsync/common"
	"github.com/sbomtools/bomsync/hierarchy"
	"github.com/sbomtools/bomsync/sbom"
)

// Run picks the upload mode from the settings and executes it. Mode
// priority: hierarchy directory, then nested-under-parent, then list,
// then directory, then single file.
func (it *Services) Run() (Summary, error) {
	if err := it.Settings.ValidateForUpload(); err != nil {
		return Summary{}, err
	}
	switch {
	case len(it.Settings.HierarchyDir) > 0:
		return it.UploadHierarchy(it.Settings.HierarchyDir)
	case len(it.Settings.ParentName) > 0 && len(it.Settings.SBOMDir) > 0:
		return it.UploadNested()
	case len(it.Settings.SBOMList) > 0:
		return it.UploadList()
	case len(it.Settings.SBOMDir) > 0:
		return it.UploadDirectory()
	default:
		return it.UploadSingle()
	}
}

// UploadHierarchy scans the directory into a tree and walks it.
func (it *Services) UploadHierarchy(directory string) (Summary, error) {
	document, err := hierarchy.NewBuilder(directory, true).Build()
	if err != nil {
		return Summary{}, err
	}
	return it.WalkHierarchy(document, "")
}

// WalkHierarchy runs an already built tree document. Relative payload
// paths resolve against base.
func (it *Services) WalkHierarchy(document hierarchy.Document, base string) (Summary, error) {
	walker := hierarchy.NewUploader(it.Projects, it.Boms, base, it.Settings.AutoDetectLatest)
	result, err := walker.Walk(document)
	summary := Summary{Succeeded: result.Nodes.Succeeded, Failed: result.Nodes.Failed}
	if err != nil {
		return summary, err
	}
	if !result.Success() {
		return summary, fmt.Errorf("no hierarchy root succeeded (%s)", summary)
	}
	return summary, nil
}

// UploadSingle pushes one configured SBOM file. Explicit settings win
// over the identity found inside the document.
func (it *Services) UploadSingle() (Summary, error) {
	filename := it.Settings.SBOMFile
	if len(it.Settings.ProjectUUID) > 0 {
		result := it.Boms.Send(it.Settings.ProjectUUID, filename)
		return it.tally(result, filename), nil
	}
	metadata, err := sbom.ExtractMetadata(filename)
	if err != nil {
		return Summary{Failed: 1}, err
	}
	name := it.Settings.ProjectName
	if len(name) == 0 {
		name = metadata.Name
	}
	version := it.Settings.ProjectVersion
	if len(version) == 0 {
		version = metadata.Version
	}
	description := it.Settings.ProjectDescription
	if len(description) == 0 {
		description = metadata.Description
	}
	if it.Settings.AutoCreate {
		result := it.Boms.SendAutoCreate(filename, it.Settings.DecorateName(name), version)
		return it.tally(result, filename), nil
	}
	parentUUID, err := it.resolveParent()
	if err != nil {
		return Summary{Failed: 1}, err
	}
	project := it.blueprint(name, version, parentUUID)
	project.Description = description
	err = it.Projects.Upsert(project, it.Settings.AutoDetectLatest)
	if err != nil {
		return Summary{Failed: 1}, err
	}
	return it.tally(it.Boms.Send(project.UUID, filename), filename), nil
}

// UploadList pushes every payload named in the list file, one at a
// time; identities come from the documents themselves.
func (it *Services) UploadList() (Summary, error) {
	files, err := sbom.ReadFileList(it.Settings.SBOMList)
	if err != nil {
		return Summary{}, err
	}
	return it.uploadBatch(files, "")
}

// UploadDirectory pushes every JSON payload directly inside the
// configured directory.
func (it *Services) UploadDirectory() (Summary, error) {
	files, err := sbom.DiscoverDirectory(it.Settings.SBOMDir)
	if err != nil {
		return Summary{}, err
	}
	return it.uploadBatch(files, "")
}

// UploadNested pushes a directory of payloads as children of the
// configured parent project, creating the parent first.
func (it *Services) UploadNested() (Summary, error) {
	files, err := sbom.DiscoverDirectory(it.Settings.SBOMDir)
	if err != nil {
		return Summary{}, err
	}
	parent := catalog.NewProject(it.Settings.ParentName, it.Settings.ParentVersion)
	parent.Classifier = catalog.ParseClassifier(it.Settings.Classifier)
	parent.CollectionLogic = catalog.CollectLatestChildren
	if len(it.Settings.ParentCollectionLogic) > 0 {
		parent.CollectionLogic = catalog.ParseCollectionLogic(it.Settings.ParentCollectionLogic)
	}
	parent.Tags = it.Settings.TagList()
	err = it.Projects.Upsert(parent, false)
	if err != nil {
		return Summary{}, err
	}
	return it.uploadBatch(files, parent.UUID)
}

func (it *Services) uploadBatch(files []string, parentUUID string) (Summary, error) {
	summary := Summary{}
	for _, filename := range files {
		metadata, err := sbom.ExtractMetadata(filename)
		if err != nil {
			common.Warning("Skipping %s: %v", filename, err)
			summary.Failed++
			continue
		}
		project := it.blueprint(metadata.Name, metadata.Version, parentUUID)
		project.Description = metadata.Description
		err = it.Projects.Upsert(project, it.Settings.AutoDetectLatest)
		if err != nil {
			if catalog.Fatal(err) {
				return summary, err
			}
			common.Error("upload.upsert", err)
			summary.Failed++
			continue
		}
		summary = summary.absorb(it.tally(it.Boms.Send(project.UUID, filename), filename))
	}
	common.Log("Upload done: %s.", summary)
	return summary, nil
}

// blueprint builds the project record the settings describe for one
// named payload.
func (it *Services) blueprint(name, version, parentUUID string) *catalog.Project {
	project := catalog.NewProject(it.Settings.DecorateName(name), version)
	project.Classifier = catalog.ParseClassifier(it.Settings.Classifier)
	project.Tags = it.Settings.TagList()
	project.IsLatest = it.Settings.IsLatest
	project.ParentUUID = parentUUID
	project.ParentVersion = it.Settings.ParentVersion
	return project
}

func (it *Services) tally(result catalog.UploadResult, filename string) Summary {
	if result.Success {
		common.Log("Uploaded %s: %s", filename, result.Message)
		return Summary{Succeeded: 1}
	}
	common.Log("Uploading %s failed: %s", filename, result.Message)
	return Summary{Failed: 1}
}

func (it Summary) absorb(other Summary) Summary {
	return Summary{
		Succeeded: it.Succeeded + other.Succeeded,
		Failed:    it.Failed + other.Failed,
	}
}
