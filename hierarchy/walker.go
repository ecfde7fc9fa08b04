package hierarchy

import (
	"os"
	"path/filepath"

	"github.com/sbomtools/bomsync/catalog"
	"github.com/sbomtools/bomsync/common"
)

// Reconciler is the slice of the catalog directory the walk needs.
type Reconciler interface {
	Upsert(project *catalog.Project, autoDetect bool) error
}

// Sender transfers one payload file to an existing project.
type Sender interface {
	Send(projectUUID, filename string) catalog.UploadResult
}

// Outcome counts nodes over one subtree.
type Outcome struct {
	Succeeded int
	Failed    int
}

func (it Outcome) Merge(other Outcome) Outcome {
	return Outcome{
		Succeeded: it.Succeeded + other.Succeeded,
		Failed:    it.Failed + other.Failed,
	}
}

// Clean tells whether every node in the subtree made it.
func (it Outcome) Clean() bool {
	return it.Failed == 0 && it.Succeeded > 0
}

// Result is the aggregate of one full walk.
type Result struct {
	RootsSucceeded int
	RootsFailed    int
	Nodes          Outcome
}

// Success means at least one root subtree made it through whole.
func (it Result) Success() bool {
	return it.RootsSucceeded > 0
}

// Uploader walks a tree document depth-first, materializing each node
// through the reconciler and attaching payloads through the sender. A
// child is never touched before its parent has an identifier.
type Uploader struct {
	projects   Reconciler
	payloads   Sender
	base       string
	autoDetect bool
}

// NewUploader builds a walker. Relative payload paths resolve against
// base; an empty base leaves them as they are.
func NewUploader(projects Reconciler, payloads Sender, base string, autoDetect bool) *Uploader {
	return &Uploader{
		projects:   projects,
		payloads:   payloads,
		base:       base,
		autoDetect: autoDetect,
	}
}

// Walk processes every root subtree in stable order. One broken branch
// never blocks its siblings; only authentication trouble stops the
// whole walk.
func (it *Uploader) Walk(document Document) (Result, error) {
	result := Result{}
	for _, name := range document.Roots() {
		outcome, err := it.visit(document[name], "", "")
		result.Nodes = result.Nodes.Merge(outcome)
		if err != nil {
			result.RootsFailed++
			return result, err
		}
		if outcome.Clean() {
			result.RootsSucceeded++
		} else {
			result.RootsFailed++
		}
	}
	common.Log("Hierarchy upload done: %d root(s) succeeded, %d failed.", result.RootsSucceeded, result.RootsFailed)
	return result, nil
}

func (it *Uploader) visit(node *Node, parentUUID, parentVersion string) (Outcome, error) {
	outcome := Outcome{}
	if node == nil {
		return outcome, nil
	}
	if len(node.Name) == 0 {
		common.Warning("Skipping a nameless node (parent version: %q) and its %d descendant(s).", parentVersion, node.Size()-1)
		outcome.Failed += node.Size()
		return outcome, nil
	}
	project := catalog.NewProject(node.Name, node.Version)
	project.Classifier = catalog.ParseClassifier(node.Classifier)
	project.CollectionLogic = catalog.ParseCollectionLogic(node.CollectionLogic)
	project.Tags = node.Tags
	project.IsLatest = node.IsLatest
	project.ParentUUID = parentUUID
	project.ParentVersion = parentVersion
	err := it.projects.Upsert(project, it.autoDetect)
	if err != nil {
		if catalog.Fatal(err) {
			return outcome, err
		}
		common.Error("hierarchy.upsert", err)
		common.Log("Failed %s@%s (parent: %q), skipping its subtree.", node.Name, node.Version, parentUUID)
		outcome.Failed += node.Size()
		return outcome, nil
	}
	if len(node.SBOMFile) > 0 && !project.IsCollection() {
		delivered, failed := it.attach(node, project.UUID)
		if failed {
			outcome.Failed += node.Size()
			return outcome, nil
		}
		if delivered {
			common.Debug("Attached %s to %s@%s.", node.SBOMFile, node.Name, node.Version)
		}
	}
	outcome.Succeeded++
	for _, child := range node.Children {
		below, err := it.visit(child, project.UUID, node.Version)
		outcome = outcome.Merge(below)
		if err != nil {
			return outcome, err
		}
	}
	return outcome, nil
}

// attach sends the node's payload. A missing file is only a warning, a
// refused transfer fails the node.
func (it *Uploader) attach(node *Node, projectUUID string) (delivered, failed bool) {
	path := node.SBOMFile
	if !filepath.IsAbs(path) && len(it.base) > 0 {
		path = filepath.Join(it.base, path)
	}
	if _, err := os.Stat(path); err != nil {
		common.Warning("Payload %s of %s@%s is not available, continuing without it.", path, node.Name, node.Version)
		return false, false
	}
	result := it.payloads.Send(projectUUID, path)
	if !result.Success {
		common.Log("Uploading %s to %s@%s failed: %s", path, node.Name, node.Version, result.Message)
		return false, true
	}
	return true, false
}
