// Package catalog reconciles project records against a Dependency-Track
// style catalog service: version-aware upsert, conflict recovery, latest
// flag maintenance and pattern-based pruning of superseded versions.
package catalog

import "strings"

type Classifier string

const (
	ClassifierApplication     Classifier = "APPLICATION"
	ClassifierFramework       Classifier = "FRAMEWORK"
	ClassifierLibrary         Classifier = "LIBRARY"
	ClassifierContainer       Classifier = "CONTAINER"
	ClassifierDevice          Classifier = "DEVICE"
	ClassifierFirmware        Classifier = "FIRMWARE"
	ClassifierFile            Classifier = "FILE"
	ClassifierOperatingSystem Classifier = "OPERATING_SYSTEM"
	ClassifierPlatform        Classifier = "PLATFORM"
	ClassifierDeviceDriver    Classifier = "DEVICE_DRIVER"
	ClassifierModel           Classifier = "MACHINE_LEARNING_MODEL"
	ClassifierData            Classifier = "DATA"
)

var knownClassifiers = []Classifier{
	ClassifierApplication,
	ClassifierFramework,
	ClassifierLibrary,
	ClassifierContainer,
	ClassifierDevice,
	ClassifierFirmware,
	ClassifierFile,
	ClassifierOperatingSystem,
	ClassifierPlatform,
	ClassifierDeviceDriver,
	ClassifierModel,
	ClassifierData,
}

// ParseClassifier maps free text to a known classifier; anything
// unrecognized degrades to APPLICATION.
func ParseClassifier(text string) Classifier {
	candidate := Classifier(strings.ToUpper(strings.TrimSpace(text)))
	for _, known := range knownClassifiers {
		if candidate == known {
			return known
		}
	}
	return ClassifierApplication
}

type CollectionLogic string

const (
	CollectNone           CollectionLogic = "NONE"
	CollectLatestChildren CollectionLogic = "AGGREGATE_LATEST_VERSION_CHILDREN"
	CollectDirectChildren CollectionLogic = "AGGREGATE_DIRECT_CHILDREN"
)

// ParseCollectionLogic maps free text to a collection logic; anything
// unrecognized degrades to NONE.
func ParseCollectionLogic(text string) CollectionLogic {
	candidate := CollectionLogic(strings.ToUpper(strings.TrimSpace(text)))
	switch candidate {
	case CollectLatestChildren, CollectDirectChildren:
		return candidate
	}
	return CollectNone
}

// Project is the in-memory form of one catalog entry. It is transient
// per run: the remote record it describes outlives the process.
type Project struct {
	Name            string
	Version         string
	UUID            string
	Classifier      Classifier
	CollectionLogic CollectionLogic
	ParentUUID      string
	Tags            []string
	Description     string
	Active          bool
	IsLatest        bool

	// ParentVersion carries walk context only; it never goes on the
	// wire. Suffix-based deletion triggers on the parent's version.
	ParentVersion string
}

func NewProject(name, version string) *Project {
	return &Project{
		Name:            name,
		Version:         version,
		Classifier:      ClassifierApplication,
		CollectionLogic: CollectNone,
		Active:          true,
	}
}

// IsCollection tells whether this project aggregates children instead
// of carrying its own SBOM payload.
func (it *Project) IsCollection() bool {
	return it.CollectionLogic != CollectNone && len(it.CollectionLogic) > 0
}

func (it *Project) apiForm() map[string]interface{} {
	form := map[string]interface{}{
		"name":       it.Name,
		"classifier": string(it.Classifier),
		"active":     it.Active,
	}
	if len(it.Version) > 0 {
		form["version"] = it.Version
	}
	if len(it.Description) > 0 {
		form["description"] = it.Description
	}
	if len(it.ParentUUID) > 0 {
		form["parent"] = map[string]string{"uuid": it.ParentUUID}
	}
	if len(it.Tags) > 0 {
		tags := make([]map[string]string, 0, len(it.Tags))
		for _, tag := range it.Tags {
			tags = append(tags, map[string]string{"name": tag})
		}
		form["tags"] = tags
	}
	if it.IsCollection() {
		form["collectionLogic"] = string(it.CollectionLogic)
	}
	if it.IsLatest {
		form["isLatest"] = true
	}
	return form
}

// Remote is the decoded form of a catalog entry as the service reports
// it back.
type Remote struct {
	UUID            string `json:"uuid"`
	Name            string `json:"name"`
	Version         string `json:"version"`
	IsLatest        bool   `json:"isLatest"`
	Classifier      string `json:"classifier"`
	CollectionLogic string `json:"collectionLogic"`
}

// IsCollection mirrors Project.IsCollection for remote entries.
func (it *Remote) IsCollection() bool {
	logic := CollectionLogic(it.CollectionLogic)
	return logic == CollectLatestChildren || logic == CollectDirectChildren
}

// UploadResult reports one payload transfer.
type UploadResult struct {
	Success bool
	UUID    string
	Message string
	Token   string
}

func successResult(uuid, message, token string) UploadResult {
	return UploadResult{Success: true, UUID: uuid, Message: message, Token: token}
}

func failureResult(message string) UploadResult {
	return UploadResult{Success: false, Message: message}
}
