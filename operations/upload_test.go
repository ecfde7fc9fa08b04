package operations

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sbomtools/bomsync/catalog"
	"github.com/sbomtools/bomsync/config"
	"github.com/sbomtools/bomsync/hamlet"
)

type fakeStore struct {
	seen     []*catalog.Project
	detected []bool
	deleted  []string
	nextUUID int
}

func (it *fakeStore) Upsert(project *catalog.Project, autoDetect bool) error {
	it.nextUUID++
	project.UUID = fmt.Sprintf("uuid-%d", it.nextUUID)
	it.seen = append(it.seen, project)
	it.detected = append(it.detected, autoDetect)
	return nil
}

func (it *fakeStore) Delete(name, version string) error {
	it.deleted = append(it.deleted, name+"@"+version)
	return nil
}

type fakeBoms struct {
	sent [][2]string
	auto [][3]string
}

func (it *fakeBoms) Send(projectUUID, filename string) catalog.UploadResult {
	it.sent = append(it.sent, [2]string{projectUUID, filename})
	return catalog.UploadResult{Success: true, UUID: projectUUID}
}

func (it *fakeBoms) SendAutoCreate(filename, name, version string) catalog.UploadResult {
	it.auto = append(it.auto, [3]string{filename, name, version})
	return catalog.UploadResult{Success: true}
}

func services(settings *config.Settings) (*Services, *fakeStore, *fakeBoms) {
	store := &fakeStore{}
	boms := &fakeBoms{}
	return &Services{Settings: settings, Projects: store, Boms: boms}, store, boms
}

func payload(t *testing.T, directory, filename, name, version string) string {
	t.Helper()
	content := fmt.Sprintf(`{"bomFormat":"CycloneDX","metadata":{"component":{"name":%q,"version":%q}}}`, name, version)
	full := filepath.Join(directory, filename)
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return full
}

func TestSingleUploadTakesIdentityFromTheDocument(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	file := payload(t, t.TempDir(), "web_sbom.json", "web-server", "2.1.0")
	sut, store, boms := services(&config.Settings{
		DryRun:     true,
		SBOMFile:   file,
		NamePrefix: "acme-",
	})
	summary, err := sut.Run()
	must_be.Nil(err)
	must_be.Equal(Summary{Succeeded: 1}, summary)
	must_be.Equal(1, len(store.seen))
	must_be.Equal("acme-web-server", store.seen[0].Name)
	must_be.Equal("2.1.0", store.seen[0].Version)
	must_be.Equal("uuid-1", boms.sent[0][0])
}

func TestExplicitSettingsWinOverDocumentIdentity(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	file := payload(t, t.TempDir(), "web_sbom.json", "web-server", "2.1.0")
	sut, store, _ := services(&config.Settings{
		DryRun:         true,
		SBOMFile:       file,
		ProjectName:    "frontend",
		ProjectVersion: "9.9.9",
	})
	_, err := sut.Run()
	must_be.Nil(err)
	must_be.Equal("frontend", store.seen[0].Name)
	must_be.Equal("9.9.9", store.seen[0].Version)
}

func TestKnownUUIDSkipsReconciliation(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	file := payload(t, t.TempDir(), "web_sbom.json", "web-server", "2.1.0")
	sut, store, boms := services(&config.Settings{
		DryRun:      true,
		SBOMFile:    file,
		ProjectUUID: "uuid-known",
	})
	summary, err := sut.Run()
	must_be.Nil(err)
	must_be.Equal(Summary{Succeeded: 1}, summary)
	must_be.Equal(0, len(store.seen))
	must_be.Equal("uuid-known", boms.sent[0][0])
}

func TestAutoCreateHandsIdentityToTheService(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	file := payload(t, t.TempDir(), "web_sbom.json", "web-server", "2.1.0")
	sut, store, boms := services(&config.Settings{
		DryRun:     true,
		SBOMFile:   file,
		AutoCreate: true,
		NamePrefix: "acme-",
	})
	summary, err := sut.Run()
	must_be.Nil(err)
	must_be.Equal(Summary{Succeeded: 1}, summary)
	must_be.Equal(0, len(store.seen))
	must_be.Equal([3]string{file, "acme-web-server", "2.1.0"}, boms.auto[0])
}

func TestDirectoryUploadCountsBrokenDocumentsAsFailures(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	directory := t.TempDir()
	payload(t, directory, "alpha_sbom.json", "alpha", "1.0")
	payload(t, directory, "beta_sbom.json", "beta", "1.0")
	broken := filepath.Join(directory, "junk_sbom.json")
	must_be.Nil(os.WriteFile(broken, []byte("{not json"), 0o644))

	sut, store, _ := services(&config.Settings{DryRun: true, SBOMDir: directory})
	summary, err := sut.Run()
	must_be.Nil(err)
	must_be.Equal(Summary{Succeeded: 2, Failed: 1}, summary)
	must_be.Equal(2, len(store.seen))
}

func TestListUploadFollowsTheManifest(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	directory := t.TempDir()
	one := payload(t, directory, "one_sbom.json", "one", "1.0")
	two := payload(t, directory, "two_sbom.json", "two", "2.0")
	manifest := filepath.Join(directory, "manifest.txt")
	must_be.Nil(os.WriteFile(manifest, []byte(one+"\n"+two+"\n"), 0o644))

	sut, store, _ := services(&config.Settings{DryRun: true, SBOMList: manifest})
	summary, err := sut.Run()
	must_be.Nil(err)
	must_be.Equal(Summary{Succeeded: 2}, summary)
	must_be.Equal("one", store.seen[0].Name)
	must_be.Equal("two", store.seen[1].Name)
}

func TestNestedUploadMaterializesTheParentFirst(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	directory := t.TempDir()
	payload(t, directory, "alpha_sbom.json", "alpha", "1.0")
	sut, store, boms := services(&config.Settings{
		DryRun:           true,
		SBOMDir:          directory,
		ParentName:       "platform",
		ParentVersion:    "5.0",
		AutoDetectLatest: true,
	})
	summary, err := sut.Run()
	must_be.Nil(err)
	must_be.Equal(Summary{Succeeded: 1}, summary)
	must_be.Equal(2, len(store.seen))
	must_be.Equal("platform", store.seen[0].Name)
	must_be.True(store.seen[0].IsCollection())
	must_be.Equal("uuid-1", store.seen[1].ParentUUID)
	must_be.Equal("5.0", store.seen[1].ParentVersion)
	must_be.Equal(1, len(boms.sent))
}

func TestNestedParentIsACollectionWithoutLatestDetection(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	directory := t.TempDir()
	payload(t, directory, "alpha_sbom.json", "alpha", "1.0")
	sut, store, _ := services(&config.Settings{
		DryRun:           true,
		SBOMDir:          directory,
		ParentName:       "platform",
		ParentVersion:    "5.0",
		AutoDetectLatest: true,
	})
	_, err := sut.Run()
	must_be.Nil(err)
	must_be.Equal(catalog.CollectLatestChildren, store.seen[0].CollectionLogic)
	must_be.True(!store.detected[0])
	must_be.True(store.detected[1])
}

func TestNestedParentCollectionLogicCanBeOverridden(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	directory := t.TempDir()
	payload(t, directory, "alpha_sbom.json", "alpha", "1.0")
	sut, store, _ := services(&config.Settings{
		DryRun:                true,
		SBOMDir:               directory,
		ParentName:            "platform",
		ParentVersion:         "5.0",
		ParentCollectionLogic: "AGGREGATE_DIRECT_CHILDREN",
	})
	_, err := sut.Run()
	must_be.Nil(err)
	must_be.Equal(catalog.CollectDirectChildren, store.seen[0].CollectionLogic)
}

func TestHierarchyDirectoryTakesPriority(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	root := filepath.Join(t.TempDir(), "root")
	must_be.Nil(os.MkdirAll(root, 0o755))
	payload(t, root, "comp_1.0_sbom.json", "comp", "1.0")

	sut, store, _ := services(&config.Settings{
		DryRun:       true,
		HierarchyDir: root,
		SBOMDir:      root,
	})
	summary, err := sut.Run()
	must_be.Nil(err)
	must_be.True(summary.Success())
	must_be.Equal("meta_root", store.seen[0].Name)
}
