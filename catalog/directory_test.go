package catalog

import (
	"fmt"
	"testing"

	"github.com/sbomtools/bomsync/hamlet"
)

type fakeAPI struct {
	entries          []*Remote
	created          []*Project
	updated          []*Project
	cleared          []string
	removed          []string
	calls            []string
	touched          int
	conflictOnCreate bool
	failUpdate       bool
	failVersions     bool
	failClear        bool
	nextUUID         int
}

func (it *fakeAPI) Lookup(name, version string) (*Remote, error) {
	it.touched++
	it.calls = append(it.calls, "lookup")
	for _, entry := range it.entries {
		if entry.Name != name {
			continue
		}
		if len(version) == 0 || entry.Version == version {
			return entry, nil
		}
	}
	return nil, nil
}

func (it *fakeAPI) VersionsOf(name string) ([]*Remote, error) {
	it.touched++
	it.calls = append(it.calls, "versions")
	if it.failVersions {
		return nil, &ConnectionError{Operation: "list versions", Status: 503}
	}
	matching := []*Remote{}
	for _, entry := range it.entries {
		if entry.Name == name {
			matching = append(matching, entry)
		}
	}
	return matching, nil
}

func (it *fakeAPI) Create(project *Project) (string, bool, error) {
	it.touched++
	it.calls = append(it.calls, "create")
	if it.conflictOnCreate {
		return "", true, nil
	}
	it.created = append(it.created, project)
	it.nextUUID++
	uuid := fmt.Sprintf("uuid-%d", it.nextUUID)
	it.entries = append(it.entries, &Remote{
		UUID:     uuid,
		Name:     project.Name,
		Version:  project.Version,
		IsLatest: project.IsLatest,
	})
	return uuid, false, nil
}

func (it *fakeAPI) Update(project *Project) error {
	it.touched++
	it.calls = append(it.calls, "update")
	if it.failUpdate {
		return &ConnectionError{Operation: "update project", Status: 500}
	}
	it.updated = append(it.updated, project)
	return nil
}

func (it *fakeAPI) ClearLatest(uuid string) error {
	it.touched++
	it.calls = append(it.calls, "clear")
	if it.failClear {
		return &ConnectionError{Operation: "clear latest flag", Status: 500}
	}
	it.cleared = append(it.cleared, uuid)
	for _, entry := range it.entries {
		if entry.UUID == uuid {
			entry.IsLatest = false
		}
	}
	return nil
}

func (it *fakeAPI) Remove(uuid string) error {
	it.touched++
	it.calls = append(it.calls, "remove")
	it.removed = append(it.removed, uuid)
	remaining := it.entries[:0]
	for _, entry := range it.entries {
		if entry.UUID != uuid {
			remaining = append(remaining, entry)
		}
	}
	it.entries = remaining
	return nil
}

func (it *fakeAPI) Ping() error {
	it.touched++
	it.calls = append(it.calls, "ping")
	return nil
}

func TestCanCreateMissingProject(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	fake := &fakeAPI{}
	sut := NewDirectory(fake, Options{})
	project := NewProject("web-server", "1.0.0")
	must_be.Nil(sut.Upsert(project, true))
	wont_be.Equal("", project.UUID)
	must_be.True(project.IsLatest)
	must_be.Equal(1, len(fake.created))
	must_be.Equal(1, len(fake.updated))
}

func TestCreateHappensBeforeLatestDetection(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	fake := &fakeAPI{}
	sut := NewDirectory(fake, Options{})
	project := NewProject("web-server", "1.0.0")
	must_be.Nil(sut.Upsert(project, true))
	must_be.Equal([]string{"lookup", "create", "versions", "update"}, fake.calls)
	must_be.True(!fake.entries[0].IsLatest)
	must_be.True(project.IsLatest)
}

func TestCanAdoptExistingProject(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	fake := &fakeAPI{entries: []*Remote{
		{UUID: "uuid-9", Name: "web-server", Version: "1.0.0", IsLatest: true},
	}}
	sut := NewDirectory(fake, Options{})
	project := NewProject("web-server", "1.0.0")
	must_be.Nil(sut.Upsert(project, true))
	must_be.Equal("uuid-9", project.UUID)
	must_be.Equal(0, len(fake.created))
	must_be.Equal(1, len(fake.updated))
	must_be.True(project.IsLatest)
}

func TestUpsertIsIdempotent(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	fake := &fakeAPI{}
	sut := NewDirectory(fake, Options{})
	first := NewProject("tooling", "2.1.0")
	must_be.Nil(sut.Upsert(first, true))
	second := NewProject("tooling", "2.1.0")
	must_be.Nil(sut.Upsert(second, true))
	must_be.Equal(first.UUID, second.UUID)
	must_be.Equal(1, len(fake.created))
	must_be.Equal(0, len(fake.cleared))
}

func TestConflictRecoveryFallsBackToNameOnly(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	fake := &fakeAPI{
		conflictOnCreate: true,
		entries: []*Remote{
			{UUID: "uuid-old", Name: "web-server", Version: "1.0.0"},
		},
	}
	sut := NewDirectory(fake, Options{})
	project := NewProject("web-server", "2.0.0")
	must_be.Nil(sut.Upsert(project, false))
	must_be.Equal("uuid-old", project.UUID)
	must_be.Equal(1, len(fake.updated))
}

func TestUnresolvableConflictIsCreationError(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	fake := &fakeAPI{conflictOnCreate: true}
	sut := NewDirectory(fake, Options{})
	err := sut.Upsert(NewProject("ghost", "1.0.0"), false)
	wont_be.Nil(err)
	creation, ok := err.(*CreationError)
	must_be.True(ok)
	must_be.Equal("ghost", creation.Name)
	must_be.True(!Fatal(err))
}

func TestNewLatestClearsSupersededFlags(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	fake := &fakeAPI{entries: []*Remote{
		{UUID: "uuid-1", Name: "web-server", Version: "1.0.0", IsLatest: true},
	}}
	sut := NewDirectory(fake, Options{})
	project := NewProject("web-server", "2.0.0")
	must_be.Nil(sut.Upsert(project, true))
	must_be.True(project.IsLatest)
	must_be.Equal([]string{"uuid-1"}, fake.cleared)
	must_be.Equal(0, len(fake.removed))
}

func TestOlderVersionNeverTakesLatestFlag(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	fake := &fakeAPI{entries: []*Remote{
		{UUID: "uuid-3", Name: "web-server", Version: "3.0.0", IsLatest: true},
	}}
	sut := NewDirectory(fake, Options{})
	project := NewProject("web-server", "2.0.0")
	must_be.Nil(sut.Upsert(project, true))
	must_be.True(!project.IsLatest)
	must_be.Equal(0, len(fake.cleared))
}

func TestFailingUpdateDoesNotPoisonTheRun(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	fake := &fakeAPI{
		failUpdate: true,
		entries: []*Remote{
			{UUID: "uuid-9", Name: "web-server", Version: "1.0.0", IsLatest: true},
		},
	}
	sut := NewDirectory(fake, Options{})
	project := NewProject("web-server", "1.0.0")
	must_be.Nil(sut.Upsert(project, true))
	must_be.Equal("uuid-9", project.UUID)
	must_be.Equal(0, len(fake.updated))
}

func TestFailingVersionListingLeavesLatestFlagAlone(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	fake := &fakeAPI{failVersions: true}
	sut := NewDirectory(fake, Options{})
	project := NewProject("web-server", "1.0.0")
	must_be.Nil(sut.Upsert(project, true))
	wont_be.Equal("", project.UUID)
	must_be.True(!project.IsLatest)
	must_be.Equal(1, len(fake.created))
	must_be.Equal(0, len(fake.updated))
}

func TestFailingClearKeepsTheNewLatest(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	fake := &fakeAPI{
		failClear: true,
		entries: []*Remote{
			{UUID: "uuid-1", Name: "web-server", Version: "1.0.0", IsLatest: true},
		},
	}
	sut := NewDirectory(fake, Options{})
	project := NewProject("web-server", "2.0.0")
	must_be.Nil(sut.Upsert(project, true))
	must_be.True(project.IsLatest)
	must_be.Equal(0, len(fake.cleared))
	must_be.Equal(1, len(fake.updated))
}

func TestDeletionTriggersOnParentVersionPattern(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	fake := &fakeAPI{entries: []*Remote{
		{UUID: "uuid-1", Name: "web-server", Version: "1.0.0-nightly", IsLatest: true},
	}}
	sut := NewDirectory(fake, Options{DeleteOnMatch: true, DeletePattern: "nightly"})
	project := NewProject("web-server", "2.0.0-nightly")
	project.ParentVersion = "5.0-NIGHTLY"
	must_be.Nil(sut.Upsert(project, true))
	must_be.Equal([]string{"uuid-1"}, fake.removed)
	must_be.Equal(0, len(fake.cleared))
}

func TestDeletionSkippedWhenParentVersionDoesNotMatch(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	fake := &fakeAPI{entries: []*Remote{
		{UUID: "uuid-1", Name: "web-server", Version: "1.0.0", IsLatest: true},
	}}
	sut := NewDirectory(fake, Options{DeleteOnMatch: true, DeletePattern: "nightly"})
	project := NewProject("web-server", "2.0.0")
	project.ParentVersion = "5.0"
	must_be.Nil(sut.Upsert(project, true))
	must_be.Equal(0, len(fake.removed))
	must_be.Equal([]string{"uuid-1"}, fake.cleared)
}

func TestCollectionEntriesAreNeverDeleted(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	fake := &fakeAPI{entries: []*Remote{
		{UUID: "uuid-1", Name: "meta_web", Version: "1.0.0", IsLatest: true,
			CollectionLogic: string(CollectLatestChildren)},
	}}
	sut := NewDirectory(fake, Options{DeleteOnMatch: true, DeletePattern: "nightly"})
	project := NewProject("meta_web", "2.0.0")
	project.ParentVersion = "2.0.0-nightly"
	must_be.Nil(sut.Upsert(project, true))
	must_be.Equal(0, len(fake.removed))
	must_be.Equal([]string{"uuid-1"}, fake.cleared)
}

func TestDryRunNeverTouchesTheService(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	fake := &fakeAPI{}
	sut := NewDirectory(fake, Options{DryRun: true})
	project := NewProject("web-server", "1.0.0")
	must_be.Nil(sut.Upsert(project, true))
	must_be.Equal(DryRunUUID, project.UUID)
	must_be.Nil(sut.Delete("web-server", "1.0.0"))
	must_be.Equal(0, fake.touched)
}

func TestDeleteOfMissingProjectIsNoop(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	fake := &fakeAPI{}
	sut := NewDirectory(fake, Options{})
	must_be.Nil(sut.Delete("missing", "1.0.0"))
	must_be.Equal(0, len(fake.removed))
}

func TestBrokenPatternDegradesToSubstringMatch(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	must_be.True(matchesPattern("[broken", "release-[BROKEN-42"))
	must_be.True(!matchesPattern("[broken", "release-42"))
	must_be.True(matchesPattern("^nightly", "Nightly-7"))
	must_be.True(!matchesPattern("^nightly", "not-nightly"))
	must_be.True(!matchesPattern("anything", ""))
}
