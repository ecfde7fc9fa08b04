package catalog

import (
	"regexp"
	"strings"

	"github.com/sbomtools/bomsync/common"
	"github.com/sbomtools/bomsync/versions"
)

// Options tunes how the directory reconciles entries.
type Options struct {
	DryRun        bool
	DeleteOnMatch bool
	DeletePattern string
}

// Directory keeps the remote catalog in line with the projects handed
// to it. All work is sequential: one call, one entry at a time.
type Directory struct {
	api     API
	options Options
}

func NewDirectory(api API, options Options) *Directory {
	return &Directory{api: api, options: options}
}

// Upsert makes sure the given project exists remotely and fills in its
// UUID. With autoDetect, the latest flag is computed against the
// already known versions of the same name, and superseded latest flags
// are cleared (or their carriers deleted, when configured so).
func (it *Directory) Upsert(project *Project, autoDetect bool) error {
	if it.options.DryRun {
		project.UUID = DryRunUUID
		common.Log("[dry run] Would ensure project %s@%s exists.", project.Name, project.Version)
		return nil
	}
	found, err := it.api.Lookup(project.Name, project.Version)
	if err != nil {
		return err
	}
	if found != nil {
		project.UUID = found.UUID
		common.Debug("Project %s@%s already exists (uuid: %s), updating.", project.Name, project.Version, project.UUID)
		if autoDetect {
			if err := it.detectLatest(project); err != nil {
				return err
			}
		}
		err = it.api.Update(project)
		if err != nil {
			if Fatal(err) {
				return err
			}
			common.Warning("Updating project %s@%s failed, keeping going: %v", project.Name, project.Version, err)
		}
		return nil
	}
	uuid, conflict, err := it.api.Create(project)
	if err != nil {
		return err
	}
	if conflict {
		return it.recoverConflict(project)
	}
	project.UUID = uuid
	common.Log("Created project %s@%s (uuid: %s).", project.Name, project.Version, project.UUID)
	if autoDetect {
		wasLatest := project.IsLatest
		if err := it.detectLatest(project); err != nil {
			return err
		}
		if project.IsLatest && !wasLatest {
			err = it.api.Update(project)
			if err != nil {
				if Fatal(err) {
					return err
				}
				common.Warning("Flagging %s@%s latest failed, keeping going: %v", project.Name, project.Version, err)
			}
		}
	}
	return nil
}

// recoverConflict adopts the entry that made the create collide. Exact
// name and version is tried first, then name alone: some services
// report a conflict on a name match even when versions differ.
func (it *Directory) recoverConflict(project *Project) error {
	common.Debug("Create of %s@%s reported a conflict, re-looking up.", project.Name, project.Version)
	found, err := it.api.Lookup(project.Name, project.Version)
	if err != nil {
		return err
	}
	if found == nil {
		found, err = it.api.Lookup(project.Name, "")
		if err != nil {
			return err
		}
	}
	if found == nil {
		return &CreationError{
			Name:    project.Name,
			Version: project.Version,
			Reason:  "conflict reported, but no matching project could be found",
		}
	}
	project.UUID = found.UUID
	err = it.api.Update(project)
	if err != nil {
		if Fatal(err) {
			return err
		}
		common.Warning("Converging conflicting project %s failed, keeping going: %v", project.Name, err)
	}
	return nil
}

// detectLatest fills in the latest flag by comparing against every
// version of the same name the service already knows. When this entry
// wins, stale latest carriers are cleared or pruned.
func (it *Directory) detectLatest(project *Project) error {
	siblings, err := it.api.VersionsOf(project.Name)
	if err != nil {
		if Fatal(err) {
			return err
		}
		common.Warning("Listing versions of %s failed, leaving latest flag alone: %v", project.Name, err)
		return nil
	}
	if len(siblings) == 0 {
		project.IsLatest = true
		common.Debug("First known version of %s, flagging it latest.", project.Name)
		return nil
	}
	universe := make([]string, 0, len(siblings)+1)
	universe = append(universe, project.Version)
	for _, sibling := range siblings {
		universe = append(universe, sibling.Version)
	}
	project.IsLatest = versions.IsLatest(project.Version, universe)
	common.Debug("Version %s of %s is latest: %v", project.Version, project.Name, project.IsLatest)
	if !project.IsLatest {
		return nil
	}
	for _, sibling := range siblings {
		if sibling.Version == project.Version || !sibling.IsLatest {
			continue
		}
		if it.shouldDelete(sibling, project) {
			err = it.api.Remove(sibling.UUID)
			if err != nil {
				if Fatal(err) {
					return err
				}
				common.Warning("Deleting superseded project %s@%s failed, keeping going: %v", sibling.Name, sibling.Version, err)
				continue
			}
			common.Log("Deleted superseded project %s@%s.", sibling.Name, sibling.Version)
			continue
		}
		err = it.api.ClearLatest(sibling.UUID)
		if err != nil {
			if Fatal(err) {
				return err
			}
			common.Warning("Clearing latest flag of %s@%s failed, keeping going: %v", sibling.Name, sibling.Version, err)
			continue
		}
		common.Debug("Cleared latest flag of %s@%s.", sibling.Name, sibling.Version)
	}
	return nil
}

// shouldDelete gates pruning: only leaf entries go, and only when the
// upserted project's parent version matches the configured pattern.
func (it *Directory) shouldDelete(sibling *Remote, project *Project) bool {
	if !it.options.DeleteOnMatch || len(it.options.DeletePattern) == 0 {
		return false
	}
	if sibling.IsCollection() {
		return false
	}
	return matchesPattern(it.options.DeletePattern, project.ParentVersion)
}

// matchesPattern tries the pattern as a case-insensitive regular
// expression; a pattern that does not compile degrades to a
// case-insensitive substring test.
func matchesPattern(pattern, text string) bool {
	if len(text) == 0 {
		return false
	}
	matcher, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return strings.Contains(strings.ToLower(text), strings.ToLower(pattern))
	}
	return matcher.MatchString(text)
}

// Delete removes one entry by name and version. A missing entry is a
// no-op, not an error.
func (it *Directory) Delete(name, version string) error {
	if it.options.DryRun {
		common.Log("[dry run] Would delete project %s@%s.", name, version)
		return nil
	}
	found, err := it.api.Lookup(name, version)
	if err != nil {
		return err
	}
	if found == nil {
		common.Log("Project %s@%s not found, nothing to delete.", name, version)
		return nil
	}
	err = it.api.Remove(found.UUID)
	if err != nil {
		return err
	}
	common.Log("Deleted project %s@%s (uuid: %s).", name, version, found.UUID)
	return nil
}
