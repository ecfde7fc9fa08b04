package hierarchy

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dchest/siphash"

	"github.com/sbomtools/bomsync/common"
)

const (
	aggregateLatest = "AGGREGATE_LATEST_VERSION_CHILDREN"
	aggregateDirect = "AGGREGATE_DIRECT_CHILDREN"
	metaPrefix      = "meta_"
	fallbackVersion = "latest"
)

var (
	mergedPattern = regexp.MustCompile(`^(.+)_([^_]+)_merged_sbom\.json$`)
	leafPattern   = regexp.MustCompile(`^(.+)_([^_]+)_sbom\.json$`)
)

// sbomEntry is one parsed filename. Merged files only shape the tree;
// their bytes never travel anywhere.
type sbomEntry struct {
	merged  bool
	name    string
	version string
	path    string
}

// parseFilename splits one SBOM filename into name and version. The
// anchored patterns come first; underscore stems ending in "sbom" get
// a positional split as fallback. Unparseable names are reported as
// not ok, never as a failure of the whole scan.
func parseFilename(filename string) (entry sbomEntry, ok bool) {
	base := filepath.Base(filename)
	if match := mergedPattern.FindStringSubmatch(base); match != nil {
		return sbomEntry{merged: true, name: match[1], version: match[2], path: filename}, true
	}
	if match := leafPattern.FindStringSubmatch(base); match != nil {
		return sbomEntry{name: match[1], version: match[2], path: filename}, true
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.Split(stem, "_")
	if len(parts) < 2 || parts[len(parts)-1] != "sbom" {
		return sbomEntry{}, false
	}
	parts = parts[:len(parts)-1]
	merged := false
	if parts[len(parts)-1] == "merged" {
		merged = true
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return sbomEntry{}, false
	}
	if len(parts) == 1 {
		return sbomEntry{merged: merged, name: parts[0], version: "unknown", path: filename}, true
	}
	return sbomEntry{
		merged:  merged,
		name:    strings.Join(parts[:len(parts)-1], "_"),
		version: parts[len(parts)-1],
		path:    filename,
	}, true
}

// Builder scans a directory tree of SBOM files into a Document. Pure
// filesystem work, no network.
type Builder struct {
	root          string
	absolutePaths bool
}

// NewBuilder scans below root. With absolutePaths the emitted payload
// paths are absolute (for consumption in the same process); without,
// they stay relative to the scan root's parent (for emitted documents).
func NewBuilder(root string, absolutePaths bool) *Builder {
	return &Builder{root: root, absolutePaths: absolutePaths}
}

// Build produces the tree document for the scan root.
func (it *Builder) Build() (Document, error) {
	info, err := os.Stat(it.root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s failed, reason: %w", it.root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", it.root)
	}
	nodes, err := it.buildDirectory(it.root, "")
	if err != nil {
		return nil, err
	}
	document := Document{}
	for _, node := range nodes {
		document[node.Name] = node
	}
	return document, nil
}

type directoryScan struct {
	merged []sbomEntry
	leaves []sbomEntry
	dirs   []string
}

func (it *Builder) scan(directory string) (*directoryScan, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s failed, reason: %w", directory, err)
	}
	result := new(directoryScan)
	for _, entry := range entries {
		full := filepath.Join(directory, entry.Name())
		if entry.IsDir() {
			result.dirs = append(result.dirs, full)
			continue
		}
		if !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		parsed, ok := parseFilename(full)
		if !ok {
			common.Warning("Skipping %s: filename does not follow the <name>_<version>_sbom.json shape.", full)
			continue
		}
		if parsed.merged {
			result.merged = append(result.merged, parsed)
		} else {
			result.leaves = append(result.leaves, parsed)
		}
	}
	sort.Slice(result.merged, func(left, right int) bool {
		return result.merged[left].path < result.merged[right].path
	})
	sort.Slice(result.leaves, func(left, right int) bool {
		return result.leaves[left].path < result.leaves[right].path
	})
	sort.Strings(result.dirs)
	return result, nil
}

// buildDirectory yields the nodes one directory contributes. A merged
// SBOM produces a three-level subtree; without one, the directory
// collapses into a single synthesized collection.
func (it *Builder) buildDirectory(directory, inheritedVersion string) ([]*Node, error) {
	found, err := it.scan(directory)
	if err != nil {
		return nil, err
	}
	if len(found.merged) > 0 {
		nodes := make([]*Node, 0, len(found.merged))
		for _, merged := range found.merged {
			subtree, err := it.mergedSubtree(merged, found)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, subtree)
		}
		return nodes, nil
	}
	version := inheritedVersion
	if len(version) == 0 {
		version = fallbackVersion
	}
	collection := &Node{
		Name:            metaPrefix + filepath.Base(directory),
		Version:         version,
		CollectionLogic: aggregateLatest,
		Classifier:      "APPLICATION",
	}
	children, err := it.childDirectories(found.dirs, version)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		children = it.leafNodes(found.leaves, collection.Name)
	}
	if len(children) > 0 {
		collection.Children = children
	}
	return []*Node{collection}, nil
}

func (it *Builder) mergedSubtree(merged sbomEntry, found *directoryScan) (*Node, error) {
	versioned := &Node{
		Name:            fmt.Sprintf("%s_%s", merged.name, merged.version),
		Version:         merged.version,
		CollectionLogic: aggregateDirect,
		Classifier:      "APPLICATION",
	}
	children, err := it.childDirectories(found.dirs, merged.version)
	if err != nil {
		return nil, err
	}
	children = append(children, it.leafNodes(found.leaves, versioned.Name)...)
	if len(children) > 0 {
		versioned.Children = children
	}
	return &Node{
		Name:            metaPrefix + merged.name,
		Version:         merged.version,
		CollectionLogic: aggregateLatest,
		Classifier:      "APPLICATION",
		Children:        []*Node{versioned},
	}, nil
}

func (it *Builder) childDirectories(directories []string, version string) ([]*Node, error) {
	nodes := []*Node{}
	for _, directory := range directories {
		subtrees, err := it.buildDirectory(directory, version)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, subtrees...)
	}
	return nodes, nil
}

func (it *Builder) leafNodes(leaves []sbomEntry, parentName string) []*Node {
	nodes := make([]*Node, 0, len(leaves))
	for _, leaf := range leaves {
		nodes = append(nodes, &Node{
			Name:       it.leafName(leaf, parentName),
			Version:    leaf.version,
			Classifier: "APPLICATION",
			SBOMFile:   it.payloadPath(leaf.path),
		})
	}
	return nodes
}

// leafName keeps synthesized names stable across runs: the slug comes
// from the enclosing parent's name when one is known, else from a
// short hash of the file's relative path.
func (it *Builder) leafName(leaf sbomEntry, parentName string) string {
	slug := slugify(parentName)
	if len(slug) == 0 {
		slug = it.pathHash(leaf.path)
	}
	return fmt.Sprintf("%s-%s", leaf.name, slug)
}

func slugify(name string) string {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	cleaned = strings.ReplaceAll(cleaned, " ", "-")
	return strings.ReplaceAll(cleaned, "_", "-")
}

// Fixed keys: the hash must agree between independent invocations.
const (
	hashKeyLow  = 0x626f6d73796e6331
	hashKeyHigh = 0x626f6d73796e6332
)

func (it *Builder) pathHash(path string) string {
	relative, err := filepath.Rel(it.root, path)
	if err != nil {
		relative = path
	}
	relative = filepath.ToSlash(relative)
	sum := siphash.Hash(hashKeyLow, hashKeyHigh, []byte(relative))
	return fmt.Sprintf("%08x", uint32(sum))
}

func (it *Builder) payloadPath(path string) string {
	if it.absolutePaths {
		absolute, err := filepath.Abs(path)
		if err == nil {
			return absolute
		}
		return path
	}
	parent := filepath.Dir(it.root)
	relative, err := filepath.Rel(parent, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(relative)
}
