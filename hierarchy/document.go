// Package hierarchy turns directories of SBOM files into a declarative
// project tree and walks such trees against the catalog.
package hierarchy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

// Node is one project in the tree. Children keep their declared order
// so repeated runs process them identically.
type Node struct {
	Name            string   `json:"name" yaml:"name"`
	Version         string   `json:"version" yaml:"version"`
	CollectionLogic string   `json:"collection_logic,omitempty" yaml:"collection_logic,omitempty"`
	Classifier      string   `json:"classifier,omitempty" yaml:"classifier,omitempty"`
	Tags            []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	IsLatest        bool     `json:"is_latest,omitempty" yaml:"is_latest,omitempty"`
	SBOMFile        string   `json:"sbom_file,omitempty" yaml:"sbom_file,omitempty"`
	Children        []*Node  `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsCollection tells whether this node aggregates children instead of
// carrying a payload of its own.
func (it *Node) IsCollection() bool {
	switch it.CollectionLogic {
	case "AGGREGATE_LATEST_VERSION_CHILDREN", "AGGREGATE_DIRECT_CHILDREN":
		return true
	}
	return false
}

// Size counts this node and everything below it.
func (it *Node) Size() int {
	total := 1
	for _, child := range it.Children {
		total += child.Size()
	}
	return total
}

// Document maps top-level project names to their subtrees.
type Document map[string]*Node

// Roots returns the top-level names in stable sorted order.
func (it Document) Roots() []string {
	names := make([]string, 0, len(it))
	for name := range it {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isYaml(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadDocument reads a tree document, YAML or JSON by extension. Node
// names missing from the records are filled in from their map keys.
func LoadDocument(filename string) (Document, error) {
	blob, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading %s failed, reason: %w", filename, err)
	}
	document := Document{}
	if isYaml(filename) {
		err = yaml.Unmarshal(blob, &document)
	} else {
		err = json.Unmarshal(blob, &document)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s failed, reason: %w", filename, err)
	}
	for name, node := range document {
		if node == nil {
			delete(document, name)
			continue
		}
		if len(node.Name) == 0 {
			node.Name = name
		}
	}
	return document, nil
}

// Save writes the document next to where it came from, YAML or JSON by
// extension, so it can round-trip through LoadDocument unchanged.
func (it Document) Save(filename string) error {
	var blob []byte
	var err error
	if isYaml(filename) {
		blob, err = yaml.Marshal(it)
	} else {
		blob, err = json.MarshalIndent(it, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(filename, blob, 0o644)
}
