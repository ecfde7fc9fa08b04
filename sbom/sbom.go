// Package sbom reads CycloneDX documents just deeply enough to name
// the project they describe, and finds payload files on disk.
package sbom

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sbomtools/bomsync/common"
)

// UnknownVersion marks payloads whose document names no version.
const UnknownVersion = "unknown"

// Metadata is the project identity carried inside one SBOM document.
type Metadata struct {
	Name        string
	Version     string
	Description string
}

type document struct {
	Metadata struct {
		Component struct {
			Name        string `json:"name"`
			Version     string `json:"version"`
			Description string `json:"description"`
		} `json:"component"`
	} `json:"metadata"`
}

// ExtractMetadata pulls the subject component out of one CycloneDX
// file. A document without one still yields usable identity: the file
// stem as name and "unknown" as version.
func ExtractMetadata(filename string) (Metadata, error) {
	blob, err := os.ReadFile(filename)
	if err != nil {
		return Metadata{}, fmt.Errorf("reading %s failed, reason: %w", filename, err)
	}
	parsed := new(document)
	err = json.Unmarshal(blob, parsed)
	if err != nil {
		return Metadata{}, fmt.Errorf("%s is not valid JSON, reason: %w", filename, err)
	}
	result := Metadata{
		Name:        strings.TrimSpace(parsed.Metadata.Component.Name),
		Version:     strings.TrimSpace(parsed.Metadata.Component.Version),
		Description: strings.TrimSpace(parsed.Metadata.Component.Description),
	}
	if len(result.Name) == 0 {
		result.Name = stem(filename)
		common.Debug("Document %s names no component, using %q.", filename, result.Name)
	}
	if len(result.Version) == 0 {
		result.Version = UnknownVersion
	}
	return result, nil
}

func stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DiscoverDirectory lists the JSON documents directly inside one
// directory, sorted by name for stable processing order.
func DiscoverDirectory(directory string) ([]string, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s failed, reason: %w", directory, err)
	}
	found := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		found = append(found, filepath.Join(directory, entry.Name()))
	}
	sort.Strings(found)
	return found, nil
}

// ReadFileList reads one path per line from a manifest file. Blank
// lines and "#" comments are skipped; a listed path that does not
// exist fails the whole read.
func ReadFileList(filename string) ([]string, error) {
	source, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("reading list %s failed, reason: %w", filename, err)
	}
	defer source.Close()
	found := []string{}
	scanner := bufio.NewScanner(source)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		if _, err := os.Stat(line); err != nil {
			return nil, fmt.Errorf("listed file %s is not available, reason: %w", line, err)
		}
		found = append(found, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return found, nil
}
