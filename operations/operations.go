// Package operations wires settings, catalog access and payload
// transfer into the upload modes one run can take.
package operations

import (
	"fmt"

	"github.com/sbomtools/bomsync/catalog"
	"github.com/sbomtools/bomsync/common"
	"github.com/sbomtools/bomsync/config"
)

// ProjectStore is the reconciliation surface the modes need.
type ProjectStore interface {
	Upsert(project *catalog.Project, autoDetect bool) error
	Delete(name, version string) error
}

// PayloadSender transfers SBOM bytes.
type PayloadSender interface {
	Send(projectUUID, filename string) catalog.UploadResult
	SendAutoCreate(filename, name, version string) catalog.UploadResult
}

// Services is the assembled toolbox of one run. In dry-run mode the
// api field stays nil: nothing may contact the remote service.
type Services struct {
	Settings *config.Settings
	Projects ProjectStore
	Boms     PayloadSender

	api catalog.API
}

// NewServices validates the settings and builds the toolbox around
// them.
func NewServices(settings *config.Settings) (*Services, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	options := catalog.Options{
		DryRun:        settings.DryRun,
		DeleteOnMatch: settings.DeleteOnSuffixMatch,
		DeletePattern: settings.DeleteSuffixPattern,
	}
	var api catalog.API
	var client *catalog.Client
	if !settings.DryRun {
		var err error
		client, err = catalog.NewClient(settings.Endpoint(), settings.APIKey)
		if err != nil {
			return nil, err
		}
		api = client
	}
	return &Services{
		Settings: settings,
		Projects: catalog.NewDirectory(api, options),
		Boms:     catalog.NewBomService(client, settings.DryRun),
		api:      api,
	}, nil
}

// TestConnection verifies reachability and the credential.
func (it *Services) TestConnection() error {
	if it.Settings.DryRun {
		common.Log("[dry run] Skipping connection test.")
		return nil
	}
	err := it.api.Ping()
	if err != nil {
		return err
	}
	common.Log("Connection to %s verified.", it.Settings.Endpoint())
	return nil
}

// resolveParent turns the configured parent reference into a UUID. An
// explicit UUID wins; a parent name goes through lookup.
func (it *Services) resolveParent() (string, error) {
	if len(it.Settings.ParentUUID) > 0 {
		return it.Settings.ParentUUID, nil
	}
	if len(it.Settings.ParentName) == 0 {
		return "", nil
	}
	if it.Settings.DryRun {
		return catalog.DryRunUUID, nil
	}
	found, err := it.api.Lookup(it.Settings.ParentName, it.Settings.ParentVersion)
	if err != nil {
		return "", err
	}
	if found == nil {
		return "", fmt.Errorf("parent project %s@%s does not exist", it.Settings.ParentName, it.Settings.ParentVersion)
	}
	return found.UUID, nil
}

// Summary is the run-level outcome report.
type Summary struct {
	Succeeded int
	Failed    int
}

func (it Summary) String() string {
	return fmt.Sprintf("%d successful, %d failed", it.Succeeded, it.Failed)
}

// Success means the run achieved at least something and lost nothing
// it attempted exclusively.
func (it Summary) Success() bool {
	return it.Succeeded > 0
}
