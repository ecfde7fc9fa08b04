package config

import (
	"testing"

	"github.com/sbomtools/bomsync/hamlet"
)

func TestCanLoadSettingsFromEnvironment(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	t.Setenv("INPUT_URL", "https://dtrack.example.com/")
	t.Setenv("INPUT_API_KEY", "odt_secret_key_42")
	t.Setenv("INPUT_PROJECT_NAME", "web-server")
	t.Setenv("INPUT_PROJECT_VERSION", "2.1.0")
	t.Setenv("INPUT_TAGS", "backend, team-a ,")
	t.Setenv("INPUT_DRY_RUN", "true")

	sut := Load()
	must_be.Equal("https://dtrack.example.com", sut.URL)
	must_be.Equal("odt_secret_key_42", sut.APIKey)
	must_be.Equal("web-server", sut.ProjectName)
	must_be.Equal("2.1.0", sut.ProjectVersion)
	must_be.Equal([]string{"backend", "team-a"}, sut.TagList())
	must_be.True(sut.DryRun)
	must_be.True(sut.AutoDetectLatest)
	must_be.Equal("AGGREGATE_LATEST_VERSION_CHILDREN", sut.ParentCollectionLogic)
}

func TestEndpointCarriesApiPathExactlyOnce(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	sut := &Settings{URL: "https://dtrack.example.com"}
	must_be.Equal("https://dtrack.example.com/api/v1", sut.Endpoint())
	sut.URL = "https://dtrack.example.com/api/v1/"
	must_be.Equal("https://dtrack.example.com/api/v1", sut.Endpoint())
}

func TestValidationDemandsUrlAndKey(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	sut := &Settings{}
	err := sut.Validate()
	wont_be.Nil(err)
	must_be.Text("required setting INPUT_URL is missing: the catalog service base URL", err)

	sut.URL = "https://dtrack.example.com"
	err = sut.Validate()
	wont_be.Nil(err)
	_, ok := err.(*ConfigurationError)
	must_be.True(ok)

	sut.APIKey = "odt_key"
	must_be.Nil(sut.Validate())
}

func TestDryRunNeedsNoCredentials(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	sut := &Settings{DryRun: true}
	must_be.Nil(sut.Validate())
}

func TestUploadValidationDemandsOneSource(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	sut := &Settings{URL: "https://dtrack.example.com", APIKey: "odt_key"}
	wont_be.Nil(sut.ValidateForUpload())
	sut.SBOMDir = "/tmp/payloads"
	must_be.Nil(sut.ValidateForUpload())
}

func TestNameDecoration(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	sut := &Settings{NamePrefix: "acme-", NameSuffix: "-prod"}
	must_be.Equal("acme-web-prod", sut.DecorateName("web"))
	must_be.Equal("plain", (&Settings{}).DecorateName("plain"))
}

func TestSecretMasking(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	must_be.Equal("(unset)", masked(""))
	must_be.Equal("****", masked("abcd"))
	must_be.Equal("od*****42", masked("odt_key42"))
}
