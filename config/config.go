// Package config collects run settings from the environment. Every
// setting lives under the INPUT_ prefix so the tool drops straight
// into CI pipelines that pass inputs as environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sbomtools/bomsync/common"
)

// ConfigurationError means a required setting is missing. Fatal before
// any remote call is attempted.
type ConfigurationError struct {
	Setting string
	Hint    string
}

func (it *ConfigurationError) Error() string {
	message := fmt.Sprintf("required setting %s is missing", it.Setting)
	if len(it.Hint) > 0 {
		message += ": " + it.Hint
	}
	return message
}

// Settings is everything one run needs. Values come from INPUT_*
// environment variables, optionally preloaded from a local .env file.
type Settings struct {
	URL    string
	APIKey string

	SBOMFile     string
	SBOMList     string
	SBOMDir      string
	HierarchyDir string

	ProjectName        string
	ProjectVersion     string
	ProjectDescription string
	ProjectUUID        string

	NamePrefix string
	NameSuffix string

	Classifier      string
	CollectionLogic string

	ParentName            string
	ParentVersion         string
	ParentUUID            string
	ParentCollectionLogic string

	Tags     string
	IsLatest bool

	AutoCreate       bool
	AutoDetectLatest bool

	DryRun bool

	DeleteOnSuffixMatch bool
	DeleteSuffixPattern string
}

// Load reads the environment into Settings. A .env file in the working
// directory is picked up when present, never required.
func Load() *Settings {
	err := godotenv.Load()
	if err == nil {
		common.Debug("Loaded settings from local .env file.")
	}
	environment := viper.New()
	environment.SetEnvPrefix("input")
	environment.AutomaticEnv()
	environment.SetDefault("auto_detect_latest", true)
	environment.SetDefault("parent_collection_logic", "AGGREGATE_LATEST_VERSION_CHILDREN")
	return &Settings{
		URL:                    strings.TrimRight(strings.TrimSpace(environment.GetString("url")), "/"),
		APIKey:                 strings.TrimSpace(environment.GetString("api_key")),
		SBOMFile:               environment.GetString("sbom_file"),
		SBOMList:               environment.GetString("sbom_list"),
		SBOMDir:                environment.GetString("sbom_dir"),
		HierarchyDir:           environment.GetString("hierarchy_dir"),
		ProjectName:            strings.TrimSpace(environment.GetString("project_name")),
		ProjectVersion:         strings.TrimSpace(environment.GetString("project_version")),
		ProjectDescription:     environment.GetString("project_description"),
		ProjectUUID:            strings.TrimSpace(environment.GetString("project_uuid")),
		NamePrefix:             environment.GetString("name_prefix"),
		NameSuffix:             environment.GetString("name_suffix"),
		Classifier:             environment.GetString("classifier"),
		CollectionLogic:        environment.GetString("collection_logic"),
		ParentName:             strings.TrimSpace(environment.GetString("parent_name")),
		ParentVersion:          strings.TrimSpace(environment.GetString("parent_version")),
		ParentUUID:             strings.TrimSpace(environment.GetString("parent_uuid")),
		ParentCollectionLogic:  environment.GetString("parent_collection_logic"),
		Tags:                   environment.GetString("tags"),
		IsLatest:               environment.GetBool("is_latest"),
		AutoCreate:             environment.GetBool("auto_create"),
		AutoDetectLatest:       environment.GetBool("auto_detect_latest"),
		DryRun:                 environment.GetBool("dry_run"),
		DeleteOnSuffixMatch:    environment.GetBool("delete_on_suffix_match"),
		DeleteSuffixPattern:    environment.GetString("delete_suffix_pattern"),
	}
}

// Endpoint is the service URL normalized to carry the API path exactly
// once.
func (it *Settings) Endpoint() string {
	nice := strings.TrimRight(it.URL, "/")
	if strings.HasSuffix(nice, common.DefaultApiPath) {
		return nice
	}
	return nice + common.DefaultApiPath
}

// Validate checks the settings every remote-touching run needs. Dry
// runs get a pass: they contact nothing.
func (it *Settings) Validate() error {
	if it.DryRun {
		return nil
	}
	if len(it.URL) == 0 {
		return &ConfigurationError{Setting: "INPUT_URL", Hint: "the catalog service base URL"}
	}
	if len(it.APIKey) == 0 {
		return &ConfigurationError{Setting: "INPUT_API_KEY", Hint: "an API key with project management permissions"}
	}
	return nil
}

// ValidateForUpload additionally demands one payload source.
func (it *Settings) ValidateForUpload() error {
	if err := it.Validate(); err != nil {
		return err
	}
	switch {
	case len(it.HierarchyDir) > 0:
	case len(it.SBOMFile) > 0:
	case len(it.SBOMList) > 0:
	case len(it.SBOMDir) > 0:
	default:
		return &ConfigurationError{
			Setting: "INPUT_SBOM_FILE",
			Hint:    "set one of INPUT_SBOM_FILE, INPUT_SBOM_LIST, INPUT_SBOM_DIR or INPUT_HIERARCHY_DIR",
		}
	}
	return nil
}

// DecorateName applies the configured prefix and suffix to one project
// name.
func (it *Settings) DecorateName(name string) string {
	return it.NamePrefix + name + it.NameSuffix
}

// TagList splits the comma-separated tag setting.
func (it *Settings) TagList() []string {
	if len(strings.TrimSpace(it.Tags)) == 0 {
		return nil
	}
	parts := strings.Split(it.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if len(tag) > 0 {
			tags = append(tags, tag)
		}
	}
	return tags
}

func masked(secret string) string {
	if len(secret) == 0 {
		return "(unset)"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:2] + strings.Repeat("*", len(secret)-4) + secret[len(secret)-2:]
}

// Dump logs the effective settings with the credential masked.
func (it *Settings) Dump() {
	common.Stdout("url                    %q\n", it.URL)
	common.Stdout("api key                %s\n", masked(it.APIKey))
	common.Stdout("sbom file              %q\n", it.SBOMFile)
	common.Stdout("sbom list              %q\n", it.SBOMList)
	common.Stdout("sbom directory         %q\n", it.SBOMDir)
	common.Stdout("hierarchy directory    %q\n", it.HierarchyDir)
	common.Stdout("project name           %q\n", it.ProjectName)
	common.Stdout("project version        %q\n", it.ProjectVersion)
	common.Stdout("parent                 %q @ %q (uuid: %q)\n", it.ParentName, it.ParentVersion, it.ParentUUID)
	common.Stdout("parent logic           %q\n", it.ParentCollectionLogic)
	common.Stdout("classifier             %q\n", it.Classifier)
	common.Stdout("collection logic       %q\n", it.CollectionLogic)
	common.Stdout("name decoration        %q + name + %q\n", it.NamePrefix, it.NameSuffix)
	common.Stdout("tags                   %q\n", it.Tags)
	common.Stdout("auto detect latest     %v\n", it.AutoDetectLatest)
	common.Stdout("delete on suffix match %v (pattern: %q)\n", it.DeleteOnSuffixMatch, it.DeleteSuffixPattern)
	common.Stdout("dry run                %v\n", it.DryRun)
}
