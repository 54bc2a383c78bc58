package ppa

import "strings"

const (
	directoryConfigurationKeyConstant    = "directory"
	archiveURLConfigurationKeyConstant   = "archive_url"
	componentConfigurationKeyConstant    = "distribution_component"
	sentinelPathConfigurationKeyConstant = "sentinel_path"
	forgeAPIURLConfigurationKeyConstant  = "forge_api_url"
	ciURLConfigurationKeyConstant        = "ci_url"
	projectConfigurationKeyConstant      = "project"
	configurationKeySeparatorConstant    = "."

	defaultDirectoryConstant    = "/etc/apt/sources.list.d"
	defaultArchiveURLConstant   = "http://ppa.example.org/"
	defaultComponentConstant    = "main"
	defaultSentinelPathConstant = "/var/lib/ppactl/keep-writable"
	defaultForgeAPIURLConstant  = "https://api.github.com"
	defaultCIURLConstant        = "https://ci.example.org"
	defaultProjectConstant      = "example/packages"
)

// Configuration describes the persisted settings for repository management commands.
type Configuration struct {
	Directory    string `mapstructure:"directory"`
	ArchiveURL   string `mapstructure:"archive_url"`
	Component    string `mapstructure:"distribution_component"`
	SentinelPath string `mapstructure:"sentinel_path"`
	ForgeAPIURL  string `mapstructure:"forge_api_url"`
	CIURL        string `mapstructure:"ci_url"`
	Project      string `mapstructure:"project"`
}

// DefaultConfiguration returns the built-in settings used when no
// configuration file overrides them.
func DefaultConfiguration() Configuration {
	return Configuration{
		Directory:    defaultDirectoryConstant,
		ArchiveURL:   defaultArchiveURLConstant,
		Component:    defaultComponentConstant,
		SentinelPath: defaultSentinelPathConstant,
		ForgeAPIURL:  defaultForgeAPIURLConstant,
		CIURL:        defaultCIURLConstant,
		Project:      defaultProjectConstant,
	}
}

// Sanitize normalizes configured values and fills empty fields with defaults.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()

	sanitized := Configuration{
		Directory:    strings.TrimSpace(configuration.Directory),
		ArchiveURL:   strings.TrimSpace(configuration.ArchiveURL),
		Component:    strings.TrimSpace(configuration.Component),
		SentinelPath: strings.TrimSpace(configuration.SentinelPath),
		ForgeAPIURL:  strings.TrimSpace(configuration.ForgeAPIURL),
		CIURL:        strings.TrimSpace(configuration.CIURL),
		Project:      strings.TrimSpace(configuration.Project),
	}

	if len(sanitized.Directory) == 0 {
		sanitized.Directory = defaults.Directory
	}
	if len(sanitized.ArchiveURL) == 0 {
		sanitized.ArchiveURL = defaults.ArchiveURL
	}
	if len(sanitized.Component) == 0 {
		sanitized.Component = defaults.Component
	}
	if len(sanitized.SentinelPath) == 0 {
		sanitized.SentinelPath = defaults.SentinelPath
	}
	if len(sanitized.ForgeAPIURL) == 0 {
		sanitized.ForgeAPIURL = defaults.ForgeAPIURL
	}
	if len(sanitized.CIURL) == 0 {
		sanitized.CIURL = defaults.CIURL
	}
	if len(sanitized.Project) == 0 {
		sanitized.Project = defaults.Project
	}

	return sanitized
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		configurationKeyPrefix + configurationKeySeparatorConstant + directoryConfigurationKeyConstant:    defaults.Directory,
		configurationKeyPrefix + configurationKeySeparatorConstant + archiveURLConfigurationKeyConstant:   defaults.ArchiveURL,
		configurationKeyPrefix + configurationKeySeparatorConstant + componentConfigurationKeyConstant:    defaults.Component,
		configurationKeyPrefix + configurationKeySeparatorConstant + sentinelPathConfigurationKeyConstant: defaults.SentinelPath,
		configurationKeyPrefix + configurationKeySeparatorConstant + forgeAPIURLConfigurationKeyConstant:  defaults.ForgeAPIURL,
		configurationKeyPrefix + configurationKeySeparatorConstant + ciURLConfigurationKeyConstant:        defaults.CIURL,
		configurationKeyPrefix + configurationKeySeparatorConstant + projectConfigurationKeyConstant:      defaults.Project,
	}
}
