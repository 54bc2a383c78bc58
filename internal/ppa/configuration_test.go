package ppa_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ppactl/ppactl/internal/ppa"
)

func TestSanitizeFillsDefaults(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configuration ppa.Configuration
		expected      ppa.Configuration
	}{
		{
			name:          "empty_configuration",
			configuration: ppa.Configuration{},
			expected:      ppa.DefaultConfiguration(),
		},
		{
			name: "whitespace_values_fall_back",
			configuration: ppa.Configuration{
				Directory:  "   ",
				ArchiveURL: "\t",
			},
			expected: ppa.DefaultConfiguration(),
		},
		{
			name: "explicit_values_survive",
			configuration: ppa.Configuration{
				Directory:    " /custom/sources.d ",
				ArchiveURL:   "http://mirror.internal/",
				Component:    "testing",
				SentinelPath: "/custom/keep-writable",
				ForgeAPIURL:  "https://forge.internal",
				CIURL:        "https://jenkins.internal",
				Project:      "team/packages",
			},
			expected: ppa.Configuration{
				Directory:    "/custom/sources.d",
				ArchiveURL:   "http://mirror.internal/",
				Component:    "testing",
				SentinelPath: "/custom/keep-writable",
				ForgeAPIURL:  "https://forge.internal",
				CIURL:        "https://jenkins.internal",
				Project:      "team/packages",
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, testCase.configuration.Sanitize())
		})
	}
}

func TestDefaultConfigurationValuesCarryPrefix(testInstance *testing.T) {
	configurationValues := ppa.DefaultConfigurationValues("ppa")

	require.Equal(testInstance, ppa.DefaultConfiguration().Directory, configurationValues["ppa.directory"])
	require.Equal(testInstance, ppa.DefaultConfiguration().ArchiveURL, configurationValues["ppa.archive_url"])
	require.Equal(testInstance, ppa.DefaultConfiguration().Component, configurationValues["ppa.distribution_component"])
	require.Equal(testInstance, ppa.DefaultConfiguration().SentinelPath, configurationValues["ppa.sentinel_path"])
	require.Equal(testInstance, ppa.DefaultConfiguration().ForgeAPIURL, configurationValues["ppa.forge_api_url"])
	require.Equal(testInstance, ppa.DefaultConfiguration().CIURL, configurationValues["ppa.ci_url"])
	require.Equal(testInstance, ppa.DefaultConfiguration().Project, configurationValues["ppa.project"])
}
