package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testVersionConstant               = "v9.9.9"
	testConfigurationFileNameConstant = "config.yaml"
	testConfigurationContentConstant  = `common:
  log_level: error
tools:
  sync:
    directory: /srv/repos
    concurrency: 3
    command_timeout: 5m
  monitor:
    format: yaml
`
)

func newTestApplication(testInstance *testing.T, arguments ...string) (*Application, *bytes.Buffer) {
	testInstance.Helper()
	testInstance.Setenv("HOME", testInstance.TempDir())

	application := NewApplication()
	application.versionResolver = func(context.Context) string {
		return testVersionConstant
	}

	if arguments == nil {
		arguments = []string{}
	}

	outputBuffer := &bytes.Buffer{}
	application.rootCommand.SetOut(outputBuffer)
	application.rootCommand.SetErr(outputBuffer)
	application.rootCommand.SetArgs(arguments)
	return application, outputBuffer
}

func TestApplicationRegistersCommands(testInstance *testing.T) {
	application, _ := newTestApplication(testInstance)

	registered := make([]string, 0)
	for _, command := range application.rootCommand.Commands() {
		registered = append(registered, command.Name())
	}
	require.Subset(testInstance, registered, []string{"monitor", "sync", "version"})
}

func TestApplicationVersionOutput(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
	}{
		{name: "subcommand", arguments: []string{"version"}},
		{name: "flag", arguments: []string{"--version"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			application, outputBuffer := newTestApplication(testInstance, testCase.arguments...)
			require.NoError(testInstance, application.Execute())
			require.Equal(testInstance, "gh-monitor version: v9.9.9\n", outputBuffer.String())
		})
	}
}

func TestApplicationWithoutArgumentsPrintsHelp(testInstance *testing.T) {
	application, outputBuffer := newTestApplication(testInstance)
	require.NoError(testInstance, application.Execute())
	require.Contains(testInstance, outputBuffer.String(), "monitor")
	require.Contains(testInstance, outputBuffer.String(), "sync")
}

func TestApplicationEmbeddedDefaults(testInstance *testing.T) {
	application, _ := newTestApplication(testInstance, "version")
	require.NoError(testInstance, application.Execute())

	configuration := application.configuration
	require.Equal(testInstance, "warn", configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", configuration.Common.LogFormat)
	require.Equal(testInstance, "reports", configuration.Tools.Monitor.OutputDirectory)
	require.Equal(testInstance, 30, configuration.Tools.Monitor.Days)
	require.Equal(testInstance, "all", configuration.Tools.Monitor.Format)
	require.Equal(testInstance, 20, configuration.Tools.Monitor.CIRunLimit)
	require.Equal(testInstance, 30*time.Minute, configuration.Tools.Monitor.CommandTimeout)
	require.Equal(testInstance, "~/git", configuration.Tools.Sync.Directory)
	require.Equal(testInstance, "dirty", configuration.Tools.Sync.UntrackedFiles)
	require.Equal(testInstance, "ssh", configuration.Tools.Sync.CloneProtocol)
	require.Equal(testInstance, 1, configuration.Tools.Sync.Concurrency)
	require.Equal(testInstance, 60*time.Minute, configuration.Tools.Sync.CommandTimeout)
	require.Empty(testInstance, application.configurationMetadata.ConfigFileUsed)
	require.False(testInstance, application.humanReadableLoggingEnabled())
}

func TestApplicationConfigurationLayers(testInstance *testing.T) {
	configurationFilePath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(testConfigurationContentConstant), 0o600))
	testInstance.Setenv("GHMONITOR_TOOLS_MONITOR_DAYS", "7")

	application, _ := newTestApplication(testInstance, "--config", configurationFilePath, "--log-format", "console", "version")
	require.NoError(testInstance, application.Execute())

	configuration := application.configuration
	require.Equal(testInstance, configurationFilePath, application.configurationMetadata.ConfigFileUsed)
	require.Equal(testInstance, "error", configuration.Common.LogLevel)
	require.Equal(testInstance, "console", configuration.Common.LogFormat)
	require.True(testInstance, application.humanReadableLoggingEnabled())
	require.Equal(testInstance, "/srv/repos", configuration.Tools.Sync.Directory)
	require.Equal(testInstance, 3, configuration.Tools.Sync.Concurrency)
	require.Equal(testInstance, 5*time.Minute, configuration.Tools.Sync.CommandTimeout)
	require.Equal(testInstance, "yaml", configuration.Tools.Monitor.Format)
	require.Equal(testInstance, 7, configuration.Tools.Monitor.Days)
	require.Equal(testInstance, "ssh", configuration.Tools.Sync.CloneProtocol)
}

func TestApplicationConfigurationFailures(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedError string
	}{
		{
			name:          "invalid_log_level",
			arguments:     []string{"--log-level", "verbose", "version"},
			expectedError: "unable to create logger",
		},
		{
			name:          "missing_configuration_file",
			arguments:     []string{"--config", "/nonexistent/gh-monitor.yaml", "version"},
			expectedError: "unable to load configuration",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			application, outputBuffer := newTestApplication(testInstance, testCase.arguments...)
			executionError := application.Execute()
			require.Error(testInstance, executionError)
			require.Contains(testInstance, executionError.Error(), testCase.expectedError)
			require.NotContains(testInstance, outputBuffer.String(), testVersionConstant)
		})
	}
}

func TestResolveVersionPrefersStampedVersion(testInstance *testing.T) {
	originalVersion := Version
	testInstance.Cleanup(func() {
		Version = originalVersion
	})

	Version = " v1.4.0 "
	require.Equal(testInstance, "v1.4.0", ResolveVersion(context.Background()))

	Version = ""
	require.NotEmpty(testInstance, ResolveVersion(context.Background()))
}
