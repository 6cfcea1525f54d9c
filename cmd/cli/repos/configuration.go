package repos

import (
	"strings"
	"time"

	"github.com/temirov/ghmonitor/internal/monitor"
	"github.com/temirov/ghmonitor/internal/report"
)

const (
	monitorConfigurationKeyConstant         = "monitor"
	syncConfigurationKeyConstant            = "sync"
	configurationKeySeparatorConstant       = "."
	outputDirectoryConfigurationKeyConstant = "output_dir"
	daysConfigurationKeyConstant            = "days"
	formatConfigurationKeyConstant          = "format"
	ciRunLimitConfigurationKeyConstant      = "ci_run_limit"
	commandTimeoutConfigurationKeyConstant  = "command_timeout"
	directoryConfigurationKeyConstant       = "directory"
	untrackedFilesConfigurationKeyConstant  = "untracked_files"
	cloneProtocolConfigurationKeyConstant   = "clone_protocol"
	concurrencyConfigurationKeyConstant     = "concurrency"
	sinceDaysConfigurationKeyConstant       = "since_days"
	defaultOutputDirectoryConstant          = "reports"
	defaultCIRunLimitConstant               = 20
	defaultMonitorCommandTimeoutConstant    = 30 * time.Minute
	defaultSyncDirectoryConstant            = "~/git"
	defaultUntrackedFilesConstant           = "dirty"
	defaultCloneProtocolConstant            = "ssh"
	defaultConcurrencyConstant              = 1
	defaultSyncCommandTimeoutConstant       = 60 * time.Minute
)

// ToolsConfiguration captures the command configuration sections.
type ToolsConfiguration struct {
	Monitor MonitorConfiguration `mapstructure:"monitor"`
	Sync    SyncConfiguration    `mapstructure:"sync"`
}

// MonitorConfiguration describes configuration values for the monitor command.
type MonitorConfiguration struct {
	OutputDirectory string        `mapstructure:"output_dir"`
	Days            int           `mapstructure:"days"`
	Format          string        `mapstructure:"format"`
	CIRunLimit      int           `mapstructure:"ci_run_limit"`
	CommandTimeout  time.Duration `mapstructure:"command_timeout"`
}

// SyncConfiguration describes configuration values for the sync command.
type SyncConfiguration struct {
	Directory      string        `mapstructure:"directory"`
	UntrackedFiles string        `mapstructure:"untracked_files"`
	CloneProtocol  string        `mapstructure:"clone_protocol"`
	Concurrency    int           `mapstructure:"concurrency"`
	SinceDays      int           `mapstructure:"since_days"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
}

// DefaultToolsConfiguration returns baseline configuration values for the commands.
func DefaultToolsConfiguration() ToolsConfiguration {
	return ToolsConfiguration{
		Monitor: MonitorConfiguration{
			OutputDirectory: defaultOutputDirectoryConstant,
			Days:            monitor.DefaultDays,
			Format:          string(report.FormatAll),
			CIRunLimit:      defaultCIRunLimitConstant,
			CommandTimeout:  defaultMonitorCommandTimeoutConstant,
		},
		Sync: SyncConfiguration{
			Directory:      defaultSyncDirectoryConstant,
			UntrackedFiles: defaultUntrackedFilesConstant,
			CloneProtocol:  defaultCloneProtocolConstant,
			Concurrency:    defaultConcurrencyConstant,
			SinceDays:      0,
			CommandTimeout: defaultSyncCommandTimeoutConstant,
		},
	}
}

// DefaultConfigurationValues produces Viper defaults for the commands.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultToolsConfiguration()
	monitorKey := joinConfigurationKey(rootKey, monitorConfigurationKeyConstant)
	syncKey := joinConfigurationKey(rootKey, syncConfigurationKeyConstant)
	return map[string]any{
		joinConfigurationKey(monitorKey, outputDirectoryConfigurationKeyConstant): defaults.Monitor.OutputDirectory,
		joinConfigurationKey(monitorKey, daysConfigurationKeyConstant):            defaults.Monitor.Days,
		joinConfigurationKey(monitorKey, formatConfigurationKeyConstant):          defaults.Monitor.Format,
		joinConfigurationKey(monitorKey, ciRunLimitConfigurationKeyConstant):      defaults.Monitor.CIRunLimit,
		joinConfigurationKey(monitorKey, commandTimeoutConfigurationKeyConstant):  defaults.Monitor.CommandTimeout,
		joinConfigurationKey(syncKey, directoryConfigurationKeyConstant):          defaults.Sync.Directory,
		joinConfigurationKey(syncKey, untrackedFilesConfigurationKeyConstant):     defaults.Sync.UntrackedFiles,
		joinConfigurationKey(syncKey, cloneProtocolConfigurationKeyConstant):      defaults.Sync.CloneProtocol,
		joinConfigurationKey(syncKey, concurrencyConfigurationKeyConstant):        defaults.Sync.Concurrency,
		joinConfigurationKey(syncKey, sinceDaysConfigurationKeyConstant):          defaults.Sync.SinceDays,
		joinConfigurationKey(syncKey, commandTimeoutConfigurationKeyConstant):     defaults.Sync.CommandTimeout,
	}
}

// sanitize trims monitor values and restores defaults for unusable ones. Day range validation is left to
// the monitor service so that out-of-range values are reported rather than silently replaced.
func (configuration MonitorConfiguration) sanitize() MonitorConfiguration {
	defaults := DefaultToolsConfiguration().Monitor
	sanitized := configuration

	sanitized.OutputDirectory = expandPath(configuration.OutputDirectory)
	if len(sanitized.OutputDirectory) == 0 {
		sanitized.OutputDirectory = defaults.OutputDirectory
	}
	sanitized.Format = strings.TrimSpace(configuration.Format)
	if len(sanitized.Format) == 0 {
		sanitized.Format = defaults.Format
	}
	if sanitized.CIRunLimit <= 0 {
		sanitized.CIRunLimit = defaults.CIRunLimit
	}
	if sanitized.CommandTimeout < 0 {
		sanitized.CommandTimeout = 0
	}
	return sanitized
}

// sanitize trims sync values and restores defaults for unusable numbers.
func (configuration SyncConfiguration) sanitize() SyncConfiguration {
	defaults := DefaultToolsConfiguration().Sync
	sanitized := configuration

	sanitized.Directory = expandPath(configuration.Directory)
	if len(sanitized.Directory) == 0 {
		sanitized.Directory = expandPath(defaults.Directory)
	}
	sanitized.UntrackedFiles = strings.ToLower(strings.TrimSpace(configuration.UntrackedFiles))
	if len(sanitized.UntrackedFiles) == 0 {
		sanitized.UntrackedFiles = defaults.UntrackedFiles
	}
	sanitized.CloneProtocol = strings.ToLower(strings.TrimSpace(configuration.CloneProtocol))
	if len(sanitized.CloneProtocol) == 0 {
		sanitized.CloneProtocol = defaults.CloneProtocol
	}
	if sanitized.Concurrency < defaultConcurrencyConstant {
		sanitized.Concurrency = defaults.Concurrency
	}
	if sanitized.SinceDays < 0 {
		sanitized.SinceDays = 0
	}
	if sanitized.CommandTimeout < 0 {
		sanitized.CommandTimeout = 0
	}
	return sanitized
}

func joinConfigurationKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}
