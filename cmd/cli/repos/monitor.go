package repos

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/temirov/ghmonitor/internal/dependencies"
	"github.com/temirov/ghmonitor/internal/monitor"
	"github.com/temirov/ghmonitor/internal/report"
	"github.com/temirov/ghmonitor/internal/ui"
	flagutils "github.com/temirov/ghmonitor/internal/utils/flags"
)

const (
	monitorUseConstant                   = "monitor OWNER"
	monitorShortDescriptionConstant      = "Collect repository health metrics and write reports"
	monitorLongDescriptionConstant       = "monitor inspects every repository of OWNER pushed within the activity window and writes TOON, Markdown, HTML, list, and YAML reports."
	monitorOutputFlagNameConstant        = "output"
	monitorOutputFlagShorthandConstant   = "o"
	monitorOutputFlagDescriptionConstant = "Directory receiving the generated reports"
	monitorDaysFlagNameConstant          = "days"
	monitorDaysFlagShorthandConstant     = "d"
	monitorDaysFlagDescriptionConstant   = "Monitor repositories pushed within the last N days (1-365)"
	monitorFormatFlagNameConstant        = "format"
	monitorFormatFlagShorthandConstant   = "f"
	monitorFormatFlagDescriptionConstant = "report format to generate"
	monitorCIRunsFlagNameConstant        = "ci-runs"
	monitorCIRunsFlagDescriptionConstant = "Number of recent workflow runs analyzed per repository"
	monitorStartMessageTemplateConstant  = "Monitoring repositories for %s...\n"
)

// MonitorCommandBuilder assembles the monitor command.
type MonitorCommandBuilder struct {
	LoggerProvider               LoggerProvider
	CommandExecutor              dependencies.CommandExecutor
	FileSystem                   afero.Fs
	Clock                        monitor.Clock
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() MonitorConfiguration
}

// Build constructs the monitor command.
func (builder *MonitorCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   monitorUseConstant,
		Short: monitorShortDescriptionConstant,
		Long:  monitorLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}

	defaults := DefaultToolsConfiguration().Monitor
	command.Flags().StringP(monitorOutputFlagNameConstant, monitorOutputFlagShorthandConstant, defaults.OutputDirectory, monitorOutputFlagDescriptionConstant)
	command.Flags().IntP(monitorDaysFlagNameConstant, monitorDaysFlagShorthandConstant, defaults.Days, monitorDaysFlagDescriptionConstant)
	command.Flags().StringP(monitorFormatFlagNameConstant, monitorFormatFlagShorthandConstant, defaults.Format, flagutils.FormatChoiceUsage(defaults.Format, report.SupportedFormatNames(), monitorFormatFlagDescriptionConstant))
	command.Flags().Int(monitorCIRunsFlagNameConstant, defaults.CIRunLimit, monitorCIRunsFlagDescriptionConstant)

	return command, nil
}

func (builder *MonitorCommandBuilder) run(command *cobra.Command, arguments []string) error {
	owner, ownerError := requireOwner(command, arguments)
	if ownerError != nil {
		return ownerError
	}

	configuration, configurationError := builder.resolveConfiguration(command)
	if configurationError != nil {
		return configurationError
	}

	reportFormat, formatError := report.ParseFormat(configuration.Format)
	if formatError != nil {
		return formatError
	}

	logger := resolveLogger(builder.LoggerProvider)
	logCommandStart(logger, command, owner)
	commandExecutor, executorError := dependencies.ResolveCommandExecutor(builder.CommandExecutor, logger, resolveHumanReadableLogging(builder.HumanReadableLoggingProvider))
	if executorError != nil {
		return executorError
	}

	gitHubClient, clientError := dependencies.ResolveGitHubClient(commandExecutor)
	if clientError != nil {
		return clientError
	}

	output := command.OutOrStdout()
	service, serviceError := monitor.NewService(
		monitor.Dependencies{
			GitHubClient:     gitHubClient,
			Logger:           logger,
			Clock:            builder.Clock,
			ProgressObserver: ui.NewConsoleMonitorEventLogger(output),
		},
		monitor.Options{Days: configuration.Days, CIRunLimit: configuration.CIRunLimit},
	)
	if serviceError != nil {
		return serviceError
	}

	executionContext, cancel := commandExecutionContext(command, configuration.CommandTimeout)
	defer cancel()

	fmt.Fprintf(output, monitorStartMessageTemplateConstant, owner)

	monitorReport, collectError := service.Collect(executionContext, owner)
	if collectError != nil {
		return collectError
	}
	if monitorReport.TotalRepositories() == 0 {
		return ui.RenderMonitorSummary(output, monitorReport, nil)
	}

	reportWriter := report.NewWriter(dependencies.ResolveFileSystem(builder.FileSystem))
	writtenReports, writeError := reportWriter.WriteReports(configuration.OutputDirectory, reportFormat, monitorReport)
	if writeError != nil {
		return writeError
	}

	return ui.RenderMonitorSummary(output, monitorReport, writtenReports)
}

// resolveConfiguration layers explicitly set flags over the provided configuration.
func (builder *MonitorCommandBuilder) resolveConfiguration(command *cobra.Command) (MonitorConfiguration, error) {
	configuration := DefaultToolsConfiguration().Monitor
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	flagSet := command.Flags()
	if flagSet.Changed(monitorOutputFlagNameConstant) {
		outputDirectory, flagError := flagSet.GetString(monitorOutputFlagNameConstant)
		if flagError != nil {
			return MonitorConfiguration{}, flagError
		}
		configuration.OutputDirectory = outputDirectory
	}
	if flagSet.Changed(monitorDaysFlagNameConstant) {
		days, flagError := flagSet.GetInt(monitorDaysFlagNameConstant)
		if flagError != nil {
			return MonitorConfiguration{}, flagError
		}
		configuration.Days = days
		if days == 0 {
			return MonitorConfiguration{}, monitor.DaysOutOfRangeError{Days: days}
		}
	}
	if flagSet.Changed(monitorFormatFlagNameConstant) {
		format, flagError := flagSet.GetString(monitorFormatFlagNameConstant)
		if flagError != nil {
			return MonitorConfiguration{}, flagError
		}
		configuration.Format = format
	}
	if flagSet.Changed(monitorCIRunsFlagNameConstant) {
		ciRunLimit, flagError := flagSet.GetInt(monitorCIRunsFlagNameConstant)
		if flagError != nil {
			return MonitorConfiguration{}, flagError
		}
		configuration.CIRunLimit = ciRunLimit
	}

	return configuration.sanitize(), nil
}
