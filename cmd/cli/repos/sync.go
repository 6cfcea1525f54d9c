package repos

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/temirov/ghmonitor/internal/dependencies"
	"github.com/temirov/ghmonitor/internal/gitrepo"
	"github.com/temirov/ghmonitor/internal/syncer"
	"github.com/temirov/ghmonitor/internal/ui"
	flagutils "github.com/temirov/ghmonitor/internal/utils/flags"
)

const (
	syncUseConstant                           = "sync OWNER"
	syncShortDescriptionConstant              = "Clone or update local copies of an owner's repositories"
	syncLongDescriptionConstant               = "sync clones repositories missing locally, fast-forwards clean clones that are behind their upstream, and leaves clones with uncommitted changes untouched."
	syncDirectoryFlagNameConstant             = "dir"
	syncDirectoryFlagShorthandConstant        = "d"
	syncDirectoryFlagDescriptionConstant      = "Local directory holding the clones"
	syncUntrackedFilesFlagNameConstant        = "untracked-files"
	syncUntrackedFilesFlagDescriptionConstant = "whether untracked files mark a clone as dirty"
	syncProtocolFlagNameConstant              = "protocol"
	syncProtocolFlagDescriptionConstant       = "protocol used for new clones"
	syncConcurrencyFlagNameConstant           = "concurrency"
	syncConcurrencyFlagShorthandConstant      = "j"
	syncConcurrencyFlagDescriptionConstant    = "Number of repositories synchronized in parallel"
	syncSinceDaysFlagNameConstant             = "since-days"
	syncSinceDaysFlagDescriptionConstant      = "Only synchronize repositories pushed within the last N days (0 synchronizes all)"
	syncStartMessageTemplateConstant          = "Syncing repositories for %s to %s...\n"
)

var (
	untrackedFilesChoices = []string{string(gitrepo.UntrackedFilesDirty), string(gitrepo.UntrackedFilesIgnore)}
	cloneProtocolChoices  = []string{string(gitrepo.RemoteProtocolSSH), string(gitrepo.RemoteProtocolHTTPS)}
)

// SyncCommandBuilder assembles the sync command.
type SyncCommandBuilder struct {
	LoggerProvider               LoggerProvider
	CommandExecutor              dependencies.CommandExecutor
	FileSystem                   afero.Fs
	Clock                        syncer.Clock
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() SyncConfiguration
}

// Build constructs the sync command.
func (builder *SyncCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   syncUseConstant,
		Short: syncShortDescriptionConstant,
		Long:  syncLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE:  builder.run,
	}

	defaults := DefaultToolsConfiguration().Sync
	command.Flags().StringP(syncDirectoryFlagNameConstant, syncDirectoryFlagShorthandConstant, defaults.Directory, syncDirectoryFlagDescriptionConstant)
	command.Flags().String(syncUntrackedFilesFlagNameConstant, defaults.UntrackedFiles, flagutils.FormatChoiceUsage(defaults.UntrackedFiles, untrackedFilesChoices, syncUntrackedFilesFlagDescriptionConstant))
	command.Flags().String(syncProtocolFlagNameConstant, defaults.CloneProtocol, flagutils.FormatChoiceUsage(defaults.CloneProtocol, cloneProtocolChoices, syncProtocolFlagDescriptionConstant))
	command.Flags().IntP(syncConcurrencyFlagNameConstant, syncConcurrencyFlagShorthandConstant, defaults.Concurrency, syncConcurrencyFlagDescriptionConstant)
	command.Flags().Int(syncSinceDaysFlagNameConstant, defaults.SinceDays, syncSinceDaysFlagDescriptionConstant)

	return command, nil
}

func (builder *SyncCommandBuilder) run(command *cobra.Command, arguments []string) error {
	owner, ownerError := requireOwner(command, arguments)
	if ownerError != nil {
		return ownerError
	}

	configuration, configurationError := builder.resolveConfiguration(command)
	if configurationError != nil {
		return configurationError
	}

	untrackedFilesPolicy, policyError := flagutils.ParseChoice(configuration.UntrackedFiles, untrackedFilesChoices)
	if policyError != nil {
		return policyError
	}
	cloneProtocol, protocolError := gitrepo.ParseRemoteProtocol(configuration.CloneProtocol)
	if protocolError != nil {
		return protocolError
	}

	logger := resolveLogger(builder.LoggerProvider)
	logCommandStart(logger, command, owner)
	commandExecutor, executorError := dependencies.ResolveCommandExecutor(builder.CommandExecutor, logger, resolveHumanReadableLogging(builder.HumanReadableLoggingProvider))
	if executorError != nil {
		return executorError
	}

	fileSystem := dependencies.ResolveFileSystem(builder.FileSystem)
	repositoryManager, managerError := dependencies.ResolveRepositoryManager(commandExecutor, fileSystem, gitrepo.UntrackedFilesPolicy(untrackedFilesPolicy))
	if managerError != nil {
		return managerError
	}

	gitHubClient, clientError := dependencies.ResolveGitHubClient(commandExecutor)
	if clientError != nil {
		return clientError
	}

	output := command.OutOrStdout()
	service, serviceError := syncer.NewService(
		syncer.Dependencies{
			RepositoryInspector: repositoryManager,
			FileSystem:          fileSystem,
			Logger:              logger,
			ProgressObserver:    ui.NewConsoleSyncEventLogger(output),
		},
		syncer.Options{CloneProtocol: cloneProtocol, Concurrency: configuration.Concurrency},
	)
	if serviceError != nil {
		return serviceError
	}

	executionContext, cancel := commandExecutionContext(command, configuration.CommandTimeout)
	defer cancel()

	fmt.Fprintf(output, syncStartMessageTemplateConstant, owner, configuration.Directory)

	repositories, listError := syncer.ListRemoteRepositories(executionContext, gitHubClient, owner, syncer.ListingOptions{SinceDays: configuration.SinceDays}, builder.Clock)
	if listError != nil {
		return listError
	}

	syncReport, syncError := service.SyncAll(executionContext, repositories, configuration.Directory)
	if syncError != nil {
		return syncError
	}

	return ui.RenderSyncSummary(output, syncReport)
}

// resolveConfiguration layers explicitly set flags over the provided configuration.
func (builder *SyncCommandBuilder) resolveConfiguration(command *cobra.Command) (SyncConfiguration, error) {
	configuration := DefaultToolsConfiguration().Sync
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	flagSet := command.Flags()
	if flagSet.Changed(syncDirectoryFlagNameConstant) {
		directory, flagError := flagSet.GetString(syncDirectoryFlagNameConstant)
		if flagError != nil {
			return SyncConfiguration{}, flagError
		}
		configuration.Directory = directory
	}
	if flagSet.Changed(syncUntrackedFilesFlagNameConstant) {
		untrackedFiles, flagError := flagSet.GetString(syncUntrackedFilesFlagNameConstant)
		if flagError != nil {
			return SyncConfiguration{}, flagError
		}
		configuration.UntrackedFiles = untrackedFiles
	}
	if flagSet.Changed(syncProtocolFlagNameConstant) {
		cloneProtocol, flagError := flagSet.GetString(syncProtocolFlagNameConstant)
		if flagError != nil {
			return SyncConfiguration{}, flagError
		}
		configuration.CloneProtocol = cloneProtocol
	}
	if flagSet.Changed(syncConcurrencyFlagNameConstant) {
		concurrency, flagError := flagSet.GetInt(syncConcurrencyFlagNameConstant)
		if flagError != nil {
			return SyncConfiguration{}, flagError
		}
		configuration.Concurrency = concurrency
	}
	if flagSet.Changed(syncSinceDaysFlagNameConstant) {
		sinceDays, flagError := flagSet.GetInt(syncSinceDaysFlagNameConstant)
		if flagError != nil {
			return SyncConfiguration{}, flagError
		}
		configuration.SinceDays = sinceDays
	}

	return configuration.sanitize(), nil
}
