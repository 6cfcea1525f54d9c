package repos

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ghmonitor/internal/utils"
	pathutils "github.com/temirov/ghmonitor/internal/utils/path"
)

const (
	missingOwnerErrorMessageConstant  = "owner argument required; specify a GitHub user or organization"
	commandStartedLogMessageConstant  = "Command started"
	logFieldCommandConstant           = "command"
	logFieldOwnerConstant             = "owner"
	logFieldConfigurationFileConstant = "config_file"
)

var errOwnerRequired = errors.New(missingOwnerErrorMessageConstant)

var repositoryHomeDirectoryExpander = pathutils.NewHomeExpander()

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// requireOwner returns the single owner argument, printing help when it is missing.
func requireOwner(command *cobra.Command, arguments []string) (string, error) {
	if len(arguments) > 0 {
		owner := strings.TrimSpace(arguments[0])
		if len(owner) > 0 {
			return owner, nil
		}
	}

	_ = displayCommandHelp(command)
	return "", errOwnerRequired
}

func expandPath(candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if len(trimmed) == 0 {
		return trimmed
	}
	return repositoryHomeDirectoryExpander.Expand(trimmed)
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveHumanReadableLogging(provider func() bool) bool {
	if provider == nil {
		return false
	}
	return provider()
}

// commandExecutionContext bounds the command with timeout when positive.
func commandExecutionContext(command *cobra.Command, timeout time.Duration) (context.Context, context.CancelFunc) {
	parentContext := command.Context()
	if parentContext == nil {
		parentContext = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(parentContext)
	}
	return context.WithTimeout(parentContext, timeout)
}

// logCommandStart records the invocation together with the configuration file the root command loaded.
func logCommandStart(logger *zap.Logger, command *cobra.Command, owner string) {
	configurationFilePath, _ := utils.NewCommandContextAccessor().ConfigurationFilePath(command.Context())
	logger.Info(
		commandStartedLogMessageConstant,
		zap.String(logFieldCommandConstant, command.Name()),
		zap.String(logFieldOwnerConstant, owner),
		zap.String(logFieldConfigurationFileConstant, configurationFilePath),
	)
}

func displayCommandHelp(command *cobra.Command) error {
	if command == nil {
		return nil
	}
	return command.Help()
}
