package execshell

import (
	"strings"

	"go.uber.org/zap"
)

// CommandEventObserver receives lifecycle notifications for shell command execution.
type CommandEventObserver interface {
	// CommandStarted notifies observers that command execution is beginning.
	CommandStarted(command ShellCommand)
	// CommandCompleted supplies the result of a process that ran to completion, regardless of exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports failures that prevented an execution result.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// structuredCommandEventObserver emits machine-readable fields; successful steps stay at debug level.
type structuredCommandEventObserver struct {
	logger *zap.Logger
}

func (observer structuredCommandEventObserver) CommandStarted(command ShellCommand) {
	observer.logger.Debug(commandStartLogMessageConstant, commandFields(command)...)
}

func (observer structuredCommandEventObserver) CommandCompleted(command ShellCommand, result ExecutionResult) {
	fields := append(commandFields(command), zap.Int(commandExitCodeFieldConstant, result.ExitCode))
	if result.ExitCode == 0 {
		observer.logger.Debug(commandSuccessLogMessageConstant, fields...)
		return
	}
	fields = append(fields, zap.String(commandStandardErrorFieldConstant, strings.TrimSpace(result.StandardError)))
	observer.logger.Warn(commandFailureLogMessageConstant, fields...)
}

func (observer structuredCommandEventObserver) CommandExecutionFailed(command ShellCommand, failure error) {
	observer.logger.Error(commandExecutionFailureLogMessageConstant, append(commandFields(command), zap.Error(failure))...)
}

// consoleCommandEventObserver renders sentences for terminal users.
type consoleCommandEventObserver struct {
	logger    *zap.Logger
	formatter CommandMessageFormatter
}

func newConsoleCommandEventObserver(logger *zap.Logger) *consoleCommandEventObserver {
	return &consoleCommandEventObserver{logger: logger, formatter: CommandMessageFormatter{}}
}

func (observer *consoleCommandEventObserver) CommandStarted(command ShellCommand) {
	observer.logger.Debug(observer.formatter.BuildStartedMessage(command))
}

func (observer *consoleCommandEventObserver) CommandCompleted(command ShellCommand, result ExecutionResult) {
	if result.ExitCode == 0 {
		observer.logger.Debug(observer.formatter.BuildSuccessMessage(command))
		return
	}
	observer.logger.Warn(observer.formatter.BuildFailureMessage(command, result))
}

func (observer *consoleCommandEventObserver) CommandExecutionFailed(command ShellCommand, failure error) {
	observer.logger.Error(observer.formatter.BuildExecutionFailureMessage(command, failure))
}
