package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitStatusSubcommandNameConstant   = "status"
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitRevListSubcommandNameConstant  = "rev-list"
	gitFetchSubcommandNameConstant    = "fetch"
	gitPullSubcommandNameConstant     = "pull"
	gitCloneSubcommandNameConstant    = "clone"
)

// Each template family is filled as: start/success (subject...), failure (subject..., exit code, stderr suffix),
// execution failure (subject..., cause).
const (
	gitStatusStartTemplateConstant                      = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant                    = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant                    = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant           = "Unable to review working tree status in %s: %s"
	gitCurrentBranchStartTemplateConstant               = "Identifying current branch in %s"
	gitCurrentBranchSuccessTemplateConstant             = "Identified current branch in %s"
	gitCurrentBranchFailureTemplateConstant             = "Failed to identify current branch in %s (exit code %d%s)"
	gitCurrentBranchExecutionFailureTemplateConstant    = "Unable to identify current branch in %s: %s"
	gitDivergenceStartTemplateConstant                  = "Comparing %s with its upstream"
	gitDivergenceSuccessTemplateConstant                = "Compared %s with its upstream"
	gitDivergenceFailureTemplateConstant                = "Failed to compare %s with its upstream (exit code %d%s)"
	gitDivergenceExecutionFailureTemplateConstant       = "Unable to compare %s with its upstream: %s"
	gitFetchStartTemplateConstant                       = "Fetching %s from %s in %s"
	gitFetchWithoutRefsStartTemplateConstant            = "Fetching from %s in %s"
	gitFetchSuccessTemplateConstant                     = "Fetched %s from %s in %s"
	gitFetchWithoutRefsSuccessTemplateConstant          = "Fetched from %s in %s"
	gitFetchFailureTemplateConstant                     = "Failed to fetch %s from %s in %s (exit code %d%s)"
	gitFetchWithoutRefsFailureTemplateConstant          = "Failed to fetch from %s in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant            = "Unable to fetch %s from %s in %s: %s"
	gitFetchWithoutRefsExecutionFailureTemplateConstant = "Unable to fetch from %s in %s: %s"
	gitFetchAllRemotesLabelConstant                     = "the upstream remote"
	gitPullStartTemplateConstant                        = "Pulling upstream changes into %s"
	gitPullSuccessTemplateConstant                      = "Pulled upstream changes into %s"
	gitPullFailureTemplateConstant                      = "Failed to pull upstream changes into %s (exit code %d%s)"
	gitPullExecutionFailureTemplateConstant             = "Unable to pull upstream changes into %s: %s"
	gitCloneStartTemplateConstant                       = "Cloning %s into %s"
	gitCloneSuccessTemplateConstant                     = "Cloned %s into %s"
	gitCloneFailureTemplateConstant                     = "Failed to clone %s into %s (exit code %d%s)"
	gitCloneExecutionFailureTemplateConstant            = "Unable to clone %s into %s: %s"
)

const (
	githubRepoSubcommandNameConstant     = "repo"
	githubRepoListSubcommandNameConstant = "list"
	githubRepoViewSubcommandNameConstant = "view"
	githubPullRequestSubcommandConstant  = "pr"
	githubRunSubcommandNameConstant      = "run"
	githubAPICommandNameConstant         = "api"
	githubRepoFlagConstant               = "--repo"
)

const (
	githubRepoListStartTemplateConstant               = "Listing repositories owned by %s"
	githubRepoListSuccessTemplateConstant             = "Listed repositories owned by %s"
	githubRepoListFailureTemplateConstant             = "Failed to list repositories owned by %s (exit code %d%s)"
	githubRepoListExecutionFailureTemplateConstant    = "Unable to list repositories owned by %s: %s"
	githubRepoViewStartTemplateConstant               = "Retrieving repository details for %s"
	githubRepoViewSuccessTemplateConstant             = "Retrieved repository details for %s"
	githubRepoViewFailureTemplateConstant             = "Failed to retrieve repository details for %s (exit code %d%s)"
	githubRepoViewExecutionFailureTemplateConstant    = "Unable to retrieve repository details for %s: %s"
	githubPullRequestStartTemplateConstant            = "Listing pull requests for %s"
	githubPullRequestSuccessTemplateConstant          = "Listed pull requests for %s"
	githubPullRequestFailureTemplateConstant          = "Failed to list pull requests for %s (exit code %d%s)"
	githubPullRequestExecutionFailureTemplateConstant = "Unable to list pull requests for %s: %s"
	githubRunListStartTemplateConstant                = "Listing workflow runs for %s"
	githubRunListSuccessTemplateConstant              = "Listed workflow runs for %s"
	githubRunListFailureTemplateConstant              = "Failed to list workflow runs for %s (exit code %d%s)"
	githubRunListExecutionFailureTemplateConstant     = "Unable to list workflow runs for %s: %s"
	githubAPIStartTemplateConstant                    = "Querying GitHub API endpoint %s"
	githubAPISuccessTemplateConstant                  = "Queried GitHub API endpoint %s"
	githubAPIFailureTemplateConstant                  = "GitHub API endpoint %s returned exit code %d%s"
	githubAPIExecutionFailureTemplateConstant         = "Unable to query GitHub API endpoint %s: %s"
)

// messageTemplates groups the four lifecycle templates of a single command kind.
type messageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

// CommandMessageFormatter renders human-readable descriptions of git and gh invocations.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitStatusSubcommandNameConstant:
		return formatter.render(messageTemplates{
			start:            gitStatusStartTemplateConstant,
			success:          gitStatusSuccessTemplateConstant,
			failure:          gitStatusFailureTemplateConstant,
			executionFailure: gitStatusExecutionFailureTemplateConstant,
		}, []any{workingDirectory}, result, failure, stage)
	case gitRevParseSubcommandNameConstant:
		return formatter.render(messageTemplates{
			start:            gitCurrentBranchStartTemplateConstant,
			success:          gitCurrentBranchSuccessTemplateConstant,
			failure:          gitCurrentBranchFailureTemplateConstant,
			executionFailure: gitCurrentBranchExecutionFailureTemplateConstant,
		}, []any{workingDirectory}, result, failure, stage)
	case gitRevListSubcommandNameConstant:
		return formatter.render(messageTemplates{
			start:            gitDivergenceStartTemplateConstant,
			success:          gitDivergenceSuccessTemplateConstant,
			failure:          gitDivergenceFailureTemplateConstant,
			executionFailure: gitDivergenceExecutionFailureTemplateConstant,
		}, []any{workingDirectory}, result, failure, stage)
	case gitFetchSubcommandNameConstant:
		return formatter.describeGitFetchMessage(command, result, failure, stage)
	case gitPullSubcommandNameConstant:
		return formatter.render(messageTemplates{
			start:            gitPullStartTemplateConstant,
			success:          gitPullSuccessTemplateConstant,
			failure:          gitPullFailureTemplateConstant,
			executionFailure: gitPullExecutionFailureTemplateConstant,
		}, []any{workingDirectory}, result, failure, stage)
	case gitCloneSubcommandNameConstant:
		positional := extractPositionalArguments(command.Details.Arguments[1:])
		if len(positional) < 2 {
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
		return formatter.render(messageTemplates{
			start:            gitCloneStartTemplateConstant,
			success:          gitCloneSuccessTemplateConstant,
			failure:          gitCloneFailureTemplateConstant,
			executionFailure: gitCloneExecutionFailureTemplateConstant,
		}, []any{positional[0], positional[1]}, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitFetchMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	positional := extractPositionalArguments(command.Details.Arguments[1:])
	if len(positional) == 0 {
		return formatter.render(messageTemplates{
			start:            gitFetchWithoutRefsStartTemplateConstant,
			success:          gitFetchWithoutRefsSuccessTemplateConstant,
			failure:          gitFetchWithoutRefsFailureTemplateConstant,
			executionFailure: gitFetchWithoutRefsExecutionFailureTemplateConstant,
		}, []any{gitFetchAllRemotesLabelConstant, workingDirectory}, result, failure, stage)
	}

	remoteName := positional[0]
	references := positional[1:]
	if len(references) == 0 {
		return formatter.render(messageTemplates{
			start:            gitFetchWithoutRefsStartTemplateConstant,
			success:          gitFetchWithoutRefsSuccessTemplateConstant,
			failure:          gitFetchWithoutRefsFailureTemplateConstant,
			executionFailure: gitFetchWithoutRefsExecutionFailureTemplateConstant,
		}, []any{remoteName, workingDirectory}, result, failure, stage)
	}

	return formatter.render(messageTemplates{
		start:            gitFetchStartTemplateConstant,
		success:          gitFetchSuccessTemplateConstant,
		failure:          gitFetchFailureTemplateConstant,
		executionFailure: gitFetchExecutionFailureTemplateConstant,
	}, []any{strings.Join(references, ", "), remoteName, workingDirectory}, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch strings.TrimSpace(arguments[0]) {
	case githubRepoSubcommandNameConstant:
		if len(arguments) < 3 {
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
		subject := formatter.ensureValue(strings.TrimSpace(arguments[2]))
		switch strings.TrimSpace(arguments[1]) {
		case githubRepoListSubcommandNameConstant:
			return formatter.render(messageTemplates{
				start:            githubRepoListStartTemplateConstant,
				success:          githubRepoListSuccessTemplateConstant,
				failure:          githubRepoListFailureTemplateConstant,
				executionFailure: githubRepoListExecutionFailureTemplateConstant,
			}, []any{subject}, result, failure, stage)
		case githubRepoViewSubcommandNameConstant:
			return formatter.render(messageTemplates{
				start:            githubRepoViewStartTemplateConstant,
				success:          githubRepoViewSuccessTemplateConstant,
				failure:          githubRepoViewFailureTemplateConstant,
				executionFailure: githubRepoViewExecutionFailureTemplateConstant,
			}, []any{subject}, result, failure, stage)
		}
	case githubPullRequestSubcommandConstant:
		return formatter.render(messageTemplates{
			start:            githubPullRequestStartTemplateConstant,
			success:          githubPullRequestSuccessTemplateConstant,
			failure:          githubPullRequestFailureTemplateConstant,
			executionFailure: githubPullRequestExecutionFailureTemplateConstant,
		}, []any{formatter.ensureValue(findFlagValue(arguments, githubRepoFlagConstant))}, result, failure, stage)
	case githubRunSubcommandNameConstant:
		return formatter.render(messageTemplates{
			start:            githubRunListStartTemplateConstant,
			success:          githubRunListSuccessTemplateConstant,
			failure:          githubRunListFailureTemplateConstant,
			executionFailure: githubRunListExecutionFailureTemplateConstant,
		}, []any{formatter.ensureValue(findFlagValue(arguments, githubRepoFlagConstant))}, result, failure, stage)
	case githubAPICommandNameConstant:
		positional := extractPositionalArguments(arguments[1:])
		if len(positional) == 0 {
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
		return formatter.render(messageTemplates{
			start:            githubAPIStartTemplateConstant,
			success:          githubAPISuccessTemplateConstant,
			failure:          githubAPIFailureTemplateConstant,
			executionFailure: githubAPIExecutionFailureTemplateConstant,
		}, []any{positional[0]}, result, failure, stage)
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) render(templates messageTemplates, subjects []any, result ExecutionResult, failure error, stage messageStage) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subjects...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subjects...)
	case messageStageFailure:
		arguments := append(append([]any{}, subjects...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(templates.failure, arguments...)
	case messageStageExecutionFailure:
		arguments := append(append([]any{}, subjects...), formatter.describeFailure(failure))
		return fmt.Sprintf(templates.executionFailure, arguments...)
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return value
}

// extractPositionalArguments drops flags; flags carrying a separate value are not used by the commands described here.
func extractPositionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		positional = append(positional, trimmedArgument)
	}
	return positional
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments)-1; index++ {
		if strings.TrimSpace(arguments[index]) == flag {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}
