package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/temirov/ghmonitor/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant             = "git executor not configured"
	repositoryPathRequiredMessageConstant         = "repository path must be provided"
	requiredValueMessageConstant                  = "value required"
	unsupportedUntrackedPolicyTemplateConstant    = "unsupported untracked files policy %q"
	repositoryStateErrorTemplateConstant          = "%s: %s"
	repositoryStateErrorWithCauseTemplateConstant = "%s: %s: %v"
	gitDirectoryNameConstant                      = ".git"
	gitStatusSubcommandConstant                   = "status"
	gitStatusPorcelainFlagConstant                = "--porcelain"
	gitStatusIgnoreUntrackedFlagConstant          = "--untracked-files=no"
	gitRevParseSubcommandConstant                 = "rev-parse"
	gitAbbrevRefFlagConstant                      = "--abbrev-ref"
	gitVerifyFlagConstant                         = "--verify"
	gitQuietFlagConstant                          = "-q"
	gitForEachRefSubcommandConstant               = "for-each-ref"
	gitRemoteReferencesPrefixConstant             = "refs/remotes"
	gitHeadReferenceConstant                      = "HEAD"
	gitFetchSubcommandConstant                    = "fetch"
	gitFetchQuietFlagConstant                     = "--quiet"
	gitRevListSubcommandConstant                  = "rev-list"
	gitLeftRightFlagConstant                      = "--left-right"
	gitCountFlagConstant                          = "--count"
	gitUpstreamRangeConstant                      = "HEAD...@{upstream}"
	gitPullSubcommandConstant                     = "pull"
	gitPullFastForwardFlagConstant                = "--ff-only"
	gitCloneSubcommandConstant                    = "clone"
	gitTerminalPromptEnvironmentNameConstant      = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant   = "0"
	fetchFailedReasonConstant                     = "unable to fetch from upstream"
	upstreamUnavailableReasonConstant             = "no upstream branch to compare against"
	unparsableDivergenceReasonConstant            = "unexpected rev-list output"
	repositoryProbeFailedReasonConstant           = "unable to inspect repository directory"
	divergenceFieldCountConstant                  = 2
)

// UntrackedFilesPolicy decides whether untracked files make a working tree dirty.
type UntrackedFilesPolicy string

// Supported untracked file policies.
const (
	UntrackedFilesDirty  UntrackedFilesPolicy = UntrackedFilesPolicy("dirty")
	UntrackedFilesIgnore UntrackedFilesPolicy = UntrackedFilesPolicy("ignore")
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrRepositoryPathRequired indicates an empty repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// GitExecutor is the subset of execshell.ShellExecutor used for git invocations.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryStateError reports a local clone whose state could not be classified.
type RepositoryStateError struct {
	RepositoryPath string
	Reason         string
	Cause          error
}

// Error describes the repository and the reason classification failed.
func (stateError RepositoryStateError) Error() string {
	if stateError.Cause == nil {
		return fmt.Sprintf(repositoryStateErrorTemplateConstant, stateError.RepositoryPath, stateError.Reason)
	}
	return fmt.Sprintf(repositoryStateErrorWithCauseTemplateConstant, stateError.RepositoryPath, stateError.Reason, stateError.Cause)
}

// Unwrap exposes the underlying command failure.
func (stateError RepositoryStateError) Unwrap() error {
	return stateError.Cause
}

// UpstreamDivergence counts commits unique to each side of HEAD...@{upstream}.
type UpstreamDivergence struct {
	Ahead  int
	Behind int
}

// RepositoryManager inspects and updates local clones through git.
type RepositoryManager struct {
	executor             GitExecutor
	fileSystem           afero.Fs
	untrackedFilesPolicy UntrackedFilesPolicy
}

// NewRepositoryManager constructs a RepositoryManager. A nil file system falls back to the OS file system
// and an empty policy counts untracked files as dirty.
func NewRepositoryManager(executor GitExecutor, fileSystem afero.Fs, untrackedFilesPolicy UntrackedFilesPolicy) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	switch untrackedFilesPolicy {
	case "":
		untrackedFilesPolicy = UntrackedFilesDirty
	case UntrackedFilesDirty, UntrackedFilesIgnore:
	default:
		return nil, fmt.Errorf(unsupportedUntrackedPolicyTemplateConstant, untrackedFilesPolicy)
	}
	return &RepositoryManager{executor: executor, fileSystem: fileSystem, untrackedFilesPolicy: untrackedFilesPolicy}, nil
}

// IsGitRepository reports whether the directory carries a .git entry. Worktrees and submodules use a .git file.
func (manager *RepositoryManager) IsGitRepository(repositoryPath string) (bool, error) {
	trimmedPath := strings.TrimSpace(repositoryPath)
	if len(trimmedPath) == 0 {
		return false, ErrRepositoryPathRequired
	}

	_, statError := manager.fileSystem.Stat(filepath.Join(trimmedPath, gitDirectoryNameConstant))
	if statError == nil {
		return true, nil
	}
	if errors.Is(statError, os.ErrNotExist) {
		return false, nil
	}
	return false, RepositoryStateError{RepositoryPath: trimmedPath, Reason: repositoryProbeFailedReasonConstant, Cause: statError}
}

// CheckCleanWorktree reports whether git status --porcelain prints nothing.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	arguments := []string{gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant}
	if manager.untrackedFilesPolicy == UntrackedFilesIgnore {
		arguments = append(arguments, gitStatusIgnoreUntrackedFlagConstant)
	}

	executionResult, executionError := manager.executeGit(executionContext, repositoryPath, arguments)
	if executionError != nil {
		return false, executionError
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) == 0, nil
}

// GetCurrentBranch returns the checked-out branch name, or HEAD when detached.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := manager.executeGit(executionContext, repositoryPath, []string{gitRevParseSubcommandConstant, gitAbbrevRefFlagConstant, gitHeadReferenceConstant})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// FetchUpstream refreshes remote-tracking references without touching the working tree.
func (manager *RepositoryManager) FetchUpstream(executionContext context.Context, repositoryPath string) error {
	if _, executionError := manager.executeGit(executionContext, repositoryPath, []string{gitFetchSubcommandConstant, gitFetchQuietFlagConstant}); executionError != nil {
		return RepositoryStateError{RepositoryPath: repositoryPath, Reason: fetchFailedReasonConstant, Cause: executionError}
	}
	return nil
}

// CompareWithUpstream counts commits between HEAD and its upstream using already fetched references.
func (manager *RepositoryManager) CompareWithUpstream(executionContext context.Context, repositoryPath string) (UpstreamDivergence, error) {
	executionResult, executionError := manager.executeGit(executionContext, repositoryPath, []string{gitRevListSubcommandConstant, gitLeftRightFlagConstant, gitCountFlagConstant, gitUpstreamRangeConstant})
	if executionError != nil {
		return UpstreamDivergence{}, RepositoryStateError{RepositoryPath: repositoryPath, Reason: upstreamUnavailableReasonConstant, Cause: executionError}
	}

	fields := strings.Fields(executionResult.StandardOutput)
	if len(fields) != divergenceFieldCountConstant {
		return UpstreamDivergence{}, RepositoryStateError{RepositoryPath: repositoryPath, Reason: unparsableDivergenceReasonConstant}
	}
	aheadCount, aheadError := strconv.Atoi(fields[0])
	if aheadError != nil {
		return UpstreamDivergence{}, RepositoryStateError{RepositoryPath: repositoryPath, Reason: unparsableDivergenceReasonConstant, Cause: aheadError}
	}
	behindCount, behindError := strconv.Atoi(fields[1])
	if behindError != nil {
		return UpstreamDivergence{}, RepositoryStateError{RepositoryPath: repositoryPath, Reason: unparsableDivergenceReasonConstant, Cause: behindError}
	}
	return UpstreamDivergence{Ahead: aheadCount, Behind: behindCount}, nil
}

// NeedsPull fetches and reports whether the upstream holds commits HEAD lacks.
// A diverged branch needs a pull too; the fast-forward-only pull will then refuse it.
// A clone of an empty repository has nothing to compare and is current.
func (manager *RepositoryManager) NeedsPull(executionContext context.Context, repositoryPath string) (bool, error) {
	if fetchError := manager.FetchUpstream(executionContext, repositoryPath); fetchError != nil {
		return false, fetchError
	}
	divergence, compareError := manager.CompareWithUpstream(executionContext, repositoryPath)
	if compareError != nil {
		if manager.isEmptyClone(executionContext, repositoryPath) {
			return false, nil
		}
		return false, compareError
	}
	return divergence.Behind > 0, nil
}

// isEmptyClone reports a clone of a repository without commits: HEAD is unborn and nothing was fetched.
func (manager *RepositoryManager) isEmptyClone(executionContext context.Context, repositoryPath string) bool {
	_, headError := manager.executeGit(executionContext, repositoryPath, []string{gitRevParseSubcommandConstant, gitVerifyFlagConstant, gitQuietFlagConstant, gitHeadReferenceConstant})
	var commandError execshell.CommandFailedError
	if !errors.As(headError, &commandError) {
		return false
	}

	executionResult, referencesError := manager.executeGit(executionContext, repositoryPath, []string{gitForEachRefSubcommandConstant, gitRemoteReferencesPrefixConstant})
	if referencesError != nil {
		return false
	}
	return len(strings.TrimSpace(executionResult.StandardOutput)) == 0
}

// Pull fast-forwards the current branch to its upstream.
func (manager *RepositoryManager) Pull(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.executeGit(executionContext, repositoryPath, []string{gitPullSubcommandConstant, gitPullFastForwardFlagConstant})
	return executionError
}

// Clone creates destinationPath as a new clone of remoteURL.
func (manager *RepositoryManager) Clone(executionContext context.Context, remoteURL string, destinationPath string) error {
	trimmedRemoteURL := strings.TrimSpace(remoteURL)
	if len(trimmedRemoteURL) == 0 {
		return RemoteURLParseError{Input: remoteURL, Message: requiredValueMessageConstant}
	}
	trimmedDestination := strings.TrimSpace(destinationPath)
	if len(trimmedDestination) == 0 {
		return ErrRepositoryPathRequired
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitCloneSubcommandConstant, trimmedRemoteURL, trimmedDestination},
		EnvironmentVariables: nonInteractiveEnvironment(),
	})
	return executionError
}

func (manager *RepositoryManager) executeGit(executionContext context.Context, repositoryPath string, arguments []string) (execshell.ExecutionResult, error) {
	trimmedPath := strings.TrimSpace(repositoryPath)
	if len(trimmedPath) == 0 {
		return execshell.ExecutionResult{}, ErrRepositoryPathRequired
	}
	return manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     trimmedPath,
		EnvironmentVariables: nonInteractiveEnvironment(),
	})
}

// nonInteractiveEnvironment keeps git from blocking on credential prompts.
func nonInteractiveEnvironment() map[string]string {
	return map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant}
}
