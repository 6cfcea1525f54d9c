// Package dependencies supplies default collaborators for commands that were not given explicit ones.
package dependencies

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/ghmonitor/internal/execshell"
	"github.com/temirov/ghmonitor/internal/githubcli"
	"github.com/temirov/ghmonitor/internal/gitrepo"
)

// CommandExecutor runs both git and gh invocations.
type CommandExecutor interface {
	gitrepo.GitExecutor
	githubcli.GitHubCommandExecutor
}

// ResolveFileSystem returns the provided file system or an OS-backed default.
func ResolveFileSystem(existing afero.Fs) afero.Fs {
	if existing != nil {
		return existing
	}
	return afero.NewOsFs()
}

// ResolveCommandExecutor returns the provided executor or constructs a shell-backed default.
func ResolveCommandExecutor(existing CommandExecutor, logger *zap.Logger, humanReadableLogging bool) (CommandExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, humanReadableLogging)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveRepositoryManager constructs a git-backed repository manager around the executor.
func ResolveRepositoryManager(executor gitrepo.GitExecutor, fileSystem afero.Fs, policy gitrepo.UntrackedFilesPolicy) (*gitrepo.RepositoryManager, error) {
	return gitrepo.NewRepositoryManager(executor, ResolveFileSystem(fileSystem), policy)
}

// ResolveGitHubClient constructs a GitHub CLI-backed client around the executor.
func ResolveGitHubClient(executor githubcli.GitHubCommandExecutor) (*githubcli.Client, error) {
	return githubcli.NewClient(executor)
}
