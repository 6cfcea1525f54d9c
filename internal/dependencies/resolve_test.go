package dependencies_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/ghmonitor/internal/dependencies"
	"github.com/temirov/ghmonitor/internal/execshell"
	"github.com/temirov/ghmonitor/internal/gitrepo"
)

type stubCommandExecutor struct{}

func (stubCommandExecutor) ExecuteGit(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return execshell.ExecutionResult{}, nil
}

func (stubCommandExecutor) ExecuteGitHubCLI(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return execshell.ExecutionResult{}, nil
}

func TestResolveCommandExecutor(testInstance *testing.T) {
	existing := stubCommandExecutor{}
	resolved, resolveError := dependencies.ResolveCommandExecutor(existing, zap.NewNop(), false)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, existing, resolved)

	constructed, constructError := dependencies.ResolveCommandExecutor(nil, zap.NewNop(), true)
	require.NoError(testInstance, constructError)
	require.IsType(testInstance, &execshell.ShellExecutor{}, constructed)

	_, missingLoggerError := dependencies.ResolveCommandExecutor(nil, nil, false)
	require.ErrorIs(testInstance, missingLoggerError, execshell.ErrLoggerNotConfigured)
}

func TestResolveFileSystem(testInstance *testing.T) {
	memoryFileSystem := afero.NewMemMapFs()
	require.Equal(testInstance, memoryFileSystem, dependencies.ResolveFileSystem(memoryFileSystem))
	require.IsType(testInstance, &afero.OsFs{}, dependencies.ResolveFileSystem(nil))
}

func TestResolveRepositoryManagerValidatesPolicy(testInstance *testing.T) {
	_, policyError := dependencies.ResolveRepositoryManager(stubCommandExecutor{}, nil, gitrepo.UntrackedFilesPolicy("always"))
	require.Error(testInstance, policyError)

	manager, managerError := dependencies.ResolveRepositoryManager(stubCommandExecutor{}, afero.NewMemMapFs(), gitrepo.UntrackedFilesIgnore)
	require.NoError(testInstance, managerError)
	require.NotNil(testInstance, manager)
}
