package repos_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/ghmonitor/internal/execshell"
)

const (
	testOwnerConstant                  = "octo"
	testArgumentSeparatorConstant      = " "
	testGitDirectoryConstant           = ".git"
	testCloneSubcommandConstant        = "clone"
	testMissingResponseMessageConstant = "no scripted response"
)

var testReferenceTime = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return testReferenceTime
}

// scriptedExecutor answers gh invocations from canned output and records git invocations.
type scriptedExecutor struct {
	mutex             sync.Mutex
	fileSystem        afero.Fs
	gitHubResponses   map[string]string
	gitResponses      map[string]string
	gitHubInvocations []string
	gitInvocations    []execshell.CommandDetails
}

func newScriptedExecutor(fileSystem afero.Fs) *scriptedExecutor {
	return &scriptedExecutor{
		fileSystem:      fileSystem,
		gitHubResponses: map[string]string{},
		gitResponses:    map[string]string{},
	}
}

func (executor *scriptedExecutor) withGitHubResponse(arguments string, output string) *scriptedExecutor {
	executor.gitHubResponses[arguments] = output
	return executor
}

func (executor *scriptedExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	executor.gitInvocations = append(executor.gitInvocations, details)

	if len(details.Arguments) == 3 && details.Arguments[0] == testCloneSubcommandConstant {
		if creationError := executor.fileSystem.MkdirAll(filepath.Join(details.Arguments[2], testGitDirectoryConstant), 0o755); creationError != nil {
			return execshell.ExecutionResult{}, creationError
		}
		return execshell.ExecutionResult{}, nil
	}

	key := strings.Join(details.Arguments, testArgumentSeparatorConstant)
	output, found := executor.gitResponses[key]
	if !found {
		return executor.failure(execshell.CommandGit, details)
	}
	return execshell.ExecutionResult{StandardOutput: output}, nil
}

func (executor *scriptedExecutor) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()

	key := strings.Join(details.Arguments, testArgumentSeparatorConstant)
	executor.gitHubInvocations = append(executor.gitHubInvocations, key)
	output, found := executor.gitHubResponses[key]
	if !found {
		return executor.failure(execshell.CommandGitHub, details)
	}
	return execshell.ExecutionResult{StandardOutput: output}, nil
}

func (executor *scriptedExecutor) failure(name execshell.CommandName, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	result := execshell.ExecutionResult{StandardError: testMissingResponseMessageConstant, ExitCode: 1}
	return result, execshell.CommandFailedError{Command: execshell.ShellCommand{Name: name, Details: details}, Result: result}
}

func (executor *scriptedExecutor) clonedURLs() []string {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	urls := make([]string, 0)
	for _, invocation := range executor.gitInvocations {
		if len(invocation.Arguments) == 3 && invocation.Arguments[0] == testCloneSubcommandConstant {
			urls = append(urls, invocation.Arguments[1])
		}
	}
	return urls
}

type commandBuilder interface {
	Build() (*cobra.Command, error)
}

// executeCommand runs the built command with arguments and returns its combined output.
func executeCommand(testInstance *testing.T, builder commandBuilder, arguments ...string) (string, error) {
	testInstance.Helper()

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	command.SetContext(context.Background())
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs(arguments)
	command.SilenceUsage = true
	command.SilenceErrors = true

	executionError := command.Execute()
	return outputBuffer.String(), executionError
}
