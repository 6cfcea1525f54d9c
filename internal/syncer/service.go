package syncer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/ghmonitor/internal/gitrepo"
)

const (
	repositoryInspectorMissingMessageConstant  = "repository inspector not configured"
	directoryRequiredMessageConstant           = "sync directory must be provided"
	directoryCreationErrorTemplateConstant     = "unable to create sync directory %s: %w"
	clonedMessageTemplateConstant              = "Cloned to %s"
	cloneFailedMessageTemplateConstant         = "Clone failed: %v"
	pulledMessageConstant                      = "Updated successfully"
	pullFailedMessageTemplateConstant          = "Pull failed: %v"
	alreadyCurrentMessageConstant              = "Already up to date"
	dirtyMessageConstant                       = "Uncommitted changes present"
	statusFailedMessageTemplateConstant        = "Status check failed: %v"
	upstreamCheckFailedMessageTemplateConstant = "Upstream check failed: %v"
	notRepositoryReasonConstant                = "directory exists but is not a git repository"
	notDirectoryMessageTemplateConstant        = "%s exists but is not a directory"
	inspectionFailedMessageTemplateConstant    = "Unable to inspect %s: %v"
	invalidNameMessageTemplateConstant         = "Invalid repository name %q"
	noCloneURLMessageTemplateConstant          = "No clone URL: %v"
	cancelledMessageTemplateConstant           = "Not processed: %v"
	logMessageRepositorySynchronizedConstant   = "Repository synchronized"
	logMessageRepositoryBranchUnknownConstant  = "Unable to determine current branch"
	logFieldRepositoryConstant                 = "repository"
	logFieldPathConstant                       = "path"
	logFieldActionConstant                     = "action"
	logFieldMessageConstant                    = "message"
	defaultConcurrencyConstant                 = 1
	directoryPermissionsConstant               = 0o755
)

// ErrRepositoryInspectorNotConfigured indicates the repository inspector dependency was missing.
var ErrRepositoryInspectorNotConfigured = errors.New(repositoryInspectorMissingMessageConstant)

// ErrDirectoryRequired indicates SyncAll received an empty target directory.
var ErrDirectoryRequired = errors.New(directoryRequiredMessageConstant)

// RepositoryInspector classifies and updates local clones.
type RepositoryInspector interface {
	IsGitRepository(repositoryPath string) (bool, error)
	CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
	NeedsPull(executionContext context.Context, repositoryPath string) (bool, error)
	Pull(executionContext context.Context, repositoryPath string) error
	Clone(executionContext context.Context, remoteURL string, destinationPath string) error
}

// ProgressObserver is notified once per repository as soon as its result is known.
type ProgressObserver interface {
	RepositorySynchronized(completed int, total int, result SyncResult)
}

// Dependencies enumerates the collaborators of a Service.
type Dependencies struct {
	RepositoryInspector RepositoryInspector
	FileSystem          afero.Fs
	Logger              *zap.Logger
	ProgressObserver    ProgressObserver
}

// Options tunes how a Service processes repositories.
type Options struct {
	CloneProtocol gitrepo.RemoteProtocol
	Concurrency   int
}

// Service decides, per repository, whether to clone, pull, or leave a local clone alone.
type Service struct {
	inspector        RepositoryInspector
	fileSystem       afero.Fs
	logger           *zap.Logger
	progressObserver ProgressObserver
	cloneProtocol    gitrepo.RemoteProtocol
	concurrency      int
	pathLocks        pathLockRegistry
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies, options Options) (*Service, error) {
	if dependencies.RepositoryInspector == nil {
		return nil, ErrRepositoryInspectorNotConfigured
	}

	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cloneProtocol := options.CloneProtocol
	if len(cloneProtocol) == 0 {
		cloneProtocol = gitrepo.RemoteProtocolSSH
	}
	concurrency := options.Concurrency
	if concurrency < defaultConcurrencyConstant {
		concurrency = defaultConcurrencyConstant
	}

	return &Service{
		inspector:        dependencies.RepositoryInspector,
		fileSystem:       fileSystem,
		logger:           logger,
		progressObserver: dependencies.ProgressObserver,
		cloneProtocol:    cloneProtocol,
		concurrency:      concurrency,
		pathLocks:        pathLockRegistry{locks: map[string]*sync.Mutex{}},
	}, nil
}

// SyncAll produces exactly one result per repository, in input order. Individual repository
// failures are reported as SkippedError results; only an unusable target directory is returned as an error.
func (service *Service) SyncAll(executionContext context.Context, repositories []RemoteRepository, directory string) (SyncReport, error) {
	trimmedDirectory := strings.TrimSpace(directory)
	if len(trimmedDirectory) == 0 {
		return SyncReport{}, ErrDirectoryRequired
	}
	if creationError := service.fileSystem.MkdirAll(trimmedDirectory, directoryPermissionsConstant); creationError != nil {
		return SyncReport{}, fmt.Errorf(directoryCreationErrorTemplateConstant, trimmedDirectory, creationError)
	}

	results := make([]SyncResult, len(repositories))
	tracker := progressTracker{observer: service.progressObserver, total: len(repositories)}

	var workers errgroup.Group
	workers.SetLimit(service.concurrency)
	for repositoryIndex := range repositories {
		repository := repositories[repositoryIndex]
		workers.Go(func() error {
			result := service.syncRepository(executionContext, repository, trimmedDirectory)
			results[repositoryIndex] = result
			tracker.record(result)
			return nil
		})
	}
	_ = workers.Wait()

	return Aggregate(results), nil
}

func (service *Service) syncRepository(executionContext context.Context, repository RemoteRepository, directory string) SyncResult {
	if contextError := executionContext.Err(); contextError != nil {
		return SyncResult{RepositoryName: repository.Name, Action: SyncActionSkippedError, Message: fmt.Sprintf(cancelledMessageTemplateConstant, contextError)}
	}

	if validationError := validateRepositoryName(repository.Name); validationError != nil {
		return SyncResult{RepositoryName: repository.Name, Action: SyncActionSkippedError, Message: validationError.Error()}
	}

	localPath := filepath.Join(directory, repository.Name)
	unlock := service.pathLocks.lock(localPath)
	defer unlock()

	result, syncError := service.decide(executionContext, repository, localPath)
	result = resolveOutcome(repository, result, syncError)

	service.logger.Debug(
		logMessageRepositorySynchronizedConstant,
		zap.String(logFieldRepositoryConstant, repository.Name),
		zap.String(logFieldPathConstant, localPath),
		zap.String(logFieldActionConstant, string(result.Action)),
		zap.String(logFieldMessageConstant, result.Message),
	)
	return result
}

// decide walks the decision table for one repository. A returned error always accompanies a partially
// filled result describing how far the decision got.
func (service *Service) decide(executionContext context.Context, repository RemoteRepository, localPath string) (SyncResult, error) {
	result := SyncResult{RepositoryName: repository.Name}

	pathInfo, statError := service.fileSystem.Stat(localPath)
	switch {
	case errors.Is(statError, os.ErrNotExist):
		return service.clone(executionContext, repository, localPath)
	case statError != nil:
		return result, fmt.Errorf(inspectionFailedMessageTemplateConstant, localPath, statError)
	case !pathInfo.IsDir():
		return result, fmt.Errorf(notDirectoryMessageTemplateConstant, localPath)
	}

	isRepository, probeError := service.inspector.IsGitRepository(localPath)
	if probeError != nil {
		return result, fmt.Errorf(inspectionFailedMessageTemplateConstant, localPath, probeError)
	}
	if !isRepository {
		return result, gitrepo.RepositoryStateError{RepositoryPath: localPath, Reason: notRepositoryReasonConstant}
	}

	branchName, branchError := service.inspector.GetCurrentBranch(executionContext, localPath)
	if branchError != nil {
		service.logger.Debug(logMessageRepositoryBranchUnknownConstant, zap.String(logFieldPathConstant, localPath), zap.Error(branchError))
	}
	result.Branch = branchName

	clean, cleanError := service.inspector.CheckCleanWorktree(executionContext, localPath)
	if cleanError != nil {
		return result, fmt.Errorf(statusFailedMessageTemplateConstant, cleanError)
	}
	if !clean {
		result.Action = SyncActionSkippedDirty
		result.Message = dirtyMessageConstant
		return result, nil
	}

	needsPull, needsPullError := service.inspector.NeedsPull(executionContext, localPath)
	if needsPullError != nil {
		return result, fmt.Errorf(upstreamCheckFailedMessageTemplateConstant, needsPullError)
	}
	if !needsPull {
		result.Action = SyncActionAlreadyCurrent
		result.Message = alreadyCurrentMessageConstant
		return result, nil
	}

	if pullError := service.inspector.Pull(executionContext, localPath); pullError != nil {
		return result, fmt.Errorf(pullFailedMessageTemplateConstant, pullError)
	}
	result.Action = SyncActionPulled
	result.Message = pulledMessageConstant
	return result, nil
}

func (service *Service) clone(executionContext context.Context, repository RemoteRepository, localPath string) (SyncResult, error) {
	result := SyncResult{RepositoryName: repository.Name}

	cloneURL, selectionError := gitrepo.SelectCloneURL(repository.HTTPSURL, repository.SSHURL, service.cloneProtocol)
	if selectionError != nil {
		return result, fmt.Errorf(noCloneURLMessageTemplateConstant, selectionError)
	}

	if cloneError := service.inspector.Clone(executionContext, cloneURL, localPath); cloneError != nil {
		return result, fmt.Errorf(cloneFailedMessageTemplateConstant, cloneError)
	}

	result.Action = SyncActionCloned
	result.Message = fmt.Sprintf(clonedMessageTemplateConstant, localPath)
	return result, nil
}

// resolveOutcome collapses a failed decision into a SkippedError result, keeping any branch already learned.
func resolveOutcome(repository RemoteRepository, result SyncResult, syncError error) SyncResult {
	if syncError == nil {
		return result
	}
	result.RepositoryName = repository.Name
	result.Action = SyncActionSkippedError
	result.Message = syncError.Error()
	return result
}

func validateRepositoryName(repositoryName string) error {
	trimmedName := strings.TrimSpace(repositoryName)
	if len(trimmedName) == 0 || trimmedName != repositoryName || trimmedName == "." || trimmedName == ".." || strings.ContainsAny(trimmedName, `/\`) {
		return fmt.Errorf(invalidNameMessageTemplateConstant, repositoryName)
	}
	return nil
}

// pathLockRegistry serializes work on the same local path.
type pathLockRegistry struct {
	mutex sync.Mutex
	locks map[string]*sync.Mutex
}

func (registry *pathLockRegistry) lock(localPath string) func() {
	registry.mutex.Lock()
	pathMutex, exists := registry.locks[localPath]
	if !exists {
		pathMutex = &sync.Mutex{}
		registry.locks[localPath] = pathMutex
	}
	registry.mutex.Unlock()

	pathMutex.Lock()
	return pathMutex.Unlock
}

type progressTracker struct {
	mutex     sync.Mutex
	observer  ProgressObserver
	total     int
	completed int
}

func (tracker *progressTracker) record(result SyncResult) {
	tracker.mutex.Lock()
	defer tracker.mutex.Unlock()
	tracker.completed++
	if tracker.observer != nil {
		tracker.observer.RepositorySynchronized(tracker.completed, tracker.total, result)
	}
}
