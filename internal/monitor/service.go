package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/ghmonitor/internal/githubcli"
)

const (
	gitHubClientMissingMessageConstant        = "github client not configured"
	daysOutOfRangeTemplateConstant            = "days must be between %d and %d, got %d"
	listingFailedErrorTemplateConstant        = "unable to list repositories for %s: %w"
	collectionInterruptedTemplateConstant     = "monitoring interrupted after %d of %d repositories: %w"
	repositoryIdentifierTemplateConstant      = "%s/%s"
	repositoryURLTemplateConstant             = "https://github.com/%s/%s"
	ciConclusionSuccessConstant               = "success"
	ciConclusionFailureConstant               = "failure"
	openPullRequestLimitConstant              = 100
	pullRequestHeadLimitConstant              = 1000
	defaultCIRunLimitConstant                 = 20
	hoursPerDayConstant                       = 24
	logMessageSubQueryFailedConstant          = "Repository metric unavailable"
	logMessageRepositoryCollectedConstant     = "Repository collected"
	logMessageActiveRepositoriesFoundConstant = "Active repositories found"
	logFieldRepositoryConstant                = "repository"
	logFieldMetricConstant                    = "metric"
	logFieldOwnerConstant                     = "owner"
	logFieldCountConstant                     = "count"
	logFieldCIStatusConstant                  = "ci_status"
	metricLastCommitConstant                  = "last_commit"
	metricOpenPullRequestsConstant            = "open_pull_requests"
	metricBranchesConstant                    = "branches"
	metricPullRequestBranchesConstant         = "pull_request_branches"
	metricPagesConstant                       = "pages"
	metricWorkflowRunsConstant                = "workflow_runs"
	metricRepositoryDetailsConstant           = "repository_details"
)

// Day range accepted by the monitor.
const (
	MinimumDays = 1
	MaximumDays = 365
	DefaultDays = 30
)

// DefaultBranchNames never count as branches without pull requests.
var DefaultBranchNames = []string{"main", "master"}

// ErrGitHubClientNotConfigured indicates the GitHub client dependency was missing.
var ErrGitHubClientNotConfigured = errors.New(gitHubClientMissingMessageConstant)

// DaysOutOfRangeError reports an activity window outside MinimumDays..MaximumDays.
type DaysOutOfRangeError struct {
	Days int
}

// Error describes the accepted range.
func (rangeError DaysOutOfRangeError) Error() string {
	return fmt.Sprintf(daysOutOfRangeTemplateConstant, MinimumDays, MaximumDays, rangeError.Days)
}

// GitHubClient is the subset of githubcli.Client the collector queries.
type GitHubClient interface {
	ListRepositories(executionContext context.Context, owner string, options githubcli.RepositoryListOptions) ([]githubcli.RepositorySummary, error)
	GetLastCommit(executionContext context.Context, repository string) (githubcli.Commit, error)
	ListPullRequests(executionContext context.Context, repository string, options githubcli.PullRequestListOptions) ([]githubcli.PullRequest, error)
	ListBranches(executionContext context.Context, repository string) ([]string, error)
	GetPages(executionContext context.Context, repository string) (githubcli.PagesStatus, error)
	ListWorkflowRuns(executionContext context.Context, repository string, resultLimit int) ([]githubcli.WorkflowRun, error)
	GetRepositoryDetails(executionContext context.Context, repository string) (githubcli.RepositoryDetails, error)
}

// ProgressObserver is notified after each repository is collected.
type ProgressObserver interface {
	RepositoryCollected(completed int, total int, repository Repository)
}

// Clock supplies the current time.
type Clock func() time.Time

// Dependencies enumerates the collaborators of a Service.
type Dependencies struct {
	GitHubClient     GitHubClient
	Logger           *zap.Logger
	Clock            Clock
	ProgressObserver ProgressObserver
}

// Options tunes a monitoring pass.
type Options struct {
	Days       int
	CIRunLimit int
}

// Service collects repository health metrics for an owner.
type Service struct {
	client           GitHubClient
	logger           *zap.Logger
	clock            Clock
	progressObserver ProgressObserver
	days             int
	ciRunLimit       int
}

// NewService validates options and constructs a Service. Zero Days selects DefaultDays.
func NewService(dependencies Dependencies, options Options) (*Service, error) {
	if dependencies.GitHubClient == nil {
		return nil, ErrGitHubClientNotConfigured
	}

	days := options.Days
	if days == 0 {
		days = DefaultDays
	}
	if days < MinimumDays || days > MaximumDays {
		return nil, DaysOutOfRangeError{Days: days}
	}

	ciRunLimit := options.CIRunLimit
	if ciRunLimit <= 0 {
		ciRunLimit = defaultCIRunLimitConstant
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Service{
		client:           dependencies.GitHubClient,
		logger:           logger,
		clock:            clock,
		progressObserver: dependencies.ProgressObserver,
		days:             days,
		ciRunLimit:       ciRunLimit,
	}, nil
}

// Collect gathers metrics for every repository of owner pushed within the configured window.
// Repositories are processed one at a time in listing order. A failing metric query leaves
// that metric empty; only listing failures and cancellation abort the pass.
func (service *Service) Collect(executionContext context.Context, owner string) (Report, error) {
	ownerName := strings.TrimSpace(owner)
	summaries, listError := service.client.ListRepositories(executionContext, ownerName, githubcli.RepositoryListOptions{})
	if listError != nil {
		return Report{}, fmt.Errorf(listingFailedErrorTemplateConstant, ownerName, listError)
	}

	now := service.clock()
	cutoff := now.Add(-time.Duration(service.days) * hoursPerDayConstant * time.Hour)
	activeRepositories := githubcli.PushedSince(summaries, cutoff)
	service.logger.Debug(logMessageActiveRepositoriesFoundConstant, zap.String(logFieldOwnerConstant, ownerName), zap.Int(logFieldCountConstant, len(activeRepositories)))

	report := Report{
		Owner:          ownerName,
		GeneratedAt:    now,
		ScanPeriodDays: service.days,
		Repositories:   make([]Repository, 0, len(activeRepositories)),
	}

	for repositoryIndex, summary := range activeRepositories {
		if contextError := executionContext.Err(); contextError != nil {
			return Report{}, fmt.Errorf(collectionInterruptedTemplateConstant, repositoryIndex, len(activeRepositories), contextError)
		}

		repository := service.collectRepository(executionContext, ownerName, summary)
		report.Repositories = append(report.Repositories, repository)

		service.logger.Debug(logMessageRepositoryCollectedConstant, zap.String(logFieldRepositoryConstant, repository.FullName), zap.String(logFieldCIStatusConstant, string(repository.CIStatus)))
		if service.progressObserver != nil {
			service.progressObserver.RepositoryCollected(repositoryIndex+1, len(activeRepositories), repository)
		}
	}

	return report, nil
}

func (service *Service) collectRepository(executionContext context.Context, owner string, summary githubcli.RepositorySummary) Repository {
	fullName := fmt.Sprintf(repositoryIdentifierTemplateConstant, owner, summary.Name)
	repositoryURL := summary.HTTPSURL
	if len(repositoryURL) == 0 {
		repositoryURL = fmt.Sprintf(repositoryURLTemplateConstant, owner, summary.Name)
	}
	now := service.clock()

	repository := Repository{
		Name:                        summary.Name,
		Owner:                       owner,
		FullName:                    fullName,
		URL:                         repositoryURL,
		LastCommit:                  service.lastCommit(executionContext, fullName),
		OpenPullRequests:            service.openPullRequests(executionContext, fullName, now),
		BranchesWithoutPullRequests: service.branchesWithoutPullRequests(executionContext, fullName),
		LastUpdated:                 now,
	}

	pages, pagesError := service.client.GetPages(executionContext, fullName)
	service.logUnavailable(fullName, metricPagesConstant, pagesError)
	repository.PagesEnabled = pages.Enabled
	repository.PagesURL = pages.URL

	runs, runsError := service.client.ListWorkflowRuns(executionContext, fullName, service.ciRunLimit)
	service.logUnavailable(fullName, metricWorkflowRunsConstant, runsError)
	repository.CIStatus, repository.CIRecentRuns, repository.CISuccessRate = AnalyzeWorkflowRuns(runs)

	details, detailsError := service.client.GetRepositoryDetails(executionContext, fullName)
	service.logUnavailable(fullName, metricRepositoryDetailsConstant, detailsError)
	repository.Stars = details.Stars
	repository.Forks = details.Forks
	repository.OpenIssues = details.OpenIssues
	repository.PrimaryLanguage = details.PrimaryLanguage

	return repository
}

func (service *Service) lastCommit(executionContext context.Context, fullName string) *Commit {
	commit, commitError := service.client.GetLastCommit(executionContext, fullName)
	if commitError != nil {
		service.logUnavailable(fullName, metricLastCommitConstant, commitError)
		return nil
	}
	return &Commit{SHA: commit.SHA, Message: commit.Message, Author: commit.Author, Date: commit.Date}
}

func (service *Service) openPullRequests(executionContext context.Context, fullName string, now time.Time) []PullRequest {
	listed, listError := service.client.ListPullRequests(executionContext, fullName, githubcli.PullRequestListOptions{
		State:       githubcli.PullRequestStateOpen,
		ResultLimit: openPullRequestLimitConstant,
	})
	service.logUnavailable(fullName, metricOpenPullRequestsConstant, listError)

	pullRequests := make([]PullRequest, 0, len(listed))
	for _, pullRequest := range listed {
		pullRequests = append(pullRequests, PullRequest{
			Number:    pullRequest.Number,
			Title:     pullRequest.Title,
			CreatedAt: pullRequest.CreatedAt,
			Author:    pullRequest.Author,
			AgeDays:   ageInDays(pullRequest.CreatedAt, now),
			URL:       pullRequest.URL,
		})
	}
	return pullRequests
}

func (service *Service) branchesWithoutPullRequests(executionContext context.Context, fullName string) []string {
	branchNames, branchesError := service.client.ListBranches(executionContext, fullName)
	service.logUnavailable(fullName, metricBranchesConstant, branchesError)

	pullRequests, pullRequestsError := service.client.ListPullRequests(executionContext, fullName, githubcli.PullRequestListOptions{
		State:       githubcli.PullRequestStateAll,
		ResultLimit: pullRequestHeadLimitConstant,
	})
	service.logUnavailable(fullName, metricPullRequestBranchesConstant, pullRequestsError)

	headBranches := make([]string, 0, len(pullRequests))
	for _, pullRequest := range pullRequests {
		headBranches = append(headBranches, pullRequest.HeadRefName)
	}
	return BranchesWithoutPullRequests(branchNames, headBranches)
}

func (service *Service) logUnavailable(fullName string, metric string, queryError error) {
	if queryError == nil {
		return
	}
	service.logger.Debug(logMessageSubQueryFailedConstant, zap.String(logFieldRepositoryConstant, fullName), zap.String(logFieldMetricConstant, metric), zap.Error(queryError))
}

// BranchesWithoutPullRequests keeps, in order, the branches that are neither a default branch
// nor the head of any pull request.
func BranchesWithoutPullRequests(branchNames []string, pullRequestHeads []string) []string {
	excluded := make(map[string]struct{}, len(DefaultBranchNames)+len(pullRequestHeads))
	for _, branchName := range DefaultBranchNames {
		excluded[branchName] = struct{}{}
	}
	for _, headName := range pullRequestHeads {
		excluded[headName] = struct{}{}
	}

	remaining := make([]string, 0, len(branchNames))
	for _, branchName := range branchNames {
		if _, skip := excluded[branchName]; skip {
			continue
		}
		remaining = append(remaining, branchName)
	}
	return remaining
}

// AnalyzeWorkflowRuns derives the CI status from the newest run and the success rate over completed runs.
func AnalyzeWorkflowRuns(workflowRuns []githubcli.WorkflowRun) (CIStatus, []CIRun, float64) {
	if len(workflowRuns) == 0 {
		return CIStatusNoCI, []CIRun{}, 0
	}

	runs := make([]CIRun, 0, len(workflowRuns))
	completedCount := 0
	successCount := 0
	for _, workflowRun := range workflowRuns {
		runs = append(runs, CIRun{Name: workflowRun.Name, Status: workflowRun.Status, Conclusion: workflowRun.Conclusion, CreatedAt: workflowRun.CreatedAt})
		if len(workflowRun.Conclusion) == 0 {
			continue
		}
		completedCount++
		if workflowRun.Conclusion == ciConclusionSuccessConstant {
			successCount++
		}
	}

	if completedCount == 0 {
		return CIStatusPending, runs, 0
	}
	successRate := float64(successCount) / float64(completedCount)

	switch runs[0].Conclusion {
	case ciConclusionSuccessConstant:
		return CIStatusSuccess, runs, successRate
	case ciConclusionFailureConstant:
		return CIStatusFailure, runs, successRate
	case "":
		return CIStatusPending, runs, successRate
	default:
		return CIStatusUnknown, runs, successRate
	}
}

func ageInDays(createdAt time.Time, now time.Time) int {
	if createdAt.IsZero() || createdAt.After(now) {
		return 0
	}
	return int(now.Sub(createdAt).Hours() / hoursPerDayConstant)
}
