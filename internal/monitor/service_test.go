package monitor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/ghmonitor/internal/githubcli"
	"github.com/temirov/ghmonitor/internal/monitor"
)

const (
	testOwnerConstant      = "octo"
	testAlphaNameConstant  = "octo/alpha"
	testBravoNameConstant  = "octo/bravo"
	testCIRunLimitConstant = 5
)

var testNow = time.Date(2024, time.June, 30, 12, 0, 0, 0, time.UTC)

type stubGitHubClient struct {
	repositories        []githubcli.RepositorySummary
	listError           error
	commits             map[string]githubcli.Commit
	openPullRequests    map[string][]githubcli.PullRequest
	allPullRequests     map[string][]githubcli.PullRequest
	branches            map[string][]string
	pages               map[string]githubcli.PagesStatus
	workflowRuns        map[string][]githubcli.WorkflowRun
	details             map[string]githubcli.RepositoryDetails
	failEverything      bool
	requestedRunLimits  []int
	requestedPRStates   []githubcli.PullRequestState
	collectedRepository []string
}

var errStubQuery = errors.New("gh: HTTP 404")

func (client *stubGitHubClient) ListRepositories(context.Context, string, githubcli.RepositoryListOptions) ([]githubcli.RepositorySummary, error) {
	return client.repositories, client.listError
}

func (client *stubGitHubClient) GetLastCommit(_ context.Context, repository string) (githubcli.Commit, error) {
	client.collectedRepository = append(client.collectedRepository, repository)
	commit, found := client.commits[repository]
	if !found || client.failEverything {
		return githubcli.Commit{}, errStubQuery
	}
	return commit, nil
}

func (client *stubGitHubClient) ListPullRequests(_ context.Context, repository string, options githubcli.PullRequestListOptions) ([]githubcli.PullRequest, error) {
	client.requestedPRStates = append(client.requestedPRStates, options.State)
	if client.failEverything {
		return nil, errStubQuery
	}
	if options.State == githubcli.PullRequestStateAll {
		return client.allPullRequests[repository], nil
	}
	return client.openPullRequests[repository], nil
}

func (client *stubGitHubClient) ListBranches(_ context.Context, repository string) ([]string, error) {
	if client.failEverything {
		return nil, errStubQuery
	}
	return client.branches[repository], nil
}

func (client *stubGitHubClient) GetPages(_ context.Context, repository string) (githubcli.PagesStatus, error) {
	pages, found := client.pages[repository]
	if !found || client.failEverything {
		return githubcli.PagesStatus{}, errStubQuery
	}
	return pages, nil
}

func (client *stubGitHubClient) ListWorkflowRuns(_ context.Context, repository string, resultLimit int) ([]githubcli.WorkflowRun, error) {
	client.requestedRunLimits = append(client.requestedRunLimits, resultLimit)
	if client.failEverything {
		return nil, errStubQuery
	}
	return client.workflowRuns[repository], nil
}

func (client *stubGitHubClient) GetRepositoryDetails(_ context.Context, repository string) (githubcli.RepositoryDetails, error) {
	if client.failEverything {
		return githubcli.RepositoryDetails{}, errStubQuery
	}
	return client.details[repository], nil
}

type recordingProgressObserver struct {
	completed []int
	totals    []int
	names     []string
}

func (recorder *recordingProgressObserver) RepositoryCollected(completed int, total int, repository monitor.Repository) {
	recorder.completed = append(recorder.completed, completed)
	recorder.totals = append(recorder.totals, total)
	recorder.names = append(recorder.names, repository.Name)
}

func newPopulatedClient() *stubGitHubClient {
	return &stubGitHubClient{
		repositories: []githubcli.RepositorySummary{
			{Name: "alpha", HTTPSURL: "https://github.com/octo/alpha", PushedAt: testNow.Add(-2 * 24 * time.Hour)},
			{Name: "stale", HTTPSURL: "https://github.com/octo/stale", PushedAt: testNow.Add(-90 * 24 * time.Hour)},
			{Name: "bravo", PushedAt: testNow.Add(-time.Hour)},
		},
		commits: map[string]githubcli.Commit{
			testAlphaNameConstant: {SHA: "abc123", Message: "Fix build", Author: "Ada", Date: testNow.Add(-48 * time.Hour)},
		},
		openPullRequests: map[string][]githubcli.PullRequest{
			testAlphaNameConstant: {{Number: 7, Title: "Add feature", CreatedAt: testNow.Add(-10*24*time.Hour - time.Hour), Author: "grace", URL: "https://github.com/octo/alpha/pull/7", HeadRefName: "feature/add"}},
		},
		allPullRequests: map[string][]githubcli.PullRequest{
			testAlphaNameConstant: {{Number: 7, HeadRefName: "feature/add"}, {Number: 3, HeadRefName: "fix/merged"}},
		},
		branches: map[string][]string{
			testAlphaNameConstant: {"main", "feature/add", "fix/merged", "spike/orphan", "master"},
		},
		pages: map[string]githubcli.PagesStatus{
			testAlphaNameConstant: {Enabled: true, URL: "https://octo.github.io/alpha/"},
		},
		workflowRuns: map[string][]githubcli.WorkflowRun{
			testAlphaNameConstant: {
				{Name: "CI", Status: "completed", Conclusion: "failure", CreatedAt: testNow.Add(-time.Hour)},
				{Name: "CI", Status: "completed", Conclusion: "success", CreatedAt: testNow.Add(-2 * time.Hour)},
				{Name: "CI", Status: "completed", Conclusion: "success", CreatedAt: testNow.Add(-3 * time.Hour)},
				{Name: "Deploy", Status: "completed", Conclusion: "success", CreatedAt: testNow.Add(-4 * time.Hour)},
			},
		},
		details: map[string]githubcli.RepositoryDetails{
			testAlphaNameConstant: {Stars: 12, Forks: 3, OpenIssues: 4, PrimaryLanguage: "Go"},
		},
	}
}

func newMonitorService(testInstance *testing.T, client monitor.GitHubClient, progressObserver monitor.ProgressObserver, logger *zap.Logger) *monitor.Service {
	testInstance.Helper()
	service, creationError := monitor.NewService(
		monitor.Dependencies{GitHubClient: client, Clock: func() time.Time { return testNow }, ProgressObserver: progressObserver, Logger: logger},
		monitor.Options{Days: 30, CIRunLimit: testCIRunLimitConstant},
	)
	require.NoError(testInstance, creationError)
	return service
}

func TestNewServiceValidation(testInstance *testing.T) {
	_, missingClientError := monitor.NewService(monitor.Dependencies{}, monitor.Options{})
	require.ErrorIs(testInstance, missingClientError, monitor.ErrGitHubClientNotConfigured)

	testCases := []struct {
		name        string
		days        int
		expectError bool
	}{
		{name: "default", days: 0},
		{name: "minimum", days: 1},
		{name: "maximum", days: 365},
		{name: "negative", days: -1, expectError: true},
		{name: "too_large", days: 366, expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, creationError := monitor.NewService(monitor.Dependencies{GitHubClient: &stubGitHubClient{}}, monitor.Options{Days: testCase.days})
			if testCase.expectError {
				var rangeError monitor.DaysOutOfRangeError
				require.ErrorAs(testInstance, creationError, &rangeError)
				require.Equal(testInstance, testCase.days, rangeError.Days)
				return
			}
			require.NoError(testInstance, creationError)
		})
	}
}

func TestCollectBuildsRepositoryMetrics(testInstance *testing.T) {
	client := newPopulatedClient()
	progressObserver := &recordingProgressObserver{}
	service := newMonitorService(testInstance, client, progressObserver, nil)

	report, collectError := service.Collect(context.Background(), testOwnerConstant)
	require.NoError(testInstance, collectError)

	require.Equal(testInstance, testOwnerConstant, report.Owner)
	require.Equal(testInstance, testNow, report.GeneratedAt)
	require.Equal(testInstance, 30, report.ScanPeriodDays)
	require.Equal(testInstance, 2, report.TotalRepositories())
	require.Equal(testInstance, 1, report.TotalOpenPullRequests())
	require.Equal(testInstance, 1, report.TotalBranchesWithoutPullRequests())

	alpha := report.Repositories[0]
	require.Equal(testInstance, "alpha", alpha.Name)
	require.Equal(testInstance, testAlphaNameConstant, alpha.FullName)
	require.Equal(testInstance, "https://github.com/octo/alpha", alpha.URL)
	require.Equal(testInstance, &monitor.Commit{SHA: "abc123", Message: "Fix build", Author: "Ada", Date: testNow.Add(-48 * time.Hour)}, alpha.LastCommit)
	require.Len(testInstance, alpha.OpenPullRequests, 1)
	require.Equal(testInstance, 10, alpha.OpenPullRequests[0].AgeDays)
	require.Equal(testInstance, "grace", alpha.OpenPullRequests[0].Author)
	require.Equal(testInstance, []string{"spike/orphan"}, alpha.BranchesWithoutPullRequests)
	require.True(testInstance, alpha.PagesEnabled)
	require.Equal(testInstance, "https://octo.github.io/alpha/", alpha.PagesURL)
	require.Equal(testInstance, monitor.CIStatusFailure, alpha.CIStatus)
	require.InDelta(testInstance, 0.75, alpha.CISuccessRate, 1e-9)
	require.Len(testInstance, alpha.CIRecentRuns, 4)
	require.Equal(testInstance, 12, alpha.Stars)
	require.Equal(testInstance, "Go", alpha.PrimaryLanguage)
	require.Equal(testInstance, testNow, alpha.LastUpdated)

	failedRun, hasFailure := alpha.LastFailedRun()
	require.True(testInstance, hasFailure)
	require.Equal(testInstance, "CI", failedRun)

	bravo := report.Repositories[1]
	require.Equal(testInstance, "https://github.com/octo/bravo", bravo.URL)
	require.Nil(testInstance, bravo.LastCommit)
	require.False(testInstance, bravo.PagesEnabled)
	require.Equal(testInstance, monitor.CIStatusNoCI, bravo.CIStatus)
	require.Empty(testInstance, bravo.OpenPullRequests)

	require.Equal(testInstance, []int{1, 2}, progressObserver.completed)
	require.Equal(testInstance, []int{2, 2}, progressObserver.totals)
	require.Equal(testInstance, []string{"alpha", "bravo"}, progressObserver.names)
	require.Equal(testInstance, []string{testAlphaNameConstant, testBravoNameConstant}, client.collectedRepository)
	require.Equal(testInstance, []int{testCIRunLimitConstant, testCIRunLimitConstant}, client.requestedRunLimits)
	require.Equal(testInstance, []githubcli.PullRequestState{
		githubcli.PullRequestStateOpen, githubcli.PullRequestStateAll,
		githubcli.PullRequestStateOpen, githubcli.PullRequestStateAll,
	}, client.requestedPRStates)
}

func TestCollectDegradesFailingQueries(testInstance *testing.T) {
	client := newPopulatedClient()
	client.failEverything = true
	core, recordedLogs := observer.New(zapcore.DebugLevel)
	service := newMonitorService(testInstance, client, nil, zap.New(core))

	report, collectError := service.Collect(context.Background(), testOwnerConstant)
	require.NoError(testInstance, collectError)
	require.Equal(testInstance, 2, report.TotalRepositories())

	alpha := report.Repositories[0]
	require.Nil(testInstance, alpha.LastCommit)
	require.Empty(testInstance, alpha.OpenPullRequests)
	require.Empty(testInstance, alpha.BranchesWithoutPullRequests)
	require.False(testInstance, alpha.PagesEnabled)
	require.Equal(testInstance, monitor.CIStatusNoCI, alpha.CIStatus)
	require.Zero(testInstance, alpha.Stars)

	require.NotEmpty(testInstance, recordedLogs.FilterMessage("Repository metric unavailable").All())
}

func TestCollectListingFailure(testInstance *testing.T) {
	listingFailure := errors.New("gh: not logged in")
	service := newMonitorService(testInstance, &stubGitHubClient{listError: listingFailure}, nil, nil)

	_, collectError := service.Collect(context.Background(), testOwnerConstant)
	require.ErrorIs(testInstance, collectError, listingFailure)
	require.Contains(testInstance, collectError.Error(), "unable to list repositories for octo")
}

func TestCollectWithoutActiveRepositories(testInstance *testing.T) {
	client := &stubGitHubClient{repositories: []githubcli.RepositorySummary{{Name: "stale", PushedAt: testNow.Add(-365 * 24 * time.Hour)}}}
	service := newMonitorService(testInstance, client, nil, nil)

	report, collectError := service.Collect(context.Background(), testOwnerConstant)
	require.NoError(testInstance, collectError)
	require.Zero(testInstance, report.TotalRepositories())
	require.Empty(testInstance, client.collectedRepository)
}

func TestCollectStopsWhenCancelled(testInstance *testing.T) {
	service := newMonitorService(testInstance, newPopulatedClient(), nil, nil)
	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	_, collectError := service.Collect(cancelledContext, testOwnerConstant)
	require.ErrorIs(testInstance, collectError, context.Canceled)
}

func TestAnalyzeWorkflowRuns(testInstance *testing.T) {
	testCases := []struct {
		name           string
		runs           []githubcli.WorkflowRun
		expectedStatus monitor.CIStatus
		expectedRate   float64
	}{
		{name: "no_runs", expectedStatus: monitor.CIStatusNoCI},
		{
			name:           "latest_success",
			runs:           []githubcli.WorkflowRun{{Conclusion: "success"}, {Conclusion: "failure"}},
			expectedStatus: monitor.CIStatusSuccess,
			expectedRate:   0.5,
		},
		{
			name:           "nothing_completed",
			runs:           []githubcli.WorkflowRun{{Status: "queued"}, {Status: "in_progress"}},
			expectedStatus: monitor.CIStatusPending,
		},
		{
			name:           "latest_in_progress",
			runs:           []githubcli.WorkflowRun{{Status: "in_progress"}, {Conclusion: "success"}},
			expectedStatus: monitor.CIStatusPending,
			expectedRate:   1,
		},
		{
			name:           "latest_cancelled",
			runs:           []githubcli.WorkflowRun{{Conclusion: "cancelled"}, {Conclusion: "success"}},
			expectedStatus: monitor.CIStatusUnknown,
			expectedRate:   0.5,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			status, runs, rate := monitor.AnalyzeWorkflowRuns(testCase.runs)
			require.Equal(testInstance, testCase.expectedStatus, status)
			require.InDelta(testInstance, testCase.expectedRate, rate, 1e-9)
			require.Len(testInstance, runs, len(testCase.runs))
		})
	}
}

func TestBranchesWithoutPullRequests(testInstance *testing.T) {
	branches := []string{"main", "develop", "feature/a", "master", "feature/b"}
	remaining := monitor.BranchesWithoutPullRequests(branches, []string{"feature/a"})
	require.Equal(testInstance, []string{"develop", "feature/b"}, remaining)
	require.Empty(testInstance, monitor.BranchesWithoutPullRequests(nil, nil))
}
