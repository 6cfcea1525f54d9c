package githubcli

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const (
	pullRequestJSONFieldsConstant         = "number,title,createdAt,author,url,headRefName"
	workflowRunJSONFieldsConstant         = "status,conclusion,name,createdAt"
	pullRequestLimitDefaultValueConstant  = 100
	workflowRunLimitDefaultValueConstant  = 20
	branchesEndpointTemplateConstant      = "repos/%s/branches"
	listPullRequestsOperationNameConstant = OperationName("ListPullRequests")
	listBranchesOperationNameConstant     = OperationName("ListBranches")
	listWorkflowRunsOperationNameConstant = OperationName("ListWorkflowRuns")
)

// PullRequestState describes acceptable GitHub pull request states.
type PullRequestState string

// Pull request state enumerations.
const (
	PullRequestStateOpen   PullRequestState = PullRequestState("open")
	PullRequestStateClosed PullRequestState = PullRequestState("closed")
	PullRequestStateMerged PullRequestState = PullRequestState("merged")
	PullRequestStateAll    PullRequestState = PullRequestState("all")
)

// PullRequest represents the pull request fields gh pr list returns.
type PullRequest struct {
	Number      int
	Title       string
	CreatedAt   time.Time
	Author      string
	URL         string
	HeadRefName string
}

// PullRequestListOptions configures ListPullRequests queries.
type PullRequestListOptions struct {
	State       PullRequestState
	ResultLimit int
}

// WorkflowRun is a single GitHub Actions run. Conclusion is empty while the run is in progress.
type WorkflowRun struct {
	Name       string
	Status     string
	Conclusion string
	CreatedAt  time.Time
}

// ListPullRequests enumerates pull requests using gh pr list.
func (client *Client) ListPullRequests(executionContext context.Context, repository string, options PullRequestListOptions) ([]PullRequest, error) {
	repositoryIdentifier, validationError := requireRepository(repository)
	if validationError != nil {
		return nil, validationError
	}

	if len(options.State) == 0 {
		return nil, InvalidInputError{FieldName: stateFieldNameConstant, Message: requiredValueMessageConstant}
	}

	resultLimit := options.ResultLimit
	if resultLimit <= 0 {
		resultLimit = pullRequestLimitDefaultValueConstant
	}

	arguments := []string{
		pullRequestSubcommandConstant,
		listSubcommandConstant,
		repoFlagConstant,
		repositoryIdentifier,
		stateFlagConstant,
		string(options.State),
		jsonFlagConstant,
		pullRequestJSONFieldsConstant,
		limitFlagConstant,
		strconv.Itoa(resultLimit),
	}

	var response []struct {
		Number    int       `json:"number"`
		Title     string    `json:"title"`
		CreatedAt time.Time `json:"createdAt"`
		Author    struct {
			Login string `json:"login"`
		} `json:"author"`
		URL         string `json:"url"`
		HeadRefName string `json:"headRefName"`
	}
	if runError := client.runJSON(executionContext, listPullRequestsOperationNameConstant, arguments, &response); runError != nil {
		return nil, runError
	}

	pullRequests := make([]PullRequest, 0, len(response))
	for _, pullRequestEntry := range response {
		authorLogin := pullRequestEntry.Author.Login
		if len(authorLogin) == 0 {
			authorLogin = unknownCommitAuthorConstant
		}
		pullRequests = append(pullRequests, PullRequest{
			Number:      pullRequestEntry.Number,
			Title:       pullRequestEntry.Title,
			CreatedAt:   pullRequestEntry.CreatedAt,
			Author:      authorLogin,
			URL:         pullRequestEntry.URL,
			HeadRefName: pullRequestEntry.HeadRefName,
		})
	}

	return pullRequests, nil
}

// ListBranches returns every branch name of a repository across all API pages.
func (client *Client) ListBranches(executionContext context.Context, repository string) ([]string, error) {
	repositoryIdentifier, validationError := requireRepository(repository)
	if validationError != nil {
		return nil, validationError
	}

	type branchEntry struct {
		Name string `json:"name"`
	}
	arguments := []string{apiSubcommandConstant, fmt.Sprintf(branchesEndpointTemplateConstant, repositoryIdentifier), paginateFlagConstant}
	entries, runError := runPaginatedJSON[branchEntry](executionContext, client, listBranchesOperationNameConstant, arguments)
	if runError != nil {
		return nil, runError
	}

	branchNames := make([]string, 0, len(entries))
	for _, entry := range entries {
		branchNames = append(branchNames, entry.Name)
	}
	return branchNames, nil
}

// ListWorkflowRuns returns the most recent workflow runs, newest first.
func (client *Client) ListWorkflowRuns(executionContext context.Context, repository string, resultLimit int) ([]WorkflowRun, error) {
	repositoryIdentifier, validationError := requireRepository(repository)
	if validationError != nil {
		return nil, validationError
	}

	if resultLimit <= 0 {
		resultLimit = workflowRunLimitDefaultValueConstant
	}

	arguments := []string{
		runSubcommandConstant,
		listSubcommandConstant,
		repoFlagConstant,
		repositoryIdentifier,
		limitFlagConstant,
		strconv.Itoa(resultLimit),
		jsonFlagConstant,
		workflowRunJSONFieldsConstant,
	}

	var response []struct {
		Name       string    `json:"name"`
		Status     string    `json:"status"`
		Conclusion string    `json:"conclusion"`
		CreatedAt  time.Time `json:"createdAt"`
	}
	if runError := client.runJSON(executionContext, listWorkflowRunsOperationNameConstant, arguments, &response); runError != nil {
		return nil, runError
	}

	runs := make([]WorkflowRun, 0, len(response))
	for _, runEntry := range response {
		runs = append(runs, WorkflowRun{
			Name:       runEntry.Name,
			Status:     runEntry.Status,
			Conclusion: runEntry.Conclusion,
			CreatedAt:  runEntry.CreatedAt,
		})
	}
	return runs, nil
}
