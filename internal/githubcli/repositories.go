package githubcli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	repositoryListJSONFieldsConstant        = "name,url,sshUrl,pushedAt"
	repositoryDetailsJSONFieldsConstant     = "stargazerCount,forkCount,issues,primaryLanguage"
	repositoryListLimitDefaultValueConstant = 1000
	commitEndpointTemplateConstant          = "repos/%s/commits/%s"
	pagesEndpointTemplateConstant           = "repos/%s/pages"
	listRepositoriesOperationNameConstant   = OperationName("ListRepositories")
	repositoryDetailsOperationNameConstant  = OperationName("GetRepositoryDetails")
	lastCommitOperationNameConstant         = OperationName("GetLastCommit")
	pagesOperationNameConstant              = OperationName("GetPages")
	commitMessageLineSeparatorConstant      = "\n"
	unknownCommitAuthorConstant             = "Unknown"
)

// DefaultCommitBranches lists the branches probed, in order, for the latest commit.
var DefaultCommitBranches = []string{"main", "master"}

// RepositorySummary is one entry of an owner's repository listing.
type RepositorySummary struct {
	Name     string
	HTTPSURL string
	SSHURL   string
	PushedAt time.Time
}

// RepositoryListOptions configures ListRepositories queries.
type RepositoryListOptions struct {
	ResultLimit int
}

// RepositoryDetails carries popularity and language information.
type RepositoryDetails struct {
	Stars           int
	Forks           int
	OpenIssues      int
	PrimaryLanguage string
}

// Commit describes the head commit of a branch.
type Commit struct {
	SHA     string
	Message string
	Author  string
	Date    time.Time
}

// PagesStatus reports GitHub Pages availability.
type PagesStatus struct {
	Enabled bool
	URL     string
}

// ListRepositories enumerates repositories of a user or organization using gh repo list.
func (client *Client) ListRepositories(executionContext context.Context, owner string, options RepositoryListOptions) ([]RepositorySummary, error) {
	ownerName := strings.TrimSpace(owner)
	if len(ownerName) == 0 {
		return nil, InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}

	resultLimit := options.ResultLimit
	if resultLimit <= 0 {
		resultLimit = repositoryListLimitDefaultValueConstant
	}

	arguments := []string{
		repoSubcommandConstant,
		listSubcommandConstant,
		ownerName,
		jsonFlagConstant,
		repositoryListJSONFieldsConstant,
		limitFlagConstant,
		strconv.Itoa(resultLimit),
	}

	var response []struct {
		Name     string    `json:"name"`
		URL      string    `json:"url"`
		SSHURL   string    `json:"sshUrl"`
		PushedAt time.Time `json:"pushedAt"`
	}
	if runError := client.runJSON(executionContext, listRepositoriesOperationNameConstant, arguments, &response); runError != nil {
		return nil, runError
	}

	repositories := make([]RepositorySummary, 0, len(response))
	for _, repositoryEntry := range response {
		repositories = append(repositories, RepositorySummary{
			Name:     repositoryEntry.Name,
			HTTPSURL: repositoryEntry.URL,
			SSHURL:   repositoryEntry.SSHURL,
			PushedAt: repositoryEntry.PushedAt,
		})
	}
	return repositories, nil
}

// GetRepositoryDetails retrieves counters and the primary language using gh repo view.
func (client *Client) GetRepositoryDetails(executionContext context.Context, repository string) (RepositoryDetails, error) {
	repositoryIdentifier, validationError := requireRepository(repository)
	if validationError != nil {
		return RepositoryDetails{}, validationError
	}

	arguments := []string{
		repoSubcommandConstant,
		viewSubcommandConstant,
		repositoryIdentifier,
		jsonFlagConstant,
		repositoryDetailsJSONFieldsConstant,
	}

	var response struct {
		StargazerCount int `json:"stargazerCount"`
		ForkCount      int `json:"forkCount"`
		Issues         struct {
			TotalCount int `json:"totalCount"`
		} `json:"issues"`
		PrimaryLanguage *struct {
			Name string `json:"name"`
		} `json:"primaryLanguage"`
	}
	if runError := client.runJSON(executionContext, repositoryDetailsOperationNameConstant, arguments, &response); runError != nil {
		return RepositoryDetails{}, runError
	}

	details := RepositoryDetails{
		Stars:      response.StargazerCount,
		Forks:      response.ForkCount,
		OpenIssues: response.Issues.TotalCount,
	}
	if response.PrimaryLanguage != nil {
		details.PrimaryLanguage = response.PrimaryLanguage.Name
	}
	return details, nil
}

// GetLastCommit returns the head commit of the first branch in DefaultCommitBranches that resolves.
func (client *Client) GetLastCommit(executionContext context.Context, repository string) (Commit, error) {
	repositoryIdentifier, validationError := requireRepository(repository)
	if validationError != nil {
		return Commit{}, validationError
	}

	var lastError error
	for _, branchName := range DefaultCommitBranches {
		var response struct {
			SHA    string `json:"sha"`
			Commit struct {
				Message string `json:"message"`
				Author  struct {
					Name string    `json:"name"`
					Date time.Time `json:"date"`
				} `json:"author"`
			} `json:"commit"`
		}

		arguments := []string{apiSubcommandConstant, fmt.Sprintf(commitEndpointTemplateConstant, repositoryIdentifier, branchName)}
		runError := client.runJSON(executionContext, lastCommitOperationNameConstant, arguments, &response)
		if runError != nil {
			lastError = runError
			continue
		}

		authorName := response.Commit.Author.Name
		if len(strings.TrimSpace(authorName)) == 0 {
			authorName = unknownCommitAuthorConstant
		}
		return Commit{
			SHA:     response.SHA,
			Message: strings.SplitN(response.Commit.Message, commitMessageLineSeparatorConstant, 2)[0],
			Author:  authorName,
			Date:    response.Commit.Author.Date,
		}, nil
	}

	return Commit{}, lastError
}

// GetPages reports GitHub Pages configuration; a repository without Pages yields an OperationError.
func (client *Client) GetPages(executionContext context.Context, repository string) (PagesStatus, error) {
	repositoryIdentifier, validationError := requireRepository(repository)
	if validationError != nil {
		return PagesStatus{}, validationError
	}

	var response struct {
		HTMLURL string `json:"html_url"`
	}
	arguments := []string{apiSubcommandConstant, fmt.Sprintf(pagesEndpointTemplateConstant, repositoryIdentifier)}
	if runError := client.runJSON(executionContext, pagesOperationNameConstant, arguments, &response); runError != nil {
		return PagesStatus{}, runError
	}

	return PagesStatus{Enabled: true, URL: response.HTMLURL}, nil
}

// PushedSince keeps, in listing order, the repositories pushed strictly after cutoff.
func PushedSince(repositories []RepositorySummary, cutoff time.Time) []RepositorySummary {
	recent := make([]RepositorySummary, 0, len(repositories))
	for _, repository := range repositories {
		if !repository.PushedAt.After(cutoff) {
			continue
		}
		recent = append(recent, repository)
	}
	return recent
}
