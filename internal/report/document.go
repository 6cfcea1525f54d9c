package report

import (
	"time"

	"github.com/temirov/ghmonitor/internal/monitor"
)

// document is the serializable tree shared by the YAML and TOON renderings.
type document struct {
	Metadata     metadataDocument     `yaml:"report_metadata"`
	Repositories []repositoryDocument `yaml:"repositories"`
}

type metadataDocument struct {
	Owner                            string `yaml:"owner"`
	GeneratedAt                      string `yaml:"generated_at"`
	ScanPeriodDays                   int    `yaml:"scan_period_days"`
	TotalRepositories                int    `yaml:"total_repositories"`
	TotalOpenPullRequests            int    `yaml:"total_open_prs"`
	TotalBranchesWithoutPullRequests int    `yaml:"total_branches_without_prs"`
}

type repositoryDocument struct {
	Name                          string                `yaml:"name"`
	Owner                         string                `yaml:"owner"`
	FullName                      string                `yaml:"full_name"`
	URL                           string                `yaml:"url"`
	LastCommit                    *commitDocument       `yaml:"last_commit"`
	OpenPullRequests              []pullRequestDocument `yaml:"open_prs"`
	PullRequestCount              int                   `yaml:"pr_count"`
	BranchesWithoutPullRequests   []string              `yaml:"branches_without_prs"`
	BranchWithoutPullRequestCount int                   `yaml:"branch_without_pr_count"`
	Pages                         pagesDocument         `yaml:"github_pages"`
	ContinuousIntegration         ciDocument            `yaml:"ci"`
	LastUpdated                   string                `yaml:"last_updated"`
	Statistics                    statisticsDocument    `yaml:"stats"`
}

type commitDocument struct {
	SHA     string `yaml:"sha"`
	Message string `yaml:"message"`
	Author  string `yaml:"author"`
	Date    string `yaml:"date"`
}

type pullRequestDocument struct {
	Number    int    `yaml:"number"`
	Title     string `yaml:"title"`
	CreatedAt string `yaml:"created_at"`
	Author    string `yaml:"author"`
	AgeDays   int    `yaml:"age_days"`
	URL       string `yaml:"url"`
}

type pagesDocument struct {
	Enabled bool    `yaml:"enabled"`
	URL     *string `yaml:"url"`
}

type ciDocument struct {
	Status      string          `yaml:"status"`
	RecentRuns  []ciRunDocument `yaml:"recent_runs"`
	SuccessRate float64         `yaml:"success_rate"`
}

type ciRunDocument struct {
	Name       string  `yaml:"name"`
	Status     string  `yaml:"status"`
	Conclusion *string `yaml:"conclusion"`
	CreatedAt  string  `yaml:"created_at"`
}

type statisticsDocument struct {
	Stars      int     `yaml:"stars"`
	Forks      int     `yaml:"forks"`
	OpenIssues int     `yaml:"open_issues"`
	Language   *string `yaml:"language"`
}

func newDocument(monitorReport monitor.Report) document {
	repositories := make([]repositoryDocument, 0, len(monitorReport.Repositories))
	for _, repository := range monitorReport.Repositories {
		repositories = append(repositories, newRepositoryDocument(repository))
	}

	return document{
		Metadata: metadataDocument{
			Owner:                            monitorReport.Owner,
			GeneratedAt:                      formatTimestamp(monitorReport.GeneratedAt),
			ScanPeriodDays:                   monitorReport.ScanPeriodDays,
			TotalRepositories:                monitorReport.TotalRepositories(),
			TotalOpenPullRequests:            monitorReport.TotalOpenPullRequests(),
			TotalBranchesWithoutPullRequests: monitorReport.TotalBranchesWithoutPullRequests(),
		},
		Repositories: repositories,
	}
}

func newRepositoryDocument(repository monitor.Repository) repositoryDocument {
	var lastCommit *commitDocument
	if repository.LastCommit != nil {
		lastCommit = &commitDocument{
			SHA:     repository.LastCommit.SHA,
			Message: repository.LastCommit.Message,
			Author:  repository.LastCommit.Author,
			Date:    formatTimestamp(repository.LastCommit.Date),
		}
	}

	pullRequests := make([]pullRequestDocument, 0, len(repository.OpenPullRequests))
	for _, pullRequest := range repository.OpenPullRequests {
		pullRequests = append(pullRequests, pullRequestDocument{
			Number:    pullRequest.Number,
			Title:     pullRequest.Title,
			CreatedAt: formatTimestamp(pullRequest.CreatedAt),
			Author:    pullRequest.Author,
			AgeDays:   pullRequest.AgeDays,
			URL:       pullRequest.URL,
		})
	}

	runs := make([]ciRunDocument, 0, len(repository.CIRecentRuns))
	for _, run := range repository.CIRecentRuns {
		runs = append(runs, ciRunDocument{
			Name:       run.Name,
			Status:     run.Status,
			Conclusion: optionalString(run.Conclusion),
			CreatedAt:  formatTimestamp(run.CreatedAt),
		})
	}

	branches := make([]string, 0, len(repository.BranchesWithoutPullRequests))
	branches = append(branches, repository.BranchesWithoutPullRequests...)

	return repositoryDocument{
		Name:                          repository.Name,
		Owner:                         repository.Owner,
		FullName:                      repository.FullName,
		URL:                           repository.URL,
		LastCommit:                    lastCommit,
		OpenPullRequests:              pullRequests,
		PullRequestCount:              len(pullRequests),
		BranchesWithoutPullRequests:   branches,
		BranchWithoutPullRequestCount: len(branches),
		Pages:                         pagesDocument{Enabled: repository.PagesEnabled, URL: optionalString(repository.PagesURL)},
		ContinuousIntegration: ciDocument{
			Status:      string(repository.CIStatus),
			RecentRuns:  runs,
			SuccessRate: repository.CISuccessRate,
		},
		LastUpdated: formatTimestamp(repository.LastUpdated),
		Statistics: statisticsDocument{
			Stars:      repository.Stars,
			Forks:      repository.Forks,
			OpenIssues: repository.OpenIssues,
			Language:   optionalString(repository.PrimaryLanguage),
		},
	}
}

func formatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

func optionalString(value string) *string {
	if len(value) == 0 {
		return nil
	}
	return &value
}
