package monitor

import "time"

// CIStatus summarizes the health of a repository's continuous integration.
type CIStatus string

// CI status values.
const (
	CIStatusSuccess CIStatus = CIStatus("success")
	CIStatusFailure CIStatus = CIStatus("failure")
	CIStatusPending CIStatus = CIStatus("pending")
	CIStatusNoCI    CIStatus = CIStatus("no_ci")
	CIStatusUnknown CIStatus = CIStatus("unknown")
)

// Commit is the head commit of a repository's default branch.
type Commit struct {
	SHA     string
	Message string
	Author  string
	Date    time.Time
}

// PullRequest is an open pull request together with its age.
type PullRequest struct {
	Number    int
	Title     string
	CreatedAt time.Time
	Author    string
	AgeDays   int
	URL       string
}

// CIRun is one workflow run. Conclusion is empty while the run has not completed.
type CIRun struct {
	Name       string
	Status     string
	Conclusion string
	CreatedAt  time.Time
}

// Repository carries every metric collected for one repository.
type Repository struct {
	Name                        string
	Owner                       string
	FullName                    string
	URL                         string
	LastCommit                  *Commit
	OpenPullRequests            []PullRequest
	BranchesWithoutPullRequests []string
	PagesEnabled                bool
	PagesURL                    string
	CIStatus                    CIStatus
	CIRecentRuns                []CIRun
	CISuccessRate               float64
	LastUpdated                 time.Time
	Stars                       int
	Forks                       int
	OpenIssues                  int
	PrimaryLanguage             string
}

// LastFailedRun returns the name of the most recent failed run, if any.
func (repository Repository) LastFailedRun() (string, bool) {
	for _, run := range repository.CIRecentRuns {
		if run.Conclusion == ciConclusionFailureConstant {
			return run.Name, true
		}
	}
	return "", false
}

// Report is the result of one monitoring pass over an owner.
type Report struct {
	Owner          string
	GeneratedAt    time.Time
	ScanPeriodDays int
	Repositories   []Repository
}

// TotalRepositories counts the monitored repositories.
func (report Report) TotalRepositories() int {
	return len(report.Repositories)
}

// TotalOpenPullRequests sums open pull requests across repositories.
func (report Report) TotalOpenPullRequests() int {
	total := 0
	for _, repository := range report.Repositories {
		total += len(repository.OpenPullRequests)
	}
	return total
}

// TotalBranchesWithoutPullRequests sums branches lacking a pull request across repositories.
func (report Report) TotalBranchesWithoutPullRequests() int {
	total := 0
	for _, repository := range report.Repositories {
		total += len(repository.BranchesWithoutPullRequests)
	}
	return total
}
