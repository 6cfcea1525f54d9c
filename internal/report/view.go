package report

import (
	"embed"
	"fmt"
	"strings"

	"github.com/temirov/ghmonitor/internal/monitor"
)

const (
	templateTimestampLayoutConstant = "2006-01-02 15:04:05"
	shortSHALengthConstant          = 7
	successPercentTemplateConstant  = "%.0f%%"
	unknownLanguageConstant         = "-"
	markdownPipeConstant            = "|"
	markdownEscapedPipeConstant     = `\|`
	newlineConstant                 = "\n"
	spaceConstant                   = " "
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

var ciStatusSymbols = map[monitor.CIStatus]string{
	monitor.CIStatusSuccess: "✓",
	monitor.CIStatusFailure: "✗",
	monitor.CIStatusPending: "…",
	monitor.CIStatusNoCI:    "-",
	monitor.CIStatusUnknown: "?",
}

// templateView flattens a monitor report into the values the Markdown and HTML templates print.
type templateView struct {
	Owner                            string
	Timestamp                        string
	ScanDays                         int
	TotalRepositories                int
	TotalOpenPullRequests            int
	TotalBranchesWithoutPullRequests int
	Repositories                     []repositoryView
}

type repositoryView struct {
	Name                        string
	URL                         string
	Language                    string
	Stars                       int
	OpenIssues                  int
	LastCommit                  *commitView
	OpenPullRequests            []monitor.PullRequest
	BranchesWithoutPullRequests []string
	PagesEnabled                bool
	PagesURL                    string
	CIStatus                    string
	CIStatusSymbol              string
	CISuccessPercent            string
	LastFailure                 string
}

type commitView struct {
	ShortSHA string
	Message  string
	Author   string
	Date     string
}

func newTemplateView(monitorReport monitor.Report) templateView {
	repositories := make([]repositoryView, 0, len(monitorReport.Repositories))
	for _, repository := range monitorReport.Repositories {
		repositories = append(repositories, newRepositoryView(repository))
	}

	return templateView{
		Owner:                            monitorReport.Owner,
		Timestamp:                        monitorReport.GeneratedAt.Format(templateTimestampLayoutConstant),
		ScanDays:                         monitorReport.ScanPeriodDays,
		TotalRepositories:                monitorReport.TotalRepositories(),
		TotalOpenPullRequests:            monitorReport.TotalOpenPullRequests(),
		TotalBranchesWithoutPullRequests: monitorReport.TotalBranchesWithoutPullRequests(),
		Repositories:                     repositories,
	}
}

func newRepositoryView(repository monitor.Repository) repositoryView {
	view := repositoryView{
		Name:                        repository.Name,
		URL:                         repository.URL,
		Language:                    repository.PrimaryLanguage,
		Stars:                       repository.Stars,
		OpenIssues:                  repository.OpenIssues,
		OpenPullRequests:            repository.OpenPullRequests,
		BranchesWithoutPullRequests: repository.BranchesWithoutPullRequests,
		PagesEnabled:                repository.PagesEnabled,
		PagesURL:                    repository.PagesURL,
		CIStatus:                    string(repository.CIStatus),
		CIStatusSymbol:              CIStatusSymbol(repository.CIStatus),
	}
	if len(view.Language) == 0 {
		view.Language = unknownLanguageConstant
	}
	if repository.LastCommit != nil {
		shortSHA := repository.LastCommit.SHA
		if len(shortSHA) > shortSHALengthConstant {
			shortSHA = shortSHA[:shortSHALengthConstant]
		}
		view.LastCommit = &commitView{
			ShortSHA: shortSHA,
			Message:  repository.LastCommit.Message,
			Author:   repository.LastCommit.Author,
			Date:     repository.LastCommit.Date.Format(templateTimestampLayoutConstant),
		}
	}
	if len(repository.CIRecentRuns) > 0 && repository.CIStatus != monitor.CIStatusPending {
		view.CISuccessPercent = fmt.Sprintf(successPercentTemplateConstant, repository.CISuccessRate*100)
	}
	if failedRun, hasFailure := repository.LastFailedRun(); hasFailure {
		view.LastFailure = failedRun
	}
	return view
}

// CIStatusSymbol returns the single-character marker used for a CI status in reports and console output.
func CIStatusSymbol(status monitor.CIStatus) string {
	if symbol, known := ciStatusSymbols[status]; known {
		return symbol
	}
	return ciStatusSymbols[monitor.CIStatusUnknown]
}

// markdownCell keeps a value inside a single Markdown table cell.
func markdownCell(value string) string {
	flattened := strings.ReplaceAll(value, newlineConstant, spaceConstant)
	return strings.ReplaceAll(flattened, markdownPipeConstant, markdownEscapedPipeConstant)
}
