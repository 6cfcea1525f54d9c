package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/temirov/ghmonitor/internal/monitor"
	"github.com/temirov/ghmonitor/internal/report"
)

const (
	monitorRepositoryHeaderConstant         = "Repository"
	monitorLanguageHeaderConstant           = "Language"
	monitorPullRequestsHeaderConstant       = "Open PRs"
	monitorBranchesHeaderConstant           = "Branches without PRs"
	monitorCIHeaderConstant                 = "CI"
	monitorPagesHeaderConstant              = "Pages"
	monitorPagesEnabledConstant             = "yes"
	monitorPagesDisabledConstant            = "no"
	monitorMissingLanguageConstant          = "-"
	monitorNoActivityTemplateConstant       = "No repositories found with activity in the last %d days\n"
	monitorSuccessTemplateConstant          = "Successfully monitored %d repositories\n"
	monitorPullRequestTotalTemplateConstant = "  • %d open PRs\n"
	monitorBranchTotalTemplateConstant      = "  • %d branches without PRs\n"
	generatedReportsHeaderConstant          = "Generated reports:"
	generatedReportLineTemplateConstant     = "  ✓ %s: %s\n"
	ciCellTemplateConstant                  = "%s %s"
)

// RenderMonitorSummary prints the totals, a per-repository table, and the generated report files.
func RenderMonitorSummary(writer io.Writer, monitorReport monitor.Report, writtenReports []report.WrittenReport) error {
	if monitorReport.TotalRepositories() == 0 {
		return writeString(writer, fmt.Sprintf(monitorNoActivityTemplateConstant, monitorReport.ScanPeriodDays))
	}

	table := newTable(writer, []string{
		monitorRepositoryHeaderConstant,
		monitorLanguageHeaderConstant,
		monitorPullRequestsHeaderConstant,
		monitorBranchesHeaderConstant,
		monitorCIHeaderConstant,
		monitorPagesHeaderConstant,
	})
	for _, repository := range monitorReport.Repositories {
		language := repository.PrimaryLanguage
		if len(language) == 0 {
			language = monitorMissingLanguageConstant
		}
		pages := monitorPagesDisabledConstant
		if repository.PagesEnabled {
			pages = monitorPagesEnabledConstant
		}
		table.Append([]string{
			repository.Name,
			language,
			strconv.Itoa(len(repository.OpenPullRequests)),
			strconv.Itoa(len(repository.BranchesWithoutPullRequests)),
			fmt.Sprintf(ciCellTemplateConstant, report.CIStatusSymbol(repository.CIStatus), repository.CIStatus),
			pages,
		})
	}
	table.Render()

	summaryLines := []string{
		fmt.Sprintf(monitorSuccessTemplateConstant, monitorReport.TotalRepositories()),
		fmt.Sprintf(monitorPullRequestTotalTemplateConstant, monitorReport.TotalOpenPullRequests()),
		fmt.Sprintf(monitorBranchTotalTemplateConstant, monitorReport.TotalBranchesWithoutPullRequests()),
	}
	for _, summaryLine := range summaryLines {
		if writeError := writeString(writer, summaryLine); writeError != nil {
			return writeError
		}
	}

	if len(writtenReports) == 0 {
		return nil
	}
	if writeError := writeString(writer, generatedReportsHeaderConstant+lineTerminatorConstant); writeError != nil {
		return writeError
	}
	for _, writtenReport := range writtenReports {
		if writeError := writeString(writer, fmt.Sprintf(generatedReportLineTemplateConstant, writtenReport.Label, writtenReport.Path)); writeError != nil {
			return writeError
		}
	}
	return nil
}
