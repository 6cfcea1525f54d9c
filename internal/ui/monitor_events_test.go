package ui_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/ghmonitor/internal/monitor"
	"github.com/temirov/ghmonitor/internal/report"
	"github.com/temirov/ghmonitor/internal/ui"
)

func monitoredRepositories() []monitor.Repository {
	return []monitor.Repository{
		{
			Name:                        "alpha",
			PrimaryLanguage:             "Go",
			OpenPullRequests:            []monitor.PullRequest{{Number: 1}, {Number: 2}},
			BranchesWithoutPullRequests: []string{"spike"},
			CIStatus:                    monitor.CIStatusSuccess,
			PagesEnabled:                true,
		},
		{
			Name:     "bravo",
			CIStatus: monitor.CIStatusNoCI,
		},
	}
}

func TestMonitorEventFormatterBuildsProgressMessages(testInstance *testing.T) {
	repositories := monitoredRepositories()
	formatter := ui.MonitorEventFormatter{}

	require.Equal(testInstance, "[1/2] ✓ alpha: 2 open PRs, 1 branches without PRs, CI success", formatter.BuildProgressMessage(1, 2, repositories[0]))
	require.Equal(testInstance, "[2/2] - bravo: 0 open PRs, 0 branches without PRs, CI no_ci", formatter.BuildProgressMessage(2, 2, repositories[1]))
}

func TestConsoleMonitorEventLoggerWritesLines(testInstance *testing.T) {
	var buffer bytes.Buffer
	eventLogger := ui.NewConsoleMonitorEventLogger(&buffer)
	for index, repository := range monitoredRepositories() {
		eventLogger.RepositoryCollected(index+1, 2, repository)
	}

	require.Equal(testInstance,
		"[1/2] ✓ alpha: 2 open PRs, 1 branches without PRs, CI success\n[2/2] - bravo: 0 open PRs, 0 branches without PRs, CI no_ci\n",
		buffer.String(),
	)

	var nilLogger *ui.ConsoleMonitorEventLogger
	require.NotPanics(testInstance, func() { nilLogger.RepositoryCollected(1, 1, monitor.Repository{}) })
}

func TestRenderMonitorSummary(testInstance *testing.T) {
	var buffer bytes.Buffer
	monitorReport := monitor.Report{Owner: "octo", ScanPeriodDays: 30, Repositories: monitoredRepositories()}
	writtenReports := []report.WrittenReport{
		{Format: report.FormatTOON, Label: "TOON", Path: "reports/report.toon"},
		{Format: report.FormatMarkdown, Label: "Markdown", Path: "reports/report.md"},
	}

	require.NoError(testInstance, ui.RenderMonitorSummary(&buffer, monitorReport, writtenReports))
	rendered := buffer.String()

	require.Contains(testInstance, rendered, "Repository")
	require.Contains(testInstance, rendered, "Branches without PRs")
	require.Contains(testInstance, rendered, "alpha")
	require.Contains(testInstance, rendered, "✓ success")
	require.Contains(testInstance, rendered, "- no_ci")
	require.Contains(testInstance, rendered, "Successfully monitored 2 repositories\n")
	require.Contains(testInstance, rendered, "  • 2 open PRs\n")
	require.Contains(testInstance, rendered, "  • 1 branches without PRs\n")
	require.Contains(testInstance, rendered, "Generated reports:\n  ✓ TOON: reports/report.toon\n  ✓ Markdown: reports/report.md\n")
}

func TestRenderMonitorSummaryWithoutRepositories(testInstance *testing.T) {
	var buffer bytes.Buffer
	require.NoError(testInstance, ui.RenderMonitorSummary(&buffer, monitor.Report{ScanPeriodDays: 7}, nil))
	require.Equal(testInstance, "No repositories found with activity in the last 7 days\n", buffer.String())
}
