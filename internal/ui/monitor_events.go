package ui

import (
	"fmt"
	"io"

	"github.com/temirov/ghmonitor/internal/monitor"
	"github.com/temirov/ghmonitor/internal/report"
	"github.com/temirov/ghmonitor/internal/utils"
)

const monitorProgressTemplateConstant = "[%d/%d] %s %s: %d open PRs, %d branches without PRs, CI %s"

// MonitorEventFormatter builds human-readable lines for collected repositories.
type MonitorEventFormatter struct{}

// BuildProgressMessage formats the line printed when a repository has been collected.
func (formatter MonitorEventFormatter) BuildProgressMessage(completed int, total int, repository monitor.Repository) string {
	return fmt.Sprintf(
		monitorProgressTemplateConstant,
		completed,
		total,
		report.CIStatusSymbol(repository.CIStatus),
		repository.Name,
		len(repository.OpenPullRequests),
		len(repository.BranchesWithoutPullRequests),
		repository.CIStatus,
	)
}

// ConsoleMonitorEventLogger prints one line per collected repository.
type ConsoleMonitorEventLogger struct {
	writer    io.Writer
	formatter MonitorEventFormatter
}

// NewConsoleMonitorEventLogger constructs a progress printer writing to writer.
func NewConsoleMonitorEventLogger(writer io.Writer) *ConsoleMonitorEventLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &ConsoleMonitorEventLogger{writer: utils.NewFlushingWriter(writer), formatter: MonitorEventFormatter{}}
}

// RepositoryCollected implements monitor.ProgressObserver.
func (eventLogger *ConsoleMonitorEventLogger) RepositoryCollected(completed int, total int, repository monitor.Repository) {
	if eventLogger == nil {
		return
	}
	_, _ = io.WriteString(eventLogger.writer, eventLogger.formatter.BuildProgressMessage(completed, total, repository)+lineTerminatorConstant)
}
