package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/temirov/ghmonitor/internal/syncer"
)

const (
	syncOutcomeHeaderConstant         = "Outcome"
	syncCountHeaderConstant           = "Count"
	syncRepositoriesHeaderConstant    = "Repositories"
	repositoryNameSeparatorConstant   = ", "
	failureSectionHeaderConstant      = "Errors:"
	failureLineTemplateConstant       = "  %s %s: %s\n"
	syncTotalLineTemplateConstant     = "Total: %d repositories\n"
	emptySummaryLineConstant          = "No repositories to synchronize\n"
	summaryWriteErrorTemplateConstant = "unable to render summary: %w"
)

var syncOutcomeLabels = map[syncer.SyncAction]string{
	syncer.SyncActionCloned:         "Cloned",
	syncer.SyncActionPulled:         "Updated",
	syncer.SyncActionAlreadyCurrent: "Already current",
	syncer.SyncActionSkippedDirty:   "Skipped - dirty",
	syncer.SyncActionSkippedError:   "Errors",
}

// RenderSyncSummary writes a per-outcome table followed by failure details and the total.
func RenderSyncSummary(writer io.Writer, report syncer.SyncReport) error {
	if report.Total() == 0 {
		return writeString(writer, emptySummaryLineConstant)
	}

	table := newTable(writer, []string{syncOutcomeHeaderConstant, syncCountHeaderConstant, syncRepositoriesHeaderConstant})
	for _, action := range syncer.OrderedSyncActions {
		count := report.Count(action)
		if count == 0 {
			continue
		}
		table.Append([]string{syncOutcomeLabels[action], strconv.Itoa(count), strings.Join(report.Names(action), repositoryNameSeparatorConstant)})
	}
	table.Render()

	failures := report.Failed()
	if len(failures) > 0 {
		if writeError := writeString(writer, failureSectionHeaderConstant+lineTerminatorConstant); writeError != nil {
			return writeError
		}
		for _, failure := range failures {
			if writeError := writeString(writer, fmt.Sprintf(failureLineTemplateConstant, actionSymbols[syncer.SyncActionSkippedError], failure.RepositoryName, failure.Message)); writeError != nil {
				return writeError
			}
		}
	}

	return writeString(writer, fmt.Sprintf(syncTotalLineTemplateConstant, report.Total()))
}

func newTable(writer io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(writer)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func writeString(writer io.Writer, text string) error {
	if _, writeError := io.WriteString(writer, text); writeError != nil {
		return fmt.Errorf(summaryWriteErrorTemplateConstant, writeError)
	}
	return nil
}
