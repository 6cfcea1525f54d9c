package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/ghmonitor/internal/syncer"
	"github.com/temirov/ghmonitor/internal/utils"
)

const (
	progressMessageTemplateConstant = "[%d/%d] %s %s: %s"
	branchSuffixTemplateConstant    = " (%s)"
	lineTerminatorConstant          = "\n"
	unknownActionSymbolConstant     = "?"
)

var actionSymbols = map[syncer.SyncAction]string{
	syncer.SyncActionCloned:         "+",
	syncer.SyncActionPulled:         "↓",
	syncer.SyncActionAlreadyCurrent: "=",
	syncer.SyncActionSkippedDirty:   "!",
	syncer.SyncActionSkippedError:   "✗",
}

// SyncEventFormatter builds human-readable lines for per-repository sync outcomes.
type SyncEventFormatter struct{}

// BuildProgressMessage formats the line printed when a repository finishes.
func (formatter SyncEventFormatter) BuildProgressMessage(completed int, total int, result syncer.SyncResult) string {
	message := fmt.Sprintf(progressMessageTemplateConstant, completed, total, formatter.actionSymbol(result.Action), result.RepositoryName, result.Message)
	trimmedBranch := strings.TrimSpace(result.Branch)
	if len(trimmedBranch) == 0 {
		return message
	}
	return message + fmt.Sprintf(branchSuffixTemplateConstant, trimmedBranch)
}

func (formatter SyncEventFormatter) actionSymbol(action syncer.SyncAction) string {
	symbol, known := actionSymbols[action]
	if !known {
		return unknownActionSymbolConstant
	}
	return symbol
}

// ConsoleSyncEventLogger prints one line per synchronized repository as results arrive.
type ConsoleSyncEventLogger struct {
	writer    io.Writer
	formatter SyncEventFormatter
}

// NewConsoleSyncEventLogger constructs a progress printer writing to writer. Writes are flushed immediately.
func NewConsoleSyncEventLogger(writer io.Writer) *ConsoleSyncEventLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &ConsoleSyncEventLogger{writer: utils.NewFlushingWriter(writer), formatter: SyncEventFormatter{}}
}

// RepositorySynchronized implements syncer.ProgressObserver.
func (eventLogger *ConsoleSyncEventLogger) RepositorySynchronized(completed int, total int, result syncer.SyncResult) {
	if eventLogger == nil {
		return
	}
	_, _ = io.WriteString(eventLogger.writer, eventLogger.formatter.BuildProgressMessage(completed, total, result)+lineTerminatorConstant)
}
