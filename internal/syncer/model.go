package syncer

import "time"

// SyncAction is the single outcome recorded for a repository in one sync run.
type SyncAction string

// Sync outcomes.
const (
	SyncActionCloned         SyncAction = SyncAction("cloned")
	SyncActionPulled         SyncAction = SyncAction("pulled")
	SyncActionAlreadyCurrent SyncAction = SyncAction("already_current")
	SyncActionSkippedDirty   SyncAction = SyncAction("skipped_dirty")
	SyncActionSkippedError   SyncAction = SyncAction("skipped_error")
)

// OrderedSyncActions lists every action in the order summaries present them.
var OrderedSyncActions = []SyncAction{
	SyncActionCloned,
	SyncActionPulled,
	SyncActionAlreadyCurrent,
	SyncActionSkippedDirty,
	SyncActionSkippedError,
}

// RemoteRepository identifies a hosted repository and the URLs it can be cloned from.
type RemoteRepository struct {
	Name     string
	HTTPSURL string
	SSHURL   string
	PushedAt time.Time
}

// SyncResult records what happened to one repository.
type SyncResult struct {
	RepositoryName string
	Action         SyncAction
	Message        string
	Branch         string
}

// SyncReport is the ordered collection of results of one run together with per-action counts.
type SyncReport struct {
	Results []SyncResult
	counts  map[SyncAction]int
}

// Aggregate builds a report from results without reordering them.
func Aggregate(results []SyncResult) SyncReport {
	counts := make(map[SyncAction]int, len(OrderedSyncActions))
	for _, result := range results {
		counts[result.Action]++
	}
	orderedResults := make([]SyncResult, len(results))
	copy(orderedResults, results)
	return SyncReport{Results: orderedResults, counts: counts}
}

// Total returns the number of repositories processed.
func (report SyncReport) Total() int {
	return len(report.Results)
}

// Count returns how many repositories ended with the action.
func (report SyncReport) Count(action SyncAction) int {
	return report.counts[action]
}

// Names lists, in run order, the repositories that ended with the action.
func (report SyncReport) Names(action SyncAction) []string {
	names := make([]string, 0, report.counts[action])
	for _, result := range report.Results {
		if result.Action == action {
			names = append(names, result.RepositoryName)
		}
	}
	return names
}

// Failed lists the results that ended in SkippedError.
func (report SyncReport) Failed() []SyncResult {
	failures := make([]SyncResult, 0, report.counts[SyncActionSkippedError])
	for _, result := range report.Results {
		if result.Action == SyncActionSkippedError {
			failures = append(failures, result)
		}
	}
	return failures
}
