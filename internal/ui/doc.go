// Package ui renders console output for the sync and monitor commands.
//
// Progress lines are written as results arrive; summaries are rendered as
// tables once a run completes. Diagnostic telemetry stays with zap.
package ui
