package review

import "time"

// ReviewStage identifies one phase of a review cycle.
type ReviewStage string

// Review stages in execution order.
const (
	StageScanning    ReviewStage = "scanning"
	StageAnalyzing   ReviewStage = "analyzing"
	StageGenerating  ReviewStage = "generating"
	StageSummarizing ReviewStage = "summarizing"
	StageComplete    ReviewStage = "complete"
	StageError       ReviewStage = "error"
)

var stageOrdering = map[ReviewStage]int{
	StageScanning:    0,
	StageAnalyzing:   1,
	StageGenerating:  2,
	StageSummarizing: 3,
	StageComplete:    4,
	StageError:       5,
}

// Ordinal returns the position of the stage within a review cycle.
func (stage ReviewStage) Ordinal() int {
	return stageOrdering[stage]
}

// ScanProgress marks the active stage of a running review cycle.
type ScanProgress struct {
	Stage   ReviewStage
	Message string
	Current int
	Total   int
}

// LogSeverity classifies log entries emitted during orchestration.
type LogSeverity string

// Supported log severities.
const (
	LogSeverityInfo    LogSeverity = "info"
	LogSeverityWarning LogSeverity = "warning"
	LogSeverityError   LogSeverity = "error"
)

// LogEntry is one human-readable event emitted during orchestration.
type LogEntry struct {
	Timestamp time.Time
	Severity  LogSeverity
	Message   string
}

// ProgressSink consumes stage transitions and log entries from the orchestrator.
type ProgressSink interface {
	OnProgress(progress ScanProgress)
	OnLog(entry LogEntry)
}

// NoopProgressSink discards all progress events.
type NoopProgressSink struct{}

// OnProgress implements ProgressSink for the no-op sink.
func (NoopProgressSink) OnProgress(ScanProgress) {}

// OnLog implements ProgressSink for the no-op sink.
func (NoopProgressSink) OnLog(LogEntry) {}
