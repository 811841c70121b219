package render_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ChaseNoCapDev/metacommit/internal/review"
	"github.com/ChaseNoCapDev/metacommit/internal/review/render"
)

func buildRenderableReport() review.ChangeReviewReport {
	return review.ChangeReviewReport{
		GeneratedAt: time.Now(),
		Repositories: []review.RepositoryChangeData{
			{
				Repository: review.Repository{Name: "root", Path: "workspace/root", BranchName: "main", AheadCount: 2},
				Changes:    []review.FileChange{{FilePath: "README.md", Status: review.FileChangeModified}},
				HiddenSubmoduleChanges: []review.FileChange{
					{FilePath: "packages/a", Status: review.FileChangeModified},
				},
				Statistics:             review.ScanStatistics{TotalFiles: 1, Modifications: 1, HiddenSubmoduleChanges: 1},
				GeneratedCommitMessage: "docs(root): refresh readme\n\n- modified README.md",
			},
			{
				Repository: review.Repository{Name: "quiet", Path: "workspace/quiet", BranchName: "main"},
			},
			{
				Repository:         review.Repository{Name: "broken", Path: "workspace/broken", BranchName: "(detached)"},
				ScanFailureMessage: "index locked",
			},
		},
		AggregateStatistics: review.ScanStatistics{TotalFiles: 1, Modifications: 1, HiddenSubmoduleChanges: 1},
		ExecutiveSummary:    "Documentation refresh across the workspace.",
	}
}

func TestRenderReportIncludesRepositoryRowsAndSummary(testInstance *testing.T) {
	renderer := render.NewReportRenderer()
	renderedText := renderer.RenderReport(buildRenderableReport())

	require.Contains(testInstance, renderedText, "root")
	require.Contains(testInstance, renderedText, "ahead 2")
	require.Contains(testInstance, renderedText, "docs(root): refresh readme")
	require.NotContains(testInstance, renderedText, "- modified README.md")
	require.Contains(testInstance, renderedText, "submodule packages/a")
	require.Contains(testInstance, renderedText, "clean")
	require.Contains(testInstance, renderedText, "unreadable: index locked")
	require.Contains(testInstance, renderedText, "TOTAL")
	require.Contains(testInstance, renderedText, "Executive Summary")
	require.Contains(testInstance, renderedText, "Documentation refresh across the workspace.")
}

func TestConsoleProgressSinkWritesStageAndLogLines(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	sink := render.NewConsoleProgressSink(outputBuffer)

	sink.OnProgress(review.ScanProgress{Stage: review.StageScanning, Message: "scanning workspace repositories", Current: 0, Total: 4})
	sink.OnLog(review.LogEntry{Timestamp: time.Date(2026, time.August, 27, 9, 30, 0, 0, time.UTC), Severity: review.LogSeverityError, Message: "push failed for root"})

	renderedOutput := outputBuffer.String()
	require.Contains(testInstance, renderedOutput, "[1/5]")
	require.Contains(testInstance, renderedOutput, "scanning workspace repositories")
	require.Contains(testInstance, renderedOutput, "09:30:00")
	require.Contains(testInstance, renderedOutput, "push failed for root")
}
