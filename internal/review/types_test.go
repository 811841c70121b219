package review_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ChaseNoCapDev/metacommit/internal/review"
)

const (
	testEditedRepositoryPathConstant   = "workspace/root/packages/a"
	testUntouchedRepositoryPathConst   = "workspace/root"
	testReplacementCommitMessageConst  = "fix(a): close connection leak"
	testOriginalCommitMessageConstant  = "chore(a): original"
)

func buildReportForEditing() review.ChangeReviewReport {
	return review.ChangeReviewReport{
		Repositories: []review.RepositoryChangeData{
			{
				Repository:             review.Repository{Name: "root", Path: testUntouchedRepositoryPathConst},
				Changes:                []review.FileChange{{FilePath: "README.md", Status: review.FileChangeModified}},
				Statistics:             review.ScanStatistics{TotalFiles: 1, Modifications: 1},
				GeneratedCommitMessage: "docs(root): refresh readme",
			},
			{
				Repository:             review.Repository{Name: "a", Path: testEditedRepositoryPathConstant},
				Changes:                []review.FileChange{{FilePath: "service.go", Status: review.FileChangeModified}},
				Statistics:             review.ScanStatistics{TotalFiles: 1, Modifications: 1},
				GeneratedCommitMessage: testOriginalCommitMessageConstant,
			},
		},
	}
}

func TestWithCommitMessageReplacesOnlyTargetRepository(testInstance *testing.T) {
	originalReport := buildReportForEditing()
	editedReport := originalReport.WithCommitMessage(testEditedRepositoryPathConstant, testReplacementCommitMessageConst)

	require.Equal(testInstance, testReplacementCommitMessageConst, editedReport.Repositories[1].GeneratedCommitMessage)
	require.Equal(testInstance, "docs(root): refresh readme", editedReport.Repositories[0].GeneratedCommitMessage)
	require.Equal(testInstance, testOriginalCommitMessageConstant, originalReport.Repositories[1].GeneratedCommitMessage)
}

func TestWithCommitMessageIgnoresUnknownPath(testInstance *testing.T) {
	originalReport := buildReportForEditing()
	editedReport := originalReport.WithCommitMessage("workspace/missing", testReplacementCommitMessageConst)
	require.Equal(testInstance, originalReport.Repositories, editedReport.Repositories)
}

func TestAggregateStatisticsSkipsCleanRepositories(testInstance *testing.T) {
	repositories := []review.RepositoryChangeData{
		{
			Repository: review.Repository{Name: "busy"},
			Changes:    []review.FileChange{{FilePath: "a.go", Status: review.FileChangeAdded}},
			Statistics: review.ScanStatistics{TotalFiles: 1, Additions: 1},
		},
		{
			Repository: review.Repository{Name: "clean"},
			Statistics: review.ScanStatistics{TotalFiles: 9},
		},
		{
			Repository:             review.Repository{Name: "pointer-only"},
			HiddenSubmoduleChanges: []review.FileChange{{FilePath: "packages/a", Status: review.FileChangeModified}},
			Statistics:             review.ScanStatistics{HiddenSubmoduleChanges: 1},
		},
	}

	aggregated := review.AggregateStatistics(repositories)
	require.Equal(testInstance, review.ScanStatistics{TotalFiles: 1, Additions: 1, HiddenSubmoduleChanges: 1}, aggregated)
}

func TestReviewStageOrdinalFollowsExecutionOrder(testInstance *testing.T) {
	orderedStages := []review.ReviewStage{
		review.StageScanning,
		review.StageAnalyzing,
		review.StageGenerating,
		review.StageSummarizing,
		review.StageComplete,
	}
	for stageIndex, stage := range orderedStages {
		require.Equal(testInstance, stageIndex, stage.Ordinal())
	}
}

func TestRepositoryBranchDivergence(testInstance *testing.T) {
	require.False(testInstance, review.Repository{}.HasBranchDivergence())
	require.True(testInstance, review.Repository{AheadCount: 1}.HasBranchDivergence())
	require.True(testInstance, review.Repository{BehindCount: 3}.HasBranchDivergence())
}
