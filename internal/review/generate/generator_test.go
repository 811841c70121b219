package generate_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ChaseNoCapDev/metacommit/internal/review"
	"github.com/ChaseNoCapDev/metacommit/internal/review/generate"
)

type scriptedGenerationService struct {
	recordedBatchRequests []generate.BatchGenerationRequest
	batchResponses        []generate.BatchGenerationResponse
	batchErrors           []error
	summaryResponse       generate.SummaryResponse
	summaryError          error
}

func (service *scriptedGenerationService) GenerateCommitMessages(executionContext context.Context, request generate.BatchGenerationRequest) (generate.BatchGenerationResponse, error) {
	attemptIndex := len(service.recordedBatchRequests)
	service.recordedBatchRequests = append(service.recordedBatchRequests, request)
	if attemptIndex < len(service.batchErrors) && service.batchErrors[attemptIndex] != nil {
		return generate.BatchGenerationResponse{}, service.batchErrors[attemptIndex]
	}
	if attemptIndex < len(service.batchResponses) {
		return service.batchResponses[attemptIndex], nil
	}
	return generate.BatchGenerationResponse{}, nil
}

func (service *scriptedGenerationService) GenerateExecutiveSummary(executionContext context.Context, request generate.SummaryRequest) (generate.SummaryResponse, error) {
	if service.summaryError != nil {
		return generate.SummaryResponse{}, service.summaryError
	}
	return service.summaryResponse, nil
}

func buildChangedRepository(repositoryName string, repositoryPath string, diffText string) review.RepositoryChangeData {
	return review.RepositoryChangeData{
		Repository: review.Repository{Name: repositoryName, Path: repositoryPath, BranchName: "main"},
		Changes: []review.FileChange{
			{FilePath: "internal/service.go", Status: review.FileChangeModified},
		},
		Statistics:   review.ScanStatistics{TotalFiles: 1, Modifications: 1},
		UnstagedDiff: diffText,
	}
}

func TestNewCommitMessageGeneratorRequiresCollaborators(testInstance *testing.T) {
	_, creationError := generate.NewCommitMessageGenerator(nil, generate.NewFallbackMessageComposer(), zap.NewNop())
	require.ErrorIs(testInstance, creationError, generate.ErrGeneratorDependenciesMissing)
}

func TestGenerateMessagesUsesRemoteResultsMappedByPath(testInstance *testing.T) {
	service := &scriptedGenerationService{
		batchResponses: []generate.BatchGenerationResponse{
			{Results: []generate.RepositoryGenerationResult{
				{RepositoryName: "alpha", RepositoryPath: "workspace/alpha", CommitMessage: "feat(alpha): add service"},
			}},
		},
	}
	generator, creationError := generate.NewCommitMessageGenerator(service, generate.NewFallbackMessageComposer(), zap.NewNop())
	require.NoError(testInstance, creationError)

	repositories := []review.RepositoryChangeData{buildChangedRepository("alpha", "workspace/alpha", "diff text")}
	annotated := generator.GenerateMessages(context.Background(), repositories)

	require.Equal(testInstance, "feat(alpha): add service", annotated[0].GeneratedCommitMessage)
	require.Empty(testInstance, repositories[0].GeneratedCommitMessage)
}

func TestGenerateMessagesNeverLeavesChangedRepositoryWithoutMessage(testInstance *testing.T) {
	service := &scriptedGenerationService{
		batchErrors: []error{errors.New("gateway unavailable"), errors.New("gateway unavailable")},
	}
	generator, creationError := generate.NewCommitMessageGenerator(service, generate.NewFallbackMessageComposer(), zap.NewNop())
	require.NoError(testInstance, creationError)

	repositories := []review.RepositoryChangeData{
		buildChangedRepository("alpha", "workspace/alpha", "diff text"),
		buildChangedRepository("beta", "workspace/beta", "other diff"),
	}
	annotated := generator.GenerateMessages(context.Background(), repositories)

	require.Len(testInstance, service.recordedBatchRequests, 2)
	for _, changeData := range annotated {
		require.NotEmpty(testInstance, changeData.GeneratedCommitMessage)
	}
}

func TestGenerateMessagesSkipsRepositoriesWithoutChanges(testInstance *testing.T) {
	service := &scriptedGenerationService{}
	generator, creationError := generate.NewCommitMessageGenerator(service, generate.NewFallbackMessageComposer(), zap.NewNop())
	require.NoError(testInstance, creationError)

	annotated := generator.GenerateMessages(context.Background(), []review.RepositoryChangeData{
		{Repository: review.Repository{Name: "quiet", Path: "workspace/quiet"}},
	})

	require.Empty(testInstance, service.recordedBatchRequests)
	require.Empty(testInstance, annotated[0].GeneratedCommitMessage)
}

func TestGenerateMessagesSwitchesToFileListAboveTokenBudget(testInstance *testing.T) {
	oversizedDiff := strings.Repeat("x", 4096)
	service := &scriptedGenerationService{
		batchResponses: []generate.BatchGenerationResponse{
			{Results: []generate.RepositoryGenerationResult{
				{RepositoryPath: "workspace/alpha", CommitMessage: "chore(alpha): routine update"},
			}},
		},
	}
	generator, creationError := generate.NewCommitMessageGeneratorWithLimits(service, generate.NewFallbackMessageComposer(), zap.NewNop(), 100, time.Minute)
	require.NoError(testInstance, creationError)

	repositories := []review.RepositoryChangeData{buildChangedRepository("alpha", "workspace/alpha", oversizedDiff)}
	annotated := generator.GenerateMessages(context.Background(), repositories)

	require.Len(testInstance, service.recordedBatchRequests, 1)
	sentRepository := service.recordedBatchRequests[0].Repositories[0]
	require.Equal(testInstance, string(generate.PayloadModeFileList), sentRepository.PayloadMode)
	require.NotContains(testInstance, sentRepository.Payload, oversizedDiff)
	require.Equal(testInstance, "chore(alpha): routine update", annotated[0].GeneratedCommitMessage)
}

func TestGenerateMessagesRetriesWithFileListAfterFullDiffTimeout(testInstance *testing.T) {
	service := &scriptedGenerationService{
		batchErrors: []error{context.DeadlineExceeded, nil},
		batchResponses: []generate.BatchGenerationResponse{
			{},
			{Results: []generate.RepositoryGenerationResult{
				{RepositoryPath: "workspace/alpha", CommitMessage: "chore(alpha): condensed update"},
			}},
		},
	}
	generator, creationError := generate.NewCommitMessageGenerator(service, generate.NewFallbackMessageComposer(), zap.NewNop())
	require.NoError(testInstance, creationError)

	repositories := []review.RepositoryChangeData{buildChangedRepository("alpha", "workspace/alpha", "diff text")}
	annotated := generator.GenerateMessages(context.Background(), repositories)

	require.Len(testInstance, service.recordedBatchRequests, 2)
	require.Equal(testInstance, string(generate.PayloadModeFullDiff), service.recordedBatchRequests[0].Repositories[0].PayloadMode)
	require.Equal(testInstance, string(generate.PayloadModeFileList), service.recordedBatchRequests[1].Repositories[0].PayloadMode)
	require.Equal(testInstance, "chore(alpha): condensed update", annotated[0].GeneratedCommitMessage)
}

func TestGenerateMessagesRetriesWithFileListAfterFullDiffFailure(testInstance *testing.T) {
	service := &scriptedGenerationService{
		batchErrors: []error{errors.New("payload too large"), nil},
		batchResponses: []generate.BatchGenerationResponse{
			{},
			{Results: []generate.RepositoryGenerationResult{
				{RepositoryPath: "workspace/alpha", CommitMessage: "fix(alpha): compact retry"},
			}},
		},
	}
	generator, creationError := generate.NewCommitMessageGenerator(service, generate.NewFallbackMessageComposer(), zap.NewNop())
	require.NoError(testInstance, creationError)

	repositories := []review.RepositoryChangeData{buildChangedRepository("alpha", "workspace/alpha", "diff text")}
	annotated := generator.GenerateMessages(context.Background(), repositories)

	require.Len(testInstance, service.recordedBatchRequests, 2)
	require.Equal(testInstance, string(generate.PayloadModeFullDiff), service.recordedBatchRequests[0].Repositories[0].PayloadMode)
	require.Equal(testInstance, string(generate.PayloadModeFileList), service.recordedBatchRequests[1].Repositories[0].PayloadMode)
	require.Equal(testInstance, "fix(alpha): compact retry", annotated[0].GeneratedCommitMessage)
}
