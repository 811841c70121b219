package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ChaseNoCapDev/metacommit/internal/review"
)

const (
	// DefaultTokenBudget bounds the estimated size of one batched generation request.
	DefaultTokenBudget = 150000
	// DefaultGenerationTimeout bounds each remote generation attempt.
	DefaultGenerationTimeout = 25 * time.Minute
	charactersPerTokenEstimateConstant = 4
	generatorDependenciesMissingMsg    = "commit message generator requires a service, composer, and logger"
	strategyNameFullDiffConstant       = "remote_full_diff"
	strategyNameFileListConstant       = "remote_file_list"
	payloadModeFieldNameConstant       = "payload_mode"
	strategyFieldNameConstant          = "strategy"
	tokenEstimateFieldNameConstant     = "estimated_tokens"
	repositoryCountFieldNameConstant   = "repository_count"
	fileListLineTemplateConstant       = "%s %s"
	recentSubjectCountConstant         = 5
)

// ErrGeneratorDependenciesMissing indicates the generator was constructed without collaborators.
var ErrGeneratorDependenciesMissing = errors.New(generatorDependenciesMissingMsg)

// generationStrategy is one remote attempt shape in the ordered fallback chain.
type generationStrategy struct {
	name        string
	payloadMode PayloadMode
}

// CommitMessageGenerator produces a commit message for every changed repository.
// Remote strategies are tried in order; the deterministic composer guarantees
// that generation as a whole never fails.
type CommitMessageGenerator struct {
	generationService GenerationService
	fallbackComposer  *FallbackMessageComposer
	logger            *zap.Logger
	tokenBudget       int
	generationTimeout time.Duration
}

// NewCommitMessageGenerator constructs a generator with the default budget and timeout.
func NewCommitMessageGenerator(generationService GenerationService, fallbackComposer *FallbackMessageComposer, logger *zap.Logger) (*CommitMessageGenerator, error) {
	return NewCommitMessageGeneratorWithLimits(generationService, fallbackComposer, logger, DefaultTokenBudget, DefaultGenerationTimeout)
}

// NewCommitMessageGeneratorWithLimits constructs a generator with explicit limits.
func NewCommitMessageGeneratorWithLimits(generationService GenerationService, fallbackComposer *FallbackMessageComposer, logger *zap.Logger, tokenBudget int, generationTimeout time.Duration) (*CommitMessageGenerator, error) {
	if generationService == nil || fallbackComposer == nil || logger == nil {
		return nil, ErrGeneratorDependenciesMissing
	}
	if tokenBudget <= 0 {
		tokenBudget = DefaultTokenBudget
	}
	if generationTimeout <= 0 {
		generationTimeout = DefaultGenerationTimeout
	}
	return &CommitMessageGenerator{
		generationService: generationService,
		fallbackComposer:  fallbackComposer,
		logger:            logger,
		tokenBudget:       tokenBudget,
		generationTimeout: generationTimeout,
	}, nil
}

// GenerateMessages fills GeneratedCommitMessage for every repository that has
// authored changes or hidden submodule pointer bumps. Each remote strategy
// runs under its own deadline, so a timed-out attempt still leaves room for
// the next tier. The returned slice is a copy; the input is never mutated.
func (generator *CommitMessageGenerator) GenerateMessages(executionContext context.Context, repositories []review.RepositoryChangeData) []review.RepositoryChangeData {
	annotatedRepositories := make([]review.RepositoryChangeData, len(repositories))
	copy(annotatedRepositories, repositories)

	changedIndexes := []int{}
	for repositoryIndex, changeData := range annotatedRepositories {
		if changeData.HasChanges() || changeData.HasHiddenSubmoduleChanges() {
			changedIndexes = append(changedIndexes, repositoryIndex)
		}
	}
	if len(changedIndexes) == 0 {
		return annotatedRepositories
	}

	tokenEstimate := generator.estimateTokens(annotatedRepositories, changedIndexes)
	strategies := generator.planStrategies(tokenEstimate)
	generator.logger.Info("planning commit message generation",
		zap.Int(tokenEstimateFieldNameConstant, tokenEstimate),
		zap.Int(repositoryCountFieldNameConstant, len(changedIndexes)),
	)

	messagesByPath := map[string]string{}
	for _, strategy := range strategies {
		attemptContext, cancelAttempt := context.WithTimeout(executionContext, generator.generationTimeout)
		strategyMessages, strategyError := generator.attemptRemoteStrategy(attemptContext, strategy, annotatedRepositories, changedIndexes)
		cancelAttempt()
		if strategyError == nil {
			messagesByPath = strategyMessages
			break
		}

		if errors.Is(strategyError, context.DeadlineExceeded) {
			generator.logger.Warn("commit message generation attempt timed out",
				zap.String(strategyFieldNameConstant, strategy.name),
				zap.Error(review.GenerationTimeoutError{Timeout: generator.generationTimeout.String()}),
			)
			continue
		}
		generator.logger.Warn("commit message generation attempt failed",
			zap.String(strategyFieldNameConstant, strategy.name),
			zap.Error(review.GenerationError{Cause: strategyError}),
		)
	}

	for _, repositoryIndex := range changedIndexes {
		changeData := annotatedRepositories[repositoryIndex]
		generatedMessage, hasRemoteMessage := messagesByPath[changeData.Repository.Path]
		if !hasRemoteMessage || len(strings.TrimSpace(generatedMessage)) == 0 {
			generatedMessage = generator.fallbackComposer.Compose(changeData)
		}
		annotatedRepositories[repositoryIndex].GeneratedCommitMessage = generatedMessage
	}
	return annotatedRepositories
}

// estimateTokens approximates the request size as total diff characters over four.
func (generator *CommitMessageGenerator) estimateTokens(repositories []review.RepositoryChangeData, changedIndexes []int) int {
	totalDiffCharacters := 0
	for _, repositoryIndex := range changedIndexes {
		totalDiffCharacters += repositories[repositoryIndex].DiffCharacterCount()
	}
	return totalDiffCharacters / charactersPerTokenEstimateConstant
}

func (generator *CommitMessageGenerator) planStrategies(tokenEstimate int) []generationStrategy {
	if tokenEstimate > generator.tokenBudget {
		return []generationStrategy{
			{name: strategyNameFileListConstant, payloadMode: PayloadModeFileList},
		}
	}
	return []generationStrategy{
		{name: strategyNameFullDiffConstant, payloadMode: PayloadModeFullDiff},
		{name: strategyNameFileListConstant, payloadMode: PayloadModeFileList},
	}
}

func (generator *CommitMessageGenerator) attemptRemoteStrategy(executionContext context.Context, strategy generationStrategy, repositories []review.RepositoryChangeData, changedIndexes []int) (map[string]string, error) {
	batchRequest := BatchGenerationRequest{Repositories: make([]RepositoryGenerationRequest, 0, len(changedIndexes))}
	for _, repositoryIndex := range changedIndexes {
		batchRequest.Repositories = append(batchRequest.Repositories, generator.buildRepositoryRequest(repositories[repositoryIndex], strategy.payloadMode))
	}

	batchResponse, generationError := generator.generationService.GenerateCommitMessages(executionContext, batchRequest)
	if generationError != nil {
		return nil, generationError
	}

	messagesByPath := map[string]string{}
	pathsByName := map[string]string{}
	for _, repositoryIndex := range changedIndexes {
		repository := repositories[repositoryIndex].Repository
		pathsByName[repository.Name] = repository.Path
	}
	for _, generationResult := range batchResponse.Results {
		resultPath := generationResult.RepositoryPath
		if len(resultPath) == 0 {
			resultPath = pathsByName[generationResult.RepositoryName]
		}
		if len(resultPath) > 0 {
			messagesByPath[resultPath] = generationResult.CommitMessage
		}
	}
	return messagesByPath, nil
}

func (generator *CommitMessageGenerator) buildRepositoryRequest(changeData review.RepositoryChangeData, payloadMode PayloadMode) RepositoryGenerationRequest {
	changedFilePaths := make([]string, 0, len(changeData.Changes))
	for _, fileChange := range changeData.Changes {
		changedFilePaths = append(changedFilePaths, fileChange.FilePath)
	}

	recentSubjects := changeData.RecentCommitSubjects
	if len(recentSubjects) > recentSubjectCountConstant {
		recentSubjects = recentSubjects[:recentSubjectCountConstant]
	}

	contextNote := ""
	if changeData.HasHiddenSubmoduleChanges() {
		contextNote = synthesizeSubmodulePointerMessage(changeData.HiddenSubmoduleChanges)
	}

	return RepositoryGenerationRequest{
		RepositoryName:       changeData.Repository.Name,
		RepositoryPath:       changeData.Repository.Path,
		Payload:              generator.renderPayload(changeData, payloadMode),
		PayloadMode:          string(payloadMode),
		ChangedFilePaths:     changedFilePaths,
		RecentCommitSubjects: recentSubjects,
		ContextNote:          contextNote,
	}
}

func (generator *CommitMessageGenerator) renderPayload(changeData review.RepositoryChangeData, payloadMode PayloadMode) string {
	if payloadMode == PayloadModeFullDiff {
		return strings.TrimSpace(changeData.StagedDiff + "\n" + changeData.UnstagedDiff)
	}

	fileListLines := make([]string, 0, len(changeData.Changes))
	for _, fileChange := range changeData.Changes {
		fileListLines = append(fileListLines, fmt.Sprintf(fileListLineTemplateConstant, fileChange.Status, fileChange.FilePath))
	}
	return strings.Join(fileListLines, "\n")
}
