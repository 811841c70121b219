package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ChaseNoCapDev/metacommit/internal/review"
)

const (
	orchestratorDependenciesMessageConstant = "review orchestrator requires all collaborators"
	nothingToCommitMessageConstant          = "no pending changes to commit"
	reviewInFlightMessageConstant           = "a review cycle is already in flight; ignoring the overlapping request"
	scanningStageMessageConstant            = "scanning workspace repositories"
	analyzingStageMessageConstant           = "analyzing change statistics"
	generatingStageMessageConstant          = "generating commit messages"
	summarizingStageMessageConstant         = "summarizing changes across repositories"
	completeStageMessageConstant            = "review cycle complete"
	scanFailedStageMessageConstant          = "workspace scan failed"
	reviewStartedMessageConstant            = "review cycle started"
	reviewFinishedMessageConstant           = "review cycle finished"
	phaseOneFailureSkipMessageConstant      = "skipping push phase because a commit failed"
	operationLogTemplateConstant            = "%s %s: %s"
	operationSucceededWordConstant          = "succeeded"
	logFieldSessionIDConstant               = "session_id"
	totalReviewStageCountConstant           = 4
)

// Sentinel errors reported by the orchestrator.
var (
	// ErrOrchestratorDependenciesMissing indicates construction without collaborators.
	ErrOrchestratorDependenciesMissing = errors.New(orchestratorDependenciesMessageConstant)
	// ErrNothingToCommit indicates the targeted repository has no pending changes.
	ErrNothingToCommit = errors.New(nothingToCommitMessageConstant)
)

// ChangeScanner produces normalized change data for the workspace or one repository.
type ChangeScanner interface {
	Scan(executionContext context.Context) ([]review.RepositoryChangeData, error)
	ScanOne(executionContext context.Context, repositoryPath string) review.RepositoryChangeData
}

// MessageGenerator annotates changed repositories with commit messages.
type MessageGenerator interface {
	GenerateMessages(executionContext context.Context, repositories []review.RepositoryChangeData) []review.RepositoryChangeData
}

// SummaryComposer produces the cross-repository executive summary.
type SummaryComposer interface {
	Summarize(executionContext context.Context, repositories []review.RepositoryChangeData) string
}

// ReviewSession identifies one in-flight review cycle.
type ReviewSession struct {
	OperationID string
	StartedAt   time.Time
}

// ReviewOrchestrator drives the full review cycle and the hierarchical
// commit and push workflows. At most one review cycle runs at a time; an
// overlapping request is ignored rather than queued.
type ReviewOrchestrator struct {
	changeScanner     ChangeScanner
	messageGenerator  MessageGenerator
	summaryComposer   SummaryComposer
	commitCoordinator *HierarchicalCommitCoordinator
	operationExecutor *SequentialOperationExecutor
	progressSink      review.ProgressSink
	logger            *zap.Logger
	currentTime       func() time.Time

	sessionMutex  sync.Mutex
	activeSession *ReviewSession
}

// NewReviewOrchestrator constructs the orchestrator. A nil progress sink is
// replaced with the no-op sink.
func NewReviewOrchestrator(
	changeScanner ChangeScanner,
	messageGenerator MessageGenerator,
	summaryComposer SummaryComposer,
	commitCoordinator *HierarchicalCommitCoordinator,
	operationExecutor *SequentialOperationExecutor,
	progressSink review.ProgressSink,
	logger *zap.Logger,
) (*ReviewOrchestrator, error) {
	if changeScanner == nil || messageGenerator == nil || summaryComposer == nil || commitCoordinator == nil || operationExecutor == nil || logger == nil {
		return nil, ErrOrchestratorDependenciesMissing
	}
	if progressSink == nil {
		progressSink = review.NoopProgressSink{}
	}
	return &ReviewOrchestrator{
		changeScanner:     changeScanner,
		messageGenerator:  messageGenerator,
		summaryComposer:   summaryComposer,
		commitCoordinator: commitCoordinator,
		operationExecutor: operationExecutor,
		progressSink:      progressSink,
		logger:            logger,
		currentTime:       time.Now,
	}, nil
}

// PerformComprehensiveReview runs the scan, analyze, generate, and summarize
// stages and returns the assembled report. When another review cycle is
// already in flight the call returns an empty report without touching any
// collaborator. Only a scan failure aborts the cycle with an error.
func (orchestrator *ReviewOrchestrator) PerformComprehensiveReview(executionContext context.Context) (review.ChangeReviewReport, error) {
	session, sessionStarted := orchestrator.beginSession()
	if !sessionStarted {
		orchestrator.emitLog(review.LogSeverityWarning, reviewInFlightMessageConstant)
		return review.ChangeReviewReport{}, nil
	}
	defer orchestrator.endSession()

	orchestrator.logger.Info(reviewStartedMessageConstant, zap.String(logFieldSessionIDConstant, session.OperationID))

	orchestrator.emitProgress(review.StageScanning, scanningStageMessageConstant)
	repositories, scanError := orchestrator.changeScanner.Scan(executionContext)
	if scanError != nil {
		orchestrator.emitProgress(review.StageError, scanFailedStageMessageConstant)
		orchestrator.emitLog(review.LogSeverityError, scanError.Error())
		return review.ChangeReviewReport{}, scanError
	}

	orchestrator.emitProgress(review.StageAnalyzing, analyzingStageMessageConstant)
	aggregatedStatistics := review.AggregateStatistics(repositories)

	orchestrator.emitProgress(review.StageGenerating, generatingStageMessageConstant)
	repositories = orchestrator.messageGenerator.GenerateMessages(executionContext, repositories)

	orchestrator.emitProgress(review.StageSummarizing, summarizingStageMessageConstant)
	executiveSummary := orchestrator.summaryComposer.Summarize(executionContext, repositories)

	orchestrator.emitProgress(review.StageComplete, completeStageMessageConstant)
	orchestrator.logger.Info(reviewFinishedMessageConstant, zap.String(logFieldSessionIDConstant, session.OperationID))

	return review.ChangeReviewReport{
		GeneratedAt:         orchestrator.currentTime(),
		Repositories:        repositories,
		AggregateStatistics: aggregatedStatistics,
		ExecutiveSummary:    executiveSummary,
	}, nil
}

// CommitRepository commits one repository and optionally pushes it afterwards.
// The repository is rescanned first so the commit covers its current state; an
// empty message is filled in by the message generator.
func (orchestrator *ReviewOrchestrator) CommitRepository(executionContext context.Context, repositoryPath string, commitMessage string, pushAfterCommit bool) ([]OperationResult, error) {
	changeData := orchestrator.changeScanner.ScanOne(executionContext, repositoryPath)
	if !changeData.HasChanges() && !changeData.HasHiddenSubmoduleChanges() {
		return nil, ErrNothingToCommit
	}

	if len(commitMessage) > 0 {
		changeData.GeneratedCommitMessage = commitMessage
	} else {
		annotated := orchestrator.messageGenerator.GenerateMessages(executionContext, []review.RepositoryChangeData{changeData})
		if len(annotated) > 0 {
			changeData = annotated[0]
		}
	}

	return orchestrator.executeCommitPlan(executionContext, []review.RepositoryChangeData{changeData}, pushAfterCommit), nil
}

// CommitAll commits every repository with pending work, nested repositories
// first. When pushAfterCommit is set, the push phase runs only if every
// commit in the first phase succeeded.
func (orchestrator *ReviewOrchestrator) CommitAll(executionContext context.Context, repositories []review.RepositoryChangeData, pushAfterCommit bool) []OperationResult {
	return orchestrator.executeCommitPlan(executionContext, repositories, pushAfterCommit)
}

// PushAll pushes every repository that is ahead of or behind its upstream.
func (orchestrator *ReviewOrchestrator) PushAll(executionContext context.Context, repositories []review.RepositoryChangeData) []OperationResult {
	pushOperations := orchestrator.commitCoordinator.PlanPushOperations(repositories, nil)
	pushResults := orchestrator.operationExecutor.Execute(executionContext, pushOperations)
	orchestrator.reportOperationResults(pushResults)
	return pushResults
}

// ResetReviewState clears any stale in-flight marker so the next review can start.
func (orchestrator *ReviewOrchestrator) ResetReviewState() {
	orchestrator.sessionMutex.Lock()
	defer orchestrator.sessionMutex.Unlock()
	orchestrator.activeSession = nil
}

func (orchestrator *ReviewOrchestrator) executeCommitPlan(executionContext context.Context, repositories []review.RepositoryChangeData, pushAfterCommit bool) []OperationResult {
	commitOperations := orchestrator.commitCoordinator.PlanCommitOperations(executionContext, repositories)
	commitResults := orchestrator.operationExecutor.Execute(executionContext, commitOperations)
	orchestrator.reportOperationResults(commitResults)

	if !pushAfterCommit {
		return commitResults
	}
	if HasFailedOperation(commitResults) {
		orchestrator.emitLog(review.LogSeverityWarning, phaseOneFailureSkipMessageConstant)
		return commitResults
	}

	pushOperations := orchestrator.commitCoordinator.PlanPushOperations(repositories, commitResults)
	pushResults := orchestrator.operationExecutor.Execute(executionContext, pushOperations)
	orchestrator.reportOperationResults(pushResults)
	return append(commitResults, pushResults...)
}

func (orchestrator *ReviewOrchestrator) beginSession() (ReviewSession, bool) {
	orchestrator.sessionMutex.Lock()
	defer orchestrator.sessionMutex.Unlock()
	if orchestrator.activeSession != nil {
		return ReviewSession{}, false
	}
	session := ReviewSession{OperationID: newOperationIdentifier(), StartedAt: orchestrator.currentTime()}
	orchestrator.activeSession = &session
	return session, true
}

func (orchestrator *ReviewOrchestrator) endSession() {
	orchestrator.sessionMutex.Lock()
	defer orchestrator.sessionMutex.Unlock()
	orchestrator.activeSession = nil
}

func (orchestrator *ReviewOrchestrator) emitProgress(stage review.ReviewStage, message string) {
	// The error stage sits past the regular cycle; cap the step so the
	// rendered fraction never exceeds the stage total.
	currentStep := stage.Ordinal()
	if currentStep > totalReviewStageCountConstant {
		currentStep = totalReviewStageCountConstant
	}
	orchestrator.progressSink.OnProgress(review.ScanProgress{
		Stage:   stage,
		Message: message,
		Current: currentStep,
		Total:   totalReviewStageCountConstant,
	})
}

func (orchestrator *ReviewOrchestrator) emitLog(severity review.LogSeverity, message string) {
	orchestrator.progressSink.OnLog(review.LogEntry{
		Timestamp: orchestrator.currentTime(),
		Severity:  severity,
		Message:   message,
	})
}

func (orchestrator *ReviewOrchestrator) reportOperationResults(results []OperationResult) {
	for _, operationResult := range results {
		if operationResult.Succeeded {
			orchestrator.emitLog(review.LogSeverityInfo, fmt.Sprintf(operationLogTemplateConstant,
				operationResult.Operation.Kind, operationResult.Operation.RepositoryName, operationSucceededWordConstant))
			continue
		}
		orchestrator.emitLog(review.LogSeverityError, fmt.Sprintf(operationLogTemplateConstant,
			operationResult.Operation.Kind, operationResult.Operation.RepositoryName, operationResult.Failure))
	}
}
