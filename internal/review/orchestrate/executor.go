package orchestrate

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ChaseNoCapDev/metacommit/internal/review"
)

const (
	executorDependenciesMessageConstant = "operation executor requires a git workflow and logger"
	operationExecutedMessageConstant    = "operation executed"
	operationFailedMessageConstant      = "operation failed"
	logFieldOperationIDConstant         = "operation_id"
	logFieldOperationKindConstant       = "operation_kind"
	logFieldRepositoryNameConstant      = "repository_name"
	logFieldVerifiedHashConstant        = "verified_hash"
)

// ErrExecutorDependenciesMissing indicates the executor was constructed without collaborators.
var ErrExecutorDependenciesMissing = errors.New(executorDependenciesMessageConstant)

// GitWorkflowExecutor exposes the git mutations the orchestration layer performs.
type GitWorkflowExecutor interface {
	HeadRevision(executionContext context.Context, repositoryPath string) string
	CreateCommit(executionContext context.Context, repositoryPath string, commitMessage string) (string, error)
	Push(executionContext context.Context, repositoryPath string) (string, error)
}

// SequentialOperationExecutor runs planned operations strictly in order. A
// failed operation is recorded on its result and never aborts the remainder
// of the batch.
type SequentialOperationExecutor struct {
	gitWorkflow GitWorkflowExecutor
	logger      *zap.Logger
}

// NewSequentialOperationExecutor constructs the executor.
func NewSequentialOperationExecutor(gitWorkflow GitWorkflowExecutor, logger *zap.Logger) (*SequentialOperationExecutor, error) {
	if gitWorkflow == nil || logger == nil {
		return nil, ErrExecutorDependenciesMissing
	}
	return &SequentialOperationExecutor{gitWorkflow: gitWorkflow, logger: logger}, nil
}

// Execute runs every operation in the order supplied and returns one result
// per operation, preserving that order.
func (executor *SequentialOperationExecutor) Execute(executionContext context.Context, operations []Operation) []OperationResult {
	results := make([]OperationResult, 0, len(operations))
	for _, operation := range operations {
		results = append(results, executor.executeOperation(executionContext, operation))
	}
	return results
}

func (executor *SequentialOperationExecutor) executeOperation(executionContext context.Context, operation Operation) OperationResult {
	operationResult := OperationResult{Operation: operation}
	switch operation.Kind {
	case OperationKindCommit:
		operationResult = executor.executeCommit(executionContext, operation)
	case OperationKindPush:
		operationResult = executor.executePush(executionContext, operation)
	}

	if operationResult.Succeeded {
		executor.logger.Info(operationExecutedMessageConstant,
			zap.String(logFieldOperationIDConstant, operation.ID),
			zap.String(logFieldOperationKindConstant, string(operation.Kind)),
			zap.String(logFieldRepositoryNameConstant, operation.RepositoryName),
			zap.String(logFieldVerifiedHashConstant, operationResult.VerifiedHash),
		)
	} else {
		executor.logger.Warn(operationFailedMessageConstant,
			zap.String(logFieldOperationIDConstant, operation.ID),
			zap.String(logFieldOperationKindConstant, string(operation.Kind)),
			zap.String(logFieldRepositoryNameConstant, operation.RepositoryName),
			zap.Error(operationResult.Failure),
		)
	}
	return operationResult
}

// executeCommit creates the commit and verifies HEAD actually moved. A commit
// that reports success while HEAD still resolves to the captured previous
// hash is treated as a failure.
func (executor *SequentialOperationExecutor) executeCommit(executionContext context.Context, operation Operation) OperationResult {
	committedHash, commitError := executor.gitWorkflow.CreateCommit(executionContext, operation.RepositoryPath, operation.CommitMessage)
	if commitError != nil {
		return OperationResult{Operation: operation, Failure: review.CommitError{RepositoryName: operation.RepositoryName, Cause: commitError}}
	}

	if len(operation.PreviousHash) > 0 && committedHash == operation.PreviousHash {
		return OperationResult{Operation: operation, Failure: review.VerificationMismatchError{RepositoryName: operation.RepositoryName, Hash: committedHash}}
	}

	return OperationResult{Operation: operation, Succeeded: true, VerifiedHash: committedHash}
}

func (executor *SequentialOperationExecutor) executePush(executionContext context.Context, operation Operation) OperationResult {
	_, pushError := executor.gitWorkflow.Push(executionContext, operation.RepositoryPath)
	if pushError != nil {
		return OperationResult{Operation: operation, Failure: review.PushError{RepositoryName: operation.RepositoryName, Cause: pushError}}
	}
	return OperationResult{Operation: operation, Succeeded: true, VerifiedHash: executor.gitWorkflow.HeadRevision(executionContext, operation.RepositoryPath)}
}
