package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ChaseNoCapDev/metacommit/internal/review"
)

const (
	coordinatorDependenciesMessageConstant = "commit coordinator requires a git workflow and logger"
	submodulePointerMessageTemplate        = "chore: update submodules (%s)"
	commitPlanMessageConstant              = "planned hierarchical commit batch"
	logFieldCommitCountConstant            = "commit_count"
	logFieldPushCountConstant              = "push_count"
)

// ErrCoordinatorDependenciesMissing indicates the coordinator was constructed without collaborators.
var ErrCoordinatorDependenciesMissing = errors.New(coordinatorDependenciesMessageConstant)

// HierarchicalCommitCoordinator plans commit and push batches so that nested
// repositories always commit before any repository that contains them. The
// parent must commit last to capture the final submodule pointer positions.
type HierarchicalCommitCoordinator struct {
	gitWorkflow GitWorkflowExecutor
	logger      *zap.Logger
}

// NewHierarchicalCommitCoordinator constructs the coordinator.
func NewHierarchicalCommitCoordinator(gitWorkflow GitWorkflowExecutor, logger *zap.Logger) (*HierarchicalCommitCoordinator, error) {
	if gitWorkflow == nil || logger == nil {
		return nil, ErrCoordinatorDependenciesMissing
	}
	return &HierarchicalCommitCoordinator{gitWorkflow: gitWorkflow, logger: logger}, nil
}

// PlanCommitOperations builds the ordered commit batch for every repository
// that carries authored changes or submodule pointer bumps. Nesting depth
// decides order: deeper repositories first, containing repositories last.
// HEAD hashes are captured at planning time for post-commit verification.
func (coordinator *HierarchicalCommitCoordinator) PlanCommitOperations(executionContext context.Context, repositories []review.RepositoryChangeData) []Operation {
	committableRepositories := []review.RepositoryChangeData{}
	for _, changeData := range repositories {
		if changeData.HasChanges() || changeData.HasHiddenSubmoduleChanges() {
			committableRepositories = append(committableRepositories, changeData)
		}
	}
	sortDeepestFirst(committableRepositories)

	commitOperations := make([]Operation, 0, len(committableRepositories))
	for _, changeData := range committableRepositories {
		commitOperations = append(commitOperations, Operation{
			ID:             newOperationIdentifier(),
			Kind:           OperationKindCommit,
			RepositoryName: changeData.Repository.Name,
			RepositoryPath: changeData.Repository.Path,
			CommitMessage:  resolveCommitMessage(changeData),
			PreviousHash:   coordinator.gitWorkflow.HeadRevision(executionContext, changeData.Repository.Path),
		})
	}
	return commitOperations
}

// PlanPushOperations builds the push batch covering every repository that was
// just committed plus any repository already ahead of or behind its upstream.
// Order mirrors the commit batch so submodule pushes land before the parent's.
func (coordinator *HierarchicalCommitCoordinator) PlanPushOperations(repositories []review.RepositoryChangeData, commitResults []OperationResult) []Operation {
	committedPaths := map[string]bool{}
	for _, commitResult := range commitResults {
		if commitResult.Succeeded && commitResult.Operation.Kind == OperationKindCommit {
			committedPaths[commitResult.Operation.RepositoryPath] = true
		}
	}

	pushCandidates := []review.RepositoryChangeData{}
	for _, changeData := range repositories {
		if committedPaths[changeData.Repository.Path] || changeData.Repository.HasBranchDivergence() {
			pushCandidates = append(pushCandidates, changeData)
		}
	}
	sortDeepestFirst(pushCandidates)

	pushOperations := make([]Operation, 0, len(pushCandidates))
	for _, changeData := range pushCandidates {
		pushOperations = append(pushOperations, Operation{
			ID:             newOperationIdentifier(),
			Kind:           OperationKindPush,
			RepositoryName: changeData.Repository.Name,
			RepositoryPath: changeData.Repository.Path,
		})
	}

	coordinator.logger.Debug(commitPlanMessageConstant,
		zap.Int(logFieldCommitCountConstant, len(committedPaths)),
		zap.Int(logFieldPushCountConstant, len(pushOperations)),
	)
	return pushOperations
}

// HasFailedOperation reports whether any result in the batch failed.
func HasFailedOperation(results []OperationResult) bool {
	for _, operationResult := range results {
		if !operationResult.Succeeded {
			return true
		}
	}
	return false
}

// sortDeepestFirst orders repositories so any repository nested under another
// appears before it. Ties break lexically to keep the plan deterministic.
func sortDeepestFirst(repositories []review.RepositoryChangeData) {
	sort.SliceStable(repositories, func(leftIndex int, rightIndex int) bool {
		leftPath := repositories[leftIndex].Repository.Path
		rightPath := repositories[rightIndex].Repository.Path
		leftDepth := strings.Count(leftPath, "/")
		rightDepth := strings.Count(rightPath, "/")
		if leftDepth != rightDepth {
			return leftDepth > rightDepth
		}
		return leftPath < rightPath
	})
}

// resolveCommitMessage prefers the generated message and synthesizes a
// pointer-bump subject for a parent whose only changes are submodule updates.
func resolveCommitMessage(changeData review.RepositoryChangeData) string {
	if len(strings.TrimSpace(changeData.GeneratedCommitMessage)) > 0 {
		return changeData.GeneratedCommitMessage
	}
	if !changeData.HasChanges() && changeData.HasHiddenSubmoduleChanges() {
		submodulePaths := make([]string, 0, len(changeData.HiddenSubmoduleChanges))
		for _, hiddenChange := range changeData.HiddenSubmoduleChanges {
			submodulePaths = append(submodulePaths, hiddenChange.FilePath)
		}
		return fmt.Sprintf(submodulePointerMessageTemplate, strings.Join(submodulePaths, ", "))
	}
	return fmt.Sprintf("chore(%s): record pending changes", changeData.Repository.Name)
}
