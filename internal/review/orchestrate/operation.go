package orchestrate

import (
	"github.com/google/uuid"
)

// OperationKind distinguishes the two git actions the executor performs.
type OperationKind string

// Supported operation kinds.
const (
	OperationKindCommit OperationKind = "commit"
	OperationKindPush   OperationKind = "push"
)

// Operation is one planned git action against a single repository. The
// previous HEAD hash is captured at planning time so commit verification can
// detect a commit that claimed success without moving HEAD.
type Operation struct {
	ID             string
	Kind           OperationKind
	RepositoryName string
	RepositoryPath string
	CommitMessage  string
	PreviousHash   string
}

// OperationResult records the outcome of one executed operation.
type OperationResult struct {
	Operation    Operation
	Succeeded    bool
	VerifiedHash string
	Failure      error
}

func newOperationIdentifier() string {
	return uuid.NewString()
}
