package generate

import (
	"context"

	"github.com/ChaseNoCapDev/metacommit/internal/review"
)

// PayloadMode selects the change context shipped with a generation request.
type PayloadMode string

// Supported payload modes.
const (
	// PayloadModeFullDiff ships the raw staged and unstaged diff text.
	PayloadModeFullDiff PayloadMode = "full_diff"
	// PayloadModeFileList ships a compact status-and-path listing instead of diff text.
	PayloadModeFileList PayloadMode = "file_list"
)

// RepositoryGenerationRequest carries the per-repository context of a batched generation call.
type RepositoryGenerationRequest struct {
	RepositoryName       string   `json:"repository_name"`
	RepositoryPath       string   `json:"repository_path"`
	Payload              string   `json:"payload"`
	PayloadMode          string   `json:"payload_mode"`
	ChangedFilePaths     []string `json:"changed_file_paths"`
	RecentCommitSubjects []string `json:"recent_commit_subjects"`
	ContextNote          string   `json:"context_note"`
}

// BatchGenerationRequest is one request covering every changed repository.
type BatchGenerationRequest struct {
	Repositories []RepositoryGenerationRequest `json:"repositories"`
}

// RepositoryGenerationResult is the generated message for one repository.
type RepositoryGenerationResult struct {
	RepositoryName string `json:"repository_name"`
	RepositoryPath string `json:"repository_path"`
	CommitMessage  string `json:"commit_message"`
}

// BatchGenerationResponse carries per-repository results and usage accounting.
type BatchGenerationResponse struct {
	Results    []RepositoryGenerationResult `json:"results"`
	TokenUsage int                          `json:"token_usage"`
}

// SummaryRepositoryInput is the per-repository contribution to an executive summary request.
type SummaryRepositoryInput struct {
	RepositoryName string                `json:"repository_name"`
	CommitMessage  string                `json:"commit_message"`
	Statistics     review.ScanStatistics `json:"statistics"`
}

// SummaryRequest describes the desired executive summary.
type SummaryRequest struct {
	Audience     string                   `json:"audience"`
	TargetLength string                   `json:"target_length"`
	FocusAreas   []string                 `json:"focus_areas"`
	Repositories []SummaryRepositoryInput `json:"repositories"`
}

// SummaryResponse carries the synthesized narrative and its metadata.
type SummaryResponse struct {
	Summary         string   `json:"summary"`
	RiskLevel       string   `json:"risk_level"`
	Recommendations []string `json:"recommendations"`
}

// GenerationService is the remote AI collaborator consumed by the generators.
type GenerationService interface {
	GenerateCommitMessages(executionContext context.Context, request BatchGenerationRequest) (BatchGenerationResponse, error)
	GenerateExecutiveSummary(executionContext context.Context, request SummaryRequest) (SummaryResponse, error)
}
