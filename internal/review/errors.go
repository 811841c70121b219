package review

import "fmt"

const (
	scanErrorTemplateConstant                 = "repository scan failed: %v"
	generationErrorTemplateConstant           = "commit message generation failed: %v"
	generationTimeoutErrorTemplateConstant    = "commit message generation timed out after %s"
	summaryErrorTemplateConstant              = "executive summary generation failed: %v"
	summaryTimeoutErrorTemplateConstant       = "executive summary generation timed out after %s"
	commitErrorTemplateConstant               = "commit failed for %s: %v"
	pushErrorTemplateConstant                 = "push failed for %s: %v"
	verificationMismatchErrorTemplateConstant = "commit reported success for %s but HEAD still resolves to %s"
)

// ScanError indicates the repository status collaborator was unreachable. It aborts the review cycle.
type ScanError struct {
	Cause error
}

// Error describes the scan failure.
func (scanError ScanError) Error() string {
	return fmt.Sprintf(scanErrorTemplateConstant, scanError.Cause)
}

// Unwrap exposes the underlying cause.
func (scanError ScanError) Unwrap() error {
	return scanError.Cause
}

// GenerationError indicates a remote commit-message generation attempt failed.
type GenerationError struct {
	Cause error
}

// Error describes the generation failure.
func (generationError GenerationError) Error() string {
	return fmt.Sprintf(generationErrorTemplateConstant, generationError.Cause)
}

// Unwrap exposes the underlying cause.
func (generationError GenerationError) Unwrap() error {
	return generationError.Cause
}

// GenerationTimeoutError indicates the generation request exceeded its deadline.
type GenerationTimeoutError struct {
	Timeout string
}

// Error describes the timeout.
func (timeoutError GenerationTimeoutError) Error() string {
	return fmt.Sprintf(generationTimeoutErrorTemplateConstant, timeoutError.Timeout)
}

// SummaryError indicates executive summary generation failed.
type SummaryError struct {
	Cause error
}

// Error describes the summary failure.
func (summaryError SummaryError) Error() string {
	return fmt.Sprintf(summaryErrorTemplateConstant, summaryError.Cause)
}

// Unwrap exposes the underlying cause.
func (summaryError SummaryError) Unwrap() error {
	return summaryError.Cause
}

// SummaryTimeoutError indicates the summary request exceeded its deadline.
type SummaryTimeoutError struct {
	Timeout string
}

// Error describes the timeout.
func (timeoutError SummaryTimeoutError) Error() string {
	return fmt.Sprintf(summaryTimeoutErrorTemplateConstant, timeoutError.Timeout)
}

// CommitError reports a failed commit operation for one repository.
type CommitError struct {
	RepositoryName string
	Cause          error
}

// Error describes the commit failure.
func (commitError CommitError) Error() string {
	return fmt.Sprintf(commitErrorTemplateConstant, commitError.RepositoryName, commitError.Cause)
}

// Unwrap exposes the underlying cause.
func (commitError CommitError) Unwrap() error {
	return commitError.Cause
}

// PushError reports a failed push operation for one repository.
type PushError struct {
	RepositoryName string
	Cause          error
}

// Error describes the push failure.
func (pushError PushError) Error() string {
	return fmt.Sprintf(pushErrorTemplateConstant, pushError.RepositoryName, pushError.Cause)
}

// Unwrap exposes the underlying cause.
func (pushError PushError) Unwrap() error {
	return pushError.Cause
}

// VerificationMismatchError reports a commit that claimed success without moving HEAD.
type VerificationMismatchError struct {
	RepositoryName string
	Hash           string
}

// Error describes the verification mismatch.
func (mismatchError VerificationMismatchError) Error() string {
	return fmt.Sprintf(verificationMismatchErrorTemplateConstant, mismatchError.RepositoryName, mismatchError.Hash)
}
