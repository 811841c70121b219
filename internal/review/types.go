package review

import "time"

// FileChangeStatus enumerates the recognized kinds of file change.
type FileChangeStatus string

// Supported file change statuses.
const (
	FileChangeModified  FileChangeStatus = "modified"
	FileChangeAdded     FileChangeStatus = "added"
	FileChangeDeleted   FileChangeStatus = "deleted"
	FileChangeUntracked FileChangeStatus = "untracked"
	FileChangeRenamed   FileChangeStatus = "renamed"
)

// Repository describes one git working tree, either a workspace root or a submodule.
type Repository struct {
	Name        string
	Path        string
	BranchName  string
	AheadCount  int
	BehindCount int
}

// HasBranchDivergence reports whether the repository is ahead of or behind its upstream.
func (repository Repository) HasBranchDivergence() bool {
	return repository.AheadCount > 0 || repository.BehindCount > 0
}

// FileChange describes one changed file within a repository.
type FileChange struct {
	FilePath     string
	PreviousPath string
	Status       FileChangeStatus
	Staged       bool
}

// ScanStatistics aggregates change counters for one or more repositories.
type ScanStatistics struct {
	TotalFiles             int
	Additions              int
	Modifications          int
	Deletions              int
	HiddenSubmoduleChanges int
}

// Accumulate returns the element-wise sum of the receiver and the supplied statistics.
func (statistics ScanStatistics) Accumulate(other ScanStatistics) ScanStatistics {
	return ScanStatistics{
		TotalFiles:             statistics.TotalFiles + other.TotalFiles,
		Additions:              statistics.Additions + other.Additions,
		Modifications:          statistics.Modifications + other.Modifications,
		Deletions:              statistics.Deletions + other.Deletions,
		HiddenSubmoduleChanges: statistics.HiddenSubmoduleChanges + other.HiddenSubmoduleChanges,
	}
}

// RepositoryChangeData captures the scan result for one repository.
type RepositoryChangeData struct {
	Repository             Repository
	Changes                []FileChange
	HiddenSubmoduleChanges []FileChange
	Statistics             ScanStatistics
	StagedDiff             string
	UnstagedDiff           string
	RecentCommitSubjects   []string
	GeneratedCommitMessage string
	ScanFailureMessage     string
}

// HasChanges reports whether the repository carries authored file changes.
func (changeData RepositoryChangeData) HasChanges() bool {
	return len(changeData.Changes) > 0
}

// HasHiddenSubmoduleChanges reports whether the repository carries submodule pointer bumps.
func (changeData RepositoryChangeData) HasHiddenSubmoduleChanges() bool {
	return len(changeData.HiddenSubmoduleChanges) > 0
}

// DiffCharacterCount returns the combined length of staged and unstaged diff text.
func (changeData RepositoryChangeData) DiffCharacterCount() int {
	return len(changeData.StagedDiff) + len(changeData.UnstagedDiff)
}

// ChangeReviewReport is the top-level output of one review cycle.
// Reports are immutable once produced; WithCommitMessage returns an edited copy.
type ChangeReviewReport struct {
	GeneratedAt         time.Time
	Repositories        []RepositoryChangeData
	AggregateStatistics ScanStatistics
	ExecutiveSummary    string
}

// WithCommitMessage returns a new report with the commit message of one repository replaced.
func (report ChangeReviewReport) WithCommitMessage(repositoryPath string, commitMessage string) ChangeReviewReport {
	editedRepositories := make([]RepositoryChangeData, len(report.Repositories))
	copy(editedRepositories, report.Repositories)
	for repositoryIndex := range editedRepositories {
		if editedRepositories[repositoryIndex].Repository.Path == repositoryPath {
			editedRepositories[repositoryIndex].GeneratedCommitMessage = commitMessage
		}
	}

	editedReport := report
	editedReport.Repositories = editedRepositories
	return editedReport
}

// AggregateStatistics sums the statistics of every repository with authored changes.
func AggregateStatistics(repositories []RepositoryChangeData) ScanStatistics {
	aggregated := ScanStatistics{}
	for _, changeData := range repositories {
		if !changeData.HasChanges() && !changeData.HasHiddenSubmoduleChanges() {
			continue
		}
		aggregated = aggregated.Accumulate(changeData.Statistics)
	}
	return aggregated
}
