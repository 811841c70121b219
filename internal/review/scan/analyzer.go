package scan

import "github.com/ChaseNoCapDev/metacommit/internal/review"

// ChangeAnalyzer derives scan statistics from normalized file changes.
// The analyzer performs no I/O and is idempotent: identical inputs always
// produce identical statistics.
type ChangeAnalyzer struct{}

// NewChangeAnalyzer constructs a ChangeAnalyzer.
func NewChangeAnalyzer() *ChangeAnalyzer {
	return &ChangeAnalyzer{}
}

// Analyze computes counters for one repository. Untracked and added files
// count as additions, removed paths as deletions, and every other change as a
// modification. Hidden submodule pointer bumps are tallied separately and do
// not contribute to the authored file total.
func (analyzer *ChangeAnalyzer) Analyze(authoredChanges []review.FileChange, hiddenSubmoduleChanges []review.FileChange) review.ScanStatistics {
	statistics := review.ScanStatistics{
		TotalFiles:             len(authoredChanges),
		HiddenSubmoduleChanges: len(hiddenSubmoduleChanges),
	}

	for _, fileChange := range authoredChanges {
		switch fileChange.Status {
		case review.FileChangeAdded, review.FileChangeUntracked:
			statistics.Additions++
		case review.FileChangeDeleted:
			statistics.Deletions++
		default:
			statistics.Modifications++
		}
	}

	return statistics
}

// AffectedRepositoryNames returns the deduplicated names of repositories with
// authored changes, preserving order of first appearance.
func (analyzer *ChangeAnalyzer) AffectedRepositoryNames(repositories []review.RepositoryChangeData) []string {
	seenNames := make(map[string]struct{})
	var affectedNames []string
	for _, changeData := range repositories {
		if !changeData.HasChanges() {
			continue
		}
		if _, alreadySeen := seenNames[changeData.Repository.Name]; alreadySeen {
			continue
		}
		seenNames[changeData.Repository.Name] = struct{}{}
		affectedNames = append(affectedNames, changeData.Repository.Name)
	}
	return affectedNames
}
