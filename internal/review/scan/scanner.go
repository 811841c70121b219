package scan

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ChaseNoCapDev/metacommit/internal/gitrepo"
	"github.com/ChaseNoCapDev/metacommit/internal/review"
)

const (
	scannerDependenciesMessageConstant  = "repository scanner requires a discoverer and a status reader"
	scannerMissingRootsMessageConstant  = "repository scanner requires at least one workspace root"
	detachedBranchPlaceholderConstant   = "(detached)"
	recentCommitSubjectCountConstant    = 5
	repositoryScannedMessageConstant    = "repository scanned"
	repositoryUnreadableMessageConstant = "repository status unreadable"
	logFieldRepositoryPathConstant      = "repository_path"
	logFieldChangeCountConstant         = "change_count"
	logFieldHiddenChangeCountConstant   = "hidden_submodule_change_count"
)

// Sentinel errors reported during scanner construction.
var (
	// ErrScannerDependenciesMissing indicates the scanner was constructed without collaborators.
	ErrScannerDependenciesMissing = errors.New(scannerDependenciesMessageConstant)
	// ErrWorkspaceRootsMissing indicates no workspace roots were supplied.
	ErrWorkspaceRootsMissing = errors.New(scannerMissingRootsMessageConstant)
)

// RepositoryDiscoverer locates git repositories for bulk scanning.
type RepositoryDiscoverer interface {
	DiscoverRepositories(roots []string) ([]string, error)
}

// RepositoryStatusReader exposes the git state queries the scanner depends on.
type RepositoryStatusReader interface {
	StatusSummary(executionContext context.Context, repositoryPath string) (gitrepo.StatusSummary, error)
	CapturedDiffs(executionContext context.Context, repositoryPath string) (gitrepo.CapturedDiffs, error)
	RecentCommitSubjects(executionContext context.Context, repositoryPath string, subjectCount int) []string
	ListSubmodulePaths(executionContext context.Context, repositoryPath string) []string
}

// Scanner enumerates workspace repositories and normalizes their change state.
type Scanner struct {
	discoverer         RepositoryDiscoverer
	statusReader       RepositoryStatusReader
	analyzer           *ChangeAnalyzer
	logger             *zap.Logger
	workspaceRoots     []string
	metaRepositoryPath string
}

// NewScanner constructs a Scanner for the supplied workspace roots. The meta
// repository path designates the parent repository whose submodule pointer
// bumps are split into the hidden change bucket; it may be empty when the
// workspace has no designated parent.
func NewScanner(discoverer RepositoryDiscoverer, statusReader RepositoryStatusReader, logger *zap.Logger, workspaceRoots []string, metaRepositoryPath string) (*Scanner, error) {
	if discoverer == nil || statusReader == nil {
		return nil, ErrScannerDependenciesMissing
	}
	if len(workspaceRoots) == 0 {
		return nil, ErrWorkspaceRootsMissing
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scanner{
		discoverer:         discoverer,
		statusReader:       statusReader,
		analyzer:           NewChangeAnalyzer(),
		logger:             logger,
		workspaceRoots:     append([]string{}, workspaceRoots...),
		metaRepositoryPath: metaRepositoryPath,
	}, nil
}

// Scan enumerates every repository under the workspace roots and returns
// normalized change data per repository. Discovery failure aborts the scan
// with a review.ScanError; per-repository status failures are recorded on the
// affected entry so one broken checkout cannot abort the whole cycle.
func (scanner *Scanner) Scan(executionContext context.Context) ([]review.RepositoryChangeData, error) {
	repositoryPaths, discoveryError := scanner.discoverer.DiscoverRepositories(scanner.workspaceRoots)
	if discoveryError != nil {
		return nil, review.ScanError{Cause: discoveryError}
	}

	results := make([]review.RepositoryChangeData, 0, len(repositoryPaths))
	for _, repositoryPath := range repositoryPaths {
		results = append(results, scanner.scanRepository(executionContext, repositoryPath))
	}
	return results, nil
}

// ScanOne collects normalized change data for a single repository path.
func (scanner *Scanner) ScanOne(executionContext context.Context, repositoryPath string) review.RepositoryChangeData {
	return scanner.scanRepository(executionContext, repositoryPath)
}

func (scanner *Scanner) scanRepository(executionContext context.Context, repositoryPath string) review.RepositoryChangeData {
	repository := review.Repository{
		Name: filepath.Base(repositoryPath),
		Path: repositoryPath,
	}

	statusSummary, statusError := scanner.statusReader.StatusSummary(executionContext, repositoryPath)
	if statusError != nil {
		scanner.logger.Warn(
			repositoryUnreadableMessageConstant,
			zap.String(logFieldRepositoryPathConstant, repositoryPath),
			zap.Error(statusError),
		)
		repository.BranchName = detachedBranchPlaceholderConstant
		return review.RepositoryChangeData{Repository: repository, ScanFailureMessage: statusError.Error()}
	}

	repository.BranchName = statusSummary.BranchName
	if len(repository.BranchName) == 0 {
		repository.BranchName = detachedBranchPlaceholderConstant
	}
	repository.AheadCount = statusSummary.AheadCount
	repository.BehindCount = statusSummary.BehindCount

	submodulePrefixes := scanner.submodulePrefixesFor(executionContext, repositoryPath)

	var authoredChanges []review.FileChange
	var hiddenSubmoduleChanges []review.FileChange
	for _, statusEntry := range statusSummary.Entries {
		fileChange := classifyFileEntry(statusEntry)
		if isHiddenSubmoduleChange(fileChange, submodulePrefixes) {
			hiddenSubmoduleChanges = append(hiddenSubmoduleChanges, fileChange)
			continue
		}
		authoredChanges = append(authoredChanges, fileChange)
	}

	changeData := review.RepositoryChangeData{
		Repository:             repository,
		Changes:                authoredChanges,
		HiddenSubmoduleChanges: hiddenSubmoduleChanges,
	}
	changeData.Statistics = scanner.analyzer.Analyze(authoredChanges, hiddenSubmoduleChanges)

	if changeData.HasChanges() {
		capturedDiffs, diffError := scanner.statusReader.CapturedDiffs(executionContext, repositoryPath)
		if diffError == nil {
			changeData.StagedDiff = capturedDiffs.Staged
			changeData.UnstagedDiff = capturedDiffs.Unstaged
		}
		changeData.RecentCommitSubjects = scanner.statusReader.RecentCommitSubjects(executionContext, repositoryPath, recentCommitSubjectCountConstant)
	}

	scanner.logger.Debug(
		repositoryScannedMessageConstant,
		zap.String(logFieldRepositoryPathConstant, repositoryPath),
		zap.Int(logFieldChangeCountConstant, len(authoredChanges)),
		zap.Int(logFieldHiddenChangeCountConstant, len(hiddenSubmoduleChanges)),
	)

	return changeData
}

func (scanner *Scanner) submodulePrefixesFor(executionContext context.Context, repositoryPath string) []string {
	if len(scanner.metaRepositoryPath) == 0 || repositoryPath != scanner.metaRepositoryPath {
		return nil
	}
	return scanner.statusReader.ListSubmodulePaths(executionContext, repositoryPath)
}

func classifyFileEntry(statusEntry gitrepo.FileEntry) review.FileChange {
	fileChange := review.FileChange{
		FilePath:     statusEntry.Path,
		PreviousPath: statusEntry.PreviousPath,
		Staged:       statusEntry.Staged(),
	}

	switch {
	case statusEntry.Untracked():
		fileChange.Status = review.FileChangeUntracked
	case statusEntry.IndexStatus == 'R' || statusEntry.WorktreeStatus == 'R':
		fileChange.Status = review.FileChangeRenamed
	case statusEntry.IndexStatus == 'A':
		fileChange.Status = review.FileChangeAdded
	case statusEntry.IndexStatus == 'D' || statusEntry.WorktreeStatus == 'D':
		fileChange.Status = review.FileChangeDeleted
	default:
		fileChange.Status = review.FileChangeModified
	}

	return fileChange
}

func isHiddenSubmoduleChange(fileChange review.FileChange, submodulePrefixes []string) bool {
	if fileChange.Status != review.FileChangeModified {
		return false
	}
	for _, submodulePrefix := range submodulePrefixes {
		if fileChange.FilePath == submodulePrefix || strings.HasPrefix(fileChange.FilePath, submodulePrefix+"/") {
			return true
		}
	}
	return false
}
