package scan_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ChaseNoCapDev/metacommit/internal/gitrepo"
	"github.com/ChaseNoCapDev/metacommit/internal/review"
	"github.com/ChaseNoCapDev/metacommit/internal/review/scan"
)

const (
	testMetaRepositoryPathConstant = "workspace/root"
	testPackageARepositoryConstant = "workspace/root/packages/a"
	testPackageBRepositoryConstant = "workspace/root/packages/b"
)

type fakeRepositoryDiscoverer struct {
	repositories   []string
	discoveryError error
}

func (discoverer *fakeRepositoryDiscoverer) DiscoverRepositories(roots []string) ([]string, error) {
	if discoverer.discoveryError != nil {
		return nil, discoverer.discoveryError
	}
	return discoverer.repositories, nil
}

type fakeStatusReader struct {
	summaries       map[string]gitrepo.StatusSummary
	summaryFailures map[string]error
	diffs           map[string]gitrepo.CapturedDiffs
	submodulePaths  map[string][]string
	subjects        map[string][]string
}

func newFakeStatusReader() *fakeStatusReader {
	return &fakeStatusReader{
		summaries:       map[string]gitrepo.StatusSummary{},
		summaryFailures: map[string]error{},
		diffs:           map[string]gitrepo.CapturedDiffs{},
		submodulePaths:  map[string][]string{},
		subjects:        map[string][]string{},
	}
}

func (reader *fakeStatusReader) StatusSummary(executionContext context.Context, repositoryPath string) (gitrepo.StatusSummary, error) {
	if failure, hasFailure := reader.summaryFailures[repositoryPath]; hasFailure {
		return gitrepo.StatusSummary{}, failure
	}
	return reader.summaries[repositoryPath], nil
}

func (reader *fakeStatusReader) CapturedDiffs(executionContext context.Context, repositoryPath string) (gitrepo.CapturedDiffs, error) {
	return reader.diffs[repositoryPath], nil
}

func (reader *fakeStatusReader) RecentCommitSubjects(executionContext context.Context, repositoryPath string, subjectCount int) []string {
	return reader.subjects[repositoryPath]
}

func (reader *fakeStatusReader) ListSubmodulePaths(executionContext context.Context, repositoryPath string) []string {
	return reader.submodulePaths[repositoryPath]
}

func TestScannerRequiresCollaboratorsAndRoots(testInstance *testing.T) {
	_, missingDependenciesError := scan.NewScanner(nil, nil, zap.NewNop(), []string{"."}, "")
	require.ErrorIs(testInstance, missingDependenciesError, scan.ErrScannerDependenciesMissing)

	_, missingRootsError := scan.NewScanner(&fakeRepositoryDiscoverer{}, newFakeStatusReader(), zap.NewNop(), nil, "")
	require.ErrorIs(testInstance, missingRootsError, scan.ErrWorkspaceRootsMissing)
}

func TestScanWrapsDiscoveryFailure(testInstance *testing.T) {
	discoverer := &fakeRepositoryDiscoverer{discoveryError: errors.New("workspace unreachable")}
	scanner, creationError := scan.NewScanner(discoverer, newFakeStatusReader(), zap.NewNop(), []string{"."}, "")
	require.NoError(testInstance, creationError)

	_, scanError := scanner.Scan(context.Background())
	require.Error(testInstance, scanError)
	require.IsType(testInstance, review.ScanError{}, scanError)
}

func TestScanSplitsHiddenSubmoduleChangesForMetaRepository(testInstance *testing.T) {
	discoverer := &fakeRepositoryDiscoverer{repositories: []string{testMetaRepositoryPathConstant, testPackageARepositoryConstant}}
	statusReader := newFakeStatusReader()
	statusReader.summaries[testMetaRepositoryPathConstant] = gitrepo.StatusSummary{
		BranchName: "main",
		Entries: []gitrepo.FileEntry{
			{Path: "packages/a", IndexStatus: ' ', WorktreeStatus: 'M'},
			{Path: "README.md", IndexStatus: ' ', WorktreeStatus: 'M'},
		},
	}
	statusReader.summaries[testPackageARepositoryConstant] = gitrepo.StatusSummary{
		BranchName: "main",
		Entries: []gitrepo.FileEntry{
			{Path: "service.go", IndexStatus: 'M', WorktreeStatus: ' '},
		},
	}
	statusReader.submodulePaths[testMetaRepositoryPathConstant] = []string{"packages/a", "packages/b"}
	statusReader.diffs[testMetaRepositoryPathConstant] = gitrepo.CapturedDiffs{Unstaged: "readme diff"}
	statusReader.diffs[testPackageARepositoryConstant] = gitrepo.CapturedDiffs{Staged: "service diff"}

	scanner, creationError := scan.NewScanner(discoverer, statusReader, zap.NewNop(), []string{"workspace"}, testMetaRepositoryPathConstant)
	require.NoError(testInstance, creationError)

	results, scanErr := scanner.Scan(context.Background())
	require.NoError(testInstance, scanErr)
	require.Len(testInstance, results, 2)

	metaResult := results[0]
	require.Equal(testInstance, testMetaRepositoryPathConstant, metaResult.Repository.Path)
	require.Len(testInstance, metaResult.Changes, 1)
	require.Equal(testInstance, "README.md", metaResult.Changes[0].FilePath)
	require.Len(testInstance, metaResult.HiddenSubmoduleChanges, 1)
	require.Equal(testInstance, "packages/a", metaResult.HiddenSubmoduleChanges[0].FilePath)
	require.Equal(testInstance, 1, metaResult.Statistics.TotalFiles)
	require.Equal(testInstance, 1, metaResult.Statistics.HiddenSubmoduleChanges)

	packageResult := results[1]
	require.Len(testInstance, packageResult.Changes, 1)
	require.Empty(testInstance, packageResult.HiddenSubmoduleChanges)
	require.Equal(testInstance, "service diff", packageResult.StagedDiff)
}

func TestScanRecordsPerRepositoryFailuresWithoutAborting(testInstance *testing.T) {
	discoverer := &fakeRepositoryDiscoverer{repositories: []string{testPackageARepositoryConstant, testPackageBRepositoryConstant}}
	statusReader := newFakeStatusReader()
	statusReader.summaryFailures[testPackageARepositoryConstant] = errors.New("index locked")
	statusReader.summaries[testPackageBRepositoryConstant] = gitrepo.StatusSummary{BranchName: "main"}

	scanner, creationError := scan.NewScanner(discoverer, statusReader, zap.NewNop(), []string{"workspace"}, "")
	require.NoError(testInstance, creationError)

	results, scanErr := scanner.Scan(context.Background())
	require.NoError(testInstance, scanErr)
	require.Len(testInstance, results, 2)
	require.NotEmpty(testInstance, results[0].ScanFailureMessage)
	require.Empty(testInstance, results[1].ScanFailureMessage)
	require.Equal(testInstance, "(detached)", results[0].Repository.BranchName)
}

func TestScanAggregateMatchesPerRepositoryTotals(testInstance *testing.T) {
	discoverer := &fakeRepositoryDiscoverer{repositories: []string{testPackageARepositoryConstant, testPackageBRepositoryConstant}}
	statusReader := newFakeStatusReader()
	statusReader.summaries[testPackageARepositoryConstant] = gitrepo.StatusSummary{
		BranchName: "main",
		Entries: []gitrepo.FileEntry{
			{Path: "one.go", IndexStatus: 'A', WorktreeStatus: ' '},
			{Path: "two.go", IndexStatus: ' ', WorktreeStatus: 'M'},
		},
	}
	statusReader.summaries[testPackageBRepositoryConstant] = gitrepo.StatusSummary{
		BranchName: "main",
		Entries: []gitrepo.FileEntry{
			{Path: "gone.go", IndexStatus: 'D', WorktreeStatus: ' '},
		},
	}

	scanner, creationError := scan.NewScanner(discoverer, statusReader, zap.NewNop(), []string{"workspace"}, "")
	require.NoError(testInstance, creationError)

	results, scanErr := scanner.Scan(context.Background())
	require.NoError(testInstance, scanErr)

	aggregated := review.AggregateStatistics(results)
	expectedTotal := 0
	for _, result := range results {
		if result.HasChanges() {
			expectedTotal += result.Statistics.TotalFiles
		}
	}
	require.Equal(testInstance, expectedTotal, aggregated.TotalFiles)
	require.Equal(testInstance, 1, aggregated.Additions)
	require.Equal(testInstance, 1, aggregated.Modifications)
	require.Equal(testInstance, 1, aggregated.Deletions)
}
