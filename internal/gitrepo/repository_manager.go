package gitrepo

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/ChaseNoCapDev/metacommit/internal/execshell"
)

const (
	gitStatusSubcommandConstant        = "status"
	gitStatusPorcelainFlagConstant     = "--porcelain"
	gitStatusBranchFlagConstant        = "--branch"
	gitDiffSubcommandConstant          = "diff"
	gitDiffCachedFlagConstant          = "--cached"
	gitLogSubcommandConstant           = "log"
	gitLogCountFlagConstant            = "-n"
	gitLogSubjectFormatFlagConstant    = "--pretty=%s"
	gitConfigSubcommandConstant        = "config"
	gitConfigFileFlagConstant          = "--file"
	gitModulesFileNameConstant         = ".gitmodules"
	gitConfigGetRegexpFlagConstant     = "--get-regexp"
	gitSubmodulePathPatternConstant    = `submodule\..*\.path`
	gitRevParseSubcommandConstant      = "rev-parse"
	gitHeadReferenceConstant           = "HEAD"
	gitAddSubcommandConstant           = "add"
	gitAddAllFlagConstant              = "--all"
	gitCommitSubcommandConstant        = "commit"
	gitCommitMessageFlagConstant       = "-m"
	gitPushSubcommandConstant          = "push"
	branchHeaderPrefixConstant         = "## "
	branchUpstreamSeparatorConstant    = "..."
	branchDivergenceOpenConstant       = " ["
	branchDivergenceCloseConstant      = "]"
	branchAheadMarkerConstant          = "ahead "
	branchBehindMarkerConstant         = "behind "
	branchDivergencePartSeparator      = ", "
	branchNoCommitsPrefixConstant      = "No commits yet on "
	renameSeparatorConstant            = " -> "
	executorNotConfiguredMessage       = "repository manager requires a git executor"
	defaultRecentCommitSubjectCount    = 5
)

// ErrGitExecutorNotConfigured indicates the manager was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessage)

// GitExecutor exposes the subset of shell execution used for git operations.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// FileEntry models one line of porcelain status output.
type FileEntry struct {
	Path           string
	PreviousPath   string
	IndexStatus    byte
	WorktreeStatus byte
}

// Staged reports whether the entry carries a staged index change.
func (entry FileEntry) Staged() bool {
	return entry.IndexStatus != ' ' && entry.IndexStatus != '?'
}

// Untracked reports whether the entry represents an untracked path.
func (entry FileEntry) Untracked() bool {
	return entry.IndexStatus == '?' && entry.WorktreeStatus == '?'
}

// StatusSummary aggregates the working tree state of one repository.
type StatusSummary struct {
	BranchName  string
	AheadCount  int
	BehindCount int
	Entries     []FileEntry
}

// CapturedDiffs holds the staged and unstaged diff text of a repository.
type CapturedDiffs struct {
	Staged   string
	Unstaged string
}

// RepositoryManager performs repository-level git operations through a GitExecutor.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager backed by the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// StatusSummary collects branch and working-tree state using porcelain status output.
func (manager *RepositoryManager) StatusSummary(executionContext context.Context, repositoryPath string) (StatusSummary, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant, gitStatusBranchFlagConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return StatusSummary{}, executionError
	}

	return parseStatusOutput(executionResult.StandardOutput), nil
}

// CapturedDiffs returns the staged and unstaged diff text of the repository.
func (manager *RepositoryManager) CapturedDiffs(executionContext context.Context, repositoryPath string) (CapturedDiffs, error) {
	stagedResult, stagedError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitDiffSubcommandConstant, gitDiffCachedFlagConstant},
		WorkingDirectory: repositoryPath,
	})
	if stagedError != nil {
		return CapturedDiffs{}, stagedError
	}

	unstagedResult, unstagedError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitDiffSubcommandConstant},
		WorkingDirectory: repositoryPath,
	})
	if unstagedError != nil {
		return CapturedDiffs{}, unstagedError
	}

	return CapturedDiffs{Staged: stagedResult.StandardOutput, Unstaged: unstagedResult.StandardOutput}, nil
}

// RecentCommitSubjects returns up to the requested number of recent commit subjects.
// Repositories without history yield an empty slice rather than an error.
func (manager *RepositoryManager) RecentCommitSubjects(executionContext context.Context, repositoryPath string, subjectCount int) []string {
	if subjectCount <= 0 {
		subjectCount = defaultRecentCommitSubjectCount
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitLogSubcommandConstant, gitLogCountFlagConstant, strconv.Itoa(subjectCount), gitLogSubjectFormatFlagConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return nil
	}

	var subjects []string
	for _, line := range strings.Split(executionResult.StandardOutput, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) > 0 {
			subjects = append(subjects, trimmedLine)
		}
	}
	return subjects
}

// ListSubmodulePaths returns the submodule paths declared by the repository's .gitmodules file.
// Repositories without submodules yield an empty slice.
func (manager *RepositoryManager) ListSubmodulePaths(executionContext context.Context, repositoryPath string) []string {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitConfigSubcommandConstant, gitConfigFileFlagConstant, gitModulesFileNameConstant, gitConfigGetRegexpFlagConstant, gitSubmodulePathPatternConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return nil
	}

	var submodulePaths []string
	for _, line := range strings.Split(executionResult.StandardOutput, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		submodulePaths = append(submodulePaths, fields[1])
	}
	return submodulePaths
}

// HeadRevision resolves the current HEAD commit hash, returning an empty string for unborn branches.
func (manager *RepositoryManager) HeadRevision(executionContext context.Context, repositoryPath string) string {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitHeadReferenceConstant},
		WorkingDirectory: repositoryPath,
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return ""
	}
	return strings.TrimSpace(executionResult.StandardOutput)
}

// StageAll stages every change in the repository working tree.
func (manager *RepositoryManager) StageAll(executionContext context.Context, repositoryPath string) error {
	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitAddSubcommandConstant, gitAddAllFlagConstant},
		WorkingDirectory: repositoryPath,
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	return executionError
}

// CreateCommit stages all changes, records a commit with the supplied message, and returns the new HEAD hash.
func (manager *RepositoryManager) CreateCommit(executionContext context.Context, repositoryPath string, commitMessage string) (string, error) {
	if stageError := manager.StageAll(executionContext, repositoryPath); stageError != nil {
		return "", stageError
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitCommitSubcommandConstant, gitCommitMessageFlagConstant, commitMessage},
		WorkingDirectory: repositoryPath,
	}

	if _, executionError := manager.executor.ExecuteGit(executionContext, commandDetails); executionError != nil {
		return "", executionError
	}

	return manager.HeadRevision(executionContext, repositoryPath), nil
}

// Push publishes the current branch to its upstream and returns the branch name.
func (manager *RepositoryManager) Push(executionContext context.Context, repositoryPath string) (string, error) {
	statusSummary, statusError := manager.StatusSummary(executionContext, repositoryPath)
	if statusError != nil {
		return "", statusError
	}

	commandDetails := execshell.CommandDetails{
		Arguments:        []string{gitPushSubcommandConstant},
		WorkingDirectory: repositoryPath,
	}

	if _, executionError := manager.executor.ExecuteGit(executionContext, commandDetails); executionError != nil {
		return "", executionError
	}

	return statusSummary.BranchName, nil
}

func parseStatusOutput(statusOutput string) StatusSummary {
	summary := StatusSummary{}

	for _, line := range strings.Split(statusOutput, "\n") {
		if len(line) == 0 {
			continue
		}

		if strings.HasPrefix(line, branchHeaderPrefixConstant) {
			parseBranchHeader(line[len(branchHeaderPrefixConstant):], &summary)
			continue
		}

		if len(line) < 3 {
			continue
		}

		entry := FileEntry{IndexStatus: line[0], WorktreeStatus: line[1], Path: strings.TrimSpace(line[3:])}
		if renameIndex := strings.Index(entry.Path, renameSeparatorConstant); renameIndex >= 0 {
			entry.PreviousPath = entry.Path[:renameIndex]
			entry.Path = entry.Path[renameIndex+len(renameSeparatorConstant):]
		}
		summary.Entries = append(summary.Entries, entry)
	}

	return summary
}

func parseBranchHeader(branchHeader string, summary *StatusSummary) {
	if strings.HasPrefix(branchHeader, branchNoCommitsPrefixConstant) {
		summary.BranchName = strings.TrimSpace(branchHeader[len(branchNoCommitsPrefixConstant):])
		return
	}

	divergenceSection := ""
	if openIndex := strings.Index(branchHeader, branchDivergenceOpenConstant); openIndex >= 0 {
		closeIndex := strings.LastIndex(branchHeader, branchDivergenceCloseConstant)
		if closeIndex > openIndex {
			divergenceSection = branchHeader[openIndex+len(branchDivergenceOpenConstant) : closeIndex]
		}
		branchHeader = branchHeader[:openIndex]
	}

	if separatorIndex := strings.Index(branchHeader, branchUpstreamSeparatorConstant); separatorIndex >= 0 {
		branchHeader = branchHeader[:separatorIndex]
	}
	summary.BranchName = strings.TrimSpace(branchHeader)

	for _, divergencePart := range strings.Split(divergenceSection, branchDivergencePartSeparator) {
		trimmedPart := strings.TrimSpace(divergencePart)
		switch {
		case strings.HasPrefix(trimmedPart, branchAheadMarkerConstant):
			summary.AheadCount = parseDivergenceCount(trimmedPart[len(branchAheadMarkerConstant):])
		case strings.HasPrefix(trimmedPart, branchBehindMarkerConstant):
			summary.BehindCount = parseDivergenceCount(trimmedPart[len(branchBehindMarkerConstant):])
		}
	}
}

func parseDivergenceCount(rawCount string) int {
	parsedCount, parseError := strconv.Atoi(strings.TrimSpace(rawCount))
	if parseError != nil {
		return 0
	}
	return parsedCount
}
