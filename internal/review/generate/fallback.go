package generate

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/ChaseNoCapDev/metacommit/internal/review"
)

const (
	commitTypeFeatureConstant        = "feat"
	commitTypeFixConstant            = "fix"
	commitTypeRefactorConstant       = "refactor"
	commitTypeDocumentationConstant  = "docs"
	commitTypeTestConstant           = "test"
	commitTypeChoreConstant          = "chore"
	fallbackSubjectTemplateConstant  = "%s%s: update %s"
	fallbackScopeTemplateConstant    = "(%s)"
	fallbackBodyLineTemplateConstant = "- %s %s"
	fallbackFileFigureSingular       = "1 file"
	fallbackFileFigureTemplate       = "%d files"
	documentationExtensionMarkdown   = ".md"
	documentationExtensionText       = ".txt"
	documentationExtensionRst        = ".rst"
	testFileSuffixConstant           = "_test.go"
	testDirectorySegmentConstant     = "test"
)

// FallbackMessageComposer produces deterministic conventional-commit messages
// without any remote collaborator. It always succeeds.
type FallbackMessageComposer struct{}

// NewFallbackMessageComposer constructs the composer.
func NewFallbackMessageComposer() *FallbackMessageComposer {
	return &FallbackMessageComposer{}
}

// Compose builds a commit message for the repository from its changed files alone.
func (composer *FallbackMessageComposer) Compose(changeData review.RepositoryChangeData) string {
	relevantChanges := changeData.Changes
	if len(relevantChanges) == 0 && changeData.HasHiddenSubmoduleChanges() {
		return synthesizeSubmodulePointerMessage(changeData.HiddenSubmoduleChanges)
	}

	commitType := composer.classifyCommitType(relevantChanges)
	commitScope := composer.deriveScope(changeData.Repository.Name, relevantChanges)
	subjectTarget := composer.describeFileFigure(len(relevantChanges))

	scopeFragment := ""
	if len(commitScope) > 0 {
		scopeFragment = fmt.Sprintf(fallbackScopeTemplateConstant, commitScope)
	}

	messageBuilder := strings.Builder{}
	messageBuilder.WriteString(fmt.Sprintf(fallbackSubjectTemplateConstant, commitType, scopeFragment, subjectTarget))
	messageBuilder.WriteString("\n")
	for _, fileChange := range relevantChanges {
		messageBuilder.WriteString("\n")
		messageBuilder.WriteString(fmt.Sprintf(fallbackBodyLineTemplateConstant, fileChange.Status, fileChange.FilePath))
	}
	return messageBuilder.String()
}

func (composer *FallbackMessageComposer) classifyCommitType(changes []review.FileChange) string {
	additionCount := 0
	deletionCount := 0
	documentationCount := 0
	testCount := 0
	for _, fileChange := range changes {
		switch fileChange.Status {
		case review.FileChangeAdded, review.FileChangeUntracked:
			additionCount++
		case review.FileChangeDeleted:
			deletionCount++
		}
		if isDocumentationPath(fileChange.FilePath) {
			documentationCount++
		}
		if isTestPath(fileChange.FilePath) {
			testCount++
		}
	}

	totalCount := len(changes)
	switch {
	case totalCount == 0:
		return commitTypeChoreConstant
	case documentationCount == totalCount:
		return commitTypeDocumentationConstant
	case testCount == totalCount:
		return commitTypeTestConstant
	case additionCount > totalCount/2:
		return commitTypeFeatureConstant
	case deletionCount > totalCount/2:
		return commitTypeRefactorConstant
	case additionCount == 0 && deletionCount == 0:
		return commitTypeFixConstant
	default:
		return commitTypeChoreConstant
	}
}

func (composer *FallbackMessageComposer) deriveScope(repositoryName string, changes []review.FileChange) string {
	commonPrefix := commonDirectoryPrefix(changes)
	if len(commonPrefix) > 0 {
		return commonPrefix
	}
	return repositoryName
}

func (composer *FallbackMessageComposer) describeFileFigure(fileCount int) string {
	if fileCount == 1 {
		return fallbackFileFigureSingular
	}
	return fmt.Sprintf(fallbackFileFigureTemplate, fileCount)
}

func commonDirectoryPrefix(changes []review.FileChange) string {
	directories := make([]string, 0, len(changes))
	for _, fileChange := range changes {
		directory := path.Dir(fileChange.FilePath)
		if directory == "." {
			return ""
		}
		directories = append(directories, directory)
	}
	if len(directories) == 0 {
		return ""
	}

	sort.Strings(directories)
	firstSegments := strings.Split(directories[0], "/")
	lastSegments := strings.Split(directories[len(directories)-1], "/")
	sharedSegments := []string{}
	for segmentIndex := 0; segmentIndex < len(firstSegments) && segmentIndex < len(lastSegments); segmentIndex++ {
		if firstSegments[segmentIndex] != lastSegments[segmentIndex] {
			break
		}
		sharedSegments = append(sharedSegments, firstSegments[segmentIndex])
	}
	if len(sharedSegments) == 0 {
		return ""
	}
	return sharedSegments[len(sharedSegments)-1]
}

func isDocumentationPath(filePath string) bool {
	loweredPath := strings.ToLower(filePath)
	return strings.HasSuffix(loweredPath, documentationExtensionMarkdown) ||
		strings.HasSuffix(loweredPath, documentationExtensionText) ||
		strings.HasSuffix(loweredPath, documentationExtensionRst)
}

func isTestPath(filePath string) bool {
	loweredPath := strings.ToLower(filePath)
	if strings.HasSuffix(loweredPath, testFileSuffixConstant) {
		return true
	}
	for _, pathSegment := range strings.Split(loweredPath, "/") {
		if pathSegment == testDirectorySegmentConstant || pathSegment == "tests" {
			return true
		}
	}
	return false
}

// synthesizeSubmodulePointerMessage names the bumped submodules in a chore
// subject, keeping each submodule's parent-relative path intact.
func synthesizeSubmodulePointerMessage(hiddenChanges []review.FileChange) string {
	submodulePaths := make([]string, 0, len(hiddenChanges))
	for _, hiddenChange := range hiddenChanges {
		submodulePaths = append(submodulePaths, hiddenChange.FilePath)
	}
	return fmt.Sprintf("chore: update submodules (%s)", strings.Join(submodulePaths, ", "))
}
