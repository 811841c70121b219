package generate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/ChaseNoCapDev/metacommit/internal/review"
)

const (
	// DefaultSummaryTimeout bounds one executive summary request.
	DefaultSummaryTimeout = 5 * time.Minute
	summaryAudienceConstant            = "engineering leadership"
	summaryTargetLengthConstant        = "2-3 paragraphs"
	summaryDependenciesMissingMessage  = "executive summary generator requires a service and logger"
	riskLevelHighConstant              = "HIGH"
	riskLevelMediumConstant            = "MEDIUM"
	riskLevelLowConstant               = "LOW"
	highRiskFileThresholdConstant      = 50
	mediumRiskFileThresholdConstant    = 20
	summaryHeaderTemplateConstant      = "Changes span %s across %s."
	summaryThemeTemplateConstant       = "%s work in %s"
	summaryDivergenceTemplateConstant  = " %s ahead of or behind upstream and should be pushed or reconciled."
	summaryPointerBumpNoteConstant     = " Submodule pointer updates are pending in the parent repository."
	recommendationReviewLargeConstant  = "Review the largest diffs before committing; the change volume is above typical."
	recommendationSplitMixedConstant   = "Consider splitting mixed feature and fix work into separate commits."
	recommendationPushDivergedConstant = "Push diverged branches promptly to keep submodule pointers consistent."
)

// ErrSummaryDependenciesMissing indicates the summary generator lacks collaborators.
var ErrSummaryDependenciesMissing = errors.New(summaryDependenciesMissingMessage)

// ExecutiveSummaryGenerator synthesizes a cross-repository narrative of the
// review cycle. A remote failure degrades to a deterministic local summary.
type ExecutiveSummaryGenerator struct {
	generationService GenerationService
	logger            *zap.Logger
	summaryTimeout    time.Duration
	focusAreas        []string
}

// NewExecutiveSummaryGenerator constructs a summary generator with the default timeout.
func NewExecutiveSummaryGenerator(generationService GenerationService, logger *zap.Logger, focusAreas []string) (*ExecutiveSummaryGenerator, error) {
	return NewExecutiveSummaryGeneratorWithTimeout(generationService, logger, focusAreas, DefaultSummaryTimeout)
}

// NewExecutiveSummaryGeneratorWithTimeout constructs a summary generator with an explicit timeout.
func NewExecutiveSummaryGeneratorWithTimeout(generationService GenerationService, logger *zap.Logger, focusAreas []string, summaryTimeout time.Duration) (*ExecutiveSummaryGenerator, error) {
	if generationService == nil || logger == nil {
		return nil, ErrSummaryDependenciesMissing
	}
	if summaryTimeout <= 0 {
		summaryTimeout = DefaultSummaryTimeout
	}
	return &ExecutiveSummaryGenerator{
		generationService: generationService,
		logger:            logger,
		summaryTimeout:    summaryTimeout,
		focusAreas:        focusAreas,
	}, nil
}

// Summarize produces the executive summary text. It never fails; a remote
// error or timeout yields the deterministic local narrative instead.
func (summaryGenerator *ExecutiveSummaryGenerator) Summarize(executionContext context.Context, repositories []review.RepositoryChangeData) string {
	changedRepositories := selectChangedRepositories(repositories)
	if len(changedRepositories) == 0 {
		return ""
	}

	timedContext, cancelSummary := context.WithTimeout(executionContext, summaryGenerator.summaryTimeout)
	defer cancelSummary()

	summaryRequest := SummaryRequest{
		Audience:     summaryAudienceConstant,
		TargetLength: summaryTargetLengthConstant,
		FocusAreas:   summaryGenerator.focusAreas,
		Repositories: make([]SummaryRepositoryInput, 0, len(changedRepositories)),
	}
	for _, changeData := range changedRepositories {
		summaryRequest.Repositories = append(summaryRequest.Repositories, SummaryRepositoryInput{
			RepositoryName: changeData.Repository.Name,
			CommitMessage:  changeData.GeneratedCommitMessage,
			Statistics:     changeData.Statistics,
		})
	}

	summaryResponse, summaryError := summaryGenerator.generationService.GenerateExecutiveSummary(timedContext, summaryRequest)
	if summaryError == nil && len(strings.TrimSpace(summaryResponse.Summary)) > 0 {
		return summaryResponse.Summary
	}

	if summaryError != nil {
		if errors.Is(summaryError, context.DeadlineExceeded) {
			summaryGenerator.logger.Warn("executive summary timed out",
				zap.Error(review.SummaryTimeoutError{Timeout: summaryGenerator.summaryTimeout.String()}),
			)
		} else {
			summaryGenerator.logger.Warn("executive summary generation failed",
				zap.Error(review.SummaryError{Cause: summaryError}),
			)
		}
	}
	return summaryGenerator.composeLocalSummary(changedRepositories)
}

// composeLocalSummary renders the deterministic narrative used when the
// remote collaborator is unavailable.
func (summaryGenerator *ExecutiveSummaryGenerator) composeLocalSummary(changedRepositories []review.RepositoryChangeData) string {
	aggregated := review.AggregateStatistics(changedRepositories)

	summaryBuilder := strings.Builder{}
	summaryBuilder.WriteString(fmt.Sprintf(summaryHeaderTemplateConstant,
		pluralizeFigure(aggregated.TotalFiles, "changed file"),
		pluralizeFigure(len(changedRepositories), "repository"),
	))

	themeDescriptions := describeThemes(changedRepositories)
	if len(themeDescriptions) > 0 {
		summaryBuilder.WriteString(" Dominant themes: ")
		summaryBuilder.WriteString(strings.Join(themeDescriptions, "; "))
		summaryBuilder.WriteString(".")
	}

	divergedNames := divergedRepositoryNames(changedRepositories)
	if len(divergedNames) > 0 {
		summaryBuilder.WriteString(fmt.Sprintf(summaryDivergenceTemplateConstant, strings.Join(divergedNames, ", ")))
	}
	if aggregated.HiddenSubmoduleChanges > 0 {
		summaryBuilder.WriteString(summaryPointerBumpNoteConstant)
	}

	riskLevel := classifyRiskLevel(aggregated.TotalFiles)
	summaryBuilder.WriteString(fmt.Sprintf(" Overall risk: %s.", riskLevel))

	recommendations := composeRecommendations(aggregated, themeDescriptions, divergedNames)
	if len(recommendations) > 0 {
		summaryBuilder.WriteString("\n\nRecommendations:\n")
		for _, recommendation := range recommendations {
			summaryBuilder.WriteString("- ")
			summaryBuilder.WriteString(recommendation)
			summaryBuilder.WriteString("\n")
		}
	}
	return strings.TrimRight(summaryBuilder.String(), "\n")
}

func selectChangedRepositories(repositories []review.RepositoryChangeData) []review.RepositoryChangeData {
	changedRepositories := []review.RepositoryChangeData{}
	for _, changeData := range repositories {
		if changeData.HasChanges() || changeData.HasHiddenSubmoduleChanges() {
			changedRepositories = append(changedRepositories, changeData)
		}
	}
	return changedRepositories
}

// describeThemes groups repositories by the conventional-commit type prefix of
// their generated messages.
func describeThemes(changedRepositories []review.RepositoryChangeData) []string {
	repositoriesByTheme := map[string][]string{}
	for _, changeData := range changedRepositories {
		theme := commitMessageTheme(changeData.GeneratedCommitMessage)
		repositoriesByTheme[theme] = append(repositoriesByTheme[theme], changeData.Repository.Name)
	}

	themes := make([]string, 0, len(repositoriesByTheme))
	for theme := range repositoriesByTheme {
		themes = append(themes, theme)
	}
	sort.Strings(themes)

	themeDescriptions := make([]string, 0, len(themes))
	for _, theme := range themes {
		themeDescriptions = append(themeDescriptions, fmt.Sprintf(summaryThemeTemplateConstant, theme, strings.Join(repositoriesByTheme[theme], ", ")))
	}
	return themeDescriptions
}

func commitMessageTheme(commitMessage string) string {
	subjectLine := commitMessage
	if newlineIndex := strings.IndexByte(subjectLine, '\n'); newlineIndex >= 0 {
		subjectLine = subjectLine[:newlineIndex]
	}
	typeFragment := subjectLine
	if colonIndex := strings.IndexByte(typeFragment, ':'); colonIndex >= 0 {
		typeFragment = typeFragment[:colonIndex]
	}
	if scopeIndex := strings.IndexByte(typeFragment, '('); scopeIndex >= 0 {
		typeFragment = typeFragment[:scopeIndex]
	}
	typeFragment = strings.TrimSpace(typeFragment)
	if len(typeFragment) == 0 || strings.ContainsRune(typeFragment, ' ') {
		return commitTypeChoreConstant
	}
	return typeFragment
}

func divergedRepositoryNames(changedRepositories []review.RepositoryChangeData) []string {
	divergedNames := []string{}
	for _, changeData := range changedRepositories {
		if changeData.Repository.HasBranchDivergence() {
			divergedNames = append(divergedNames, changeData.Repository.Name)
		}
	}
	return divergedNames
}

func classifyRiskLevel(totalFiles int) string {
	switch {
	case totalFiles > highRiskFileThresholdConstant:
		return riskLevelHighConstant
	case totalFiles > mediumRiskFileThresholdConstant:
		return riskLevelMediumConstant
	default:
		return riskLevelLowConstant
	}
}

func composeRecommendations(aggregated review.ScanStatistics, themeDescriptions []string, divergedNames []string) []string {
	recommendations := []string{}
	if aggregated.TotalFiles > mediumRiskFileThresholdConstant {
		recommendations = append(recommendations, recommendationReviewLargeConstant)
	}
	if len(themeDescriptions) > 1 {
		recommendations = append(recommendations, recommendationSplitMixedConstant)
	}
	if len(divergedNames) > 0 || aggregated.HiddenSubmoduleChanges > 0 {
		recommendations = append(recommendations, recommendationPushDivergedConstant)
	}
	return recommendations
}

func pluralizeFigure(count int, noun string) string {
	if count == 1 {
		return fmt.Sprintf("%s %s", humanize.Comma(int64(count)), noun)
	}
	if strings.HasSuffix(noun, "y") {
		return fmt.Sprintf("%s %sies", humanize.Comma(int64(count)), strings.TrimSuffix(noun, "y"))
	}
	return fmt.Sprintf("%s %ss", humanize.Comma(int64(count)), noun)
}
