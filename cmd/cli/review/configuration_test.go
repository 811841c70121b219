package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testReviewConfigurationKeyPrefix = "review"

func TestDefaultConfigurationValuesCoverEveryPersistedKey(testInstance *testing.T) {
	defaultValues := DefaultConfigurationValues(testReviewConfigurationKeyPrefix)

	expectedKeys := []string{
		"review.roots",
		"review.meta_repository",
		"review.generation_endpoint",
		"review.api_token_env",
		"review.token_budget",
		"review.generation_timeout_minutes",
		"review.summary_timeout_minutes",
		"review.push",
		"review.dry_run",
	}
	require.Len(testInstance, defaultValues, len(expectedKeys))
	for _, expectedKey := range expectedKeys {
		require.Contains(testInstance, defaultValues, expectedKey)
	}
	require.Equal(testInstance, defaultTokenBudgetConstant, defaultValues["review.token_budget"])
}

func TestSanitizeRestoresRequiredDefaults(testInstance *testing.T) {
	sanitized := CommandConfiguration{
		Roots:                    []string{"  ", ""},
		MetaRepository:           "  workspace/root  ",
		APITokenEnvironmentName:  " ",
		TokenBudget:              -5,
		GenerationTimeoutMinutes: 0,
		SummaryTimeoutMinutes:    0,
	}.sanitize()

	require.Equal(testInstance, []string{defaultWorkspaceRootConstant}, sanitized.Roots)
	require.Equal(testInstance, "workspace/root", sanitized.MetaRepository)
	require.Equal(testInstance, defaultAPITokenEnvironmentNameKey, sanitized.APITokenEnvironmentName)
	require.Equal(testInstance, defaultTokenBudgetConstant, sanitized.TokenBudget)
	require.Equal(testInstance, 25*time.Minute, sanitized.generationTimeout())
	require.Equal(testInstance, 5*time.Minute, sanitized.summaryTimeout())
}

func TestSanitizePrunesNestedWorkspaceRoots(testInstance *testing.T) {
	sanitized := CommandConfiguration{
		Roots: []string{"workspace", "workspace/root/packages/a"},
	}.sanitize()

	require.Equal(testInstance, []string{"workspace"}, sanitized.Roots)
}

func TestSanitizePreservesExplicitValues(testInstance *testing.T) {
	sanitized := CommandConfiguration{
		Roots:                    []string{"workspace"},
		GenerationEndpoint:       "https://gateway.example.com",
		TokenBudget:              9000,
		GenerationTimeoutMinutes: 1,
		SummaryTimeoutMinutes:    2,
	}.sanitize()

	require.Equal(testInstance, []string{"workspace"}, sanitized.Roots)
	require.Equal(testInstance, "https://gateway.example.com", sanitized.GenerationEndpoint)
	require.Equal(testInstance, 9000, sanitized.TokenBudget)
	require.Equal(testInstance, time.Minute, sanitized.generationTimeout())
	require.Equal(testInstance, 2*time.Minute, sanitized.summaryTimeout())
}
