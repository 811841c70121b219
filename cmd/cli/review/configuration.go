package review

import (
	"strings"
	"time"

	pathutils "github.com/ChaseNoCapDev/metacommit/internal/utils/path"
)

const (
	defaultWorkspaceRootConstant      = "."
	defaultTokenBudgetConstant        = 150000
	defaultGenerationTimeoutMinutes   = 25
	defaultSummaryTimeoutMinutes      = 5
	defaultAPITokenEnvironmentNameKey = "METACOMMIT_API_TOKEN"
	rootsConfigurationSuffixConstant  = ".roots"
	metaRepositoryConfigSuffixConst   = ".meta_repository"
	endpointConfigurationSuffixConst  = ".generation_endpoint"
	apiTokenEnvConfigSuffixConstant   = ".api_token_env"
	tokenBudgetConfigSuffixConstant   = ".token_budget"
	generationTimeoutSuffixConstant   = ".generation_timeout_minutes"
	summaryTimeoutSuffixConstant      = ".summary_timeout_minutes"
	pushConfigurationSuffixConstant   = ".push"
	dryRunConfigurationSuffixConstant = ".dry_run"
)

// CommandConfiguration captures the persisted settings shared by the review,
// commit, and push commands.
type CommandConfiguration struct {
	Roots                    []string `mapstructure:"roots"`
	MetaRepository           string   `mapstructure:"meta_repository"`
	GenerationEndpoint       string   `mapstructure:"generation_endpoint"`
	APITokenEnvironmentName  string   `mapstructure:"api_token_env"`
	TokenBudget              int      `mapstructure:"token_budget"`
	GenerationTimeoutMinutes int      `mapstructure:"generation_timeout_minutes"`
	SummaryTimeoutMinutes    int      `mapstructure:"summary_timeout_minutes"`
	Push                     bool     `mapstructure:"push"`
	DryRun                   bool     `mapstructure:"dry_run"`
}

// DefaultCommandConfiguration provides the built-in review settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Roots:                    []string{defaultWorkspaceRootConstant},
		APITokenEnvironmentName:  defaultAPITokenEnvironmentNameKey,
		TokenBudget:              defaultTokenBudgetConstant,
		GenerationTimeoutMinutes: defaultGenerationTimeoutMinutes,
		SummaryTimeoutMinutes:    defaultSummaryTimeoutMinutes,
	}
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + rootsConfigurationSuffixConstant:  defaults.Roots,
		configurationKeyPrefix + metaRepositoryConfigSuffixConst:   defaults.MetaRepository,
		configurationKeyPrefix + endpointConfigurationSuffixConst:  defaults.GenerationEndpoint,
		configurationKeyPrefix + apiTokenEnvConfigSuffixConstant:   defaults.APITokenEnvironmentName,
		configurationKeyPrefix + tokenBudgetConfigSuffixConstant:   defaults.TokenBudget,
		configurationKeyPrefix + generationTimeoutSuffixConstant:   defaults.GenerationTimeoutMinutes,
		configurationKeyPrefix + summaryTimeoutSuffixConstant:      defaults.SummaryTimeoutMinutes,
		configurationKeyPrefix + pushConfigurationSuffixConstant:   defaults.Push,
		configurationKeyPrefix + dryRunConfigurationSuffixConstant: defaults.DryRun,
	}
}

// sanitize normalizes configuration values and restores required defaults.
// Nested workspace roots are pruned so no repository is scanned twice.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	rootSanitizer := pathutils.NewRepositoryPathSanitizerWithConfiguration(nil, pathutils.WorkspaceRootSanitizerConfiguration{PruneNestedPaths: true})
	sanitized.Roots = rootSanitizer.Sanitize(configuration.Roots)
	if len(sanitized.Roots) == 0 {
		sanitized.Roots = []string{defaultWorkspaceRootConstant}
	}
	sanitized.MetaRepository = strings.TrimSpace(configuration.MetaRepository)
	sanitized.GenerationEndpoint = strings.TrimSpace(configuration.GenerationEndpoint)
	sanitized.APITokenEnvironmentName = strings.TrimSpace(configuration.APITokenEnvironmentName)
	if len(sanitized.APITokenEnvironmentName) == 0 {
		sanitized.APITokenEnvironmentName = defaultAPITokenEnvironmentNameKey
	}
	if sanitized.TokenBudget <= 0 {
		sanitized.TokenBudget = defaultTokenBudgetConstant
	}
	if sanitized.GenerationTimeoutMinutes <= 0 {
		sanitized.GenerationTimeoutMinutes = defaultGenerationTimeoutMinutes
	}
	if sanitized.SummaryTimeoutMinutes <= 0 {
		sanitized.SummaryTimeoutMinutes = defaultSummaryTimeoutMinutes
	}
	return sanitized
}

// generationTimeout converts the configured minutes to a duration.
func (configuration CommandConfiguration) generationTimeout() time.Duration {
	return time.Duration(configuration.GenerationTimeoutMinutes) * time.Minute
}

func (configuration CommandConfiguration) summaryTimeout() time.Duration {
	return time.Duration(configuration.SummaryTimeoutMinutes) * time.Minute
}
