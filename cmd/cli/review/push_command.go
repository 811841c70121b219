package review

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	pushCommandUseConstant              = "push"
	pushCommandShortDescriptionConstant = "Push every repository that diverged from its upstream"
	pushCommandLongDescriptionConstant  = "push scans the workspace and pushes each repository that is ahead of or behind its upstream branch, nested repositories first so submodule pointers resolve on the remote."
	pushOutcomeLabelConstant            = "push results"
)

// PushCommandBuilder assembles the push command.
type PushCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the push command.
func (builder *PushCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   pushCommandUseConstant,
		Short: pushCommandShortDescriptionConstant,
		Long:  pushCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringSlice(rootsFlagNameConstant, nil, rootsFlagDescriptionConstant)
	command.Flags().String(metaRepositoryFlagNameConstant, "", metaRepositoryFlagDescriptionConst)

	return command, nil
}

func (builder *PushCommandBuilder) run(command *cobra.Command, arguments []string) error {
	reviewBuilder := CommandBuilder{ConfigurationProvider: builder.ConfigurationProvider}
	configuration := reviewBuilder.resolveConfiguration(command)

	logger := resolveLogger(builder.LoggerProvider)
	toolchain, toolchainError := buildToolchain(configuration, logger)
	if toolchainError != nil {
		return fmt.Errorf(toolchainErrorTemplateConstant, toolchainError)
	}

	report, reviewError := toolchain.orchestrator.PerformComprehensiveReview(command.Context())
	if reviewError != nil {
		return reviewError
	}

	results := toolchain.orchestrator.PushAll(command.Context(), report.Repositories)

	succeededCount := 0
	failedCount := 0
	for _, operationResult := range results {
		if operationResult.Succeeded {
			succeededCount++
		} else {
			failedCount++
		}
	}
	fmt.Fprintf(command.OutOrStdout(), commitOutcomeTemplateConstant, pushOutcomeLabelConstant, succeededCount, failedCount)
	return nil
}
