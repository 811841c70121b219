package review

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	reviewmodel "github.com/ChaseNoCapDev/metacommit/internal/review"
	"github.com/ChaseNoCapDev/metacommit/internal/review/orchestrate"
)

const (
	commitCommandUseConstant              = "commit"
	commitCommandShortDescriptionConstant = "Commit pending work across the workspace, nested repositories first"
	commitCommandLongDescriptionConstant  = "commit reviews the workspace, commits every repository with pending changes in hierarchical order so submodules land before their parent, and verifies each commit moved HEAD. With --push, all committed repositories are pushed once every commit succeeded."
	pushFlagNameConstant                  = "push"
	pushFlagDescriptionConstant           = "Push committed repositories after all commits succeed"
	repositoryFlagNameConstant            = "repository"
	repositoryFlagDescriptionConstant     = "Commit only the repository at this path"
	messageFlagNameConstant               = "message"
	messageFlagShorthandConstant          = "m"
	messageFlagDescriptionConstant        = "Commit message for --repository; generated when omitted"
	dryRunFlagNameConstant                = "dry-run"
	dryRunFlagDescriptionConstant         = "Show the planned commit batch without executing it"
	assumeYesFlagNameConstant             = "yes"
	assumeYesFlagShorthandConstant        = "y"
	assumeYesFlagDescriptionConstant      = "Automatically confirm the commit batch"
	confirmationPromptTemplateConstant    = "Commit %d repositories? [y/N]: "
	commitAbortedMessageConstant          = "commit aborted"
	repositoryMessageRequiredConstant     = "--message requires --repository"
	dryRunPlanHeadingConstant             = "Planned commits (nested repositories first):"
	dryRunPlanLineTemplateConstant        = "  %d. %s: %s\n"
	commitOutcomeTemplateConstant         = "%s: %d succeeded, %d failed\n"
	commitOutcomeLabelConstant            = "commit results"
)

// CommitCommandBuilder assembles the commit command.
type CommitCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the commit command.
func (builder *CommitCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commitCommandUseConstant,
		Short: commitCommandShortDescriptionConstant,
		Long:  commitCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringSlice(rootsFlagNameConstant, nil, rootsFlagDescriptionConstant)
	command.Flags().String(metaRepositoryFlagNameConstant, "", metaRepositoryFlagDescriptionConst)
	command.Flags().String(endpointFlagNameConstant, "", endpointFlagDescriptionConstant)
	command.Flags().Bool(pushFlagNameConstant, false, pushFlagDescriptionConstant)
	command.Flags().String(repositoryFlagNameConstant, "", repositoryFlagDescriptionConstant)
	command.Flags().StringP(messageFlagNameConstant, messageFlagShorthandConstant, "", messageFlagDescriptionConstant)
	command.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)
	command.Flags().BoolP(assumeYesFlagNameConstant, assumeYesFlagShorthandConstant, false, assumeYesFlagDescriptionConstant)

	return command, nil
}

func (builder *CommitCommandBuilder) run(command *cobra.Command, arguments []string) error {
	reviewBuilder := CommandBuilder{ConfigurationProvider: builder.ConfigurationProvider}
	configuration := reviewBuilder.resolveConfiguration(command)
	if command.Flags().Changed(pushFlagNameConstant) {
		configuration.Push, _ = command.Flags().GetBool(pushFlagNameConstant)
	}
	if command.Flags().Changed(dryRunFlagNameConstant) {
		configuration.DryRun, _ = command.Flags().GetBool(dryRunFlagNameConstant)
	}

	repositoryPath, _ := command.Flags().GetString(repositoryFlagNameConstant)
	repositoryPath = strings.TrimSpace(repositoryPath)
	commitMessage, _ := command.Flags().GetString(messageFlagNameConstant)
	if len(strings.TrimSpace(commitMessage)) > 0 && len(repositoryPath) == 0 {
		return errors.New(repositoryMessageRequiredConstant)
	}

	logger := resolveLogger(builder.LoggerProvider)
	toolchain, toolchainError := buildToolchain(configuration, logger)
	if toolchainError != nil {
		return fmt.Errorf(toolchainErrorTemplateConstant, toolchainError)
	}

	if len(repositoryPath) > 0 {
		return builder.commitSingleRepository(command, toolchain, repositoryPath, commitMessage, configuration.Push)
	}

	report, reviewError := toolchain.orchestrator.PerformComprehensiveReview(command.Context())
	if reviewError != nil {
		return reviewError
	}

	if configuration.DryRun {
		return builder.printCommitPlan(command, toolchain, report.Repositories)
	}

	committableCount := 0
	for _, changeData := range report.Repositories {
		if changeData.HasChanges() || changeData.HasHiddenSubmoduleChanges() {
			committableCount++
		}
	}
	assumeYes, _ := command.Flags().GetBool(assumeYesFlagNameConstant)
	if !assumeYes && committableCount > 0 {
		confirmed, confirmationError := confirmCommitBatch(command, committableCount)
		if confirmationError != nil {
			return confirmationError
		}
		if !confirmed {
			fmt.Fprintln(command.OutOrStdout(), commitAbortedMessageConstant)
			return nil
		}
	}

	results := toolchain.orchestrator.CommitAll(command.Context(), report.Repositories, configuration.Push)
	builder.printOutcome(command, results)
	return nil
}

func (builder *CommitCommandBuilder) commitSingleRepository(command *cobra.Command, toolchain *reviewToolchain, repositoryPath string, commitMessage string, pushAfterCommit bool) error {
	results, commitError := toolchain.orchestrator.CommitRepository(command.Context(), repositoryPath, commitMessage, pushAfterCommit)
	if commitError != nil {
		return commitError
	}
	builder.printOutcome(command, results)
	return nil
}

func (builder *CommitCommandBuilder) printCommitPlan(command *cobra.Command, toolchain *reviewToolchain, repositories []reviewmodel.RepositoryChangeData) error {
	plannedOperations := toolchain.coordinator.PlanCommitOperations(command.Context(), repositories)
	fmt.Fprintln(command.OutOrStdout(), dryRunPlanHeadingConstant)
	for operationIndex, plannedOperation := range plannedOperations {
		fmt.Fprintf(command.OutOrStdout(), dryRunPlanLineTemplateConstant,
			operationIndex+1, plannedOperation.RepositoryName, firstMessageLine(plannedOperation.CommitMessage))
	}
	return nil
}

func (builder *CommitCommandBuilder) printOutcome(command *cobra.Command, results []orchestrate.OperationResult) {
	succeededCount := 0
	failedCount := 0
	for _, operationResult := range results {
		if operationResult.Succeeded {
			succeededCount++
		} else {
			failedCount++
		}
	}
	fmt.Fprintf(command.OutOrStdout(), commitOutcomeTemplateConstant, commitOutcomeLabelConstant, succeededCount, failedCount)
}

// confirmCommitBatch asks for interactive confirmation on the command input.
func confirmCommitBatch(command *cobra.Command, committableCount int) (bool, error) {
	fmt.Fprintf(command.OutOrStdout(), confirmationPromptTemplateConstant, committableCount)
	inputReader := bufio.NewReader(command.InOrStdin())
	responseLine, readError := inputReader.ReadString('\n')
	if readError != nil && len(responseLine) == 0 {
		return false, nil
	}
	response := strings.ToLower(strings.TrimSpace(responseLine))
	return response == "y" || response == "yes", nil
}

func firstMessageLine(commitMessage string) string {
	if newlineIndex := strings.IndexByte(commitMessage, '\n'); newlineIndex >= 0 {
		return commitMessage[:newlineIndex]
	}
	return commitMessage
}
