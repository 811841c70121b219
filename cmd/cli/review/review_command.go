package review

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	reviewCommandUseConstant              = "review"
	reviewCommandShortDescriptionConstant = "Review uncommitted work across every workspace repository"
	reviewCommandLongDescriptionConstant  = "review scans the configured workspace roots for nested git repositories, gathers their uncommitted changes, generates a commit message per changed repository, and prints a consolidated report with an executive summary."
	rootsFlagNameConstant                 = "roots"
	rootsFlagDescriptionConstant          = "Workspace root directories to scan for git repositories"
	metaRepositoryFlagNameConstant        = "meta"
	metaRepositoryFlagDescriptionConst    = "Path of the parent repository whose submodule pointer bumps are reported separately"
	endpointFlagNameConstant              = "endpoint"
	endpointFlagDescriptionConstant       = "Generation gateway base URL; empty uses local message composition"
	outputFlagNameConstant                = "output"
	outputFlagDescriptionConstant         = "Report format: table or yaml"
	outputFormatTableConstant             = "table"
	outputFormatYAMLConstant              = "yaml"
	unsupportedOutputTemplateConstant     = "unsupported output format: %s"
	toolchainErrorTemplateConstant        = "unable to assemble review toolchain: %w"
)

// CommandBuilder assembles the review command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the review command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   reviewCommandUseConstant,
		Short: reviewCommandShortDescriptionConstant,
		Long:  reviewCommandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringSlice(rootsFlagNameConstant, nil, rootsFlagDescriptionConstant)
	command.Flags().String(metaRepositoryFlagNameConstant, "", metaRepositoryFlagDescriptionConst)
	command.Flags().String(endpointFlagNameConstant, "", endpointFlagDescriptionConstant)
	command.Flags().String(outputFlagNameConstant, outputFormatTableConstant, outputFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration(command)
	logger := resolveLogger(builder.LoggerProvider)

	toolchain, toolchainError := buildToolchain(configuration, logger)
	if toolchainError != nil {
		return fmt.Errorf(toolchainErrorTemplateConstant, toolchainError)
	}

	report, reviewError := toolchain.orchestrator.PerformComprehensiveReview(command.Context())
	if reviewError != nil {
		return reviewError
	}

	outputFormat, _ := command.Flags().GetString(outputFlagNameConstant)
	switch outputFormat {
	case outputFormatYAMLConstant:
		renderedReport, renderError := toolchain.renderer.RenderYAML(report)
		if renderError != nil {
			return renderError
		}
		fmt.Fprintln(command.OutOrStdout(), renderedReport)
	case outputFormatTableConstant, "":
		fmt.Fprintln(command.OutOrStdout(), toolchain.renderer.RenderReport(report))
	default:
		return fmt.Errorf(unsupportedOutputTemplateConstant, outputFormat)
	}
	return nil
}

// resolveConfiguration layers command flags over the persisted configuration.
func (builder *CommandBuilder) resolveConfiguration(command *cobra.Command) CommandConfiguration {
	configuration := CommandConfiguration{}
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	if command != nil {
		if command.Flags().Changed(rootsFlagNameConstant) {
			if flagRoots, flagError := command.Flags().GetStringSlice(rootsFlagNameConstant); flagError == nil {
				configuration.Roots = flagRoots
			}
		}
		if command.Flags().Changed(metaRepositoryFlagNameConstant) {
			if metaValue, flagError := command.Flags().GetString(metaRepositoryFlagNameConstant); flagError == nil {
				configuration.MetaRepository = metaValue
			}
		}
		if command.Flags().Changed(endpointFlagNameConstant) {
			if endpointValue, flagError := command.Flags().GetString(endpointFlagNameConstant); flagError == nil {
				configuration.GenerationEndpoint = endpointValue
			}
		}
	}

	return configuration.sanitize()
}
