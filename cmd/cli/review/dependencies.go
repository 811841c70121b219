package review

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ChaseNoCapDev/metacommit/internal/execshell"
	"github.com/ChaseNoCapDev/metacommit/internal/gitrepo"
	"github.com/ChaseNoCapDev/metacommit/internal/review/generate"
	"github.com/ChaseNoCapDev/metacommit/internal/review/orchestrate"
	"github.com/ChaseNoCapDev/metacommit/internal/review/render"
	"github.com/ChaseNoCapDev/metacommit/internal/review/scan"
	"github.com/ChaseNoCapDev/metacommit/internal/utils"
)

const (
	shellExecutorErrorTemplateConstant     = "unable to construct shell executor: %w"
	repositoryManagerErrorTemplateConstant = "unable to construct repository manager: %w"
	scannerErrorTemplateConstant           = "unable to construct repository scanner: %w"
	generatorErrorTemplateConstant         = "unable to construct commit message generator: %w"
	summaryErrorTemplateConstant           = "unable to construct summary generator: %w"
	coordinatorErrorTemplateConstant       = "unable to construct commit coordinator: %w"
	operationExecutorErrorTemplateConst    = "unable to construct operation executor: %w"
	orchestratorErrorTemplateConstant      = "unable to construct review orchestrator: %w"
	generationClientErrorTemplateConstant  = "unable to construct generation client: %w"
)

// LoggerProvider supplies the logger configured by the application root.
type LoggerProvider func() *zap.Logger

// reviewToolchain bundles the wired collaborators shared by the commands.
type reviewToolchain struct {
	orchestrator *orchestrate.ReviewOrchestrator
	coordinator  *orchestrate.HierarchicalCommitCoordinator
	renderer     *render.ReportRenderer
	progressSink *render.ConsoleProgressSink
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	if logger := provider(); logger != nil {
		return logger
	}
	return zap.NewNop()
}

// buildToolchain wires the scanner, generators, and orchestration stack for
// one command invocation using the sanitized configuration.
func buildToolchain(configuration CommandConfiguration, logger *zap.Logger) (*reviewToolchain, error) {
	shellExecutor, shellError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if shellError != nil {
		return nil, fmt.Errorf(shellExecutorErrorTemplateConstant, shellError)
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(shellExecutor)
	if managerError != nil {
		return nil, fmt.Errorf(repositoryManagerErrorTemplateConstant, managerError)
	}

	scanner, scannerError := scan.NewScanner(
		scan.NewFilesystemRepositoryDiscoverer(),
		repositoryManager,
		logger,
		configuration.Roots,
		configuration.MetaRepository,
	)
	if scannerError != nil {
		return nil, fmt.Errorf(scannerErrorTemplateConstant, scannerError)
	}

	generationService, serviceError := resolveGenerationService(configuration)
	if serviceError != nil {
		return nil, serviceError
	}

	generator, generatorError := generate.NewCommitMessageGeneratorWithLimits(
		generationService,
		generate.NewFallbackMessageComposer(),
		logger,
		configuration.TokenBudget,
		configuration.generationTimeout(),
	)
	if generatorError != nil {
		return nil, fmt.Errorf(generatorErrorTemplateConstant, generatorError)
	}

	summaryGenerator, summaryError := generate.NewExecutiveSummaryGeneratorWithTimeout(
		generationService,
		logger,
		nil,
		configuration.summaryTimeout(),
	)
	if summaryError != nil {
		return nil, fmt.Errorf(summaryErrorTemplateConstant, summaryError)
	}

	coordinator, coordinatorError := orchestrate.NewHierarchicalCommitCoordinator(repositoryManager, logger)
	if coordinatorError != nil {
		return nil, fmt.Errorf(coordinatorErrorTemplateConstant, coordinatorError)
	}

	operationExecutor, executorError := orchestrate.NewSequentialOperationExecutor(repositoryManager, logger)
	if executorError != nil {
		return nil, fmt.Errorf(operationExecutorErrorTemplateConst, executorError)
	}

	progressSink := render.NewConsoleProgressSink(utils.NewFlushingWriter(os.Stdout))
	orchestrator, orchestratorError := orchestrate.NewReviewOrchestrator(
		scanner,
		generator,
		summaryGenerator,
		coordinator,
		operationExecutor,
		progressSink,
		logger,
	)
	if orchestratorError != nil {
		return nil, fmt.Errorf(orchestratorErrorTemplateConstant, orchestratorError)
	}

	return &reviewToolchain{
		orchestrator: orchestrator,
		coordinator:  coordinator,
		renderer:     render.NewReportRenderer(),
		progressSink: progressSink,
	}, nil
}

// resolveGenerationService builds the remote client when an endpoint is
// configured; otherwise the always-failing stub keeps the generator on its
// deterministic fallback path.
func resolveGenerationService(configuration CommandConfiguration) (generate.GenerationService, error) {
	if len(configuration.GenerationEndpoint) == 0 {
		return unavailableGenerationService{}, nil
	}

	apiToken := os.Getenv(configuration.APITokenEnvironmentName)
	client, clientError := generate.NewHTTPGenerationClient(configuration.GenerationEndpoint, apiToken, nil)
	if clientError != nil {
		return nil, fmt.Errorf(generationClientErrorTemplateConstant, clientError)
	}
	return client, nil
}

// errNoGenerationEndpoint routes generation onto the local fallback composer.
var errNoGenerationEndpoint = errors.New("no generation endpoint configured")

type unavailableGenerationService struct{}

func (unavailableGenerationService) GenerateCommitMessages(executionContext context.Context, request generate.BatchGenerationRequest) (generate.BatchGenerationResponse, error) {
	return generate.BatchGenerationResponse{}, errNoGenerationEndpoint
}

func (unavailableGenerationService) GenerateExecutiveSummary(executionContext context.Context, request generate.SummaryRequest) (generate.SummaryResponse, error) {
	return generate.SummaryResponse{}, errNoGenerationEndpoint
}
