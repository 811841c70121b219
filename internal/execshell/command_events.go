package execshell

// CommandEventObserver receives lifecycle notifications for the git commands
// issued during scanning, committing, and pushing.
type CommandEventObserver interface {
	// CommandStarted fires before the git process is spawned.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires once the git process exits and supplies its result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports failures that prevented an execution result.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver discards all command events.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
