package execshell

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

const (
	mountCommandNameConstant             = "mount"
	syncCommandNameConstant              = "sync"
	aptGetCommandNameConstant            = "apt-get"
	loggerMissingMessageConstant         = "shell executor logger not configured"
	commandRunnerMissingMessageConstant  = "shell command runner not configured"
	commandStartedLogMessageConstant     = "command started"
	commandCompletedLogMessageConstant   = "command completed"
	commandFailedLogMessageConstant      = "command failed"
	logFieldCommandConstant              = "command"
	logFieldExitCodeConstant             = "exit_code"
	logFieldStandardErrorConstant        = "standard_error"
	logFieldExecutionFailureConstant     = "failure"
)

// CommandName identifies an external executable supported by the executor.
type CommandName string

// Supported executables.
const (
	CommandMount  CommandName = CommandName(mountCommandNameConstant)
	CommandSync   CommandName = CommandName(syncCommandNameConstant)
	CommandAptGet CommandName = CommandName(aptGetCommandNameConstant)
)

// CommandDetails describes the invocation parameters for a shell command.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand pairs an executable name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outputs of a completed command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes a shell command and reports its result.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ErrLoggerNotConfigured indicates the executor was built without a logger.
var ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was built without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerMissingMessageConstant)

// CommandFailedError reports a command that ran to completion with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command including captured standard error output.
func (failedError CommandFailedError) Error() string {
	return buildFailureMessage(failedError.Command, failedError.Result)
}

// CommandExecutionError reports a command that could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (executionError CommandExecutionError) Error() string {
	return buildExecutionFailureMessage(executionError.Command, executionError.Cause)
}

// Unwrap exposes the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// ShellExecutor coordinates command execution with logging and event observation.
type ShellExecutor struct {
	logger   *zap.Logger
	runner   CommandRunner
	observer CommandEventObserver
}

// NewShellExecutor constructs a ShellExecutor from the supplied collaborators.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	return &ShellExecutor{logger: logger, runner: runner, observer: noopCommandEventObserver{}}, nil
}

// UseEventObserver registers an observer receiving command lifecycle events.
func (executor *ShellExecutor) UseEventObserver(observer CommandEventObserver) {
	if executor == nil || observer == nil {
		return
	}
	executor.observer = observer
}

// ExecuteMount runs the mount executable with the provided details.
func (executor *ShellExecutor) ExecuteMount(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.execute(executionContext, CommandMount, details)
}

// ExecuteSync runs the sync executable with the provided details.
func (executor *ShellExecutor) ExecuteSync(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.execute(executionContext, CommandSync, details)
}

// ExecuteAptGet runs the apt-get executable with the provided details.
func (executor *ShellExecutor) ExecuteAptGet(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.execute(executionContext, CommandAptGet, details)
}

func (executor *ShellExecutor) execute(executionContext context.Context, commandName CommandName, details CommandDetails) (ExecutionResult, error) {
	shellCommand := ShellCommand{Name: commandName, Details: details}
	commandLabel := buildCommandLabel(shellCommand)

	executor.observer.CommandStarted(shellCommand)
	executor.logger.Debug(commandStartedLogMessageConstant, zap.String(logFieldCommandConstant, commandLabel))

	executionResult, runError := executor.runner.Run(executionContext, shellCommand)
	if runError != nil {
		executor.observer.CommandExecutionFailed(shellCommand, runError)
		executor.logger.Error(
			commandFailedLogMessageConstant,
			zap.String(logFieldCommandConstant, commandLabel),
			zap.String(logFieldExecutionFailureConstant, runError.Error()),
		)
		return ExecutionResult{}, CommandExecutionError{Command: shellCommand, Cause: runError}
	}

	executor.observer.CommandCompleted(shellCommand, executionResult)

	if executionResult.ExitCode != 0 {
		executor.logger.Warn(
			commandFailedLogMessageConstant,
			zap.String(logFieldCommandConstant, commandLabel),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
			zap.String(logFieldStandardErrorConstant, executionResult.StandardError),
		)
		return ExecutionResult{}, CommandFailedError{Command: shellCommand, Result: executionResult}
	}

	executor.logger.Debug(commandCompletedLogMessageConstant, zap.String(logFieldCommandConstant, commandLabel))
	return executionResult, nil
}
