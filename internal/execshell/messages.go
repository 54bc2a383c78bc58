package execshell

import (
	"fmt"
	"strings"
)

const (
	commandLabelJoinSeparatorConstant       = " "
	workingDirectoryLabelTemplateConstant   = " (in %s)"
	failureMessageTemplateConstant          = "%s failed with exit code %d%s"
	executionFailureMessageTemplateConstant = "%s failed: %s"
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
)

// buildCommandLabel renders a command and its arguments as a single display string.
func buildCommandLabel(command ShellCommand) string {
	labelParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		labelParts = append(labelParts, strings.Join(command.Details.Arguments, commandLabelJoinSeparatorConstant))
	}
	commandLabel := strings.Join(labelParts, commandLabelJoinSeparatorConstant)

	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) > 0 {
		commandLabel += fmt.Sprintf(workingDirectoryLabelTemplateConstant, trimmedWorkingDirectory)
	}

	return commandLabel
}

// buildFailureMessage renders a message for a command exiting with a non-zero code.
func buildFailureMessage(command ShellCommand, result ExecutionResult) string {
	standardErrorSuffix := ""
	trimmedStandardError := strings.TrimSpace(result.StandardError)
	if len(trimmedStandardError) > 0 {
		standardErrorSuffix = fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
	}
	return fmt.Sprintf(failureMessageTemplateConstant, buildCommandLabel(command), result.ExitCode, standardErrorSuffix)
}

// buildExecutionFailureMessage renders a message for a command that never produced a result.
func buildExecutionFailureMessage(command ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(executionFailureMessageTemplateConstant, buildCommandLabel(command), failureMessage)
}
