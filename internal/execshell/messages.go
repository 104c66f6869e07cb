package execshell

import (
	"fmt"
	"strings"
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
)

const (
	githubIssueSubcommandNameConstant      = "issue"
	githubIssueCloseSubcommandNameConstant = "close"
	githubLabelSubcommandNameConstant      = "label"
	githubLabelCreateSubcommandConstant    = "create"
	githubLabelListSubcommandConstant      = "list"
	githubProjectSubcommandNameConstant    = "project"
	githubProjectItemAddSubcommandConstant = "item-add"
	githubAPISubcommandNameConstant        = "api"
	githubRepoSubcommandNameConstant       = "repo"
	githubRepoViewSubcommandNameConstant   = "view"
)

const (
	githubIssueCloseLabelTemplateConstant     = "gh issue close %s"
	githubLabelCreateLabelTemplateConstant    = "gh label create %s"
	githubLabelListLabelConstant              = "gh label list"
	githubProjectItemAddLabelTemplateConstant = "gh project item-add %s"
	githubAPILabelTemplateConstant            = "gh api %s"
	githubRepoViewLabelConstant               = "gh repo view"
)

// CommandMessageFormatter builds human-readable messages describing shell command lifecycles.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return fmt.Sprintf(genericStartTemplateConstant, formatter.FormatCommandLabel(command))
}

// BuildSuccessMessage formats the message describing a command that completed with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return fmt.Sprintf(genericSuccessTemplateConstant, formatter.FormatCommandLabel(command))
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	standardErrorSuffix := formatter.formatStandardErrorSuffix(result.StandardError)
	return fmt.Sprintf(genericFailureTemplateConstant, formatter.FormatCommandLabel(command), result.ExitCode, standardErrorSuffix)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(genericExecutionFailureTemplateConstant, formatter.FormatCommandLabel(command), failureMessage)
}

// FormatCommandLabel renders a compact label for the command, recognizing common GitHub CLI invocations.
func (formatter CommandMessageFormatter) FormatCommandLabel(command ShellCommand) string {
	recognizedLabel := formatter.recognizeGitHubLabel(command)
	if len(recognizedLabel) > 0 {
		return fmt.Sprintf(commandLabelTemplateConstant, recognizedLabel, formatter.formatWorkingDirectorySuffix(command))
	}

	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) recognizeGitHubLabel(command ShellCommand) string {
	if command.Name != CommandGitHub || len(command.Details.Arguments) == 0 {
		return emptyStringConstant
	}

	arguments := command.Details.Arguments
	switch arguments[0] {
	case githubIssueSubcommandNameConstant:
		if len(arguments) > 2 && arguments[1] == githubIssueCloseSubcommandNameConstant {
			return fmt.Sprintf(githubIssueCloseLabelTemplateConstant, arguments[2])
		}
	case githubLabelSubcommandNameConstant:
		if len(arguments) > 2 && arguments[1] == githubLabelCreateSubcommandConstant {
			return fmt.Sprintf(githubLabelCreateLabelTemplateConstant, arguments[2])
		}
		if len(arguments) > 1 && arguments[1] == githubLabelListSubcommandConstant {
			return githubLabelListLabelConstant
		}
	case githubProjectSubcommandNameConstant:
		if len(arguments) > 2 && arguments[1] == githubProjectItemAddSubcommandConstant {
			return fmt.Sprintf(githubProjectItemAddLabelTemplateConstant, arguments[2])
		}
	case githubAPISubcommandNameConstant:
		if len(arguments) > 1 {
			return fmt.Sprintf(githubAPILabelTemplateConstant, arguments[1])
		}
	case githubRepoSubcommandNameConstant:
		if len(arguments) > 1 && arguments[1] == githubRepoViewSubcommandNameConstant {
			return githubRepoViewLabelConstant
		}
	}

	return emptyStringConstant
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}
