package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
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
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitStatusSubcommandNameConstant       = "status"
	gitAddSubcommandNameConstant          = "add"
	gitCommitSubcommandNameConstant       = "commit"
	gitPushSubcommandNameConstant         = "push"
	gitInitSubcommandNameConstant         = "init"
	gitRemoteSubcommandNameConstant       = "remote"
	gitRemoteGetURLSubcommandNameConstant = "get-url"
	gitRemoteSetURLSubcommandNameConstant = "set-url"
	gitMessageFlagConstant                = "-m"
)

const (
	gitStatusStartTemplateConstant          = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant        = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant        = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplate       = "Unable to review working tree status in %s: %s"
	gitAddStartTemplateConstant             = "Staging %s in %s"
	gitAddSuccessTemplateConstant           = "Staged %s in %s"
	gitAddFailureTemplateConstant           = "Failed to stage %s in %s (exit code %d%s)"
	gitAddExecutionFailureTemplateConstant  = "Unable to stage %s in %s: %s"
	gitCommitStartTemplateConstant          = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant        = "Created commit in %s with message %q"
	gitCommitFailureTemplateConstant        = "Failed to create commit in %s with message %q (exit code %d%s)"
	gitCommitExecutionFailureTemplate       = "Unable to create commit in %s with message %q: %s"
	gitPushStartTemplateConstant            = "Pushing %s to %s from %s"
	gitPushSuccessTemplateConstant          = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant          = "Failed to push %s to %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplate         = "Unable to push %s to %s from %s: %s"
	gitInitStartTemplateConstant            = "Initializing repository in %s"
	gitInitSuccessTemplateConstant          = "Initialized repository in %s"
	gitInitFailureTemplateConstant          = "Failed to initialize repository in %s (exit code %d%s)"
	gitInitExecutionFailureTemplate         = "Unable to initialize repository in %s: %s"
	gitRemoteLookupStartTemplateConstant    = "Checking %s remote for %s"
	gitRemoteLookupSuccessTemplateConstant  = "%s remote for %s points to %s"
	gitRemoteLookupFailureTemplateConstant  = "Failed to read %s remote for %s (exit code %d%s)"
	gitRemoteLookupExecutionFailureTemplate = "Unable to read %s remote for %s: %s"
	gitRemoteUpdateStartTemplateConstant    = "Updating %s remote for %s to %s"
	gitRemoteUpdateSuccessTemplateConstant  = "%s remote for %s now points to %s"
	gitRemoteUpdateFailureTemplateConstant  = "Failed to update %s remote for %s to %s (exit code %d%s)"
	gitRemoteUpdateExecutionFailureTemplate = "Unable to update %s remote for %s to %s: %s"
)

const (
	githubRepoSubcommandNameConstant       = "repo"
	githubRepoCreateSubcommandNameConstant = "create"
	githubRepoRenameSubcommandNameConstant = "rename"
	githubRepoDeleteSubcommandNameConstant = "delete"
	githubRepoEditSubcommandNameConstant   = "edit"
	githubRepoFlagConstant                 = "--repo"
	githubDescriptionFlagConstant          = "--description"
	githubHomepageFlagConstant             = "--homepage"
)

const (
	githubRepoCreateStartTemplateConstant    = "Creating GitHub repository %s"
	githubRepoCreateSuccessTemplateConstant  = "Created GitHub repository %s"
	githubRepoCreateFailureTemplateConstant  = "Failed to create GitHub repository %s (exit code %d%s)"
	githubRepoCreateExecutionFailureTemplate = "Unable to create GitHub repository %s: %s"
	githubRepoRenameStartTemplateConstant    = "Renaming GitHub repository %s to %s"
	githubRepoRenameSuccessTemplateConstant  = "Renamed GitHub repository %s to %s"
	githubRepoRenameFailureTemplateConstant  = "Failed to rename GitHub repository %s to %s (exit code %d%s)"
	githubRepoRenameExecutionFailureTemplate = "Unable to rename GitHub repository %s to %s: %s"
	githubRepoDeleteStartTemplateConstant    = "Deleting GitHub repository %s"
	githubRepoDeleteSuccessTemplateConstant  = "Deleted GitHub repository %s"
	githubRepoDeleteFailureTemplateConstant  = "Failed to delete GitHub repository %s (exit code %d%s)"
	githubRepoDeleteExecutionFailureTemplate = "Unable to delete GitHub repository %s: %s"
	githubRepoEditStartTemplateConstant      = "Updating GitHub repository settings for %s"
	githubRepoEditSuccessTemplateConstant    = "Updated GitHub repository settings for %s"
	githubRepoEditFailureTemplateConstant    = "Failed to update GitHub repository settings for %s (exit code %d%s)"
	githubRepoEditExecutionFailureTemplate   = "Unable to update GitHub repository settings for %s: %s"
)

const (
	osascriptStartMessageConstant             = "Running task automation script"
	osascriptSuccessMessageConstant           = "Completed task automation script"
	osascriptFailureTemplateConstant          = "Task automation script failed with exit code %d%s"
	osascriptExecutionFailureTemplateConstant = "Task automation script failed: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	case CommandOSAScript:
		return formatter.describeOSAScriptMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitStatusSubcommandNameConstant:
		return formatter.describeGitStatusMessage(command, result, failure, stage)
	case gitAddSubcommandNameConstant:
		return formatter.describeGitAddMessage(command, result, failure, stage)
	case gitCommitSubcommandNameConstant:
		return formatter.describeGitCommitMessage(command, result, failure, stage)
	case gitPushSubcommandNameConstant:
		return formatter.describeGitPushMessage(command, result, failure, stage)
	case gitInitSubcommandNameConstant:
		return formatter.describeGitInitMessage(command, result, failure, stage)
	case gitRemoteSubcommandNameConstant:
		return formatter.describeGitRemoteMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitStatusMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitStatusStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitStatusSuccessTemplateConstant, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitStatusFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitStatusExecutionFailureTemplate, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitAddMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	targetPath := formatter.ensureValue(formatter.extractFirstNonFlagArgument(command.Details.Arguments[1:]))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitAddStartTemplateConstant, targetPath, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitAddSuccessTemplateConstant, targetPath, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitAddFailureTemplateConstant, targetPath, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitAddExecutionFailureTemplateConstant, targetPath, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCommitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	commitMessage := formatter.extractCommitMessage(command.Details.Arguments)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCommitStartTemplateConstant, workingDirectory, commitMessage)
	case messageStageSuccess:
		return fmt.Sprintf(gitCommitSuccessTemplateConstant, workingDirectory, commitMessage)
	case messageStageFailure:
		return fmt.Sprintf(gitCommitFailureTemplateConstant, workingDirectory, commitMessage, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCommitExecutionFailureTemplate, workingDirectory, commitMessage, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitPushMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	arguments := command.Details.Arguments
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(arguments, 1))
	branchReference := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitPushStartTemplateConstant, branchReference, remoteName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitPushSuccessTemplateConstant, branchReference, remoteName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitPushFailureTemplateConstant, branchReference, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitPushExecutionFailureTemplate, branchReference, remoteName, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitInitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitInitStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitInitSuccessTemplateConstant, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitInitFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitInitExecutionFailureTemplate, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRemoteMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(arguments, 2))

	if len(arguments) > 1 {
		subcommand := strings.TrimSpace(arguments[1])
		switch subcommand {
		case gitRemoteGetURLSubcommandNameConstant:
			remoteURL := formatter.ensureValue(strings.TrimSpace(result.StandardOutput))
			switch stage {
			case messageStageStart:
				return fmt.Sprintf(gitRemoteLookupStartTemplateConstant, remoteName, workingDirectory)
			case messageStageSuccess:
				return fmt.Sprintf(gitRemoteLookupSuccessTemplateConstant, remoteName, workingDirectory, remoteURL)
			case messageStageFailure:
				return fmt.Sprintf(gitRemoteLookupFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
			case messageStageExecutionFailure:
				return fmt.Sprintf(gitRemoteLookupExecutionFailureTemplate, remoteName, workingDirectory, formatter.describeFailure(failure))
			}
		case gitRemoteSetURLSubcommandNameConstant:
			targetURL := formatter.ensureValue(formatter.argumentAtIndex(arguments, 3))
			switch stage {
			case messageStageStart:
				return fmt.Sprintf(gitRemoteUpdateStartTemplateConstant, remoteName, workingDirectory, targetURL)
			case messageStageSuccess:
				return fmt.Sprintf(gitRemoteUpdateSuccessTemplateConstant, remoteName, workingDirectory, targetURL)
			case messageStageFailure:
				return fmt.Sprintf(gitRemoteUpdateFailureTemplateConstant, remoteName, workingDirectory, targetURL, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
			case messageStageExecutionFailure:
				return fmt.Sprintf(gitRemoteUpdateExecutionFailureTemplate, remoteName, workingDirectory, targetURL, formatter.describeFailure(failure))
			}
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < 2 || strings.TrimSpace(arguments[0]) != githubRepoSubcommandNameConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(arguments[1])
	repository := formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments[2:]))

	switch subcommand {
	case githubRepoCreateSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubRepoCreateStartTemplateConstant, repository)
		case messageStageSuccess:
			return fmt.Sprintf(githubRepoCreateSuccessTemplateConstant, repository)
		case messageStageFailure:
			return fmt.Sprintf(githubRepoCreateFailureTemplateConstant, repository, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(githubRepoCreateExecutionFailureTemplate, repository, formatter.describeFailure(failure))
		}
	case githubRepoRenameSubcommandNameConstant:
		currentRepository := formatter.ensureValue(formatter.findFlagValue(arguments, githubRepoFlagConstant))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubRepoRenameStartTemplateConstant, currentRepository, repository)
		case messageStageSuccess:
			return fmt.Sprintf(githubRepoRenameSuccessTemplateConstant, currentRepository, repository)
		case messageStageFailure:
			return fmt.Sprintf(githubRepoRenameFailureTemplateConstant, currentRepository, repository, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(githubRepoRenameExecutionFailureTemplate, currentRepository, repository, formatter.describeFailure(failure))
		}
	case githubRepoDeleteSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubRepoDeleteStartTemplateConstant, repository)
		case messageStageSuccess:
			return fmt.Sprintf(githubRepoDeleteSuccessTemplateConstant, repository)
		case messageStageFailure:
			return fmt.Sprintf(githubRepoDeleteFailureTemplateConstant, repository, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(githubRepoDeleteExecutionFailureTemplate, repository, formatter.describeFailure(failure))
		}
	case githubRepoEditSubcommandNameConstant:
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(githubRepoEditStartTemplateConstant, repository)
		case messageStageSuccess:
			return fmt.Sprintf(githubRepoEditSuccessTemplateConstant, repository)
		case messageStageFailure:
			return fmt.Sprintf(githubRepoEditFailureTemplateConstant, repository, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(githubRepoEditExecutionFailureTemplate, repository, formatter.describeFailure(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeOSAScriptMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch stage {
	case messageStageStart:
		return osascriptStartMessageConstant
	case messageStageSuccess:
		return osascriptSuccessMessageConstant
	case messageStageFailure:
		return fmt.Sprintf(osascriptFailureTemplateConstant, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(osascriptExecutionFailureTemplateConstant, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
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

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return strings.TrimSpace(arguments[index])
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string) string {
	skipNextArgument := false
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if skipNextArgument {
			skipNextArgument = false
			continue
		}
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, "-") {
			skipNextArgument = flagExpectsValue(trimmed)
			continue
		}
		return trimmed
	}
	return emptyStringConstant
}

func flagExpectsValue(flag string) bool {
	switch flag {
	case githubRepoFlagConstant, githubDescriptionFlagConstant, githubHomepageFlagConstant:
		return true
	default:
		return false
	}
}

func (formatter CommandMessageFormatter) extractCommitMessage(arguments []string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == gitMessageFlagConstant && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return fallbackUnknownValueLabelConstant
}

func (formatter CommandMessageFormatter) findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}
