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
	actionFailureTemplateConstant           = "Failed to %s (exit code %d%s)"
	actionExecutionFailureTemplateConstant  = "Unable to %s: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	referencesJoinSeparatorConstant         = ", "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitRevParseSubcommandNameConstant    = "rev-parse"
	gitFetchSubcommandNameConstant       = "fetch"
	gitFetchAllFlagConstant              = "--all"
	gitRemoteSubcommandNameConstant      = "remote"
	gitForEachRefSubcommandNameConstant  = "for-each-ref"
	gitShowRefSubcommandNameConstant     = "show-ref"
	gitCheckoutSubcommandNameConstant    = "checkout"
	gitCheckoutCreateFlagConstant        = "-b"
	gitCheckoutTrackFlagConstant         = "--track"
	gitPullSubcommandNameConstant        = "pull"
	gitLogSubcommandNameConstant         = "log"
	gitFetchAllRemotesLabelConstant      = "all remotes"
	gitUpstreamRemoteLabelConstant       = "upstream"
	gitCurrentBranchLabelConstant        = "current branch"
	gitReferenceDefaultLabelConstant     = "reference"
	gitRevParseStartTemplateConstant     = "Analyzing repository at %s"
	gitRevParseSuccessTemplateConstant   = "%s is a Git repository"
	gitRevParseActionTemplateConstant    = "confirm %s is a Git repository"
	gitFetchStartTemplateConstant        = "Fetching %s from %s in %s"
	gitFetchAllStartTemplateConstant     = "Fetching from %s in %s"
	gitFetchSuccessTemplateConstant      = "Fetched %s from %s in %s"
	gitFetchAllSuccessTemplateConstant   = "Fetched from %s in %s"
	gitFetchActionTemplateConstant       = "fetch %s from %s in %s"
	gitFetchAllActionTemplateConstant    = "fetch from %s in %s"
	gitRemoteStartTemplateConstant       = "Listing remotes in %s"
	gitRemoteSuccessTemplateConstant     = "Listed remotes in %s"
	gitRemoteActionTemplateConstant      = "list remotes in %s"
	gitForEachRefStartTemplateConstant   = "Listing references in %s"
	gitForEachRefSuccessTemplateConstant = "Listed references in %s"
	gitForEachRefActionTemplateConstant  = "list references in %s"
	gitShowRefStartTemplateConstant      = "Checking %s in %s"
	gitShowRefSuccessTemplateConstant    = "%s exists in %s"
	gitShowRefActionTemplateConstant     = "find %s in %s"
	gitCheckoutStartTemplateConstant     = "Switching %s to branch %s"
	gitCheckoutSuccessTemplateConstant   = "%s now on branch %s"
	gitCheckoutActionTemplateConstant    = "switch %s to branch %s"
	gitTrackingStartTemplateConstant     = "Creating branch %s tracking %s in %s"
	gitTrackingSuccessTemplateConstant   = "Created branch %s tracking %s in %s"
	gitTrackingActionTemplateConstant    = "create branch %s tracking %s in %s"
	gitPullStartTemplateConstant         = "Pulling %s from %s into %s"
	gitPullSuccessTemplateConstant       = "Pulled %s from %s into %s"
	gitPullActionTemplateConstant        = "pull %s from %s into %s"
	gitLogStartTemplateConstant          = "Collecting commit log in %s"
	gitLogSuccessTemplateConstant        = "Collected commit log in %s"
	gitLogActionTemplateConstant         = "collect commit log in %s"
)

// commandDescription holds the human readable phrases of a recognized command.
type commandDescription struct {
	started   string
	succeeded string
	action    string
}

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage describes a command that exited with code zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage describes a command that exited with a non-zero code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage describes a command that could not be run.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	description, recognized := formatter.describeGitCommand(command)
	if !recognized {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch stage {
	case messageStageStart:
		return description.started
	case messageStageSuccess:
		return description.succeeded
	case messageStageFailure:
		return fmt.Sprintf(actionFailureTemplateConstant, description.action, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(actionExecutionFailureTemplateConstant, description.action, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeGitCommand(command ShellCommand) (commandDescription, bool) {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return commandDescription{}, false
	}

	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch arguments[0] {
	case gitRevParseSubcommandNameConstant:
		return commandDescription{
			started:   fmt.Sprintf(gitRevParseStartTemplateConstant, workingDirectory),
			succeeded: fmt.Sprintf(gitRevParseSuccessTemplateConstant, workingDirectory),
			action:    fmt.Sprintf(gitRevParseActionTemplateConstant, workingDirectory),
		}, true
	case gitFetchSubcommandNameConstant:
		return formatter.describeFetch(arguments[1:], workingDirectory), true
	case gitRemoteSubcommandNameConstant:
		return commandDescription{
			started:   fmt.Sprintf(gitRemoteStartTemplateConstant, workingDirectory),
			succeeded: fmt.Sprintf(gitRemoteSuccessTemplateConstant, workingDirectory),
			action:    fmt.Sprintf(gitRemoteActionTemplateConstant, workingDirectory),
		}, true
	case gitForEachRefSubcommandNameConstant:
		return commandDescription{
			started:   fmt.Sprintf(gitForEachRefStartTemplateConstant, workingDirectory),
			succeeded: fmt.Sprintf(gitForEachRefSuccessTemplateConstant, workingDirectory),
			action:    fmt.Sprintf(gitForEachRefActionTemplateConstant, workingDirectory),
		}, true
	case gitShowRefSubcommandNameConstant:
		reference := formatter.ensureValue(formatter.lastNonFlagArgument(arguments[1:]), gitReferenceDefaultLabelConstant)
		return commandDescription{
			started:   fmt.Sprintf(gitShowRefStartTemplateConstant, reference, workingDirectory),
			succeeded: fmt.Sprintf(gitShowRefSuccessTemplateConstant, reference, workingDirectory),
			action:    fmt.Sprintf(gitShowRefActionTemplateConstant, reference, workingDirectory),
		}, true
	case gitCheckoutSubcommandNameConstant:
		return formatter.describeCheckout(arguments[1:], workingDirectory), true
	case gitPullSubcommandNameConstant:
		remoteName, references := formatter.extractRemoteAndReferences(arguments[1:])
		branchLabel := formatter.ensureValue(formatter.joinReferences(references), gitCurrentBranchLabelConstant)
		remoteLabel := formatter.ensureValue(remoteName, gitUpstreamRemoteLabelConstant)
		return commandDescription{
			started:   fmt.Sprintf(gitPullStartTemplateConstant, branchLabel, remoteLabel, workingDirectory),
			succeeded: fmt.Sprintf(gitPullSuccessTemplateConstant, branchLabel, remoteLabel, workingDirectory),
			action:    fmt.Sprintf(gitPullActionTemplateConstant, branchLabel, remoteLabel, workingDirectory),
		}, true
	case gitLogSubcommandNameConstant:
		return commandDescription{
			started:   fmt.Sprintf(gitLogStartTemplateConstant, workingDirectory),
			succeeded: fmt.Sprintf(gitLogSuccessTemplateConstant, workingDirectory),
			action:    fmt.Sprintf(gitLogActionTemplateConstant, workingDirectory),
		}, true
	default:
		return commandDescription{}, false
	}
}

func (formatter CommandMessageFormatter) describeFetch(arguments []string, workingDirectory string) commandDescription {
	remoteName, references := formatter.extractRemoteAndReferences(arguments)
	if containsArgument(arguments, gitFetchAllFlagConstant) || len(remoteName) == 0 {
		return commandDescription{
			started:   fmt.Sprintf(gitFetchAllStartTemplateConstant, gitFetchAllRemotesLabelConstant, workingDirectory),
			succeeded: fmt.Sprintf(gitFetchAllSuccessTemplateConstant, gitFetchAllRemotesLabelConstant, workingDirectory),
			action:    fmt.Sprintf(gitFetchAllActionTemplateConstant, gitFetchAllRemotesLabelConstant, workingDirectory),
		}
	}
	if len(references) == 0 {
		return commandDescription{
			started:   fmt.Sprintf(gitFetchAllStartTemplateConstant, remoteName, workingDirectory),
			succeeded: fmt.Sprintf(gitFetchAllSuccessTemplateConstant, remoteName, workingDirectory),
			action:    fmt.Sprintf(gitFetchAllActionTemplateConstant, remoteName, workingDirectory),
		}
	}
	referencesLabel := formatter.joinReferences(references)
	return commandDescription{
		started:   fmt.Sprintf(gitFetchStartTemplateConstant, referencesLabel, remoteName, workingDirectory),
		succeeded: fmt.Sprintf(gitFetchSuccessTemplateConstant, referencesLabel, remoteName, workingDirectory),
		action:    fmt.Sprintf(gitFetchActionTemplateConstant, referencesLabel, remoteName, workingDirectory),
	}
}

func (formatter CommandMessageFormatter) describeCheckout(arguments []string, workingDirectory string) commandDescription {
	if containsArgument(arguments, gitCheckoutCreateFlagConstant) {
		branchName := formatter.ensureValue(findFlagValue(arguments, gitCheckoutCreateFlagConstant), fallbackUnknownValueLabelConstant)
		startPoint := formatter.ensureValue(findFlagValue(arguments, gitCheckoutTrackFlagConstant), fallbackUnknownValueLabelConstant)
		return commandDescription{
			started:   fmt.Sprintf(gitTrackingStartTemplateConstant, branchName, startPoint, workingDirectory),
			succeeded: fmt.Sprintf(gitTrackingSuccessTemplateConstant, branchName, startPoint, workingDirectory),
			action:    fmt.Sprintf(gitTrackingActionTemplateConstant, branchName, startPoint, workingDirectory),
		}
	}
	branchName := formatter.ensureValue(formatter.lastNonFlagArgument(arguments), fallbackUnknownValueLabelConstant)
	return commandDescription{
		started:   fmt.Sprintf(gitCheckoutStartTemplateConstant, workingDirectory, branchName),
		succeeded: fmt.Sprintf(gitCheckoutSuccessTemplateConstant, workingDirectory, branchName),
		action:    fmt.Sprintf(gitCheckoutActionTemplateConstant, workingDirectory, branchName),
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
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return commandLabel
	}
	return commandLabel + fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
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

func (formatter CommandMessageFormatter) ensureValue(value string, fallback string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallback
	}
	return trimmedValue
}

func (formatter CommandMessageFormatter) extractRemoteAndReferences(arguments []string) (string, []string) {
	var positional []string
	for _, argument := range arguments {
		if strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		positional = append(positional, argument)
	}
	if len(positional) == 0 {
		return emptyStringConstant, nil
	}
	return positional[0], positional[1:]
}

func (formatter CommandMessageFormatter) joinReferences(references []string) string {
	return strings.Join(references, referencesJoinSeparatorConstant)
}

func (formatter CommandMessageFormatter) lastNonFlagArgument(arguments []string) string {
	for index := len(arguments) - 1; index >= 0; index-- {
		if !strings.HasPrefix(arguments[index], flagPrefixConstant) {
			return arguments[index]
		}
	}
	return emptyStringConstant
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if argument == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments)-1; index++ {
		if arguments[index] == flag {
			return arguments[index+1]
		}
	}
	return emptyStringConstant
}
