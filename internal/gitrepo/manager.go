package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/temirov/gitlog/internal/execshell"
	"github.com/temirov/gitlog/internal/repos/shared"
)

const (
	gitRevParseSubcommandConstant               = "rev-parse"
	gitShowTopLevelFlagConstant                 = "--show-toplevel"
	gitFetchSubcommandConstant                  = "fetch"
	gitFetchAllFlagConstant                     = "--all"
	gitFetchPruneFlagConstant                   = "--prune"
	gitRemoteSubcommandConstant                 = "remote"
	gitForEachRefSubcommandConstant             = "for-each-ref"
	gitRemoteReferenceFormatConstant            = "--format=%(refname)%09%(symref)"
	gitRemoteReferencesNamespaceConstant        = "refs/remotes/"
	gitLocalReferencesNamespaceConstant         = "refs/heads/"
	gitShowRefSubcommandConstant                = "show-ref"
	gitShowRefVerifyFlagConstant                = "--verify"
	gitShowRefQuietFlagConstant                 = "--quiet"
	gitCheckoutSubcommandConstant               = "checkout"
	gitCheckoutCreateFlagConstant               = "-b"
	gitCheckoutTrackFlagConstant                = "--track"
	gitPullSubcommandConstant                   = "pull"
	gitPullFastForwardFlagConstant              = "--ff-only"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	referenceFieldSeparatorConstant             = "\t"
	referenceSegmentSeparatorConstant           = "/"
	lineSeparatorConstant                       = "\n"
	showRefMissingExitCodeConstant              = 1
	executorMissingMessageConstant              = "git executor not configured"
	branchNotFoundErrorTemplateConstant         = "local branch %q not found"
	checkoutErrorTemplateConstant               = "checkout of branch %q failed: %v"
	fetchFailureTemplateConstant                = "fetch failed: %w"
	listRemotesFailureTemplateConstant          = "listing remotes failed: %w"
	listReferencesFailureTemplateConstant       = "listing remote branches failed: %w"
	referenceLookupFailureTemplateConstant      = "reference lookup for %s failed: %w"
	trackingBranchFailureTemplateConstant       = "creating branch %q tracking %s failed: %w"
	pullFailureTemplateConstant                 = "fast-forward of %q from %s failed: %w"
)

// ErrGitExecutorNotConfigured indicates the repository manager was built without an executor.
var ErrGitExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// BranchNotFoundError reports that no local branch carries the requested name.
type BranchNotFoundError struct {
	Branch string
}

// Error describes the missing branch.
func (notFoundError BranchNotFoundError) Error() string {
	return fmt.Sprintf(branchNotFoundErrorTemplateConstant, notFoundError.Branch)
}

// CheckoutError reports any checkout failure other than a missing local branch.
type CheckoutError struct {
	Branch string
	Reason error
}

// Error describes the checkout failure.
func (checkoutError CheckoutError) Error() string {
	return fmt.Sprintf(checkoutErrorTemplateConstant, checkoutError.Branch, checkoutError.Reason)
}

// Unwrap exposes the underlying execution failure.
func (checkoutError CheckoutError) Unwrap() error {
	return checkoutError.Reason
}

// RemoteBranch identifies a branch published under a remote namespace.
type RemoteBranch struct {
	Remote string
	Name   string
}

// ShortReference renders the branch as remote/name.
func (branch RemoteBranch) ShortReference() string {
	return branch.Remote + referenceSegmentSeparatorConstant + branch.Name
}

// FullReference renders the branch as refs/remotes/remote/name.
func (branch RemoteBranch) FullReference() string {
	return gitRemoteReferencesNamespaceConstant + branch.ShortReference()
}

// RepositoryManager performs repository-level git operations.
type RepositoryManager struct {
	executor shared.GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager around the provided executor.
func NewRepositoryManager(executor shared.GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// IsRepositoryRoot reports whether the directory is the top level of a git working tree.
// Directories nested inside another repository's working tree do not qualify.
func (manager *RepositoryManager) IsRepositoryRoot(executionContext context.Context, directoryPath string) (bool, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitShowTopLevelFlagConstant},
		WorkingDirectory: directoryPath,
	})
	if executionError != nil {
		if _, isFailedCommand := execshell.ExitCodeOf(executionError); isFailedCommand {
			return false, nil
		}
		return false, executionError
	}

	topLevel := strings.TrimSpace(executionResult.StandardOutput)
	if len(topLevel) == 0 {
		return false, nil
	}
	return resolvePath(topLevel) == resolvePath(directoryPath), nil
}

// FetchAll fetches every remote and prunes deleted remote branches.
func (manager *RepositoryManager) FetchAll(executionContext context.Context, repositoryPath string) error {
	_, executionError := manager.executeNetworkGit(executionContext, repositoryPath, []string{gitFetchSubcommandConstant, gitFetchAllFlagConstant, gitFetchPruneFlagConstant})
	if executionError != nil {
		return fmt.Errorf(fetchFailureTemplateConstant, executionError)
	}
	return nil
}

// ListRemotes returns configured remote names.
func (manager *RepositoryManager) ListRemotes(executionContext context.Context, repositoryPath string) ([]string, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return nil, fmt.Errorf(listRemotesFailureTemplateConstant, executionError)
	}
	return splitNonEmptyLines(executionResult.StandardOutput), nil
}

// ListRemoteBranches enumerates remote-tracking branches, skipping symbolic references such as origin/HEAD.
func (manager *RepositoryManager) ListRemoteBranches(executionContext context.Context, repositoryPath string) ([]RemoteBranch, error) {
	remotes, remotesError := manager.ListRemotes(executionContext, repositoryPath)
	if remotesError != nil {
		return nil, remotesError
	}

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitForEachRefSubcommandConstant, gitRemoteReferenceFormatConstant, gitRemoteReferencesNamespaceConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return nil, fmt.Errorf(listReferencesFailureTemplateConstant, executionError)
	}

	return parseRemoteBranches(executionResult.StandardOutput, remotes), nil
}

// RemoteBranchExists re-checks that the remote-tracking reference is still present.
func (manager *RepositoryManager) RemoteBranchExists(executionContext context.Context, repositoryPath string, branch RemoteBranch) (bool, error) {
	return manager.referenceExists(executionContext, repositoryPath, branch.FullReference())
}

// CheckoutBranch switches the working tree to an existing local branch.
// It returns BranchNotFoundError when no such local branch exists and CheckoutError for any other failure.
func (manager *RepositoryManager) CheckoutBranch(executionContext context.Context, repositoryPath string, branchName string) error {
	exists, lookupError := manager.referenceExists(executionContext, repositoryPath, gitLocalReferencesNamespaceConstant+branchName)
	if lookupError != nil {
		return CheckoutError{Branch: branchName, Reason: lookupError}
	}
	if !exists {
		return BranchNotFoundError{Branch: branchName}
	}

	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCheckoutSubcommandConstant, branchName},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return CheckoutError{Branch: branchName, Reason: executionError}
	}
	return nil
}

// CreateTrackingBranch creates and checks out a local branch tracking the remote branch.
func (manager *RepositoryManager) CreateTrackingBranch(executionContext context.Context, repositoryPath string, branch RemoteBranch) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitCheckoutSubcommandConstant, gitCheckoutCreateFlagConstant, branch.Name, gitCheckoutTrackFlagConstant, branch.ShortReference()},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return fmt.Errorf(trackingBranchFailureTemplateConstant, branch.Name, branch.ShortReference(), executionError)
	}
	return nil
}

// PullFastForward fast-forwards the checked out branch from the remote branch.
func (manager *RepositoryManager) PullFastForward(executionContext context.Context, repositoryPath string, branch RemoteBranch) error {
	_, executionError := manager.executeNetworkGit(executionContext, repositoryPath, []string{gitPullSubcommandConstant, gitPullFastForwardFlagConstant, branch.Remote, branch.Name})
	if executionError != nil {
		return fmt.Errorf(pullFailureTemplateConstant, branch.Name, branch.ShortReference(), executionError)
	}
	return nil
}

func (manager *RepositoryManager) referenceExists(executionContext context.Context, repositoryPath string, reference string) (bool, error) {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitShowRefSubcommandConstant, gitShowRefVerifyFlagConstant, gitShowRefQuietFlagConstant, reference},
		WorkingDirectory: repositoryPath,
	})
	if executionError == nil {
		return true, nil
	}
	if exitCode, isFailedCommand := execshell.ExitCodeOf(executionError); isFailedCommand && exitCode == showRefMissingExitCodeConstant {
		return false, nil
	}
	return false, fmt.Errorf(referenceLookupFailureTemplateConstant, reference, executionError)
}

func (manager *RepositoryManager) executeNetworkGit(executionContext context.Context, repositoryPath string, arguments []string) (execshell.ExecutionResult, error) {
	return manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repositoryPath,
		EnvironmentVariables: map[string]string{
			gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant,
		},
	})
}

// parseRemoteBranches maps for-each-ref output onto known remotes, preferring the longest matching remote name.
func parseRemoteBranches(output string, remotes []string) []RemoteBranch {
	orderedRemotes := append([]string{}, remotes...)
	sort.SliceStable(orderedRemotes, func(first int, second int) bool {
		return len(orderedRemotes[first]) > len(orderedRemotes[second])
	})

	var branches []RemoteBranch
	for _, line := range splitNonEmptyLines(output) {
		fields := strings.SplitN(line, referenceFieldSeparatorConstant, 2)
		if len(fields) == 2 && len(strings.TrimSpace(fields[1])) > 0 {
			continue
		}

		shortReference := strings.TrimPrefix(strings.TrimSpace(fields[0]), gitRemoteReferencesNamespaceConstant)
		for _, remoteName := range orderedRemotes {
			prefix := remoteName + referenceSegmentSeparatorConstant
			if !strings.HasPrefix(shortReference, prefix) {
				continue
			}
			branchName := strings.TrimPrefix(shortReference, prefix)
			if len(branchName) > 0 {
				branches = append(branches, RemoteBranch{Remote: remoteName, Name: branchName})
			}
			break
		}
	}
	return branches
}

func splitNonEmptyLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, lineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 {
			continue
		}
		lines = append(lines, trimmedLine)
	}
	return lines
}

func resolvePath(path string) string {
	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		absolutePath = path
	}
	resolvedPath, resolveError := filepath.EvalSymlinks(absolutePath)
	if resolveError != nil {
		return filepath.Clean(absolutePath)
	}
	return resolvedPath
}
