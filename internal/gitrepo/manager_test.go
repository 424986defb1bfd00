package gitrepo_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitlog/internal/execshell"
	"github.com/temirov/gitlog/internal/gitrepo"
)

const (
	testRepositoryPathConstant = "/workspace/alpha"
	testOriginRemoteConstant   = "origin"
	testFeatureBranchConstant  = "feature"
)

type scriptedResponse struct {
	result execshell.ExecutionResult
	err    error
}

type scriptedGitExecutor struct {
	responses       map[string]scriptedResponse
	recordedDetails []execshell.CommandDetails
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	response, found := executor.responses[strings.Join(details.Arguments, " ")]
	if !found {
		return execshell.ExecutionResult{}, nil
	}
	return response.result, response.err
}

func failedCommand(exitCode int) error {
	return execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit},
		Result:  execshell.ExecutionResult{ExitCode: exitCode},
	}
}

func TestNewRepositoryManagerRequiresExecutor(testInstance *testing.T) {
	manager, creationError := gitrepo.NewRepositoryManager(nil)
	require.Nil(testInstance, manager)
	require.ErrorIs(testInstance, creationError, gitrepo.ErrGitExecutorNotConfigured)
}

func TestIsRepositoryRoot(testInstance *testing.T) {
	workingDirectory := testInstance.TempDir()
	nestedDirectory := testInstance.TempDir()

	testCases := []struct {
		name          string
		response      scriptedResponse
		expectedRoot  bool
		expectedError bool
	}{
		{
			name:         "top_level_matches_directory",
			response:     scriptedResponse{result: execshell.ExecutionResult{StandardOutput: workingDirectory + "\n"}},
			expectedRoot: true,
		},
		{
			name:         "directory_inside_other_repository",
			response:     scriptedResponse{result: execshell.ExecutionResult{StandardOutput: nestedDirectory + "\n"}},
			expectedRoot: false,
		},
		{
			name:         "not_a_repository",
			response:     scriptedResponse{err: failedCommand(128)},
			expectedRoot: false,
		},
		{
			name:          "execution_failure",
			response:      scriptedResponse{err: execshell.CommandExecutionError{Command: execshell.ShellCommand{Name: execshell.CommandGit}, Cause: errors.New("missing binary")}},
			expectedRoot:  false,
			expectedError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			executor := &scriptedGitExecutor{responses: map[string]scriptedResponse{"rev-parse --show-toplevel": testCase.response}}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(subTest, creationError)

			isRoot, probeError := manager.IsRepositoryRoot(context.Background(), workingDirectory)
			if testCase.expectedError {
				require.Error(subTest, probeError)
			} else {
				require.NoError(subTest, probeError)
			}
			require.Equal(subTest, testCase.expectedRoot, isRoot)
			require.Equal(subTest, workingDirectory, executor.recordedDetails[0].WorkingDirectory)
		})
	}
}

func TestFetchAllDisablesTerminalPrompts(testInstance *testing.T) {
	executor := &scriptedGitExecutor{}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, manager.FetchAll(context.Background(), testRepositoryPathConstant))
	require.Len(testInstance, executor.recordedDetails, 1)
	require.Equal(testInstance, []string{"fetch", "--all", "--prune"}, executor.recordedDetails[0].Arguments)
	require.Equal(testInstance, "0", executor.recordedDetails[0].EnvironmentVariables["GIT_TERMINAL_PROMPT"])
}

func TestListRemoteBranchesSkipsSymbolicReferences(testInstance *testing.T) {
	forEachRefOutput := strings.Join([]string{
		"refs/remotes/origin/HEAD\trefs/remotes/origin/main",
		"refs/remotes/origin/main\t",
		"refs/remotes/origin/feature/login\t",
		"refs/remotes/upstream/main\t",
		"refs/remotes/upstream/fork/release\t",
		"refs/remotes/upstream/fork\t",
	}, "\n")

	executor := &scriptedGitExecutor{responses: map[string]scriptedResponse{
		"remote": {result: execshell.ExecutionResult{StandardOutput: "origin\nupstream\nupstream/fork\n"}},
		"for-each-ref --format=%(refname)%09%(symref) refs/remotes/": {result: execshell.ExecutionResult{StandardOutput: forEachRefOutput}},
	}}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	branches, listError := manager.ListRemoteBranches(context.Background(), testRepositoryPathConstant)
	require.NoError(testInstance, listError)
	require.Equal(testInstance, []gitrepo.RemoteBranch{
		{Remote: "origin", Name: "main"},
		{Remote: "origin", Name: "feature/login"},
		{Remote: "upstream", Name: "main"},
		{Remote: "upstream/fork", Name: "release"},
		{Remote: "upstream", Name: "fork"},
	}, branches)
}

func TestCheckoutBranchClassifiesFailures(testInstance *testing.T) {
	localReferenceArguments := "show-ref --verify --quiet refs/heads/" + testFeatureBranchConstant
	checkoutArguments := "checkout " + testFeatureBranchConstant

	testCases := []struct {
		name      string
		responses map[string]scriptedResponse
		assertion func(require.TestingT, error)
	}{
		{
			name:      "existing_branch",
			responses: map[string]scriptedResponse{},
			assertion: func(testingT require.TestingT, checkoutError error) {
				require.NoError(testingT, checkoutError)
			},
		},
		{
			name:      "missing_branch",
			responses: map[string]scriptedResponse{localReferenceArguments: {err: failedCommand(1)}},
			assertion: func(testingT require.TestingT, checkoutError error) {
				var notFoundError gitrepo.BranchNotFoundError
				require.ErrorAs(testingT, checkoutError, &notFoundError)
				require.Equal(testingT, testFeatureBranchConstant, notFoundError.Branch)
			},
		},
		{
			name:      "dirty_worktree_conflict",
			responses: map[string]scriptedResponse{checkoutArguments: {err: failedCommand(1)}},
			assertion: func(testingT require.TestingT, checkoutError error) {
				var checkoutFailure gitrepo.CheckoutError
				require.ErrorAs(testingT, checkoutError, &checkoutFailure)
				var notFoundError gitrepo.BranchNotFoundError
				require.False(testingT, errors.As(checkoutError, &notFoundError))
			},
		},
		{
			name:      "reference_lookup_failure",
			responses: map[string]scriptedResponse{localReferenceArguments: {err: failedCommand(128)}},
			assertion: func(testingT require.TestingT, checkoutError error) {
				var checkoutFailure gitrepo.CheckoutError
				require.ErrorAs(testingT, checkoutError, &checkoutFailure)
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			executor := &scriptedGitExecutor{responses: testCase.responses}
			manager, creationError := gitrepo.NewRepositoryManager(executor)
			require.NoError(subTest, creationError)

			testCase.assertion(subTest, manager.CheckoutBranch(context.Background(), testRepositoryPathConstant, testFeatureBranchConstant))
		})
	}
}

func TestRemoteBranchExists(testInstance *testing.T) {
	branch := gitrepo.RemoteBranch{Remote: testOriginRemoteConstant, Name: testFeatureBranchConstant}
	executor := &scriptedGitExecutor{responses: map[string]scriptedResponse{
		"show-ref --verify --quiet refs/remotes/origin/feature": {err: failedCommand(1)},
	}}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	exists, lookupError := manager.RemoteBranchExists(context.Background(), testRepositoryPathConstant, branch)
	require.NoError(testInstance, lookupError)
	require.False(testInstance, exists)
}

func TestTrackingAndPullArguments(testInstance *testing.T) {
	branch := gitrepo.RemoteBranch{Remote: testOriginRemoteConstant, Name: testFeatureBranchConstant}
	executor := &scriptedGitExecutor{}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, manager.CreateTrackingBranch(context.Background(), testRepositoryPathConstant, branch))
	require.NoError(testInstance, manager.PullFastForward(context.Background(), testRepositoryPathConstant, branch))

	require.Len(testInstance, executor.recordedDetails, 2)
	require.Equal(testInstance, []string{"checkout", "-b", "feature", "--track", "origin/feature"}, executor.recordedDetails[0].Arguments)
	require.Equal(testInstance, []string{"pull", "--ff-only", "origin", "feature"}, executor.recordedDetails[1].Arguments)
	require.Equal(testInstance, "0", executor.recordedDetails[1].EnvironmentVariables["GIT_TERMINAL_PROMPT"])
}

func TestPullFastForwardPreservesDeadline(testInstance *testing.T) {
	branch := gitrepo.RemoteBranch{Remote: testOriginRemoteConstant, Name: testFeatureBranchConstant}
	executor := &scriptedGitExecutor{responses: map[string]scriptedResponse{
		"pull --ff-only origin feature": {err: execshell.CommandExecutionError{Command: execshell.ShellCommand{Name: execshell.CommandGit}, Cause: context.DeadlineExceeded}},
	}}
	manager, creationError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, creationError)

	pullError := manager.PullFastForward(context.Background(), testRepositoryPathConstant, branch)
	require.ErrorIs(testInstance, pullError, context.DeadlineExceeded)
}
