package dependencies_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitlog/internal/execshell"
	"github.com/temirov/gitlog/internal/repos/dependencies"
	"github.com/temirov/gitlog/internal/repos/discovery"
	"github.com/temirov/gitlog/internal/repos/filesystem"
)

type staticCommandRunner struct {
	result execshell.ExecutionResult
}

func (runner staticCommandRunner) Run(context.Context, execshell.ShellCommand) (execshell.ExecutionResult, error) {
	return runner.result, nil
}

type rejectingProber struct{}

func (rejectingProber) IsRepositoryRoot(context.Context, string) (bool, error) {
	return false, nil
}

func TestResolveFileSystemPrefersExisting(testInstance *testing.T) {
	existing := filesystem.OSFileSystem{}
	require.Equal(testInstance, existing, dependencies.ResolveFileSystem(existing))
	require.IsType(testInstance, filesystem.OSFileSystem{}, dependencies.ResolveFileSystem(nil))
}

func TestResolveCommandRunnerDefaultsToOperatingSystem(testInstance *testing.T) {
	require.IsType(testInstance, &execshell.OSCommandRunner{}, dependencies.ResolveCommandRunner(nil))

	existing := staticCommandRunner{}
	require.Equal(testInstance, existing, dependencies.ResolveCommandRunner(existing))
}

func TestResolveGitExecutorUsesProvidedRunner(testInstance *testing.T) {
	executor, executorError := dependencies.ResolveGitExecutor(staticCommandRunner{result: execshell.ExecutionResult{StandardOutput: "git version 2.45.0\n"}}, nil)
	require.NoError(testInstance, executorError)

	result, executionError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"--version"}})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, "git version 2.45.0\n", result.StandardOutput)
}

func TestResolveRepositoryDiscovererRequiresProber(testInstance *testing.T) {
	_, discovererError := dependencies.ResolveRepositoryDiscoverer(nil, nil, nil)
	require.ErrorIs(testInstance, discovererError, discovery.ErrRepositoryProberNotConfigured)

	discoverer, discovererError := dependencies.ResolveRepositoryDiscoverer(nil, rejectingProber{}, nil)
	require.NoError(testInstance, discovererError)

	repositories, discoveryError := discoverer.DiscoverRepositories(context.Background(), testInstance.TempDir())
	require.NoError(testInstance, discoveryError)
	require.Empty(testInstance, repositories)
}
