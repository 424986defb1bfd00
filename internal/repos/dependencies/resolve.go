// Package dependencies supplies OS-backed defaults for collaborators callers leave unset.
package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/gitlog/internal/execshell"
	"github.com/temirov/gitlog/internal/repos/discovery"
	"github.com/temirov/gitlog/internal/repos/filesystem"
	"github.com/temirov/gitlog/internal/repos/shared"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveCommandRunner returns the provided runner or one that starts real processes.
func ResolveCommandRunner(existing execshell.CommandRunner) execshell.CommandRunner {
	if existing != nil {
		return existing
	}
	return execshell.NewOSCommandRunner()
}

// ResolveGitExecutor builds a shell executor over the runner, defaulting to the OS runner.
func ResolveGitExecutor(runner execshell.CommandRunner, logger *zap.Logger) (*execshell.ShellExecutor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return execshell.NewShellExecutor(logger, ResolveCommandRunner(runner))
}

// ResolveRepositoryDiscoverer builds a discoverer over the filesystem, defaulting to the OS filesystem.
func ResolveRepositoryDiscoverer(fileSystem shared.FileSystem, prober shared.RepositoryProber, logger *zap.Logger) (*discovery.RepositoryDiscoverer, error) {
	return discovery.NewRepositoryDiscoverer(discovery.Dependencies{
		FileSystem: ResolveFileSystem(fileSystem),
		Prober:     prober,
		Logger:     logger,
	})
}
