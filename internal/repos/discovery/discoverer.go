package discovery

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/temirov/gitlog/internal/repos/shared"
)

const (
	fileSystemMissingMessageConstant       = "repository discoverer file system not configured"
	repositoryProberMissingMessageConstant = "repository discoverer prober not configured"
	rootResolutionErrorTemplateConstant    = "unable to resolve discovery root %q: %w"
	rootListingErrorTemplateConstant       = "unable to list discovery root %q: %w"
	probeFailureLogMessageConstant         = "Repository probe failed, directory excluded"
	candidateStatFailureLogMessageConstant = "Unable to inspect candidate directory, directory excluded"
	discoveryCompleteLogMessageConstant    = "Repository discovery complete"
	logFieldRootConstant                   = "root"
	logFieldDirectoryConstant              = "directory"
	logFieldCandidateCountConstant         = "candidates"
	logFieldRepositoryCountConstant        = "repositories"
)

// ErrFileSystemNotConfigured indicates the discoverer was constructed without a file system.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrRepositoryProberNotConfigured indicates the discoverer was constructed without a prober.
var ErrRepositoryProberNotConfigured = errors.New(repositoryProberMissingMessageConstant)

// Dependencies enumerates collaborators required by RepositoryDiscoverer.
type Dependencies struct {
	FileSystem shared.FileSystem
	Prober     shared.RepositoryProber
	Logger     *zap.Logger
}

// RepositoryDiscoverer lists the immediate subdirectories of a root that are repository roots.
type RepositoryDiscoverer struct {
	fileSystem shared.FileSystem
	prober     shared.RepositoryProber
	logger     *zap.Logger
}

// NewRepositoryDiscoverer validates dependencies and constructs a RepositoryDiscoverer.
func NewRepositoryDiscoverer(dependencies Dependencies) (*RepositoryDiscoverer, error) {
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.Prober == nil {
		return nil, ErrRepositoryProberNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepositoryDiscoverer{fileSystem: dependencies.FileSystem, prober: dependencies.Prober, logger: logger}, nil
}

// DiscoverRepositories returns handles for direct children of root that the prober accepts,
// sorted lexicographically by directory name. Probe failures exclude the candidate.
func (discoverer *RepositoryDiscoverer) DiscoverRepositories(executionContext context.Context, root string) ([]shared.RepositoryHandle, error) {
	absoluteRoot, absoluteError := discoverer.fileSystem.Abs(root)
	if absoluteError != nil {
		return nil, fmt.Errorf(rootResolutionErrorTemplateConstant, root, absoluteError)
	}

	entries, listingError := discoverer.fileSystem.ReadDir(absoluteRoot)
	if listingError != nil {
		return nil, fmt.Errorf(rootListingErrorTemplateConstant, absoluteRoot, listingError)
	}

	seenNames := make(map[string]struct{}, len(entries))
	var repositories []shared.RepositoryHandle
	candidateCount := 0

	for _, entry := range entries {
		if contextError := executionContext.Err(); contextError != nil {
			return nil, contextError
		}

		if _, alreadySeen := seenNames[entry.Name()]; alreadySeen {
			continue
		}
		seenNames[entry.Name()] = struct{}{}

		handle := shared.NewRepositoryHandle(filepath.Join(absoluteRoot, entry.Name()))
		if !discoverer.isDirectory(handle.Path, entry.IsDir(), entry.Type().IsRegular()) {
			continue
		}
		candidateCount++

		isRepository, probeError := discoverer.prober.IsRepositoryRoot(executionContext, handle.Path)
		if probeError != nil {
			discoverer.logger.Debug(probeFailureLogMessageConstant, zap.String(logFieldDirectoryConstant, handle.Path), zap.Error(probeError))
			continue
		}
		if isRepository {
			repositories = append(repositories, handle)
		}
	}

	sort.Slice(repositories, func(first int, second int) bool {
		return repositories[first].Name < repositories[second].Name
	})

	discoverer.logger.Debug(
		discoveryCompleteLogMessageConstant,
		zap.String(logFieldRootConstant, absoluteRoot),
		zap.Int(logFieldCandidateCountConstant, candidateCount),
		zap.Int(logFieldRepositoryCountConstant, len(repositories)),
	)
	return repositories, nil
}

// isDirectory follows symbolic links so linked checkouts remain candidates.
func (discoverer *RepositoryDiscoverer) isDirectory(path string, entryIsDirectory bool, entryIsRegular bool) bool {
	if entryIsDirectory {
		return true
	}
	if entryIsRegular {
		return false
	}
	fileInfo, statError := discoverer.fileSystem.Stat(path)
	if statError != nil {
		discoverer.logger.Debug(candidateStatFailureLogMessageConstant, zap.String(logFieldDirectoryConstant, path), zap.Error(statError))
		return false
	}
	return fileInfo.IsDir()
}
