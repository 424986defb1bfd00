// Package pathutils normalizes user-supplied paths from flags and configuration.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const homeShortcutConstant = "~"

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// PathResolver trims, expands a leading home shortcut, and makes paths absolute.
type PathResolver struct {
	resolveHomeDirectory func() (string, error)
}

// NewPathResolver constructs a PathResolver using the operating system home lookup.
func NewPathResolver() *PathResolver {
	return NewPathResolverWithProvider(os.UserHomeDir)
}

// NewPathResolverWithProvider constructs a PathResolver with a custom home provider.
// The provider is consulted at most once.
func NewPathResolverWithProvider(provider HomeDirectoryProvider) *PathResolver {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &PathResolver{resolveHomeDirectory: sync.OnceValues(provider)}
}

// ExpandHome replaces a leading ~ or ~/ with the home directory. Other forms, such as ~user, are returned unchanged.
func (resolver *PathResolver) ExpandHome(candidatePath string) (string, error) {
	trimmedPath := strings.TrimSpace(candidatePath)
	if trimmedPath != homeShortcutConstant && !hasHomePrefix(trimmedPath) {
		return trimmedPath, nil
	}

	homeDirectory, homeError := resolver.resolveHomeDirectory()
	if homeError != nil {
		return "", homeError
	}
	if trimmedPath == homeShortcutConstant {
		return homeDirectory, nil
	}
	return filepath.Join(homeDirectory, trimmedPath[len(homeShortcutConstant)+1:]), nil
}

// Resolve expands the home shortcut and returns an absolute, cleaned path.
// An empty input resolves to the current working directory.
func (resolver *PathResolver) Resolve(candidatePath string) (string, error) {
	expandedPath, expansionError := resolver.ExpandHome(candidatePath)
	if expansionError != nil {
		return "", expansionError
	}
	if len(expandedPath) == 0 {
		expandedPath = "."
	}
	return filepath.Abs(expandedPath)
}

func hasHomePrefix(candidatePath string) bool {
	if strings.HasPrefix(candidatePath, homeShortcutConstant+"/") {
		return true
	}
	return strings.HasPrefix(candidatePath, homeShortcutConstant+string(os.PathSeparator))
}
