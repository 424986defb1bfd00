package shared

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/temirov/gitlog/internal/execshell"
)

// FileSystem exposes the filesystem operations used by discovery and report output.
type FileSystem interface {
	ReadDir(path string) ([]fs.DirEntry, error)
	Stat(path string) (fs.FileInfo, error)
	Abs(path string) (string, error)
	MkdirAll(path string, permissions fs.FileMode) error
	CreateTemp(directory string, pattern string) (string, error)
	Rename(oldPath string, newPath string) error
	Remove(path string) error
}

// GitExecutor exposes the subset of shell execution needed for git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryProber decides whether a directory is the root of a git working tree.
type RepositoryProber interface {
	IsRepositoryRoot(executionContext context.Context, directoryPath string) (bool, error)
}

// RepositoryHandle identifies a discovered repository.
type RepositoryHandle struct {
	Name string
	Path string
}

// NewRepositoryHandle derives the handle name from the final path element.
func NewRepositoryHandle(repositoryPath string) RepositoryHandle {
	cleanedPath := filepath.Clean(repositoryPath)
	return RepositoryHandle{Name: filepath.Base(cleanedPath), Path: cleanedPath}
}
