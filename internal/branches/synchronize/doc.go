// Package synchronize fetches a repository's remotes and fast-forwards a local
// branch for every remote branch, recording one outcome per branch.
//
// Synchronization changes the checked out branch and may create local
// branches. Callers opt in explicitly.
package synchronize
