// Package branches groups branch maintenance services for gitlog.
//
// The synchronize subpackage aligns every local branch of a repository with
// its remote counterpart before commit logs are aggregated.
package branches
