// Package commitlog queries a repository's history across all branches for a
// reporting window and normalizes the output into commit records.
package commitlog
