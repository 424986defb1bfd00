// Package gitrepo contains helpers for interrogating and manipulating Git repositories.
//
// It exposes RepositoryManager for probing repositories, enumerating remote
// branches, and performing the narrow checkout, tracking, and fast-forward
// operations that branch synchronization needs. Checkout failures are reported
// as BranchNotFoundError or CheckoutError so callers never inspect git output.
package gitrepo
