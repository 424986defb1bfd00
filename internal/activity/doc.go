// Package activity assembles per-repository commit activity for a reporting window.
//
// Service discovers repositories under a root, processes each one in its own
// goroutine (optional branch synchronization, log aggregation, optional
// tracked time lookup), and returns reports in discovery order. Failures are
// isolated to the repository that produced them.
package activity
