// Package cli constructs the gitlog command-line interface. The root command
// loads layered configuration, builds the structured logger, wires the
// repository discovery, branch synchronization, log aggregation, and time
// tracking collaborators, and writes the commit activity document.
package cli
