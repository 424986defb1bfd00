// Package flags provides pflag values and usage helpers shared by the gitlog command line.
package flags
