// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the typed failures that gitlog
// services inspect instead of parsing command output.
package execshell
