// Package execshell runs git and gh as child processes.
//
// ShellExecutor invokes a CommandRunner exactly once per call, converts
// non-zero exits into CommandFailedError, and reports each invocation either
// as structured zap fields or as console sentences built by
// CommandMessageFormatter. OSCommandRunner is the os/exec backed runner.
package execshell
