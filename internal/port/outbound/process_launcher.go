package outbound

import "time"

// Invocation describes one external-process launch for one selected file.
// The child receives exactly three positional arguments after Script:
// the source file path, the output directory and the credential.
type Invocation struct {
	Script     []string
	FilePath   string
	OutputDir  string
	Credential string
}

// Args returns the full argument vector after the program name.
func (i Invocation) Args() []string {
	args := make([]string, 0, len(i.Script)+2)
	if len(i.Script) > 1 {
		args = append(args, i.Script[1:]...)
	}
	return append(args, i.FilePath, i.OutputDir, i.Credential)
}

// InvocationResult is what the dispatcher observes once a child exits.
type InvocationResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// ProcessLauncher starts child processes.
type ProcessLauncher interface {
	// Launch starts the process and returns without waiting for it to exit.
	// An error means the process could not be started.
	Launch(inv Invocation) (ProcessHandle, error)
}

// ProcessHandle observes a started process.
type ProcessHandle interface {
	// Wait blocks until the process exits. A non-nil error accompanies any
	// non-zero exit status; the result is populated whenever the process ran.
	Wait() (*InvocationResult, error)
}
