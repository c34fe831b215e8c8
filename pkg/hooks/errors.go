package hooks

import "fmt"

// Common hooks errors.
var (
	// ErrHookExecution is returned when a script fails to compile or run.
	ErrHookExecution = fmt.Errorf("error executing hook")

	// ErrHookScript is returned when a script reports a failure through err.
	ErrHookScript = fmt.Errorf("hook script error")

	// ErrHookLoad is returned when a script file cannot be read.
	ErrHookLoad = fmt.Errorf("failed to load hook")
)
