package pipeline

import "fmt"

// GenerationError wraps a failure in the answer-generation stage.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NotInitializedError reports a pipeline operation invoked before the
// required dependency was wired in.
type NotInitializedError struct {
	Component string
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("pipeline not initialized: missing %s", e.Component)
}
