package pipeline

import "fmt"

// CollaboratorError wraps a rejection from the storage or training
// collaborator. It aborts the run immediately, with no retry: the scheduler
// that triggers runs is the retry mechanism.
type CollaboratorError struct {
	Collaborator string // "storage" or "training"
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s collaborator: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
