package pipeline

import "context"

// Task is one step of a sequence. Setup runs for every task before any task
// executes, letting tasks seed the state with defaults; Execute performs the
// actual work.
type Task interface {
	// Name identifies the task inside its sequence. Sequence mutation
	// operations address tasks by this name.
	Name() string
	// Setup seeds the state before the sequence starts executing. It must
	// not perform I/O.
	Setup(state *State) error
	// Execute runs the task against the shared state.
	Execute(ctx context.Context, state *State, watcher Watcher) error
}

// BaseTask provides a no-op Setup so simple tasks only implement Execute.
type BaseTask struct{}

func (BaseTask) Setup(*State) error { return nil }
