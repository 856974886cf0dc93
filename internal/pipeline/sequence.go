package pipeline

import (
	"context"
	"fmt"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
)

// Sequence is an ordered list of tasks sharing a state bag. Callers reshape a
// stock sequence around named tasks before running it, which is how alternate
// install flavors graft their steps onto the standard flow.
type Sequence struct {
	tasks   []Task
	state   *State
	watcher Watcher
}

// NewSequence builds a sequence over the given tasks. A nil watcher is
// replaced by NopWatcher.
func NewSequence(watcher Watcher, tasks ...Task) *Sequence {
	if watcher == nil {
		watcher = NopWatcher{}
	}
	return &Sequence{
		tasks:   append([]Task(nil), tasks...),
		state:   NewState(),
		watcher: watcher,
	}
}

// State exposes the shared bag so callers can seed inputs before Run and read
// results after it.
func (s *Sequence) State() *State { return s.state }

// TaskNames returns the current task order.
func (s *Sequence) TaskNames() []string {
	names := make([]string, len(s.tasks))
	for i, task := range s.tasks {
		names[i] = task.Name()
	}
	return names
}

func (s *Sequence) indexOf(name string) int {
	for i, task := range s.tasks {
		if task.Name() == name {
			return i
		}
	}
	return -1
}

func unknownTaskError(name string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("sequence: no task named %q", name))
}

// Append adds tasks at the end of the sequence.
func (s *Sequence) Append(tasks ...Task) {
	s.tasks = append(s.tasks, tasks...)
}

// InsertBefore inserts a task immediately before the named one.
func (s *Sequence) InsertBefore(name string, task Task) error {
	i := s.indexOf(name)
	if i < 0 {
		return unknownTaskError(name)
	}
	s.tasks = append(s.tasks[:i], append([]Task{task}, s.tasks[i:]...)...)
	return nil
}

// InsertAfter inserts a task immediately after the named one.
func (s *Sequence) InsertAfter(name string, task Task) error {
	i := s.indexOf(name)
	if i < 0 {
		return unknownTaskError(name)
	}
	s.tasks = append(s.tasks[:i+1], append([]Task{task}, s.tasks[i+1:]...)...)
	return nil
}

// Replace swaps the named task for another one, keeping its position.
func (s *Sequence) Replace(name string, task Task) error {
	i := s.indexOf(name)
	if i < 0 {
		return unknownTaskError(name)
	}
	s.tasks[i] = task
	return nil
}

// Remove drops the named task from the sequence.
func (s *Sequence) Remove(name string) error {
	i := s.indexOf(name)
	if i < 0 {
		return unknownTaskError(name)
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return nil
}

// Run sets up every task, then executes them in order. The first failing task
// aborts the run; its error is reported to the watcher and returned. OnEnd is
// called in every case.
func (s *Sequence) Run(ctx context.Context) error {
	for _, task := range s.tasks {
		if err := task.Setup(s.state); err != nil {
			return err
		}
	}

	s.watcher.OnBegin(s.state)
	defer s.watcher.OnEnd(s.state)

	for _, task := range s.tasks {
		if err := ctx.Err(); err != nil {
			s.watcher.OnError(task.Name(), err)
			return err
		}
		log.Ctx(ctx).Debug().Str("task", task.Name()).Msg("executing task")
		if err := task.Execute(ctx, s.state, s.watcher); err != nil {
			s.watcher.OnError(task.Name(), err)
			return err
		}
	}
	return nil
}
