// Package pipeline provides the task sequence machinery driving an install:
// a typed state bag shared across tasks, watchers observing progress events,
// and a sequence that can be reshaped around named tasks.
package pipeline

import (
	"fmt"
	"reflect"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"
)

// State is a bag of values keyed by their concrete type. Tasks communicate
// exclusively through it, so two tasks producing the same type would shadow
// each other; Insert refuses overwrites to surface that early.
type State struct {
	values map[reflect.Type]any
}

// NewState returns an empty state bag.
func NewState() *State {
	return &State{values: map[reflect.Type]any{}}
}

// Insert stores a value under its concrete type. Storing a second value of a
// type already present is an error.
func (s *State) Insert(value any) error {
	key := reflect.TypeOf(value)
	if key == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("state: cannot insert a nil value")
	}
	if _, exists := s.values[key]; exists {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("state: value of type %s already present", key))
	}
	s.values[key] = value
	return nil
}

// Replace stores a value under its concrete type, overwriting any previous
// value. Intended for tasks that refine a value produced earlier.
func (s *State) Replace(value any) {
	s.values[reflect.TypeOf(value)] = value
}

// Get retrieves the value of type T, reporting whether it is present.
func Get[T any](s *State) (T, bool) {
	value, ok := s.values[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return value.(T), true
}

// Must retrieves the value of type T and errors when absent. Tasks use it for
// values a preceding task is contractually expected to have produced.
func Must[T any](s *State) (T, error) {
	value, ok := Get[T](s)
	if !ok {
		var zero T
		return zero, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("state: missing value of type %s", reflect.TypeFor[T]()))
	}
	return value, nil
}
