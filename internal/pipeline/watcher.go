package pipeline

import "portacraft/internal/types"

// Watcher observes a sequence run. Callbacks are invoked from the goroutine
// driving the sequence, never concurrently, so implementations need no
// locking.
type Watcher interface {
	// OnBegin is called once before the first task executes.
	OnBegin(state *State)
	// OnEvent receives progress events emitted by tasks.
	OnEvent(event types.Event)
	// OnError is called when a task fails, before the sequence aborts.
	OnError(taskName string, err error)
	// OnEnd is called once after the last task, whether or not the run
	// succeeded.
	OnEnd(state *State)
}

// NopWatcher ignores everything. Embed it to implement only the callbacks a
// watcher cares about.
type NopWatcher struct{}

func (NopWatcher) OnBegin(*State)        {}
func (NopWatcher) OnEvent(types.Event)   {}
func (NopWatcher) OnError(string, error) {}
func (NopWatcher) OnEnd(*State)          {}

var _ Watcher = NopWatcher{}

// WatcherGroup fans callbacks out to several watchers in order.
type WatcherGroup []Watcher

func (g WatcherGroup) OnBegin(state *State) {
	for _, w := range g {
		w.OnBegin(state)
	}
}

func (g WatcherGroup) OnEvent(event types.Event) {
	for _, w := range g {
		w.OnEvent(event)
	}
}

func (g WatcherGroup) OnError(taskName string, err error) {
	for _, w := range g {
		w.OnError(taskName, err)
	}
}

func (g WatcherGroup) OnEnd(state *State) {
	for _, w := range g {
		w.OnEnd(state)
	}
}

var _ Watcher = WatcherGroup{}
