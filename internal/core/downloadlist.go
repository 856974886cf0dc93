package core

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"portacraft/internal/ports"
	"portacraft/internal/types"
)

// DownloadList collects artifact fetch requests from the resource resolvers
// and the finalize callbacks to run once the batch completes. It is filled on
// the single pipeline goroutine; only the engine executing it is concurrent.
type DownloadList struct {
	entries    []types.DownloadEntry
	size       int64
	skipped    int
	finalizers []func() error
}

// NewDownloadList returns an empty list.
func NewDownloadList() *DownloadList {
	return &DownloadList{}
}

// Add enqueues an entry. Only http and https sources are accepted. With
// verify set, an entry whose destination already exists with the expected size
// is skipped entirely, so re-running a completed install performs no network
// requests.
func (l *DownloadList) Add(entry types.DownloadEntry, verify bool) error {
	if !strings.HasPrefix(entry.URL, "http://") && !strings.HasPrefix(entry.URL, "https://") {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported scheme in url %s", entry.URL))
	}
	if entry.Name == "" {
		entry.Name = entry.URL
	}
	if verify {
		if info, err := os.Stat(entry.Dst); err == nil && !info.IsDir() {
			if entry.Size == types.SizeUnknown || entry.Size == info.Size() {
				l.skipped++
				return nil
			}
		}
	}
	l.entries = append(l.entries, entry)
	if entry.Size != types.SizeUnknown {
		l.size += entry.Size
	}
	return nil
}

// AddFinalizer registers a callback run exactly once after every entry of the
// batch reached a terminal outcome, in insertion order, even when some entries
// failed.
func (l *DownloadList) AddFinalizer(fn func() error) {
	l.finalizers = append(l.finalizers, fn)
}

// Count returns the number of enqueued entries.
func (l *DownloadList) Count() int { return len(l.entries) }

// Size returns the total declared byte size of enqueued entries.
func (l *DownloadList) Size() int64 { return l.size }

// Skipped returns the number of entries elided by verify-before-fetch.
func (l *DownloadList) Skipped() int { return l.skipped }

// Entries returns the enqueued entries.
func (l *DownloadList) Entries() []types.DownloadEntry { return l.entries }

// Clear empties the list so further batches can reuse it.
func (l *DownloadList) Clear() {
	l.entries = nil
	l.size = 0
	l.skipped = 0
	l.finalizers = nil
}

// Execute runs the batch on the given engine, dispatches progress to the sink,
// runs the finalize callbacks, and only then surfaces the aggregate failure
// set. Finalization proceeds best-effort: a failed entry never blocks it.
func (l *DownloadList) Execute(ctx context.Context, engine ports.DownloadPort, workers int, sink EventSink) error {
	if workers <= 0 {
		workers = runtime.NumCPU() * 4
	}
	if count := len(l.entries); count > 0 {
		if count < workers {
			workers = count
		}
		sink.emit(types.DownloadStartEvent{Workers: workers, Entries: count, Size: l.size})

		outcomes := engine.Download(ctx, l.entries, workers, func(progress types.DownloadProgress) {
			sink.emit(types.DownloadProgressEvent{Progress: progress})
		})

		var failures []types.DownloadOutcome
		for _, outcome := range outcomes {
			if outcome.Failed() {
				failures = append(failures, outcome)
			}
		}
		finErr := l.runFinalizers()
		if len(failures) > 0 {
			return DownloadFailedError(failures)
		}
		if finErr != nil {
			return finErr
		}
	} else if err := l.runFinalizers(); err != nil {
		return err
	}

	// A successful batch is cleared so chained executions do not refetch.
	l.Clear()
	sink.emit(types.DownloadCompleteEvent{})
	return nil
}

func (l *DownloadList) runFinalizers() error {
	finalizers := l.finalizers
	l.finalizers = nil
	var firstErr error
	for _, fn := range finalizers {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
