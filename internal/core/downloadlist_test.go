package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portacraft/internal/types"
)

// fakeEngine resolves every entry according to the fail set.
type fakeEngine struct {
	fail map[string]types.FailureCode
	seen [][]types.DownloadEntry
}

func (f *fakeEngine) Download(_ context.Context, entries []types.DownloadEntry, _ int, progress func(types.DownloadProgress)) []types.DownloadOutcome {
	f.seen = append(f.seen, entries)
	outcomes := make([]types.DownloadOutcome, 0, len(entries))
	for _, entry := range entries {
		if code, ok := f.fail[entry.URL]; ok {
			outcomes = append(outcomes, types.DownloadOutcome{Entry: entry, Code: code})
			continue
		}
		if progress != nil {
			progress(types.DownloadProgress{Entry: entry, Size: entry.Size, Done: true})
		}
		outcomes = append(outcomes, types.DownloadOutcome{Entry: entry, Size: entry.Size})
	}
	return outcomes
}

func TestDownloadListRejectsNonHTTPSchemes(t *testing.T) {
	dl := NewDownloadList()
	err := dl.Add(types.DownloadEntry{URL: "ftp://example.com/a", Dst: "a"}, false)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	assert.Zero(t, dl.Count())
}

func TestDownloadListVerifySkipsExistingFile(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "present.jar")
	require.NoError(t, os.WriteFile(dst, []byte("abc"), 0644))

	dl := NewDownloadList()
	require.NoError(t, dl.Add(types.DownloadEntry{URL: "https://example.com/a", Dst: dst, Size: 3}, true))
	assert.Zero(t, dl.Count())
	assert.Equal(t, 1, dl.Skipped())

	// A size mismatch forces a refetch.
	require.NoError(t, dl.Add(types.DownloadEntry{URL: "https://example.com/a", Dst: dst, Size: 9}, true))
	assert.Equal(t, 1, dl.Count())

	// Without verification the existing file is ignored.
	require.NoError(t, dl.Add(types.DownloadEntry{URL: "https://example.com/b", Dst: dst, Size: 3}, false))
	assert.Equal(t, 2, dl.Count())
}

func TestDownloadListExecuteRunsFinalizersInOrder(t *testing.T) {
	dl := NewDownloadList()
	require.NoError(t, dl.Add(types.DownloadEntry{URL: "https://example.com/a", Dst: filepath.Join(t.TempDir(), "a"), Size: 5}, false))

	var order []string
	dl.AddFinalizer(func() error { order = append(order, "first"); return nil })
	dl.AddFinalizer(func() error { order = append(order, "second"); return nil })

	var events []types.Event
	err := dl.Execute(t.Context(), &fakeEngine{}, 2, func(e types.Event) { events = append(events, e) })
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Zero(t, dl.Count())

	var sawStart, sawComplete bool
	for _, e := range events {
		switch e.(type) {
		case types.DownloadStartEvent:
			sawStart = true
		case types.DownloadCompleteEvent:
			sawComplete = true
		}
	}
	assert.True(t, sawStart)
	assert.True(t, sawComplete)
}

func TestDownloadListExecuteAggregatesFailures(t *testing.T) {
	dl := NewDownloadList()
	dir := t.TempDir()
	require.NoError(t, dl.Add(types.DownloadEntry{URL: "https://example.com/ok", Dst: filepath.Join(dir, "ok"), Size: 1}, false))
	require.NoError(t, dl.Add(types.DownloadEntry{URL: "https://example.com/bad", Dst: filepath.Join(dir, "bad"), Size: 1}, false))

	finalized := false
	dl.AddFinalizer(func() error { finalized = true; return nil })

	engine := &fakeEngine{fail: map[string]types.FailureCode{
		"https://example.com/bad": types.FailureInvalidSha1,
	}}
	err := dl.Execute(t.Context(), engine, 2, nil)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), MsgDownloadFailed)
	// Finalizers run even when entries failed.
	assert.True(t, finalized)
}

func TestDownloadListExecuteSurfacesFinalizerError(t *testing.T) {
	dl := NewDownloadList()
	require.NoError(t, dl.Add(types.DownloadEntry{URL: "https://example.com/a", Dst: filepath.Join(t.TempDir(), "a"), Size: 1}, false))

	var order []string
	dl.AddFinalizer(func() error {
		order = append(order, "failing")
		return SchemaError("finalizer", "working")
	})
	dl.AddFinalizer(func() error { order = append(order, "after"); return nil })

	err := dl.Execute(t.Context(), &fakeEngine{}, 1, nil)
	require.Error(t, err)
	// The failing finalizer does not stop later ones.
	assert.Equal(t, []string{"failing", "after"}, order)
}
