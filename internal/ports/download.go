package ports

import (
	"context"

	"portacraft/internal/types"
)

// DownloadPort executes a batch of artifact fetches with bounded parallelism.
// Every submitted entry yields exactly one outcome, failures never block
// unrelated entries, and progress is reported through the callback from a
// single goroutine.
type DownloadPort interface {
	Download(ctx context.Context, entries []types.DownloadEntry, workers int, progress func(types.DownloadProgress)) []types.DownloadOutcome
}
