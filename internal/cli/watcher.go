package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"portacraft/internal/pipeline"
	"portacraft/internal/types"
)

// consoleWatcher renders pipeline events for interactive use. Lifecycle events
// go through the logger; download progress is throttled to a single updating
// line on stderr.
type consoleWatcher struct {
	pipeline.NopWatcher
	entries   int
	lastPrint time.Time
}

func newConsoleWatcher() *consoleWatcher {
	return &consoleWatcher{}
}

func (w *consoleWatcher) OnEvent(event types.Event) {
	switch e := event.(type) {
	case types.VersionFetchingEvent:
		log.Info().Str("version", e.Version).Msg("fetching version metadata")
	case types.VersionLoadedEvent:
		log.Debug().Str("version", e.Version).Msg("version loaded")
	case types.AssetsResolvedEvent:
		log.Info().Str("index", e.IndexVersion).Int("count", e.Count).Msg("assets resolved")
	case types.LibrariesResolvedEvent:
		log.Info().Int("class", e.ClassCount).Int("native", e.NativeCount).Msg("libraries resolved")
	case types.LoggerFoundEvent:
		log.Debug().Str("id", e.ID).Msg("logging config found")
	case types.RuntimeLoadedEvent:
		log.Info().Str("version", e.Version).Int("files", e.Files).Msg("runtime resolved")
	case types.DownloadStartEvent:
		w.entries = e.Entries
		log.Info().Int("entries", e.Entries).Int("workers", e.Workers).Int64("bytes", e.Size).Msg("downloading")
	case types.DownloadProgressEvent:
		w.printProgress(e.Progress)
	case types.DownloadCompleteEvent:
		fmt.Fprint(os.Stderr, "\r\033[K")
		log.Info().Msg("download complete")
	}
}

func (w *consoleWatcher) OnError(taskName string, err error) {
	fmt.Fprint(os.Stderr, "\r\033[K")
	log.Error().Err(err).Str("task", taskName).Msg("install failed")
}

func (w *consoleWatcher) printProgress(progress types.DownloadProgress) {
	if !progress.Done && time.Since(w.lastPrint) < 500*time.Millisecond {
		return
	}
	w.lastPrint = time.Now()
	fmt.Fprintf(os.Stderr, "\r\033[K%d/%d %s %s/s",
		progress.Count, w.entries, progress.Entry.Name, formatBytes(int64(progress.Speed)))
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
