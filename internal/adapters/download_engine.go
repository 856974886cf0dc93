package adapters

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"portacraft/internal/ports"
	"portacraft/internal/types"
)

// scheduleSizeUnknown is the size assumed for entries whose metadata declares
// none, so they sort among medium-sized entries instead of last.
const scheduleSizeUnknown int64 = 1024 * 1024

// maxAttempts bounds how many times one logical entry is tried. Redirect hops
// consume from the same budget.
const maxAttempts = 3

// retryBaseDelay and maxRetryDelay bound the exponential backoff between
// attempts of the same entry.
const (
	retryBaseDelay = 200 * time.Millisecond
	maxRetryDelay  = 2 * time.Second
)

// dialTimeout, tlsHandshakeTimeout and responseHeaderTimeout bound each phase
// of a connection, so a server that accepts and then stalls cannot wedge a
// worker. The body transfer itself stays unbounded; large artifacts on slow
// links are legitimate.
const (
	dialTimeout           = 10 * time.Second
	tlsHandshakeTimeout   = 10 * time.Second
	responseHeaderTimeout = 30 * time.Second
)

// speedSmoothing and speedInterval tune the exponential moving average used
// for the reported transfer speed.
const (
	speedSmoothing = 0.3
	speedInterval  = 250 * time.Millisecond
)

// HTTPDownloadEngine downloads batches of artifacts over a fixed worker pool.
// Larger entries start first so the batch tail is made of small files, workers
// reuse keep-alive connections, and each entry is verified against its
// declared size and checksum as it streams to disk.
type HTTPDownloadEngine struct {
	// Transport is shared by all workers; nil uses a dedicated transport with
	// connection reuse enabled.
	Transport http.RoundTripper
}

var _ ports.DownloadPort = &HTTPDownloadEngine{}

// NewHTTPDownloadEngine builds an engine with its own keep-alive transport,
// bounded per connection phase.
func NewHTTPDownloadEngine() *HTTPDownloadEngine {
	return &HTTPDownloadEngine{Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   tlsHandshakeTimeout,
		ResponseHeaderTimeout: responseHeaderTimeout,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       30 * time.Second,
	}}
}

// progressMsg flows from workers to the single collector goroutine that owns
// the progress callback.
type progressMsg struct {
	entry types.DownloadEntry
	size  int64
	delta int64
	done  bool
}

// Download fetches every entry and returns exactly one outcome per entry, in
// completion order. A canceled context fails the remaining entries with a
// connection failure instead of blocking.
func (e *HTTPDownloadEngine) Download(ctx context.Context, entries []types.DownloadEntry, workers int, progress func(types.DownloadProgress)) []types.DownloadOutcome {
	if len(entries) == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU() * 4
	}
	if workers > len(entries) {
		workers = len(entries)
	}

	// Largest first, so small entries fill the tail of the batch and workers
	// drain at roughly the same time.
	sorted := append([]types.DownloadEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return scheduleSize(sorted[i]) > scheduleSize(sorted[j])
	})

	log.Ctx(ctx).Debug().Int("entries", len(sorted)).Int("workers", workers).Msg("starting download batch")

	jobs := make(chan types.DownloadEntry)
	results := make(chan types.DownloadOutcome)
	messages := make(chan progressMsg, 4*workers)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{
				Transport: e.Transport,
				// Redirects are handled manually to keep the attempt budget
				// attached to the logical entry.
				CheckRedirect: func(*http.Request, []*http.Request) error {
					return http.ErrUseLastResponse
				},
			}
			for entry := range jobs {
				results <- downloadEntry(ctx, client, entry, messages)
			}
		}()
	}

	go func() {
		for _, entry := range sorted {
			jobs <- entry
		}
		close(jobs)
	}()
	go func() {
		wg.Wait()
		close(messages)
	}()

	// The collector is the only goroutine invoking the progress callback, so
	// watcher implementations stay single-threaded.
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		completed := 0
		var speed float64
		var windowBytes int64
		windowStart := time.Now()
		for msg := range messages {
			windowBytes += msg.delta
			if elapsed := time.Since(windowStart); elapsed >= speedInterval {
				instant := float64(windowBytes) / elapsed.Seconds()
				if speed == 0 {
					speed = instant
				} else {
					speed = speedSmoothing*instant + (1-speedSmoothing)*speed
				}
				windowBytes = 0
				windowStart = time.Now()
			}
			if msg.done {
				completed++
			}
			if progress != nil {
				progress(types.DownloadProgress{
					Entry: msg.entry,
					Count: completed,
					Size:  msg.size,
					Speed: speed,
					Done:  msg.done,
				})
			}
		}
	}()

	outcomes := make([]types.DownloadOutcome, 0, len(sorted))
	for range sorted {
		outcomes = append(outcomes, <-results)
	}
	<-collectorDone
	return outcomes
}

func scheduleSize(entry types.DownloadEntry) int64 {
	if entry.Size == types.SizeUnknown {
		return scheduleSizeUnknown
	}
	return entry.Size
}

// downloadEntry tries one logical entry until it succeeds or the attempt
// budget runs out. The returned outcome always references the original entry,
// even when redirects changed the effective URL.
func downloadEntry(ctx context.Context, client *http.Client, entry types.DownloadEntry, messages chan<- progressMsg) types.DownloadOutcome {
	url := entry.URL
	code := types.FailureConnection

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return types.DownloadOutcome{Entry: entry, Code: types.FailureConnection}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return types.DownloadOutcome{Entry: entry, Code: types.FailureConnection}
		}
		resp, err := client.Do(req)
		if err != nil {
			code = types.FailureConnection
			backoff(ctx, attempt)
			continue
		}

		switch resp.StatusCode {
		case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
			http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
			location := resp.Header.Get("Location")
			resp.Body.Close()
			if location == "" {
				code = types.FailureNotFound
				backoff(ctx, attempt)
				continue
			}
			if redirected, err := resp.Request.URL.Parse(location); err == nil {
				url = redirected.String()
			} else {
				url = location
			}
			continue
		case http.StatusOK:
			// Stream below.
		default:
			resp.Body.Close()
			code = types.FailureNotFound
			backoff(ctx, attempt)
			continue
		}

		size, failure := streamToFile(ctx, resp, entry, messages)
		resp.Body.Close()
		if failure == "" {
			return types.DownloadOutcome{Entry: entry, Size: size}
		}
		code = failure
		backoff(ctx, attempt)
	}
	return types.DownloadOutcome{Entry: entry, Code: code}
}

// backoff sleeps before the next attempt of the same entry, exponentially
// longer with some jitter, honoring cancellation. The last attempt and
// redirect hops do not back off.
func backoff(ctx context.Context, attempt int) {
	if attempt >= maxAttempts-1 {
		return
	}
	delay := retryBaseDelay * time.Duration(1<<attempt)
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	delay += time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

// streamToFile writes the response body to the destination while hashing it,
// then verifies size and checksum. Any failure removes the partial file.
func streamToFile(ctx context.Context, resp *http.Response, entry types.DownloadEntry, messages chan<- progressMsg) (int64, types.FailureCode) {
	if err := os.MkdirAll(filepath.Dir(entry.Dst), 0755); err != nil {
		return 0, types.FailureConnection
	}
	dst, err := os.Create(entry.Dst)
	if err != nil {
		return 0, types.FailureConnection
	}

	hash := sha1.New()
	buf := make([]byte, 32*1024)
	var written, reported int64
	lastReport := time.Now()

	fail := func(code types.FailureCode) (int64, types.FailureCode) {
		dst.Close()
		os.Remove(entry.Dst)
		return written, code
	}

	for {
		if ctx.Err() != nil {
			return fail(types.FailureConnection)
		}
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return fail(types.FailureConnection)
			}
			hash.Write(buf[:n])
			written += int64(n)
			if time.Since(lastReport) >= speedInterval {
				messages <- progressMsg{entry: entry, size: written, delta: written - reported}
				reported = written
				lastReport = time.Now()
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return fail(types.FailureConnection)
		}
	}

	if entry.Size != types.SizeUnknown && written != entry.Size {
		return fail(types.FailureInvalidSize)
	}
	if entry.Sha1 != "" && hex.EncodeToString(hash.Sum(nil)) != entry.Sha1 {
		return fail(types.FailureInvalidSha1)
	}
	if err := dst.Close(); err != nil {
		os.Remove(entry.Dst)
		return written, types.FailureConnection
	}
	if entry.Executable {
		if err := os.Chmod(entry.Dst, 0755); err != nil {
			return written, types.FailureConnection
		}
	}
	messages <- progressMsg{entry: entry, size: written, delta: written - reported, done: true}
	return written, ""
}
