package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"portacraft/internal/core"
	"portacraft/internal/ports"
	"portacraft/internal/shared"
	"portacraft/internal/types"
)

// HTTPVersionRepository resolves version metadata through the remote manifest
// index. The index is cached on disk and revalidated with a conditional
// request; when the remote answers 304 or is unreachable, the cached copy is
// served.
type HTTPVersionRepository struct {
	manifestURL string
	cacheFile   string
	client      *http.Client

	mu    sync.Mutex
	index *types.ManifestIndex
}

var _ ports.VersionRepositoryPort = &HTTPVersionRepository{}
var _ ports.ManifestPort = &HTTPVersionRepository{}

// NewHTTPVersionRepository builds a repository fetching the index from
// manifestURL and caching it at cacheFile.
func NewHTTPVersionRepository(manifestURL string, cacheFile string, timeout time.Duration) *HTTPVersionRepository {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPVersionRepository{
		manifestURL: manifestURL,
		cacheFile:   cacheFile,
		client:      &http.Client{Timeout: timeout},
	}
}

// Index returns the manifest index, fetching or revalidating it on first use.
func (r *HTTPVersionRepository) Index(ctx context.Context) (*types.ManifestIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexLocked(ctx)
}

func (r *HTTPVersionRepository) indexLocked(ctx context.Context) (*types.ManifestIndex, error) {
	if r.index != nil {
		return r.index, nil
	}

	var cached *types.ManifestIndex
	if data, err := os.ReadFile(r.cacheFile); err == nil {
		var index types.ManifestIndex
		if err := json.Unmarshal(data, &index); err == nil {
			cached = &index
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.manifestURL, nil)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid manifest url %s", r.manifestURL)).
			WithCause(err)
	}
	if cached != nil && cached.LastModified != "" {
		req.Header.Set("If-Modified-Since", cached.LastModified)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		// Offline installs still work as long as a cached index exists.
		if cached != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("manifest index unreachable, using cached copy")
			r.index = cached
			return cached, nil
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("failed to fetch manifest index").
			WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		log.Ctx(ctx).Debug().Msg("manifest index not modified")
		r.index = cached
		return cached, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if cached != nil {
			r.index = cached
			return cached, nil
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("failed to fetch manifest index").
			WithCause(shared.HTTPStatusError(resp.StatusCode, r.manifestURL))
	}

	var index types.ManifestIndex
	if err := json.NewDecoder(resp.Body).Decode(&index); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode manifest index").
			WithCause(err)
	}
	index.LastModified = resp.Header.Get("Last-Modified")

	if data, err := json.Marshal(&index); err == nil {
		if err := shared.WriteFileAtomic(r.cacheFile, data); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("failed to cache manifest index")
		}
	}

	r.index = &index
	return r.index, nil
}

// ValidateVersion trusts the local metadata file unless the index declares a
// content hash that mismatches. Versions absent from the index (local-only
// versions, alternate loaders) are always trusted.
func (r *HTTPVersionRepository) ValidateVersion(ctx context.Context, id string, file string) bool {
	if _, err := os.Stat(file); err != nil {
		return false
	}
	index, err := r.Index(ctx)
	if err != nil {
		return true
	}
	info := index.Get(id)
	if info == nil || info.Sha1 == "" {
		return true
	}
	sum, err := shared.FileSha1(file)
	if err != nil {
		return false
	}
	return sum == info.Sha1
}

// FetchVersion downloads the metadata document for the given id and persists
// it byte-for-byte at file before parsing it.
func (r *HTTPVersionRepository) FetchVersion(ctx context.Context, id string, file string) (map[string]any, error) {
	index, err := r.Index(ctx)
	if err != nil {
		return nil, err
	}
	info := index.Get(id)
	if info == nil {
		return nil, core.VersionNotFoundError(id)
	}

	log.Ctx(ctx).Debug().Str("version", id).Str("url", info.URL).Msg("fetching version metadata")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid metadata url %s", info.URL)).
			WithCause(err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg(fmt.Sprintf("failed to fetch metadata for %s", id)).
			WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, core.VersionNotFoundError(id)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg(fmt.Sprintf("failed to fetch metadata for %s", id)).
			WithCause(shared.HTTPStatusError(resp.StatusCode, info.URL))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg(fmt.Sprintf("failed to read metadata for %s", id)).
			WithCause(err)
	}

	var metadata map[string]any
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to decode metadata for %s", id)).
			WithCause(err)
	}

	// Persisted exactly as received so the index hash keeps matching.
	if err := shared.WriteFileAtomic(file, data); err != nil {
		return nil, err
	}
	return metadata, nil
}
