package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"portacraft/internal/ports"
	"portacraft/internal/shared"
)

// HTTPMetaFetcher fetches remote JSON documents such as asset indexes and
// runtime manifests.
type HTTPMetaFetcher struct {
	client *http.Client
}

var _ ports.MetaFetchPort = &HTTPMetaFetcher{}

// NewHTTPMetaFetcher builds a fetcher with the given request timeout. A zero
// timeout defaults to 30 seconds.
func NewHTTPMetaFetcher(timeout time.Duration) *HTTPMetaFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPMetaFetcher{client: &http.Client{Timeout: timeout}}
}

// FetchJSON performs a GET request and decodes the response body as a JSON
// object.
func (f *HTTPMetaFetcher) FetchJSON(ctx context.Context, url string) (map[string]any, error) {
	log.Ctx(ctx).Debug().Str("url", url).Msg("fetching json document")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid url %s", url)).
			WithCause(err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg(fmt.Sprintf("failed to fetch %s", url)).
			WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := errbuilder.CodeUnavailable
		if resp.StatusCode == http.StatusNotFound {
			code = errbuilder.CodeNotFound
		}
		return nil, errbuilder.New().
			WithCode(code).
			WithMsg(fmt.Sprintf("failed to fetch %s", url)).
			WithCause(shared.HTTPStatusError(resp.StatusCode, url))
	}

	var document map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&document); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to decode %s", url)).
			WithCause(err)
	}
	return document, nil
}
