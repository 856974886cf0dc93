package ports

import "context"

// MetaFetchPort fetches a remote JSON document and decodes it into a generic
// object. Used for asset indexes and runtime manifests.
type MetaFetchPort interface {
	FetchJSON(ctx context.Context, url string) (map[string]any, error)
}
