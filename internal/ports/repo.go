package ports

import "context"

// VersionRepositoryPort resolves version metadata documents by id. The
// metadata resolver first loads a locally cached document and asks the
// repository to validate it; only when the document is missing or invalid is
// FetchVersion called.
type VersionRepositoryPort interface {
	// ValidateVersion reports whether the locally cached metadata file for the
	// given id can be trusted. The default policy is to trust the cache unless
	// the repository knows an expected content hash that mismatches.
	ValidateVersion(ctx context.Context, id string, file string) bool

	// FetchVersion retrieves the metadata document for the given id, persists
	// it byte-for-byte as received at file, and returns the parsed document.
	// Returns a not-found error carrying the id when the repository does not
	// know the version.
	FetchVersion(ctx context.Context, id string, file string) (map[string]any, error)
}
