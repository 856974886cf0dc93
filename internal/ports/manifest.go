package ports

import (
	"context"

	"portacraft/internal/types"
)

// ManifestPort exposes the remote manifest index itself, for alias resolution
// and version search.
type ManifestPort interface {
	Index(ctx context.Context) (*types.ManifestIndex, error)
}
