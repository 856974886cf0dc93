package app

import (
	"context"
	"strings"
)

// Search filters the manifest index by id substring and version type.
func (s Service) Search(ctx context.Context, req SearchRequest) (SearchResult, error) {
	index, err := s.Manifest.Index(ctx)
	if err != nil {
		return SearchResult{}, err
	}

	query := strings.TrimSpace(req.Query)
	kind := strings.TrimSpace(req.Kind)

	result := SearchResult{}
	for _, info := range index.Versions {
		if kind != "" && info.Type != kind {
			continue
		}
		if query != "" && !strings.Contains(info.ID, query) {
			continue
		}
		result.Versions = append(result.Versions, info)
	}
	return result, nil
}
