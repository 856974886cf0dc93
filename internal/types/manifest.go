package types

// VersionInfo is one entry of the remote manifest index.
type VersionInfo struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Sha1        string `json:"sha1"`
	ReleaseTime string `json:"releaseTime"`
}

// ManifestIndex is the authoritative index mapping version ids to metadata
// document locations and integrity hashes.
type ManifestIndex struct {
	Latest   map[string]string `json:"latest"`
	Versions []VersionInfo     `json:"versions"`
	// LastModified carries the Last-Modified header of the fetch that produced
	// this document, used for conditional re-fetch.
	LastModified string `json:"last_modified,omitempty"`
}

// Get returns the entry for the given id, nil when absent.
func (m *ManifestIndex) Get(id string) *VersionInfo {
	for i := range m.Versions {
		if m.Versions[i].ID == id {
			return &m.Versions[i]
		}
	}
	return nil
}

// FilterLatest resolves the "release" and "snapshot" aliases against the latest
// block. The second return value reports whether an alias was resolved.
func (m *ManifestIndex) FilterLatest(version string) (string, bool) {
	if version == "release" || version == "snapshot" {
		if latest, ok := m.Latest[version]; ok {
			return latest, true
		}
	}
	return version, false
}
