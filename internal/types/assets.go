package types

// AssetObject is one content-addressed asset of an asset index.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}

// AssetIndex enumerates the assets of a version. Objects are keyed by logical
// asset path; duplicate hashes across paths map to the same object file.
type AssetIndex struct {
	Objects map[string]AssetObject `json:"objects"`
	// MapToResources requests a copy of every asset into the legacy
	// "resources" directory of the working directory.
	MapToResources bool `json:"map_to_resources"`
	// Virtual requests a copy of every asset into a per-index "virtual"
	// directory using logical paths.
	Virtual bool `json:"virtual"`
}
