package core

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"portacraft/internal/ports"
	"portacraft/internal/shared"
	"portacraft/internal/types"
)

// AssetsResult is the typed outcome of asset resolution: the mapping of
// logical asset paths to their content-addressed object files, plus the
// optional legacy layout directories populated after download.
type AssetsResult struct {
	IndexVersion string
	Objects      map[string]string
	VirtualDir   string
	ResourcesDir string
}

// AssetsResolver enumerates the asset index of a version and enqueues missing
// objects. ObjectsURL is the content-addressed store base, with trailing slash.
type AssetsResolver struct {
	Fetch      ports.MetaFetchPort
	ObjectsURL string
}

// Resolve returns nil when the metadata declares no asset index; custom
// versions may ship their own internal assets and that is not an error.
func (r AssetsResolver) Resolve(ctx context.Context, install types.InstallContext, metadata map[string]any, dl *DownloadList, sink EventSink) (*AssetsResult, error) {
	indexInfo, err := optObject(metadata, "assetIndex", "metadata:")
	if err != nil {
		return nil, err
	}
	if indexInfo == nil {
		return nil, nil
	}

	// The assets key, when present, overrides the index id.
	indexVersion, ok, err := optString(metadata, "assets", "metadata:")
	if err != nil {
		return nil, err
	}
	if !ok {
		if indexVersion, ok, err = optString(indexInfo, "id", "metadata: /assetIndex"); err != nil {
			return nil, err
		} else if !ok {
			return nil, nil
		}
	}

	indexFile := filepath.Join(install.AssetsDir, "indexes", indexVersion+".json")
	index, err := r.loadOrFetchIndex(ctx, indexInfo, indexFile)
	if err != nil {
		return nil, err
	}

	objectsDir := filepath.Join(install.AssetsDir, "objects")
	result := AssetsResult{
		IndexVersion: indexVersion,
		Objects:      make(map[string]string, len(index.Objects)),
	}

	for assetPath, object := range index.Objects {
		if len(object.Hash) < 2 {
			return nil, SchemaError(fmt.Sprintf("assets index: /objects/%s/hash", assetPath), "a sha1 hex string")
		}

		// Objects are sharded by the first two hash characters; duplicate
		// hashes across assets share one file.
		prefix := object.Hash[:2]
		objectFile := filepath.Join(objectsDir, prefix, object.Hash)
		result.Objects[assetPath] = objectFile

		if info, err := os.Stat(objectFile); err != nil || info.Size() != object.Size {
			if err := dl.Add(types.DownloadEntry{
				URL:  r.ObjectsURL + prefix + "/" + object.Hash,
				Dst:  objectFile,
				Size: object.Size,
				Sha1: object.Hash,
				Name: assetPath,
			}, false); err != nil {
				return nil, err
			}
		}
	}

	if index.Virtual {
		result.VirtualDir = filepath.Join(install.AssetsDir, "virtual", indexVersion)
	}
	if index.MapToResources {
		result.ResourcesDir = filepath.Join(install.WorkDir, "resources")
	}

	// Legacy layouts are populated once the objects are on disk, best effort
	// even when unrelated entries of the batch failed.
	if result.VirtualDir != "" || result.ResourcesDir != "" {
		objects := result.Objects
		virtualDir := result.VirtualDir
		resourcesDir := result.ResourcesDir
		dl.AddFinalizer(func() error {
			return copyAssetLayouts(objects, virtualDir, resourcesDir)
		})
	}

	sink.emit(types.AssetsResolvedEvent{IndexVersion: indexVersion, Count: len(result.Objects)})
	return &result, nil
}

func (r AssetsResolver) loadOrFetchIndex(ctx context.Context, indexInfo map[string]any, indexFile string) (*types.AssetIndex, error) {
	if data, err := os.ReadFile(indexFile); err == nil {
		var index types.AssetIndex
		if err := json.Unmarshal(data, &index); err == nil && index.Objects != nil {
			return &index, nil
		}
	}

	indexURL, err := asString(indexInfo["url"], "metadata: /assetIndex/url")
	if err != nil {
		return nil, err
	}
	doc, err := r.Fetch.FetchJSON(ctx, indexURL)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var index types.AssetIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, SchemaError("assets index:", "a valid asset index document")
	}
	if index.Objects == nil {
		return nil, SchemaError("assets index: /objects", "an object map")
	}
	if err := shared.WriteFileAtomic(indexFile, data); err != nil {
		return nil, err
	}
	return &index, nil
}

func copyAssetLayouts(objects map[string]string, virtualDir string, resourcesDir string) error {
	var firstErr error
	for assetPath, objectFile := range objects {
		if resourcesDir != "" {
			if err := shared.CopyFile(objectFile, filepath.Join(resourcesDir, assetPath)); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if virtualDir != "" {
			if err := shared.CopyFile(objectFile, filepath.Join(virtualDir, assetPath)); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
