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

// RuntimeResult is the typed outcome of managed-runtime resolution.
type RuntimeResult struct {
	Component string
	Version   string
	BinPath   string
	Files     int
}

// RuntimeResolver resolves the managed runtime distribution declared by the
// metadata. IndexURL points to the per-OS/arch runtime index.
type RuntimeResolver struct {
	Fetch    ports.MetaFetchPort
	IndexURL string
	Platform types.PlatformInfo
}

const defaultRuntimeComponent = "jre-legacy"

// Resolve loads or fetches the component manifest for the current platform and
// enqueues its files. An unsupported platform is a fatal platform error,
// distinct from a remote not-found condition.
func (r RuntimeResolver) Resolve(ctx context.Context, install types.InstallContext, metadata map[string]any, dl *DownloadList, sink EventSink) (*RuntimeResult, error) {
	sink.emit(types.RuntimeLoadingEvent{})

	versionInfo, err := optObject(metadata, "javaVersion", "metadata:")
	if err != nil {
		return nil, err
	}
	component := defaultRuntimeComponent
	if versionInfo != nil {
		if declared, ok, err := optString(versionInfo, "component", "metadata: /javaVersion"); err != nil {
			return nil, err
		} else if ok {
			component = declared
		}
	}

	manifestFile := filepath.Join(install.JVMDir, component+".json")
	manifest, err := r.loadOrFetchManifest(ctx, component, manifestFile)
	if err != nil {
		return nil, err
	}

	runtimeDir := filepath.Join(install.JVMDir, component)
	files, err := asObject(manifest["files"], "runtime manifest: /files")
	if err != nil {
		return nil, err
	}

	count := 0
	for filePath, rawFile := range files {
		path := fmt.Sprintf("runtime manifest: /files/%s", filePath)
		fileObj, err := asObject(rawFile, path)
		if err != nil {
			return nil, err
		}
		fileType, _, err := optString(fileObj, "type", path)
		if err != nil {
			return nil, err
		}
		if fileType != "file" {
			continue
		}
		downloads, err := optObject(fileObj, "downloads", path)
		if err != nil {
			return nil, err
		}
		if downloads == nil {
			continue
		}
		rawDescriptor, ok := downloads["raw"]
		if !ok || rawDescriptor == nil {
			continue
		}
		dst := filepath.Join(runtimeDir, filepath.FromSlash(filePath))
		entry, err := parseDownloadDescriptor(rawDescriptor, dst, filePath, path+"/downloads/raw")
		if err != nil {
			return nil, err
		}
		if executable, ok := fileObj["executable"]; ok && executable != nil {
			if entry.Executable, err = asBool(executable, path+"/executable"); err != nil {
				return nil, err
			}
		}
		if err := dl.Add(entry, true); err != nil {
			return nil, err
		}
		count++
	}

	version, _, err := optString(manifest, "version", "runtime manifest:")
	if err != nil {
		return nil, err
	}

	result := RuntimeResult{
		Component: component,
		Version:   version,
		BinPath:   filepath.Join(runtimeDir, "bin", types.RuntimeBinName(r.Platform.OS)),
		Files:     count,
	}
	sink.emit(types.RuntimeLoadedEvent{Version: version, Files: count})
	return &result, nil
}

// loadOrFetchManifest reads the cached component manifest and falls back to
// resolving it through the runtime index.
func (r RuntimeResolver) loadOrFetchManifest(ctx context.Context, component string, manifestFile string) (map[string]any, error) {
	if data, err := os.ReadFile(manifestFile); err == nil {
		var manifest map[string]any
		if err := json.Unmarshal(data, &manifest); err == nil {
			return manifest, nil
		}
	}

	if r.Platform.RuntimeOS == "" {
		return nil, RuntimePlatformError(fmt.Sprintf("no runtime distribution for %s/%s", r.Platform.OS, r.Platform.Arch))
	}

	index, err := r.Fetch.FetchJSON(ctx, r.IndexURL)
	if err != nil {
		return nil, err
	}
	byOS, err := optObject(index, r.Platform.RuntimeOS, "runtime index:")
	if err != nil {
		return nil, err
	}
	if byOS == nil {
		return nil, RuntimePlatformError(fmt.Sprintf("runtime index has no entry for %s", r.Platform.RuntimeOS))
	}
	rawComponents, ok := byOS[component]
	if !ok || rawComponents == nil {
		return nil, RuntimePlatformError(fmt.Sprintf("component %s not available for %s", component, r.Platform.RuntimeOS))
	}
	components, err := asList(rawComponents, fmt.Sprintf("runtime index: /%s/%s", r.Platform.RuntimeOS, component))
	if err != nil {
		return nil, err
	}
	if len(components) == 0 {
		return nil, RuntimePlatformError(fmt.Sprintf("component %s not available for %s", component, r.Platform.RuntimeOS))
	}

	first, err := asObject(components[0], fmt.Sprintf("runtime index: /%s/%s/0", r.Platform.RuntimeOS, component))
	if err != nil {
		return nil, err
	}
	manifestInfo, err := asObject(first["manifest"], fmt.Sprintf("runtime index: /%s/%s/0/manifest", r.Platform.RuntimeOS, component))
	if err != nil {
		return nil, err
	}
	manifestURL, err := asString(manifestInfo["url"], fmt.Sprintf("runtime index: /%s/%s/0/manifest/url", r.Platform.RuntimeOS, component))
	if err != nil {
		return nil, err
	}

	manifest, err := r.Fetch.FetchJSON(ctx, manifestURL)
	if err != nil {
		return nil, err
	}

	// The component version lives in the index, copy it into the cached
	// manifest so later runs do not need the index again.
	if versionObj, err := optObject(first, "version", fmt.Sprintf("runtime index: /%s/%s/0", r.Platform.RuntimeOS, component)); err == nil && versionObj != nil {
		if name, ok, _ := optString(versionObj, "name", ""); ok {
			manifest["version"] = name
		}
	}

	data, err := json.Marshal(manifest)
	if err != nil {
		return nil, err
	}
	if err := shared.WriteFileAtomic(manifestFile, data); err != nil {
		return nil, err
	}
	return manifest, nil
}
