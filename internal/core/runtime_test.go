package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portacraft/internal/shared"
	"portacraft/internal/types"
)

const runtimeIndexURL = "https://meta.example.com/jvm/all.json"

func runtimeFetcher(component string, manifestURL string) *fakeFetcher {
	return &fakeFetcher{docs: map[string]map[string]any{
		runtimeIndexURL: {
			"linux": map[string]any{
				component: []any{
					map[string]any{
						"manifest": map[string]any{"url": manifestURL},
						"version":  map[string]any{"name": "17.0.8"},
					},
				},
			},
		},
		manifestURL: {
			"files": map[string]any{
				"bin/java": map[string]any{
					"type":       "file",
					"executable": true,
					"downloads": map[string]any{
						"raw": map[string]any{
							"url":  "https://objects.example.com/java",
							"size": float64(100),
							"sha1": "1111111111111111111111111111111111111111",
						},
					},
				},
				"conf": map[string]any{"type": "directory"},
			},
		},
	}}
}

func TestRuntimeResolver(t *testing.T) {
	install := testInstall(t)
	fetch := runtimeFetcher("java-runtime-gamma", "https://meta.example.com/jvm/gamma.json")
	metadata := map[string]any{
		"javaVersion": map[string]any{"component": "java-runtime-gamma", "majorVersion": float64(17)},
	}

	dl := NewDownloadList()
	resolver := RuntimeResolver{Fetch: fetch, IndexURL: runtimeIndexURL, Platform: linuxPlatform()}
	result, err := resolver.Resolve(t.Context(), install, metadata, dl, nil)
	require.NoError(t, err)

	assert.Equal(t, "java-runtime-gamma", result.Component)
	assert.Equal(t, "17.0.8", result.Version)
	assert.Equal(t, filepath.Join(install.JVMDir, "java-runtime-gamma", "bin", "java"), result.BinPath)
	assert.Equal(t, 1, result.Files)

	require.Equal(t, 1, dl.Count())
	entry := dl.Entries()[0]
	assert.True(t, entry.Executable)
	assert.Equal(t, filepath.Join(install.JVMDir, "java-runtime-gamma", "bin", "java"), entry.Dst)

	// The component manifest is cached with the version copied in.
	data, err := os.ReadFile(filepath.Join(install.JVMDir, "java-runtime-gamma.json"))
	require.NoError(t, err)
	var cached map[string]any
	require.NoError(t, json.Unmarshal(data, &cached))
	assert.Equal(t, "17.0.8", cached["version"])
}

func TestRuntimeResolverDefaultsComponent(t *testing.T) {
	install := testInstall(t)
	fetch := runtimeFetcher("jre-legacy", "https://meta.example.com/jvm/legacy.json")

	dl := NewDownloadList()
	resolver := RuntimeResolver{Fetch: fetch, IndexURL: runtimeIndexURL, Platform: linuxPlatform()}
	result, err := resolver.Resolve(t.Context(), install, map[string]any{}, dl, nil)
	require.NoError(t, err)
	assert.Equal(t, "jre-legacy", result.Component)
}

func TestRuntimeResolverCachedManifestSkipsIndex(t *testing.T) {
	install := testInstall(t)
	manifest := map[string]any{"version": "17.0.8", "files": map[string]any{}}
	data, err := json.Marshal(manifest)
	require.NoError(t, err)
	require.NoError(t, shared.WriteFileAtomic(filepath.Join(install.JVMDir, "jre-legacy.json"), data))

	fetch := &fakeFetcher{}
	resolver := RuntimeResolver{Fetch: fetch, IndexURL: runtimeIndexURL, Platform: linuxPlatform()}
	result, err := resolver.Resolve(t.Context(), install, map[string]any{}, NewDownloadList(), nil)
	require.NoError(t, err)
	assert.Equal(t, "17.0.8", result.Version)
	assert.Empty(t, fetch.calls)
}

func TestRuntimeResolverUnsupportedPlatform(t *testing.T) {
	install := testInstall(t)
	fetch := runtimeFetcher("jre-legacy", "https://meta.example.com/jvm/legacy.json")

	// A platform with no runtime distribution key fails before any fetch.
	platform := types.PlatformInfo{OS: "freebsd", Arch: "x86_64"}
	resolver := RuntimeResolver{Fetch: fetch, IndexURL: runtimeIndexURL, Platform: platform}
	_, err := resolver.Resolve(t.Context(), install, map[string]any{}, NewDownloadList(), nil)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), MsgNoCompatibleRuntime)
	assert.Empty(t, fetch.calls)

	// A platform the index does not list fails after consulting it.
	arm := types.PlatformInfo{OS: "linux", Arch: "arm32", RuntimeOS: "linux-arm"}
	resolver = RuntimeResolver{Fetch: fetch, IndexURL: runtimeIndexURL, Platform: arm}
	_, err = resolver.Resolve(t.Context(), install, map[string]any{}, NewDownloadList(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), MsgNoCompatibleRuntime)
}
