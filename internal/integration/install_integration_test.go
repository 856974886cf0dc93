package integration

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"portacraft/internal/adapters"
	"portacraft/internal/app"
	"portacraft/internal/pipeline"
	"portacraft/internal/types"
)

var (
	clientPayload  = []byte("client archive bytes")
	libraryPayload = []byte("library archive bytes")
	assetPayload   = []byte("asset object bytes")
	logPayload     = []byte("<Configuration/>")
)

func sha1Hex(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// fixtureServer serves a minimal but complete distribution: a manifest index,
// one version document, the client archive, an asset index with one object,
// one library and a logging configuration.
func fixtureServer(t *testing.T) *httptest.Server {
	t.Helper()

	assetHash := sha1Hex(assetPayload)
	var server *httptest.Server

	versionDoc := func() []byte {
		doc := map[string]any{
			"id":        "1.20.1",
			"type":      "release",
			"mainClass": "net.client.Main",
			"downloads": map[string]any{
				"client": map[string]any{
					"url":  server.URL + "/client.jar",
					"size": len(clientPayload),
					"sha1": sha1Hex(clientPayload),
				},
			},
			"assetIndex": map[string]any{
				"id":  "17",
				"url": server.URL + "/assets/17.json",
			},
			"libraries": []any{
				map[string]any{
					"name": "com.example:lib:1.0",
					"downloads": map[string]any{
						"artifact": map[string]any{
							"url":  server.URL + "/libs/com/example/lib/1.0/lib-1.0.jar",
							"size": len(libraryPayload),
							"sha1": sha1Hex(libraryPayload),
						},
					},
				},
			},
			"logging": map[string]any{
				"client": map[string]any{
					"argument": "-Dlog4j.configurationFile=${path}",
					"file": map[string]any{
						"id":   "client-1.12.xml",
						"url":  server.URL + "/log_configs/client-1.12.xml",
						"size": len(logPayload),
						"sha1": sha1Hex(logPayload),
					},
				},
			},
			"arguments": map[string]any{
				"jvm":  []any{"-cp", "${classpath}"},
				"game": []any{"--username", "${auth_player_name}", "--assetIndex", "${assets_index_name}"},
			},
		}
		data, err := json.Marshal(doc)
		require.NoError(t, err)
		return data
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(types.ManifestIndex{
			Latest: map[string]string{"release": "1.20.1"},
			Versions: []types.VersionInfo{
				{ID: "1.20.1", Type: "release", URL: server.URL + "/versions/1.20.1.json", Sha1: sha1Hex(versionDoc())},
			},
		})
	})
	mux.HandleFunc("/versions/1.20.1.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(versionDoc())
	})
	mux.HandleFunc("/assets/17.json", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"objects": map[string]any{
				"icons/icon.png": map[string]any{"hash": assetHash, "size": len(assetPayload)},
			},
		})
	})
	mux.HandleFunc(fmt.Sprintf("/objects/%s/%s", assetHash[:2], assetHash), func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(assetPayload)
	})
	mux.HandleFunc("/client.jar", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(clientPayload)
	})
	mux.HandleFunc("/libs/com/example/lib/1.0/lib-1.0.jar", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(libraryPayload)
	})
	mux.HandleFunc("/log_configs/client-1.12.xml", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(logPayload)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func fixtureService(server *httptest.Server, mainDir string) app.Service {
	repo := adapters.NewHTTPVersionRepository(
		server.URL+"/manifest.json",
		filepath.Join(mainDir, "versions", "version_manifest.json"),
		0,
	)
	return app.Service{
		Repo:         repo,
		Manifest:     repo,
		Fetch:        adapters.NewHTTPMetaFetcher(0),
		Download:     adapters.NewHTTPDownloadEngine(),
		Reports:      adapters.YAMLReportWriter{},
		ResourcesURL: server.URL + "/objects/",
		LibrariesURL: server.URL + "/libs/",
		JVMIndexURL:  server.URL + "/jvm/all.json",
		Clock:        func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestInstallEndToEnd(t *testing.T) {
	server := fixtureServer(t)
	mainDir := t.TempDir()
	service := fixtureService(server, mainDir)

	result, err := service.Install(t.Context(), app.InstallRequest{
		MainDir:   mainDir,
		Version:   "release",
		Username:  "Alex",
		NoRuntime: true,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "1.20.1", result.Version)
	assert.Equal(t, []string{"1.20.1"}, result.Chain)

	clientFile := filepath.Join(mainDir, "versions", "1.20.1", "1.20.1.jar")
	data, err := os.ReadFile(clientFile)
	require.NoError(t, err)
	assert.Equal(t, clientPayload, data)

	assetHash := sha1Hex(assetPayload)
	assert.FileExists(t, filepath.Join(mainDir, "assets", "objects", assetHash[:2], assetHash))
	assert.FileExists(t, filepath.Join(mainDir, "libraries", "com", "example", "lib", "1.0", "lib-1.0.jar"))
	assert.FileExists(t, filepath.Join(mainDir, "assets", "log_configs", "client-1.12.xml"))

	full := result.Args.FullArgs()
	assert.Contains(t, full, "net.client.Main")
	assert.Contains(t, full, "Alex")
	assert.Contains(t, full, "17")

	// The install report is written next to the version metadata.
	reportData, err := os.ReadFile(result.ReportPath)
	require.NoError(t, err)
	var report types.InstallReport
	require.NoError(t, yaml.Unmarshal(reportData, &report))
	assert.Equal(t, "1.20.1", report.Version)
	assert.Equal(t, 1, report.AssetCount)
	assert.Equal(t, 1, report.ClassLibs)
	assert.Equal(t, 4, report.Download.Entries)
	assert.Equal(t, "2025-06-01T12:00:00Z", report.CreatedAt)
}

func TestInstallIsIdempotent(t *testing.T) {
	server := fixtureServer(t)
	mainDir := t.TempDir()
	service := fixtureService(server, mainDir)

	request := app.InstallRequest{MainDir: mainDir, Version: "1.20.1", NoRuntime: true}
	first, err := service.Install(t.Context(), request, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Report.Download.Entries)

	// A second run finds every artifact on disk and downloads nothing.
	second, err := service.Install(t.Context(), request, nil)
	require.NoError(t, err)
	assert.Zero(t, second.Report.Download.Entries)
	assert.NotZero(t, second.Report.Download.Skipped)
}

func TestInstallUnknownVersion(t *testing.T) {
	server := fixtureServer(t)
	mainDir := t.TempDir()
	service := fixtureService(server, mainDir)

	_, err := service.Install(t.Context(), app.InstallRequest{
		MainDir:   mainDir,
		Version:   "9.9.9",
		NoRuntime: true,
	}, nil)
	require.Error(t, err)
}

func TestSearchVersions(t *testing.T) {
	server := fixtureServer(t)
	service := fixtureService(server, t.TempDir())

	result, err := service.Search(t.Context(), app.SearchRequest{Query: "1.20"})
	require.NoError(t, err)
	require.Len(t, result.Versions, 1)
	assert.Equal(t, "1.20.1", result.Versions[0].ID)

	result, err = service.Search(t.Context(), app.SearchRequest{Kind: "snapshot"})
	require.NoError(t, err)
	assert.Empty(t, result.Versions)
}

func TestInstallSequenceReshaping(t *testing.T) {
	server := fixtureServer(t)
	mainDir := t.TempDir()
	service := fixtureService(server, mainDir)

	watcher := &countingWatcher{}
	sequence, err := service.InstallSequence(app.InstallRequest{
		MainDir: mainDir,
		Version: "1.20.1",
	}, watcher)
	require.NoError(t, err)

	// A flavor install drops the runtime and grafts its own step after the
	// libraries task.
	require.NoError(t, sequence.Remove(app.TaskRuntime))
	marker := &markerTask{}
	require.NoError(t, sequence.InsertAfter(app.TaskLibraries, marker))

	require.NoError(t, sequence.Run(t.Context()))
	assert.True(t, marker.ran)
	assert.True(t, watcher.begun)
	assert.True(t, watcher.ended)
	assert.NotZero(t, watcher.events)
}

type countingWatcher struct {
	pipeline.NopWatcher
	begun  bool
	ended  bool
	events int
}

func (w *countingWatcher) OnBegin(*pipeline.State) { w.begun = true }
func (w *countingWatcher) OnEnd(*pipeline.State)   { w.ended = true }
func (w *countingWatcher) OnEvent(types.Event)     { w.events++ }

type markerTask struct {
	pipeline.BaseTask
	ran bool
}

func (*markerTask) Name() string { return "marker" }

func (m *markerTask) Execute(context.Context, *pipeline.State, pipeline.Watcher) error {
	m.ran = true
	return nil
}
