package app

import (
	"context"
	"time"

	"portacraft/internal/core"
	"portacraft/internal/pipeline"
	"portacraft/internal/policies"
	"portacraft/internal/ports"
	"portacraft/internal/types"
)

// Task names of the stock install sequence. Alternate install flavors reshape
// the sequence around these names.
const (
	TaskMetadata  = "metadata"
	TaskClient    = "client"
	TaskAssets    = "assets"
	TaskLibraries = "libraries"
	TaskLogger    = "logger"
	TaskRuntime   = "runtime"
	TaskDownload  = "download"
	TaskArgs      = "args"
	TaskReport    = "report"
)

// ResolvedVersion is the state entry produced by the metadata task: the head
// of the inheritance chain, its flattened document and the chain ids in
// child-first order.
type ResolvedVersion struct {
	Head     *core.VersionNode
	Metadata map[string]any
	Chain    []string
}

// ClientArtifact is the state entry locating the client archive.
type ClientArtifact struct {
	Path string
}

// DownloadStats is the state entry summarizing the batch handed to the
// download engine, captured before execution clears the list.
type DownloadStats struct {
	Entries int
	Bytes   int64
	Skipped int
}

// ReportArtifact is the state entry locating the written install report.
type ReportArtifact struct {
	Path   string
	Report types.InstallReport
}

func eventSink(watcher pipeline.Watcher) core.EventSink {
	return func(event types.Event) { watcher.OnEvent(event) }
}

type metadataTask struct {
	repo     ports.VersionRepositoryPort
	manifest ports.ManifestPort
	version  string
}

func (metadataTask) Name() string { return TaskMetadata }

// Setup seeds the shared download list every resource task appends to.
func (metadataTask) Setup(state *pipeline.State) error {
	return state.Insert(core.NewDownloadList())
}

func (t metadataTask) Execute(ctx context.Context, state *pipeline.State, watcher pipeline.Watcher) error {
	install, err := pipeline.Must[types.InstallContext](state)
	if err != nil {
		return err
	}

	id := t.version
	if id == "release" || id == "snapshot" {
		index, err := t.manifest.Index(ctx)
		if err != nil {
			return err
		}
		id, _ = index.FilterLatest(id)
	}

	resolver := core.MetadataResolver{Repo: t.repo}
	head, err := resolver.Resolve(ctx, install, id, eventSink(watcher))
	if err != nil {
		return err
	}

	chain := head.Recurse()
	ids := make([]string, len(chain))
	for i, node := range chain {
		ids[i] = node.ID
	}
	return state.Insert(ResolvedVersion{Head: head, Metadata: head.Merge(), Chain: ids})
}

type clientTask struct {
	pipeline.BaseTask
}

func (clientTask) Name() string { return TaskClient }

func (clientTask) Execute(_ context.Context, state *pipeline.State, watcher pipeline.Watcher) error {
	resolved, err := pipeline.Must[ResolvedVersion](state)
	if err != nil {
		return err
	}
	dl, err := pipeline.Must[*core.DownloadList](state)
	if err != nil {
		return err
	}
	path, err := core.ResolveClient(resolved.Head, resolved.Metadata, dl, eventSink(watcher))
	if err != nil {
		return err
	}
	return state.Insert(ClientArtifact{Path: path})
}

type assetsTask struct {
	pipeline.BaseTask
	fetch      ports.MetaFetchPort
	objectsURL string
}

func (assetsTask) Name() string { return TaskAssets }

func (t assetsTask) Execute(ctx context.Context, state *pipeline.State, watcher pipeline.Watcher) error {
	install, err := pipeline.Must[types.InstallContext](state)
	if err != nil {
		return err
	}
	resolved, err := pipeline.Must[ResolvedVersion](state)
	if err != nil {
		return err
	}
	dl, err := pipeline.Must[*core.DownloadList](state)
	if err != nil {
		return err
	}
	resolver := core.AssetsResolver{Fetch: t.fetch, ObjectsURL: t.objectsURL}
	assets, err := resolver.Resolve(ctx, install, resolved.Metadata, dl, eventSink(watcher))
	if err != nil {
		return err
	}
	return state.Insert(assets)
}

type librariesTask struct {
	pipeline.BaseTask
	platform types.PlatformInfo
	features map[string]bool
	repoURL  string
}

func (librariesTask) Name() string { return TaskLibraries }

func (t librariesTask) Execute(_ context.Context, state *pipeline.State, watcher pipeline.Watcher) error {
	install, err := pipeline.Must[types.InstallContext](state)
	if err != nil {
		return err
	}
	resolved, err := pipeline.Must[ResolvedVersion](state)
	if err != nil {
		return err
	}
	dl, err := pipeline.Must[*core.DownloadList](state)
	if err != nil {
		return err
	}
	resolver := core.LibrariesResolver{
		Platform:       t.platform,
		Features:       t.features,
		Fixes:          policies.DefaultLibraryFixPolicy(),
		DefaultRepoURL: t.repoURL,
	}
	libraries, err := resolver.Resolve(resolved.Head, install, dl, eventSink(watcher))
	if err != nil {
		return err
	}
	return state.Insert(libraries)
}

type loggerTask struct {
	pipeline.BaseTask
}

func (loggerTask) Name() string { return TaskLogger }

func (loggerTask) Execute(_ context.Context, state *pipeline.State, watcher pipeline.Watcher) error {
	install, err := pipeline.Must[types.InstallContext](state)
	if err != nil {
		return err
	}
	resolved, err := pipeline.Must[ResolvedVersion](state)
	if err != nil {
		return err
	}
	dl, err := pipeline.Must[*core.DownloadList](state)
	if err != nil {
		return err
	}
	logger, err := core.ResolveLogger(install, resolved.Metadata, dl, eventSink(watcher))
	if err != nil {
		return err
	}
	return state.Insert(logger)
}

type runtimeTask struct {
	pipeline.BaseTask
	fetch    ports.MetaFetchPort
	indexURL string
	platform types.PlatformInfo
}

func (runtimeTask) Name() string { return TaskRuntime }

func (t runtimeTask) Execute(ctx context.Context, state *pipeline.State, watcher pipeline.Watcher) error {
	install, err := pipeline.Must[types.InstallContext](state)
	if err != nil {
		return err
	}
	resolved, err := pipeline.Must[ResolvedVersion](state)
	if err != nil {
		return err
	}
	dl, err := pipeline.Must[*core.DownloadList](state)
	if err != nil {
		return err
	}
	resolver := core.RuntimeResolver{Fetch: t.fetch, IndexURL: t.indexURL, Platform: t.platform}
	runtime, err := resolver.Resolve(ctx, install, resolved.Metadata, dl, eventSink(watcher))
	if err != nil {
		return err
	}
	return state.Insert(runtime)
}

type downloadTask struct {
	pipeline.BaseTask
	engine  ports.DownloadPort
	workers int
}

func (downloadTask) Name() string { return TaskDownload }

func (t downloadTask) Execute(ctx context.Context, state *pipeline.State, watcher pipeline.Watcher) error {
	dl, err := pipeline.Must[*core.DownloadList](state)
	if err != nil {
		return err
	}
	stats := DownloadStats{Entries: dl.Count(), Bytes: dl.Size(), Skipped: dl.Skipped()}
	if err := state.Insert(stats); err != nil {
		return err
	}
	return dl.Execute(ctx, t.engine, t.workers, eventSink(watcher))
}

type argsTask struct {
	pipeline.BaseTask
	resolver core.ArgsResolver
}

func (argsTask) Name() string { return TaskArgs }

func (t argsTask) Execute(ctx context.Context, state *pipeline.State, _ pipeline.Watcher) error {
	install, err := pipeline.Must[types.InstallContext](state)
	if err != nil {
		return err
	}
	resolved, err := pipeline.Must[ResolvedVersion](state)
	if err != nil {
		return err
	}
	client, err := pipeline.Must[ClientArtifact](state)
	if err != nil {
		return err
	}
	// Resource results are optional; their tasks may have been removed from
	// the sequence.
	assets, _ := pipeline.Get[*core.AssetsResult](state)
	libraries, _ := pipeline.Get[*core.LibrariesResult](state)
	logger, _ := pipeline.Get[*core.LoggerResult](state)
	runtime, _ := pipeline.Get[*core.RuntimeResult](state)

	args, err := t.resolver.Resolve(ctx, install, resolved.Head, resolved.Metadata, client.Path, libraries, assets, logger, runtime)
	if err != nil {
		return err
	}
	return state.Insert(args)
}

type reportTask struct {
	pipeline.BaseTask
	writer ports.ReportWriterPort
	clock  func() time.Time
}

func (reportTask) Name() string { return TaskReport }

func (t reportTask) Execute(_ context.Context, state *pipeline.State, _ pipeline.Watcher) error {
	resolved, err := pipeline.Must[ResolvedVersion](state)
	if err != nil {
		return err
	}
	report := types.InstallReport{
		Version:      resolved.Head.ID,
		VersionChain: resolved.Chain,
		CreatedAt:    t.clock().UTC().Format(time.RFC3339),
	}
	if args, ok := pipeline.Get[*core.Args](state); ok && args != nil {
		report.MainClass = args.MainClass
	}
	if assets, ok := pipeline.Get[*core.AssetsResult](state); ok && assets != nil {
		report.AssetIndex = assets.IndexVersion
		report.AssetCount = len(assets.Objects)
	}
	if libraries, ok := pipeline.Get[*core.LibrariesResult](state); ok && libraries != nil {
		report.ClassLibs = len(libraries.ClassFiles)
		report.NativeLibs = len(libraries.NativeFiles)
	}
	if runtime, ok := pipeline.Get[*core.RuntimeResult](state); ok && runtime != nil {
		report.Runtime = runtime.Component + " " + runtime.Version
	}
	if stats, ok := pipeline.Get[DownloadStats](state); ok {
		report.Download = types.InstallReportFetch{
			Entries: stats.Entries,
			Bytes:   stats.Bytes,
			Skipped: stats.Skipped,
		}
	}

	path, err := t.writer.WriteReport(resolved.Head.Dir, report)
	if err != nil {
		return err
	}
	return state.Insert(ReportArtifact{Path: path, Report: report})
}
