package types

// Event is the closed set of progress and lifecycle notifications emitted by
// pipeline tasks and the download engine. The marker method keeps the set
// closed to this package so watchers can switch exhaustively.
type Event interface {
	isEvent()
}

// VersionLoadingEvent is emitted before a version node of the inheritance
// chain is loaded from the local cache.
type VersionLoadingEvent struct {
	Version string
}

// VersionFetchingEvent is emitted when a version node is missing or invalid
// locally and has to be fetched from the manifest index.
type VersionFetchingEvent struct {
	Version string
}

// VersionLoadedEvent is emitted once a version node is resolved.
type VersionLoadedEvent struct {
	Version string
}

// ClientFoundEvent is emitted when the client archive of the root version is
// resolved, either from a download descriptor or an existing local file.
type ClientFoundEvent struct{}

// AssetsResolvedEvent is emitted after the asset index has been enumerated.
type AssetsResolvedEvent struct {
	IndexVersion string
	Count        int
}

// LibrariesResolvedEvent is emitted after library resolution.
type LibrariesResolvedEvent struct {
	ClassCount  int
	NativeCount int
	Excluded    []string
}

// LoggerFoundEvent is emitted when a logging configuration is declared by the
// metadata.
type LoggerFoundEvent struct {
	ID string
}

// RuntimeLoadingEvent is emitted before the managed runtime is resolved.
type RuntimeLoadingEvent struct{}

// RuntimeLoadedEvent is emitted once the managed runtime is resolved.
type RuntimeLoadedEvent struct {
	Version string
	Files   int
}

// DownloadStartEvent is emitted when the download batch starts.
type DownloadStartEvent struct {
	Workers int
	Entries int
	Size    int64
}

// DownloadProgressEvent wraps an incremental progress notification.
type DownloadProgressEvent struct {
	Progress DownloadProgress
}

// DownloadCompleteEvent is emitted after every entry reached a terminal
// outcome and all finalize callbacks ran.
type DownloadCompleteEvent struct{}

func (VersionLoadingEvent) isEvent()    {}
func (VersionFetchingEvent) isEvent()   {}
func (VersionLoadedEvent) isEvent()     {}
func (ClientFoundEvent) isEvent()       {}
func (AssetsResolvedEvent) isEvent()    {}
func (LibrariesResolvedEvent) isEvent() {}
func (LoggerFoundEvent) isEvent()       {}
func (RuntimeLoadingEvent) isEvent()    {}
func (RuntimeLoadedEvent) isEvent()     {}
func (DownloadStartEvent) isEvent()     {}
func (DownloadProgressEvent) isEvent()  {}
func (DownloadCompleteEvent) isEvent()  {}
