package types

// SizeUnknown marks a download entry whose byte size is not declared by the
// metadata. Such entries are scheduled as if they were 1 MiB.
const SizeUnknown int64 = -1

// DownloadEntry is one artifact fetch request. Size and Sha1 take part in the
// entry identity and must not change once the entry is enqueued.
type DownloadEntry struct {
	// URL is the source location, restricted to http and https schemes.
	URL string
	// Dst is the destination file path.
	Dst string
	// Size is the expected byte size, SizeUnknown when not declared.
	Size int64
	// Sha1 is the expected hex checksum, empty when not declared.
	Sha1 string
	// Name is a display name for progress reporting, defaults to the URL.
	Name string
	// Executable requests the executable bit to be restored after download.
	Executable bool
}

// FailureCode categorizes a terminal download failure.
type FailureCode string

const (
	FailureConnection  FailureCode = "connection"
	FailureNotFound    FailureCode = "not_found"
	FailureInvalidSize FailureCode = "invalid_size"
	FailureInvalidSha1 FailureCode = "invalid_sha1"
)

// DownloadOutcome is the terminal result of one submitted entry. Every
// submitted entry yields exactly one outcome; redirected entries resolve to the
// outcome of their original entry.
type DownloadOutcome struct {
	Entry DownloadEntry
	// Code is empty on success.
	Code FailureCode
	// Size is the number of bytes transferred for this entry.
	Size int64
}

// Failed reports whether the outcome is a failure.
func (o DownloadOutcome) Failed() bool {
	return o.Code != ""
}

// DownloadProgress is an incremental progress notification emitted while a
// batch is running.
type DownloadProgress struct {
	Entry DownloadEntry
	// Count is the number of entries that reached a terminal outcome so far.
	Count int
	// Size is the number of bytes transferred for the current entry.
	Size int64
	// Speed is the smoothed instantaneous transfer speed, in bytes per second.
	Speed float64
	// Done is true when the current entry finished successfully.
	Done bool
}
