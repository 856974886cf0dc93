package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"portacraft/internal/types"
)

// Error message prefixes used by the CLI to distinguish fatal conditions that
// share an error code.
const (
	MsgTooManyParents      = "too many parent versions"
	MsgNoCompatibleRuntime = "no compatible runtime"
	MsgUnresolvedLibrary   = "unresolved library"
	MsgDownloadFailed      = "download failed"
)

// SchemaError reports metadata that is present but structurally wrong. The
// path identifies the offending JSON location.
func SchemaError(path string, want string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("%s must be %s", path, want))
}

// VersionNotFoundError reports a version id absent from both the local cache
// and the manifest index.
func VersionNotFoundError(id string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("version not found: %s", id))
}

// TooManyParentsError reports an inheritance chain exceeding the depth limit.
// The partial chain resolved so far is carried in the message.
func TooManyParentsError(chain []string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("%s: %s", MsgTooManyParents, strings.Join(chain, " -> ")))
}

// RuntimePlatformError reports that no managed runtime distribution exists for
// the current platform, distinguishable from a remote not-found condition.
func RuntimePlatformError(reason string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("%s: %s", MsgNoCompatibleRuntime, reason))
}

// UnresolvedLibraryError reports a library with neither a usable download
// descriptor nor an already-present local file.
func UnresolvedLibraryError(spec LibrarySpecifier) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("%s: %s", MsgUnresolvedLibrary, spec))
}

// DownloadFailedError aggregates terminal failures of a download batch into a
// single error carrying per-entry detail.
func DownloadFailedError(failures []types.DownloadOutcome) error {
	details := make([]string, 0, len(failures))
	for _, outcome := range failures {
		details = append(details, fmt.Sprintf("%s: %s (%s)", outcome.Code, outcome.Entry.Name, outcome.Entry.URL))
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(fmt.Sprintf("%s: %d entries", MsgDownloadFailed, len(failures))).
		WithCause(fmt.Errorf("%s", strings.Join(details, "; ")))
}
