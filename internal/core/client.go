package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"portacraft/internal/types"
)

// ResolveClient locates the client archive of the root version. It prefers a
// downloads/client descriptor from the merged metadata and falls back to an
// already-present local file. Having neither is fatal.
func ResolveClient(root *VersionNode, metadata map[string]any, dl *DownloadList, sink EventSink) (string, error) {
	clientFile := root.ClientFile()

	downloads, err := optObject(metadata, "downloads", "metadata:")
	if err != nil {
		return "", err
	}
	if downloads != nil {
		if rawClient, ok := downloads["client"]; ok && rawClient != nil {
			entry, err := parseDownloadDescriptor(rawClient, clientFile, filepath.Base(clientFile), "metadata: /downloads/client")
			if err != nil {
				return "", err
			}
			if err := dl.Add(entry, true); err != nil {
				return "", err
			}
			sink.emit(types.ClientFoundEvent{})
			return clientFile, nil
		}
	}

	if info, err := os.Stat(clientFile); err == nil && !info.IsDir() {
		sink.emit(types.ClientFoundEvent{})
		return clientFile, nil
	}

	return "", errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("client archive not found for version %s", root.ID))
}
