package core

import (
	"path/filepath"

	"portacraft/internal/types"
)

// LoggerResult is the typed outcome of logging-config resolution: the JVM
// argument template (with a ${path} placeholder) and the local config path.
type LoggerResult struct {
	Argument string
	Path     string
}

// ResolveLogger resolves the client logging configuration. It returns nil when
// the metadata declares none.
func ResolveLogger(install types.InstallContext, metadata map[string]any, dl *DownloadList, sink EventSink) (*LoggerResult, error) {
	logging, err := optObject(metadata, "logging", "metadata:")
	if err != nil {
		return nil, err
	}
	if logging == nil {
		return nil, nil
	}
	client, err := optObject(logging, "client", "metadata: /logging")
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, nil
	}

	argument, err := asString(client["argument"], "metadata: /logging/client/argument")
	if err != nil {
		return nil, err
	}
	fileInfo, err := asObject(client["file"], "metadata: /logging/client/file")
	if err != nil {
		return nil, err
	}
	fileID, err := asString(fileInfo["id"], "metadata: /logging/client/file/id")
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(install.AssetsDir, "log_configs", fileID)
	entry, err := parseDownloadDescriptor(fileInfo, configPath, fileID, "metadata: /logging/client/file")
	if err != nil {
		return nil, err
	}
	if err := dl.Add(entry, true); err != nil {
		return nil, err
	}

	sink.emit(types.LoggerFoundEvent{ID: fileID})
	return &LoggerResult{Argument: argument, Path: configPath}, nil
}
