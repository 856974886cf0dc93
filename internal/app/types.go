package app

import (
	"portacraft/internal/core"
	"portacraft/internal/types"
)

type InstallRequest struct {
	MainDir         string
	WorkDir         string
	Version         string
	Features        map[string]bool
	Workers         int
	Username        string
	LauncherName    string
	LauncherVersion string
	NoRuntime       bool
}

type InstallResult struct {
	Version    string
	Chain      []string
	Args       *core.Args
	Report     types.InstallReport
	ReportPath string
}

type SearchRequest struct {
	Query string
	Kind  string
}

type SearchResult struct {
	Versions []types.VersionInfo
}
