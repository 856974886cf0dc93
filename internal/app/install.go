package app

import (
	"context"
	"strings"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"portacraft/internal/core"
	"portacraft/internal/pipeline"
	"portacraft/internal/types"
)

// Install resolves and downloads everything the requested version needs, then
// writes an install report. The watcher observes progress; nil is valid.
func (s Service) Install(ctx context.Context, req InstallRequest, watcher pipeline.Watcher) (InstallResult, error) {
	sequence, err := s.InstallSequence(req, watcher)
	if err != nil {
		return InstallResult{}, err
	}
	if err := sequence.Run(ctx); err != nil {
		return InstallResult{}, err
	}
	return installResult(sequence.State())
}

// InstallSequence builds the stock install sequence without running it, so
// callers can reshape it around the named tasks first.
func (s Service) InstallSequence(req InstallRequest, watcher pipeline.Watcher) (*pipeline.Sequence, error) {
	version := strings.TrimSpace(req.Version)
	if version == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("version is required")
	}
	mainDir := strings.TrimSpace(req.MainDir)
	if mainDir == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("main directory is required")
	}

	platform := types.CurrentPlatform()
	log.Debug().Str("version", version).Str("os", platform.OS).Str("arch", platform.Arch).Msg("preparing install")

	sequence := pipeline.NewSequence(watcher,
		metadataTask{repo: s.Repo, manifest: s.Manifest, version: version},
		clientTask{},
		assetsTask{fetch: s.Fetch, objectsURL: s.ResourcesURL},
		librariesTask{platform: platform, features: req.Features, repoURL: s.LibrariesURL},
		loggerTask{},
		runtimeTask{fetch: s.Fetch, indexURL: s.JVMIndexURL, platform: platform},
		downloadTask{engine: s.Download, workers: req.Workers},
		argsTask{resolver: core.ArgsResolver{
			Platform:        platform,
			Features:        req.Features,
			Username:        req.Username,
			LauncherName:    req.LauncherName,
			LauncherVersion: req.LauncherVersion,
		}},
		reportTask{writer: s.Reports, clock: s.Clock},
	)
	if req.NoRuntime {
		if err := sequence.Remove(TaskRuntime); err != nil {
			return nil, err
		}
	}

	install := types.NewInstallContext(mainDir, strings.TrimSpace(req.WorkDir))
	if err := sequence.State().Insert(install); err != nil {
		return nil, err
	}
	return sequence, nil
}

func installResult(state *pipeline.State) (InstallResult, error) {
	resolved, err := pipeline.Must[ResolvedVersion](state)
	if err != nil {
		return InstallResult{}, err
	}
	args, err := pipeline.Must[*core.Args](state)
	if err != nil {
		return InstallResult{}, err
	}
	report, err := pipeline.Must[ReportArtifact](state)
	if err != nil {
		return InstallResult{}, err
	}
	return InstallResult{
		Version:    resolved.Head.ID,
		Chain:      resolved.Chain,
		Args:       args,
		Report:     report.Report,
		ReportPath: report.Path,
	}, nil
}
