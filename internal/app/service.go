package app

import (
	"path/filepath"
	"time"

	"portacraft/internal/adapters"
	"portacraft/internal/ports"
)

// Service aggregates the ports driving installations. Endpoints default to the
// official infrastructure and can be swapped for mirrors or test servers.
type Service struct {
	Repo         ports.VersionRepositoryPort
	Manifest     ports.ManifestPort
	Fetch        ports.MetaFetchPort
	Download     ports.DownloadPort
	Reports      ports.ReportWriterPort
	ResourcesURL string
	LibrariesURL string
	JVMIndexURL  string
	Clock        func() time.Time
}

// NewService wires the stock adapters, caching the manifest index under the
// versions directory of mainDir.
func NewService(mainDir string) Service {
	repo := adapters.NewHTTPVersionRepository(
		DefaultManifestURL,
		filepath.Join(mainDir, "versions", "version_manifest.json"),
		0,
	)
	return Service{
		Repo:         repo,
		Manifest:     repo,
		Fetch:        adapters.NewHTTPMetaFetcher(0),
		Download:     adapters.NewHTTPDownloadEngine(),
		Reports:      adapters.YAMLReportWriter{},
		ResourcesURL: DefaultResourcesURL,
		LibrariesURL: DefaultLibrariesURL,
		JVMIndexURL:  DefaultJVMIndexURL,
		Clock:        time.Now,
	}
}
