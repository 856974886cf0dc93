package types

import (
	"path/filepath"

	"github.com/google/uuid"
)

// InstallContext defines the directory layout of an installation: where version
// metadata, assets, libraries and managed runtimes are stored, plus a working
// directory the installed client runs from.
type InstallContext struct {
	WorkDir      string
	VersionsDir  string
	AssetsDir    string
	LibrariesDir string
	JVMDir       string
	BinDir       string
}

// NewInstallContext builds a context rooted at mainDir. workDir defaults to
// mainDir when empty.
func NewInstallContext(mainDir string, workDir string) InstallContext {
	if workDir == "" {
		workDir = mainDir
	}
	return InstallContext{
		WorkDir:      workDir,
		VersionsDir:  filepath.Join(mainDir, "versions"),
		AssetsDir:    filepath.Join(mainDir, "assets"),
		LibrariesDir: filepath.Join(mainDir, "libraries"),
		JVMDir:       filepath.Join(mainDir, "jvm"),
		BinDir:       filepath.Join(workDir, "bin"),
	}
}

// VersionDir returns the directory holding metadata and the client archive of
// one version id.
func (c InstallContext) VersionDir(id string) string {
	return filepath.Join(c.VersionsDir, id)
}

// GenBinDir returns a fresh randomly named directory under the bin directory,
// used for per-run temporary files such as extracted natives. The directory is
// not created, only its path is derived.
func (c InstallContext) GenBinDir() string {
	return filepath.Join(c.BinDir, uuid.NewString())
}
