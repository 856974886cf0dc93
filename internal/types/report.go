package types

// InstallReport summarizes one completed installation, written next to the
// working directory as a yaml artifact.
type InstallReport struct {
	Version      string             `yaml:"version"`
	VersionChain []string           `yaml:"version_chain"`
	MainClass    string             `yaml:"main_class,omitempty"`
	AssetIndex   string             `yaml:"asset_index,omitempty"`
	AssetCount   int                `yaml:"asset_count"`
	ClassLibs    int                `yaml:"class_libraries"`
	NativeLibs   int                `yaml:"native_libraries"`
	Runtime      string             `yaml:"runtime,omitempty"`
	Download     InstallReportFetch `yaml:"download"`
	CreatedAt    string             `yaml:"created_at"`
}

// InstallReportFetch summarizes the download batch of an installation.
type InstallReportFetch struct {
	Entries int   `yaml:"entries"`
	Bytes   int64 `yaml:"bytes"`
	Skipped int   `yaml:"skipped"`
}
