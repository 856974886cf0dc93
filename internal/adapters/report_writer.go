package adapters

import (
	"fmt"
	"path/filepath"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"portacraft/internal/ports"
	"portacraft/internal/shared"
	"portacraft/internal/types"
)

// reportFileName is the install report written into the version directory.
const reportFileName = "install-report.yaml"

// YAMLReportWriter persists install reports as yaml files.
type YAMLReportWriter struct{}

var _ ports.ReportWriterPort = YAMLReportWriter{}

// WriteReport writes the report under dir and returns the file path.
func (YAMLReportWriter) WriteReport(dir string, report types.InstallReport) (string, error) {
	data, err := yaml.Marshal(&report)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to encode install report for %s", report.Version)).
			WithCause(err)
	}
	path := filepath.Join(dir, reportFileName)
	if err := shared.WriteFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}
