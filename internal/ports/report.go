package ports

import "portacraft/internal/types"

// ReportWriterPort persists the final install report.
type ReportWriterPort interface {
	WriteReport(dir string, report types.InstallReport) (string, error)
}
