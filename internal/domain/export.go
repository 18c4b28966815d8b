package domain

import "context"

const (
	ExportFormatXLSX = "xlsx"
	ExportFormatCSV  = "csv"
)

type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportUsecase interface {
	ExportApplications(ctx context.Context, careerID int64, format string) (*ExportFile, error)
}
