package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-recruiter-backend/internal/domain"
	"go-recruiter-backend/pkg/apperror"

	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv"
)

var exportColumns = []string{"id", "full_name", "email", "phone_number", "status", "cv_path", "document_path", "applied_at", "updated_at"}

var exportHeaders = map[string]string{
	"id":            "APPLICATION ID",
	"full_name":     "FULL NAME",
	"email":         "EMAIL",
	"phone_number":  "PHONE NUMBER",
	"status":        "STATUS",
	"cv_path":       "CV",
	"document_path": "SUPPORTING DOCUMENT",
	"applied_at":    "APPLIED AT",
	"updated_at":    "UPDATED AT",
}

type exportUsecase struct {
	appRepo    domain.ApplicationRepository
	careerRepo domain.CareerRepository
	now        func() time.Time
}

func NewExportUsecase(appRepo domain.ApplicationRepository, careerRepo domain.CareerRepository) domain.ExportUsecase {
	return &exportUsecase{appRepo: appRepo, careerRepo: careerRepo, now: time.Now}
}

// ExportApplications exports every application for a career to Excel or CSV
func (u *exportUsecase) ExportApplications(ctx context.Context, careerID int64, format string) (*domain.ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = domain.ExportFormatXLSX
	}
	if format != domain.ExportFormatXLSX && format != domain.ExportFormatCSV {
		return nil, apperror.BadRequest(fmt.Sprintf("Unsupported export format: %s", format))
	}

	if _, err := u.careerRepo.GetByID(ctx, careerID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Career not found")
		}
		return nil, apperror.Internal(err)
	}

	apps, err := u.appRepo.GetByCareerID(ctx, careerID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to fetch applications for export: %w", err))
	}

	base := fmt.Sprintf("career_%d_applications_%s", careerID, u.now().Format("20060102_150405"))
	if format == domain.ExportFormatCSV {
		data, err := exportCSV(apps)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		return &domain.ExportFile{Filename: base + ".csv", ContentType: csvContentType, Data: data}, nil
	}

	data, err := exportExcel(apps)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.ExportFile{Filename: base + ".xlsx", ContentType: xlsxContentType, Data: data}, nil
}

// exportExcel generates an Excel file from application rows
func exportExcel(apps []domain.Application) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Applications"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, exportHeaders[col])
	}

	// Dark blue header with white text
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, app := range apps {
		for colIdx, col := range exportColumns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, fieldValue(app, col))
		}
	}

	for i := range exportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 22)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// exportCSV generates a CSV file from application rows
func exportCSV(apps []domain.Application) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportColumns); err != nil {
		return nil, err
	}
	row := make([]string, len(exportColumns))
	for _, app := range apps {
		for i, col := range exportColumns {
			row[i] = fmt.Sprint(fieldValue(app, col))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}
	return buf.Bytes(), nil
}

func fieldValue(a domain.Application, field string) any {
	switch field {
	case "id":
		return a.ID
	case "full_name":
		return a.FullName
	case "email":
		return a.Email
	case "phone_number":
		return a.PhoneNumber
	case "status":
		return strings.ToUpper(string(a.Status))
	case "cv_path":
		return a.CVPath
	case "document_path":
		if a.DocumentPath == nil {
			return ""
		}
		return *a.DocumentPath
	case "applied_at":
		return a.CreatedAt.Format("2006-01-02 15:04")
	case "updated_at":
		return a.UpdatedAt.Format("2006-01-02 15:04")
	}
	return ""
}
