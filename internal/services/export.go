package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hareesh182003/Interview-Agent/internal/models"
)

const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"

	exportSheet = "Candidates"
)

var exportHeaders = []string{
	"ID",
	"Session ID",
	"Match %",
	"Tier",
	"Status",
	"Contacted",
	"Matching Skills",
	"Strengths",
	"Gaps",
	"Education",
	"Experience",
	"Notes",
	"Qualified On",
}

type ExportService interface {
	Export(w io.Writer, format string, candidates []models.QualifiedCandidate) error
	ContentType(format string) (string, error)
}

type exportService struct{}

func NewExportService() ExportService {
	return &exportService{}
}

func (e *exportService) ContentType(format string) (string, error) {
	switch format {
	case ExportFormatCSV:
		return "text/csv", nil
	case ExportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	default:
		return "", NewValidationError("format", fmt.Errorf("unsupported export format %q", format))
	}
}

func (e *exportService) Export(w io.Writer, format string, candidates []models.QualifiedCandidate) error {
	switch format {
	case ExportFormatCSV:
		return writeCandidatesCSV(w, candidates)
	case ExportFormatXLSX:
		return writeCandidatesXLSX(w, candidates)
	default:
		return NewValidationError("format", fmt.Errorf("unsupported export format %q", format))
	}
}

func candidateRow(c *models.QualifiedCandidate) []string {
	return []string{
		c.ID.String(),
		c.AnalysisSessionID.String(),
		strconv.FormatFloat(c.MatchPercentage, 'f', 2, 64),
		c.Tier(),
		string(c.Status),
		strconv.FormatBool(c.IsContacted),
		strings.Join(NormalizeSkills(c.MatchingSkills), "; "),
		strings.Join(c.HighlightedStrengths, "; "),
		strings.Join(c.IdentifiedGaps, "; "),
		c.MatchingEducation,
		c.MatchingExperience,
		c.Notes,
		c.QualificationDate.UTC().Format("2006-01-02 15:04:05"),
	}
}

func writeCandidatesCSV(w io.Writer, candidates []models.QualifiedCandidate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeaders); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := range candidates {
		if err := cw.Write(candidateRow(&candidates[i])); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeCandidatesXLSX(w io.Writer, candidates []models.QualifiedCandidate) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i := range candidates {
		row := candidateRow(&candidates[i])
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		// keep the score numeric so it sorts in a spreadsheet
		values[2] = candidates[i].MatchPercentage

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
