package services

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/hareesh182003/Interview-Agent/internal/models"
)

func exportFixture() []models.QualifiedCandidate {
	return []models.QualifiedCandidate{
		{
			ID:                   uuid.MustParse("11111111-1111-1111-1111-111111111111"),
			AnalysisSessionID:    uuid.MustParse("22222222-2222-2222-2222-222222222222"),
			MatchPercentage:      91.5,
			MatchingSkills:       datatypes.JSONSlice[string]{"SQL", "Go"},
			HighlightedStrengths: datatypes.JSONSlice[string]{"Ownership", "Mentoring"},
			IdentifiedGaps:       datatypes.JSONSlice[string]{},
			MatchingEducation:    "MSc, Distributed Systems",
			MatchingExperience:   "8 years",
			Status:               models.CandidateStatusContacted,
			IsContacted:          true,
			Notes:                "Said \"yes\" to onsite",
			QualificationDate:    time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
		},
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExportService().Export(&buf, ExportFormatCSV, exportFixture()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, exportHeaders, records[0])
	assert.Equal(t, []string{
		"11111111-1111-1111-1111-111111111111",
		"22222222-2222-2222-2222-222222222222",
		"91.50",
		"HIGHLY QUALIFIED",
		"CONTACTED",
		"true",
		"Go; SQL",
		"Ownership; Mentoring",
		"",
		"MSc, Distributed Systems",
		"8 years",
		`Said "yes" to onsite`,
		"2024-06-01 09:30:00",
	}, records[1])
}

func TestExportCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExportService().Export(&buf, ExportFormatCSV, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestExportXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewExportService().Export(&buf, ExportFormatXLSX, exportFixture()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", rows[1][0])
	assert.Equal(t, "91.5", rows[1][2])
	assert.Equal(t, "CONTACTED", rows[1][4])
}

func TestExportUnknownFormat(t *testing.T) {
	service := NewExportService()

	err := service.Export(&bytes.Buffer{}, "pdf", nil)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "format", validationErr.Field)

	_, err = service.ContentType("pdf")
	assert.Error(t, err)

	contentType, err := service.ContentType(ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
}
