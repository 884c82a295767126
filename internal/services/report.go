package services

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/hareesh182003/Interview-Agent/internal/models"
)

const (
	reportTitle        = "ATS Resume Analyzer Report"
	reportFont         = "Helvetica"
	reportDefaultColor = "#374151"
)

type ReportService interface {
	WriteSessionReport(w io.Writer, session *models.AnalysisSession) error
}

type reportSection struct {
	Title string
	Color string
	Items []string
	Text  string
	Empty string
}

type reportService struct{}

func NewReportService() ReportService {
	return &reportService{}
}

func sessionReportSections(session *models.AnalysisSession) []reportSection {
	return []reportSection{
		{Title: "Matched Skills", Color: "#4f46e5", Items: NormalizeSkills(session.MatchingSkills), Empty: "No matching skills found."},
		{Title: "Key Strengths", Color: "#10b981", Items: session.HighlightedStrengths, Empty: "No strong areas detected."},
		{Title: "Identified Gaps", Color: "#ef4444", Items: session.IdentifiedGaps, Empty: "No gaps identified."},
		{Title: "Education", Text: session.MatchingEducation, Empty: "No education summary available."},
		{Title: "Experience", Text: session.MatchingExperience, Empty: "No experience summary available."},
	}
}

func (r *reportService) WriteSessionReport(w io.Writer, session *models.AnalysisSession) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(reportTitle, true)
	doc.SetCreator("ATS Resume Analyzer", true)
	doc.SetMargins(18, 18, 18)
	doc.SetAutoPageBreak(true, 18)
	doc.AddPage()

	// core fonts are cp1252
	tr := doc.UnicodeTranslatorFromDescriptor("")

	setTextColor(doc, "#6366f1")
	doc.SetFont(reportFont, "B", 22)
	doc.CellFormat(0, 12, tr(reportTitle), "", 1, "L", false, 0, "")
	doc.Ln(4)

	summary := [][2]string{
		{"Match Score", fmt.Sprintf("%.2f%%", session.MatchPercentage)},
		{"Tier", models.QualificationTier(session.MatchPercentage)},
		{"Session ID", session.ID.String()},
		{"Resume", session.ResumeFileName},
		{"Generated On", session.CreatedAt.Format("2006-01-02 15:04 MST")},
	}
	doc.SetTextColor(17, 24, 39)
	for _, line := range summary {
		doc.SetFont(reportFont, "B", 11)
		doc.CellFormat(34, 7, tr(line[0]+":"), "", 0, "L", false, 0, "")
		doc.SetFont(reportFont, "", 11)
		doc.CellFormat(0, 7, tr(line[1]), "", 1, "L", false, 0, "")
	}

	for _, section := range sessionReportSections(session) {
		drawSection(doc, tr, section)
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func drawSection(doc *fpdf.Fpdf, tr func(string) string, section reportSection) {
	doc.Ln(6)

	color := section.Color
	if color == "" {
		color = reportDefaultColor
	}
	setTextColor(doc, color)
	doc.SetFont(reportFont, "B", 15)
	doc.CellFormat(0, 9, tr(section.Title), "", 1, "L", false, 0, "")

	doc.SetTextColor(31, 41, 55)
	doc.SetFont(reportFont, "", 11)
	switch {
	case section.Items == nil && section.Text != "":
		doc.MultiCell(0, 6, tr(section.Text), "", "L", false)
	case len(section.Items) == 0:
		doc.MultiCell(0, 6, tr(section.Empty), "", "L", false)
	default:
		doc.SetFillColor(243, 244, 246)
		doc.SetDrawColor(209, 213, 219)
		doc.SetLineWidth(0.3)
		for _, item := range section.Items {
			doc.MultiCell(0, 7, tr(item), "1", "L", true)
		}
	}
}

func setTextColor(doc *fpdf.Fpdf, hex string) {
	r, g, b := hexRGB(hex)
	doc.SetTextColor(r, g, b)
}

// hexRGB parses "#rrggbb"; anything else is black.
func hexRGB(hex string) (int, int, int) {
	v, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil || len(hex) != 7 {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
