package services

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestExtractTextFallsThroughStrategies(t *testing.T) {
	path := writeTempFile(t, "resume.pdf", "%PDF-1.4")
	longText := strings.Repeat("Experienced Go engineer. ", 5)

	failing := &fakeStrategy{name: "layout", err: errors.New("bad xref")}
	short := &fakeStrategy{name: "unipdf", pages: []string{"too short"}}
	good := &fakeStrategy{name: "plain", pages: []string{longText, "Page two"}}
	unused := &fakeStrategy{name: "extra", pages: []string{longText}}

	content, err := NewTextExtractorWithStrategies(failing, short, good, unused).ExtractText(path)
	require.NoError(t, err)

	assert.Equal(t, "plain", content.Strategy)
	assert.Equal(t, 2, content.PageCount)
	assert.Equal(t, longText+"\n\nPage two", content.Text)
	assert.Equal(t, path, content.FilePath)
	assert.Zero(t, unused.calls)
}

func TestExtractTextRequiresMoreThanMinimumLength(t *testing.T) {
	path := writeTempFile(t, "resume.pdf", "%PDF-1.4")

	exact := &fakeStrategy{name: "exact", pages: []string{"   " + strings.Repeat("a", MinExtractedTextLength) + "\n"}}
	_, err := NewTextExtractorWithStrategies(exact).ExtractText(path)
	assert.ErrorIs(t, err, ErrUnreadableDocument)

	over := &fakeStrategy{name: "over", pages: []string{strings.Repeat("a", MinExtractedTextLength+1)}}
	content, err := NewTextExtractorWithStrategies(over).ExtractText(path)
	require.NoError(t, err)
	assert.Equal(t, "over", content.Strategy)
}

func TestExtractTextWhitespaceOnly(t *testing.T) {
	path := writeTempFile(t, "scan.pdf", "%PDF-1.4")
	blank := &fakeStrategy{name: "blank", pages: []string{strings.Repeat(" \n\t", 100)}}

	_, err := NewTextExtractorWithStrategies(blank).ExtractText(path)
	require.ErrorIs(t, err, ErrUnreadableDocument)
	assert.Contains(t, err.Error(), "blank: only 0 characters")
}

func TestExtractTextMissingFile(t *testing.T) {
	s := &fakeStrategy{name: "never", pages: []string{strings.Repeat("a", 100)}}

	_, err := NewTextExtractorWithStrategies(s).ExtractText(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, ErrUnreadableDocument)
	assert.Zero(t, s.calls)
}

func TestExtractTextRealParsersRejectGarbage(t *testing.T) {
	path := writeTempFile(t, "broken.pdf", "this is not a pdf at all")

	_, err := NewTextExtractor(false).ExtractText(path)
	assert.ErrorIs(t, err, ErrUnreadableDocument)
}

func TestSetUnidocLicenseEmptyKey(t *testing.T) {
	licensed, err := SetUnidocLicense("")
	assert.NoError(t, err)
	assert.False(t, licensed)
}

func strategyNames(e TextExtractor) []string {
	var names []string
	for _, s := range e.(*textExtractor).strategies {
		names = append(names, s.Name())
	}
	return names
}

func TestNewTextExtractorStrategyChain(t *testing.T) {
	assert.Equal(t, []string{"layout", "plain"}, strategyNames(NewTextExtractor(false)))
	assert.Equal(t, []string{"layout", "unipdf", "plain"}, strategyNames(NewTextExtractor(true)))
}

// writeTextPDF writes an uncompressed PDF with one Helvetica text line per
// entry of each page.
func writeTextPDF(t *testing.T, pages [][]string) string {
	t.Helper()

	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	var kids []string
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+2*i))
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, lines := range pages {
		var content strings.Builder
		content.WriteString("BT\n/F1 12 Tf\n")
		for j, line := range lines {
			fmt.Fprintf(&content, "1 0 0 1 72 %d Tm\n(%s) Tj\n", 720-20*j, line)
		}
		content.WriteString("ET")

		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestExtractTextFromRealPDF(t *testing.T) {
	path := writeTextPDF(t, [][]string{
		{"Jane Doe", "Senior Go engineer with Kubernetes and PostgreSQL experience"},
		{"Education: BSc Computer Science"},
	})

	content, err := NewTextExtractor(false).ExtractText(path)
	require.NoError(t, err)

	assert.Equal(t, "layout", content.Strategy)
	assert.Equal(t, 2, content.PageCount)
	assert.Equal(t, path, content.FilePath)
	assert.Equal(t,
		"Jane Doe\nSenior Go engineer with Kubernetes and PostgreSQL experience\n\nEducation: BSc Computer Science",
		content.Text,
	)
}

func TestExtractTextRealPDFTooShort(t *testing.T) {
	path := writeTextPDF(t, [][]string{{"Jane Doe"}})

	_, err := NewTextExtractor(false).ExtractText(path)
	assert.ErrorIs(t, err, ErrUnreadableDocument)
	assert.Contains(t, err.Error(), "layout: only 8 characters")
}
