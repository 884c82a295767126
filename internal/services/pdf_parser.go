package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// MinExtractedTextLength is the number of non-blank characters a strategy
// must produce before its output is accepted.
const MinExtractedTextLength = 50

type TextExtractor interface {
	ExtractText(filePath string) (*PDFContent, error)
}

type PDFContent struct {
	Text      string
	PageCount int
	FilePath  string
	Strategy  string
}

// ExtractionStrategy returns the text of every page of a PDF, in order.
type ExtractionStrategy interface {
	Name() string
	ExtractPages(filePath string) ([]string, error)
}

type textExtractor struct {
	strategies []ExtractionStrategy
}

// NewTextExtractor tries the layout reader, then unipdf, then the plain
// text reader. unipdf refuses to extract without a license, so it is only
// part of the chain when withUnipdf is set.
func NewTextExtractor(withUnipdf bool) TextExtractor {
	strategies := []ExtractionStrategy{&layoutStrategy{}}
	if withUnipdf {
		strategies = append(strategies, &unipdfStrategy{})
	}
	strategies = append(strategies, &plainStrategy{})
	return NewTextExtractorWithStrategies(strategies...)
}

func NewTextExtractorWithStrategies(strategies ...ExtractionStrategy) TextExtractor {
	return &textExtractor{strategies: strategies}
}

// SetUnidocLicense registers the metered unipdf key. It reports whether
// the unipdf strategy can be used.
func SetUnidocLicense(key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	if err := license.SetMeteredKey(key); err != nil {
		return false, fmt.Errorf("failed to set unidoc license: %w", err)
	}
	return true, nil
}

func (e *textExtractor) ExtractText(filePath string) (*PDFContent, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	var reasons []string
	for _, strategy := range e.strategies {
		pages, err := strategy.ExtractPages(filePath)
		if err != nil {
			reasons = append(reasons, fmt.Sprintf("%s: %v", strategy.Name(), err))
			continue
		}

		text := strings.Join(pages, "\n\n")
		if n := len(strings.TrimSpace(text)); n <= MinExtractedTextLength {
			reasons = append(reasons, fmt.Sprintf("%s: only %d characters", strategy.Name(), n))
			continue
		}

		log.Printf("📄 Extracted %d characters from %s using %s\n", len(text), filePath, strategy.Name())
		return &PDFContent{
			Text:      text,
			PageCount: len(pages),
			FilePath:  filePath,
			Strategy:  strategy.Name(),
		}, nil
	}

	if len(reasons) == 0 {
		return nil, fmt.Errorf("%w: no extraction strategies configured", ErrUnreadableDocument)
	}
	return nil, fmt.Errorf("%w (%s)", ErrUnreadableDocument, strings.Join(reasons, "; "))
}

// layoutStrategy rebuilds each page row by row, top to bottom.
type layoutStrategy struct{}

func (s *layoutStrategy) Name() string { return "layout" }

func (s *layoutStrategy) ExtractPages(filePath string) ([]string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var pages []string
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageIndex, err)
		}

		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			var line strings.Builder
			for _, word := range row.Content {
				line.WriteString(word.S)
			}
			lines = append(lines, line.String())
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}

	return pages, nil
}

type unipdfStrategy struct{}

func (s *unipdfStrategy) Name() string { return "unipdf" }

func (s *unipdfStrategy) ExtractPages(filePath string) (pages []string, err error) {
	// unipdf panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("extractor panic: %v", r)
		}
	}()

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	pdfReader, err := model.NewPdfReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}
	if numPages == 0 {
		return nil, errors.New("PDF has no pages")
	}

	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}

		ex, err := extractor.New(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}

		pageText, err := ex.ExtractText()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, pageText)
	}

	return pages, nil
}

type plainStrategy struct{}

func (s *plainStrategy) Name() string { return "plain" }

func (s *plainStrategy) ExtractPages(filePath string) ([]string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var pages []string
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// skip unreadable pages, the rest may still carry text
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}
