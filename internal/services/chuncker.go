package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 150
)

type TextChuncker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChuncker {
	return &textChunker{}
}

// ChunkText packs paragraphs into chunks of at most maxChunkSize runes.
// Paragraphs that are too long are split on sentence ends and, failing
// that, on rune boundaries. Each chunk after the first starts with up to
// overlap runes taken from the end of the previous one.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = defaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	var pieces []string
	for _, para := range splitParagraphs(text) {
		if utf8.RuneCountInString(para) <= maxChunkSize-overlap {
			pieces = append(pieces, para)
			continue
		}
		for _, sentence := range splitIntoSentences(para) {
			pieces = append(pieces, splitRunes(sentence, maxChunkSize-overlap)...)
		}
	}

	var chunks []string
	var current []string
	currentLen := 0

	for _, piece := range pieces {
		n := utf8.RuneCountInString(piece)
		if currentLen > 0 && currentLen+1+n > maxChunkSize {
			chunk := strings.Join(current, "\n")
			chunks = append(chunks, chunk)
			current = current[:0]
			currentLen = 0

			// the overlap tail is carried only when the next piece still fits
			if tail := lastRunes(chunk, overlap); tail != "" && utf8.RuneCountInString(tail)+1+n <= maxChunkSize {
				current = append(current, tail)
				currentLen = utf8.RuneCountInString(tail)
			}
		}

		if currentLen > 0 {
			currentLen++
		}
		current = append(current, piece)
		currentLen += n
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}

	return chunks
}

func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			paragraphs = append(paragraphs, para)
		}
	}
	return paragraphs
}

// splitIntoSentences keeps the terminating punctuation with each sentence.
func splitIntoSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)

	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func splitRunes(text string, size int) []string {
	if size <= 0 {
		size = defaultChunkSize
	}
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	var parts []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}

// lastRunes returns at most n runes from the end of text, starting on a
// word boundary when one is available.
func lastRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	tail := string(runes[len(runes)-n:])
	if i := strings.IndexFunc(tail, unicode.IsSpace); i >= 0 && i < len(tail)-1 {
		tail = tail[i+1:]
	}
	return strings.TrimSpace(tail)
}
