package services

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	ChunkSize       = 1000 // characters per chunk
	ChunkOverlap    = 200  // overlap between chunks
	MaxSourceChunks = 4
)

var ErrNoText = errors.New("no text found in PDF")

// SourceFromPDF extracts text from an uploaded PDF and keeps the leading
// chunks as source material for question generation.
func SourceFromPDF(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	return LeadingSource(ExtractText(reader))
}

// LeadingSource keeps the text covered by the first MaxSourceChunks chunks
func LeadingSource(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}

	runes := []rune(text)
	windows := chunkWindows(len(runes))
	end := windows[min(MaxSourceChunks, len(windows))-1][1]
	return strings.TrimSpace(string(runes[:end])), nil
}

// ExtractText extracts all text from a PDF document
func ExtractText(r *pdf.Reader) string {
	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			// Continue even if one page fails
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String()
}

// ChunkText splits text into overlapping chunks
func ChunkText(text string) []string {
	runes := []rune(text)
	chunks := []string{}
	for _, w := range chunkWindows(len(runes)) {
		chunk := strings.TrimSpace(string(runes[w[0]:w[1]]))
		if len(chunk) > 0 {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// chunkWindows returns the [start, end) rune bounds of each chunk over n runes
func chunkWindows(n int) [][2]int {
	var windows [][2]int
	for start := 0; start < n; start += ChunkSize - ChunkOverlap {
		end := min(start+ChunkSize, n)
		windows = append(windows, [2]int{start, end})
		if end == n {
			break
		}
	}
	return windows
}
