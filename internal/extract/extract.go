// Package extract turns uploaded documents into ordered page texts and
// groups pages into fixed-size chunks for independent grading.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor produces the ordered page texts of a document.
type Extractor interface {
	Pages(doc []byte) ([]string, error)
}

// pdfMagic is the header every PDF file starts with.
var pdfMagic = []byte("%PDF-")

// Auto picks a concrete extractor per document: PDF for files with the PDF
// magic header, plain text otherwise.
type Auto struct{}

func (Auto) Pages(doc []byte) ([]string, error) {
	if bytes.HasPrefix(doc, pdfMagic) {
		return PDF{}.Pages(doc)
	}
	return Text{}.Pages(doc)
}

// PDF extracts per-page plain text from a PDF document.
type PDF struct{}

func (PDF) Pages(doc []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}
	return pages, nil
}

// maxTextPageRunes bounds synthetic pages when plain text has no page
// markers, keeping each LLM call within a predictable size.
const maxTextPageRunes = 3000

// Text treats input as plain text. Form feeds mark page boundaries; without
// them, long input is windowed into synthetic pages on paragraph breaks.
type Text struct{}

func (Text) Pages(doc []byte) ([]string, error) {
	s := strings.ReplaceAll(string(doc), "\r\n", "\n")
	if s == "" {
		return nil, fmt.Errorf("document is empty")
	}

	if strings.ContainsRune(s, '\f') {
		var pages []string
		for _, p := range strings.Split(s, "\f") {
			if strings.TrimSpace(p) != "" {
				pages = append(pages, p)
			}
		}
		if len(pages) == 0 {
			return nil, fmt.Errorf("document is empty")
		}
		return pages, nil
	}

	return windowText(s), nil
}

// windowText splits s into page-sized windows, preferring paragraph
// boundaries near the limit.
func windowText(s string) []string {
	runes := []rune(s)
	if len(runes) <= maxTextPageRunes {
		return []string{s}
	}

	var pages []string
	for len(runes) > 0 {
		if len(runes) <= maxTextPageRunes {
			pages = append(pages, string(runes))
			break
		}
		cut := maxTextPageRunes
		window := string(runes[:cut])
		if idx := strings.LastIndex(window, "\n\n"); idx > maxTextPageRunes/2 {
			cut = len([]rune(window[:idx])) + 2
		}
		pages = append(pages, string(runes[:cut]))
		runes = runes[cut:]
	}
	return pages
}

// Chunk groups pages into consecutive fixed-size chunks, preserving page
// order. perChunk values below 1 collapse to 1.
func Chunk(pages []string, perChunk int) [][]string {
	if perChunk < 1 {
		perChunk = 1
	}
	var chunks [][]string
	for start := 0; start < len(pages); start += perChunk {
		end := start + perChunk
		if end > len(pages) {
			end = len(pages)
		}
		chunks = append(chunks, pages[start:end])
	}
	return chunks
}
