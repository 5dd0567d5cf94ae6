// Package pdftext pulls plain text out of uploaded PDFs, one string per page.
//
// pdfcpu reads and validates the document and settles the page count. Page
// text is decoded with ledongthuc/pdf, which applies each font's encoding
// and ToUnicode map, so CID fonts from common exporters come out readable.
// Scanned pages come back empty.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PageBreak separates pages in Document.Text. It matches the marker the
// report chunker splits on.
const PageBreak = "\f"

// ErrNoPages is returned for documents without a single page.
var ErrNoPages = errors.New("pdf has no pages")

// Document is the extracted text of a PDF.
type Document struct {
	// Text holds every page joined by PageBreak.
	Text      string
	Pages     []string
	PageCount int
}

// Extract parses data as a PDF and returns the text of every page.
func Extract(data []byte) (*Document, error) {
	pageCount, err := validatedPageCount(data)
	if err != nil {
		return nil, err
	}

	pages, err := pageTexts(data, pageCount)
	if err != nil {
		return nil, err
	}

	return &Document{
		Text:      strings.Join(pages, PageBreak),
		Pages:     pages,
		PageCount: pageCount,
	}, nil
}

func validatedPageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", err)
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return 0, fmt.Errorf("failed to validate PDF: %w", err)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	if pdfCtx.PageCount == 0 {
		return 0, ErrNoPages
	}
	return pdfCtx.PageCount, nil
}

// pageTexts decodes the text of pages 1..pageCount. Pages the reader cannot
// resolve are left empty so page numbering stays aligned.
func pageTexts(data []byte, pageCount int) (pages []string, err error) {
	// The reader panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("failed to decode PDF text: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for text: %w", err)
	}

	pages = make([]string, pageCount)
	for pageNr := 1; pageNr <= pageCount && pageNr <= reader.NumPage(); pageNr++ {
		page := reader.Page(pageNr)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			font := page.Font(name)
			fonts[name] = &font
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return nil, fmt.Errorf("page %d: failed to extract text: %w", pageNr, err)
		}
		pages[pageNr-1] = strings.TrimSpace(text)
	}
	return pages, nil
}
