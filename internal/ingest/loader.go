package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedFormat is returned when the uploaded content is not a
// PDF at all. Only PDF documents are accepted.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ErrUnreadableDocument is returned when the content claims to be a
// PDF but cannot be parsed.
var ErrUnreadableDocument = errors.New("unreadable document")

var pdfMagic = []byte("%PDF-")

// Page is one page of extracted document text with its 1-based number.
type Page struct {
	Number int
	Text   string
}

// LoadPDF extracts page-level text from a PDF held in memory. Callers
// hand it an in-memory reader; the loader never stages anything on
// disk. Pages come back in document order.
func LoadPDF(r io.ReaderAt, size int64) (pages []Page, err error) {
	header := make([]byte, len(pdfMagic))
	if _, rerr := r.ReadAt(header, 0); rerr != nil || !bytes.Equal(header, pdfMagic) {
		return nil, ErrUnsupportedFormat
	}

	// The pdf package panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("%w: %v", ErrUnreadableDocument, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrUnreadableDocument, i, err)
		}
		pages = append(pages, Page{Number: i, Text: text})
	}

	return pages, nil
}

// LoadPDFBytes is a convenience wrapper around LoadPDF for uploads that
// arrive as a byte slice.
func LoadPDFBytes(data []byte) ([]Page, error) {
	return LoadPDF(bytes.NewReader(data), int64(len(data)))
}

// SniffFormat reports whether data looks like a supported document.
// Used by upload handlers to reject non-PDF files before ingestion.
func SniffFormat(data []byte, filename string) error {
	if !bytes.HasPrefix(data, pdfMagic) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, strings.TrimSpace(filename))
	}
	return nil
}
