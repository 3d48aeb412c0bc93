package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	apperrors "github.com/ZanzyTHEbar/glucoscreen/internal/errors"
	"github.com/ZanzyTHEbar/glucoscreen/internal/types"
)

// pdfMagic opens every PDF file.
var pdfMagic = []byte("%PDF-")

// TextSource turns an uploaded document into the plain text of its first page.
type TextSource interface {
	FirstPageText(data []byte) (string, error)
}

// PDFSource reads page 1 of a PDF document.
type PDFSource struct{}

// FirstPageText returns the text content of page 1. Documents without a
// readable first page fail with a document parse error.
func (PDFSource) FirstPageText(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", apperrors.NewDocumentParseError("document is empty", nil)
	}

	// the parser panics on some malformed inputs
	apperrors.SafeExecute(func() {
		text, err = firstPage(data)
	}, func(r interface{}) {
		err = apperrors.NewDocumentParseError("document could not be parsed", fmt.Errorf("%v", r))
	})
	return text, err
}

func firstPage(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", apperrors.NewDocumentParseError("document could not be parsed", err)
	}
	if reader.NumPage() < 1 {
		return "", apperrors.NewDocumentParseError("document has no pages", nil)
	}

	page := reader.Page(1)
	if page.V.IsNull() {
		return "", apperrors.NewDocumentParseError("document has no readable first page", nil)
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", apperrors.NewDocumentParseError("first page text could not be read", err)
	}
	return text, nil
}

// PlainTextSource accepts UTF-8 text reports. The whole text counts as page 1
// unless a form feed separates pages.
type PlainTextSource struct{}

// FirstPageText returns everything before the first form feed.
func (PlainTextSource) FirstPageText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperrors.NewDocumentParseError("document is empty", nil)
	}
	if !utf8.Valid(data) {
		return "", apperrors.NewDocumentParseError("document is neither PDF nor UTF-8 text", nil)
	}
	text, _, _ := strings.Cut(string(data), "\f")
	return text, nil
}

// SourceFor picks a text source from the document's leading bytes.
func SourceFor(data []byte) TextSource {
	if bytes.HasPrefix(data, pdfMagic) {
		return PDFSource{}
	}
	return PlainTextSource{}
}

// KindOf names the reader SourceFor picks: "pdf" or "text"
func KindOf(data []byte) string {
	if _, ok := SourceFor(data).(PDFSource); ok {
		return "pdf"
	}
	return "text"
}

// Document is the outcome of reading one uploaded report.
type Document struct {
	Kind    string              `json:"kind"`
	Fields  types.PartialVector `json:"-"`
	Values  map[string]*float64 `json:"values"`
	Missing []string            `json:"missing"`
}

// Complete reports whether every field was found.
func (d *Document) Complete() bool {
	return len(d.Missing) == 0
}

// ExtractDocument reads page 1 of data and extracts the fields from it.
func (e *Extractor) ExtractDocument(data []byte) (*Document, error) {
	source := SourceFor(data)

	text, err := source.FirstPageText(data)
	if err != nil {
		return nil, err
	}

	pv := e.Extract(text)
	return &Document{
		Kind:    KindOf(data),
		Fields:  pv,
		Values:  pv.Map(),
		Missing: types.FieldNames(pv.Missing()),
	}, nil
}

// ExtractDocument runs the default extractor over an uploaded document.
func ExtractDocument(data []byte) (*Document, error) {
	return defaultExtractor.ExtractDocument(data)
}
