// Package parser reads PDFs locally.
// It implements ports.PDFInspector on top of github.com/ledongthuc/pdf.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
)

var _ ports.PDFInspector = (*PDFInspector)(nil)

// ErrNotPDF is returned for payloads without a PDF header.
var ErrNotPDF = errors.New("not a pdf document")

// PDFInspector counts pages and extracts page text.
type PDFInspector struct{}

// NewPDFInspector creates a new PDF inspector.
func NewPDFInspector() *PDFInspector {
	return &PDFInspector{}
}

// PageCount returns the number of pages in data.
func (p *PDFInspector) PageCount(data []byte) (n int, err error) {
	r, err := open(data)
	if err != nil {
		return 0, err
	}
	defer recoverMalformed(&err)
	return r.NumPage(), nil
}

// PageText extracts the plain text of a 1-based page.
func (p *PDFInspector) PageText(data []byte, page int) (text string, err error) {
	r, err := open(data)
	if err != nil {
		return "", err
	}
	defer recoverMalformed(&err)

	if page < 1 || page > r.NumPage() {
		return "", fmt.Errorf("page %d out of range 1..%d", page, r.NumPage())
	}
	pg := r.Page(page)
	if pg.V.IsNull() {
		return "", fmt.Errorf("page %d is empty", page)
	}

	text, err = pg.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extracting page %d text: %w", page, err)
	}
	return normalize(text), nil
}

func open(data []byte) (r *pdf.Reader, err error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return nil, ErrNotPDF
	}
	defer recoverMalformed(&err)

	r, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	return r, nil
}

// The reader panics on some malformed objects.
func recoverMalformed(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("malformed pdf: %v", r)
	}
}

func normalize(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
