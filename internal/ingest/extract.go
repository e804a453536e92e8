package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extractor pulls plain text out of a document file.
type Extractor interface {
	Extract(path string) (string, error)
}

// PDFExtractor extracts text from PDF files.
type PDFExtractor struct{}

// Extract returns the plain text of the PDF at path.
func (PDFExtractor) Extract(path string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return "", fmt.Errorf("ingest: file is not a PDF: %s", path)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract text from %s: %w", path, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("read text from %s: %w", path, err)
	}
	return buf.String(), nil
}
