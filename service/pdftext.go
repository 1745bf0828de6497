package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextExtractor converts raw document bytes into plain text and a page
// count. The PDF implementation is the production one; tests stub this.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (text string, pageCount int, err error)
}

// PDFTextExtractor extracts text with ledongthuc/pdf (pure Go, no CGO).
type PDFTextExtractor struct{}

func NewPDFTextExtractor() *PDFTextExtractor {
	return &PDFTextExtractor{}
}

func (e *PDFTextExtractor) Extract(ctx context.Context, data []byte) (string, int, error) {
	if len(data) == 0 {
		return "", 0, fmt.Errorf("empty document")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open pdf: %w", err)
	}

	var text strings.Builder
	pageCount := reader.NumPage()

	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Unreadable page, keep what the rest of the document yields
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}

		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(pageText)
	}

	return text.String(), pageCount, nil
}
