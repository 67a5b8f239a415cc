package extractor

import (
	"fmt"

	"github.com/ledongthuc/pdf"

	"docqa/internal/logger"
)

// readPDFText returns the embedded text layer of every page. A page that
// has no text or cannot be decoded maps to "". An unreadable file yields an
// empty map.
func readPDFText(path string) (text map[int]string, errs []error) {
	text = make(map[int]string)
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Error extracting text from PDF: %v", rec)
			text = make(map[int]string)
			errs = append(errs, fmt.Errorf("%w: read pdf: %v", ErrExtraction, rec))
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		logger.Error("Error extracting text from PDF: %v", err)
		return text, []error{fmt.Errorf("%w: open pdf: %w", ErrExtraction, err)}
	}
	defer f.Close()

	for i := 1; i <= r.NumPage(); i++ {
		s, err := pageText(r, i)
		if err != nil {
			logger.Warn("Page %d: no extractable text: %v", i-1, err)
			errs = append(errs, fmt.Errorf("%w: page %d: %w", ErrExtraction, i-1, err))
		}
		text[i-1] = s
	}
	return text, errs
}

// pageText reads one 1-based page. The pdf package panics on some malformed
// content streams, so panics are turned into errors.
func pageText(r *pdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("panic reading page: %v", rec)
		}
	}()

	page := r.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
