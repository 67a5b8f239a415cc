package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"docqa/internal/logger"
)

// Report is the outcome of ProcessDocument.
type Report struct {
	Success    bool
	Message    string
	Collection string
	Pages      int
	Chunks     int
	OCRUsed    bool
	// Indexed is false when the chunks could not be stored; the document
	// is still current but retrieval finds nothing.
	Indexed  bool
	Duration time.Duration
	Err      error
}

// ProcessDocument extracts, chunks and indexes the file at path and makes it
// the session's current document. On failure the previous document stays.
func (a *App) ProcessDocument(ctx context.Context, sess *Session, path string) Report {
	start := time.Now()
	if strings.TrimSpace(path) == "" {
		return Report{Message: MsgNoFile, Err: ErrNoFile}
	}

	logger.Section("Processing " + filepath.Base(path))
	doc, rep, err := a.processDocument(ctx, sess, path)
	rep.Duration = time.Since(start)
	if err != nil {
		logger.Error("Error processing document: %v", err)
		sess.setState(StateFailed)
		a.metrics.DocumentProcessed("failed")
		return Report{
			Message:  MsgProcessingError + err.Error(),
			Err:      err,
			Duration: rep.Duration,
		}
	}

	sess.setDocument(doc)
	a.metrics.DocumentProcessed("ready")
	rep.Success = true
	rep.Message = MsgProcessed
	logger.Info("✅ %s: %d chunks in %s (ocr=%t indexed=%t)",
		doc.Filename, rep.Chunks, rep.Duration.Round(time.Millisecond), rep.OCRUsed, rep.Indexed)
	return rep
}

func (a *App) processDocument(ctx context.Context, sess *Session, path string) (*Document, Report, error) {
	var rep Report

	sess.setState(StateExtracting)
	stageStart := time.Now()
	pages, err := a.extractor.Extract(ctx, path)
	if err != nil {
		return nil, rep, err
	}
	defer pages.Cleanup()
	a.metrics.ObserveStage("extract", stageStart)

	rep.Pages = max(len(pages.Text), len(pages.Images))
	if perr := pages.Err(); perr != nil {
		logger.Warn("Extraction finished with errors: %v", perr)
	}

	var text strings.Builder
	for _, n := range pages.TextPages() {
		if page := pages.Text[n]; strings.TrimSpace(page) != "" {
			text.WriteString(page)
			text.WriteString("\n\n")
		}
	}

	if nonSpaceLen(text.String()) < a.cfg.OCRFallbackThreshold && len(pages.Images) > 0 {
		sess.setState(StateOCR)
		stageStart = time.Now()
		logger.Info("🔍 Native text too short (%d chars), running OCR on %d pages",
			nonSpaceLen(text.String()), len(pages.Images))
		if strings.TrimSpace(text.String()) != "" {
			logger.Warn("Appending OCR text after existing native text; content may repeat")
		}

		ocrText := a.ocr.Recognize(ctx, pages.Images)
		for _, n := range pages.ImagePages() {
			text.WriteString(ocrText[n])
			text.WriteString("\n\n")
		}
		rep.OCRUsed = true
		a.metrics.OCRFallback()
		a.metrics.ObserveStage("ocr", stageStart)
	}

	if err := ctx.Err(); err != nil {
		return nil, rep, err
	}

	full := text.String()
	title, firstLine := headings(full)

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	doc := &Document{
		Path:       path,
		Filename:   stem,
		Text:       full,
		Title:      title,
		FirstLine:  firstLine,
		Collection: fmt.Sprintf("doc_%s_%d", stem, a.now().Unix()),
		OCRUsed:    rep.OCRUsed,
	}
	rep.Collection = doc.Collection

	sess.setState(StateChunking)
	stageStart = time.Now()
	doc.Chunks = a.chunker.Chunk(full)
	rep.Chunks = len(doc.Chunks)
	a.metrics.ObserveStage("chunk", stageStart)
	logger.Info("📦 Split into %d chunks", len(doc.Chunks))

	sess.setState(StateStoring)
	stageStart = time.Now()
	if err := a.index(ctx, doc); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, rep, err
		}
		logger.Error("Document %s is not queryable: %v", doc.Filename, err)
	} else {
		doc.Indexed = true
		a.metrics.ChunksStored(len(doc.Chunks))
	}
	rep.Indexed = doc.Indexed
	a.metrics.ObserveStage("store", stageStart)

	return doc, rep, nil
}

func (a *App) index(ctx context.Context, doc *Document) error {
	if err := a.store.CreateCollection(doc.Collection, true); err != nil {
		return err
	}
	return a.store.AddDocuments(ctx, doc.Collection, doc.Chunks)
}

// headings returns the first two non-empty trimmed lines of text. A line
// that does not exist is returned as "".
func headings(text string) (title, firstLine string) {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
			if len(lines) == 2 {
				break
			}
		}
	}
	if len(lines) > 0 {
		title = lines[0]
	}
	if len(lines) > 1 {
		firstLine = lines[1]
	}
	return title, firstLine
}

func nonSpaceLen(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
