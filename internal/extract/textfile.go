package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/textnorm"
)

// TextFileExtractor reads pre-extracted text files (.txt, .md) where page
// breaks are form feeds. It stands in for the OCR backend in the CLI and in
// tests; PDFs and images are routed to NEEDS_OCR rather than guessed at.
type TextFileExtractor struct {
	Logger *slog.Logger
}

func NewTextFileExtractor(logger *slog.Logger) *TextFileExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextFileExtractor{Logger: logger}
}

var textExtensions = map[string]struct{}{
	".txt": {}, ".md": {}, ".text": {},
}

func (e *TextFileExtractor) Extract(_ context.Context, path string, docType constants.DocumentType) (Result, error) {
	start := time.Now()

	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := textExtensions[ext]; !ok {
		e.Logger.Warn("extract.textfile.needs_ocr", "path", path, "ext", ext)
		return Result{
			Status:   constants.StatusNeedsOCR,
			Method:   "text-file",
			Warnings: []string{fmt.Sprintf("unsupported extension %q: OCR pass required", ext)},
			Duration: time.Since(start),
		}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{Status: constants.StatusFailed, Method: "text-file"}, fmt.Errorf("read %s: %w", path, err)
	}

	text := textnorm.Normalize(string(raw))
	res := Result{
		Text:       text,
		PageCount:  textnorm.PageCount(text),
		Status:     constants.StatusDone,
		Method:     "text-file",
		Confidence: HeuristicConfidence(text),
		Duration:   time.Since(start),
	}
	if !textnorm.HasPageBreaks(text) {
		res.Warnings = append(res.Warnings, "no page breaks in source text")
	}

	e.Logger.Info("extract.textfile.ok",
		"path", path,
		"doc_type", docType,
		"chars", len(text),
		"pages", res.PageCount,
		"confidence", res.Confidence,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
