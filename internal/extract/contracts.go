// Package extract defines the boundary to the PDF/OCR backend. Byte decoding
// is a black box; the core consumes flattened page text plus metadata.
package extract

import (
	"context"
	"time"

	"github.com/assessly/docgrader/constants"
	"github.com/assessly/docgrader/internal/brief"
)

// Result is what an extraction backend hands the core for one document.
type Result struct {
	Text      string                     `json:"text"` // normalized, page breaks preserved
	PageCount int                        `json:"page_count"`
	Status    constants.ExtractionStatus `json:"status"`
	Method    string                     `json:"method,omitempty"` // e.g. "pdf-text" | "pdf-ocr"

	// Confidence is the backend's overall extraction confidence in [0,1].
	Confidence float64 `json:"confidence"`

	// CoverMetadataConfidence scores how confidently the cover page metadata
	// (student, assignment) was read; CoverMetadataReady marks it usable.
	CoverMetadataConfidence float64 `json:"cover_metadata_confidence,omitempty"`
	CoverMetadataReady      bool    `json:"cover_metadata_ready"`

	Equations []brief.Equation `json:"equations,omitempty"`
	Warnings  []string         `json:"warnings,omitempty"`
	Duration  time.Duration    `json:"-"`
}

// TextExtractor turns raw document bytes (given by path) into a Result.
// Implementations may call external OCR; the core never does.
type TextExtractor interface {
	Extract(ctx context.Context, path string, docType constants.DocumentType) (Result, error)
}
