package constants

// ExtractionStatus is the canonical status of an extraction run.
type ExtractionStatus string

// Stable values (these exact strings appear in diagnostics and reports).
const (
	StatusQueued   ExtractionStatus = "QUEUED"    // queued for processing
	StatusRunning  ExtractionStatus = "RUNNING"   // in progress
	StatusDone     ExtractionStatus = "DONE"      // text extracted
	StatusFailed   ExtractionStatus = "FAILED"    // terminal failure
	StatusNeedsOCR ExtractionStatus = "NEEDS_OCR" // no text layer; OCR pass required first
)

// DocumentType tags what kind of document the extractor was given.
type DocumentType string

const (
	DocTypeSpec  DocumentType = "SPEC"  // unit specification with criterion tables
	DocTypeBrief DocumentType = "BRIEF" // assignment brief (tasks, parts, formulas)
	DocTypeRaw   DocumentType = "RAW"   // anything else; text only, no structure pass
)

// RouteHint is the extraction-quality routing suggestion attached to a run.
type RouteHint string

const (
	RouteAuto    RouteHint = "AUTO"    // quality clears the automation bar
	RouteReview  RouteHint = "REVIEW"  // usable but a human should look
	RouteBlocked RouteHint = "BLOCKED" // hard quality problem; do not automate
)
