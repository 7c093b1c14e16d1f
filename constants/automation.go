package constants

// AutomationState is the workflow label derived for a submission record.
// It is never stored as ground truth; it is recomputed from current facts.
type AutomationState string

const (
	AutoReady  AutomationState = "AUTO_READY"  // may proceed without a human
	NeedsHuman AutomationState = "NEEDS_HUMAN" // default fallback; human review required
	Blocked    AutomationState = "BLOCKED"     // hard extraction problem; fix inputs first
	Completed  AutomationState = "COMPLETED"   // grading already exists
)
