// Package diagnose drives the multi-stage image diagnosis pipeline:
// the router decides which model call comes next from what has been
// learned so far, the contract layer validates every response, and the
// aggregator folds stage results into one diagnostic record.
package diagnose

import (
	"github.com/boom724/boomguru/internal/contract"
)

// ImageTask is one image to diagnose. Immutable once created.
type ImageTask struct {
	// ID identifies the task (session id in the service API).
	ID string

	// Image is the image as a base64 data URL.
	Image string

	// Language is the requested output language code ("en", "tr", ...made
	// into a display name for prompts; unknown codes fall back to English).
	Language string
}

// StageResult is the outcome of one executed stage.
type StageResult struct {
	Kind    contract.StageKind
	RawText string
	Payload contract.Payload
	Valid   bool
}

// DiagnosticRecord is the aggregated, schema-conformant result for one
// image. Built incrementally stage by stage; frozen once the router
// reaches a terminal state.
type DiagnosticRecord struct {
	// IsRealPhoto is nil until the realness check has run.
	IsRealPhoto *bool `json:"is_real_photo,omitempty"`

	Category contract.Category `json:"category,omitempty"`

	// Errors is populated only when Category is error_code. Detection
	// order is preserved; (code, type) pairs are unique.
	Errors []contract.ErrorCode `json:"errors,omitempty"`

	AdditionalInfo []string `json:"additional_info,omitempty"`

	// PartCategories is a subset of the canonical vocabulary, always in
	// the vocabulary's declared order. Populated only when Category is
	// working_machine.
	PartCategories []string `json:"part_categories,omitempty"`

	// Narrative is the analysis text followed by the recommendation text.
	Narrative string `json:"narrative,omitempty"`
}

// Clone returns a deep copy, so a frozen record cannot be mutated through
// a caller-held reference to the aggregator's working state.
func (r *DiagnosticRecord) Clone() *DiagnosticRecord {
	out := *r
	if r.IsRealPhoto != nil {
		b := *r.IsRealPhoto
		out.IsRealPhoto = &b
	}
	out.Errors = append([]contract.ErrorCode(nil), r.Errors...)
	out.AdditionalInfo = append([]string(nil), r.AdditionalInfo...)
	out.PartCategories = append([]string(nil), r.PartCategories...)
	return &out
}
