// Package contract parses and validates raw model output for each
// pipeline stage. Model text is never trusted downstream until it has
// passed through Validate. Parse-or-fail, no optimistic reads.
package contract

// StageKind identifies one discrete model invocation step.
type StageKind string

const (
	StageRealnessCheck           StageKind = "realness_check"
	StageCategoryClassification  StageKind = "category_classification"
	StageErrorCodeExtraction     StageKind = "error_code_extraction"
	StagePartCategorySelection   StageKind = "part_category_selection"
	StageNarrativeAnalysis       StageKind = "narrative_analysis"
	StageRecommendationSynthesis StageKind = "recommendation_synthesis"
)

// Category is the image classification outcome.
type Category string

const (
	CategoryWorkingMachine Category = "working_machine"
	CategoryErrorCode      Category = "error_code"
	CategoryOther          Category = "other"
)

// CodeType distinguishes the two machine fault code families.
type CodeType string

const (
	CodeTypeEID    CodeType = "EID"
	CodeTypeCIDFMI CodeType = "CID-FMI"
)

// EID codes are integers in [1, 10050]; FMI values in [0, 31].
const (
	EIDMin = 1
	EIDMax = 10050
	FMIMin = 0
	FMIMax = 31
)

// ErrorCode is one detected machine fault code.
type ErrorCode struct {
	Code        string   `json:"code"`
	Type        CodeType `json:"type"`
	Severity    string   `json:"severity,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Payload is the validated, typed result of one stage. Exactly one
// concrete type exists per stage kind, so downstream code cannot read
// fields a stage never produced.
type Payload interface {
	Stage() StageKind
}

// RealnessPayload is the result of the realness check stage.
type RealnessPayload struct {
	IsRealPhoto bool `json:"is_real_photo"`
}

func (RealnessPayload) Stage() StageKind { return StageRealnessCheck }

// CategoryPayload is the result of the category classification stage.
type CategoryPayload struct {
	Category Category `json:"category"`
}

func (CategoryPayload) Stage() StageKind { return StageCategoryClassification }

// ErrorCodesPayload is the result of the error code extraction stage.
type ErrorCodesPayload struct {
	Errors         []ErrorCode `json:"errors"`
	AdditionalInfo []string    `json:"additional_info"`
}

func (ErrorCodesPayload) Stage() StageKind { return StageErrorCodeExtraction }

// PartsPayload is the result of the part category selection stage.
// The raw category strings are carried as-is; filtering against the
// canonical vocabulary happens in the aggregator.
type PartsPayload struct {
	PartCategories []string `json:"part_categories"`
}

func (PartsPayload) Stage() StageKind { return StagePartCategorySelection }

// NarrativePayload is the free-text result of the narrative analysis and
// recommendation synthesis stages.
type NarrativePayload struct {
	Kind StageKind
	Text string
}

func (p NarrativePayload) Stage() StageKind { return p.Kind }
