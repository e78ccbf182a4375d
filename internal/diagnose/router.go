package diagnose

import "github.com/boom724/boomguru/internal/contract"

// Router is the finite sequence of decision points that picks the next
// stage from the accumulated record:
//
//	Start → RealnessCheck → CategoryClassification
//	  → ErrorCodeExtraction → RecommendationSynthesis → Terminal
//	  → NarrativeAnalysis → PartCategorySelection → Terminal
//	  → Terminal (category other)
type Router struct {
	// StopOnUnreal terminates the pipeline after a negative realness
	// check. Off by default: an unreal-looking image is recorded but
	// still classified, matching observed production behavior.
	StopOnUnreal bool
}

// Next returns the stage to run after prev, given the record so far.
// prev == "" means the pipeline is at its start. ok is false once a
// terminal state is reached.
func (r Router) Next(prev contract.StageKind, rec *DiagnosticRecord) (next contract.StageKind, ok bool) {
	switch prev {
	case "":
		return contract.StageRealnessCheck, true

	case contract.StageRealnessCheck:
		if r.StopOnUnreal && rec.IsRealPhoto != nil && !*rec.IsRealPhoto {
			return "", false
		}
		return contract.StageCategoryClassification, true

	case contract.StageCategoryClassification:
		switch rec.Category {
		case contract.CategoryErrorCode:
			return contract.StageErrorCodeExtraction, true
		case contract.CategoryWorkingMachine:
			return contract.StageNarrativeAnalysis, true
		default:
			// "other", or a category the router has no transition for.
			return "", false
		}

	case contract.StageErrorCodeExtraction:
		return contract.StageRecommendationSynthesis, true

	case contract.StageNarrativeAnalysis:
		return contract.StagePartCategorySelection, true

	case contract.StagePartCategorySelection,
		contract.StageRecommendationSynthesis:
		return "", false
	}

	return "", false
}
