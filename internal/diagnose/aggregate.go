package diagnose

import (
	"strings"

	"github.com/boom724/boomguru/internal/contract"
	"github.com/boom724/boomguru/internal/reference"
)

// Aggregator owns the DiagnosticRecord for one task and folds validated
// stage results into it. Pure accumulation: recording the same stage
// output twice leaves the record unchanged.
type Aggregator struct {
	vocab *reference.Vocabulary
	rec   DiagnosticRecord

	seenCodes map[codeKey]bool
	seenInfo  map[string]bool
	rawParts  []string

	narrative      string
	recommendation string
}

type codeKey struct {
	code string
	typ  contract.CodeType
}

// NewAggregator creates an Aggregator validating part categories against
// the given vocabulary.
func NewAggregator(vocab *reference.Vocabulary) *Aggregator {
	return &Aggregator{
		vocab:     vocab,
		seenCodes: make(map[codeKey]bool),
		seenInfo:  make(map[string]bool),
	}
}

// Record merges one validated stage result into the owned record and
// returns a snapshot of the updated record. Invalid results are ignored;
// the pipeline never hands them over, but the guard keeps the record
// trustworthy regardless of caller discipline.
func (a *Aggregator) Record(res StageResult) *DiagnosticRecord {
	if !res.Valid || res.Payload == nil {
		return a.Snapshot()
	}

	switch p := res.Payload.(type) {
	case contract.RealnessPayload:
		v := p.IsRealPhoto
		a.rec.IsRealPhoto = &v

	case contract.CategoryPayload:
		a.rec.Category = p.Category

	case contract.ErrorCodesPayload:
		// Error codes only exist for error_code images.
		if a.rec.Category != contract.CategoryErrorCode {
			return a.Snapshot()
		}
		for _, e := range p.Errors {
			key := codeKey{code: e.Code, typ: e.Type}
			if a.seenCodes[key] {
				continue
			}
			a.seenCodes[key] = true
			a.rec.Errors = append(a.rec.Errors, e)
		}
		for _, info := range p.AdditionalInfo {
			if a.seenInfo[info] {
				continue
			}
			a.seenInfo[info] = true
			a.rec.AdditionalInfo = append(a.rec.AdditionalInfo, info)
		}

	case contract.PartsPayload:
		// Part categories only exist for working_machine images.
		if a.rec.Category != contract.CategoryWorkingMachine {
			return a.Snapshot()
		}
		a.rawParts = append(a.rawParts, p.PartCategories...)
		a.rec.PartCategories = a.vocab.Canonicalize(a.rawParts)

	case contract.NarrativePayload:
		switch p.Kind {
		case contract.StageNarrativeAnalysis:
			a.narrative = p.Text
		case contract.StageRecommendationSynthesis:
			a.recommendation = p.Text
		}
		a.rec.Narrative = joinNarrative(a.narrative, a.recommendation)
	}

	return a.Snapshot()
}

// Snapshot returns a copy of the record accumulated so far.
func (a *Aggregator) Snapshot() *DiagnosticRecord {
	return a.rec.Clone()
}

// EnrichDescriptions fills in missing error descriptions from the code
// catalog. Descriptions already read off the display are kept.
func (a *Aggregator) EnrichDescriptions(catalog *reference.Catalog) {
	if catalog == nil {
		return
	}
	for i := range a.rec.Errors {
		if a.rec.Errors[i].Description == "" {
			e := a.rec.Errors[i]
			a.rec.Errors[i].Description = catalog.Describe(e.Code, string(e.Type))
		}
	}
}

// joinNarrative concatenates the analysis and recommendation texts,
// narrative stage first.
func joinNarrative(narrative, recommendation string) string {
	parts := make([]string, 0, 2)
	if narrative != "" {
		parts = append(parts, narrative)
	}
	if recommendation != "" {
		parts = append(parts, recommendation)
	}
	return strings.Join(parts, "\n\n")
}
