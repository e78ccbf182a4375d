package diagnose

import (
	"reflect"
	"testing"

	"github.com/boom724/boomguru/internal/contract"
	"github.com/boom724/boomguru/internal/reference"
)

func validResult(kind contract.StageKind, payload contract.Payload) StageResult {
	return StageResult{Kind: kind, Payload: payload, Valid: true}
}

func TestAggregatorErrorCodeFlow(t *testing.T) {
	agg := NewAggregator(reference.DefaultVocabulary())

	agg.Record(validResult(contract.StageRealnessCheck, contract.RealnessPayload{IsRealPhoto: true}))
	agg.Record(validResult(contract.StageCategoryClassification, contract.CategoryPayload{Category: contract.CategoryErrorCode}))
	agg.Record(validResult(contract.StageErrorCodeExtraction, contract.ErrorCodesPayload{
		Errors: []contract.ErrorCode{
			{Code: "E361", Type: contract.CodeTypeEID, Severity: "2"},
			{Code: "168-3", Type: contract.CodeTypeCIDFMI},
		},
		AdditionalInfo: []string{"Low coolant level"},
	}))
	rec := agg.Record(validResult(contract.StageRecommendationSynthesis, contract.NarrativePayload{
		Kind: contract.StageRecommendationSynthesis,
		Text: "Stop the machine and check the coolant circuit.",
	}))

	if rec.IsRealPhoto == nil || !*rec.IsRealPhoto {
		t.Error("is_real_photo not recorded")
	}
	if rec.Category != contract.CategoryErrorCode {
		t.Errorf("category = %q", rec.Category)
	}
	if len(rec.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(rec.Errors))
	}
	if rec.Errors[0].Code != "E361" || rec.Errors[1].Code != "168-3" {
		t.Errorf("detection order not preserved: %+v", rec.Errors)
	}
	if rec.Narrative != "Stop the machine and check the coolant circuit." {
		t.Errorf("narrative = %q", rec.Narrative)
	}
}

func TestAggregatorDedupesCodes(t *testing.T) {
	agg := NewAggregator(reference.DefaultVocabulary())
	agg.Record(validResult(contract.StageCategoryClassification, contract.CategoryPayload{Category: contract.CategoryErrorCode}))

	payload := contract.ErrorCodesPayload{
		Errors: []contract.ErrorCode{
			{Code: "E361", Type: contract.CodeTypeEID},
			{Code: "E361", Type: contract.CodeTypeEID, Severity: "3"},
		},
		AdditionalInfo: []string{"warning lamp on", "warning lamp on"},
	}
	rec := agg.Record(validResult(contract.StageErrorCodeExtraction, payload))

	if len(rec.Errors) != 1 {
		t.Errorf("expected 1 deduped error, got %d", len(rec.Errors))
	}
	if len(rec.AdditionalInfo) != 1 {
		t.Errorf("expected 1 deduped info entry, got %d", len(rec.AdditionalInfo))
	}

	// Recording the same payload again changes nothing.
	again := agg.Record(validResult(contract.StageErrorCodeExtraction, payload))
	if !reflect.DeepEqual(rec, again) {
		t.Errorf("re-recording changed the record:\n first: %+v\nsecond: %+v", rec, again)
	}
}

func TestAggregatorCategoryGuards(t *testing.T) {
	// Error codes are dropped unless the category is error_code.
	agg := NewAggregator(reference.DefaultVocabulary())
	agg.Record(validResult(contract.StageCategoryClassification, contract.CategoryPayload{Category: contract.CategoryOther}))
	rec := agg.Record(validResult(contract.StageErrorCodeExtraction, contract.ErrorCodesPayload{
		Errors: []contract.ErrorCode{{Code: "E361", Type: contract.CodeTypeEID}},
	}))
	if len(rec.Errors) != 0 {
		t.Errorf("errors recorded for category other: %+v", rec.Errors)
	}

	// Part categories are dropped unless the category is working_machine.
	rec = agg.Record(validResult(contract.StagePartCategorySelection, contract.PartsPayload{
		PartCategories: []string{"LASTIK"},
	}))
	if len(rec.PartCategories) != 0 {
		t.Errorf("part categories recorded for category other: %v", rec.PartCategories)
	}
}

func TestAggregatorCanonicalizesParts(t *testing.T) {
	agg := NewAggregator(reference.DefaultVocabulary())
	agg.Record(validResult(contract.StageCategoryClassification, contract.CategoryPayload{Category: contract.CategoryWorkingMachine}))
	rec := agg.Record(validResult(contract.StagePartCategorySelection, contract.PartsPayload{
		PartCategories: []string{"LASTIK", "invented part", "ATASMANLAR-KOVA"},
	}))

	want := []string{"ATASMANLAR-KOVA", "LASTIK"}
	if !reflect.DeepEqual(rec.PartCategories, want) {
		t.Errorf("part categories = %v, want %v", rec.PartCategories, want)
	}
}

func TestAggregatorNarrativeOrder(t *testing.T) {
	agg := NewAggregator(reference.DefaultVocabulary())
	agg.Record(validResult(contract.StageCategoryClassification, contract.CategoryPayload{Category: contract.CategoryWorkingMachine}))
	agg.Record(validResult(contract.StageNarrativeAnalysis, contract.NarrativePayload{
		Kind: contract.StageNarrativeAnalysis, Text: "Visible wear on the bucket edge.",
	}))
	rec := agg.Record(validResult(contract.StageRecommendationSynthesis, contract.NarrativePayload{
		Kind: contract.StageRecommendationSynthesis, Text: "Replace the cutting edge.",
	}))

	want := "Visible wear on the bucket edge.\n\nReplace the cutting edge."
	if rec.Narrative != want {
		t.Errorf("narrative = %q, want %q", rec.Narrative, want)
	}
}

func TestAggregatorIgnoresInvalid(t *testing.T) {
	agg := NewAggregator(reference.DefaultVocabulary())
	rec := agg.Record(StageResult{Kind: contract.StageRealnessCheck, RawText: "garbage", Valid: false})
	if rec.IsRealPhoto != nil {
		t.Error("invalid result mutated the record")
	}
}

func TestAggregatorSnapshotIsIsolated(t *testing.T) {
	agg := NewAggregator(reference.DefaultVocabulary())
	agg.Record(validResult(contract.StageCategoryClassification, contract.CategoryPayload{Category: contract.CategoryErrorCode}))
	agg.Record(validResult(contract.StageErrorCodeExtraction, contract.ErrorCodesPayload{
		Errors: []contract.ErrorCode{{Code: "E361", Type: contract.CodeTypeEID}},
	}))

	snap := agg.Snapshot()
	snap.Errors[0].Code = "tampered"
	snap.Category = contract.CategoryOther

	if got := agg.Snapshot(); got.Errors[0].Code != "E361" || got.Category != contract.CategoryErrorCode {
		t.Error("mutating a snapshot leaked into the aggregator state")
	}
}

func TestEnrichDescriptions(t *testing.T) {
	catalog := reference.NewCatalog()
	catalog.AddEID(361, "Engine Overspeed")

	agg := NewAggregator(reference.DefaultVocabulary())
	agg.Record(validResult(contract.StageCategoryClassification, contract.CategoryPayload{Category: contract.CategoryErrorCode}))
	agg.Record(validResult(contract.StageErrorCodeExtraction, contract.ErrorCodesPayload{
		Errors: []contract.ErrorCode{
			{Code: "E361", Type: contract.CodeTypeEID},
			{Code: "E999", Type: contract.CodeTypeEID, Description: "from the display"},
			{Code: "1-1", Type: contract.CodeTypeCIDFMI},
		},
	}))
	agg.EnrichDescriptions(catalog)

	rec := agg.Snapshot()
	if rec.Errors[0].Description != "Engine Overspeed" {
		t.Errorf("catalog description not applied: %q", rec.Errors[0].Description)
	}
	if rec.Errors[1].Description != "from the display" {
		t.Errorf("display description overwritten: %q", rec.Errors[1].Description)
	}
	if rec.Errors[2].Description != reference.DescriptionNotFound {
		t.Errorf("missing entry should fall back: %q", rec.Errors[2].Description)
	}
}
