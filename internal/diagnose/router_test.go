package diagnose

import (
	"testing"

	"github.com/boom724/boomguru/internal/contract"
)

func boolPtr(b bool) *bool { return &b }

func TestRouterErrorCodePath(t *testing.T) {
	r := Router{}
	rec := &DiagnosticRecord{}

	kind, ok := r.Next("", rec)
	if !ok || kind != contract.StageRealnessCheck {
		t.Fatalf("start -> %q, %v", kind, ok)
	}

	rec.IsRealPhoto = boolPtr(true)
	kind, ok = r.Next(contract.StageRealnessCheck, rec)
	if !ok || kind != contract.StageCategoryClassification {
		t.Fatalf("realness -> %q, %v", kind, ok)
	}

	rec.Category = contract.CategoryErrorCode
	kind, ok = r.Next(contract.StageCategoryClassification, rec)
	if !ok || kind != contract.StageErrorCodeExtraction {
		t.Fatalf("classification -> %q, %v", kind, ok)
	}

	kind, ok = r.Next(contract.StageErrorCodeExtraction, rec)
	if !ok || kind != contract.StageRecommendationSynthesis {
		t.Fatalf("extraction -> %q, %v", kind, ok)
	}

	if _, ok = r.Next(contract.StageRecommendationSynthesis, rec); ok {
		t.Fatal("synthesis should be terminal")
	}
}

func TestRouterWorkingMachinePath(t *testing.T) {
	r := Router{}
	rec := &DiagnosticRecord{
		IsRealPhoto: boolPtr(true),
		Category:    contract.CategoryWorkingMachine,
	}

	kind, ok := r.Next(contract.StageCategoryClassification, rec)
	if !ok || kind != contract.StageNarrativeAnalysis {
		t.Fatalf("classification -> %q, %v", kind, ok)
	}

	kind, ok = r.Next(contract.StageNarrativeAnalysis, rec)
	if !ok || kind != contract.StagePartCategorySelection {
		t.Fatalf("narrative -> %q, %v", kind, ok)
	}

	if _, ok = r.Next(contract.StagePartCategorySelection, rec); ok {
		t.Fatal("part selection should be terminal")
	}
}

func TestRouterOtherIsTerminal(t *testing.T) {
	r := Router{}
	rec := &DiagnosticRecord{Category: contract.CategoryOther}
	if _, ok := r.Next(contract.StageCategoryClassification, rec); ok {
		t.Fatal("category other should be terminal")
	}
}

func TestRouterStopOnUnreal(t *testing.T) {
	rec := &DiagnosticRecord{IsRealPhoto: boolPtr(false)}

	// Default: classification still runs on an unreal-looking photo.
	if kind, ok := (Router{}).Next(contract.StageRealnessCheck, rec); !ok || kind != contract.StageCategoryClassification {
		t.Fatalf("default realness -> %q, %v", kind, ok)
	}

	if _, ok := (Router{StopOnUnreal: true}).Next(contract.StageRealnessCheck, rec); ok {
		t.Fatal("StopOnUnreal should terminate after negative realness check")
	}

	// A real photo proceeds either way.
	rec.IsRealPhoto = boolPtr(true)
	if kind, ok := (Router{StopOnUnreal: true}).Next(contract.StageRealnessCheck, rec); !ok || kind != contract.StageCategoryClassification {
		t.Fatalf("StopOnUnreal with real photo -> %q, %v", kind, ok)
	}
}
