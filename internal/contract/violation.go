package contract

import "fmt"

// Violation reports model output that failed the stage's contract:
// unparsable JSON, a missing required key, an enum value outside its set,
// or a numeric field outside its range. Violations are reported, never
// silently coerced; the pipeline re-prompts once before escalating.
type Violation struct {
	Kind StageKind
	Raw  string
	Err  error
}

func (v *Violation) Error() string {
	return fmt.Sprintf("contract violation in %s: %v", v.Kind, v.Err)
}

func (v *Violation) Unwrap() error { return v.Err }

func violationf(kind StageKind, raw string, format string, args ...any) *Violation {
	return &Violation{Kind: kind, Raw: raw, Err: fmt.Errorf(format, args...)}
}
