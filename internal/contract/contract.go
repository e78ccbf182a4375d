package contract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Validate parses raw model output for the given stage and returns its
// typed payload. Any deviation from the stage's schema (unparsable JSON,
// missing keys, out-of-set enums, out-of-range codes) is a *Violation.
func Validate(kind StageKind, raw string) (Payload, error) {
	switch kind {
	case StageRealnessCheck:
		return validateRealness(raw)
	case StageCategoryClassification:
		return validateCategory(raw)
	case StageErrorCodeExtraction:
		return validateErrorCodes(raw)
	case StagePartCategorySelection:
		return validateParts(raw)
	case StageNarrativeAnalysis, StageRecommendationSynthesis:
		return validateNarrative(kind, raw)
	default:
		return nil, violationf(kind, raw, "unknown stage kind %q", kind)
	}
}

func validateRealness(raw string) (Payload, error) {
	kind := StageRealnessCheck
	body, err := ExtractJSON(raw)
	if err != nil {
		return nil, violationf(kind, raw, "%v", err)
	}

	var wire struct {
		IsRealPhoto *bool `json:"is_real_photo"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, violationf(kind, raw, "decode: %v", err)
	}
	if wire.IsRealPhoto == nil {
		return nil, violationf(kind, raw, "missing required key %q", "is_real_photo")
	}

	return RealnessPayload{IsRealPhoto: *wire.IsRealPhoto}, nil
}

func validateCategory(raw string) (Payload, error) {
	kind := StageCategoryClassification
	body, err := ExtractJSON(raw)
	if err != nil {
		return nil, violationf(kind, raw, "%v", err)
	}

	var wire struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, violationf(kind, raw, "decode: %v", err)
	}
	if wire.Category == "" {
		return nil, violationf(kind, raw, "missing required key %q", "category")
	}

	switch Category(wire.Category) {
	case CategoryWorkingMachine, CategoryErrorCode, CategoryOther:
		return CategoryPayload{Category: Category(wire.Category)}, nil
	}
	return nil, violationf(kind, raw, "category %q not in {working_machine, error_code, other}", wire.Category)
}

// flexString decodes a JSON string or number as a string. Models emit
// fault codes both ways.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func validateErrorCodes(raw string) (Payload, error) {
	kind := StageErrorCodeExtraction
	body, err := ExtractJSON(raw)
	if err != nil {
		return nil, violationf(kind, raw, "%v", err)
	}

	var wire struct {
		Errors *[]struct {
			Code        flexString `json:"code"`
			Type        string     `json:"type"`
			Severity    flexString `json:"severity"`
			Description string     `json:"description"`
		} `json:"errors"`
		AdditionalInfo []flexString `json:"additional_info"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, violationf(kind, raw, "decode: %v", err)
	}
	if wire.Errors == nil {
		return nil, violationf(kind, raw, "missing required key %q", "errors")
	}

	payload := ErrorCodesPayload{}
	for _, e := range *wire.Errors {
		code, err := normalizeErrorCode(string(e.Code), e.Type, string(e.Severity), e.Description)
		if err != nil {
			return nil, &Violation{Kind: kind, Raw: raw, Err: err}
		}
		payload.Errors = append(payload.Errors, code)
	}
	for _, info := range wire.AdditionalInfo {
		if s := strings.TrimSpace(string(info)); s != "" {
			payload.AdditionalInfo = append(payload.AdditionalInfo, s)
		}
	}

	return payload, nil
}

// severitySuffix matches a parenthetical severity annotation, e.g. "E123(2)".
var severitySuffix = regexp.MustCompile(`^(.*?)\((\d+)\)\s*$`)

// normalizeErrorCode validates one detected fault code and splits any
// parenthetical severity annotation out of the code string.
func normalizeErrorCode(code, codeType, severity, description string) (ErrorCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrorCode{}, errf("error entry has empty code")
	}

	if m := severitySuffix.FindStringSubmatch(code); m != nil {
		code = strings.TrimSpace(m[1])
		if severity == "" {
			severity = m[2]
		}
	}

	switch CodeType(codeType) {
	case CodeTypeEID:
		numeric := strings.TrimPrefix(strings.TrimPrefix(code, "E"), "e")
		n, err := strconv.Atoi(numeric)
		if err != nil {
			return ErrorCode{}, errf("EID code %q is not numeric", code)
		}
		if n < EIDMin || n > EIDMax {
			return ErrorCode{}, errf("EID code %d outside [%d, %d]", n, EIDMin, EIDMax)
		}
	case CodeTypeCIDFMI:
		cidPart, fmiPart, ok := strings.Cut(code, "-")
		if !ok {
			return ErrorCode{}, errf("CID-FMI code %q is not of form CID-FMI", code)
		}
		cid, err := strconv.Atoi(strings.TrimSpace(cidPart))
		if err != nil || cid < 0 {
			return ErrorCode{}, errf("CID part of %q is not a valid integer", code)
		}
		fmi, err := strconv.Atoi(strings.TrimSpace(fmiPart))
		if err != nil {
			return ErrorCode{}, errf("FMI part of %q is not a valid integer", code)
		}
		if fmi < FMIMin || fmi > FMIMax {
			return ErrorCode{}, errf("FMI value %d outside [%d, %d]", fmi, FMIMin, FMIMax)
		}
	default:
		return ErrorCode{}, errf("code type %q not in {EID, CID-FMI}", codeType)
	}

	return ErrorCode{
		Code:        code,
		Type:        CodeType(codeType),
		Severity:    severity,
		Description: strings.TrimSpace(description),
	}, nil
}

func validateParts(raw string) (Payload, error) {
	kind := StagePartCategorySelection
	body, err := ExtractJSON(raw)
	if err != nil {
		return nil, violationf(kind, raw, "%v", err)
	}

	var wire struct {
		PartCategories json.RawMessage `json:"part_categories"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, violationf(kind, raw, "decode: %v", err)
	}
	if wire.PartCategories == nil {
		return nil, violationf(kind, raw, "missing required key %q", "part_categories")
	}

	// The model returns either a list of category strings or a single
	// bare string. Non-string items are a degraded signal, not an error.
	var categories []string
	var single string
	if err := json.Unmarshal(wire.PartCategories, &single); err == nil {
		categories = []string{single}
	} else {
		var items []json.RawMessage
		if err := json.Unmarshal(wire.PartCategories, &items); err != nil {
			return nil, violationf(kind, raw, "part_categories is neither a string nor an array")
		}
		for _, item := range items {
			var s string
			if err := json.Unmarshal(item, &s); err == nil {
				categories = append(categories, s)
			}
		}
	}

	payload := PartsPayload{}
	for _, c := range categories {
		if s := strings.TrimSpace(c); s != "" {
			payload.PartCategories = append(payload.PartCategories, s)
		}
	}
	return payload, nil
}

func validateNarrative(kind StageKind, raw string) (Payload, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, violationf(kind, raw, "empty narrative response")
	}
	return NarrativePayload{Kind: kind, Text: text}, nil
}

func errf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
