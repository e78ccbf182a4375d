package contract

import "github.com/boom724/boomguru/internal/llm"

// SchemaFor returns the JSON Schema handed to the provider for native
// structured output, or nil for free-text stages. The contract layer
// remains the authority: Validate runs regardless of what the provider
// claims to have enforced.
func SchemaFor(kind StageKind) *llm.Schema {
	switch kind {
	case StageRealnessCheck:
		return realnessSchema
	case StageCategoryClassification:
		return categorySchema
	case StageErrorCodeExtraction:
		return errorCodesSchema
	case StagePartCategorySelection:
		return partsSchema
	default:
		return nil
	}
}

var realnessSchema = &llm.Schema{
	Name:        "realness-check",
	Description: "Whether the image is a genuine photograph rather than a render, screenshot of a screen, or stock illustration",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"is_real_photo": map[string]any{
				"type":        "boolean",
				"description": "True if the image is a real photograph taken on site",
			},
		},
		"required":             []any{"is_real_photo"},
		"additionalProperties": false,
	},
}

var categorySchema = &llm.Schema{
	Name:        "category-classification",
	Description: "Classification of a construction-machine image",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"category": map[string]any{
				"type":        "string",
				"enum":        []any{"working_machine", "error_code", "other"},
				"description": "working_machine: machine or part visible; error_code: a fault code display; other: unrelated image",
			},
		},
		"required":             []any{"category"},
		"additionalProperties": false,
	},
}

// OpenAI strict structured output requires every object to list all of
// its properties as required and to forbid additional properties; absent
// values come back as empty strings rather than omitted keys.
var errorCodesSchema = &llm.Schema{
	Name:        "error-code-extraction",
	Description: "Machine fault codes read from an error display",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"errors": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"code": map[string]any{
							"type":        "string",
							"description": "The fault code as displayed, e.g. \"E361\" or \"168-3\"",
						},
						"type": map[string]any{
							"type": "string",
							"enum": []any{"EID", "CID-FMI"},
						},
						"severity": map[string]any{
							"type":        "string",
							"description": "Severity level if displayed, e.g. \"2\"; empty if not shown",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "Any descriptive text shown next to the code; empty if none",
						},
					},
					"required":             []any{"code", "type", "severity", "description"},
					"additionalProperties": false,
				},
			},
			"additional_info": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []any{"errors", "additional_info"},
		"additionalProperties": false,
	},
}

var partsSchema = &llm.Schema{
	Name:        "part-category-selection",
	Description: "Part categories affected by the issues described in the analysis",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"part_categories": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Category names, verbatim from the provided list",
			},
		},
		"required":             []any{"part_categories"},
		"additionalProperties": false,
	},
}
