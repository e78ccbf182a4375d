// Package prompts is the catalog of named, parameterized prompt templates
// the pipeline selects per stage. Built-in defaults can be overridden from
// a directory of <stage>.md files, so prompt wording is deployable without
// a rebuild.
package prompts

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/boom724/boomguru/internal/contract"
)

// Params carries the values interpolated into stage templates.
type Params struct {
	// LanguageName is the display name of the requested output language.
	LanguageName string

	// FinalJSON is the enriched error-code JSON fed to the
	// recommendation synthesis stage.
	FinalJSON string

	// Narrative is the narrative-analysis text fed to the part
	// category selection stage.
	Narrative string

	// Categories is the canonical part-category vocabulary, listed in
	// the part selection prompt.
	Categories []string
}

// Library holds one system-prompt template per stage kind.
type Library struct {
	templates map[contract.StageKind]*template.Template
}

// Default returns the built-in prompt library.
func Default() *Library {
	l := &Library{templates: make(map[contract.StageKind]*template.Template)}
	for kind, text := range defaultTemplates {
		l.templates[kind] = template.Must(template.New(string(kind)).Parse(text))
	}
	return l
}

// Load returns the default library with any <stage>.md files found in dir
// layered on top. Stage file names match the stage kinds, e.g.
// "category_classification.md".
func Load(dir string) (*Library, error) {
	l := Default()
	for kind := range defaultTemplates {
		path := filepath.Join(dir, string(kind)+".md")
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read prompt %s: %w", path, err)
		}
		tmpl, err := template.New(string(kind)).Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse prompt %s: %w", path, err)
		}
		l.templates[kind] = tmpl
	}
	return l, nil
}

// System renders the system prompt for the given stage.
func (l *Library) System(kind contract.StageKind, p Params) (string, error) {
	tmpl, ok := l.templates[kind]
	if !ok {
		return "", fmt.Errorf("no prompt template for stage %q", kind)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", kind, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// UserText returns the stage's user-message text. Most stages send only
// the image; the part selection stage attaches the narrative findings and
// the recommendation stage sends a fixed instruction.
func UserText(kind contract.StageKind, p Params) string {
	switch kind {
	case contract.StagePartCategorySelection:
		return "The following analysis captures the extracted findings about the machine or fault:\n" + p.Narrative
	case contract.StageRecommendationSynthesis:
		return "Please generate a response based on the provided error codes."
	default:
		return ""
	}
}

var defaultTemplates = map[contract.StageKind]string{
	contract.StageRealnessCheck: `You inspect photographs submitted with construction machinery service requests.
Decide whether the attached image is a genuine photograph taken on site, as opposed to a screenshot, a rendering, a brochure scan or a stock illustration.

Respond with JSON only:
{"is_real_photo": true}`,

	contract.StageCategoryClassification: `You are a dispatcher for a construction machinery diagnostics service.
Classify the attached image into exactly one category:
- "working_machine": a construction machine or machine part is visible
- "error_code": a monitor, display panel or gauge showing a fault/error code
- "other": anything else

Respond with JSON only:
{"category": "<working_machine|error_code|other>"}`,

	contract.StageErrorCodeExtraction: `You read fault codes from construction machinery display panels.
Extract every error code visible in the attached image. Codes are either:
- EID event codes: a number, optionally prefixed with "E" and annotated with a parenthetical severity, e.g. "E361(2)"
- CID-FMI pairs: component ID and failure mode identifier joined by a dash, e.g. "168-3"

Also collect any other readable display text as additional_info, in {{.LanguageName}}.

Respond with JSON only:
{"errors": [{"code": "...", "type": "EID|CID-FMI", "severity": "...", "description": "..."}], "additional_info": ["..."]}`,

	contract.StageNarrativeAnalysis: `You are a senior construction machinery technician.
Examine the attached photograph of a machine or machine part. Describe the component shown, its apparent condition, any visible wear, damage, leaks or missing parts, and what maintenance is advisable.

Write the analysis in {{.LanguageName}}, in plain technical prose a field operator can act on. Do not use JSON.`,

	contract.StagePartCategorySelection: `You assign construction machine issues to spare-part categories.
Given the attached photograph and the analysis findings in the user message, select every category that matches the affected parts. Choose only from this list, verbatim:
{{range .Categories}}- {{.}}
{{end}}
Respond with JSON only:
{"part_categories": ["..."]}

Return an empty list if no category applies.`,

	contract.StageRecommendationSynthesis: `You are a senior construction machinery technician advising a field operator.
The following fault codes were read from the machine's display and enriched with reference descriptions:

{{.FinalJSON}}

Explain in {{.LanguageName}} what these faults mean for the machine, how urgent they are, and what the operator should do next. Write plain technical prose. Do not use JSON.`,
}
