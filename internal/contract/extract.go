package contract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON locates the first well-formed JSON object or array inside
// raw model output. Models wrap JSON in markdown fences or prose despite
// instructions, so the wrapping is stripped rather than rejected.
func ExtractJSON(raw string) (json.RawMessage, error) {
	s := stripFences(raw)

	for i := 0; i < len(s); i++ {
		if s[i] != '{' && s[i] != '[' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(s[i:]))
		var value json.RawMessage
		if err := dec.Decode(&value); err == nil {
			return value, nil
		}
	}

	return nil, fmt.Errorf("no JSON object or array found in model output")
}

// stripFences removes markdown code fence markers (``` and ```json).
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
