// Package reference holds the externally configured lookup data the
// pipeline consumes: the canonical part-category vocabulary and the
// fault-code description tables.
package reference

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// defaultPartCategories is the canonical ordered vocabulary used by the
// fleet this service was built for. Order here is the output order.
var defaultPartCategories = []string{
	"ATASMANLAR-DIGER",
	"ATASMANLAR-KIRICI",
	"ATASMANLAR-KOVA",
	"HIDROLIK PARÇALARI - HORTUM / RAKOR",
	"HIDROLIK PARÇALARI - SILINDIR",
	"ELEKTIRIK VE DIĞER PARÇALAR",
	"SASE PARCALARI",
	"YÜRÜYÜŞ TAKIMI",
	"LASTIK",
}

// Vocabulary is an ordered set of valid part-category strings.
// Selections are always emitted in the vocabulary's declared order,
// regardless of detection order.
type Vocabulary struct {
	ordered []string
	index   map[string]int
}

// NewVocabulary builds a Vocabulary from an ordered category list.
// Duplicates keep their first position.
func NewVocabulary(categories []string) *Vocabulary {
	v := &Vocabulary{index: make(map[string]int, len(categories))}
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := v.index[c]; ok {
			continue
		}
		v.index[c] = len(v.ordered)
		v.ordered = append(v.ordered, c)
	}
	return v
}

// DefaultVocabulary returns the built-in canonical vocabulary.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary(defaultPartCategories)
}

// LoadVocabulary reads a vocabulary from a file with one category per
// line. Blank lines and lines starting with '#' are skipped.
func LoadVocabulary(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer f.Close()

	var categories []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		categories = append(categories, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("vocabulary file %s is empty", path)
	}
	return NewVocabulary(categories), nil
}

// Contains reports whether the category is in the vocabulary.
func (v *Vocabulary) Contains(category string) bool {
	_, ok := v.index[category]
	return ok
}

// Categories returns the vocabulary in declared order.
func (v *Vocabulary) Categories() []string {
	out := make([]string, len(v.ordered))
	copy(out, v.ordered)
	return out
}

// Canonicalize filters selected down to vocabulary members and returns
// them in vocabulary order, deduplicated. Unknown strings are dropped:
// a degraded signal from the model, not an error.
func (v *Vocabulary) Canonicalize(selected []string) []string {
	seen := make(map[string]bool, len(selected))
	for _, s := range selected {
		s = strings.TrimSpace(s)
		if v.Contains(s) {
			seen[s] = true
		}
	}

	var out []string
	for _, c := range v.ordered {
		if seen[c] {
			out = append(out, c)
		}
	}
	return out
}
