// Package textnorm provides language-aware token normalization. It produces
// the candidate surface-form variants consumed by both matching strategies.
package textnorm

import (
	"sort"
	"strings"

	"github.com/suqly/category-suggester/internal/domain"
)

// Normalizer strips known per-language prefixes from tokens.
type Normalizer struct {
	// prefixes per language, sorted longest-first so the most specific
	// prefix wins.
	prefixes map[domain.Language][]string
}

// DefaultPrefixes returns the built-in prefix tables: the Arabic definite
// article family and the common Kurdish prepositional prefixes.
func DefaultPrefixes() map[domain.Language][]string {
	return map[domain.Language][]string{
		domain.LanguageArabic:  {"ال", "وال", "بال", "كال", "فال", "لل", "و"},
		// The Sorani prepositions appear both fused and joined with a
		// zero-width non-joiner (U+200C), so both spellings are listed.
		domain.LanguageKurdish: {"به‌", "له‌", "به", "له", "بێ"},
	}
}

// NewNormalizer creates a Normalizer from per-language prefix tables. Nil
// falls back to the defaults.
func NewNormalizer(prefixes map[domain.Language][]string) *Normalizer {
	if prefixes == nil {
		prefixes = DefaultPrefixes()
	}
	sorted := make(map[domain.Language][]string, len(prefixes))
	for lang, list := range prefixes {
		cp := make([]string, len(list))
		copy(cp, list)
		sort.Slice(cp, func(i, j int) bool { return len(cp[i]) > len(cp[j]) })
		sorted[lang] = cp
	}
	return &Normalizer{prefixes: sorted}
}

// Normalize returns the surface-form variants of word: always the original
// word first, plus at most one prefix-stripped variant. Prefixes are tried
// longest-first and stripping stops after the first prefix that leaves a
// non-empty residue. Unknown languages yield only the original word.
func (n *Normalizer) Normalize(word string, lang domain.Language) []string {
	variants := []string{word}

	for _, prefix := range n.prefixes[lang] {
		if !strings.HasPrefix(word, prefix) {
			continue
		}
		stripped := word[len(prefix):]
		if stripped == "" {
			continue
		}
		variants = append(variants, stripped)
		break
	}

	return variants
}

// Preprocess tokenizes text on whitespace, expands every token into its
// variants, deduplicates the union preserving first-seen order, and rejoins
// with single spaces. Blank input yields an empty string.
func (n *Normalizer) Preprocess(text string, lang domain.Language) string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return ""
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, len(tokens)*2)
	for _, token := range tokens {
		for _, variant := range n.Normalize(token, lang) {
			if _, ok := seen[variant]; ok {
				continue
			}
			seen[variant] = struct{}{}
			out = append(out, variant)
		}
	}

	return strings.Join(out, " ")
}
