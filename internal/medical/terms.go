// Package medical spots clinical vocabulary in transcripts.
package medical

import (
	"strings"
	"unicode"
)

var defaultTerms = []string{
	"hypertension", "diabetes", "myocardial", "infarction", "antibiotics", "analgesic",
	"asthma", "allergy", "anemia", "arrhythmia", "biopsy", "bronchitis", "cardiac",
	"chemotherapy", "cholesterol", "dementia", "dialysis", "embolism", "epilepsy",
	"fracture", "hemorrhage", "hypotension", "influenza", "insulin", "migraine",
	"pneumonia", "sepsis", "stroke", "tachycardia", "thrombosis", "tumor",
}

type Extractor struct {
	terms map[string]struct{}
}

func NewExtractor(terms ...string) *Extractor {
	if len(terms) == 0 {
		terms = defaultTerms
	}
	e := &Extractor{terms: make(map[string]struct{}, len(terms))}
	for _, t := range terms {
		e.terms[strings.ToLower(t)] = struct{}{}
	}
	return e
}

// Extract returns known terms found in text, lowercased, in order of first
// appearance and without repeats.
func (e *Extractor) Extract(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})

	seen := make(map[string]struct{})
	out := []string{}
	for _, w := range words {
		if _, ok := e.terms[w]; !ok {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
