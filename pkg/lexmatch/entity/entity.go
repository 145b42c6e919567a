// Package entity defines the detected entity span model and the detector
// capability consumed by the parser. The parser never detects entities
// itself; it zips externally detected spans with the slot ids stored in
// the training index.
package entity

import "sort"

// Span is one detected entity occurrence in a text.
type Span struct {
	Kind  string `json:"kind"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Value string `json:"value"`
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// overlaps reports whether two spans share at least one byte.
func (s Span) overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Detector finds entity occurrences in a text. Implementations are
// synchronous black boxes; the parser propagates their errors unmasked.
type Detector interface {
	Detect(text string) ([]Span, error)
}

// Dedup removes overlapping spans. The longer span wins; equal lengths
// are broken by the earlier start. The result is sorted by ascending
// start offset.
func Dedup(spans []Span) []Span {
	ordered := make([]Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Len() != ordered[j].Len() {
			return ordered[i].Len() > ordered[j].Len()
		}
		return ordered[i].Start < ordered[j].Start
	})

	var kept []Span
	for _, cand := range ordered {
		conflict := false
		for _, k := range kept {
			if cand.overlaps(k) {
				conflict = true
				break
			}
		}
		if !conflict {
			kept = append(kept, cand)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].Start < kept[j].Start
	})
	return kept
}

// ReplaceWithPlaceholders rewrites text, substituting each span with the
// string returned by placeholder for its kind. Spans must be sorted by
// start offset and non-overlapping, which Dedup guarantees.
func ReplaceWithPlaceholders(text string, spans []Span, placeholder func(kind string) string) string {
	if len(spans) == 0 {
		return text
	}

	var b []byte
	cur := 0
	for _, sp := range spans {
		if sp.Start < cur || sp.End > len(text) {
			continue
		}
		b = append(b, text[cur:sp.Start]...)
		b = append(b, placeholder(sp.Kind)...)
		cur = sp.End
	}
	b = append(b, text[cur:]...)
	return string(b)
}
