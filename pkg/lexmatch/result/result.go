// Package result defines the external-facing result shapes shared by the
// parsing entry points.
package result

// IntentClassification names a matched intent and the parser's confidence
// in it. This parser is deterministic, so probabilities are always 1.0
// for a match and 0.0 otherwise. An empty IntentName is the explicit
// "no intent" sentinel.
type IntentClassification struct {
	IntentName  string  `json:"intent_name"`
	Probability float64 `json:"probability"`
}

// Range is a half-open byte range into the input text.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Slot is a named, typed span extracted from the input.
type Slot struct {
	Range    Range  `json:"range"`
	RawValue string `json:"raw_value"`
	Entity   string `json:"entity"`
	SlotName string `json:"slot_name"`
}

// ParsingResult is the full output of parsing one input.
type ParsingResult struct {
	Input  string               `json:"input"`
	Intent IntentClassification `json:"intent"`
	Slots  []Slot               `json:"slots"`
}

// ExtractionResult is a ParsingResult without its input, used by the
// top-n form of parse.
type ExtractionResult struct {
	Intent IntentClassification `json:"intent"`
	Slots  []Slot               `json:"slots"`
}

// IsEmpty reports whether the result carries no matched intent.
func (r ParsingResult) IsEmpty() bool {
	return r.Intent.IntentName == ""
}

// Empty builds the no-match result for an input. The parser is fully
// confident in its own binary verdict, including the verdict that
// nothing matched, so the probability is 1.0.
func Empty(input string) ParsingResult {
	return ParsingResult{
		Input:  input,
		Intent: IntentClassification{Probability: 1.0},
		Slots:  []Slot{},
	}
}
