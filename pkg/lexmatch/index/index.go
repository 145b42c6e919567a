// Package index holds the training-time construction of the normalized-key
// lookup table and the key-derivation routine shared with parse time. Any
// divergence between the training and parse derivations breaks matching,
// so both sides call the same function.
package index

import (
	"strings"

	"github.com/cognicore/lexmatch/pkg/lexmatch/text"
)

// Entry is the output stored for one normalized key.
type Entry struct {
	IntentID int   `json:"intent_id"`
	SlotIDs  []int `json:"slot_ids"`
}

// Equal reports whether two entries decode to the same output.
func (e Entry) Equal(o Entry) bool {
	if e.IntentID != o.IntentID || len(e.SlotIDs) != len(o.SlotIDs) {
		return false
	}
	for i := range e.SlotIDs {
		if e.SlotIDs[i] != o.SlotIDs[i] {
			return false
		}
	}
	return true
}

// Index is the immutable product of a fit: the key lookup table plus the
// intent and slot registries. Registries are first-seen-order ordinal
// assignments and are persisted verbatim.
type Index struct {
	Map         map[string]Entry
	IntentNames []string
	SlotNames   []string
}

// IntentID returns the ordinal of an intent name, if registered.
func (ix *Index) IntentID(name string) (int, bool) {
	for i, n := range ix.IntentNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Placeholder derives the canonical marker for an entity label: light
// tokens concatenated, upper-cased, wrapped in '%'. It is computed the
// same way for training-time slot declarations and live detection kinds,
// which is what makes the two phases produce identical surface text.
func Placeholder(label, language string) string {
	return "%" + strings.ToUpper(strings.Join(text.TokenizeLight(label, language), "")) + "%"
}

// DeriveKey turns a text into its normalized key: light tokens whose
// normalized form is not a stop word, concatenated with no separator,
// lower-cased.
func DeriveKey(input, language string, stops text.StopSet) string {
	var b strings.Builder
	for _, tok := range text.TokenizeLight(input, language) {
		if stops.Contains(tok) {
			continue
		}
		b.WriteString(tok)
	}
	return strings.ToLower(b.String())
}

// DeriveRawKey derives the literal-text fallback key: light tokens of the
// unmodified text concatenated and lower-cased, with no stop-word
// filtering and no entity awareness.
func DeriveRawKey(input, language string) string {
	return strings.ToLower(strings.Join(text.TokenizeLight(input, language), ""))
}
