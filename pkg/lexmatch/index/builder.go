package index

import (
	"strings"

	"github.com/cognicore/lexmatch/pkg/lexmatch/dataset"
	"github.com/cognicore/lexmatch/pkg/lexmatch/text"
)

// Builder constructs an Index from a validated dataset. It owns the
// intent and slot registries while the build runs; the finished Index is
// immutable.
type Builder struct {
	language string
	stops    text.StopSet

	intentIDs map[string]int
	slotIDs   map[string]int
	intents   []string
	slots     []string
}

// NewBuilder creates a builder for one language and stop-word set.
func NewBuilder(language string, stops text.StopSet) *Builder {
	return &Builder{
		language:  language,
		stops:     stops,
		intentIDs: make(map[string]int),
		slotIDs:   make(map[string]int),
	}
}

// Build walks the dataset in order and produces the key lookup table,
// applying the collision policy as entries are generated: a new key is
// inserted, an identical duplicate is kept, and a key seen with a second,
// different output is deleted permanently. Deletion is a tombstone — a
// later utterance that reproduces the original output does not restore
// the key.
func (b *Builder) Build(ds *dataset.Dataset) *Index {
	m := make(map[string]Entry)
	dropped := make(map[string]struct{})

	for _, intent := range ds.Intents {
		intentID := b.intentID(intent.Name)
		for _, utt := range intent.Utterances {
			key, entry := b.keyFor(utt, intentID)

			if _, gone := dropped[key]; gone {
				continue
			}
			existing, ok := m[key]
			switch {
			case !ok:
				m[key] = entry
			case existing.Equal(entry):
				// idempotent duplicate
			default:
				delete(m, key)
				dropped[key] = struct{}{}
			}
		}
	}

	return &Index{
		Map:         m,
		IntentNames: b.intents,
		SlotNames:   b.slots,
	}
}

// keyFor renders one utterance to its normalized key and output entry.
// Literal chunks contribute their raw text; slot chunks contribute the
// lower-cased placeholder of their entity label and register a slot id.
func (b *Builder) keyFor(utt dataset.Utterance, intentID int) (string, Entry) {
	parts := make([]string, 0, len(utt.Chunks))
	slotIDs := []int{}

	for _, chunk := range utt.Chunks {
		if chunk.IsSlot() {
			parts = append(parts, strings.ToLower(Placeholder(chunk.Entity, b.language)))
			slotIDs = append(slotIDs, b.slotID(chunk.SlotName))
		} else {
			parts = append(parts, chunk.Text)
		}
	}

	key := DeriveKey(strings.Join(parts, " "), b.language, b.stops)
	return key, Entry{IntentID: intentID, SlotIDs: slotIDs}
}

func (b *Builder) intentID(name string) int {
	if id, ok := b.intentIDs[name]; ok {
		return id
	}
	id := len(b.intents)
	b.intentIDs[name] = id
	b.intents = append(b.intents, name)
	return id
}

func (b *Builder) slotID(name string) int {
	if id, ok := b.slotIDs[name]; ok {
		return id
	}
	id := len(b.slots)
	b.slotIDs[name] = id
	b.slots = append(b.slots, name)
	return id
}
