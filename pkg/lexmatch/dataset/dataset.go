// Package dataset defines the labeled utterance set the parser is trained
// on, together with its validation rules. Intents and entities are ordered
// slices rather than maps: registry ids are assigned in first-seen order,
// so iteration order must be deterministic.
package dataset

import (
	"fmt"

	"github.com/cognicore/lexmatch/pkg/lexmatch/internalerr"
)

// Dataset is a labeled utterance set for one language.
type Dataset struct {
	Language string   `yaml:"language" json:"language"`
	Intents  []Intent `yaml:"intents" json:"intents"`
	Entities []Entity `yaml:"entities" json:"entities"`
}

// Intent groups the training utterances of one intent.
type Intent struct {
	Name       string      `yaml:"name" json:"name"`
	Utterances []Utterance `yaml:"utterances" json:"utterances"`
}

// Utterance is an ordered chunk sequence.
type Utterance struct {
	Chunks []Chunk `yaml:"data" json:"data"`
}

// Chunk is either literal text or a slot reference. A chunk with a
// non-empty SlotName is a slot chunk; its Entity names the entity label
// the slot is typed with. Otherwise Text holds the literal.
type Chunk struct {
	Text     string `yaml:"text,omitempty" json:"text,omitempty"`
	SlotName string `yaml:"slot_name,omitempty" json:"slot_name,omitempty"`
	Entity   string `yaml:"entity,omitempty" json:"entity,omitempty"`
}

// IsSlot reports whether the chunk is a slot reference.
func (c Chunk) IsSlot() bool {
	return c.SlotName != ""
}

// Entity declares a custom entity and its gazetteer values.
type Entity struct {
	Label  string        `yaml:"label" json:"label"`
	Values []EntityValue `yaml:"values,omitempty" json:"values,omitempty"`
}

// EntityValue is one gazetteer value with optional synonyms.
type EntityValue struct {
	Value    string   `yaml:"value" json:"value"`
	Synonyms []string `yaml:"synonyms,omitempty" json:"synonyms,omitempty"`
}

// Validate checks the dataset for the properties the training index
// builder relies on: a language code, uniquely named intents, non-empty
// utterances, and slot chunks whose entity labels are declared.
func (d *Dataset) Validate() error {
	if d.Language == "" {
		return fmt.Errorf("%w: missing language", internalerr.ErrInvalidDataset)
	}

	declared := make(map[string]struct{}, len(d.Entities))
	for _, e := range d.Entities {
		if e.Label == "" {
			return fmt.Errorf("%w: entity with empty label", internalerr.ErrInvalidDataset)
		}
		if _, ok := declared[e.Label]; ok {
			return fmt.Errorf("%w: duplicate entity label %q", internalerr.ErrInvalidDataset, e.Label)
		}
		declared[e.Label] = struct{}{}
	}

	seen := make(map[string]struct{}, len(d.Intents))
	for _, intent := range d.Intents {
		if intent.Name == "" {
			return fmt.Errorf("%w: intent with empty name", internalerr.ErrInvalidDataset)
		}
		if _, ok := seen[intent.Name]; ok {
			return fmt.Errorf("%w: duplicate intent %q", internalerr.ErrInvalidDataset, intent.Name)
		}
		seen[intent.Name] = struct{}{}

		for i, utt := range intent.Utterances {
			if len(utt.Chunks) == 0 {
				return fmt.Errorf("%w: intent %q utterance %d has no chunks",
					internalerr.ErrInvalidDataset, intent.Name, i)
			}
			for _, chunk := range utt.Chunks {
				if !chunk.IsSlot() {
					continue
				}
				if chunk.Entity == "" {
					return fmt.Errorf("%w: intent %q slot %q has no entity label",
						internalerr.ErrInvalidDataset, intent.Name, chunk.SlotName)
				}
				if _, ok := declared[chunk.Entity]; !ok {
					return fmt.Errorf("%w: intent %q references undeclared entity %q",
						internalerr.ErrInvalidDataset, intent.Name, chunk.Entity)
				}
			}
		}
	}

	return nil
}
