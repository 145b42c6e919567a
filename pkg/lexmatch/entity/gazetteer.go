package entity

import (
	"strings"

	"github.com/cognicore/lexmatch/pkg/lexmatch/dataset"
	"github.com/cognicore/lexmatch/pkg/lexmatch/text"
)

// Gazetteer is a dictionary-based detector built from the entity values
// declared in a dataset. Matching is case-insensitive and greedy: at each
// position the longest known phrase wins.
type Gazetteer struct {
	language  string
	phrases   map[string]string // normalized phrase -> entity label
	maxTokens int
}

// NewGazetteer builds a detector from entity declarations. Values and
// their synonyms all map to the declaring entity's label.
func NewGazetteer(entities []dataset.Entity, language string) *Gazetteer {
	g := &Gazetteer{
		language: language,
		phrases:  make(map[string]string),
	}
	for _, ent := range entities {
		for _, val := range ent.Values {
			g.add(val.Value, ent.Label)
			for _, syn := range val.Synonyms {
				g.add(syn, ent.Label)
			}
		}
	}
	return g
}

func (g *Gazetteer) add(value, label string) {
	tokens := text.TokenizeLight(value, g.language)
	if len(tokens) == 0 {
		return
	}
	if len(tokens) > g.maxTokens {
		g.maxTokens = len(tokens)
	}
	g.phrases[normalizePhrase(tokens)] = label
}

// Detect implements Detector.
func (g *Gazetteer) Detect(input string) ([]Span, error) {
	tokens := text.Tokenize(input, g.language)

	var spans []Span
	for i := 0; i < len(tokens); {
		matched := 0
		limit := g.maxTokens
		if rest := len(tokens) - i; limit > rest {
			limit = rest
		}
		for n := limit; n >= 1; n-- {
			window := make([]string, n)
			for j := 0; j < n; j++ {
				window[j] = tokens[i+j].Value
			}
			if kind, ok := g.phrases[normalizePhrase(window)]; ok {
				start := tokens[i].Start
				end := tokens[i+n-1].End
				spans = append(spans, Span{
					Kind:  kind,
					Start: start,
					End:   end,
					Value: input[start:end],
				})
				matched = n
				break
			}
		}
		if matched > 0 {
			i += matched
		} else {
			i++
		}
	}

	return spans, nil
}

func normalizePhrase(tokens []string) string {
	normalized := make([]string, len(tokens))
	for i, tok := range tokens {
		normalized[i] = text.Normalize(tok)
	}
	return strings.Join(normalized, " ")
}
