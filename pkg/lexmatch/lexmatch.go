// Package lexmatch implements a deterministic, exact-match intent and slot
// extractor. Given raw text it decides whether the text is an exact
// normalized match of a previously seen training utterance, after entity
// substitution, and if so returns the associated intent and slot spans.
//
// The parser is strict by nature: precision is very high and recall is
// low, which makes it a good first pass before a statistical fallback.
// A match is binary per key; there is no ranking, no fuzzy matching, and
// no entity detection inside the matcher itself.
package lexmatch

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/lexmatch/pkg/lexmatch/config"
	"github.com/cognicore/lexmatch/pkg/lexmatch/dataset"
	"github.com/cognicore/lexmatch/pkg/lexmatch/entity"
	"github.com/cognicore/lexmatch/pkg/lexmatch/index"
	"github.com/cognicore/lexmatch/pkg/lexmatch/internalerr"
	"github.com/cognicore/lexmatch/pkg/lexmatch/result"
	"github.com/cognicore/lexmatch/pkg/lexmatch/text"
)

// Options configures a Parser instance.
type Options struct {
	// Config controls key derivation. The zero value disables stop-word
	// filtering.
	Config config.Config

	// Detectors are the external entity detectors consulted on every
	// parse. A gazetteer built from the dataset's entity values is a
	// common choice, see entity.NewGazetteer.
	Detectors []entity.Detector

	// StopWords overrides the built-in per-language stop-word list.
	// Only consulted when Config.IgnoreStopWords is set.
	StopWords []string

	// Logger receives fit and parse timing logs. Defaults to a no-op.
	Logger *zap.Logger
}

// Parser is the deterministic lookup parser.
//
// A Parser is either untrained or trained: the index is nil until Fit
// succeeds and every query method fails with ErrNotTrained before that.
// After Fit completes the index and registries are immutable, so any
// number of goroutines may call Parse, GetIntents and GetSlots
// concurrently. Fit itself must not run concurrently with queries or
// with another Fit; the parser performs no locking.
type Parser struct {
	cfg       config.Config
	detectors []entity.Detector
	stopOver  []string
	logger    *zap.Logger

	language string
	stops    text.StopSet
	index    *index.Index
}

// New creates an untrained Parser.
func New(opts Options) *Parser {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		cfg:       opts.Config,
		detectors: opts.Detectors,
		stopOver:  opts.StopWords,
		logger:    logger,
	}
}

// Fitted reports whether the parser has been trained.
func (p *Parser) Fitted() bool {
	return p.index != nil
}

// Fit trains the parser on a dataset, replacing any prior index
// wholesale. The new index is built completely before it is swapped in,
// so concurrent readers of an already-fitted parser never observe a
// partially built table. Fitting twice on the same dataset yields an
// identical index.
func (p *Parser) Fit(ds *dataset.Dataset) error {
	start := time.Now()

	if ds == nil {
		return internalerr.ErrInvalidDataset
	}
	if err := ds.Validate(); err != nil {
		return err
	}

	language := ds.Language
	stops := p.stopSet(language)
	ix := index.NewBuilder(language, stops).Build(ds)

	p.language = language
	p.stops = stops
	p.index = ix

	p.logger.Info("fitted lookup parser",
		zap.String("language", language),
		zap.Int("keys", len(ix.Map)),
		zap.Int("intents", len(ix.IntentNames)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// stopSet resolves the stop-word set for a language under the current
// configuration. With stop-word filtering disabled the set is empty and
// key derivation keeps every token.
func (p *Parser) stopSet(language string) text.StopSet {
	if !p.cfg.IgnoreStopWords {
		return text.StopSet{}
	}
	if p.stopOver != nil {
		return text.NewStopSet(p.stopOver)
	}
	return text.StopWords(language)
}

// Parse extracts the intent and slots of the input, if any. When intent
// names are given, a match outside that allow-list is reported as no
// match; the other lookup key is deliberately not retried in that case.
//
// No match is not an error: the returned result then carries the no
// intent sentinel at probability 1.0 and an empty slot list.
func (p *Parser) Parse(input string, intents ...string) (result.ParsingResult, error) {
	start := time.Now()

	if !p.Fitted() {
		return result.ParsingResult{}, internalerr.ErrNotTrained
	}

	spans, err := p.detect(input)
	if err != nil {
		return result.ParsingResult{}, err
	}
	spans = entity.Dedup(spans)

	// Key A: entity-aware, stop-word filtered.
	processed := entity.ReplaceWithPlaceholders(input, spans, func(kind string) string {
		return text.Normalize(index.Placeholder(kind, p.language))
	})
	entry, ok := p.index.Map[index.DeriveKey(processed, p.language, p.stops)]

	if !ok {
		// Key B: literal-text fallback. It only exists for utterances
		// with no slots, so detected entities are discarded.
		entry, ok = p.index.Map[index.DeriveRawKey(input, p.language)]
		spans = nil
	}
	if !ok {
		return result.Empty(input), nil
	}

	res, err := p.decode(input, entry, spans, intents)
	if err != nil {
		return result.ParsingResult{}, err
	}

	p.logger.Debug("parsed input",
		zap.String("intent", res.Intent.IntentName),
		zap.Int("slots", len(res.Slots)),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// ParseTop is the list form of Parse. The lookup parser's verdict is
// binary, so the returned list holds exactly one extraction result, the
// same one Parse would produce.
func (p *Parser) ParseTop(input string, topN int, intents ...string) ([]result.ExtractionResult, error) {
	res, err := p.Parse(input, intents...)
	if err != nil {
		return nil, err
	}
	return []result.ExtractionResult{{Intent: res.Intent, Slots: res.Slots}}, nil
}

// GetIntents returns every known intent ordered by decreasing
// probability. The list length is always the number of trained intents
// plus one: the matched intent (if any) comes first at 1.0, every other
// intent follows at 0.0, and the explicit no-intent sentinel closes the
// list.
func (p *Parser) GetIntents(input string) ([]result.IntentClassification, error) {
	res, err := p.Parse(input)
	if err != nil {
		return nil, err
	}

	intents := make([]result.IntentClassification, 0, len(p.index.IntentNames)+1)
	if !res.IsEmpty() {
		intents = append(intents, res.Intent)
	}
	for _, name := range p.index.IntentNames {
		if name == res.Intent.IntentName {
			continue
		}
		intents = append(intents, result.IntentClassification{IntentName: name})
	}
	intents = append(intents, result.IntentClassification{})
	return intents, nil
}

// GetSlots extracts slots with the knowledge of the intent. An empty
// intent name yields an empty slot list; an intent absent from the
// registry fails with ErrIntentNotFound.
func (p *Parser) GetSlots(input, intent string) ([]result.Slot, error) {
	if !p.Fitted() {
		return nil, internalerr.ErrNotTrained
	}
	if intent == "" {
		return []result.Slot{}, nil
	}
	if _, ok := p.index.IntentID(intent); !ok {
		return nil, fmt.Errorf("%w: %q", internalerr.ErrIntentNotFound, intent)
	}

	res, err := p.Parse(input, intent)
	if err != nil {
		return nil, err
	}
	return res.Slots, nil
}

// detect runs every configured detector and collects their spans.
// Detector failures propagate immediately and are not masked.
func (p *Parser) detect(input string) ([]entity.Span, error) {
	var spans []entity.Span
	for _, det := range p.detectors {
		found, err := det.Detect(input)
		if err != nil {
			return nil, fmt.Errorf("entity detection: %w", err)
		}
		for _, sp := range found {
			// spans must index into input
			if sp.Start < 0 || sp.End > len(input) || sp.Start >= sp.End {
				continue
			}
			spans = append(spans, sp)
		}
	}
	return spans, nil
}

// decode turns an index entry back into a parsing result, zipping the
// stored slot ids positionally with the entity spans sorted by start
// offset. A count mismatch means the index and the detections disagree
// about the utterance shape, which can only happen with corrupted or
// hand-edited state.
func (p *Parser) decode(input string, entry index.Entry, spans []entity.Span, intents []string) (result.ParsingResult, error) {
	if entry.IntentID < 0 || entry.IntentID >= len(p.index.IntentNames) {
		return result.ParsingResult{}, fmt.Errorf("%w: intent id %d out of range",
			internalerr.ErrCorruptIndex, entry.IntentID)
	}
	intentName := p.index.IntentNames[entry.IntentID]

	if len(intents) > 0 && !contains(intents, intentName) {
		return result.Empty(input), nil
	}

	if len(entry.SlotIDs) != len(spans) {
		return result.ParsingResult{}, fmt.Errorf("%w: %d slot ids for %d entities",
			internalerr.ErrCorruptIndex, len(entry.SlotIDs), len(spans))
	}

	slots := make([]result.Slot, 0, len(entry.SlotIDs))
	for i, slotID := range entry.SlotIDs {
		if slotID < 0 || slotID >= len(p.index.SlotNames) {
			return result.ParsingResult{}, fmt.Errorf("%w: slot id %d out of range",
				internalerr.ErrCorruptIndex, slotID)
		}
		span := spans[i]
		slots = append(slots, result.Slot{
			Range:    result.Range{Start: span.Start, End: span.End},
			RawValue: input[span.Start:span.End],
			Entity:   span.Kind,
			SlotName: p.index.SlotNames[slotID],
		})
	}

	return result.ParsingResult{
		Input:  input,
		Intent: result.IntentClassification{IntentName: intentName, Probability: 1.0},
		Slots:  slots,
	}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
