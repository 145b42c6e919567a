package lexmatch

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cognicore/lexmatch/pkg/lexmatch/config"
	"github.com/cognicore/lexmatch/pkg/lexmatch/dataset"
	"github.com/cognicore/lexmatch/pkg/lexmatch/entity"
	"github.com/cognicore/lexmatch/pkg/lexmatch/internalerr"
	"github.com/cognicore/lexmatch/pkg/lexmatch/result"
)

// stubDetector returns a fixed set of spans for any input.
type stubDetector struct {
	spans []entity.Span
	err   error
}

func (s stubDetector) Detect(string) ([]entity.Span, error) {
	return s.spans, s.err
}

func weatherDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Language: "en",
		Entities: []dataset.Entity{
			{Label: "city_entity", Values: []dataset.EntityValue{{Value: "Paris"}}},
		},
		Intents: []dataset.Intent{
			{Name: "GetWeather", Utterances: []dataset.Utterance{
				{Chunks: []dataset.Chunk{
					{Text: "what is the weather in "},
					{SlotName: "location", Entity: "city_entity"},
				}},
			}},
			{Name: "Greet", Utterances: []dataset.Utterance{
				{Chunks: []dataset.Chunk{{Text: "hello there"}}},
			}},
		},
	}
}

func fitted(t *testing.T, ds *dataset.Dataset, opts Options) *Parser {
	t.Helper()
	p := New(opts)
	if err := p.Fit(ds); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestParseWeatherScenario(t *testing.T) {
	input := "what is the weather in Paris"
	det := stubDetector{spans: []entity.Span{
		{Kind: "city_entity", Start: 23, End: 28, Value: "Paris"},
	}}
	p := fitted(t, weatherDataset(), Options{Detectors: []entity.Detector{det}})

	res, err := p.Parse(input)
	if err != nil {
		t.Fatal(err)
	}

	if res.Intent.IntentName != "GetWeather" || res.Intent.Probability != 1.0 {
		t.Errorf("intent = %+v, want GetWeather at 1.0", res.Intent)
	}
	wantSlots := []result.Slot{{
		Range:    result.Range{Start: 23, End: 28},
		RawValue: "Paris",
		Entity:   "city_entity",
		SlotName: "location",
	}}
	if !reflect.DeepEqual(res.Slots, wantSlots) {
		t.Errorf("slots = %+v, want %+v", res.Slots, wantSlots)
	}
}

func TestParseZeroSlotUtterance(t *testing.T) {
	p := fitted(t, weatherDataset(), Options{})

	// Case differs from the training utterance; no detector hits.
	res, err := p.Parse("Hello There")
	if err != nil {
		t.Fatal(err)
	}

	if res.Intent.IntentName != "Greet" {
		t.Errorf("intent = %+v, want Greet", res.Intent)
	}
	if len(res.Slots) != 0 {
		t.Errorf("slots = %+v, want none", res.Slots)
	}
}

func TestParseLiteralFallbackDiscardsEntities(t *testing.T) {
	// "hello paris" was trained as a pure literal. A live detection over
	// "paris" pushes the entity-aware key away from the trained one, so
	// the match must come from the literal fallback key with the
	// detected entity discarded.
	ds := &dataset.Dataset{
		Language: "en",
		Intents: []dataset.Intent{
			{Name: "GreetCity", Utterances: []dataset.Utterance{
				{Chunks: []dataset.Chunk{{Text: "hello paris"}}},
			}},
		},
	}
	det := stubDetector{spans: []entity.Span{
		{Kind: "city_entity", Start: 6, End: 11, Value: "paris"},
	}}
	p := fitted(t, ds, Options{Detectors: []entity.Detector{det}})

	res, err := p.Parse("hello paris")
	if err != nil {
		t.Fatal(err)
	}

	if res.Intent.IntentName != "GreetCity" {
		t.Errorf("intent = %+v, want GreetCity via literal key", res.Intent)
	}
	if len(res.Slots) != 0 {
		t.Errorf("slots = %+v, want entities discarded", res.Slots)
	}
}

func TestParseNoMatch(t *testing.T) {
	p := fitted(t, weatherDataset(), Options{})

	res, err := p.Parse("completely unseen text")
	if err != nil {
		t.Fatal(err)
	}

	if !res.IsEmpty() {
		t.Errorf("result = %+v, want empty", res)
	}
	if res.Intent.Probability != 1.0 {
		t.Errorf("probability = %v, want 1.0 for the no-match verdict", res.Intent.Probability)
	}
	if res.Slots == nil || len(res.Slots) != 0 {
		t.Errorf("slots = %#v, want empty non-nil list", res.Slots)
	}
}

func TestParseNotTrained(t *testing.T) {
	p := New(Options{})

	if _, err := p.Parse("anything"); !errors.Is(err, internalerr.ErrNotTrained) {
		t.Errorf("Parse before fit: got %v, want ErrNotTrained", err)
	}
	if _, err := p.GetIntents("anything"); !errors.Is(err, internalerr.ErrNotTrained) {
		t.Errorf("GetIntents before fit: got %v, want ErrNotTrained", err)
	}
	if _, err := p.GetSlots("anything", "GetWeather"); !errors.Is(err, internalerr.ErrNotTrained) {
		t.Errorf("GetSlots before fit: got %v, want ErrNotTrained", err)
	}
}

func TestParseStopWordFiltering(t *testing.T) {
	det := stubDetector{spans: []entity.Span{
		{Kind: "city_entity", Start: 11, End: 16, Value: "Paris"},
	}}
	p := fitted(t, weatherDataset(), Options{
		Config:    config.Config{IgnoreStopWords: true},
		StopWords: []string{"what", "is", "the"},
		Detectors: []entity.Detector{det},
	})

	// Live text drops the stop words the training utterance carried.
	res, err := p.Parse("weather in Paris")
	if err != nil {
		t.Fatal(err)
	}

	if res.Intent.IntentName != "GetWeather" {
		t.Errorf("intent = %+v, want GetWeather modulo stop words", res.Intent)
	}
	if len(res.Slots) != 1 || res.Slots[0].RawValue != "Paris" {
		t.Errorf("slots = %+v, want Paris", res.Slots)
	}
}

func TestParseAmbiguousKeyNeverMatches(t *testing.T) {
	ds := &dataset.Dataset{
		Language: "en",
		Intents: []dataset.Intent{
			{Name: "TurnOn", Utterances: []dataset.Utterance{
				{Chunks: []dataset.Chunk{{Text: "lights"}}},
			}},
			{Name: "TurnOff", Utterances: []dataset.Utterance{
				{Chunks: []dataset.Chunk{{Text: "lights"}}},
			}},
		},
	}
	p := fitted(t, ds, Options{})

	res, err := p.Parse("lights")
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsEmpty() {
		t.Errorf("result = %+v, want no match for ambiguous key", res)
	}
}

func TestParseAllowListNoFallbackRetry(t *testing.T) {
	// The entity-aware key resolves to GetWeather. With GetWeather
	// filtered out the outcome is no match: the literal key, which
	// would resolve to LiteralWeather, is deliberately not retried.
	ds := &dataset.Dataset{
		Language: "en",
		Entities: []dataset.Entity{
			{Label: "city_entity", Values: []dataset.EntityValue{{Value: "paris"}}},
		},
		Intents: []dataset.Intent{
			{Name: "GetWeather", Utterances: []dataset.Utterance{
				{Chunks: []dataset.Chunk{
					{Text: "weather in "},
					{SlotName: "location", Entity: "city_entity"},
				}},
			}},
			{Name: "LiteralWeather", Utterances: []dataset.Utterance{
				{Chunks: []dataset.Chunk{{Text: "weather in paris"}}},
			}},
		},
	}
	det := stubDetector{spans: []entity.Span{
		{Kind: "city_entity", Start: 11, End: 16, Value: "paris"},
	}}
	p := fitted(t, ds, Options{Detectors: []entity.Detector{det}})

	unrestricted, err := p.Parse("weather in paris")
	if err != nil {
		t.Fatal(err)
	}
	if unrestricted.Intent.IntentName != "GetWeather" {
		t.Fatalf("unrestricted intent = %+v, want GetWeather", unrestricted.Intent)
	}

	restricted, err := p.Parse("weather in paris", "LiteralWeather")
	if err != nil {
		t.Fatal(err)
	}
	if !restricted.IsEmpty() {
		t.Errorf("restricted result = %+v, want no match without fallback retry", restricted)
	}
}

func TestGetIntentsMatched(t *testing.T) {
	p := fitted(t, weatherDataset(), Options{})

	intents, err := p.GetIntents("hello there")
	if err != nil {
		t.Fatal(err)
	}

	// |known intents| + 1 trailing sentinel.
	if len(intents) != 3 {
		t.Fatalf("got %d intents, want 3", len(intents))
	}
	if intents[0].IntentName != "Greet" || intents[0].Probability != 1.0 {
		t.Errorf("first = %+v, want Greet at 1.0", intents[0])
	}
	if intents[1].IntentName != "GetWeather" || intents[1].Probability != 0.0 {
		t.Errorf("second = %+v, want GetWeather at 0.0", intents[1])
	}
	last := intents[len(intents)-1]
	if last.IntentName != "" || last.Probability != 0.0 {
		t.Errorf("last = %+v, want the no-intent sentinel at 0.0", last)
	}
}

func TestGetIntentsNoMatch(t *testing.T) {
	p := fitted(t, weatherDataset(), Options{})

	intents, err := p.GetIntents("unseen input")
	if err != nil {
		t.Fatal(err)
	}

	if len(intents) != 3 {
		t.Fatalf("got %d intents, want 3", len(intents))
	}
	for _, ic := range intents {
		if ic.Probability != 0.0 {
			t.Errorf("intent %+v, want probability 0.0 when nothing matched", ic)
		}
	}
	if intents[0].IntentName != "GetWeather" || intents[1].IntentName != "Greet" {
		t.Errorf("intents = %+v, want registry order", intents)
	}
}

func TestGetSlots(t *testing.T) {
	det := stubDetector{spans: []entity.Span{
		{Kind: "city_entity", Start: 23, End: 28, Value: "Paris"},
	}}
	p := fitted(t, weatherDataset(), Options{Detectors: []entity.Detector{det}})

	slots, err := p.GetSlots("what is the weather in Paris", "GetWeather")
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 1 || slots[0].SlotName != "location" {
		t.Errorf("slots = %+v, want one location slot", slots)
	}
}

func TestGetSlotsEmptyIntent(t *testing.T) {
	p := fitted(t, weatherDataset(), Options{})

	slots, err := p.GetSlots("hello there", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 0 {
		t.Errorf("slots = %+v, want empty for empty intent", slots)
	}
}

func TestGetSlotsUnknownIntent(t *testing.T) {
	p := fitted(t, weatherDataset(), Options{})

	_, err := p.GetSlots("hello there", "UnknownIntent")
	if !errors.Is(err, internalerr.ErrIntentNotFound) {
		t.Errorf("got %v, want ErrIntentNotFound", err)
	}
}

func TestParseTopSingleResult(t *testing.T) {
	p := fitted(t, weatherDataset(), Options{})

	results, err := p.ParseTop("hello there", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Intent.IntentName != "Greet" {
		t.Errorf("result = %+v, want Greet", results[0])
	}
}

func TestDetectorErrorPropagates(t *testing.T) {
	det := stubDetector{err: errors.New("detector down")}
	p := fitted(t, weatherDataset(), Options{Detectors: []entity.Detector{det}})

	if _, err := p.Parse("hello there"); err == nil {
		t.Error("detector failures must propagate, not be masked")
	}
}

func TestSlotCountInvariantViolation(t *testing.T) {
	// A hand-edited record claims one slot for a key while no entity is
	// detected at parse time. This is corrupted state, not a no-match.
	record := []byte(`{
		"config": {"ignore_stop_words": false},
		"language_code": "en",
		"map": {"hello": {"intent_id": 0, "slot_ids": [0]}},
		"intents_names": ["Greet"],
		"slots_names": ["who"]
	}`)
	p, err := Unmarshal(record, Options{})
	if err != nil {
		t.Fatal(err)
	}

	_, err = p.Parse("hello")
	if !errors.Is(err, internalerr.ErrCorruptIndex) {
		t.Errorf("got %v, want ErrCorruptIndex", err)
	}
}

func TestFitReplacesPriorIndex(t *testing.T) {
	p := fitted(t, weatherDataset(), Options{})

	replacement := &dataset.Dataset{
		Language: "en",
		Intents: []dataset.Intent{
			{Name: "Bye", Utterances: []dataset.Utterance{
				{Chunks: []dataset.Chunk{{Text: "goodbye"}}},
			}},
		},
	}
	if err := p.Fit(replacement); err != nil {
		t.Fatal(err)
	}

	res, err := p.Parse("hello there")
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsEmpty() {
		t.Errorf("old training data still matches after refit: %+v", res)
	}

	res, err = p.Parse("goodbye")
	if err != nil {
		t.Fatal(err)
	}
	if res.Intent.IntentName != "Bye" {
		t.Errorf("result = %+v, want Bye", res)
	}
}

func TestFitInvalidDataset(t *testing.T) {
	p := New(Options{})
	err := p.Fit(&dataset.Dataset{})
	if !errors.Is(err, internalerr.ErrInvalidDataset) {
		t.Errorf("got %v, want ErrInvalidDataset", err)
	}
	if p.Fitted() {
		t.Error("failed fit must leave the parser untrained")
	}
}

func TestGazetteerEndToEnd(t *testing.T) {
	ds := weatherDataset()
	gaz := entity.NewGazetteer(ds.Entities, ds.Language)
	p := fitted(t, ds, Options{Detectors: []entity.Detector{gaz}})

	res, err := p.Parse("what is the weather in Paris")
	if err != nil {
		t.Fatal(err)
	}
	if res.Intent.IntentName != "GetWeather" {
		t.Errorf("intent = %+v, want GetWeather", res.Intent)
	}
	if len(res.Slots) != 1 || res.Slots[0].RawValue != "Paris" ||
		res.Slots[0].Range.Start != 23 || res.Slots[0].Range.End != 28 {
		t.Errorf("slots = %+v, want Paris at 23:28", res.Slots)
	}
}
