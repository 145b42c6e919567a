package entity

import (
	"reflect"
	"strings"
	"testing"
)

func TestDedupLongerSpanWins(t *testing.T) {
	spans := []Span{
		{Kind: "city", Start: 11, End: 15, Value: "York"},
		{Kind: "city", Start: 7, End: 15, Value: "New York"},
	}

	got := Dedup(spans)

	want := []Span{{Kind: "city", Start: 7, End: 15, Value: "New York"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedup = %v, want %v", got, want)
	}
}

func TestDedupTieBrokenByEarlierStart(t *testing.T) {
	spans := []Span{
		{Kind: "b", Start: 2, End: 6},
		{Kind: "a", Start: 0, End: 4},
	}

	got := Dedup(spans)

	if len(got) != 1 || got[0].Kind != "a" {
		t.Errorf("Dedup = %v, want single span of kind a", got)
	}
}

func TestDedupDisjointSpansSortedByStart(t *testing.T) {
	spans := []Span{
		{Kind: "time", Start: 20, End: 24},
		{Kind: "city", Start: 5, End: 10},
	}

	got := Dedup(spans)

	if len(got) != 2 {
		t.Fatalf("Dedup = %v, want both spans", got)
	}
	if got[0].Start != 5 || got[1].Start != 20 {
		t.Errorf("Dedup order = %v, want ascending start", got)
	}
}

func TestDedupEmpty(t *testing.T) {
	if got := Dedup(nil); len(got) != 0 {
		t.Errorf("Dedup(nil) = %v, want empty", got)
	}
}

func TestReplaceWithPlaceholders(t *testing.T) {
	input := "weather in Paris tomorrow"
	spans := []Span{
		{Kind: "city", Start: 11, End: 16, Value: "Paris"},
		{Kind: "date", Start: 17, End: 25, Value: "tomorrow"},
	}

	got := ReplaceWithPlaceholders(input, spans, func(kind string) string {
		return "%" + strings.ToUpper(kind) + "%"
	})

	want := "weather in %CITY% %DATE%"
	if got != want {
		t.Errorf("ReplaceWithPlaceholders = %q, want %q", got, want)
	}
}

func TestReplaceWithPlaceholdersNoSpans(t *testing.T) {
	input := "turn on the lights"
	if got := ReplaceWithPlaceholders(input, nil, nil); got != input {
		t.Errorf("ReplaceWithPlaceholders = %q, want unchanged input", got)
	}
}
