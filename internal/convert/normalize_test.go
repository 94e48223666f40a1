package convert

import (
	"errors"
	"reflect"
	"testing"
)

func TestNormalize_Complete(t *testing.T) {
	raw := `{
		"ready_message": "Hi team, let's meet tomorrow.",
		"transcript": "Hola equipo",
		"improvements": ["Clearer opening", "Shorter sentences", "Neutral tone"],
		"better_phrases": [{"before": "reunir al equipo", "after": "gather the team"}]
	}`

	got, err := Normalize(raw, "fallback")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got.ReadyMessage != "Hi team, let's meet tomorrow." {
		t.Errorf("readyMessage = %q", got.ReadyMessage)
	}
	if got.Transcript != "Hola equipo" {
		t.Errorf("transcript = %q, want model's echo", got.Transcript)
	}
	if len(got.Improvements) != 3 {
		t.Errorf("improvements = %v, want 3 entries", got.Improvements)
	}
	want := []Phrase{{Before: "reunir al equipo", After: "gather the team"}}
	if !reflect.DeepEqual(got.BetterPhrases, want) {
		t.Errorf("betterPhrases = %+v, want %+v", got.BetterPhrases, want)
	}
}

func TestNormalize_MalformedResponse(t *testing.T) {
	for _, raw := range []string{"not json", "", "[1,2,3]", "42"} {
		_, err := Normalize(raw, "fallback")
		var gerr *GenerationError
		if !errors.As(err, &gerr) {
			t.Fatalf("Normalize(%q) error = %v, want *GenerationError", raw, err)
		}
		if !gerr.Malformed {
			t.Errorf("Normalize(%q): Malformed = false, want true", raw)
		}
	}
}

func TestNormalize_ImprovementsBounds(t *testing.T) {
	raw := `{"improvements": ["one", "", "two", "three", "four", "five"]}`
	got, err := Normalize(raw, "fallback")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	// First 3 non-empty entries, original order, empties dropped.
	want := []string{"one", "two", "three"}
	if !reflect.DeepEqual(got.Improvements, want) {
		t.Errorf("improvements = %v, want %v", got.Improvements, want)
	}
}

func TestNormalize_ImprovementsNotAList(t *testing.T) {
	got, err := Normalize(`{"improvements": "just a string"}`, "fallback")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(got.Improvements) != 0 {
		t.Errorf("improvements = %v, want empty", got.Improvements)
	}
}

func TestNormalize_ImprovementsStringifyScalars(t *testing.T) {
	got, err := Normalize(`{"improvements": [3, true, "ok", {"nested": 1}]}`, "fallback")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := []string{"3", "true", "ok"}
	if !reflect.DeepEqual(got.Improvements, want) {
		t.Errorf("improvements = %v, want %v", got.Improvements, want)
	}
}

func TestNormalize_BetterPhrases(t *testing.T) {
	raw := `{"better_phrases": [
		{"before": "", "after": ""},
		{"before": "x", "after": ""},
		"suelto",
		7,
		{"before": 1, "after": 2},
		{"before": "a", "after": "b"},
		{"before": "c", "after": "d"}
	]}`

	got, err := Normalize(raw, "fallback")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	// Both-empty object and the bare number are dropped; the bare string
	// becomes a before-only phrase; numbers are stringified; capped at 3.
	want := []Phrase{
		{Before: "x", After: ""},
		{Before: "suelto", After: ""},
		{Before: "1", After: "2"},
	}
	if !reflect.DeepEqual(got.BetterPhrases, want) {
		t.Errorf("betterPhrases = %+v, want %+v", got.BetterPhrases, want)
	}
}

func TestNormalize_TranscriptFallback(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"missing", `{}`, "fallback"},
		{"empty", `{"transcript": ""}`, "fallback"},
		{"whitespace", `{"transcript": "  "}`, "fallback"},
		{"present", `{"transcript": "del modelo"}`, "del modelo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, "fallback")
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if got.Transcript != tt.want {
				t.Errorf("transcript = %q, want %q", got.Transcript, tt.want)
			}
		})
	}
}

func TestNormalize_ReadyMessageMayBeEmpty(t *testing.T) {
	got, err := Normalize(`{"transcript": "hola"}`, "fallback")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got.ReadyMessage != "" {
		t.Errorf("readyMessage = %q, want empty passthrough", got.ReadyMessage)
	}
}
