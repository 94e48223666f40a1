package convert

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Normalizer caps: the prompt asks for 3 of each, but the model's output is
// untrusted, so the caps are enforced structurally here too.
const (
	maxImprovements  = 3
	maxBetterPhrases = 3
)

// Normalize coerces the model's raw output into a Result. The only hard
// requirement is that raw parses as a JSON object; every field inside it is
// treated defensively. fallbackTranscript is the transcript actually used
// upstream, echoed back when the model omits or empties its own copy.
func Normalize(raw, fallbackTranscript string) (*Result, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &GenerationError{Malformed: true, Err: fmt.Errorf("parse model output: %w", err)}
	}

	result := &Result{
		ReadyMessage:  stringify(payload["ready_message"]),
		Transcript:    fallbackTranscript,
		Improvements:  []string{},
		BetterPhrases: []Phrase{},
	}

	if t := strings.TrimSpace(stringify(payload["transcript"])); t != "" {
		result.Transcript = t
	}

	if items, ok := payload["improvements"].([]any); ok {
		for _, item := range items {
			if len(result.Improvements) == maxImprovements {
				break
			}
			if s := stringify(item); s != "" {
				result.Improvements = append(result.Improvements, s)
			}
		}
	}

	if items, ok := payload["better_phrases"].([]any); ok {
		for _, item := range items {
			if len(result.BetterPhrases) == maxBetterPhrases {
				break
			}
			switch v := item.(type) {
			case string:
				if v != "" {
					result.BetterPhrases = append(result.BetterPhrases, Phrase{Before: v})
				}
			case map[string]any:
				p := Phrase{Before: stringify(v["before"]), After: stringify(v["after"])}
				if p.Before == "" && p.After == "" {
					continue
				}
				result.BetterPhrases = append(result.BetterPhrases, p)
			}
		}
	}

	return result, nil
}

// stringify renders a decoded JSON scalar as a string. Arrays, objects and
// null render as "", which the callers drop.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
