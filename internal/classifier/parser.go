package classifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var numberPattern = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)

// ParseUrgency extracts an urgency score from a provider answer. The whole
// answer is tried as a number first and clamped to [0,1]. Otherwise the answer
// must contain exactly one numeric token and that token must already lie in
// [0,1]; anything else is malformed. Non-finite values are rejected.
func ParseUrgency(raw string) (float64, error) {
	text := stripCodeFence(raw)
	if text == "" {
		return 0, fmt.Errorf("%w: empty urgency answer", ErrMalformed)
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return parseEmbeddedUrgency(text)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: non-finite urgency", ErrMalformed)
	}
	return clamp01(value), nil
}

func parseEmbeddedUrgency(text string) (float64, error) {
	tokens := numberPattern.FindAllString(text, -1)
	switch len(tokens) {
	case 0:
		return 0, fmt.Errorf("%w: no number in urgency answer", ErrMalformed)
	case 1:
	default:
		return 0, fmt.Errorf("%w: ambiguous urgency answer with %d numbers", ErrMalformed, len(tokens))
	}
	value, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if math.IsNaN(value) || value < 0 || value > 1 {
		return 0, fmt.Errorf("%w: embedded urgency %v outside [0,1]", ErrMalformed, value)
	}
	return value, nil
}

// ParseDuplicateIDs extracts candidate ids from a provider answer. Accepted
// shapes are a JSON array of strings or numbers, an object with a
// "duplicates" array, or the first bracketed array embedded in prose.
func ParseDuplicateIDs(raw string) ([]string, error) {
	text := stripCodeFence(raw)
	if ids, ok := decodeIDs(text); ok {
		return ids, nil
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		if ids, ok := decodeIDs(text[start : end+1]); ok {
			return ids, nil
		}
	}
	return nil, fmt.Errorf("%w: no id list in duplicates answer", ErrMalformed)
}

func decodeIDs(text string) ([]string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}

	if strings.HasPrefix(text, "{") {
		var wrapper struct {
			Duplicates json.RawMessage `json:"duplicates"`
		}
		if err := json.Unmarshal([]byte(text), &wrapper); err != nil || len(wrapper.Duplicates) == 0 {
			return nil, false
		}
		return decodeIDs(string(wrapper.Duplicates))
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(text)))
	decoder.UseNumber()
	var items []interface{}
	if err := decoder.Decode(&items); err != nil {
		return nil, false
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if id := strings.TrimSpace(v); id != "" {
				ids = append(ids, id)
			}
		case json.Number:
			ids = append(ids, v.String())
		default:
			return nil, false
		}
	}
	return ids, true
}

// stripCodeFence returns the body of the first markdown code block, or the
// trimmed input when there is none.
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	start := strings.Index(text, "```")
	if start == -1 {
		return text
	}

	body := text[start+3:]
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	body = strings.TrimLeft(body, " \t")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		if first := strings.TrimSpace(body[:nl]); first == "" || isLanguageTag(first) {
			body = body[nl+1:]
		}
	}
	return strings.TrimSpace(body)
}

func isLanguageTag(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
