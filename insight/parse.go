package insight

import (
	"strings"

	"github.com/tidwall/gjson"
)

const fence = "```"

// StripCodeFence removes a leading ``` (optionally tagged, e.g. ```json) and a
// trailing ``` from model output, trimming surrounding whitespace.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(s, fence); ok {
		// Drop the language tag up to the end of the fence line.
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			rest = rest[i+1:]
		} else {
			rest = strings.TrimLeft(rest, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
		}
		s = strings.TrimSpace(rest)
	}
	if rest, ok := strings.CutSuffix(s, fence); ok {
		s = strings.TrimSpace(rest)
	}
	return s
}

var spotFields = []string{"name", "category", "why_cool", "avoid"}

// Parse validates raw model output and converts it to an Insight.
//
// The text must be a JSON object with a non-empty string "summary" and an
// array "spots" whose elements are objects with optional string fields.
// Values of the wrong type are rejected, never coerced.
func Parse(raw string) (Insight, error) {
	body := StripCodeFence(raw)
	if body == "" {
		return Insight{}, invalid("empty response")
	}
	if !gjson.Valid(body) {
		return Insight{}, invalid("not valid JSON")
	}

	doc := gjson.Parse(body)
	if !doc.IsObject() {
		return Insight{}, invalid("expected a JSON object")
	}

	summary := doc.Get("summary")
	if summary.Type != gjson.String || strings.TrimSpace(summary.Str) == "" {
		return Insight{}, invalid("summary: expected non-empty string")
	}

	spots := doc.Get("spots")
	if !spots.IsArray() {
		return Insight{}, invalid("spots: expected array")
	}

	out := Insight{Summary: summary.Str, Spots: []Spot{}}
	for i, item := range spots.Array() {
		if !item.IsObject() {
			return Insight{}, invalid("spots[%d]: expected object", i)
		}
		for _, field := range spotFields {
			v := item.Get(field)
			if v.Exists() && v.Type != gjson.String {
				return Insight{}, invalid("spots[%d].%s: expected string", i, field)
			}
		}
		out.Spots = append(out.Spots, Spot{
			Name:     item.Get("name").Str,
			Category: item.Get("category").Str,
			WhyCool:  item.Get("why_cool").Str,
			Avoid:    item.Get("avoid").Str,
		})
	}
	return out, nil
}
