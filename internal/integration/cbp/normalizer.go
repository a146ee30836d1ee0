// Package cbp normalizes the CBP border wait times JSON feed.
//
// Every value in the feed is a string: dates and times are split across two
// fields, flags are "0"/"1", counts may be "" or "N/A". Normalization runs in
// two passes. The first decodes the document into a tree of plain maps so
// every object's fields are visible together. The second walks that tree
// bottom-up and rewrites values by property name, then the result is
// projected into entities.BorderCrossing.
package cbp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abelzeko/border-wait/internal/entities"
	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when the feed is not well-formed JSON
var ErrInvalidJSON = errors.New("invalid JSON")

// Normalize parses the feed into crossings, in source order.
// The root may be an array of port records or a single record.
func Normalize(jsonText string) ([]entities.BorderCrossing, error) {
	if !gjson.Valid(jsonText) {
		return nil, ErrInvalidJSON
	}

	root := gjson.Parse(jsonText)
	var raws []gjson.Result
	switch {
	case root.IsArray():
		raws = root.Array()
	case root.IsObject():
		raws = []gjson.Result{root}
	default:
		return nil, &entities.FormatError{Value: root.Type.String(), Expected: "array of port records or a port record"}
	}

	crossings := make([]entities.BorderCrossing, 0, len(raws))
	for i, raw := range raws {
		obj, ok := raw.Value().(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("record %d: %w", i, &entities.FormatError{Value: raw.Type.String(), Expected: "JSON object"})
		}
		normalized := NormalizeTree(obj).(map[string]any)
		crossings = append(crossings, toBorderCrossing(normalized))
	}
	return crossings, nil
}

// NormalizeTree applies the field rules to every object in a decoded tree.
// The input is not modified.
func NormalizeTree(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return normalizeObject(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = NormalizeTree(item)
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		return val
	default:
		return v
	}
}

func normalizeObject(raw map[string]any) map[string]any {
	// children first, then the object's own fields with its siblings in view
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		fields[k] = NormalizeTree(v)
	}

	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case "time":
			if _, hasDate := fields["date"]; hasDate {
				continue
			}
			out[k] = v
		case "date":
			if t, hasTime := fields["time"]; hasTime {
				out[k] = combineDateTime(v, t)
			} else {
				out[k] = v
			}
		default:
			out[k] = applyRule(k, v)
		}
	}
	return out
}

// applyRule rewrites a single already-nulled value by its property name
func applyRule(key string, v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch key {
	case "automation", "automation_enabled":
		switch s {
		case "1":
			return true
		case "0":
			return false
		}
		return s
	case "delay_minutes", "lanes_open":
		return parseCount(s)
	case "maximum_lanes":
		if s == "N/A" {
			return nil
		}
		return parseCount(s)
	default:
		return s
	}
}

// parseCount returns the integer or nil for anything that is not one
func parseCount(s string) any {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return n
}

// combineDateTime joins "M/D/YYYY" and "H:M:S" into a UTC instant.
// Either part missing or malformed gives nil.
func combineDateTime(date, clock any) any {
	d, ok := date.(string)
	if !ok {
		return nil
	}
	c, ok := clock.(string)
	if !ok {
		return nil
	}

	dateParts, ok := splitInts(d, "/", 3, 3)
	if !ok {
		return nil
	}
	clockParts, ok := splitInts(c, ":", 2, 3)
	if !ok {
		return nil
	}
	for len(clockParts) < 3 {
		clockParts = append(clockParts, 0)
	}

	month, day, year := dateParts[0], dateParts[1], dateParts[2]
	if month < 1 || month > 12 {
		return nil
	}
	return time.Date(year, time.Month(month), day, clockParts[0], clockParts[1], clockParts[2], 0, time.UTC)
}

func splitInts(s, sep string, minParts, maxParts int) ([]int, bool) {
	fields := strings.Split(strings.TrimSpace(s), sep)
	if len(fields) < minParts || len(fields) > maxParts {
		return nil, false
	}
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}
