package derive

import (
	"encoding/json"
	"strings"
)

// classificationJob is the response key holding the status categories.
const classificationJob = "CLASSIFICATION_JOB"

const secondsPerHour = 3600

// ExtractStatus returns the name of the first category of the classification
// job, or "" when the response is missing or has an unexpected shape.
func ExtractStatus(response json.RawMessage) string {
	obj, ok := DecodeObject(response)
	if !ok {
		return ""
	}
	job, ok := obj[classificationJob].(map[string]any)
	if !ok {
		return ""
	}
	categories, ok := job["categories"].([]any)
	if !ok || len(categories) == 0 {
		return ""
	}
	first, ok := categories[0].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := first["name"].(string)
	return name
}

// ExtractSource returns the first "_" separated segment of metadata.source.
func ExtractSource(metadata map[string]any) string {
	source, ok := metadata["source"].(string)
	if !ok {
		return ""
	}
	head, _, _ := strings.Cut(source, "_")
	return head
}

// ExtractDomain returns metadata.domain when it is a string.
func ExtractDomain(metadata map[string]any) string {
	domain, _ := metadata["domain"].(string)
	return domain
}

// HoursToLabel converts labeling seconds to hours.
func HoursToLabel(seconds float64) float64 {
	return seconds / secondsPerHour
}

// DecodeObject parses raw as a JSON object. A JSON string holding an object is
// unwrapped first, since the platform serializes some payloads as strings.
func DecodeObject(raw json.RawMessage) (map[string]any, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	if s, ok := v.(string); ok {
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, false
		}
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

// lookupPath walks a dotted path ("contest.name") through nested objects.
func lookupPath(obj map[string]any, path string) (any, bool) {
	if obj == nil || path == "" {
		return nil, false
	}
	var cur any = obj
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
