package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

// Third-party form automation services deliver field maps in several
// shapes depending on version and configuration. DecodeFormPayload runs an
// explicit, prioritized list of shape matchers and flattens whichever one
// applies into a plain field-id → value map.
//
// Known shapes, in priority order:
//  1. {"fields": [{"id": "basic_amount", "value": "100"}, ...]}
//  2. {"fields": {"basic_amount": {"value": "100"}, ...}}
//  3. {"fields": {"basic_amount": "100", ...}}
//  4. {"form_fields[basic_amount]": "100", ...}
//  5. {"basic_amount": "100", ...}

var formFieldKeyRe = regexp.MustCompile(`^form_fields\[(.+)\]$`)

type shapeMatcher func(payload map[string]interface{}) (map[string]string, bool)

var shapeMatchers = []shapeMatcher{
	matchFieldEntryList,
	matchFieldValueMap,
	matchFieldScalarMap,
	matchBracketedKeys,
	matchFlatMap,
}

// DecodeFormPayload decodes a raw JSON form payload into a flat field map.
// An unrecognizable payload yields an empty map, never an error: a
// malformed integration delivery degrades the same way a malformed field
// does.
func DecodeFormPayload(body []byte) map[string]string {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return map[string]string{}
	}
	for _, match := range shapeMatchers {
		if fields, ok := match(payload); ok {
			return fields
		}
	}
	return map[string]string{}
}

// Shape 1: "fields" is a list of {id, value} entries.
func matchFieldEntryList(payload map[string]interface{}) (map[string]string, bool) {
	list, ok := payload["fields"].([]interface{})
	if !ok {
		return nil, false
	}
	out := map[string]string{}
	for _, entry := range list {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		id, ok := m["id"].(string)
		if !ok || id == "" {
			continue
		}
		out[id] = stringify(m["value"])
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// Shape 2: "fields" maps id → {value: ...}.
func matchFieldValueMap(payload map[string]interface{}) (map[string]string, bool) {
	fields, ok := payload["fields"].(map[string]interface{})
	if !ok {
		return nil, false
	}
	out := map[string]string{}
	for id, entry := range fields {
		m, ok := entry.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if _, has := m["value"]; !has {
			return nil, false
		}
		out[id] = stringify(m["value"])
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// Shape 3: "fields" maps id → scalar.
func matchFieldScalarMap(payload map[string]interface{}) (map[string]string, bool) {
	fields, ok := payload["fields"].(map[string]interface{})
	if !ok {
		return nil, false
	}
	out := map[string]string{}
	for id, entry := range fields {
		switch entry.(type) {
		case string, float64, bool, nil:
			out[id] = stringify(entry)
		default:
			return nil, false
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// Shape 4: top-level keys of the form "form_fields[id]".
func matchBracketedKeys(payload map[string]interface{}) (map[string]string, bool) {
	out := map[string]string{}
	for k, v := range payload {
		if m := formFieldKeyRe.FindStringSubmatch(k); m != nil {
			out[m[1]] = stringify(v)
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// Shape 5: the payload itself is the flat field map.
func matchFlatMap(payload map[string]interface{}) (map[string]string, bool) {
	out := map[string]string{}
	for k, v := range payload {
		switch v.(type) {
		case string, float64, bool, nil:
			out[k] = stringify(v)
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
