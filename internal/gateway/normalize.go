package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The concept API is loose about response shapes: list queries answer either
// with a bare JSON array or with the array wrapped in a single keyed object.
// The helpers below accept exactly those two shapes and fail with a decode
// error on anything else; synchronizers never guess.

// ObjectList decodes a list response into dst, unwrapping {key: [...]} when
// the body is not a bare array.
func ObjectList(raw json.RawMessage, concept, action, key string, dst any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, dst); err != nil {
			return NewDecodeError(concept, action, err.Error())
		}
		return nil
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return NewDecodeError(concept, action, "unrecognized response shape: "+err.Error())
	}
	inner, ok := wrapper[key]
	if !ok {
		return NewDecodeError(concept, action, fmt.Sprintf("response has no %q field", key))
	}
	if err := json.Unmarshal(inner, dst); err != nil {
		return NewDecodeError(concept, action, err.Error())
	}
	return nil
}

// Object decodes a single-object response into dst.
func Object(raw json.RawMessage, concept, action string, dst any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return NewDecodeError(concept, action, "expected a JSON object")
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return NewDecodeError(concept, action, err.Error())
	}
	return nil
}

// StringField extracts a required string field, the usual shape of a create
// action answering with the new entity's id.
func StringField(raw json.RawMessage, concept, action, key string) (string, error) {
	var fields map[string]json.RawMessage
	if err := Object(raw, concept, action, &fields); err != nil {
		return "", err
	}
	inner, ok := fields[key]
	if !ok {
		return "", NewDecodeError(concept, action, fmt.Sprintf("response has no %q field", key))
	}
	var value string
	if err := json.Unmarshal(inner, &value); err != nil || value == "" {
		return "", NewDecodeError(concept, action, fmt.Sprintf("%q field is not a usable string", key))
	}
	return value, nil
}
