package submissions

import (
	"encoding/json"
	"strings"
)

// FieldValue is one raw form value keyed by question id. It accepts either a
// JSON string (text inputs, radio, select) or a JSON array of strings
// (checkbox groups).
type FieldValue struct {
	values  []string
	isArray bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var arr []string
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		v.values = arr
		v.isArray = true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v.values = []string{s}
	v.isArray = false
	return nil
}

// Scalar builds a single-string value.
func Scalar(s string) FieldValue {
	return FieldValue{values: []string{s}}
}

// Multi builds an array value.
func Multi(values ...string) FieldValue {
	return FieldValue{values: values, isArray: true}
}

// Empty reports whether the value should be silently dropped: an empty
// string, or an empty array.
func (v FieldValue) Empty() bool {
	if v.isArray {
		return len(v.values) == 0
	}
	return len(v.values) == 0 || v.values[0] == ""
}

// Serialize flattens the value for storage; array values are comma-joined.
func (v FieldValue) Serialize() string {
	return strings.Join(v.values, ",")
}
