// flexible.go - Lenient JSON leaf types for model output
//
// Models routinely return a number where a string was asked for, a bare string where a list
// was asked for, or "85%" instead of 85. These types accept all of that without failing the
// whole document.

package ai

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Text is a string that accepts any JSON scalar. Objects and arrays are kept as compact JSON.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*t = Text(stringify(v))
	return nil
}

func (t Text) String() string {
	return string(t)
}

// TextList is a list of strings that also accepts a single scalar
type TextList []string

func (l *TextList) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch val := v.(type) {
	case nil:
		*l = nil
	case []interface{}:
		out := make(TextList, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			out = append(out, stringify(item))
		}
		*l = out
	default:
		s := stringify(val)
		if s == "" {
			*l = nil
			return nil
		}
		*l = TextList{s}
	}
	return nil
}

// Number is an optional float that accepts numbers and numeric strings ("85", "85%")
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	*n = Number{}
	switch val := v.(type) {
	case float64:
		n.Value, n.Valid = val, true
	case string:
		s := strings.TrimSpace(val)
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			n.Value, n.Valid = f, true
		}
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// IsZero lets omitzero drop unset numbers
func (n Number) IsZero() bool {
	return !n.Valid
}

// List is a slice that decodes to empty when the model sends something other than an array.
// Elements that fail to decode are skipped.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		*l = nil
		return nil
	}

	out := make(List[T], 0, len(raw))
	for _, item := range raw {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			continue
		}
		var elem T
		if err := json.Unmarshal(item, &elem); err != nil {
			continue
		}
		out = append(out, elem)
	}
	*l = out
	return nil
}

// decodeObject fills dst from b when b is a JSON object and leaves it empty otherwise.
// dst must be a pointer to an alias type so the caller's UnmarshalJSON is not re-entered.
func decodeObject(b []byte, dst interface{}) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	return json.Unmarshal(trimmed, dst)
}

// Extras holds top-level keys a model sent beyond the requested schema, untouched
type Extras map[string]json.RawMessage

// decodeWithExtras decodes like decodeObject and records every key that matches no field
// of dst in extras. Key matching is case-insensitive, as in encoding/json.
func decodeWithExtras(b []byte, dst interface{}, extras *Extras) error {
	if err := decodeObject(b, dst); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(b), &all); err != nil {
		return nil
	}

	known := jsonFieldNames(reflect.TypeOf(dst).Elem())
	for key, raw := range all {
		if known[strings.ToLower(key)] {
			continue
		}
		if *extras == nil {
			*extras = Extras{}
		}
		(*extras)[key] = raw
	}
	return nil
}

// encodeWithExtras encodes v and adds the extra keys that v does not already emit
func encodeWithExtras(v interface{}, extras Extras) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || len(extras) == 0 {
		return b, err
	}

	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}
	for key, raw := range extras {
		if _, exists := merged[key]; !exists {
			merged[key] = raw
		}
	}
	return json.Marshal(merged)
}

var fieldNameCache sync.Map // reflect.Type -> map[string]bool

// jsonFieldNames returns the lower-cased JSON keys a struct type decodes
func jsonFieldNames(t reflect.Type) map[string]bool {
	if cached, ok := fieldNameCache.Load(t); ok {
		return cached.(map[string]bool)
	}

	names := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		names[strings.ToLower(name)] = true
	}

	fieldNameCache.Store(t, names)
	return names
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
