package registry

import (
	"bytes"
	"encoding/json"
)

// Value is a JSON scalar as delivered by the registry: nil, string,
// json.Number or bool. Objects and arrays are kept in their generic form.
type Value struct {
	raw interface{}
}

// NewValue wraps a Go value; numbers should be json.Number or native numerics.
func NewValue(x interface{}) Value {
	switch n := x.(type) {
	case int:
		return Value{raw: json.Number(jsonInt(int64(n)))}
	case int64:
		return Value{raw: json.Number(jsonInt(n))}
	case float64:
		b, _ := json.Marshal(n)
		return Value{raw: json.Number(b)}
	}
	return Value{raw: x}
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

// UnmarshalJSON decodes any JSON value, keeping numbers exact
func (v *Value) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	v.raw = raw
	return nil
}

// MarshalJSON writes the value back unchanged
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw)
}

// IsNull reports an explicit or implicit JSON null
func (v Value) IsNull() bool {
	return v.raw == nil
}

// Truthy follows the registry's loose notion of "has a value": null, "",
// 0, false and empty containers are all falsy.
func (v Value) Truthy() bool {
	switch x := v.raw.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case bool:
		return x
	case []interface{}:
		return len(x) > 0
	case map[string]interface{}:
		return len(x) > 0
	default:
		return true
	}
}

// Cell converts the value into something a spreadsheet cell can hold:
// string, int64, float64, bool or nil. Containers become compact JSON text.
func (v Value) Cell() interface{} {
	switch x := v.raw.(type) {
	case nil, string, bool:
		return x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return nil
		}
		return string(b)
	}
}
