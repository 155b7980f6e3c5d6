package msgs

import (
	"encoding/json"
	"strconv"
)

// Value is an optional physical quantity.
// The zero Value is absent.
type Value struct {
	v  float64
	ok bool
}

// Some creates a present Value.
func Some(v float64) Value {
	return Value{v: v, ok: true}
}

// None is the absent Value.
var None = Value{}

// Get returns the value and whether it's present.
func (v Value) Get() (float64, bool) {
	return v.v, v.ok
}

// Valid indicates the value is present.
func (v Value) Valid() bool {
	return v.ok
}

// String implements fmt.Stringer. Absent values print as "-".
func (v Value) String() string {
	if !v.ok {
		return "-"
	}
	return strconv.FormatFloat(v.v, 'g', -1, 64)
}

// MarshalJSON implements json.Marshaler. Absent values encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = None
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}
