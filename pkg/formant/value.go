package formant

import (
	"encoding/json"
	"math"

	"gopkg.in/yaml.v3"
)

// Value is a formant or bandwidth reading that may be undefined.
type Value struct {
	v  float64
	ok bool
}

// Undefined is the zero Value.
var Undefined = Value{}

// Some returns a defined Value. NaN and infinities are treated as undefined.
func Some(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	return Value{v: v, ok: true}
}

// Get returns the value and whether it is defined.
func (x Value) Get() (float64, bool) {
	return x.v, x.ok
}

// Defined reports whether the value is present.
func (x Value) Defined() bool {
	return x.ok
}

// Or returns the value, or def when undefined.
func (x Value) Or(def float64) float64 {
	if !x.ok {
		return def
	}
	return x.v
}

// Round rounds a defined value to the given number of decimals.
func (x Value) Round(decimals int) Value {
	if !x.ok {
		return x
	}
	return Some(Round(x.v, decimals))
}

// Truthy mirrors the "present and non-zero" test used when filtering
// measurements for statistics.
func (x Value) Truthy() bool {
	return x.ok && x.v != 0
}

func (x Value) MarshalJSON() ([]byte, error) {
	if !x.ok {
		return []byte("null"), nil
	}
	return json.Marshal(x.v)
}

func (x *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*x = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*x = Some(v)
	return nil
}

func (x Value) MarshalYAML() (any, error) {
	if !x.ok {
		return nil, nil
	}
	return x.v, nil
}

func (x *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" || node.Value == "" || node.Value == "~" {
		*x = Undefined
		return nil
	}
	var v float64
	if err := node.Decode(&v); err != nil {
		return err
	}
	*x = Some(v)
	return nil
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
