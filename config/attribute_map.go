// Package config models the parsed robot configuration the control core
// consumes and reads it from JSON. Validate checks internal consistency
// only; schema validation of the source document is out of scope.
package config

import "fmt"

// An AttributeMap is a convenience wrapper around driver attributes.
type AttributeMap map[string]interface{}

// Has returns whether the map contains the given name.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// GetString returns the string value for name, or "" when absent. It
// panics if the value has another type.
func (am AttributeMap) GetString(name string) string {
	x := am[name]
	if x == nil {
		return ""
	}

	s, ok := x.(string)
	if ok {
		return s
	}

	panic(fmt.Errorf("wanted a string for (%s) but got (%v) %T", name, x, x))
}

// GetInt returns the int value for name, or def when absent. JSON
// numbers arrive as float64 and are converted. It panics if the value
// has another type.
func (am AttributeMap) GetInt(name string, def int) int {
	x, has := am[name]
	if !has {
		return def
	}

	v, ok := x.(int)
	if ok {
		return v
	}

	v2, ok := x.(float64)
	if ok {
		return int(v2)
	}

	panic(fmt.Errorf("wanted an int for (%s) but got (%v) %T", name, x, x))
}

// GetFloat64 returns the float value for name, or def when absent. It
// panics if the value has another type.
func (am AttributeMap) GetFloat64(name string, def float64) float64 {
	x, has := am[name]
	if !has {
		return def
	}

	v, ok := x.(float64)
	if ok {
		return v
	}

	v2, ok := x.(int)
	if ok {
		return float64(v2)
	}

	panic(fmt.Errorf("wanted a float for (%s) but got (%v) %T", name, x, x))
}

// GetBool returns the bool value for name, or def when absent. It
// panics if the value has another type.
func (am AttributeMap) GetBool(name string, def bool) bool {
	x, has := am[name]
	if !has {
		return def
	}

	v, ok := x.(bool)
	if ok {
		return v
	}

	panic(fmt.Errorf("wanted a bool for (%s) but got (%v) %T", name, x, x))
}
