package rules

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Context is the normalized, de-identified view of a request that rule
// predicates evaluate against. Values are numbers, strings or bools.
type Context map[string]any

// Condition is one clause of a rule predicate: a comparison between a
// context field and a configured value. All clauses must hold for the rule
// to trigger.
type Condition struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value any    `json:"value,omitempty"`
}

// Known context fields; a condition naming anything else is malformed.
var knownFields = map[string]bool{
	"region":                true,
	"farm_type":             true,
	"crop":                  true,
	"area_hectares":         true,
	"soil_moisture_percent": true,
	"soil_ph":               true,
	"nitrogen_level":        true,
	"phosphorus_level":      true,
	"potassium_level":       true,
	"temperature_min":       true,
	"temperature_max":       true,
	"precipitation_expected": true,
	"humidity_percent":      true,
	"season_phase":          true,
	"intent":                true,
}

// Eval evaluates the condition against the context. A missing field, an
// unknown operator or a type mismatch returns an error so the caller can
// fail closed for that single rule.
func (c Condition) Eval(ctx Context) (bool, error) {
	if !knownFields[c.Field] {
		return false, fmt.Errorf("unknown field %q", c.Field)
	}
	raw, ok := ctx[c.Field]
	if !ok {
		return false, fmt.Errorf("field %q absent from context", c.Field)
	}

	switch c.Op {
	case "lt", "lte", "gt", "gte":
		left, err := asNumber(raw)
		if err != nil {
			return false, fmt.Errorf("field %q: %w", c.Field, err)
		}
		right, err := asNumber(c.Value)
		if err != nil {
			return false, fmt.Errorf("field %q value: %w", c.Field, err)
		}
		switch c.Op {
		case "lt":
			return left < right, nil
		case "lte":
			return left <= right, nil
		case "gt":
			return left > right, nil
		default:
			return left >= right, nil
		}

	case "eq", "ne":
		equal, err := looselyEqual(raw, c.Value)
		if err != nil {
			return false, fmt.Errorf("field %q: %w", c.Field, err)
		}
		if c.Op == "ne" {
			return !equal, nil
		}
		return equal, nil

	case "in":
		list, ok := c.Value.([]any)
		if !ok {
			return false, fmt.Errorf("field %q: op in requires a list value", c.Field)
		}
		for _, item := range list {
			equal, err := looselyEqual(raw, item)
			if err != nil {
				return false, fmt.Errorf("field %q: %w", c.Field, err)
			}
			if equal {
				return true, nil
			}
		}
		return false, nil

	case "is_true", "is_false":
		b, ok := raw.(bool)
		if !ok {
			return false, fmt.Errorf("field %q is not a flag", c.Field)
		}
		if c.Op == "is_false" {
			return !b, nil
		}
		return b, nil

	default:
		return false, fmt.Errorf("unknown op %q", c.Op)
	}
}

func asNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("not a number (%T)", v)
	}
}

func looselyEqual(a, b any) (bool, error) {
	if na, errA := asNumber(a); errA == nil {
		nb, errB := asNumber(b)
		if errB != nil {
			return false, fmt.Errorf("comparing number with %T", b)
		}
		return na == nb, nil
	}
	switch va := a.(type) {
	case string:
		vb, ok := b.(string)
		if !ok {
			return false, fmt.Errorf("comparing string with %T", b)
		}
		return strings.EqualFold(va, vb), nil
	case bool:
		vb, ok := b.(bool)
		if !ok {
			return false, fmt.Errorf("comparing bool with %T", b)
		}
		return va == vb, nil
	default:
		return false, fmt.Errorf("unsupported type %T", a)
	}
}
