package template

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"
)

// helper is one entry of the closed helper set.
type helper struct {
	name    string
	minArgs int
	maxArgs int // -1 for variadic
	fn      func(args []any) (any, error)
}

func (h *helper) arity() string {
	switch {
	case h.maxArgs < 0:
		return fmt.Sprintf("at least %d arguments", h.minArgs)
	case h.minArgs == h.maxArgs && h.minArgs == 1:
		return "1 argument"
	case h.minArgs == h.maxArgs:
		return fmt.Sprintf("%d arguments", h.minArgs)
	default:
		return fmt.Sprintf("%d to %d arguments", h.minArgs, h.maxArgs)
	}
}

var helpers map[string]*helper

func init() {
	helpers = make(map[string]*helper)
	for _, h := range []*helper{
		{name: "eq", minArgs: 2, maxArgs: 2, fn: func(a []any) (any, error) { return equal(a[0], a[1]), nil }},
		{name: "ne", minArgs: 2, maxArgs: 2, fn: func(a []any) (any, error) { return !equal(a[0], a[1]), nil }},
		{name: "gt", minArgs: 2, maxArgs: 2, fn: comparison("gt", func(c int) bool { return c > 0 })},
		{name: "gte", minArgs: 2, maxArgs: 2, fn: comparison("gte", func(c int) bool { return c >= 0 })},
		{name: "lt", minArgs: 2, maxArgs: 2, fn: comparison("lt", func(c int) bool { return c < 0 })},
		{name: "lte", minArgs: 2, maxArgs: 2, fn: comparison("lte", func(c int) bool { return c <= 0 })},
		{name: "and", minArgs: 2, maxArgs: -1, fn: func(a []any) (any, error) {
			for _, v := range a {
				if !truthy(v) {
					return false, nil
				}
			}
			return true, nil
		}},
		{name: "or", minArgs: 2, maxArgs: -1, fn: func(a []any) (any, error) {
			for _, v := range a {
				if truthy(v) {
					return true, nil
				}
			}
			return false, nil
		}},
		{name: "not", minArgs: 1, maxArgs: 1, fn: func(a []any) (any, error) { return !truthy(a[0]), nil }},
		{name: "json", minArgs: 1, maxArgs: 1, fn: func(a []any) (any, error) {
			data, err := json.Marshal(a[0])
			if err != nil {
				return nil, fmt.Errorf("json: %w", err)
			}
			return string(data), nil
		}},
		{name: "length", minArgs: 1, maxArgs: 1, fn: func(a []any) (any, error) { return length(a[0]) }},
	} {
		helpers[h.name] = h
	}
}

// HelperNames returns the names of the available helpers.
func HelperNames() []string {
	return []string{"eq", "ne", "gt", "gte", "lt", "lte", "and", "or", "not", "json", "length"}
}

func comparison(name string, ok func(int) bool) func([]any) (any, error) {
	return func(a []any) (any, error) {
		c, err := compare(a[0], a[1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return ok(c), nil
	}
}

// compare orders two numbers or two strings.
func compare(a, b any) (int, error) {
	if x, ok := toNumber(a); ok {
		if y, ok := toNumber(b); ok {
			switch {
			case x < y:
				return -1, nil
			case x > y:
				return 1, nil
			}
			return 0, nil
		}
	}
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
	}
	return 0, fmt.Errorf("cannot compare %s with %s", kindOf(a), kindOf(b))
}

// equal is strict equality with numeric normalisation, so 1 from an integer
// source equals 1.0 decoded from JSON but "1" never equals 1.
func equal(a, b any) bool {
	if x, ok := toNumber(a); ok {
		y, ok := toNumber(b)
		return ok && x == y
	}
	if _, ok := toNumber(b); ok {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func length(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case string:
		return utf8.RuneCountInString(val), nil
	case []any:
		return len(val), nil
	case map[string]any:
		return len(val), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), nil
	}
	return nil, fmt.Errorf("length: cannot take length of %s", kindOf(v))
}
