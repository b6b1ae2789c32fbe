package template

import (
	"testing"
)

func TestHelpers(t *testing.T) {
	tests := []struct {
		helper string
		args   []any
		want   any
	}{
		{"eq", []any{1.0, 1}, true},
		{"eq", []any{"1", 1.0}, false},
		{"eq", []any{nil, nil}, true},
		{"eq", []any{"a", "a"}, true},
		{"ne", []any{"a", "b"}, true},
		{"gt", []any{2.0, 1.0}, true},
		{"gt", []any{"b", "a"}, true},
		{"gte", []any{1.0, 1.0}, true},
		{"lt", []any{1.0, 2}, true},
		{"lte", []any{3.0, 2.0}, false},
		{"and", []any{true, "x", 1.0}, true},
		{"and", []any{true, ""}, false},
		{"or", []any{false, []any{}, "y"}, true},
		{"not", []any{map[string]any{}}, false},
		{"not", []any{0.0}, true},
		{"json", []any{map[string]any{"a": []any{1.0}}}, `{"a":[1]}`},
		{"length", []any{"héllo"}, 5},
		{"length", []any{[]any{1, 2, 3}}, 3},
		{"length", []any{map[string]any{"a": 1}}, 1},
		{"length", []any{[]string{"a"}}, 1},
		{"length", []any{nil}, 0},
	}

	for _, tt := range tests {
		h := helpers[tt.helper]
		got, err := h.fn(tt.args)
		if err != nil {
			t.Errorf("%s(%v) error = %v", tt.helper, tt.args, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s(%v) = %v, want %v", tt.helper, tt.args, got, tt.want)
		}
	}
}

func TestHelpers_Errors(t *testing.T) {
	if _, err := helpers["gt"].fn([]any{true, 1.0}); err == nil {
		t.Error("gt(bool, number) should fail")
	}
	if _, err := helpers["length"].fn([]any{true}); err == nil {
		t.Error("length(bool) should fail")
	}
}

func TestHelperNames(t *testing.T) {
	names := HelperNames()
	if len(names) != len(helpers) {
		t.Fatalf("HelperNames() has %d entries, helper table has %d", len(names), len(helpers))
	}
	for _, name := range names {
		if _, ok := helpers[name]; !ok {
			t.Errorf("HelperNames() lists unknown helper %q", name)
		}
	}
}
