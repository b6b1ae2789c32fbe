package template

import (
	"reflect"
	"sort"
	"strings"
)

// frame is one scope: the root data or the current element of an #each.
type frame struct {
	value any
	data  map[string]any // @index, @key, @first, @last
}

type state struct {
	root   any
	frames []*frame
}

func newState(data any) *state {
	return &state{root: data, frames: []*frame{{value: data}}}
}

func (s *state) current() *frame {
	return s.frames[len(s.frames)-1]
}

func (s *state) walk(nodes []node, b *strings.Builder) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case *textNode:
			b.WriteString(n.text)
		case *exprNode:
			v, err := s.eval(n.expr, n.offset, false)
			if err != nil {
				return err
			}
			str, err := Stringify(v)
			if err != nil {
				return evalErr(n.offset, "%v", err)
			}
			b.WriteString(str)
		case *blockNode:
			if err := s.block(n, b); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *state) block(n *blockNode, b *strings.Builder) error {
	switch n.kind {
	case "if", "unless":
		v, err := s.eval(n.expr, n.offset, true)
		if err != nil {
			return err
		}
		if truthy(v) == (n.kind == "if") {
			return s.walk(n.body, b)
		}
		return s.walk(n.elseBody, b)
	default:
		v, err := s.eval(n.expr, n.offset, false)
		if err != nil {
			return err
		}
		return s.each(n, v, b)
	}
}

func (s *state) each(n *blockNode, v any, b *strings.Builder) error {
	type entry struct {
		key   string
		value any
	}
	var entries []entry
	isMap := false

	switch val := v.(type) {
	case nil, bool:
		return s.walk(n.elseBody, b)
	case []any:
		for _, item := range val {
			entries = append(entries, entry{value: item})
		}
	case map[string]any:
		isMap = true
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			entries = append(entries, entry{key: k, value: val[k]})
		}
	default:
		rv := reflect.ValueOf(v)
		switch {
		case rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array:
			for i := 0; i < rv.Len(); i++ {
				entries = append(entries, entry{value: rv.Index(i).Interface()})
			}
		case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
			isMap = true
			keys := rv.MapKeys()
			sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
			for _, k := range keys {
				entries = append(entries, entry{key: k.String(), value: rv.MapIndex(k).Interface()})
			}
		default:
			return evalErr(n.offset, "#each cannot iterate over %s", kindOf(v))
		}
	}

	if len(entries) == 0 {
		return s.walk(n.elseBody, b)
	}

	for i, e := range entries {
		data := map[string]any{
			"index": i,
			"first": i == 0,
			"last":  i == len(entries)-1,
		}
		if isMap {
			data["key"] = e.key
		}
		s.frames = append(s.frames, &frame{value: e.value, data: data})
		err := s.walk(n.body, b)
		s.frames = s.frames[:len(s.frames)-1]
		if err != nil {
			return err
		}
	}
	return nil
}

// eval evaluates an expression. In lenient mode (block conditions) a missing
// member of a bound value evaluates to null; an unbound root name is always
// an error.
func (s *state) eval(e expr, offset int, lenient bool) (any, error) {
	switch e := e.(type) {
	case *literalExpr:
		return e.value, nil
	case *pathExpr:
		return s.lookup(e, offset, lenient)
	case *callExpr:
		args := make([]any, len(e.args))
		for i, arg := range e.args {
			v, err := s.eval(arg, offset, lenient)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		v, err := e.helper.fn(args)
		if err != nil {
			return nil, evalErr(offset, "%v", err)
		}
		return v, nil
	}
	return nil, evalErr(offset, "unsupported expression")
}

func (s *state) lookup(p *pathExpr, offset int, lenient bool) (any, error) {
	head := p.parts[0]
	var base any

	switch {
	case head == "this":
		base = s.current().value
	case head == "@root":
		base = s.root
	case strings.HasPrefix(head, "@"):
		found := false
		for i := len(s.frames) - 1; i >= 0; i-- {
			if v, ok := s.frames[i].data[head[1:]]; ok {
				base, found = v, true
				break
			}
		}
		if !found {
			return nil, referenceErr(offset, p.raw, "%s is only defined inside {{#each}}", head)
		}
	default:
		found := false
		for i := len(s.frames) - 1; i >= 0; i-- {
			if v, ok := member(s.frames[i].value, head); ok {
				base, found = v, true
				break
			}
		}
		if !found {
			return nil, referenceErr(offset, p.raw, "%q is not defined", head)
		}
	}

	for i, seg := range p.parts[1:] {
		v, ok := member(base, seg)
		if !ok {
			if lenient {
				return nil, nil
			}
			resolved := strings.Join(p.parts[:i+1], ".")
			if base == nil {
				return nil, referenceErr(offset, p.raw, "cannot read %q of null %q", seg, resolved)
			}
			return nil, referenceErr(offset, p.raw, "%q has no member %q", resolved, seg)
		}
		base = v
	}
	return base, nil
}
