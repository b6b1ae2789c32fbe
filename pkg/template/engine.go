package template

import (
	"fmt"
	"strings"
	"sync"
)

// Template is a parsed template.
type Template struct {
	src   string
	nodes []node
}

// Execute renders the template against data.
func (t *Template) Execute(data any) (string, error) {
	var b strings.Builder
	if err := newState(data).walk(t.nodes, &b); err != nil {
		return "", t.annotate(err)
	}
	return b.String(), nil
}

// Value evaluates the template. A template that consists of exactly one
// expression tag yields the raw value of that expression, preserving its
// type; anything else yields the rendered string.
func (t *Template) Value(data any) (any, error) {
	if len(t.nodes) == 1 {
		if n, ok := t.nodes[0].(*exprNode); ok {
			v, err := newState(data).eval(n.expr, n.offset, false)
			if err != nil {
				return nil, t.annotate(err)
			}
			return v, nil
		}
	}
	return t.Execute(data)
}

func (t *Template) annotate(err error) error {
	if tplErr, ok := err.(*Error); ok && tplErr.Template == "" {
		tplErr.Template = t.src
	}
	return err
}

// DefaultCacheSize is the number of parsed templates an Engine keeps.
const DefaultCacheSize = 1024

// Engine parses and evaluates templates. Parsed templates are cached, so an
// Engine should be shared; it is safe for concurrent use. The cache holds at
// most its size in templates and evicts the oldest entry first, so hosts
// that reload edited specs do not grow it without bound.
type Engine struct {
	mu    sync.RWMutex
	cache map[string]*Template
	order []string // insertion order, oldest first
	size  int
}

// New creates a template engine with DefaultCacheSize.
func New() *Engine {
	return NewWithCacheSize(DefaultCacheSize)
}

// NewWithCacheSize creates a template engine caching up to size parsed
// templates. A size below one disables caching.
func NewWithCacheSize(size int) *Engine {
	if size < 0 {
		size = 0
	}
	return &Engine{
		cache: make(map[string]*Template),
		size:  size,
	}
}

// Parse parses src, returning a cached template when src was seen before.
func (e *Engine) Parse(src string) (*Template, error) {
	e.mu.RLock()
	if t, ok := e.cache[src]; ok {
		e.mu.RUnlock()
		return t, nil
	}
	e.mu.RUnlock()

	nodes, err := parse(src)
	if err != nil {
		if tplErr, ok := err.(*Error); ok {
			tplErr.Template = src
		}
		return nil, err
	}
	t := &Template{src: src, nodes: nodes}
	e.store(src, t)
	return t, nil
}

func (e *Engine) store(src string, t *Template) {
	if e.size == 0 {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.cache[src]; ok {
		return
	}
	for len(e.order) >= e.size {
		delete(e.cache, e.order[0])
		e.order[0] = ""
		e.order = e.order[1:]
	}
	e.cache[src] = t
	e.order = append(e.order, src)
}

// CacheLen returns the number of cached templates.
func (e *Engine) CacheLen() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

// Render expands src against data.
func (e *Engine) Render(src string, data any) (string, error) {
	if !HasPlaceholders(src) {
		return src, nil
	}
	t, err := e.Parse(src)
	if err != nil {
		return "", err
	}
	return t.Execute(data)
}

// Resolve expands every string in a JSON-like tree against data. Maps and
// slices are resolved recursively and keep their shape; other leaves pass
// through unchanged. A string that is exactly one placeholder resolves to the
// raw value it references.
func (e *Engine) Resolve(value any, data any) (any, error) {
	switch v := value.(type) {
	case string:
		if !HasPlaceholders(v) {
			return v, nil
		}
		t, err := e.Parse(v)
		if err != nil {
			return nil, err
		}
		return t.Value(data)
	case map[string]any:
		resolved := make(map[string]any, len(v))
		for k, val := range v {
			r, err := e.Resolve(val, data)
			if err != nil {
				return nil, fmt.Errorf("in field %q: %w", k, err)
			}
			resolved[k] = r
		}
		return resolved, nil
	case []any:
		resolved := make([]any, len(v))
		for i, val := range v {
			r, err := e.Resolve(val, data)
			if err != nil {
				return nil, fmt.Errorf("at index %d: %w", i, err)
			}
			resolved[i] = r
		}
		return resolved, nil
	default:
		return value, nil
	}
}

// Check parses src without evaluating it.
func (e *Engine) Check(src string) error {
	if !HasPlaceholders(src) {
		return nil
	}
	_, err := e.Parse(src)
	return err
}

// HasPlaceholders reports whether s contains template syntax.
func HasPlaceholders(s string) bool {
	return strings.Contains(s, "{{")
}
