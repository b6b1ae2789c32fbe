// Package render projects the result of a run into the shape the host
// displays: a list of items or a detail document.
package render

import (
	"fmt"

	cmderrors "github.com/tombee/cmdspec/pkg/errors"
	"github.com/tombee/cmdspec/pkg/interpreter"
	"github.com/tombee/cmdspec/pkg/spec"
	"github.com/tombee/cmdspec/pkg/template"
)

// ListItem is one rendered element of a list projection.
type ListItem struct {
	Index       int      `json:"index"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Accessories []string `json:"accessories,omitempty"`

	// Value is the source element, bound as {{item}} when an action runs
	// against this item.
	Value any `json:"value"`
}

// Projection is the rendered view of a result.
type Projection struct {
	Mode spec.Mode `json:"mode"`

	// Items holds the list projection. It is empty, not nil, when the data
	// source is absent or not an array.
	Items []ListItem `json:"items,omitempty"`

	// Content is the rendered detail markdown.
	Content string `json:"content,omitempty"`
}

// Project renders result according to its UI binding. The engine should be
// the interpreter's so projection templates see the same helpers.
func Project(result *interpreter.Result, engine *template.Engine) (*Projection, error) {
	if result == nil {
		return nil, &cmderrors.ValidationError{Field: "result", Message: "nothing to render"}
	}
	if engine == nil {
		engine = template.New()
	}

	switch result.UI.Mode {
	case spec.ModeList:
		items, err := projectList(result, engine)
		if err != nil {
			return nil, err
		}
		return &Projection{Mode: spec.ModeList, Items: items}, nil
	case spec.ModeDetail:
		content, err := engine.Render(result.UI.Content, result.Context)
		if err != nil {
			return nil, fmt.Errorf("failed to render detail content: %w", err)
		}
		return &Projection{Mode: spec.ModeDetail, Content: content}, nil
	default:
		return nil, &cmderrors.ValidationError{
			Field:   "ui.mode",
			Message: fmt.Sprintf("cannot render mode %q", result.UI.Mode),
		}
	}
}

// Elements returns the data source array of a list result, or nil when the
// source is absent or not an array.
func Elements(result *interpreter.Result) []any {
	if result == nil {
		return nil
	}
	v, ok := result.Value(result.UI.DataSource)
	if !ok {
		return nil
	}
	elements, _ := v.([]any)
	return elements
}

// Item returns the element at index of a list result's data source.
func Item(result *interpreter.Result, index int) (any, error) {
	elements := Elements(result)
	if index < 0 || index >= len(elements) {
		return nil, &cmderrors.NotFoundError{Resource: "item", ID: fmt.Sprintf("%d", index)}
	}
	return elements[index], nil
}

func projectList(result *interpreter.Result, engine *template.Engine) ([]ListItem, error) {
	elements := Elements(result)
	items := make([]ListItem, 0, len(elements))
	props := result.UI.ItemProps

	for i, element := range elements {
		scope := make(map[string]any, len(result.Context)+2)
		for k, v := range result.Context {
			scope[k] = v
		}
		scope[interpreter.VarItem] = element
		scope["index"] = i

		item := ListItem{Index: i, Value: element}
		if props == nil {
			title, err := template.Stringify(element)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			item.Title = title
			items = append(items, item)
			continue
		}

		var err error
		if item.Title, err = engine.Render(props.Title, scope); err != nil {
			return nil, fmt.Errorf("item %d title: %w", i, err)
		}
		if item.Subtitle, err = engine.Render(props.Subtitle, scope); err != nil {
			return nil, fmt.Errorf("item %d subtitle: %w", i, err)
		}
		for j, src := range props.Accessories {
			acc, err := engine.Render(src, scope)
			if err != nil {
				return nil, fmt.Errorf("item %d accessory %d: %w", i, j, err)
			}
			item.Accessories = append(item.Accessories, acc)
		}
		items = append(items, item)
	}
	return items, nil
}
