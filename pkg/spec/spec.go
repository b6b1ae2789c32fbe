// Package spec defines command specifications: declarative documents that
// describe a sequence of allowlisted operations, how their results are
// projected into a list or detail view, and follow-up actions.
//
// Specifications arrive as untrusted JSON (or YAML) and are only ever turned
// into a CommandSpec by Validate, so a *CommandSpec obtained from this package
// is always structurally valid.
package spec

import (
	"regexp"
)

// Mode declares which rendering shape a spec's result is projected into.
type Mode string

const (
	ModeList   Mode = "list"
	ModeForm   Mode = "form"
	ModeDetail Mode = "detail"
	ModeView   Mode = "view"
)

// IsValid reports whether m is one of the known spec modes.
func (m Mode) IsValid() bool {
	switch m {
	case ModeList, ModeForm, ModeDetail, ModeView:
		return true
	}
	return false
}

// OperationType is the closed set of step types the interpreter can dispatch.
type OperationType string

const (
	OpHTTPRequest OperationType = "httpRequest"
	OpShell       OperationType = "shell"
	OpTransform   OperationType = "transform"
	OpFileRead    OperationType = "fileRead"
	OpFileWrite   OperationType = "fileWrite"
	OpClipboard   OperationType = "clipboard"
	OpOpen        OperationType = "open"
	OpShowToast   OperationType = "showToast"
	OpShowHUD     OperationType = "showHUD"
)

// OperationTypes returns every supported operation type in declaration order.
func OperationTypes() []OperationType {
	return []OperationType{
		OpHTTPRequest,
		OpShell,
		OpTransform,
		OpFileRead,
		OpFileWrite,
		OpClipboard,
		OpOpen,
		OpShowToast,
		OpShowHUD,
	}
}

// IsValid reports whether t belongs to the operation allowlist.
func (t OperationType) IsValid() bool {
	_, ok := operationRules[t]
	return ok
}

// InputType is the kind of a form field.
type InputType string

const (
	InputText     InputType = "text"
	InputTextarea InputType = "textarea"
	InputPassword InputType = "password"
	InputNumber   InputType = "number"
	InputCheckbox InputType = "checkbox"
	InputDropdown InputType = "dropdown"
)

func (t InputType) isValid() bool {
	switch t {
	case InputText, InputTextarea, InputPassword, InputNumber, InputCheckbox, InputDropdown:
		return true
	}
	return false
}

// CommandSpec is the unit of persistence and execution.
type CommandSpec struct {
	// ID is assigned at creation and never changes.
	ID string `json:"id" yaml:"id"`

	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`

	Mode Mode `json:"mode" yaml:"mode"`

	// Inputs are only consumed when Mode is form.
	Inputs []InputField `json:"inputs,omitempty" yaml:"inputs,omitempty"`

	// Steps run strictly in order.
	Steps []Operation `json:"steps" yaml:"steps"`

	UI UIBinding `json:"ui" yaml:"ui"`

	Actions []ActionDef `json:"actions,omitempty" yaml:"actions,omitempty"`

	Metadata Metadata `json:"metadata" yaml:"metadata"`
}

// InputField declares one form field.
type InputField struct {
	ID          string        `json:"id" yaml:"id"`
	Type        InputType     `json:"type" yaml:"type"`
	Label       string        `json:"label" yaml:"label"`
	Required    bool          `json:"required,omitempty" yaml:"required,omitempty"`
	Default     any           `json:"default,omitempty" yaml:"default,omitempty"`
	Placeholder string        `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options     []InputOption `json:"options,omitempty" yaml:"options,omitempty"`
}

// InputOption is one choice of a dropdown field.
type InputOption struct {
	Title string `json:"title" yaml:"title"`
	Value string `json:"value" yaml:"value"`
}

// Operation is one program step.
type Operation struct {
	Type OperationType `json:"type" yaml:"type"`

	// Config is a JSON-like tree whose string leaves may contain placeholders.
	Config map[string]any `json:"config" yaml:"config"`

	// OutputVar names the context variable the step result is bound to.
	OutputVar string `json:"outputVar,omitempty" yaml:"outputVar,omitempty"`
}

// UIBinding describes how the final context is projected for display.
type UIBinding struct {
	// Mode is list or detail.
	Mode Mode `json:"mode" yaml:"mode"`

	// DataSource names the context variable holding the data to project.
	DataSource string `json:"dataSource" yaml:"dataSource"`

	ItemProps *ItemProps `json:"itemProps,omitempty" yaml:"itemProps,omitempty"`

	// Content is the markdown template for detail mode.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
}

// ItemProps are the per-element templates of a list projection.
type ItemProps struct {
	Title       string   `json:"title" yaml:"title"`
	Subtitle    string   `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Accessories []string `json:"accessories,omitempty" yaml:"accessories,omitempty"`
}

// ActionDef is a titled operation the user can run against a rendered item.
type ActionDef struct {
	Title     string    `json:"title" yaml:"title"`
	Operation Operation `json:"operation" yaml:"operation"`
}

// Metadata is informational and never interpreted by the engine.
type Metadata struct {
	Created  string   `json:"created" yaml:"created"`
	Modified string   `json:"modified" yaml:"modified"`
	Tags     []string `json:"tags" yaml:"tags"`
	Author   string   `json:"author,omitempty" yaml:"author,omitempty"`
}

// HasTag reports whether the spec carries the given tag.
func (s *CommandSpec) HasTag(tag string) bool {
	for _, t := range s.Metadata.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the spec.
func (s *CommandSpec) Clone() *CommandSpec {
	if s == nil {
		return nil
	}

	c := *s
	if s.Inputs != nil {
		c.Inputs = make([]InputField, len(s.Inputs))
		for i, in := range s.Inputs {
			in.Default = cloneValue(in.Default)
			if in.Options != nil {
				in.Options = append([]InputOption(nil), in.Options...)
			}
			c.Inputs[i] = in
		}
	}
	if s.Steps != nil {
		c.Steps = make([]Operation, len(s.Steps))
		for i, op := range s.Steps {
			c.Steps[i] = op.clone()
		}
	}
	if s.UI.ItemProps != nil {
		props := *s.UI.ItemProps
		if props.Accessories != nil {
			props.Accessories = append([]string(nil), props.Accessories...)
		}
		c.UI.ItemProps = &props
	}
	if s.Actions != nil {
		c.Actions = make([]ActionDef, len(s.Actions))
		for i, a := range s.Actions {
			c.Actions[i] = ActionDef{Title: a.Title, Operation: a.Operation.clone()}
		}
	}
	if s.Metadata.Tags != nil {
		c.Metadata.Tags = append([]string(nil), s.Metadata.Tags...)
	}
	return &c
}

func (o Operation) clone() Operation {
	if cfg, ok := cloneValue(o.Config).(map[string]any); ok {
		o.Config = cfg
	}
	return o
}

// cloneValue deep-copies a JSON-like tree.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		if val == nil {
			return val
		}
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		if val == nil {
			return val
		}
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ReservedNames are the context variables the interpreter binds itself.
var ReservedNames = []string{"env", "input", "sandboxDir", "tempDir", "item"}
