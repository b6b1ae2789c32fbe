package spec

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Validate checks a JSON-like candidate tree (the result of decoding a JSON
// document into an interface{}) and returns the typed spec. Every independent
// finding is collected; on failure the error is a ValidationErrors and no
// CommandSpec is returned. Nothing is defaulted or fixed up.
func Validate(candidate any) (*CommandSpec, error) {
	v := &validator{}
	v.validateSpec(candidate)
	if len(v.errs) > 0 {
		return nil, v.errs
	}

	data, err := json.Marshal(candidate)
	if err != nil {
		return nil, ValidationErrors{NewValidationError("$", "type", fmt.Sprintf("document cannot be encoded: %v", err))}
	}
	var s CommandSpec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, ValidationErrors{NewValidationError("$", "type", fmt.Sprintf("document cannot be decoded: %v", err))}
	}
	return &s, nil
}

// Check validates an already typed spec, for callers that build or modify
// specs in code before persisting them.
func Check(s *CommandSpec) error {
	if s == nil {
		return ValidationErrors{NewValidationError("$", "type", "spec cannot be nil")}
	}
	tree, err := toTree(s)
	if err != nil {
		return ValidationErrors{NewValidationError("$", "type", err.Error())}
	}
	_, err = Validate(tree)
	return err
}

func toTree(s *CommandSpec) (any, error) {
	data, err := Marshal(s)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

type validator struct {
	errs ValidationErrors
}

func (v *validator) add(path, keyword string, step int, format string, args ...any) {
	v.errs = append(v.errs, &ValidationError{
		Path:      path,
		Keyword:   keyword,
		Message:   fmt.Sprintf(format, args...),
		StepIndex: step,
	})
}

var (
	specKeys      = []string{"id", "title", "description", "mode", "inputs", "steps", "ui", "actions", "metadata"}
	operationKeys = []string{"type", "config", "outputVar"}
	uiKeys        = []string{"mode", "dataSource", "itemProps", "content"}
	itemPropsKeys = []string{"title", "subtitle", "accessories"}
	actionKeys    = []string{"title", "operation"}
	inputKeys     = []string{"id", "type", "label", "required", "default", "placeholder", "options"}
	optionKeys    = []string{"title", "value"}
	metadataKeys  = []string{"created", "modified", "tags", "author"}

	httpMethods  = []string{"GET", "POST", "PUT", "DELETE", "PATCH"}
	fileFormats  = []string{"text", "json", "yaml", "csv", "lines"}
	toastStyles  = []string{"success", "failure", "animated"}
	clipActions  = []string{"copy", "read"}
	specModes    = []string{string(ModeList), string(ModeForm), string(ModeDetail), string(ModeView)}
	uiModes      = []string{string(ModeList), string(ModeDetail)}
	inputTypeSet = []string{
		string(InputText), string(InputTextarea), string(InputPassword),
		string(InputNumber), string(InputCheckbox), string(InputDropdown),
	}
)

// operationRules holds the config checks for every allowed operation type.
// Membership in this map is the operation allowlist.
var operationRules = map[OperationType]func(v *validator, cfg map[string]any, path string, step int){
	OpHTTPRequest: func(v *validator, cfg map[string]any, path string, step int) {
		v.requireString(cfg, "url", path, step, true)
		v.requireEnum(cfg, "method", path, step, httpMethods)
		v.optionalStringMap(cfg, "headers", path, step)
		v.optionalTimeout(cfg, "timeout", path, step)
	},
	OpShell: func(v *validator, cfg map[string]any, path string, step int) {
		v.requireString(cfg, "command", path, step, true)
		v.optionalTimeout(cfg, "timeout", path, step)
		v.optionalString(cfg, "cwd", path, step)
		v.optionalStringMap(cfg, "env", path, step)
	},
	OpTransform: func(v *validator, cfg map[string]any, path string, step int) {
		v.requireString(cfg, "template", path, step, false)
		v.requirePresent(cfg, "data", path, step)
		v.optionalString(cfg, "query", path, step)
	},
	OpFileRead: func(v *validator, cfg map[string]any, path string, step int) {
		v.requireString(cfg, "path", path, step, true)
		v.optionalEnum(cfg, "format", path, step, fileFormats)
	},
	OpFileWrite: func(v *validator, cfg map[string]any, path string, step int) {
		v.requireString(cfg, "path", path, step, true)
		v.requirePresent(cfg, "content", path, step)
		v.optionalBool(cfg, "append", path, step)
	},
	OpClipboard: func(v *validator, cfg map[string]any, path string, step int) {
		action, ok := v.requireEnum(cfg, "action", path, step, clipActions)
		if ok && action == "copy" {
			v.requireString(cfg, "text", path, step, false)
		}
	},
	OpOpen: func(v *validator, cfg map[string]any, path string, step int) {
		v.requireString(cfg, "target", path, step, true)
	},
	OpShowToast: func(v *validator, cfg map[string]any, path string, step int) {
		v.requireString(cfg, "title", path, step, false)
		v.optionalString(cfg, "message", path, step)
		v.optionalEnum(cfg, "style", path, step, toastStyles)
	},
	OpShowHUD: func(v *validator, cfg map[string]any, path string, step int) {
		v.requireString(cfg, "title", path, step, false)
	},
}

func (v *validator) validateSpec(candidate any) {
	root, ok := candidate.(map[string]any)
	if !ok {
		v.add("$", "type", -1, "expected object, got %s", typeName(candidate))
		return
	}
	v.checkKeys(root, "$", -1, specKeys)

	// (1) identity
	v.requireString(root, "id", "$", -1, true)
	v.requireString(root, "title", "$", -1, true)
	v.requireString(root, "description", "$", -1, true)

	// (2) mode
	v.requireEnum(root, "mode", "$", -1, specModes)

	// (3) steps
	if raw, ok := root["steps"]; !ok {
		v.add("$.steps", "required", -1, "missing required field: steps")
	} else if steps, ok := raw.([]any); !ok {
		v.add("$.steps", "type", -1, "expected array, got %s", typeName(raw))
	} else {
		for i, step := range steps {
			v.validateOperation(step, fmt.Sprintf("$.steps[%d]", i), i)
		}
	}

	// (4) ui binding
	if raw, ok := root["ui"]; !ok {
		v.add("$.ui", "required", -1, "missing required field: ui")
	} else {
		v.validateUI(raw)
	}

	// (5) metadata
	if raw, ok := root["metadata"]; !ok {
		v.add("$.metadata", "required", -1, "missing required field: metadata")
	} else {
		v.validateMetadata(raw)
	}

	if raw, ok := root["inputs"]; ok {
		v.validateInputs(raw)
	}
	if raw, ok := root["actions"]; ok {
		v.validateActions(raw)
	}
}

func (v *validator) validateOperation(raw any, path string, step int) {
	op, ok := raw.(map[string]any)
	if !ok {
		v.add(path, "type", step, "expected object, got %s", typeName(raw))
		return
	}
	v.checkKeys(op, path, step, operationKeys)

	opType, typeOK := v.requireString(op, "type", path, step, true)
	var rules func(*validator, map[string]any, string, int)
	if typeOK {
		rules = operationRules[OperationType(opType)]
		if rules == nil {
			v.add(path+".type", "enum", step, "unknown operation type %q (allowed: %s)", opType, strings.Join(operationTypeNames(), ", "))
		}
	}

	cfgPath := path + ".config"
	rawCfg, ok := op["config"]
	if !ok {
		v.add(cfgPath, "required", step, "missing required field: config")
	} else if cfg, ok := rawCfg.(map[string]any); !ok {
		v.add(cfgPath, "type", step, "expected object, got %s", typeName(rawCfg))
	} else if rules != nil {
		rules(v, cfg, cfgPath, step)
	}

	if rawVar, ok := op["outputVar"]; ok {
		name, isString := rawVar.(string)
		switch {
		case !isString:
			v.add(path+".outputVar", "type", step, "expected string, got %s", typeName(rawVar))
		case !identifierPattern.MatchString(name):
			v.add(path+".outputVar", "pattern", step, "%q is not a valid variable name", name)
		}
	}
}

func (v *validator) validateUI(raw any) {
	ui, ok := raw.(map[string]any)
	if !ok {
		v.add("$.ui", "type", -1, "expected object, got %s", typeName(raw))
		return
	}
	v.checkKeys(ui, "$.ui", -1, uiKeys)
	v.requireEnum(ui, "mode", "$.ui", -1, uiModes)
	v.requireString(ui, "dataSource", "$.ui", -1, true)
	v.optionalString(ui, "content", "$.ui", -1)

	rawProps, ok := ui["itemProps"]
	if !ok {
		return
	}
	props, ok := rawProps.(map[string]any)
	if !ok {
		v.add("$.ui.itemProps", "type", -1, "expected object, got %s", typeName(rawProps))
		return
	}
	v.checkKeys(props, "$.ui.itemProps", -1, itemPropsKeys)
	v.requireString(props, "title", "$.ui.itemProps", -1, false)
	v.optionalString(props, "subtitle", "$.ui.itemProps", -1)
	v.optionalStringArray(props, "accessories", "$.ui.itemProps", -1)
}

func (v *validator) validateMetadata(raw any) {
	meta, ok := raw.(map[string]any)
	if !ok {
		v.add("$.metadata", "type", -1, "expected object, got %s", typeName(raw))
		return
	}
	v.checkKeys(meta, "$.metadata", -1, metadataKeys)
	for _, key := range []string{"created", "modified"} {
		ts, ok := v.requireString(meta, key, "$.metadata", -1, true)
		if !ok {
			continue
		}
		if _, err := time.Parse(time.RFC3339, ts); err != nil {
			v.add("$.metadata."+key, "format", -1, "expected RFC 3339 timestamp, got %q", ts)
		}
	}
	if _, ok := meta["tags"]; !ok {
		v.add("$.metadata.tags", "required", -1, "missing required field: tags")
	} else {
		v.optionalStringArray(meta, "tags", "$.metadata", -1)
	}
	v.optionalString(meta, "author", "$.metadata", -1)
}

func (v *validator) validateInputs(raw any) {
	inputs, ok := raw.([]any)
	if !ok {
		v.add("$.inputs", "type", -1, "expected array, got %s", typeName(raw))
		return
	}

	seen := make(map[string]int)
	for i, rawInput := range inputs {
		path := fmt.Sprintf("$.inputs[%d]", i)
		input, ok := rawInput.(map[string]any)
		if !ok {
			v.add(path, "type", -1, "expected object, got %s", typeName(rawInput))
			continue
		}
		v.checkKeys(input, path, -1, inputKeys)

		if id, ok := v.requireString(input, "id", path, -1, true); ok {
			if first, dup := seen[id]; dup {
				v.add(path+".id", "uniqueItems", -1, "duplicate input id %q (first declared at $.inputs[%d])", id, first)
			} else {
				seen[id] = i
			}
		}
		inputType, typeOK := v.requireEnum(input, "type", path, -1, inputTypeSet)
		v.requireString(input, "label", path, -1, true)
		v.optionalBool(input, "required", path, -1)
		v.optionalString(input, "placeholder", path, -1)

		if typeOK {
			v.validateInputDefault(input, InputType(inputType), path)
		}

		rawOpts, hasOpts := input["options"]
		if !hasOpts {
			if typeOK && InputType(inputType) == InputDropdown {
				v.add(path+".options", "required", -1, "dropdown inputs require options")
			}
			continue
		}
		opts, ok := rawOpts.([]any)
		if !ok {
			v.add(path+".options", "type", -1, "expected array, got %s", typeName(rawOpts))
			continue
		}
		if len(opts) == 0 && typeOK && InputType(inputType) == InputDropdown {
			v.add(path+".options", "minItems", -1, "dropdown inputs require at least one option")
		}
		for j, rawOpt := range opts {
			optPath := fmt.Sprintf("%s.options[%d]", path, j)
			opt, ok := rawOpt.(map[string]any)
			if !ok {
				v.add(optPath, "type", -1, "expected object, got %s", typeName(rawOpt))
				continue
			}
			v.checkKeys(opt, optPath, -1, optionKeys)
			v.requireString(opt, "title", optPath, -1, true)
			v.requireString(opt, "value", optPath, -1, false)
		}
	}
}

func (v *validator) validateInputDefault(input map[string]any, inputType InputType, path string) {
	def, ok := input["default"]
	if !ok || def == nil {
		return
	}
	switch inputType {
	case InputNumber:
		if !isNumber(def) {
			v.add(path+".default", "type", -1, "expected number, got %s", typeName(def))
		}
	case InputCheckbox:
		if _, ok := def.(bool); !ok {
			v.add(path+".default", "type", -1, "expected boolean, got %s", typeName(def))
		}
	default:
		if _, ok := def.(string); !ok {
			v.add(path+".default", "type", -1, "expected string, got %s", typeName(def))
		}
	}
}

func (v *validator) validateActions(raw any) {
	actions, ok := raw.([]any)
	if !ok {
		v.add("$.actions", "type", -1, "expected array, got %s", typeName(raw))
		return
	}
	for i, rawAction := range actions {
		path := fmt.Sprintf("$.actions[%d]", i)
		action, ok := rawAction.(map[string]any)
		if !ok {
			v.add(path, "type", -1, "expected object, got %s", typeName(rawAction))
			continue
		}
		v.checkKeys(action, path, -1, actionKeys)
		v.requireString(action, "title", path, -1, true)
		if op, ok := action["operation"]; ok {
			v.validateOperation(op, path+".operation", -1)
		} else {
			v.add(path+".operation", "required", -1, "missing required field: operation")
		}
	}
}

// checkKeys rejects fields the document format does not define, since they
// would not survive a parse/serialise round trip.
func (v *validator) checkKeys(obj map[string]any, path string, step int, allowed []string) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !contains(allowed, k) {
			v.add(joinPath(path, k), "additionalProperties", step, "unknown field %q", k)
		}
	}
}

func (v *validator) requirePresent(obj map[string]any, key, path string, step int) bool {
	if _, ok := obj[key]; !ok {
		v.add(joinPath(path, key), "required", step, "missing required field: %s", key)
		return false
	}
	return true
}

func (v *validator) requireString(obj map[string]any, key, path string, step int, nonEmpty bool) (string, bool) {
	raw, ok := obj[key]
	if !ok {
		v.add(joinPath(path, key), "required", step, "missing required field: %s", key)
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		v.add(joinPath(path, key), "type", step, "expected string, got %s", typeName(raw))
		return "", false
	}
	if nonEmpty && strings.TrimSpace(s) == "" {
		v.add(joinPath(path, key), "minLength", step, "%s must not be empty", key)
		return "", false
	}
	return s, true
}

func (v *validator) requireEnum(obj map[string]any, key, path string, step int, allowed []string) (string, bool) {
	s, ok := v.requireString(obj, key, path, step, false)
	if !ok {
		return "", false
	}
	if !contains(allowed, s) {
		v.add(joinPath(path, key), "enum", step, "%q is not one of: %s", s, strings.Join(allowed, ", "))
		return "", false
	}
	return s, true
}

func (v *validator) optionalString(obj map[string]any, key, path string, step int) {
	if raw, ok := obj[key]; ok {
		if _, ok := raw.(string); !ok {
			v.add(joinPath(path, key), "type", step, "expected string, got %s", typeName(raw))
		}
	}
}

func (v *validator) optionalEnum(obj map[string]any, key, path string, step int, allowed []string) {
	if _, ok := obj[key]; ok {
		v.requireEnum(obj, key, path, step, allowed)
	}
}

func (v *validator) optionalBool(obj map[string]any, key, path string, step int) {
	if raw, ok := obj[key]; ok {
		if _, ok := raw.(bool); !ok {
			v.add(joinPath(path, key), "type", step, "expected boolean, got %s", typeName(raw))
		}
	}
}

// MaxTimeoutMillis is the largest step timeout, in milliseconds, that fits
// in a time.Duration.
const MaxTimeoutMillis = math.MaxInt64 / int64(time.Millisecond)

func (v *validator) optionalTimeout(obj map[string]any, key, path string, step int) {
	raw, ok := obj[key]
	if !ok {
		return
	}
	n, ok := toFloat(raw)
	if !ok {
		v.add(joinPath(path, key), "type", step, "expected number, got %s", typeName(raw))
		return
	}
	switch {
	case n <= 0:
		v.add(joinPath(path, key), "minimum", step, "%s must be greater than 0", key)
	case n > float64(MaxTimeoutMillis):
		v.add(joinPath(path, key), "maximum", step, "%s must be at most %d milliseconds", key, MaxTimeoutMillis)
	}
}

func (v *validator) optionalStringMap(obj map[string]any, key, path string, step int) {
	raw, ok := obj[key]
	if !ok {
		return
	}
	m, ok := raw.(map[string]any)
	if !ok {
		v.add(joinPath(path, key), "type", step, "expected object, got %s", typeName(raw))
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := m[k].(string); !ok {
			v.add(joinPath(joinPath(path, key), k), "type", step, "expected string, got %s", typeName(m[k]))
		}
	}
}

func (v *validator) optionalStringArray(obj map[string]any, key, path string, step int) {
	raw, ok := obj[key]
	if !ok {
		return
	}
	arr, ok := raw.([]any)
	if !ok {
		v.add(joinPath(path, key), "type", step, "expected array, got %s", typeName(raw))
		return
	}
	for i, item := range arr {
		if _, ok := item.(string); !ok {
			v.add(fmt.Sprintf("%s[%d]", joinPath(path, key), i), "type", step, "expected string, got %s", typeName(item))
		}
	}
}

func joinPath(path, key string) string {
	if identifierPattern.MatchString(key) {
		return path + "." + key
	}
	return fmt.Sprintf("%s[%q]", path, key)
}

func operationTypeNames() []string {
	types := OperationTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func isNumber(v any) bool {
	_, ok := toFloat(v)
	return ok
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// typeName reports the JSON type name of a decoded value.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	if isNumber(v) {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
