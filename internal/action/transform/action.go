// Package transform implements the transform operation: an optional jq
// query over data followed by a template render. It performs no I/O.
//
// The template key reaches this package uninterpolated so that it can refer
// to the keys of data as well as the execution context.
package transform

import (
	"context"
	"time"

	"github.com/tombee/cmdspec/internal/action"
	"github.com/tombee/cmdspec/internal/jq"
	"github.com/tombee/cmdspec/pkg/template"
)

// TransformAction renders templates over (optionally queried) data.
type TransformAction struct {
	config *Config
	engine *template.Engine
	jq     *jq.Executor
}

// Config holds configuration for the transform action.
type Config struct {
	// Engine renders templates. Share the interpreter's engine so parsed
	// templates are cached once.
	Engine *template.Engine

	// MaxInputSize is the maximum query input size in bytes (default: 10MB)
	MaxInputSize int64

	// ExpressionTimeout bounds jq evaluation (default: 1s)
	ExpressionTimeout time.Duration
}

// DefaultConfig returns sensible defaults for transform action configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxInputSize:      10 * 1024 * 1024, // 10MB
		ExpressionTimeout: jq.DefaultTimeout,
	}
}

// New creates a new transform action instance.
func New(config *Config) (*TransformAction, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxInputSize == 0 {
		config.MaxInputSize = 10 * 1024 * 1024
	}
	if config.ExpressionTimeout == 0 {
		config.ExpressionTimeout = jq.DefaultTimeout
	}
	engine := config.Engine
	if engine == nil {
		engine = template.New()
	}

	return &TransformAction{
		config: config,
		engine: engine,
		jq:     jq.NewExecutor(config.ExpressionTimeout, config.MaxInputSize),
	}, nil
}

// Name returns the operation type handled.
func (c *TransformAction) Name() string {
	return "transform"
}

// Execute applies query to data, then renders template. Inside the template
// the result is bound as data and, when it is an object, each of its keys
// is bound at the top level too. scope supplies the remaining names.
func (c *TransformAction) Execute(ctx context.Context, inputs map[string]any, scope map[string]any) (any, error) {
	src, err := action.RequireString(inputs, "template")
	if err != nil {
		return nil, &OperationError{Message: err.Error(), ErrorType: ErrorTypeValidation}
	}
	data, present := inputs["data"]
	if !present {
		return nil, &OperationError{Message: "data is required", ErrorType: ErrorTypeValidation}
	}

	if query, ok := action.String(inputs, "query"); ok && query != "" {
		data, err = c.jq.Execute(ctx, query, data)
		if err != nil {
			return nil, &OperationError{Message: "query failed", ErrorType: ErrorTypeExpressionError, Cause: err}
		}
	}

	out, err := c.engine.Render(src, bindings(scope, data))
	if err != nil {
		return nil, &OperationError{Message: "template failed", ErrorType: ErrorTypeTemplateError, Cause: err}
	}
	return out, nil
}

// bindings layers data over scope without modifying either.
func bindings(scope map[string]any, data any) map[string]any {
	obj, isObject := data.(map[string]any)

	b := make(map[string]any, len(scope)+len(obj)+1)
	for k, v := range scope {
		b[k] = v
	}
	if isObject {
		for k, v := range obj {
			b[k] = v
		}
	}
	b["data"] = data
	return b
}
