package operation

import (
	"context"

	"github.com/tombee/cmdspec/pkg/spec"
)

// Step is a single operation ready for dispatch.
type Step struct {
	// Index is the step's position in the spec, or the action index when
	// running a follow-up action.
	Index int

	// Type is the declared operation type.
	Type spec.OperationType

	// Config is the step config after interpolation.
	Config map[string]any

	// Scope is a read-only view of the execution context at dispatch time.
	Scope map[string]any
}

// Handler executes one operation type.
type Handler interface {
	Execute(ctx context.Context, step Step) (any, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, step Step) (any, error)

// Execute calls f.
func (f HandlerFunc) Execute(ctx context.Context, step Step) (any, error) {
	return f(ctx, step)
}

// ConfigFunc is the shape of most action entry points.
type ConfigFunc func(ctx context.Context, config map[string]any) (any, error)

// FromConfigFunc adapts an action entry point that only needs the config.
func FromConfigFunc(fn ConfigFunc) Handler {
	return HandlerFunc(func(ctx context.Context, step Step) (any, error) {
		return fn(ctx, step.Config)
	})
}

// rawConfigKeys lists config keys that are handed to the handler without
// interpolation because the handler renders them itself.
var rawConfigKeys = map[spec.OperationType][]string{
	spec.OpTransform: {"template"},
}

// RawConfigKeys returns the config keys of typ that must not be interpolated
// before dispatch.
func RawConfigKeys(typ spec.OperationType) []string {
	return rawConfigKeys[typ]
}
