package operation

import (
	"context"
	"fmt"

	cmderrors "github.com/tombee/cmdspec/pkg/errors"
	"github.com/tombee/cmdspec/pkg/spec"
)

// Table is an immutable mapping from operation type to handler.
type Table struct {
	handlers map[spec.OperationType]Handler
}

// NewTable creates a table from handlers. Types outside the closed set are
// rejected.
func NewTable(handlers map[spec.OperationType]Handler) (*Table, error) {
	t := &Table{handlers: make(map[spec.OperationType]Handler, len(handlers))}
	for typ, h := range handlers {
		if !typ.IsValid() {
			return nil, &cmderrors.UnknownOperationError{StepIndex: -1, Type: string(typ)}
		}
		if h == nil {
			return nil, fmt.Errorf("nil handler for operation type %q", typ)
		}
		t.handlers[typ] = h
	}
	return t, nil
}

// With returns a copy of t with typ handled by h.
func (t *Table) With(typ spec.OperationType, h Handler) (*Table, error) {
	handlers := make(map[spec.OperationType]Handler, len(t.handlers)+1)
	for k, v := range t.handlers {
		handlers[k] = v
	}
	handlers[typ] = h
	return NewTable(handlers)
}

// Lookup returns the handler for typ.
func (t *Table) Lookup(typ spec.OperationType) (Handler, bool) {
	h, ok := t.handlers[typ]
	return h, ok
}

// Types returns the types with a handler, in declaration order.
func (t *Table) Types() []spec.OperationType {
	var types []spec.OperationType
	for _, typ := range spec.OperationTypes() {
		if _, ok := t.handlers[typ]; ok {
			types = append(types, typ)
		}
	}
	return types
}

// Dispatch runs step with the handler for its type. Unknown types fail with
// errors.UnknownOperationError and no handler is invoked.
func (t *Table) Dispatch(ctx context.Context, step Step) (any, error) {
	h, ok := t.handlers[step.Type]
	if !ok {
		return nil, &cmderrors.UnknownOperationError{StepIndex: step.Index, Type: string(step.Type)}
	}
	return h.Execute(ctx, step)
}
