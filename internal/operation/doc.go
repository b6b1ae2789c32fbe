// Package operation maps operation types to the handlers that execute them.
//
// The set of types is closed: a Table only ever holds handlers for the types
// declared in pkg/spec, and dispatching anything else fails with
// errors.UnknownOperationError before a handler runs. Handlers live in
// internal/action and do not import this package; builtin.go adapts them.
package operation
