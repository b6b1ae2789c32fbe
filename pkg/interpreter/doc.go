// Package interpreter runs validated command specs.
//
// A run builds an execution context seeded with the environment snapshot, the
// form inputs and the sandbox paths, then executes the spec's steps strictly
// in order. Each step's config is interpolated against the current context,
// dispatched to the builtin handler for its type, and its output is bound to
// the step's outputVar. The first failing step aborts the run with an
// *errors.InterpreterError naming the step.
//
// An Interpreter holds only immutable state once constructed and is safe for
// concurrent use; every run gets its own context.
//
//	interp, err := interpreter.New(interpreter.WithSandboxDir(dir))
//	if err != nil {
//		return err
//	}
//	result, err := interp.Run(ctx, cs, map[string]any{"query": "go"})
package interpreter
