package interpreter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/cmdspec/internal/action/notify"
	internallog "github.com/tombee/cmdspec/internal/log"
	"github.com/tombee/cmdspec/internal/operation"
	cmderrors "github.com/tombee/cmdspec/pkg/errors"
	"github.com/tombee/cmdspec/pkg/spec"
	"github.com/tombee/cmdspec/pkg/template"
)

const tracerName = "github.com/tombee/cmdspec/pkg/interpreter"

// Context variable names bound by the interpreter.
const (
	VarEnv        = "env"
	VarInput      = "input"
	VarSandboxDir = "sandboxDir"
	VarTempDir    = "tempDir"
	VarItem       = "item"
)

// Interpreter executes command specs. It is safe for concurrent use.
type Interpreter struct {
	table  *operation.Table
	engine *template.Engine

	// env is the read-only snapshot exposed as {{env.*}}.
	env        map[string]string
	sandboxDir string
	tempDir    string

	logger *slog.Logger
	tracer trace.Tracer
	newID  func() string
}

// New creates an interpreter. Without options it runs in the current
// directory, snapshots os.Environ once and uses the builtin handlers.
func New(opts ...Option) (*Interpreter, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.env == nil {
		o.env = environ(os.Environ())
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.tracer == nil {
		o.tracer = otel.GetTracerProvider()
	}
	if o.newID == nil {
		o.newID = uuid.NewString
	}
	if o.builtin.Engine == nil {
		o.builtin.Engine = template.New()
	}

	sandbox := o.builtin.SandboxDir
	if sandbox == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine sandbox directory: %w", err)
		}
		sandbox = wd
	}
	sandbox, err := filepath.Abs(sandbox)
	if err != nil {
		return nil, fmt.Errorf("invalid sandbox directory: %w", err)
	}

	tempDir := o.builtin.TempDir
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "cmdspec")
	}
	tempDir, err = filepath.Abs(tempDir)
	if err != nil {
		return nil, fmt.Errorf("invalid temp directory: %w", err)
	}
	if err := os.MkdirAll(tempDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	o.builtin.SandboxDir = sandbox
	o.builtin.TempDir = tempDir
	o.builtin.Env = envList(o.env)
	o.builtin.Logger = o.logger
	if o.builtin.Notifier == nil {
		o.builtin.Notifier = notify.LogNotifier{Logger: o.logger}
	}
	o.builtin.TracerProvider = o.tracer

	table := o.table
	if table == nil {
		table, err = operation.NewBuiltinTable(&o.builtin)
		if err != nil {
			return nil, err
		}
	}
	for _, typ := range o.order {
		table, err = table.With(typ, o.handlers[typ])
		if err != nil {
			return nil, fmt.Errorf("cannot override handler: %w", err)
		}
	}

	return &Interpreter{
		table:      table,
		engine:     o.builtin.Engine,
		env:        o.env,
		sandboxDir: sandbox,
		tempDir:    tempDir,
		logger:     o.logger,
		tracer:     o.tracer.Tracer(tracerName),
		newID:      o.newID,
	}, nil
}

// Engine returns the template engine used for interpolation. Renderers
// should share it so itemProps and content see the same helpers and cache.
func (i *Interpreter) Engine() *template.Engine {
	return i.engine
}

// SandboxDir returns the absolute sandbox root.
func (i *Interpreter) SandboxDir() string {
	return i.sandboxDir
}

// Run executes cs with the given form values.
//
// The spec is validated before anything runs; an unknown operation type is
// reported as an *errors.InterpreterError for that step, other findings as
// spec.ValidationErrors. A missing required input in form mode returns an
// *errors.ValidationError. When a step fails, Run returns the partial Result
// along with an *errors.InterpreterError and no later step executes.
func (i *Interpreter) Run(ctx context.Context, cs *spec.CommandSpec, formValues map[string]any) (*Result, error) {
	runID := i.newID()

	if cs != nil {
		for idx, op := range cs.Steps {
			if !op.Type.IsValid() {
				return nil, &cmderrors.InterpreterError{
					RunID:     runID,
					StepIndex: idx,
					StepType:  string(op.Type),
					Cause:     &cmderrors.UnknownOperationError{StepIndex: idx, Type: string(op.Type)},
				}
			}
		}
	}
	if err := spec.Check(cs); err != nil {
		return nil, err
	}
	cs = cs.Clone()

	input, err := resolveInputs(cs, formValues)
	if err != nil {
		return nil, err
	}

	logger := internallog.WithRunContext(i.logger, runID, cs.ID)
	ctx, span := i.tracer.Start(ctx, "cmdspec.run", trace.WithAttributes(
		attribute.String("cmdspec.run_id", runID),
		attribute.String("cmdspec.spec_id", cs.ID),
		attribute.Int("cmdspec.step_count", len(cs.Steps)),
	))
	defer span.End()

	result := &Result{
		RunID:      runID,
		SpecID:     cs.ID,
		Status:     RunStatusPending,
		UI:         cs.UI,
		Actions:    cs.Actions,
		Steps:      make([]StepRecord, 0, len(cs.Steps)),
		FailedStep: -1,
		StartedAt:  time.Now(),
	}
	vars := i.initialContext(input)

	logger.Info("run started", slog.Int("steps", len(cs.Steps)))

	boundBy := make(map[string]spec.OperationType)
	for idx, op := range cs.Steps {
		if err := ctx.Err(); err != nil {
			return i.fail(span, logger, result, vars, idx, string(op.Type), err)
		}
		result.Status = RunStatusRunning

		out, record, err := i.execStep(ctx, logger, "cmdspec.step", idx, op, vars)
		result.Steps = append(result.Steps, record)
		if err != nil {
			return i.fail(span, logger, result, vars, idx, string(op.Type), err)
		}

		if op.OutputVar != "" {
			if prev, ok := boundBy[op.OutputVar]; ok && prev != op.Type {
				logger.Warn("outputVar rebound by a different operation type",
					slog.String(internallog.OutputVarKey, op.OutputVar),
					slog.String("previous_type", string(prev)),
					slog.String(internallog.StepTypeKey, string(op.Type)),
					slog.Int(internallog.StepIndexKey, idx))
			}
			boundBy[op.OutputVar] = op.Type
			vars[op.OutputVar] = out
		}
	}

	result.Status = RunStatusSucceeded
	result.Context = vars
	result.CompletedAt = time.Now()
	runsTotal.WithLabelValues(string(RunStatusSucceeded)).Inc()
	span.SetStatus(codes.Ok, "")
	logger.Info("run completed",
		internallog.Duration(result.CompletedAt.Sub(result.StartedAt).Milliseconds()))

	return result, nil
}

// RunAction executes the action at actionIndex against a copy of the final
// context of base, with item bound as {{item}}. The action's output is
// returned; base is not modified.
func (i *Interpreter) RunAction(ctx context.Context, cs *spec.CommandSpec, actionIndex int, base *Result, item any) (any, error) {
	if err := spec.Check(cs); err != nil {
		return nil, err
	}
	if actionIndex < 0 || actionIndex >= len(cs.Actions) {
		return nil, &cmderrors.NotFoundError{Resource: "action", ID: strconv.Itoa(actionIndex)}
	}
	if base == nil || base.Context == nil {
		return nil, &cmderrors.ValidationError{
			Field:      "result",
			Message:    "actions need the result of a completed run",
			Suggestion: "run the spec before invoking one of its actions",
		}
	}

	op := cs.Actions[actionIndex].Operation
	stepType := "action:" + string(op.Type)

	vars := maps.Clone(base.Context)
	vars[VarItem] = item

	logger := internallog.WithRunContext(i.logger, base.RunID, cs.ID)
	out, _, err := i.execStep(ctx, logger, "cmdspec.action", actionIndex, op, vars)
	if err != nil {
		return nil, &cmderrors.InterpreterError{
			RunID:     base.RunID,
			StepIndex: actionIndex,
			StepType:  stepType,
			Cause:     err,
		}
	}
	return out, nil
}

// execStep interpolates and dispatches one operation. vars is not modified.
func (i *Interpreter) execStep(ctx context.Context, logger *slog.Logger, spanName string, index int, op spec.Operation, vars map[string]any) (any, StepRecord, error) {
	start := time.Now()
	ctx, span := i.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.Int("cmdspec.step.index", index),
		attribute.String("cmdspec.step.type", string(op.Type)),
	))
	defer span.End()
	logger = internallog.WithStepContext(logger, index, string(op.Type))

	var out any
	config, err := i.interpolate(index, op, vars)
	if err == nil {
		internallog.Trace(ctx, logger, "step config resolved", slog.Any("keys", slices.Sorted(maps.Keys(config))))
		out, err = i.table.Dispatch(ctx, operation.Step{
			Index:  index,
			Type:   op.Type,
			Config: config,
			Scope:  maps.Clone(vars),
		})
		err = asInterpolationError(index, err)
	}

	duration := time.Since(start)
	record := StepRecord{
		Index:      index,
		Type:       op.Type,
		OutputVar:  op.OutputVar,
		Status:     StepStatusSucceeded,
		Duration:   duration,
		DurationMS: duration.Milliseconds(),
	}

	stepDuration.WithLabelValues(string(op.Type)).Observe(duration.Seconds())
	if err != nil {
		record.Status = StepStatusFailed
		record.Error = err.Error()
		stepsTotal.WithLabelValues(string(op.Type), string(StepStatusFailed)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("step failed",
			internallog.Duration(record.DurationMS),
			slog.String(internallog.ErrorTypeKey, cmderrors.Classify(err)),
			internallog.Error(err))
		return nil, record, err
	}

	stepsTotal.WithLabelValues(string(op.Type), string(StepStatusSucceeded)).Inc()
	logger.Debug("step completed", internallog.Duration(record.DurationMS))
	return out, record, nil
}

func (i *Interpreter) fail(span trace.Span, logger *slog.Logger, result *Result, vars map[string]any, index int, stepType string, cause error) (*Result, error) {
	err := &cmderrors.InterpreterError{
		RunID:     result.RunID,
		StepIndex: index,
		StepType:  stepType,
		Cause:     cause,
	}

	result.Status = RunStatusFailed
	result.FailedStep = index
	result.Error = err.Error()
	result.Context = vars
	result.CompletedAt = time.Now()

	runsTotal.WithLabelValues(string(RunStatusFailed)).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logger.Error("run failed",
		slog.Int(internallog.StepIndexKey, index),
		slog.String(internallog.StepTypeKey, stepType),
		internallog.Duration(result.CompletedAt.Sub(result.StartedAt).Milliseconds()),
		internallog.Error(cause))

	return result, err
}

// interpolate resolves every config value of op against vars, except the
// keys the handler renders itself.
func (i *Interpreter) interpolate(index int, op spec.Operation, vars map[string]any) (map[string]any, error) {
	raw := operation.RawConfigKeys(op.Type)
	config := make(map[string]any, len(op.Config))
	for key, value := range op.Config {
		if slices.Contains(raw, key) {
			config[key] = value
			continue
		}
		resolved, err := i.engine.Resolve(value, vars)
		if err != nil {
			return nil, &cmderrors.InterpolationError{
				StepIndex: index,
				Template:  failingTemplate(err, value),
				Cause:     fmt.Errorf("in field %q: %w", key, err),
			}
		}
		config[key] = resolved
	}
	return config, nil
}

// initialContext builds a fresh context for one run.
func (i *Interpreter) initialContext(input map[string]any) map[string]any {
	env := make(map[string]any, len(i.env))
	for k, v := range i.env {
		env[k] = v
	}
	return map[string]any{
		VarEnv:        env,
		VarInput:      input,
		VarSandboxDir: i.sandboxDir,
		VarTempDir:    i.tempDir,
	}
}

// asInterpolationError reports template failures raised inside a handler,
// such as transform rendering its template, the same way as config
// interpolation failures.
func asInterpolationError(index int, err error) error {
	if err == nil {
		return nil
	}
	var interpErr *cmderrors.InterpolationError
	if errors.As(err, &interpErr) {
		return err
	}
	var tplErr *template.Error
	if errors.As(err, &tplErr) {
		return &cmderrors.InterpolationError{StepIndex: index, Template: tplErr.Template, Cause: err}
	}
	return err
}

func failingTemplate(err error, value any) string {
	var tplErr *template.Error
	if errors.As(err, &tplErr) && tplErr.Template != "" {
		return tplErr.Template
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// resolveInputs applies declared defaults to the form values. Only form mode
// enforces required fields; optional fields left empty are bound to their
// zero value so templates can reference them.
func resolveInputs(cs *spec.CommandSpec, values map[string]any) (map[string]any, error) {
	input := make(map[string]any, len(values)+len(cs.Inputs))
	for k, v := range values {
		input[k] = v
	}
	if cs.Mode != spec.ModeForm {
		return input, nil
	}

	for _, field := range cs.Inputs {
		if !isMissing(input[field.ID]) {
			continue
		}
		switch {
		case field.Default != nil:
			input[field.ID] = field.Default
		case field.Required:
			label := field.Label
			if label == "" {
				label = field.ID
			}
			return nil, &cmderrors.ValidationError{
				Field:      "input." + field.ID,
				Message:    fmt.Sprintf("required input %q is missing", label),
				Suggestion: fmt.Sprintf("provide a value for %s", field.ID),
			}
		case field.Type == spec.InputCheckbox:
			input[field.ID] = false
		default:
			input[field.ID] = ""
		}
	}
	return input, nil
}

func isMissing(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}

// environ parses KEY=VALUE pairs. Later duplicates win.
func environ(pairs []string) map[string]string {
	env := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return env
}

func envList(env map[string]string) []string {
	list := make([]string, 0, len(env))
	for k, v := range env {
		list = append(list, k+"="+v)
	}
	sort.Strings(list)
	return list
}
