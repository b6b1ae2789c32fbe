package interpreter

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/cmdspec/internal/action/clipboard"
	"github.com/tombee/cmdspec/internal/action/notify"
	"github.com/tombee/cmdspec/internal/action/open"
	"github.com/tombee/cmdspec/internal/operation"
	"github.com/tombee/cmdspec/pkg/spec"
	"github.com/tombee/cmdspec/pkg/template"
)

// Option configures an Interpreter.
type Option func(*options)

type options struct {
	env      map[string]string
	builtin  operation.BuiltinConfig
	table    *operation.Table
	handlers map[spec.OperationType]operation.Handler
	order    []spec.OperationType
	logger   *slog.Logger
	tracer   trace.TracerProvider
	newID    func() string
}

// WithEnv sets the environment snapshot exposed as {{env.*}} and handed to
// spawned processes. The map is copied.
func WithEnv(env map[string]string) Option {
	return func(o *options) {
		o.env = make(map[string]string, len(env))
		for k, v := range env {
			o.env[k] = v
		}
	}
}

// WithSandboxDir sets the root that file paths and shell working
// directories must stay under.
func WithSandboxDir(dir string) Option {
	return func(o *options) {
		o.builtin.SandboxDir = dir
	}
}

// WithTempDir sets the scratch directory exposed as {{tempDir}}.
func WithTempDir(dir string) Option {
	return func(o *options) {
		o.builtin.TempDir = dir
	}
}

// WithHandler replaces the handler for one builtin operation type.
// Types outside the builtin set make New fail.
func WithHandler(typ spec.OperationType, h operation.Handler) Option {
	return func(o *options) {
		if o.handlers == nil {
			o.handlers = make(map[spec.OperationType]operation.Handler)
		}
		if _, seen := o.handlers[typ]; !seen {
			o.order = append(o.order, typ)
		}
		o.handlers[typ] = h
	}
}

// WithTable replaces the whole handler table.
func WithTable(t *operation.Table) Option {
	return func(o *options) {
		o.table = t
	}
}

// WithEngine sets the template engine shared by interpolation and transform.
func WithEngine(e *template.Engine) Option {
	return func(o *options) {
		o.builtin.Engine = e
	}
}

// WithLogger sets the logger for run and step records.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracerProvider sets the provider for run, step and http spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracer = tp
	}
}

// WithIDGenerator sets the function that assigns run IDs.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		o.newID = fn
	}
}

// WithHTTPTimeout sets the default httpRequest timeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(o *options) {
		o.builtin.HTTPTimeout = d
	}
}

// WithShellTimeout sets the default shell timeout.
func WithShellTimeout(d time.Duration) Option {
	return func(o *options) {
		o.builtin.ShellTimeout = d
	}
}

// WithBlockPrivateIPs refuses http requests to private and local addresses.
func WithBlockPrivateIPs(block bool) Option {
	return func(o *options) {
		o.builtin.BlockPrivateIPs = block
	}
}

// WithUserAgent sets the default http User-Agent.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.builtin.UserAgent = ua
	}
}

// WithMaxResponseSize caps http response bodies.
func WithMaxResponseSize(n int64) Option {
	return func(o *options) {
		o.builtin.MaxResponseSize = n
	}
}

// WithWriteQuota bounds the bytes fileWrite may write per root.
func WithWriteQuota(n int64) Option {
	return func(o *options) {
		o.builtin.WriteQuota = n
	}
}

// WithNotifier sets the host collaborator for showToast and showHUD.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) {
		o.builtin.Notifier = n
	}
}

// WithClipboard sets the clipboard used by the clipboard operation.
func WithClipboard(c clipboard.Clipboard) Option {
	return func(o *options) {
		o.builtin.Clipboard = c
	}
}

// WithOpener sets the launcher used by the open operation.
func WithOpener(op open.Opener) Option {
	return func(o *options) {
		o.builtin.Opener = op
	}
}
