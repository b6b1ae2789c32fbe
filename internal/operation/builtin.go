package operation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/cmdspec/internal/action/clipboard"
	"github.com/tombee/cmdspec/internal/action/file"
	"github.com/tombee/cmdspec/internal/action/http"
	"github.com/tombee/cmdspec/internal/action/notify"
	"github.com/tombee/cmdspec/internal/action/open"
	"github.com/tombee/cmdspec/internal/action/shell"
	"github.com/tombee/cmdspec/internal/action/transform"
	"github.com/tombee/cmdspec/pkg/spec"
	"github.com/tombee/cmdspec/pkg/template"
)

// BuiltinConfig holds configuration for the builtin handlers.
type BuiltinConfig struct {
	// SandboxDir is the root every file path and shell cwd must stay under.
	SandboxDir string

	// TempDir is an additional writable root (default: none).
	TempDir string

	// Env is the environment handed to spawned processes (default: os.Environ()).
	Env []string

	// HTTPTimeout is the httpRequest default timeout (default 30s)
	HTTPTimeout time.Duration

	// ShellTimeout is the shell default timeout (default 5s)
	ShellTimeout time.Duration

	// BlockPrivateIPs refuses http requests to private and local addresses.
	BlockPrivateIPs bool

	// MaxResponseSize caps http response bodies (default 10MB)
	MaxResponseSize int64

	// UserAgent is the default http User-Agent.
	UserAgent string

	// MaxFileSize caps fileRead and fileWrite (default 100MB)
	MaxFileSize int64

	// WriteQuota bounds the bytes written per root for the process lifetime.
	// Zero disables the quota.
	WriteQuota int64

	// Engine renders transform templates.
	Engine *template.Engine

	// Clipboard, Opener and Notifier are the host collaborators. Nil values
	// select the system clipboard, the platform launcher and slog.
	Clipboard clipboard.Clipboard
	Opener    open.Opener
	Notifier  notify.Notifier

	// Logger receives file audit records (default: slog.Default()).
	Logger *slog.Logger

	// TracerProvider supplies http client spans (default: global).
	TracerProvider trace.TracerProvider
}

// NewBuiltinTable creates the table of builtin handlers, one per operation
// type.
func NewBuiltinTable(config *BuiltinConfig) (*Table, error) {
	if config == nil {
		config = &BuiltinConfig{}
	}
	sandbox := config.SandboxDir
	if sandbox == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine sandbox directory: %w", err)
		}
		sandbox = wd
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fileConfig := &file.Config{
		Root:        sandbox,
		MaxFileSize: config.MaxFileSize,
		AuditLogger: file.NewSlogAuditLogger(logger),
	}
	if config.TempDir != "" {
		fileConfig.AllowedRoots = []string{config.TempDir}
	}
	if config.WriteQuota > 0 {
		quota := file.DefaultQuotaConfig()
		quota.DefaultQuota = config.WriteQuota
		quota.Logger = logger
		fileConfig.QuotaConfig = quota
	}
	fa, err := file.New(fileConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create file action: %w", err)
	}

	sa, err := shell.New(&shell.Config{
		WorkingDir: fa.Resolver().Root(),
		Timeout:    config.ShellTimeout,
		Resolver:   fa.Resolver(),
		Env:        config.Env,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shell action: %w", err)
	}

	ha, err := http.New(&http.Config{
		Timeout:         config.HTTPTimeout,
		BlockPrivateIPs: config.BlockPrivateIPs,
		MaxResponseSize: config.MaxResponseSize,
		UserAgent:       config.UserAgent,
		TracerProvider:  config.TracerProvider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create http action: %w", err)
	}

	ta, err := transform.New(&transform.Config{Engine: config.Engine})
	if err != nil {
		return nil, fmt.Errorf("failed to create transform action: %w", err)
	}

	na := notify.New(config.Notifier)

	return NewTable(map[spec.OperationType]Handler{
		spec.OpHTTPRequest: FromConfigFunc(ha.Execute),
		spec.OpShell:       FromConfigFunc(sa.Execute),
		spec.OpTransform: HandlerFunc(func(ctx context.Context, step Step) (any, error) {
			return ta.Execute(ctx, step.Config, step.Scope)
		}),
		spec.OpFileRead:  FromConfigFunc(fa.Read),
		spec.OpFileWrite: FromConfigFunc(fa.Write),
		spec.OpClipboard: FromConfigFunc(clipboard.New(config.Clipboard).Execute),
		spec.OpOpen:      FromConfigFunc(open.New(config.Opener).Execute),
		spec.OpShowToast: FromConfigFunc(na.ShowToast),
		spec.OpShowHUD:   FromConfigFunc(na.ShowHUD),
	})
}
