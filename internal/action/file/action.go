// Package file implements the fileRead and fileWrite operations. Every path
// goes through a PathResolver that confines it to the sandbox root before
// any I/O happens.
package file

import (
	"context"
	"errors"
	"time"

	cmderrors "github.com/tombee/cmdspec/pkg/errors"
)

// FileAction performs sandboxed reads and writes.
type FileAction struct {
	config       *Config
	resolver     *PathResolver
	auditLogger  AuditLogger
	quotaTracker *QuotaTracker
}

// Config holds configuration for the file action.
type Config struct {
	// Root is the sandbox directory. Required.
	Root string

	// AllowedRoots are further directories paths may resolve into
	AllowedRoots []string

	// MaxFileSize is the maximum file size in bytes (default: 100MB)
	MaxFileSize int64

	// AuditLogger is an optional logger for file operations (nil = no logging)
	AuditLogger AuditLogger

	// QuotaConfig is optional quota configuration (nil = no quotas)
	QuotaConfig *QuotaConfig
}

// DefaultConfig returns sensible defaults for file action configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxFileSize: 100 * 1024 * 1024, // 100MB
	}
}

// New creates a new file action instance.
func New(config *Config) (*FileAction, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxFileSize == 0 {
		config.MaxFileSize = 100 * 1024 * 1024 // 100MB
	}

	resolver, err := NewPathResolver(&PathResolverConfig{
		Root:         config.Root,
		AllowedRoots: config.AllowedRoots,
	})
	if err != nil {
		return nil, err
	}

	auditLogger := config.AuditLogger
	if auditLogger == nil {
		auditLogger = &NoopAuditLogger{}
	}

	var quotaTracker *QuotaTracker
	if config.QuotaConfig != nil && config.QuotaConfig.DefaultQuota > 0 {
		roots := append([]string{resolver.Root()}, resolver.allowedRoots...)
		quotaTracker = NewQuotaTracker(config.QuotaConfig, roots...)
	}

	return &FileAction{
		config:       config,
		resolver:     resolver,
		auditLogger:  auditLogger,
		quotaTracker: quotaTracker,
	}, nil
}

// Resolver returns the sandbox path resolver, shared with the shell
// operation for cwd checks.
func (c *FileAction) Resolver() *PathResolver {
	return c.resolver
}

// outcome carries what an operation did for audit and metrics.
type outcome struct {
	path         string
	bytesRead    int64
	bytesWritten int64
}

// operationWrapper times fn and records audit and metrics for it.
func (c *FileAction) operationWrapper(ctx context.Context, operation, path string, fn func(*outcome) (any, error)) (any, error) {
	start := time.Now()
	out := &outcome{path: path}

	result, err := fn(out)
	duration := time.Since(start)

	entry := AuditEntry{
		Timestamp:    start,
		Operation:    operation,
		Path:         out.path,
		Result:       "success",
		Duration:     duration,
		BytesRead:    out.bytesRead,
		BytesWritten: out.bytesWritten,
	}
	status := "success"
	var errType ErrorType
	if err != nil {
		status = "error"
		errType = classify(err)
		entry.Result = "error"
		entry.Error = err.Error()
	}

	c.auditLogger.Log(ctx, entry)
	recordMetrics(operation, duration.Seconds(), status, out.bytesRead, out.bytesWritten, errType)
	return result, err
}

func classify(err error) ErrorType {
	var escape *cmderrors.PathEscapeError
	if errors.As(err, &escape) {
		return ErrorTypePathEscape
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.ErrorType
	}
	return ErrorTypeInternal
}
