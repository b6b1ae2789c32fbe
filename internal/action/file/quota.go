package file

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
)

// QuotaConfig sets the write budget given to every sandbox root.
type QuotaConfig struct {
	// DefaultQuota is the byte budget per root. Zero disables quotas.
	DefaultQuota int64

	// WarnThreshold is the used fraction that logs a warning (default 0.8).
	WarnThreshold float64

	// ErrorThreshold is the used fraction at which writes are refused
	// (default 0.95).
	ErrorThreshold float64

	Logger *slog.Logger
}

// DefaultQuotaConfig returns a 100 MiB budget per root.
func DefaultQuotaConfig() *QuotaConfig {
	return &QuotaConfig{
		DefaultQuota:   100 * 1024 * 1024,
		WarnThreshold:  0.8,
		ErrorThreshold: 0.95,
	}
}

// QuotaUsage is a snapshot of one root's budget.
type QuotaUsage struct {
	Root    string
	Written int64
	Limit   int64
}

// Fraction returns Written/Limit, or 0 for an unlimited root.
func (u QuotaUsage) Fraction() float64 {
	if u.Limit <= 0 {
		return 0
	}
	return float64(u.Written) / float64(u.Limit)
}

type rootBudget struct {
	written int64
	limit   int64
	warned  bool
}

// QuotaTracker counts bytes written by fileWrite under each sandbox root
// (the sandbox dir and the allowed roots such as the temp dir) for the life
// of the process. A write is charged to the innermost root containing it.
type QuotaTracker struct {
	mu       sync.Mutex
	roots    map[string]*rootBudget
	warnAt   float64
	refuseAt float64
	logger   *slog.Logger
}

// NewQuotaTracker creates a tracker giving each of roots config.DefaultQuota.
func NewQuotaTracker(config *QuotaConfig, roots ...string) *QuotaTracker {
	if config == nil {
		config = DefaultQuotaConfig()
	}
	q := &QuotaTracker{
		roots:    make(map[string]*rootBudget, len(roots)),
		warnAt:   config.WarnThreshold,
		refuseAt: config.ErrorThreshold,
		logger:   config.Logger,
	}
	if q.warnAt == 0 {
		q.warnAt = 0.8
	}
	if q.refuseAt == 0 {
		q.refuseAt = 0.95
	}
	for _, root := range roots {
		q.SetQuota(root, config.DefaultQuota)
	}
	return q
}

// SetQuota replaces the budget of root, keeping bytes already written.
func (q *QuotaTracker) SetQuota(root string, limit int64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	root = filepath.Clean(root)
	if b, ok := q.roots[root]; ok {
		b.limit = limit
		return
	}
	q.roots[root] = &rootBudget{limit: limit}
}

// TrackWrite charges n bytes written to path. It returns a disk_full
// OperationError, and charges nothing, when the write would reach the
// refuse threshold. Paths outside every root are not tracked.
func (q *QuotaTracker) TrackWrite(path string, n int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	root, b := q.budgetFor(path)
	if b == nil || b.limit <= 0 {
		return nil
	}

	after := b.written + n
	used := float64(after) / float64(b.limit)
	if used >= q.refuseAt {
		return &OperationError{
			Operation: "fileWrite",
			Path:      path,
			Message: fmt.Sprintf("write quota exceeded for %s: %d of %d bytes (limit %.0f%%)",
				root, after, b.limit, q.refuseAt*100),
			ErrorType: ErrorTypeDiskFull,
		}
	}

	b.written = after
	if used >= q.warnAt && !b.warned {
		b.warned = true
		if q.logger != nil {
			q.logger.Warn("write quota nearly used",
				slog.String("root", root),
				slog.Int64("written_bytes", after),
				slog.Int64("quota_bytes", b.limit),
			)
		}
	}
	return nil
}

// Usage reports the budget of root.
func (q *QuotaTracker) Usage(root string) QuotaUsage {
	q.mu.Lock()
	defer q.mu.Unlock()

	root = filepath.Clean(root)
	u := QuotaUsage{Root: root}
	if b, ok := q.roots[root]; ok {
		u.Written, u.Limit = b.written, b.limit
	}
	return u
}

func (q *QuotaTracker) budgetFor(path string) (string, *rootBudget) {
	path = filepath.Clean(path)

	var best string
	var budget *rootBudget
	for root, b := range q.roots {
		if isWithin(root, path) && len(root) > len(best) {
			best, budget = root, b
		}
	}
	return best, budget
}
