// Package clipboard implements the clipboard operation.
package clipboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/tombee/cmdspec/internal/action"
)

// Clipboard is the system clipboard as seen by the operation.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// System is the platform clipboard.
type System struct{}

// ReadAll returns the clipboard text.
func (System) ReadAll() (string, error) {
	return clipboard.ReadAll()
}

// WriteAll replaces the clipboard text.
func (System) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Available reports whether a platform clipboard utility was found.
func Available() bool {
	return !clipboard.Unsupported
}

// Memory is an in-process clipboard for headless hosts and tests.
type Memory struct {
	mu   sync.Mutex
	text string
}

// ReadAll returns the stored text.
func (m *Memory) ReadAll() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

// WriteAll stores text.
func (m *Memory) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

// ClipboardAction copies to or reads from a Clipboard.
type ClipboardAction struct {
	board Clipboard
}

// New creates a clipboard action. A nil board uses the system clipboard.
func New(board Clipboard) *ClipboardAction {
	if board == nil {
		board = System{}
	}
	return &ClipboardAction{board: board}
}

// Name returns the operation type handled.
func (c *ClipboardAction) Name() string {
	return "clipboard"
}

// Execute performs action "copy" (returns nil) or "read" (returns the text,
// "" when the clipboard is empty).
func (c *ClipboardAction) Execute(ctx context.Context, inputs map[string]any) (any, error) {
	op, err := action.RequireString(inputs, "action")
	if err != nil {
		return nil, err
	}

	switch op {
	case "copy":
		text, err := action.RequireString(inputs, "text")
		if err != nil {
			return nil, err
		}
		if text == "" {
			return nil, fmt.Errorf("text must not be empty")
		}
		if err := c.board.WriteAll(text); err != nil {
			return nil, fmt.Errorf("clipboard copy failed: %w", err)
		}
		return nil, nil
	case "read":
		text, err := c.board.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("clipboard read failed: %w", err)
		}
		return text, nil
	default:
		return nil, fmt.Errorf("unknown clipboard action %q (use copy or read)", op)
	}
}
