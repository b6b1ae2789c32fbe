// Package notify implements the showToast and showHUD operations. Delivery
// is up to the host through the Notifier interface.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tombee/cmdspec/internal/action"
)

// Style is the visual style of a toast.
type Style string

const (
	StyleSuccess  Style = "success"
	StyleFailure  Style = "failure"
	StyleAnimated Style = "animated"
)

// Toast is a transient notification with an optional message.
type Toast struct {
	Title   string
	Message string
	Style   Style
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Toast(ctx context.Context, toast Toast) error
	HUD(ctx context.Context, title string) error
}

// LogNotifier writes notifications to a logger. It is the fallback when a
// host provides no notifier.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) logger() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.Default()
}

// Toast logs the toast at info level.
func (n LogNotifier) Toast(ctx context.Context, toast Toast) error {
	n.logger().InfoContext(ctx, "toast", "title", toast.Title, "message", toast.Message, "style", string(toast.Style))
	return nil
}

// HUD logs the HUD title at info level.
func (n LogNotifier) HUD(ctx context.Context, title string) error {
	n.logger().InfoContext(ctx, "hud", "title", title)
	return nil
}

// NotifyAction validates notification config and forwards it to a Notifier.
type NotifyAction struct {
	notifier Notifier
}

// New creates a notify action. A nil notifier logs via slog.
func New(notifier Notifier) *NotifyAction {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &NotifyAction{notifier: notifier}
}

// ShowToast implements showToast. It returns nil.
func (c *NotifyAction) ShowToast(ctx context.Context, inputs map[string]any) (any, error) {
	title, err := action.RequireString(inputs, "title")
	if err != nil {
		return nil, err
	}

	toast := Toast{Title: title, Style: StyleSuccess}
	if v, present := inputs["message"]; present && v != nil {
		msg, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("message must be a string, got %T", v)
		}
		toast.Message = msg
	}
	if v, present := inputs["style"]; present && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("style must be a string, got %T", v)
		}
		switch Style(s) {
		case StyleSuccess, StyleFailure, StyleAnimated:
			toast.Style = Style(s)
		default:
			return nil, fmt.Errorf("unknown toast style %q", s)
		}
	}

	return nil, c.notifier.Toast(ctx, toast)
}

// ShowHUD implements showHUD. It returns nil.
func (c *NotifyAction) ShowHUD(ctx context.Context, inputs map[string]any) (any, error) {
	title, err := action.RequireString(inputs, "title")
	if err != nil {
		return nil, err
	}
	return nil, c.notifier.HUD(ctx, title)
}
