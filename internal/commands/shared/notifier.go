// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package shared

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tombee/cmdspec/internal/action/notify"
	"github.com/tombee/cmdspec/internal/cli/format"
)

// Notifier prints toasts and HUD messages as styled lines.
type Notifier struct {
	mu  sync.Mutex
	out io.Writer
}

var _ notify.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier writing to out.
func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

// Toast prints the toast title and message with a symbol for its style.
func (n *Notifier) Toast(ctx context.Context, toast notify.Toast) error {
	var line string
	title := format.Sanitize(toast.Title)
	switch toast.Style {
	case notify.StyleFailure:
		line = RenderError(Bold.Render(title))
	case notify.StyleAnimated:
		line = StatusInfo.Render(SymbolInfo) + " " + Bold.Render(title)
	default:
		line = RenderOK(Bold.Render(title))
	}
	if toast.Message != "" {
		line += " " + Muted.Render(format.Sanitize(toast.Message))
	}
	return n.println(line)
}

// HUD prints title as a single muted line.
func (n *Notifier) HUD(ctx context.Context, title string) error {
	return n.println(Muted.Render(format.Sanitize(title)))
}

func (n *Notifier) println(line string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintln(n.out, line)
	return err
}
