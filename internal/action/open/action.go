// Package open implements the open operation: hand a URL or path to the
// platform's default handler.
package open

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/tombee/cmdspec/internal/action"
	cmderrors "github.com/tombee/cmdspec/pkg/errors"
)

// Opener opens a target with whatever the host considers the default handler.
type Opener interface {
	Open(ctx context.Context, target string) error
}

// SystemOpener spawns the platform launcher with an argument vector.
type SystemOpener struct {
	// GOOS selects the launcher (default: runtime.GOOS).
	GOOS string

	// Timeout bounds the launcher process (default: 5s).
	Timeout time.Duration
}

// Command returns the launcher argv for target.
func (o SystemOpener) Command(target string) []string {
	goos := o.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	switch goos {
	case "darwin":
		return []string{"open", target}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler", target}
	default:
		return []string{"xdg-open", target}
	}
}

// Open runs the launcher and waits for it to exit. Targets starting with
// '-' are refused so the launcher cannot read them as flags.
func (o SystemOpener) Open(ctx context.Context, target string) error {
	if strings.HasPrefix(target, "-") {
		return fmt.Errorf("target %q must not start with '-'", target)
	}

	timeout := o.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	argv := o.Command(target)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return &cmderrors.TimeoutError{Operation: "process " + argv[0], Duration: timeout, Cause: err}
	}
	if err != nil {
		code := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		return &cmderrors.ProcessError{Program: argv[0], ExitCode: code, Stderr: string(out), Cause: err}
	}
	return nil
}

// OpenAction passes targets to an Opener. Any non-empty string is accepted;
// the Opener decides what it can handle.
type OpenAction struct {
	opener Opener
}

// New creates an open action. A nil opener uses SystemOpener.
func New(opener Opener) *OpenAction {
	if opener == nil {
		opener = SystemOpener{}
	}
	return &OpenAction{opener: opener}
}

// Name returns the operation type handled.
func (c *OpenAction) Name() string {
	return "open"
}

// Execute opens inputs["target"] and returns nil.
func (c *OpenAction) Execute(ctx context.Context, inputs map[string]any) (any, error) {
	target, err := action.RequireString(inputs, "target")
	if err != nil {
		return nil, err
	}
	if err := validateTarget(target); err != nil {
		return nil, err
	}
	if err := c.opener.Open(ctx, target); err != nil {
		return nil, err
	}
	return nil, nil
}

func validateTarget(target string) error {
	if strings.TrimSpace(target) == "" {
		return fmt.Errorf("target must not be empty")
	}
	return nil
}
