package contact

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"runtime"
	"strings"
)

// SystemOpener uses the platform URL handler (open, xdg-open, cmd start).
type SystemOpener struct{}

func (SystemOpener) Open(ctx context.Context, target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return errors.New("empty url")
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", target)
	case "windows":
		cmd = exec.CommandContext(ctx, "cmd", "/c", "start", "", target)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", target)
	}
	// Keep handler output off the terminal.
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return err
	}
	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// FuncOpener adapts a function to Opener.
type FuncOpener func(ctx context.Context, target string) error

func (f FuncOpener) Open(ctx context.Context, target string) error { return f(ctx, target) }
