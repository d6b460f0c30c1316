package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/polidog/deco-slack/internal/deco"
)

// maxOutput caps how much command output is kept for attachments
const maxOutput = 3000

// Result describes a finished command
type Result struct {
	Output   string
	Duration time.Duration
}

// CommandError is returned when a command could not start or exited non-zero
type CommandError struct {
	Name     string
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// command runs args[0] with the remaining args, streaming its output
func (a *App) command(ctx context.Context) deco.Func[Result] {
	return func(args ...any) (Result, error) {
		name := fmt.Sprint(args[0])
		cmdArgs := make([]string, 0, len(args)-1)
		for _, arg := range args[1:] {
			cmdArgs = append(cmdArgs, fmt.Sprint(arg))
		}

		tail := newTailBuffer(maxOutput)
		cmd := exec.CommandContext(ctx, name, cmdArgs...)
		cmd.Stdin = a.stdin
		cmd.Stdout = io.MultiWriter(a.stdout, tail)
		cmd.Stderr = io.MultiWriter(a.stderr, tail)

		started := time.Now()
		err := cmd.Run()
		res := Result{Output: tail.String(), Duration: time.Since(started)}
		if err != nil {
			return res, &CommandError{
				Name:     name,
				ExitCode: exitCode(err),
				Output:   res.Output,
				Err:      err,
			}
		}
		return res, nil
	}
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	// not found, not executable, or killed by a signal
	return 127
}

func withOutputText(t *deco.Template) *deco.Template {
	if t == nil {
		return nil
	}
	c := *t
	base := t.Text
	c.TextFormatter = func(v any) string {
		res, ok := v.(Result)
		if !ok {
			return base
		}
		return joinLines(base, fmt.Sprintf("finished in %s", res.Duration.Round(time.Millisecond)), codeBlock(res.Output))
	}
	return &c
}

func withFailureText(t *deco.Template) *deco.Template {
	if t == nil {
		return nil
	}
	c := *t
	base := t.Text
	c.TextFormatter = func(v any) string {
		var cmdErr *CommandError
		if err, ok := v.(error); ok && errors.As(err, &cmdErr) {
			return joinLines(base, cmdErr.Error(), codeBlock(cmdErr.Output))
		}
		return joinLines(base, fmt.Sprint(v))
	}
	return &c
}

func codeBlock(s string) string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return ""
	}
	return "```" + s + "```"
}

func joinLines(parts ...string) string {
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			lines = append(lines, p)
		}
	}
	return strings.Join(lines, "\n")
}

// tailBuffer keeps the last limit bytes written to it
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
