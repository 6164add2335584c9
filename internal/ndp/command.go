package ndp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/metal-stack/netstatus/internal/failure"
)

const DefaultTimeout = 5 * time.Second

// waitDelay bounds how long Wait keeps reading stdout after the command was
// killed, descendants may still hold the pipe open.
const waitDelay = 500 * time.Millisecond

// CommandSource runs the neighbor table command and parses its output.
type CommandSource struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// Neighbors runs the command once. Startup problems are reported as
// failure.ErrSourceUnavailable, a non-zero exit, a timeout or non utf-8 output
// as failure.ErrCommandFailure.
func (c CommandSource) Neighbors(ctx context.Context) (Entries, error) {
	out, err := c.output(ctx)
	if err != nil {
		return nil, err
	}
	return Parse(out)
}

func (c CommandSource) output(ctx context.Context) (string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	killProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("unable to start %q: %w: %w", c.Name, failure.ErrSourceUnavailable, err)
	}

	err := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("%q did not finish within %s: %w: %w", c.Name, timeout, failure.ErrCommandFailure, ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%q exited with code %d: %s: %w", c.Name, exitErr.ExitCode(), strings.TrimSpace(stderr.String()), failure.ErrCommandFailure)
		}
		return "", fmt.Errorf("unable to run %q: %w: %w", c.Name, failure.ErrCommandFailure, err)
	}

	if !utf8.Valid(stdout.Bytes()) {
		return "", fmt.Errorf("%q wrote output which is not valid utf-8: %w", c.Name, failure.ErrCommandFailure)
	}
	return stdout.String(), nil
}
