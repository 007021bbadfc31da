package exec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BuildFlagsVar is read by PlatformIO and appended to every build's flags.
const BuildFlagsVar = "PLATFORMIO_BUILD_FLAGS"

type Runner struct {
	Timeout time.Duration
	Stdout  io.Writer
	Stderr  io.Writer
}

// Run executes name with args and env. A command that starts and exits
// non-zero is reported through the exit code, not the error.
func (r *Runner) Run(ctx context.Context, name string, args []string, env []string) (int, error) {
	if name == "" {
		return 0, errors.New("command is required")
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	command := exec.CommandContext(ctx, name, args...)
	command.Env = env
	command.Stdin = os.Stdin
	command.Stdout = r.Stdout
	command.Stderr = r.Stderr
	if command.Stdout == nil {
		command.Stdout = os.Stdout
	}
	if command.Stderr == nil {
		command.Stderr = os.Stderr
	}

	err := command.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, fmt.Errorf("run %s: %w", name, ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("run %s: %w", name, err)
	}
	return 0, nil
}

func BuildFlagsEnv(base []string, flags string) []string {
	out := make([]string, 0, len(base)+1)
	existing := ""
	for _, kv := range base {
		if value, ok := strings.CutPrefix(kv, BuildFlagsVar+"="); ok {
			existing = value
			continue
		}
		out = append(out, kv)
	}

	merged := strings.TrimSpace(strings.Join([]string{existing, flags}, " "))
	return append(out, BuildFlagsVar+"="+merged)
}
