package validator

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

type execOutput struct {
	exitCode int
	stdout   string
	stderr   string
}

func (o execOutput) combined() string {
	return strings.TrimSpace(o.stdout + o.stderr)
}

// runCommand runs one tool invocation under a wall-clock timeout. The
// command gets its own process group so a timeout kills the whole tree,
// not just the direct child.
func runCommand(ctx context.Context, id, dir string, timeout time.Duration, argv []string) (execOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.Debug().Str("validator", id).Str("dir", dir).Strs("argv", argv).Msg("running validator")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	out := execOutput{stdout: stdout.String(), stderr: stderr.String()}

	if ctx.Err() == context.DeadlineExceeded {
		log.Warn().Str("validator", id).Dur("timeout", timeout).Msg("validator timed out")
		return out, &ExecError{Validator: id, Kind: ExecTimeout, Err: ctx.Err()}
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.exitCode = exitErr.ExitCode()
		} else {
			// Not even started: missing binary, bad working dir.
			return out, &ExecError{Validator: id, Kind: ExecNotFound, Err: err}
		}
	}

	log.Debug().
		Str("validator", id).
		Int("exit_code", out.exitCode).
		Dur("duration", time.Since(start)).
		Msg("validator finished")
	return out, nil
}

// argvFor expands the configured command for a run. File-scoped
// validators substitute {file} in place, or get the file appended when no
// placeholder is present.
func argvFor(spec Spec, file string) []string {
	if spec.Scope != ScopeFile || file == "" {
		return spec.Command
	}
	out := make([]string, 0, len(spec.Command)+1)
	substituted := false
	for _, arg := range spec.Command {
		if strings.Contains(arg, "{file}") {
			arg = strings.ReplaceAll(arg, "{file}", file)
			substituted = true
		}
		out = append(out, arg)
	}
	if !substituted {
		out = append(out, file)
	}
	return out
}
