package validator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// typecheckRunner wraps compiler-style tools (tsc --noEmit and similar):
// exit code carries pass/fail, errors come as "<file>(<line>,<col>):
// error <code>: <message>" lines.
type typecheckRunner struct {
	spec Spec
}

func (r *typecheckRunner) ID() string   { return r.spec.ID }
func (r *typecheckRunner) Scope() Scope { return r.spec.Scope }

func (r *typecheckRunner) AppliesTo(path string) bool { return r.spec.appliesTo(path) }

// tscErrorLine matches "src/foo.ts(12,5): error TS2345: message".
var tscErrorLine = regexp.MustCompile(`^(\S+\(\d+,\d+\)):\s*(error\s+\S+:\s*.*)$`)

func (r *typecheckRunner) Run(ctx context.Context, projectRoot, file string) (Result, error) {
	out, err := runCommand(ctx, r.spec.ID, projectRoot, r.spec.Timeout, argvFor(r.spec, file))
	if err != nil {
		return Result{}, err
	}
	if out.exitCode == 0 {
		return Result{Passed: true}, nil
	}

	var diags []Diagnostic
	for _, line := range strings.Split(out.combined(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := tscErrorLine.FindStringSubmatch(line); m != nil {
			diags = append(diags, Diagnostic{Location: m[1], Message: m[2]})
		} else if strings.Contains(line, "error TS") {
			diags = append(diags, Diagnostic{Message: line})
		}
		if len(diags) == maxDiagnostics {
			break
		}
	}
	if len(diags) == 0 {
		// Some configurations report plain error lines; fall back to the
		// generic line scan before giving up.
		diags = extractLineDiagnostics(out.combined())
	}
	if len(diags) == 0 {
		return Result{}, &ExecError{
			Validator: r.spec.ID,
			Kind:      ExecUnparseable,
			Err:       fmt.Errorf("exit code %d with no recognizable output", out.exitCode),
		}
	}
	return Result{Passed: false, Diagnostics: diags}, nil
}
