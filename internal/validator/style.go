package validator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// maxDiagnostics caps how many findings a single run reports back to the
// agent. Tools can emit hundreds of lines; the first few are what gets
// acted on.
const maxDiagnostics = 10

// styleRunner wraps lint-style tools (oxlint, eslint and friends): exit
// code carries pass/fail, findings come one per output line.
type styleRunner struct {
	spec Spec
}

func (r *styleRunner) ID() string   { return r.spec.ID }
func (r *styleRunner) Scope() Scope { return r.spec.Scope }

func (r *styleRunner) AppliesTo(path string) bool { return r.spec.appliesTo(path) }

func (r *styleRunner) Run(ctx context.Context, projectRoot, file string) (Result, error) {
	out, err := runCommand(ctx, r.spec.ID, projectRoot, r.spec.Timeout, argvFor(r.spec, file))
	if err != nil {
		return Result{}, err
	}
	if out.exitCode == 0 {
		return Result{Passed: true}, nil
	}
	diags := extractLineDiagnostics(out.combined())
	if len(diags) == 0 {
		return Result{}, &ExecError{
			Validator: r.spec.ID,
			Kind:      ExecUnparseable,
			Err:       fmt.Errorf("exit code %d with no recognizable output", out.exitCode),
		}
	}
	return Result{Passed: false, Diagnostics: diags}, nil
}

// locationPrefix matches a leading file:line[:col] marker.
var locationPrefix = regexp.MustCompile(`^(\S+?:\d+(?::\d+)?)[:\s]\s*(.*)$`)

// extractLineDiagnostics pulls finding lines out of lint output: lines
// mentioning an error or warning, or starting with a finding glyph.
func extractLineDiagnostics(output string) []Diagnostic {
	var diags []Diagnostic
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		relevant := strings.Contains(lower, "error") ||
			strings.Contains(lower, "warning") ||
			strings.HasPrefix(line, "×") ||
			strings.HasPrefix(line, "⚠")
		if !relevant {
			continue
		}
		diags = append(diags, splitLocation(line))
		if len(diags) == maxDiagnostics {
			break
		}
	}
	return diags
}

func splitLocation(line string) Diagnostic {
	if m := locationPrefix.FindStringSubmatch(line); m != nil && m[2] != "" {
		return Diagnostic{Location: m[1], Message: strings.TrimSpace(m[2])}
	}
	return Diagnostic{Message: line}
}
