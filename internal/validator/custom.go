package validator

import (
	"context"
)

// customRunner wraps arbitrary commands: exit code is the whole contract,
// output is passed through as diagnostics without interpretation.
type customRunner struct {
	spec Spec
}

func (r *customRunner) ID() string   { return r.spec.ID }
func (r *customRunner) Scope() Scope { return r.spec.Scope }

func (r *customRunner) AppliesTo(path string) bool { return r.spec.appliesTo(path) }

// maxRawOutput bounds the raw output carried back as a diagnostic.
const maxRawOutput = 500

func (r *customRunner) Run(ctx context.Context, projectRoot, file string) (Result, error) {
	out, err := runCommand(ctx, r.spec.ID, projectRoot, r.spec.Timeout, argvFor(r.spec, file))
	if err != nil {
		return Result{}, err
	}
	if out.exitCode == 0 {
		return Result{Passed: true}, nil
	}
	message := out.combined()
	if message == "" {
		message = "check failed"
	}
	if len(message) > maxRawOutput {
		message = message[:maxRawOutput]
	}
	return Result{Passed: false, Diagnostics: []Diagnostic{{Message: message}}}, nil
}
