// Package validator wraps external checking tools behind a uniform
// pass/fail contract.
//
// Each adapter owns the parsing strategy for one tool family (style,
// typecheck, coverage, custom). A run either produces a complete Result or
// fails with an *ExecError; a clean failing check and an inability to
// determine the outcome are distinct conditions.
package validator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Scope selects what a validator runs against.
type Scope string

const (
	// ScopeProject runs the tool against the whole working tree.
	ScopeProject Scope = "project"
	// ScopeFile runs the tool against a single artifact.
	ScopeFile Scope = "file"
)

// Validator kinds.
const (
	KindStyle     = "style"
	KindTypecheck = "typecheck"
	KindCoverage  = "coverage"
	KindCustom    = "custom"
)

// Diagnostic is one human-readable finding from a tool run.
type Diagnostic struct {
	Message  string
	Location string
}

// Metric carries the measured value for threshold-style validators.
type Metric struct {
	Actual   float64
	Required float64
}

// Result is the normalized outcome of one tool run.
type Result struct {
	Passed      bool
	Diagnostics []Diagnostic
	Metric      *Metric
}

// ExecError reports that a tool could not be run or its output could not
// be interpreted. Distinct from Result{Passed: false}.
type ExecError struct {
	Validator string
	Kind      ExecErrorKind
	Err       error
}

// ExecErrorKind classifies execution failures.
type ExecErrorKind string

const (
	// ExecNotFound means the tool binary was not found.
	ExecNotFound ExecErrorKind = "not_found"
	// ExecTimeout means the run exceeded its wall-clock timeout.
	ExecTimeout ExecErrorKind = "timeout"
	// ExecUnparseable means the tool ran but its output could not be
	// turned into a Result.
	ExecUnparseable ExecErrorKind = "unparseable"
)

func (e *ExecError) Error() string {
	return fmt.Sprintf("validator %s: %s: %v", e.Validator, e.Kind, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }

// Runner executes exactly one external check.
type Runner interface {
	// ID returns the configured validator id.
	ID() string
	// Scope reports whether the validator runs file- or project-scoped.
	Scope() Scope
	// AppliesTo reports whether the validator has an opinion about the
	// artifact. Validators with no extension filter apply to everything.
	AppliesTo(path string) bool
	// Run executes the check. file is empty for project-scoped runs.
	Run(ctx context.Context, projectRoot, file string) (Result, error)
}

// Spec is the configuration for one validator instance.
type Spec struct {
	ID          string
	Kind        string
	Command     []string
	Scope       Scope
	Timeout     time.Duration
	Threshold   float64
	SummaryFile string
	// Extensions restricts which artifacts trigger the validator after a
	// mutation, e.g. [".ts", ".tsx"]. Empty means all.
	Extensions []string
}

func (s Spec) appliesTo(path string) bool {
	if len(s.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, known := range s.Extensions {
		if ext == known {
			return true
		}
	}
	return false
}

// DefaultTimeout bounds validator runs when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// New builds the adapter for a spec. The kind must be one of the known
// validator kinds; configuration errors are caught at construction.
func New(spec Spec) (Runner, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("validator spec: id is required")
	}
	if len(spec.Command) == 0 {
		return nil, fmt.Errorf("validator %s: command is required", spec.ID)
	}
	if spec.Timeout <= 0 {
		spec.Timeout = DefaultTimeout
	}
	switch spec.Kind {
	case KindStyle:
		return &styleRunner{spec: spec}, nil
	case KindTypecheck:
		return &typecheckRunner{spec: spec}, nil
	case KindCoverage:
		if spec.Threshold <= 0 || spec.Threshold > 100 {
			return nil, fmt.Errorf("validator %s: threshold must be in (0, 100]", spec.ID)
		}
		spec.Scope = ScopeProject
		return &coverageRunner{spec: spec}, nil
	case KindCustom:
		return &customRunner{spec: spec}, nil
	default:
		return nil, fmt.Errorf("validator %s: unknown kind %q", spec.ID, spec.Kind)
	}
}
