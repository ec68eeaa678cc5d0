package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

// coverageRunner wraps coverage tools: always project-scoped, the measured
// percentage is compared against the configured threshold. The percentage
// is extracted from tool output, with a report-file fallback.
//
// An undeterminable percentage is an execution error, never a pass: an
// unverifiable state is treated as blocking.
type coverageRunner struct {
	spec Spec
}

func (r *coverageRunner) ID() string   { return r.spec.ID }
func (r *coverageRunner) Scope() Scope { return ScopeProject }

// Coverage always re-measures the whole project.
func (r *coverageRunner) AppliesTo(string) bool { return true }

// coveragePatterns are tried in order against the combined output. First
// capture group is the percentage.
var coveragePatterns = []*regexp.Regexp{
	regexp.MustCompile(`All files\s*\|\s*([\d.]+)\s*\|`), // vitest/jest table
	regexp.MustCompile(`(?i)Statements\s*:\s*([\d.]+)%`), // istanbul summary
	regexp.MustCompile(`(?i)Lines\s*:\s*([\d.]+)%`),      // istanbul alternative
	regexp.MustCompile(`(?i)Coverage:\s*([\d.]+)%`),      // simple format
	regexp.MustCompile(`(?i)([\d.]+)%\s*coverage`),       // generic
	regexp.MustCompile(`(?i)total:?\s*.*?([\d.]+)%`),     // go test -cover / total rows
}

func (r *coverageRunner) Run(ctx context.Context, projectRoot, _ string) (Result, error) {
	out, err := runCommand(ctx, r.spec.ID, projectRoot, r.spec.Timeout, r.spec.Command)
	if err != nil {
		return Result{}, err
	}

	actual, ok := parseCoveragePercent(out.combined())
	if !ok {
		actual, ok = r.readSummaryFile(projectRoot)
	}
	if !ok {
		return Result{}, &ExecError{
			Validator: r.spec.ID,
			Kind:      ExecUnparseable,
			Err:       fmt.Errorf("could not determine coverage percentage (exit code %d)", out.exitCode),
		}
	}

	metric := &Metric{Actual: actual, Required: r.spec.Threshold}
	if actual < r.spec.Threshold {
		return Result{
			Passed: false,
			Metric: metric,
			Diagnostics: []Diagnostic{{
				Message: fmt.Sprintf("coverage %.1f%% below required %.1f%%", actual, r.spec.Threshold),
			}},
		}, nil
	}
	return Result{Passed: true, Metric: metric}, nil
}

func parseCoveragePercent(output string) (float64, bool) {
	for _, pattern := range coveragePatterns {
		if m := pattern.FindStringSubmatch(output); m != nil {
			if value, err := strconv.ParseFloat(m[1], 64); err == nil {
				return value, true
			}
		}
	}
	return 0, false
}

// coverageSummary is the istanbul coverage-summary.json shape, reduced to
// the one field we read.
type coverageSummary struct {
	Total struct {
		Lines struct {
			Pct float64 `json:"pct"`
		} `json:"lines"`
	} `json:"total"`
}

func (r *coverageRunner) readSummaryFile(projectRoot string) (float64, bool) {
	name := r.spec.SummaryFile
	if name == "" {
		name = filepath.Join("coverage", "coverage-summary.json")
	}
	data, err := os.ReadFile(filepath.Join(projectRoot, name))
	if err != nil {
		return 0, false
	}
	var summary coverageSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return 0, false
	}
	if summary.Total.Lines.Pct <= 0 {
		return 0, false
	}
	return summary.Total.Lines.Pct, true
}
