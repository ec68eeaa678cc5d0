package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gatewright/gatewright/internal/validator"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gatewright.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_DefaultTemplate(t *testing.T) {
	t.Parallel()

	rendered, err := DefaultYAML()
	if err != nil {
		t.Fatalf("DefaultYAML returned error: %v", err)
	}

	cfg, err := Load(writeConfig(t, string(rendered)))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(cfg.Validators) != 3 {
		t.Fatalf("validators = %d, want 3", len(cfg.Validators))
	}
	if !cfg.Gates.PreAction.Enabled {
		t.Fatal("pre_action gate disabled in default template")
	}
	if got := cfg.Gates.Completion.Validators; len(got) != 1 || got[0] != "coverage" {
		t.Fatalf("completion validators = %v, want [coverage]", got)
	}
	if cfg.Validators[2].Threshold != 80 {
		t.Fatalf("coverage threshold = %v, want 80", cfg.Validators[2].Threshold)
	}
	if len(cfg.Conventions.TestMarkers) == 0 {
		t.Fatal("default template carries no test markers")
	}
}

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() returned error: %v", err)
	}
}

func TestLoad_UnknownValidatorReference(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, `
validators:
  - id: style
    kind: style
    command: ["npx", "oxlint"]
gates:
  post_action:
    validators: [style, typecheck]
`))
	if err == nil {
		t.Fatal("Load returned nil error for unknown validator reference")
	}
}

func TestLoad_SchemaRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, `
validators:
  - id: fmt
    kind: formatter
    command: ["prettier"]
gates: {}
`))
	if err == nil {
		t.Fatal("Load returned nil error for unknown validator kind")
	}
}

func TestLoad_SchemaRejectsMissingCommand(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, `
validators:
  - id: style
    kind: style
gates: {}
`))
	if err == nil {
		t.Fatal("Load returned nil error for validator without command")
	}
}

func TestLoad_RejectsCoverageThresholdOutOfRange(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, `
validators:
  - id: coverage
    kind: coverage
    command: ["npx", "vitest", "run", "--coverage"]
    threshold: 120
gates:
  completion:
    validators: [coverage]
`))
	if err == nil {
		t.Fatal("Load returned nil error for threshold above 100")
	}
}

func TestValidate_DuplicateID(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Validators: []ValidatorConfig{
			{ID: "style", Kind: validator.KindStyle, Command: []string{"oxlint"}},
			{ID: "style", Kind: validator.KindCustom, Command: []string{"true"}},
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate returned nil error for duplicate validator ids")
	}
}

func TestRunners_DeclaredOrder(t *testing.T) {
	t.Parallel()

	cfg := Default()
	runners, err := cfg.Runners(cfg.Gates.PostAction.Validators)
	if err != nil {
		t.Fatalf("Runners returned error: %v", err)
	}
	if len(runners) != 2 {
		t.Fatalf("runners = %d, want 2", len(runners))
	}
	if runners[0].ID() != "style" || runners[1].ID() != "typecheck" {
		t.Fatalf("runner order = [%s, %s], want [style, typecheck]", runners[0].ID(), runners[1].ID())
	}
}

func TestSpec_FileScopeAndTimeout(t *testing.T) {
	t.Parallel()

	vc := ValidatorConfig{
		ID:             "style",
		Kind:           validator.KindStyle,
		Command:        []string{"oxlint", "{file}"},
		Scope:          "file",
		TimeoutSeconds: 45,
	}
	spec := vc.Spec()
	if spec.Scope != validator.ScopeFile {
		t.Fatalf("scope = %v, want file", spec.Scope)
	}
	if spec.Timeout.Seconds() != 45 {
		t.Fatalf("timeout = %v, want 45s", spec.Timeout)
	}
}
