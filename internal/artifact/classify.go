// Package artifact classifies file paths as test or implementation artifacts
// and derives the counterpart test paths an implementation file is paired with.
package artifact

import (
	"path/filepath"
	"strings"
)

// Kind is the classification of an artifact path.
type Kind string

const (
	// KindTest marks a path that matches a test naming convention.
	KindTest Kind = "test"
	// KindImplementation marks a source file that requires a test counterpart.
	KindImplementation Kind = "implementation"
	// KindUnclassified marks a path the classifier has no opinion about.
	KindUnclassified Kind = "unclassified"
)

// Classification is the result of classifying one path.
// Counterparts is non-empty only for implementation artifacts and lists
// acceptable test paths in priority order (first match wins).
type Classification struct {
	Kind         Kind
	Counterparts []string
}

// Conventions configures the naming rules the classifier applies.
// All matching is done on the path string alone; the classifier never
// touches the filesystem.
type Conventions struct {
	// TestMarkers are substrings of the file name that mark a test file,
	// e.g. ".test." or "_spec.".
	TestMarkers []string `json:"test_markers" mapstructure:"test_markers" yaml:"test_markers"`
	// TestPrefixes are file name prefixes that mark a test file, e.g. "test_".
	TestPrefixes []string `json:"test_prefixes" mapstructure:"test_prefixes" yaml:"test_prefixes"`
	// TestDirs are directory names anywhere in the path that mark a test file.
	TestDirs []string `json:"test_dirs" mapstructure:"test_dirs" yaml:"test_dirs"`
	// Extensions are the file extensions the classifier has an opinion about.
	// Paths with any other extension classify as unclassified.
	Extensions []string `json:"extensions" mapstructure:"extensions" yaml:"extensions"`
	// ExemptMarkers are file name substrings exempt from the test-first rule
	// (build and tool config files, declaration files).
	ExemptMarkers []string `json:"exempt_markers" mapstructure:"exempt_markers" yaml:"exempt_markers"`
	// CounterpartSuffixes are stem suffixes tried in order when deriving
	// counterpart test paths, e.g. ".test" turns foo.ts into foo.test.ts.
	CounterpartSuffixes []string `json:"counterpart_suffixes" mapstructure:"counterpart_suffixes" yaml:"counterpart_suffixes"`
	// TestDirName is the sibling directory tried after the suffix candidates,
	// e.g. "__tests__".
	TestDirName string `json:"test_dir_name" mapstructure:"test_dir_name" yaml:"test_dir_name"`
	// SourceRoot and MirrorRoot describe the src/ -> tests/ tree mirror:
	// when SourceRoot appears as a path element it is substituted with
	// MirrorRoot to produce additional candidates.
	SourceRoot string `json:"source_root" mapstructure:"source_root" yaml:"source_root"`
	MirrorRoot string `json:"mirror_root" mapstructure:"mirror_root" yaml:"mirror_root"`
}

// DefaultConventions returns the conventions for TypeScript/JavaScript
// projects: .test/.spec suffixes, __tests__ directories, and config-file
// exemptions.
func DefaultConventions() Conventions {
	return Conventions{
		TestMarkers:  []string{".test.", ".spec.", "_test.", "_spec."},
		TestPrefixes: []string{"test_", "spec_"},
		TestDirs:     []string{"__tests__", "tests"},
		Extensions:   []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"},
		ExemptMarkers: []string{
			"config.", ".config.", "rc.", ".d.ts",
			"vite.config", "vitest.config", "jest.config",
			"tsconfig", "eslint", "prettier",
		},
		CounterpartSuffixes: []string{".test", ".spec", "_test", "_spec"},
		TestDirName:         "__tests__",
		SourceRoot:          "src",
		MirrorRoot:          "tests",
	}
}

// Classifier applies a fixed set of conventions to paths.
type Classifier struct {
	conv Conventions
}

// NewClassifier creates a classifier for the given conventions.
func NewClassifier(conv Conventions) *Classifier {
	return &Classifier{conv: conv}
}

// Classify classifies a path. Deterministic: same conventions and path
// always yield the same result.
func (c *Classifier) Classify(path string) Classification {
	norm := filepath.ToSlash(path)
	name := strings.ToLower(filepath.Base(norm))

	if c.isTestPath(norm, name) {
		return Classification{Kind: KindTest}
	}
	if !c.hasKnownExtension(name) || c.isExempt(name) {
		return Classification{Kind: KindUnclassified}
	}
	return Classification{
		Kind:         KindImplementation,
		Counterparts: c.counterparts(norm),
	}
}

// IsTest reports whether the path matches a test naming convention.
func (c *Classifier) IsTest(path string) bool {
	return c.Classify(path).Kind == KindTest
}

func (c *Classifier) isTestPath(norm, name string) bool {
	for _, dir := range c.conv.TestDirs {
		if pathHasElement(norm, dir) {
			return true
		}
	}
	for _, marker := range c.conv.TestMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	for _, prefix := range c.conv.TestPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func (c *Classifier) hasKnownExtension(name string) bool {
	ext := filepath.Ext(name)
	for _, known := range c.conv.Extensions {
		if ext == known {
			return true
		}
	}
	return false
}

func (c *Classifier) isExempt(name string) bool {
	for _, marker := range c.conv.ExemptMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// counterparts returns the acceptable test paths for an implementation
// path, highest priority first.
func (c *Classifier) counterparts(norm string) []string {
	dir := filepath.ToSlash(filepath.Dir(norm))
	base := filepath.Base(norm)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	out := make([]string, 0, len(c.conv.CounterpartSuffixes)+3)
	for _, suffix := range c.conv.CounterpartSuffixes {
		out = append(out, joinSlash(dir, stem+suffix+ext))
	}
	if c.conv.TestDirName != "" {
		if len(c.conv.CounterpartSuffixes) > 0 {
			out = append(out, joinSlash(dir, c.conv.TestDirName, stem+c.conv.CounterpartSuffixes[0]+ext))
		}
		out = append(out, joinSlash(dir, c.conv.TestDirName, base))
	}
	if c.conv.SourceRoot != "" && c.conv.MirrorRoot != "" {
		if mirrored, ok := mirrorPath(dir, c.conv.SourceRoot, c.conv.MirrorRoot); ok && len(c.conv.CounterpartSuffixes) > 0 {
			out = append(out, joinSlash(mirrored, stem+c.conv.CounterpartSuffixes[0]+ext))
		}
	}
	return out
}

func joinSlash(parts ...string) string {
	joined := parts[0]
	for _, p := range parts[1:] {
		if joined == "." || joined == "" {
			joined = p
			continue
		}
		joined = joined + "/" + p
	}
	return joined
}

func pathHasElement(norm, element string) bool {
	for _, part := range strings.Split(norm, "/") {
		if part == element {
			return true
		}
	}
	return false
}

// mirrorPath replaces the first occurrence of the from element with to.
func mirrorPath(dir, from, to string) (string, bool) {
	parts := strings.Split(dir, "/")
	for i, part := range parts {
		if part == from {
			parts[i] = to
			return strings.Join(parts, "/"), true
		}
	}
	return "", false
}
