package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_TestFiles(t *testing.T) {
	t.Parallel()

	c := NewClassifier(DefaultConventions())
	for _, path := range []string{
		"src/foo.test.ts",
		"src/foo.spec.tsx",
		"src/util_test.js",
		"src/__tests__/foo.ts",
		"tests/widget.ts",
		"src/test_helpers.ts",
	} {
		got := c.Classify(path)
		assert.Equal(t, KindTest, got.Kind, "path %s", path)
		assert.Empty(t, got.Counterparts, "path %s", path)
	}
}

func TestClassify_ImplementationCounterpartOrder(t *testing.T) {
	t.Parallel()

	c := NewClassifier(DefaultConventions())
	got := c.Classify("src/foo.ts")
	require.Equal(t, KindImplementation, got.Kind)
	require.NotEmpty(t, got.Counterparts)

	assert.Equal(t, "src/foo.test.ts", got.Counterparts[0])
	assert.Equal(t, []string{
		"src/foo.test.ts",
		"src/foo.spec.ts",
		"src/foo_test.ts",
		"src/foo_spec.ts",
		"src/__tests__/foo.test.ts",
		"src/__tests__/foo.ts",
		"tests/foo.test.ts",
	}, got.Counterparts)
}

func TestClassify_NestedSourceMirror(t *testing.T) {
	t.Parallel()

	c := NewClassifier(DefaultConventions())
	got := c.Classify("src/widgets/button.tsx")
	require.Equal(t, KindImplementation, got.Kind)
	assert.Contains(t, got.Counterparts, "tests/widgets/button.test.tsx")
}

func TestClassify_UnknownExtensionUnclassified(t *testing.T) {
	t.Parallel()

	c := NewClassifier(DefaultConventions())
	for _, path := range []string{
		"README.md",
		"Makefile",
		"assets/logo.png",
		"src/styles.css",
	} {
		got := c.Classify(path)
		assert.Equal(t, KindUnclassified, got.Kind, "path %s", path)
	}
}

func TestClassify_ConfigFilesExempt(t *testing.T) {
	t.Parallel()

	c := NewClassifier(DefaultConventions())
	for _, path := range []string{
		"vite.config.ts",
		"vitest.config.ts",
		"tsconfig.build.ts",
		"src/types.d.ts",
		".eslintrc.js",
	} {
		got := c.Classify(path)
		assert.Equal(t, KindUnclassified, got.Kind, "path %s", path)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	t.Parallel()

	c := NewClassifier(DefaultConventions())
	first := c.Classify("src/foo.ts")
	second := c.Classify("src/foo.ts")
	assert.Equal(t, first, second)
}

func TestClassify_CustomConventionsForGo(t *testing.T) {
	t.Parallel()

	conv := Conventions{
		TestMarkers:         []string{"_test."},
		Extensions:          []string{".go"},
		CounterpartSuffixes: []string{"_test"},
	}
	c := NewClassifier(conv)

	assert.Equal(t, KindTest, c.Classify("internal/store/store_test.go").Kind)

	got := c.Classify("internal/store/store.go")
	require.Equal(t, KindImplementation, got.Kind)
	assert.Equal(t, "internal/store/store_test.go", got.Counterparts[0])
}
