package output_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngc-linker/packages/compiler/output"
)

func TestSourceMapGenerator(t *testing.T) {
	t.Run("should produce nothing without mappings", func(t *testing.T) {
		gen := output.NewSourceMapGenerator("out.js")
		gen.AddLine()
		assert.Nil(t, gen.ToJSON())
	})

	t.Run("should encode segments relative to the previous one", func(t *testing.T) {
		content := "abc"
		gen := output.NewSourceMapGenerator("out.js").AddSource("a.js", &content).AddLine()
		require.NoError(t, gen.AddMapping(0, "a.js", 0, 0))
		require.NoError(t, gen.AddMapping(2, "a.js", 0, 2))
		gen.AddLine()
		require.NoError(t, gen.AddMapping(4, "a.js", 1, 0))

		sm := gen.ToJSON()
		require.NotNil(t, sm)
		assert.Equal(t, 3, sm.Version)
		assert.Equal(t, []string{"a.js"}, sm.Sources)
		assert.Equal(t, "AAAA,EAAE;IACF", sm.Mappings)
	})

	t.Run("should reject mappings for unknown sources", func(t *testing.T) {
		gen := output.NewSourceMapGenerator("out.js").AddLine()
		assert.ErrorIs(t, gen.AddMapping(0, "missing.js", 0, 0), output.ErrUnknownSource)
	})

	t.Run("should reject mappings out of order", func(t *testing.T) {
		gen := output.NewSourceMapGenerator("out.js").AddSource("a.js", nil).AddLine()
		require.NoError(t, gen.AddMapping(5, "a.js", 0, 0))
		assert.ErrorIs(t, gen.AddMapping(1, "a.js", 0, 0), output.ErrMappingOrder)
	})
}
