package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ngc-linker/packages/compiler/core"
)

func TestParseViewEncapsulation(t *testing.T) {
	t.Run("should resolve members by name", func(t *testing.T) {
		v, ok := core.ParseViewEncapsulation("ShadowDom")
		assert.True(t, ok)
		assert.Equal(t, core.ViewEncapsulationShadowDom, v)
		assert.Equal(t, 3, int(v))
	})

	t.Run("should not parse ordinals or removed members", func(t *testing.T) {
		for _, name := range []string{"0", "Native", "emulated", ""} {
			_, ok := core.ParseViewEncapsulation(name)
			assert.False(t, ok, name)
		}
	})

	t.Run("should print member names", func(t *testing.T) {
		assert.Equal(t, "None", core.ViewEncapsulationNone.String())
	})
}

func TestParseChangeDetectionStrategy(t *testing.T) {
	v, ok := core.ParseChangeDetectionStrategy("OnPush")
	assert.True(t, ok)
	assert.Equal(t, 0, int(v))

	_, ok = core.ParseChangeDetectionStrategy("CheckAlways")
	assert.False(t, ok)
}

func TestNewVersion(t *testing.T) {
	v := core.NewVersion("12.0.0-next.3")
	assert.Equal(t, "12", v.Major)
	assert.Equal(t, "0", v.Minor)
	assert.Equal(t, "0-next.3", v.Patch)
}
