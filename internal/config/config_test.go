package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestMergeConfig_StoredOverridesDefaults(t *testing.T) {
	merged := mergeConfig(DefaultConfig(), fileConfig{
		Path:    ptr("/srv/data"),
		Depth:   ptr(3),
		Workers: ptr(8),
	})

	assert.Equal(t, "/srv/data", merged.Path)
	assert.Equal(t, 3, merged.Depth)
	assert.Equal(t, 8, merged.Workers)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultConfig().LogLevel, merged.LogLevel)
	assert.Equal(t, DefaultConfig().TopFiles, merged.TopFiles)
}

func TestMergeConfig_AbsentKeysKeepDefaults(t *testing.T) {
	merged := mergeConfig(DefaultConfig(), fileConfig{})
	assert.Equal(t, DefaultConfig(), merged)
}

func TestMergeConfig_ZeroValuesAreExplicit(t *testing.T) {
	merged := mergeConfig(DefaultConfig(), fileConfig{Depth: ptr(0), Plain: ptr(false)})
	assert.Equal(t, 0, merged.Depth)
	assert.False(t, merged.Plain)
}
