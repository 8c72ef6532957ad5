package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsWithin(t *testing.T) {
	root := filepath.FromSlash("/data/scan")

	assert.True(t, isWithin(root, root))
	assert.True(t, isWithin(root, filepath.Join(root, "sub")))
	assert.True(t, isWithin(root, filepath.Join(root, "sub", "deep.txt")))

	assert.False(t, isWithin(root, filepath.FromSlash("/data")))
	assert.False(t, isWithin(root, filepath.FromSlash("/data/scandal")))
	assert.False(t, isWithin(root, filepath.FromSlash("/elsewhere")))
}

func TestCleanPath(t *testing.T) {
	dir := t.TempDir()

	resolved := cleanPath(dir)
	assert.True(t, filepath.IsAbs(resolved))
	assert.Equal(t, resolved, cleanPath(resolved))

	messy := filepath.Join(dir, "a", "..") + string(filepath.Separator)
	assert.Equal(t, resolved, cleanPath(messy))
}
