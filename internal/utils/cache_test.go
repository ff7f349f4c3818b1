package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_BasicOperations(t *testing.T) {
	cache := NewCache[string, int]()

	cache.Set("key1", 42)
	value, exists := cache.Get("key1")
	require.True(t, exists)
	assert.Equal(t, 42, value)

	_, exists = cache.Get("nonexistent")
	assert.False(t, exists)

	cache.Delete("key1")
	_, exists = cache.Get("key1")
	assert.False(t, exists)
}

func TestCache_Clear(t *testing.T) {
	cache := NewCache[string, string]()
	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	assert.Equal(t, 2, cache.Size())

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
}

func TestCache_DeleteFunc(t *testing.T) {
	cache := NewCache[string, int]()
	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Set("c", 3)

	removed := cache.DeleteFunc(func(_ string, v int) bool { return v%2 == 1 })

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, cache.Size())
	_, ok := cache.Get("b")
	assert.True(t, ok)
}

func TestCache_FileValidation(t *testing.T) {
	cache := NewCache[string, string]()

	tmpFile := filepath.Join(t.TempDir(), "tree.toml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("initial"), 0o644))
	require.NoError(t, cache.SetWithFileInfo("tree", "decoded", tmpFile))

	value, exists := cache.GetWithFileValidation("tree", tmpFile)
	require.True(t, exists)
	assert.Equal(t, "decoded", value)

	// Different size and a later modtime both invalidate
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.WriteFile(tmpFile, []byte("modified content"), 0o644))
	require.NoError(t, os.Chtimes(tmpFile, future, future))

	_, exists = cache.GetWithFileValidation("tree", tmpFile)
	assert.False(t, exists)
	assert.Equal(t, 0, cache.Size())
}

func TestCache_FileValidationEdgeCases(t *testing.T) {
	t.Run("missing file on set", func(t *testing.T) {
		cache := NewCache[string, string]()
		assert.Error(t, cache.SetWithFileInfo("k", "v", "/nonexistent/file.toml"))
	})

	t.Run("missing file on get", func(t *testing.T) {
		cache := NewCache[string, string]()
		_, exists := cache.GetWithFileValidation("k", "/nonexistent/file.toml")
		assert.False(t, exists)
	})

	t.Run("plain entries are not file backed", func(t *testing.T) {
		cache := NewCache[string, string]()
		tmpFile := filepath.Join(t.TempDir(), "x")
		require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0o644))

		cache.Set("k", "v")
		_, exists := cache.GetWithFileValidation("k", tmpFile)
		assert.False(t, exists)
	})
}
