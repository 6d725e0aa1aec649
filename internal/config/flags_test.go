package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlags(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "flags", "flags.json")
	SetFlagsPath(path)
	t.Cleanup(func() { SetFlagsPath("") })

	size := GenFlag[int]("test.cache_size", 100, "Cache size")
	name := GenFlag[string]("test.name", "inkwell", "Name")
	on := GenFlag[bool]("test.enabled", false, "Enabled")

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(`{"test.cache_size": 250, "test.enabled": "nope", "test.unknown": 1}`), 0644))
	t.Setenv("INKWELL_FLAG_OVERRIDES", "test.name=blog,test.enabled=true,broken,test.missing=1")

	require.NoError(t, LoadFlags(ctx))
	assert.Equal(t, 250, size.Value())
	assert.Equal(t, "blog", name.Value())
	assert.True(t, on.Value())

	v, ok := GetFlagVal[int]("test.cache_size")
	assert.True(t, ok)
	assert.Equal(t, 250, v)
	_, ok = GetFlagVal[string]("test.cache_size")
	assert.False(t, ok, "type mismatch")

	size.Update(300)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"test.cache_size": 300`)

	var names []string
	for _, f := range GetFlags[bool]() {
		names = append(names, f.InternalName())
	}
	assert.Contains(t, names, "test.enabled")
}

func TestLoadFlagsMissingFile(t *testing.T) {
	SetFlagsPath(filepath.Join(t.TempDir(), "absent.json"))
	t.Cleanup(func() { SetFlagsPath("") })
	assert.NoError(t, LoadFlags(context.Background()))

	SetFlagsPath("")
	assert.Error(t, LoadFlags(context.Background()))
}
