package backup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndRestore(t *testing.T) {
	root := t.TempDir()
	store := t.TempDir()

	a := filepath.Join(root, "A.cs")
	b := filepath.Join(root, "sub", "B.cs")
	require.NoError(t, os.MkdirAll(filepath.Dir(b), 0o755))
	require.NoError(t, os.WriteFile(a, []byte("class A { }\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("class B { }\r\n"), 0o644))

	archive, err := Create(store, root, []string{a, b})
	require.NoError(t, err)
	assert.FileExists(t, archive)

	require.NoError(t, os.WriteFile(a, []byte("changed"), 0o644))
	require.NoError(t, os.Remove(b))

	restored, err := Restore(store, root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, restored)

	data, err := os.ReadFile(a)
	require.NoError(t, err)
	assert.Equal(t, "class A { }\n", string(data))
	data, err = os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, "class B { }\r\n", string(data))
}

func TestRestoreWithoutBackup(t *testing.T) {
	_, err := Restore(t.TempDir(), t.TempDir())
	assert.ErrorIs(t, err, ErrNoBackup)
}

func TestCreateRejectsFilesOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(t.TempDir(), "X.cs")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	_, err := Create(t.TempDir(), root, []string{outside})
	assert.ErrorContains(t, err, "outside")
}

func TestKeysDifferPerRoot(t *testing.T) {
	k1, err := Key(t.TempDir())
	require.NoError(t, err)
	k2, err := Key(t.TempDir())
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)

	again, err := Key(filepath.Join(t.TempDir(), ".."))
	require.NoError(t, err)
	assert.NotEmpty(t, again)
}
