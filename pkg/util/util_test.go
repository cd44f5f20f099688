// SPDX-License-Identifier: Apache-2.0
package util

import (
	"archive/tar"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestArchiveRoundTrip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "docs")
	writeTree(t, src, map[string]string{
		"a.txt":       "alpha",
		"sub/b.bin":   "\x00\x01\x02",
		"sub/c/d.txt": "delta",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(src, "empty"), 0755))

	archive := filepath.Join(t.TempDir(), "docs"+ArchiveExt)
	require.NoError(t, ArchiveDir(src, archive))

	out := t.TempDir()
	require.NoError(t, ExtractArchive(archive, out))

	assert.Equal(t, "alpha", readFile(t, filepath.Join(out, "docs", "a.txt")))
	assert.Equal(t, "\x00\x01\x02", readFile(t, filepath.Join(out, "docs", "sub", "b.bin")))
	assert.Equal(t, "delta", readFile(t, filepath.Join(out, "docs", "sub", "c", "d.txt")))
	assert.DirExists(t, filepath.Join(out, "docs", "empty"))
}

func TestExtractRejectsTraversal(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "evil"+ArchiveExt)
	f, err := os.Create(archive)
	require.NoError(t, err)

	xzWriter, err := xz.NewWriter(f)
	require.NoError(t, err)
	tw := tar.NewWriter(xzWriter)
	content := []byte("pwned")
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "../evil.txt", Mode: 0644, Size: int64(len(content)), Typeflag: tar.TypeReg}))
	_, err = tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, xzWriter.Close())
	require.NoError(t, f.Close())

	parent := t.TempDir()
	out := filepath.Join(parent, "out")
	require.NoError(t, os.Mkdir(out, 0755))

	err = ExtractArchive(archive, out)
	assert.ErrorContains(t, err, "invalid path in archive")
	assert.NoFileExists(t, filepath.Join(parent, "evil.txt"))
}

func TestCopyTreeVerified(t *testing.T) {
	src := filepath.Join(t.TempDir(), "folder")
	writeTree(t, src, map[string]string{"x.gpg": "x", "nested/y.gpg": "y"})

	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, CopyTreeVerified(src, dst))
	assert.Equal(t, "x", readFile(t, filepath.Join(dst, "x.gpg")))
	assert.Equal(t, "y", readFile(t, filepath.Join(dst, "nested", "y.gpg")))

	// refuses to overwrite
	assert.Error(t, CopyTreeVerified(src, dst))

	single := filepath.Join(t.TempDir(), "single.gpg")
	require.NoError(t, CopyTreeVerified(filepath.Join(src, "x.gpg"), single))
	assert.Equal(t, "x", readFile(t, single))
}

func TestVerifyCopyMismatch(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a": "one", "b": "two"})

	assert.NoError(t, VerifyCopy(filepath.Join(dir, "a"), filepath.Join(dir, "a")))
	assert.ErrorContains(t, VerifyCopy(filepath.Join(dir, "a"), filepath.Join(dir, "b")), "checksum mismatch")
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "secret.gpg")

	require.NoError(t, WriteFileAtomic(path, []byte("first"), 0600))
	require.NoError(t, WriteFileAtomic(path, []byte("second"), 0600))
	assert.Equal(t, "second", readFile(t, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	assert.Error(t, WriteFileAtomic(filepath.Join(dir, "missing", "x"), []byte("x"), 0600))
}
