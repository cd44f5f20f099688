// SPDX-License-Identifier: Apache-2.0
package storepath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkfile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
}

func TestResolverPaths(t *testing.T) {
	root := t.TempDir()
	r, err := New(root)
	require.NoError(t, err)

	tests := []struct {
		rel     string
		abs     string
		secret  string
		wantErr bool
	}{
		{rel: "site/login", abs: filepath.Join(root, "site", "login"), secret: filepath.Join(root, "site", "login.gpg")},
		{rel: "./site//login/", abs: filepath.Join(root, "site", "login"), secret: filepath.Join(root, "site", "login.gpg")},
		{rel: "a/../b", abs: filepath.Join(root, "b"), secret: filepath.Join(root, "b.gpg")},
		{rel: "../outside", wantErr: true},
		{rel: "a/../../outside", wantErr: true},
		{rel: "/etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			abs, err := r.Abs(tt.rel)
			secret, serr := r.SecretPath(tt.rel)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				assert.ErrorIs(t, serr, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			require.NoError(t, serr)
			assert.Equal(t, tt.abs, abs)
			assert.Equal(t, tt.secret, secret)
		})
	}

	abs, err := r.Abs("")
	require.NoError(t, err)
	assert.Equal(t, root, abs)

	_, err = r.SecretPath("")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestRel(t *testing.T) {
	root := t.TempDir()
	r, err := New(root)
	require.NoError(t, err)

	rel, err := r.Rel(filepath.Join(root, "a", "b"))
	require.NoError(t, err)
	assert.Equal(t, "a/b", rel)

	rel, err = r.SecretRel(filepath.Join(root, "a", "b.gpg"))
	require.NoError(t, err)
	assert.Equal(t, "a/b", rel)

	_, err = r.Rel(filepath.Dir(root))
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestKind(t *testing.T) {
	root := t.TempDir()
	r, err := New(root)
	require.NoError(t, err)

	mkfile(t, filepath.Join(root, "secret.gpg"))
	require.NoError(t, os.Mkdir(filepath.Join(root, "folder"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "both"), 0755))
	mkfile(t, filepath.Join(root, "both.gpg"))

	assert.Equal(t, KindSecret, r.Kind("secret"))
	assert.Equal(t, KindFolder, r.Kind("folder"))
	assert.Equal(t, KindBoth, r.Kind("both"))
	assert.Equal(t, KindNone, r.Kind("missing"))
	assert.Equal(t, KindNone, r.Kind("../escape"))

	assert.True(t, KindBoth.HasSecret())
	assert.True(t, KindBoth.HasFolder())
	assert.False(t, KindFolder.HasSecret())
	assert.False(t, KindSecret.HasFolder())
	assert.False(t, KindNone.HasSecret())
}

func TestEnumerate(t *testing.T) {
	root := t.TempDir()
	r, err := New(root)
	require.NoError(t, err)

	mkfile(t, filepath.Join(root, "email.gpg"))
	mkfile(t, filepath.Join(root, "work", "vpn.gpg"))
	mkfile(t, filepath.Join(root, "work", "old", "legacy.gpg"))
	mkfile(t, filepath.Join(root, "work", "hidden.gpg"))
	mkfile(t, filepath.Join(root, "work", "notes.txt"))
	mkfile(t, filepath.Join(root, "workshop", "tool.gpg"))
	mkfile(t, filepath.Join(root, ".git", "config.gpg"))
	mkfile(t, filepath.Join(root, ".gpg-id"))
	mkfile(t, filepath.Join(root, ".private", "pin.gpg"))
	require.NoError(t, os.Mkdir(filepath.Join(root, "empty"), 0755))

	// folder and secret sharing a name
	mkfile(t, filepath.Join(root, "bank.gpg"))
	mkfile(t, filepath.Join(root, "bank", "card.gpg"))

	tree, err := r.Enumerate([]string{"work/old"}, []string{"work/hidden"})
	require.NoError(t, err)

	assert.Equal(t, []string{".private/pin", "bank", "bank/card", "email", "work/vpn", "workshop/tool"}, tree.Secrets())
	assert.Equal(t, []string{".private", "bank", "empty", "work", "workshop"}, tree.Folders())

	bank := tree.Lookup("bank")
	require.NotNil(t, bank)
	assert.True(t, bank.Secret)
	assert.True(t, bank.IsFolder())
	assert.Contains(t, bank.Children, "card")

	assert.Nil(t, tree.Lookup("work/old"))
	assert.Nil(t, tree.Lookup("work/hidden"))

	// a directory prefix only matches whole components
	tree, err = r.Enumerate([]string{"work"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{".private/pin", "bank", "bank/card", "email", "workshop/tool"}, tree.Secrets())
}

func TestNewUniqueName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"folder", "folder_1", "folder_2"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, name), 0755))
	}

	path, name := NewUniqueName(dir, "folder", "")
	assert.Equal(t, "folder_3", name)
	assert.Equal(t, filepath.Join(dir, "folder_3"), path)

	mkfile(t, filepath.Join(dir, "login.gpg"))
	path, name = NewUniqueName(dir, "login", SecretSuffix)
	assert.Equal(t, "login_1", name)
	assert.Equal(t, filepath.Join(dir, "login_1.gpg"), path)

	// a folder of the same name also blocks a secret name
	_, name = NewUniqueName(dir, "folder", SecretSuffix)
	assert.Equal(t, "folder_3", name)

	_, name = NewUniqueName(dir, "fresh", SecretSuffix)
	assert.Equal(t, "fresh", name)
}

func TestNextCopyName(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "secret.gpg"))
	mkfile(t, filepath.Join(dir, "secret_2.gpg"))

	tests := []struct {
		name string
		want string
	}{
		{name: "secret", want: "secret_1"},
		{name: "secret_2", want: "secret_3"},
		{name: "secret_1", want: "secret_3"},
		{name: "v_1_09", want: "v_1_10"},
		{name: "_7", want: "_8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, got := NextCopyName(dir, tt.name, SecretSuffix)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, filepath.Join(dir, tt.want+SecretSuffix), path)
		})
	}
}

func TestHasPrefixAndParent(t *testing.T) {
	assert.True(t, HasPrefix("work/vpn", "work"))
	assert.True(t, HasPrefix("work", "work"))
	assert.False(t, HasPrefix("workshop", "work"))
	assert.True(t, HasPrefix("anything", ""))

	parent, base := Parent("a/b/c")
	assert.Equal(t, "a/b", parent)
	assert.Equal(t, "c", base)

	parent, base = Parent("c")
	assert.Equal(t, "", parent)
	assert.Equal(t, "c", base)

	assert.Equal(t, "", Join("", ""))
	assert.Equal(t, "a/b", Join("a", "b"))
}
