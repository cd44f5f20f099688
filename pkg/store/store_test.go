// SPDX-License-Identifier: Apache-2.0
package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/gopenpgp/v3/constants"
	"github.com/ProtonMail/gopenpgp/v3/profile"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/Work-Fort/Keep/pkg/keyring"
	"github.com/Work-Fort/Keep/pkg/record"
	"github.com/Work-Fort/Keep/pkg/storepath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store *Store
	cfg   *config.Config
	keys  *keyring.Keyring
	root  string
}

// newTestEnv opens a store over a fresh config and keyring. The keyring uses
// curve25519 keys so generation stays fast.
func newTestEnv(t *testing.T, keyNames ...string) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	root := filepath.Join(t.TempDir(), "store")
	_, err = cfg.Change("path_store", root)
	require.NoError(t, err)

	keys, err := keyring.Open(t.TempDir(), keyring.WithProfile(profile.Default()), keyring.WithSecurity(constants.StandardSecurity))
	require.NoError(t, err)
	for _, name := range keyNames {
		addKey(t, keys, name)
	}

	s, err := Open(cfg, keys)
	require.NoError(t, err)
	return &testEnv{store: s, cfg: cfg, keys: keys, root: root}
}

func addKey(t *testing.T, keys *keyring.Keyring, name string) string {
	t.Helper()
	info, err := keys.Create(keyring.CreateOptions{Name: name, Email: name + "@example.com"})
	require.NoError(t, err)
	return info.KeyID
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestOpenCreatesRootAndManifest(t *testing.T) {
	env := newTestEnv(t, "alice")

	info, err := os.Stat(env.root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	ids := env.keys.KeyIDs()
	assert.Equal(t, ids[0]+"\n", readFile(t, filepath.Join(env.root, GPGIDFile)))
}

func TestOpenRejectsFileRoot(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	keys, err := keyring.Open(t.TempDir())
	require.NoError(t, err)

	root := filepath.Join(t.TempDir(), "store")
	_, err = cfg.Change("path_store", root)
	require.NoError(t, err)
	writeFile(t, root, "not a directory")

	_, err = Open(cfg, keys)
	assert.ErrorIs(t, err, ErrFilesystem)
}

func TestSecretLifecycle(t *testing.T) {
	env := newTestEnv(t, "alice")
	s := env.store

	rec := record.FromPairs(record.PasswordField, "hunter2", "user", "alice", "url", "https://example.com")
	rel, err := s.CreateSecret("", "site", rec)
	require.NoError(t, err)
	assert.Equal(t, "site", rel)
	assert.FileExists(t, filepath.Join(env.root, "site.gpg"))

	secret, err := s.ReadSecret("site", "")
	require.NoError(t, err)
	assert.True(t, rec.Equal(secret.Record), "got %v", secret.Record.Map())
	assert.Empty(t, secret.Malformed)

	again, err := s.CreateSecret("", "site", rec)
	require.NoError(t, err)
	assert.Equal(t, "site_1", again)

	renamed, err := s.Rename("site", "bank")
	require.NoError(t, err)
	assert.Equal(t, "bank", renamed)
	assert.Equal(t, storepath.KindNone, s.Kind("site"))
	assert.Equal(t, storepath.KindSecret, s.Kind("bank"))

	require.NoError(t, s.RemoveSecret("bank"))
	_, err = s.ReadSecret("bank", "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.RemoveSecret("bank"), ErrNotFound)
}

func TestCreateReadRenameRemoveNested(t *testing.T) {
	env := newTestEnv(t, "alice")
	s := env.store

	rec := record.FromPairs(record.PasswordField, "p1", "user", "u1")
	require.NoError(t, s.WriteSecret("site/login", rec))

	secret, err := s.ReadSecret("site/login", "")
	require.NoError(t, err)
	assert.True(t, rec.Equal(secret.Record), "got %v", secret.Record.Map())

	renamed, err := s.Rename("site/login", "login2")
	require.NoError(t, err)
	assert.Equal(t, "site/login2", renamed)

	_, err = s.ReadSecret("site/login", "")
	assert.ErrorIs(t, err, ErrNotFound)
	secret, err = s.ReadSecret("site/login2", "")
	require.NoError(t, err)
	assert.True(t, rec.Equal(secret.Record))

	require.NoError(t, s.RemoveSecret("site/login2"))
	tree, err := s.Tree()
	require.NoError(t, err)
	assert.NotContains(t, tree.Secrets(), "site/login2")
	assert.Empty(t, tree.Secrets())
}

func TestDotFoldersAreListed(t *testing.T) {
	env := newTestEnv(t, "alice")
	s := env.store

	require.NoError(t, s.WriteSecret(".private/bank", record.FromPairs(record.PasswordField, "x")))
	writeFile(t, filepath.Join(env.root, storepath.GitDir, "objects.gpg"), "not a secret")

	_, err := s.ReadSecret(".private/bank", "")
	require.NoError(t, err)

	tree, err := s.Tree()
	require.NoError(t, err)
	assert.Equal(t, []string{".private/bank"}, tree.Secrets())
	assert.Equal(t, []string{".private"}, tree.Folders())
}

func TestInsertSecret(t *testing.T) {
	env := newTestEnv(t, "alice")
	s := env.store

	_, err := s.CreateFolder("", "bank")
	require.NoError(t, err)

	rec := record.FromPairs(record.PasswordField, "first")
	err = s.InsertSecret("bank", rec, false)
	assert.ErrorIs(t, err, ErrConflict)
	err = s.InsertSecret("bank", rec, true)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, storepath.KindFolder, s.Kind("bank"))

	require.NoError(t, s.InsertSecret("email", rec, false))
	assert.ErrorIs(t, s.InsertSecret("email", record.FromPairs(record.PasswordField, "second"), false), ErrConflict)

	require.NoError(t, s.InsertSecret("email", record.FromPairs(record.PasswordField, "second"), true))
	secret, err := s.ReadSecret("email", "")
	require.NoError(t, err)
	assert.Equal(t, "second", secret.Record.Password())

	assert.ErrorIs(t, s.InsertSecret("../escape", rec, false), storepath.ErrInvalidPath)
}

func TestWriteSecretCreatesParents(t *testing.T) {
	env := newTestEnv(t, "alice")

	require.NoError(t, env.store.WriteSecret("work/vpn/token", record.FromPairs(record.PasswordField, "x")))
	assert.Equal(t, storepath.KindFolder, env.store.Kind("work/vpn"))
	assert.Equal(t, storepath.KindSecret, env.store.Kind("work/vpn/token"))

	tree, err := env.store.Tree()
	require.NoError(t, err)
	assert.Equal(t, []string{"work/vpn/token"}, tree.Secrets())
}

func TestWriteSecretWithoutRecipients(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.root, "existing.gpg")
	writeFile(t, path, "old ciphertext")

	err := env.store.WriteSecret("existing", record.FromPairs(record.PasswordField, "new"))
	assert.ErrorIs(t, err, keyring.ErrNoRecipients)
	assert.Equal(t, "old ciphertext", readFile(t, path))

	_, err = env.store.CreateSecret("", "fresh", record.New())
	assert.ErrorIs(t, err, keyring.ErrNoRecipients)
	assert.NoFileExists(t, filepath.Join(env.root, "fresh.gpg"))
}

func TestMalformedLinesAreTolerated(t *testing.T) {
	env := newTestEnv(t, "alice")

	recipients, err := env.keys.Recipients(nil)
	require.NoError(t, err)
	ciphertext, err := env.keys.Encrypt([]byte("pw\nuser: bob\nBROKEN\nmail: b@example.com\n"), recipients, false)
	require.NoError(t, err)
	writeFile(t, filepath.Join(env.root, "legacy.gpg"), string(ciphertext))

	secret, err := env.store.ReadSecret("legacy", "")
	require.NoError(t, err)
	assert.Equal(t, "pw", secret.Record.Password())
	assert.Equal(t, []string{record.PasswordField, "user", "mail"}, secret.Record.Keys())
	require.Len(t, secret.Malformed, 1)
	assert.Equal(t, "BROKEN", secret.Malformed[0].Text)
}

func TestDisableKey(t *testing.T) {
	env := newTestEnv(t)
	alice := addKey(t, env.keys, "alice")
	bob := addKey(t, env.keys, "bob")
	s := env.store

	changed, err := s.DisableKey(strings.ToLower(bob))
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = s.DisableKey(bob)
	require.NoError(t, err)
	assert.False(t, changed)

	assert.Equal(t, []string{alice}, s.Recipients())
	assert.Equal(t, []string{bob}, env.cfg.Settings().Store.DisabledKeys)
	assert.Equal(t, alice+"\n", readFile(t, filepath.Join(env.root, GPGIDFile)))

	require.NoError(t, s.WriteSecret("note", record.FromPairs(record.PasswordField, "only alice")))
	ciphertext, err := os.ReadFile(filepath.Join(env.root, "note.gpg"))
	require.NoError(t, err)

	_, err = env.keys.DecryptWithKey(ciphertext, alice, "")
	assert.NoError(t, err)
	_, err = env.keys.DecryptWithKey(ciphertext, bob, "")
	assert.ErrorIs(t, err, keyring.ErrDecryptionFailed)

	changed, err = s.EnableKey(bob)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.ElementsMatch(t, []string{alice, bob}, s.Recipients())
	assert.Empty(t, env.cfg.Settings().Store.DisabledKeys)

	changed, err = s.EnableKey(bob)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = s.DisableKey("0000000000000000")
	assert.ErrorIs(t, err, keyring.ErrKeyNotFound)
}

func TestKeysChangedForgetsRemovedDisabledKeys(t *testing.T) {
	env := newTestEnv(t)
	alice := addKey(t, env.keys, "alice")
	bob := addKey(t, env.keys, "bob")
	s := env.store

	_, err := s.DisableKey(bob)
	require.NoError(t, err)

	_, err = env.keys.Remove(bob)
	require.NoError(t, err)
	require.NoError(t, s.KeysChanged())

	assert.Empty(t, env.cfg.Settings().Store.DisabledKeys)
	assert.Equal(t, []string{alice}, s.Recipients())
	assert.Equal(t, alice+"\n", readFile(t, filepath.Join(env.root, GPGIDFile)))

	// a disabled key still in the keyring stays disabled
	carol := addKey(t, env.keys, "carol")
	_, err = s.DisableKey(carol)
	require.NoError(t, err)
	require.NoError(t, s.KeysChanged())
	assert.Equal(t, []string{carol}, env.cfg.Settings().Store.DisabledKeys)
}

func TestIgnore(t *testing.T) {
	env := newTestEnv(t, "alice")
	s := env.store
	for _, rel := range []string{"work/a", "work/b", "personal/c"} {
		require.NoError(t, s.WriteSecret(rel, record.FromPairs(record.PasswordField, rel)))
	}

	changed, err := s.Ignore("work", true)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = s.Ignore("work", true)
	require.NoError(t, err)
	assert.False(t, changed)

	tree, err := s.Tree()
	require.NoError(t, err)
	assert.Equal(t, []string{"personal/c"}, tree.Secrets())
	assert.FileExists(t, filepath.Join(env.root, "work", "a.gpg"))

	_, err = s.Ignore("nope", false)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Ignore("personal", false)
	assert.ErrorIs(t, err, ErrNotFound, "a folder is not a secret")

	changed, err = s.Unignore("work", true)
	require.NoError(t, err)
	assert.True(t, changed)
	tree, err = s.Tree()
	require.NoError(t, err)
	assert.Len(t, tree.Secrets(), 3)
}

func TestOpenPrunesStaleIgnoreEntries(t *testing.T) {
	env := newTestEnv(t, "alice")
	s := env.store
	require.NoError(t, s.WriteSecret("old/login", record.FromPairs(record.PasswordField, "x")))
	require.NoError(t, s.WriteSecret("keep", record.FromPairs(record.PasswordField, "y")))

	_, err := s.Ignore("old/login", false)
	require.NoError(t, err)
	_, err = s.Ignore("keep", false)
	require.NoError(t, err)
	require.NoError(t, s.RemoveFolder("old"))

	_, err = Open(env.cfg, env.keys)
	require.NoError(t, err)

	files, dirs := s.Ignored()
	assert.Equal(t, []string{"keep"}, files)
	assert.Empty(t, dirs)

	reloaded, err := config.Load(env.cfg.Path())
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, reloaded.Settings().Store.IgnoredFiles)
}

func TestDuplicate(t *testing.T) {
	env := newTestEnv(t, "alice")
	s := env.store
	require.NoError(t, s.WriteSecret("login", record.FromPairs(record.PasswordField, "x")))
	require.NoError(t, s.WriteSecret("team/one", record.FromPairs(record.PasswordField, "1")))

	first, err := s.Duplicate("login")
	require.NoError(t, err)
	assert.Equal(t, "login_1", first)
	second, err := s.Duplicate("login_1")
	require.NoError(t, err)
	assert.Equal(t, "login_2", second)

	assert.Equal(t,
		readFile(t, filepath.Join(env.root, "login.gpg")),
		readFile(t, filepath.Join(env.root, "login_2.gpg")))

	folder, err := s.Duplicate("team")
	require.NoError(t, err)
	assert.Equal(t, "team_1", folder)
	secret, err := s.ReadSecret("team_1/one", "")
	require.NoError(t, err)
	assert.Equal(t, "1", secret.Record.Password())

	_, err = s.Duplicate("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRenameAndMoveConflicts(t *testing.T) {
	env := newTestEnv(t, "alice")
	s := env.store
	for _, rel := range []string{"a", "b", "c/inner"} {
		require.NoError(t, s.WriteSecret(rel, record.FromPairs(record.PasswordField, rel)))
	}

	_, err := s.Rename("a", "b")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = s.Rename("a", "c")
	assert.ErrorIs(t, err, ErrConflict, "a folder blocks a secret of the same name")
	_, err = s.Rename("a", "x/y")
	assert.ErrorIs(t, err, storepath.ErrInvalidPath)
	_, err = s.Rename("", "root")
	assert.ErrorIs(t, err, storepath.ErrInvalidPath)

	_, err = s.Move("a", "nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Move("c", "c")
	assert.ErrorIs(t, err, storepath.ErrInvalidPath)

	require.NoError(t, s.WriteSecret("c/a", record.FromPairs(record.PasswordField, "taken")))
	_, err = s.Move("a", "c")
	assert.ErrorIs(t, err, ErrConflict)

	secret, err := s.ReadSecret("a", "")
	require.NoError(t, err)
	assert.Equal(t, "a", secret.Record.Password())
}

func TestMoveSecretAndFolderTogether(t *testing.T) {
	env := newTestEnv(t, "alice")
	s := env.store
	require.NoError(t, s.WriteSecret("bank", record.FromPairs(record.PasswordField, "outer")))
	require.NoError(t, s.WriteSecret("bank/pin", record.FromPairs(record.PasswordField, "1234")))
	_, err := s.CreateFolder("", "archive")
	require.NoError(t, err)
	assert.Equal(t, storepath.KindBoth, s.Kind("bank"))

	moved, err := s.Move("bank", "archive")
	require.NoError(t, err)
	assert.Equal(t, "archive/bank", moved)
	assert.Equal(t, storepath.KindNone, s.Kind("bank"))
	assert.Equal(t, storepath.KindBoth, s.Kind("archive/bank"))

	secret, err := s.ReadSecret("archive/bank/pin", "")
	require.NoError(t, err)
	assert.Equal(t, "1234", secret.Record.Password())
}

func TestCreateFolderAndRemove(t *testing.T) {
	env := newTestEnv(t, "alice")
	s := env.store

	first, err := s.CreateFolder("", "folder")
	require.NoError(t, err)
	second, err := s.CreateFolder("", "folder")
	require.NoError(t, err)
	assert.Equal(t, "folder", first)
	assert.Equal(t, "folder_1", second)

	_, err = s.CreateFolder("missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.RemoveFolder("folder"))
	assert.Equal(t, storepath.KindNone, s.Kind("folder"))
	assert.ErrorIs(t, s.RemoveFolder("folder"), ErrNotFound)
	assert.ErrorIs(t, s.RemoveFolder(""), storepath.ErrInvalidPath)
	assert.ErrorIs(t, s.RemoveFolder("../outside"), storepath.ErrInvalidPath)
}

func TestChangeRoot(t *testing.T) {
	env := newTestEnv(t, "alice")
	s := env.store

	changed, err := s.ChangeRoot(env.root)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = s.ChangeRoot(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrNotFound)

	other := t.TempDir()
	changed, err = s.ChangeRoot(other)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, other, s.Root())
	assert.Equal(t, other, env.cfg.Settings().Store.PathStore)
	assert.FileExists(t, filepath.Join(other, GPGIDFile))
}
