// SPDX-License-Identifier: Apache-2.0
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ProtonMail/gopenpgp/v3/crypto"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/Work-Fort/Keep/pkg/storepath"
	"github.com/Work-Fort/Keep/pkg/util"
	"github.com/charmbracelet/log"
)

// GPGIDFile lists the effective recipient key ids, one per line, at the store root
const GPGIDFile = ".gpg-id"

// Config is the part of the configuration the store reads and updates
type Config interface {
	Settings() config.Settings
	Change(key string, value interface{}) (bool, error)
}

// Keys is the keyring the store encrypts and decrypts with
type Keys interface {
	Has(id string) bool
	RecipientIDs(disabled []string) []string
	Recipients(disabled []string) ([]*crypto.Key, error)
	Encrypt(plaintext []byte, recipients []*crypto.Key, binary bool) ([]byte, error)
	Decrypt(ciphertext []byte, passphrase string) ([]byte, error)
}

// Store is a directory tree of encrypted secrets. It never prompts: any
// passphrase is supplied by the caller.
type Store struct {
	cfg   Config
	keys  Keys
	paths *storepath.Resolver
}

// Open resolves the configured store root, creating it if missing, prunes
// ignore entries that no longer exist and refreshes the recipients manifest
func Open(cfg Config, keys Keys) (*Store, error) {
	root, err := expandHome(cfg.Settings().Store.PathStore)
	if err != nil {
		return nil, err
	}

	if err := ensureDir(root); err != nil {
		return nil, err
	}

	paths, err := storepath.New(root)
	if err != nil {
		return nil, err
	}

	s := &Store{cfg: cfg, keys: keys, paths: paths}
	if err := s.pruneIgnored(); err != nil {
		return nil, err
	}
	if len(s.Recipients()) > 0 {
		if err := s.writeGPGID(); err != nil {
			return nil, err
		}
	}

	log.Debugf("Opened store at %s", root)
	return s, nil
}

func ensureDir(root string) error {
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		log.Infof("Creating password store at %s", root)
		if err := os.MkdirAll(root, 0700); err != nil {
			return fsError("create store root", err)
		}
		return nil
	}
	if err != nil {
		return fsError("access store root", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: store root %s is not a directory", ErrFilesystem, root)
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if path == "" {
		return "", fmt.Errorf("%w: no store root configured", storepath.ErrInvalidPath)
	}
	return filepath.Abs(path)
}

// Root returns the absolute store root
func (s *Store) Root() string {
	return s.paths.Root()
}

// Paths returns the resolver anchored at the store root
func (s *Store) Paths() *storepath.Resolver {
	return s.paths
}

// Kind reports what exists at rel
func (s *Store) Kind(rel string) storepath.NodeKind {
	return s.paths.Kind(rel)
}

// Tree enumerates the store, hiding ignored entries
func (s *Store) Tree() (storepath.Tree, error) {
	settings := s.cfg.Settings().Store
	return s.paths.Enumerate(settings.IgnoredDirectories, settings.IgnoredFiles)
}

// ChangeRoot points the store at another existing directory and persists it.
// It reports false when path is already the root.
func (s *Store) ChangeRoot(path string) (bool, error) {
	root, err := expandHome(path)
	if err != nil {
		return false, err
	}
	if root == s.Root() {
		return false, nil
	}

	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return false, notFound(root)
	}
	if err != nil {
		return false, fsError("access "+root, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%w: %s is not a directory", ErrFilesystem, root)
	}

	paths, err := storepath.New(root)
	if err != nil {
		return false, err
	}
	if _, err := s.cfg.Change("path_store", root); err != nil {
		return false, fmt.Errorf("failed to save store root: %w", err)
	}
	s.paths = paths

	if err := s.pruneIgnored(); err != nil {
		return true, err
	}
	if len(s.Recipients()) > 0 {
		if err := s.writeGPGID(); err != nil {
			return true, err
		}
	}

	log.Infof("Store root changed to %s", root)
	return true, nil
}

// writeGPGID records the effective recipient set
func (s *Store) writeGPGID() error {
	ids := s.Recipients()
	content := ""
	if len(ids) > 0 {
		content = strings.Join(ids, "\n") + "\n"
	}
	if err := util.WriteFileAtomic(filepath.Join(s.Root(), GPGIDFile), []byte(content), 0644); err != nil {
		return fsError("write "+GPGIDFile, err)
	}
	return nil
}

func (s *Store) binary() bool {
	return !s.cfg.Settings().Keyring.Armor
}

func (s *Store) recipients() ([]*crypto.Key, error) {
	return s.keys.Recipients(s.cfg.Settings().Store.DisabledKeys)
}
