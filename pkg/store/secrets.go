// SPDX-License-Identifier: Apache-2.0
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Work-Fort/Keep/pkg/record"
	"github.com/Work-Fort/Keep/pkg/storepath"
	"github.com/Work-Fort/Keep/pkg/util"
	"github.com/charmbracelet/log"
)

// Secret is a decrypted record together with any lines the codec skipped
type Secret struct {
	Path      string
	Record    *record.Record
	Malformed []*record.MalformedLineError
}

// ReadSecret decrypts and decodes the secret at rel
func (s *Store) ReadSecret(rel, passphrase string) (*Secret, error) {
	rel, err := storepath.Clean(rel)
	if err != nil {
		return nil, err
	}
	path, err := s.paths.SecretPath(rel)
	if err != nil {
		return nil, err
	}

	ciphertext, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, notFound(rel)
	}
	if err != nil {
		return nil, fsError("read "+rel, err)
	}

	plaintext, err := s.keys.Decrypt(ciphertext, passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt %s: %w", rel, err)
	}

	rec, malformed := record.Decode(string(plaintext))
	if len(malformed) > 0 {
		log.Warnf("Secret %s has %d malformed line(s)", rel, len(malformed))
	}

	return &Secret{Path: rel, Record: rec, Malformed: malformed}, nil
}

// WriteSecret encrypts rec to the effective recipient set and replaces the
// secret at rel, creating parent folders. Nothing is written when there are
// no recipients.
func (s *Store) WriteSecret(rel string, rec *record.Record) error {
	rel, err := storepath.Clean(rel)
	if err != nil {
		return err
	}
	path, err := s.paths.SecretPath(rel)
	if err != nil {
		return err
	}

	recipients, err := s.recipients()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}

	ciphertext, err := s.keys.Encrypt([]byte(record.Encode(rec)), recipients, s.binary())
	if err != nil {
		return fmt.Errorf("failed to encrypt %s: %w", rel, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fsError("create folder for "+rel, err)
	}
	if err := util.WriteFileAtomic(path, ciphertext, 0600); err != nil {
		return fsError("write "+rel, err)
	}

	log.Debugf("Wrote secret %s for %d recipient(s)", rel, len(recipients))
	return s.writeGPGID()
}

// InsertSecret writes rec at rel as a new secret. A folder of the same name is
// always a conflict; an existing secret is one unless replace is set.
func (s *Store) InsertSecret(rel string, rec *record.Record, replace bool) error {
	rel, err := storepath.Clean(rel)
	if err != nil {
		return err
	}
	kind := s.paths.Kind(rel)
	switch {
	case kind.HasFolder():
		return conflict(rel + " is a folder")
	case kind.HasSecret() && !replace:
		return conflict(rel)
	}
	return s.WriteSecret(rel, rec)
}

// CreateSecret writes rec under parent using base, or base_N when base is taken.
// It returns the new store path.
func (s *Store) CreateSecret(parent, base string, rec *record.Record) (string, error) {
	dir, err := s.existingFolder(parent)
	if err != nil {
		return "", err
	}
	if err := validateName(base); err != nil {
		return "", err
	}

	_, name := storepath.NewUniqueName(dir, base, storepath.SecretSuffix)
	rel := storepath.Join(parent, name)
	if err := s.WriteSecret(rel, rec); err != nil {
		return "", err
	}
	return rel, nil
}

// CreateFolder creates base, or base_N when base is taken, under parent.
// It returns the new store path.
func (s *Store) CreateFolder(parent, base string) (string, error) {
	dir, err := s.existingFolder(parent)
	if err != nil {
		return "", err
	}
	if err := validateName(base); err != nil {
		return "", err
	}

	_, name := storepath.NewUniqueName(dir, base, storepath.SecretSuffix)
	if err := os.Mkdir(filepath.Join(dir, name), 0700); err != nil {
		return "", fsError("create folder "+name, err)
	}

	rel := storepath.Join(parent, name)
	log.Debugf("Created folder %s", rel)
	return rel, nil
}

// existingFolder resolves parent, which must be the root or an existing folder
func (s *Store) existingFolder(parent string) (string, error) {
	cleaned, err := storepath.Clean(parent)
	if err != nil {
		return "", err
	}
	dir, err := s.paths.Abs(cleaned)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", notFound("folder " + cleaned)
	}
	return dir, nil
}

// validateName checks a single path component
func validateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: invalid name %q", storepath.ErrInvalidPath, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: name %q must not contain a path separator", storepath.ErrInvalidPath, name)
	case strings.HasSuffix(name, storepath.SecretSuffix):
		return fmt.Errorf("%w: name %q must not end in %s", storepath.ErrInvalidPath, name, storepath.SecretSuffix)
	}
	return nil
}
