// SPDX-License-Identifier: Apache-2.0
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Work-Fort/Keep/pkg/util"
	"github.com/charmbracelet/log"
)

const (
	// BlobSuffix marks an opaque encrypted file, as opposed to a .gpg secret record
	BlobSuffix = ".bgpg"
	// DecryptedSuffix is appended when a decrypted blob's name has no BlobSuffix to strip
	DecryptedSuffix = ".decrypted"

	bundleTempPattern = ".keep-bundle-*"
)

// BulkResult reports the outcome of a directory operation. Paths are absolute.
type BulkResult struct {
	Succeeded []string         // outputs written
	Failed    map[string]error // input path -> reason
	Skipped   []string         // inputs left alone (wrong suffix or cancelled)
}

func newBulkResult() *BulkResult {
	return &BulkResult{Failed: make(map[string]error)}
}

// OK reports whether no file failed
func (r *BulkResult) OK() bool {
	return len(r.Failed) == 0
}

// Err aggregates every failure, or returns nil when all files succeeded
func (r *BulkResult) Err() error {
	if r.OK() {
		return nil
	}

	var errs []error
	for _, path := range slices.Sorted(maps.Keys(r.Failed)) {
		errs = append(errs, fmt.Errorf("%s: %w", path, r.Failed[path]))
	}
	return fmt.Errorf("%d of %d files failed: %w",
		len(r.Failed), len(r.Failed)+len(r.Succeeded), errors.Join(errs...))
}

// DecryptedPath returns where a decrypted copy of the blob at path is written
func DecryptedPath(path string) string {
	if strings.HasSuffix(path, BlobSuffix) && filepath.Base(path) != BlobSuffix {
		return strings.TrimSuffix(path, BlobSuffix)
	}
	return path + DecryptedSuffix
}

// EncryptFile encrypts the file at abs to the effective recipients, writing
// abs+".bgpg". With replace the plaintext is removed afterwards.
func (s *Store) EncryptFile(abs string, replace bool) (string, error) {
	if err := regularFile(abs); err != nil {
		return "", err
	}
	dst := abs + BlobSuffix

	if err := s.encryptTo(abs, dst); err != nil {
		return "", err
	}
	if replace {
		if err := os.Remove(abs); err != nil {
			return dst, fsError("remove "+abs, err)
		}
	}

	log.Debugf("Encrypted %s", abs)
	return dst, nil
}

// DecryptFile decrypts the blob at abs next to it (see DecryptedPath).
// With replace the blob is removed afterwards.
func (s *Store) DecryptFile(abs, passphrase string, replace bool) (string, error) {
	if err := regularFile(abs); err != nil {
		return "", err
	}
	dst := DecryptedPath(abs)

	if err := s.decryptTo(abs, dst, passphrase); err != nil {
		return "", err
	}
	if replace {
		if err := os.Remove(abs); err != nil {
			return dst, fsError("remove "+abs, err)
		}
	}

	log.Debugf("Decrypted %s", abs)
	return dst, nil
}

// EncryptDirectory encrypts the directory at abs. With bundle the directory is
// archived to a single abs+".tar.xz.bgpg" blob; otherwise every file is
// encrypted in place and one failure does not stop the others. ctx is only
// checked between files.
func (s *Store) EncryptDirectory(ctx context.Context, abs string, replace, bundle bool) (*BulkResult, error) {
	abs = filepath.Clean(abs)
	if err := directory(abs); err != nil {
		return nil, err
	}
	if _, err := s.recipients(); err != nil {
		return nil, err
	}

	if bundle {
		return s.encryptBundle(abs, replace)
	}

	files, err := listFiles(abs)
	if err != nil {
		return nil, err
	}

	result := newBulkResult()
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			result.Skipped = append(result.Skipped, files[i:]...)
			return result, errors.Join(err, result.Err())
		}
		if strings.HasSuffix(path, BlobSuffix) {
			result.Skipped = append(result.Skipped, path)
			continue
		}

		dst, err := s.EncryptFile(path, replace)
		if err != nil {
			log.Warnf("Failed to encrypt %s: %v", path, err)
			result.Failed[path] = err
			continue
		}
		result.Succeeded = append(result.Succeeded, dst)
	}

	log.Infof("Encrypted %d file(s) under %s, %d failed", len(result.Succeeded), abs, len(result.Failed))
	return result, result.Err()
}

// DecryptDirectory reverses EncryptDirectory. With bundle, abs is the bundle
// blob and its contents are extracted next to it; otherwise every .bgpg file
// under the directory abs is decrypted and the rest are skipped.
func (s *Store) DecryptDirectory(ctx context.Context, abs, passphrase string, replace, bundle bool) (*BulkResult, error) {
	abs = filepath.Clean(abs)
	if bundle {
		if err := regularFile(abs); err != nil {
			return nil, err
		}
		return s.decryptBundle(abs, passphrase, replace)
	}

	if err := directory(abs); err != nil {
		return nil, err
	}
	files, err := listFiles(abs)
	if err != nil {
		return nil, err
	}

	result := newBulkResult()
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			result.Skipped = append(result.Skipped, files[i:]...)
			return result, errors.Join(err, result.Err())
		}
		if !strings.HasSuffix(path, BlobSuffix) {
			result.Skipped = append(result.Skipped, path)
			continue
		}

		dst, err := s.DecryptFile(path, passphrase, replace)
		if err != nil {
			log.Warnf("Failed to decrypt %s: %v", path, err)
			result.Failed[path] = err
			continue
		}
		result.Succeeded = append(result.Succeeded, dst)
	}

	log.Infof("Decrypted %d file(s) under %s, %d failed", len(result.Succeeded), abs, len(result.Failed))
	return result, result.Err()
}

func (s *Store) encryptBundle(abs string, replace bool) (*BulkResult, error) {
	dst := abs + util.ArchiveExt + BlobSuffix

	tmp, err := os.MkdirTemp(filepath.Dir(abs), bundleTempPattern)
	if err != nil {
		return nil, fsError("create bundle workspace", err)
	}
	defer os.RemoveAll(tmp)

	archive := filepath.Join(tmp, filepath.Base(abs)+util.ArchiveExt)
	if err := util.ArchiveDir(abs, archive); err != nil {
		return nil, fsError("archive "+abs, err)
	}
	if err := s.encryptTo(archive, dst); err != nil {
		return nil, err
	}

	if replace {
		if err := os.RemoveAll(abs); err != nil {
			return nil, fsError("remove "+abs, err)
		}
	}

	log.Infof("Bundled %s into %s", abs, dst)
	result := newBulkResult()
	result.Succeeded = []string{dst}
	return result, nil
}

func (s *Store) decryptBundle(abs, passphrase string, replace bool) (*BulkResult, error) {
	parent := filepath.Dir(abs)

	tmp, err := os.MkdirTemp(parent, bundleTempPattern)
	if err != nil {
		return nil, fsError("create bundle workspace", err)
	}
	defer os.RemoveAll(tmp)

	archive := filepath.Join(tmp, "bundle"+util.ArchiveExt)
	if err := s.decryptTo(abs, archive, passphrase); err != nil {
		return nil, err
	}

	out := filepath.Join(tmp, "out")
	if err := os.Mkdir(out, 0700); err != nil {
		return nil, fsError("create bundle workspace", err)
	}
	if err := util.ExtractArchive(archive, out); err != nil {
		return nil, fsError("extract "+abs, err)
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		return nil, fsError("read bundle contents", err)
	}
	for _, entry := range entries {
		if _, err := os.Lstat(filepath.Join(parent, entry.Name())); err == nil {
			return nil, conflict(filepath.Join(parent, entry.Name()))
		}
	}

	result := newBulkResult()
	for _, entry := range entries {
		dst := filepath.Join(parent, entry.Name())
		if err := movePath(filepath.Join(out, entry.Name()), dst); err != nil {
			return result, err
		}
		result.Succeeded = append(result.Succeeded, dst)
	}

	if replace {
		if err := os.Remove(abs); err != nil {
			return result, fsError("remove "+abs, err)
		}
	}

	log.Infof("Unbundled %s into %s", abs, parent)
	return result, nil
}

// encryptTo writes a binary blob; dst must not exist
func (s *Store) encryptTo(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return conflict(dst)
	}

	recipients, err := s.recipients()
	if err != nil {
		return err
	}
	plaintext, err := os.ReadFile(src)
	if err != nil {
		return fsError("read "+src, err)
	}

	ciphertext, err := s.keys.Encrypt(plaintext, recipients, true)
	if err != nil {
		return fmt.Errorf("failed to encrypt %s: %w", src, err)
	}
	if err := util.WriteFileAtomic(dst, ciphertext, 0600); err != nil {
		return fsError("write "+dst, err)
	}
	return nil
}

// decryptTo writes the plaintext of src; dst must not exist
func (s *Store) decryptTo(src, dst, passphrase string) error {
	if _, err := os.Lstat(dst); err == nil {
		return conflict(dst)
	}

	ciphertext, err := os.ReadFile(src)
	if err != nil {
		return fsError("read "+src, err)
	}
	plaintext, err := s.keys.Decrypt(ciphertext, passphrase)
	if err != nil {
		return fmt.Errorf("failed to decrypt %s: %w", src, err)
	}
	if err := util.WriteFileAtomic(dst, plaintext, 0600); err != nil {
		return fsError("write "+dst, err)
	}
	return nil
}

func regularFile(abs string) error {
	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return notFound(abs)
	}
	if err != nil {
		return fsError("access "+abs, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrFilesystem, abs)
	}
	return nil
}

func directory(abs string) error {
	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return notFound(abs)
	}
	if err != nil {
		return fsError("access "+abs, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrFilesystem, abs)
	}
	return nil
}

// listFiles returns every regular file under root, sorted
func listFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fsError("walk "+root, err)
	}
	return files, nil
}
