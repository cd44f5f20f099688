// SPDX-License-Identifier: Apache-2.0
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/Work-Fort/Keep/pkg/storepath"
	"github.com/Work-Fort/Keep/pkg/util"
	"github.com/charmbracelet/log"
)

// rename is swapped in tests to simulate cross-device moves
var rename = os.Rename

// part is one on-disk component of a node: its secret file or its folder
type part struct {
	src string
	dst string
}

// nodeParts lists the components of the node at rel mapped onto dstRel
func (s *Store) nodeParts(rel, dstRel string) ([]part, error) {
	kind := s.paths.Kind(rel)
	if kind == storepath.KindNone {
		return nil, notFound(rel)
	}

	var parts []part
	if kind.HasSecret() {
		src, err := s.paths.SecretPath(rel)
		if err != nil {
			return nil, err
		}
		dst, err := s.paths.SecretPath(dstRel)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part{src: src, dst: dst})
	}
	if kind.HasFolder() {
		src, err := s.paths.Abs(rel)
		if err != nil {
			return nil, err
		}
		dst, err := s.paths.Abs(dstRel)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part{src: src, dst: dst})
	}
	return parts, nil
}

// relocate moves every component of rel to dstRel. If any step fails the
// completed steps are moved back so rel stays intact.
func (s *Store) relocate(rel, dstRel string) error {
	if kind := s.paths.Kind(dstRel); kind != storepath.KindNone {
		return conflict(fmt.Sprintf("%s (%s)", dstRel, kind))
	}

	parts, err := s.nodeParts(rel, dstRel)
	if err != nil {
		return err
	}

	var done []part
	for _, p := range parts {
		if err := movePath(p.src, p.dst); err != nil {
			for i := len(done) - 1; i >= 0; i-- {
				if rerr := movePath(done[i].dst, done[i].src); rerr != nil {
					log.Errorf("Failed to roll back %s: %v", done[i].dst, rerr)
				}
			}
			return err
		}
		done = append(done, p)
	}

	log.Debugf("Moved %s to %s", rel, dstRel)
	return nil
}

// movePath renames src to dst, falling back to copy, verify and delete when
// they are on different devices. A failed copy leaves src untouched.
func movePath(src, dst string) error {
	err := rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fsError("move "+filepath.Base(src), err)
	}

	if _, err := os.Lstat(dst); err == nil {
		return conflict(dst)
	}

	log.Debugf("Cross-device move of %s, copying", src)
	if err := util.CopyTreeVerified(src, dst); err != nil {
		if rerr := os.RemoveAll(dst); rerr != nil {
			log.Errorf("Failed to clean up partial copy %s: %v", dst, rerr)
		}
		return fsError("copy "+filepath.Base(src)+" across devices", err)
	}
	if err := os.RemoveAll(src); err != nil {
		return fsError("remove "+filepath.Base(src)+" after copy", err)
	}
	return nil
}

// Rename gives the secret and/or folder at rel a new name in the same parent.
// It returns the new store path.
func (s *Store) Rename(rel, newName string) (string, error) {
	rel, err := nonRoot(rel)
	if err != nil {
		return "", err
	}
	if err := validateName(newName); err != nil {
		return "", err
	}

	parent, _ := storepath.Parent(rel)
	dst := storepath.Join(parent, newName)
	if dst == rel {
		return rel, nil
	}

	if err := s.relocate(rel, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// Move places the secret and/or folder at rel under newParent, keeping its name.
// It returns the new store path.
func (s *Store) Move(rel, newParent string) (string, error) {
	rel, err := nonRoot(rel)
	if err != nil {
		return "", err
	}
	newParent, err = storepath.Clean(newParent)
	if err != nil {
		return "", err
	}
	if _, err := s.existingFolder(newParent); err != nil {
		return "", err
	}

	if storepath.HasPrefix(newParent, rel) && s.paths.Kind(rel) != storepath.KindSecret {
		return "", fmt.Errorf("%w: cannot move %s into itself", storepath.ErrInvalidPath, rel)
	}

	_, base := storepath.Parent(rel)
	dst := storepath.Join(newParent, base)
	if dst == rel {
		return rel, nil
	}

	if err := s.relocate(rel, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// Duplicate copies the secret and/or folder at rel byte for byte to the next
// free copy name (name_1, or name_N+1 when the name already ends in _N).
// Ciphertext is not re-encrypted. It returns the new store path.
func (s *Store) Duplicate(rel string) (string, error) {
	rel, err := nonRoot(rel)
	if err != nil {
		return "", err
	}

	parent, base := storepath.Parent(rel)
	parentDir, err := s.paths.Abs(parent)
	if err != nil {
		return "", err
	}
	_, name := storepath.NextCopyName(parentDir, base, storepath.SecretSuffix)
	dst := storepath.Join(parent, name)

	parts, err := s.nodeParts(rel, dst)
	if err != nil {
		return "", err
	}

	var done []string
	for _, p := range parts {
		info, err := os.Stat(p.src)
		if err == nil {
			if info.IsDir() {
				err = util.CopyDir(p.src, p.dst)
			} else {
				err = util.CopyFile(p.src, p.dst)
			}
		}
		if err != nil {
			os.RemoveAll(p.dst)
			for _, d := range done {
				os.RemoveAll(d)
			}
			return "", fsError("duplicate "+rel, err)
		}
		done = append(done, p.dst)
	}

	log.Debugf("Duplicated %s as %s", rel, dst)
	return dst, nil
}

// RemoveSecret deletes the secret file at rel
func (s *Store) RemoveSecret(rel string) error {
	rel, err := nonRoot(rel)
	if err != nil {
		return err
	}
	path, err := s.paths.SecretPath(rel)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return notFound(rel)
		}
		return fsError("remove "+rel, err)
	}

	log.Debugf("Removed secret %s", rel)
	return nil
}

// RemoveFolder recursively deletes the folder at rel. The root is refused.
func (s *Store) RemoveFolder(rel string) error {
	rel, err := nonRoot(rel)
	if err != nil {
		return err
	}
	dir, err := s.paths.Abs(rel)
	if err != nil {
		return err
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return notFound("folder " + rel)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fsError("remove folder "+rel, err)
	}

	log.Debugf("Removed folder %s", rel)
	return nil
}

func nonRoot(rel string) (string, error) {
	cleaned, err := storepath.Clean(rel)
	if err != nil {
		return "", err
	}
	if cleaned == "" {
		return "", fmt.Errorf("%w: the store root cannot be changed this way", storepath.ErrInvalidPath)
	}
	return cleaned, nil
}
