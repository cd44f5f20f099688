// SPDX-License-Identifier: Apache-2.0
package store

import (
	"fmt"
	"slices"

	"github.com/Work-Fort/Keep/pkg/storepath"
	"github.com/charmbracelet/log"
)

const (
	ignoredFilesKey = "ignored_files"
	ignoredDirsKey  = "ignored_directories"
)

// Ignored returns the ignored secret and folder store paths
func (s *Store) Ignored() (files, dirs []string) {
	settings := s.cfg.Settings().Store
	return slices.Clone(settings.IgnoredFiles), slices.Clone(settings.IgnoredDirectories)
}

// Ignore hides a secret (isDir false) or folder (isDir true) from the tree.
// Nothing on disk changes. It reports false when rel was already ignored.
func (s *Store) Ignore(rel string, isDir bool) (bool, error) {
	rel, err := nonRoot(rel)
	if err != nil {
		return false, err
	}
	if !s.exists(rel, isDir) {
		return false, notFound(rel)
	}

	key, list := s.ignoreList(isDir)
	if slices.Contains(list, rel) {
		return false, nil
	}
	return s.saveList(key, append(list, rel))
}

// Unignore makes rel visible again. It reports false when rel was not ignored.
func (s *Store) Unignore(rel string, isDir bool) (bool, error) {
	rel, err := storepath.Clean(rel)
	if err != nil {
		return false, err
	}

	key, list := s.ignoreList(isDir)
	if !slices.Contains(list, rel) {
		return false, nil
	}
	list = slices.DeleteFunc(list, func(p string) bool { return p == rel })
	return s.saveList(key, list)
}

// pruneIgnored drops ignore entries whose target no longer exists and
// duplicate entries, persisting the lists when they change
func (s *Store) pruneIgnored() error {
	for _, isDir := range []bool{false, true} {
		key, list := s.ignoreList(isDir)

		var kept []string
		for _, entry := range list {
			rel, err := storepath.Clean(entry)
			if err != nil || rel == "" || slices.Contains(kept, rel) || !s.exists(rel, isDir) {
				log.Debugf("Pruning ignore entry %q from %s", entry, key)
				continue
			}
			kept = append(kept, rel)
		}

		if !slices.Equal(kept, list) {
			if _, err := s.saveList(key, kept); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) ignoreList(isDir bool) (string, []string) {
	settings := s.cfg.Settings().Store
	if isDir {
		return ignoredDirsKey, slices.Clone(settings.IgnoredDirectories)
	}
	return ignoredFilesKey, slices.Clone(settings.IgnoredFiles)
}

func (s *Store) saveList(key string, list []string) (bool, error) {
	if list == nil {
		list = []string{}
	}
	changed, err := s.cfg.Change(key, list)
	if err != nil {
		return false, fmt.Errorf("failed to save %s: %w", key, err)
	}
	return changed, nil
}

// exists reports whether rel exists as a folder (isDir) or as a secret
func (s *Store) exists(rel string, isDir bool) bool {
	kind := s.paths.Kind(rel)
	if isDir {
		return kind.HasFolder()
	}
	return kind.HasSecret()
}
