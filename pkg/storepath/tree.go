// SPDX-License-Identifier: Apache-2.0
package storepath

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// Node is one name in the store tree. A node may be a secret, a folder, or
// both when a secret and a folder share the name.
type Node struct {
	Name     string
	Path     string // store path of the node
	Secret   bool
	Children Tree // nil for pure secrets
}

// IsFolder reports whether the node is (also) a folder
func (n *Node) IsFolder() bool {
	return n.Children != nil
}

// Tree maps child names to nodes
type Tree map[string]*Node

// Names returns child names in sorted order
func (t Tree) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup finds the node at rel, or nil
func (t Tree) Lookup(rel string) *Node {
	if rel == "" {
		return nil
	}
	current := t
	parts := strings.Split(rel, "/")
	for i, part := range parts {
		node, ok := current[part]
		if !ok {
			return nil
		}
		if i == len(parts)-1 {
			return node
		}
		current = node.Children
	}
	return nil
}

// Secrets returns every secret store path, sorted
func (t Tree) Secrets() []string {
	var out []string
	t.walk(func(n *Node) {
		if n.Secret {
			out = append(out, n.Path)
		}
	})
	sort.Strings(out)
	return out
}

// Folders returns every folder store path, sorted
func (t Tree) Folders() []string {
	var out []string
	t.walk(func(n *Node) {
		if n.IsFolder() {
			out = append(out, n.Path)
		}
	})
	sort.Strings(out)
	return out
}

func (t Tree) walk(fn func(*Node)) {
	for _, name := range t.Names() {
		node := t[name]
		fn(node)
		if node.Children != nil {
			node.Children.walk(fn)
		}
	}
}

// node returns the node for rel, creating intermediate folders
func (t Tree) node(rel string) *Node {
	current := t
	var node *Node
	parts := strings.Split(rel, "/")
	for i, part := range parts {
		n, ok := current[part]
		if !ok {
			n = &Node{Name: part, Path: strings.Join(parts[:i+1], "/")}
			current[part] = n
		}
		if i < len(parts)-1 && n.Children == nil {
			n.Children = Tree{}
		}
		node = n
		current = n.Children
	}
	return node
}

func (t Tree) addFolder(rel string) {
	if n := t.node(rel); n.Children == nil {
		n.Children = Tree{}
	}
}

func (t Tree) addSecret(rel string) {
	t.node(rel).Secret = true
}

// Enumerate walks the store once and builds the tree of secrets and folders.
// Entries are store paths: a folder listed in ignoredDirs hides its whole
// subtree, a secret listed in ignoredFiles is hidden. Dot-directories are walked like
// any other folder except GitDir.
func (r *Resolver) Enumerate(ignoredDirs, ignoredFiles []string) (Tree, error) {
	skipDirs := cleanSet(ignoredDirs)
	skipFiles := cleanSet(ignoredFiles)

	tree := Tree{}
	err := filepath.WalkDir(r.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == r.root {
				return err
			}
			log.Warnf("Skipping unreadable path %s: %v", p, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == r.root {
			return nil
		}

		rel, err := r.Rel(p)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if d.Name() == GitDir || ignoredBy(rel, skipDirs) {
				return filepath.SkipDir
			}
			tree.addFolder(rel)
			return nil
		}

		if !d.Type().IsRegular() || !strings.HasSuffix(rel, SecretSuffix) {
			return nil
		}
		rel = strings.TrimSuffix(rel, SecretSuffix)
		if rel == "" || strings.HasSuffix(rel, "/") || skipFiles[rel] {
			return nil
		}
		tree.addSecret(rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate store %s: %w", r.root, err)
	}

	return tree, nil
}

func cleanSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		if cleaned, err := Clean(p); err == nil && cleaned != "" {
			set[cleaned] = true
		}
	}
	return set
}

func ignoredBy(rel string, dirs map[string]bool) bool {
	for dir := range dirs {
		if HasPrefix(rel, dir) {
			return true
		}
	}
	return false
}
