// SPDX-License-Identifier: Apache-2.0
package storepath

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// SecretSuffix is appended to a store path to form its on-disk secret file
const SecretSuffix = ".gpg"

// GitDir is the version control directory some stores carry; it is never enumerated
const GitDir = ".git"

// ErrInvalidPath is returned for paths that resolve outside the store root
var ErrInvalidPath = errors.New("invalid store path")

// NodeKind describes what exists on disk at a store path
type NodeKind int

const (
	KindNone NodeKind = iota
	KindSecret
	KindFolder
	KindBoth // a folder and a secret share the name
)

func (k NodeKind) String() string {
	switch k {
	case KindSecret:
		return "secret"
	case KindFolder:
		return "folder"
	case KindBoth:
		return "secret+folder"
	default:
		return "none"
	}
}

// HasSecret reports whether a secret exists at the path
func (k NodeKind) HasSecret() bool {
	return k == KindSecret || k == KindBoth
}

// HasFolder reports whether a folder exists at the path
func (k NodeKind) HasFolder() bool {
	return k == KindFolder || k == KindBoth
}

// Resolver maps store paths ("site/login") to absolute filesystem paths
// under a fixed root. Store paths always use forward slashes.
type Resolver struct {
	root string
}

// New returns a resolver anchored at root
func New(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve store root %s: %w", root, err)
	}
	return &Resolver{root: abs}, nil
}

// Root returns the absolute store root
func (r *Resolver) Root() string {
	return r.root
}

// Clean normalizes a store path. "" and "." denote the root.
func Clean(rel string) (string, error) {
	rel = strings.ReplaceAll(rel, `\`, "/")
	if path.IsAbs(rel) {
		return "", fmt.Errorf("%w: %q is absolute", ErrInvalidPath, rel)
	}

	cleaned := path.Clean(rel)
	if cleaned == "." {
		return "", nil
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q escapes the store root", ErrInvalidPath, rel)
	}
	return cleaned, nil
}

// Abs returns the absolute path of the folder or node at rel
func (r *Resolver) Abs(rel string) (string, error) {
	cleaned, err := Clean(rel)
	if err != nil {
		return "", err
	}
	return filepath.Join(r.root, filepath.FromSlash(cleaned)), nil
}

// SecretPath returns the absolute path of the secret file for rel
func (r *Resolver) SecretPath(rel string) (string, error) {
	cleaned, err := Clean(rel)
	if err != nil {
		return "", err
	}
	if cleaned == "" {
		return "", fmt.Errorf("%w: the store root is not a secret", ErrInvalidPath)
	}
	return filepath.Join(r.root, filepath.FromSlash(cleaned)) + SecretSuffix, nil
}

// Rel converts an absolute path under the root into a store path
func (r *Resolver) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(r.root, filepath.Clean(abs))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	return Clean(filepath.ToSlash(rel))
}

// SecretRel converts an absolute secret file path into its store path
func (r *Resolver) SecretRel(abs string) (string, error) {
	if !strings.HasSuffix(abs, SecretSuffix) {
		return "", fmt.Errorf("%w: %s is not a secret file", ErrInvalidPath, abs)
	}
	return r.Rel(strings.TrimSuffix(abs, SecretSuffix))
}

// Kind reports whether rel exists as a secret, a folder, both or neither
func (r *Resolver) Kind(rel string) NodeKind {
	dir, err := r.Abs(rel)
	if err != nil {
		return KindNone
	}

	isDir := false
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		isDir = true
	}

	isSecret := false
	if secret, err := r.SecretPath(rel); err == nil {
		if info, err := os.Stat(secret); err == nil && info.Mode().IsRegular() {
			isSecret = true
		}
	}

	switch {
	case isDir && isSecret:
		return KindBoth
	case isDir:
		return KindFolder
	case isSecret:
		return KindSecret
	}
	return KindNone
}

// Parent returns the parent store path and base name of rel
func Parent(rel string) (string, string) {
	dir, base := path.Split(rel)
	return strings.TrimSuffix(dir, "/"), base
}

// Join joins store path elements
func Join(elem ...string) string {
	joined := path.Join(elem...)
	if joined == "." {
		return ""
	}
	return joined
}

// HasPrefix reports whether rel equals prefix or lies beneath it
func HasPrefix(rel, prefix string) bool {
	if prefix == "" {
		return true
	}
	return rel == prefix || strings.HasPrefix(rel, prefix+"/")
}

// taken reports whether name collides with anything in dir, as a folder or as a secret
func taken(dir, name, suffix string) bool {
	candidates := []string{filepath.Join(dir, name)}
	if suffix != "" {
		candidates = append(candidates, filepath.Join(dir, name+suffix))
	}
	for _, c := range candidates {
		if _, err := os.Lstat(c); err == nil || !os.IsNotExist(err) {
			return true
		}
	}
	return false
}

// NewUniqueName returns the first of base, base_1, base_2, ... that is free in dir.
// The returned path includes suffix.
func NewUniqueName(dir, base, suffix string) (string, string) {
	name := base
	for i := 1; taken(dir, name, suffix); i++ {
		name = base + "_" + strconv.Itoa(i)
	}
	return filepath.Join(dir, name+suffix), name
}

var copySuffix = regexp.MustCompile(`^(.*)_(\d+)$`)

// NextCopyName derives a duplicate name: a trailing _N is incremented until
// free, otherwise _1, _2, ... is appended
func NextCopyName(dir, name, suffix string) (string, string) {
	base, n := name, 1
	if m := copySuffix.FindStringSubmatch(name); m != nil {
		if parsed, err := strconv.Atoi(m[2]); err == nil {
			base, n = m[1], parsed+1
		}
	}

	candidate := base + "_" + strconv.Itoa(n)
	for taken(dir, candidate, suffix) {
		n++
		candidate = base + "_" + strconv.Itoa(n)
	}
	return filepath.Join(dir, candidate+suffix), candidate
}
