// Package files implements the three path-confined filesystem tools:
// read, write, and list.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver canonicalizes a workspace-relative (or absolute) path and
// checks it for containment within Root. If Root is empty, any path
// resolves — tools configured without a workspace root are unconfined.
type Resolver struct {
	Root string
}

// Resolve returns the canonical absolute path for rel, or an error in the
// exact "Path '<canon>' is outside the workspace root '<root>'" form the
// tool-execution contract requires on containment failure.
//
// Canonicalization walks up to the nearest existing ancestor (so a path
// that doesn't exist yet, e.g. a write target, still resolves through any
// real symlinks in its parent directories) and re-appends the tail.
func (r Resolver) Resolve(rel string) (string, error) {
	clean := strings.TrimSpace(rel)
	if clean == "" {
		return "", fmt.Errorf("path is required")
	}
	if r.Root == "" {
		return r.canonicalize(clean)
	}

	rootCanon, err := r.canonicalize(r.Root)
	if err != nil {
		return "", fmt.Errorf("resolve workspace root: %w", err)
	}

	var target string
	if filepath.IsAbs(clean) {
		target = filepath.Clean(clean)
	} else {
		target = filepath.Join(rootCanon, clean)
	}

	targetCanon, err := r.canonicalize(target)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}

	if !within(rootCanon, targetCanon) {
		return "", fmt.Errorf("Path '%s' is outside the workspace root '%s'", targetCanon, rootCanon)
	}
	return targetCanon, nil
}

// canonicalize resolves path to an absolute, symlink-free form by walking
// up to the nearest ancestor that exists, resolving that ancestor with
// filepath.EvalSymlinks, and re-joining the non-existent tail.
func (r Resolver) canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	var tail []string
	cur := abs
	for {
		if _, err := os.Lstat(cur); err == nil {
			real, err := filepath.EvalSymlinks(cur)
			if err != nil {
				return "", err
			}
			for i := len(tail) - 1; i >= 0; i-- {
				real = filepath.Join(real, tail[i])
			}
			return real, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			// reached filesystem root without finding an existing ancestor
			for i := len(tail) - 1; i >= 0; i-- {
				abs = filepath.Join(abs, tail[i])
			}
			return abs, nil
		}
		tail = append(tail, filepath.Base(cur))
		cur = parent
	}
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return false
	}
	return true
}
