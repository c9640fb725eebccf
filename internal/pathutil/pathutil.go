// Package pathutil resolves and canonicalizes every incoming path
// relative to the configured game root, rejecting anything that would
// escape it. The existing part of the path is resolved against the real
// filesystem, segment by exact name, following symlinks; the first
// missing segment and everything after it are kept verbatim so a Create
// call can name a file that does not exist yet.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/wyd-tools/gamevault/internal/errs"
)

// Normalized is an absolute, canonicalized path guaranteed to lie under
// its configured root. It is constructed per request and discarded
// after use; it carries no behavior of its own.
type Normalized struct {
	root string
	abs  string
}

// String returns the absolute on-disk path.
func (n Normalized) String() string { return n.abs }

// Root returns the game root this path was normalized against.
func (n Normalized) Root() string { return n.root }

// Normalize resolves raw (absolute or relative to root) against root,
// lexically canonicalizes it, resolves symlinks when the target exists,
// and verifies the result stays under root.
//
// Fails with errs.CodeEscapesRoot if the final path is not contained in
// root; fails with errs.CodeInvalidPath for NUL bytes or other
// unresolvable inputs.
func Normalize(root, raw string) (Normalized, error) {
	cleanRoot, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return Normalized{}, errs.Wrap(errs.CodeInvalidPath, err)
	}

	if strings.IndexByte(raw, 0) >= 0 {
		return Normalized{}, errs.New(errs.CodeInvalidPath, "path contains NUL byte: %q", raw)
	}

	joined := raw
	if !filepath.IsAbs(joined) {
		joined = filepath.Join(cleanRoot, joined)
	}
	joined = filepath.Clean(joined)

	resolved, err := resolveExistingPrefix(joined)
	if err != nil {
		return Normalized{}, errs.Wrap(errs.CodeInvalidPath, err)
	}

	if !isUnder(resolved, cleanRoot) {
		return Normalized{}, errs.New(errs.CodeEscapesRoot, "path %q escapes root %q", raw, cleanRoot)
	}

	return Normalized{root: cleanRoot, abs: resolved}, nil
}

// resolveExistingPrefix walks p from the root down, resolving symlinks
// for every segment that exists, and keeps the first missing segment
// (and everything after it) verbatim — this is what lets Create target a
// path that does not exist yet while still confining existing ancestors.
func resolveExistingPrefix(p string) (string, error) {
	vol := filepath.VolumeName(p)
	rest := strings.TrimPrefix(p[len(vol):], string(filepath.Separator))
	segs := strings.Split(rest, string(filepath.Separator))

	cur := vol + string(filepath.Separator)
	for i, seg := range segs {
		if seg == "" {
			continue
		}
		next := filepath.Join(cur, seg)
		fi, err := os.Lstat(next)
		if err != nil {
			if os.IsNotExist(err) {
				// Rest of the path (this segment onward) does not exist yet:
				// join it verbatim, as required for Create targets.
				return filepath.Join(cur, filepath.Join(segs[i:]...)), nil
			}
			return "", err
		}
		if fi.Mode()&os.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(next)
			if err != nil {
				return "", err
			}
			next = target
		}
		cur = next
	}
	return cur, nil
}

func isUnder(p, root string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != "..")
}

// IsUnder reports whether normalized lies under root.
func IsUnder(normalized Normalized, root string) bool {
	cleanRoot, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return false
	}
	return isUnder(normalized.abs, cleanRoot)
}

// RelativeToRoot returns the path of normalized relative to its root,
// using forward slashes regardless of platform.
func RelativeToRoot(normalized Normalized) string {
	rel, err := filepath.Rel(normalized.root, normalized.abs)
	if err != nil {
		return normalized.abs
	}
	return filepath.ToSlash(rel)
}
