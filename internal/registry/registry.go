// Package registry maps file extensions, content signatures and
// well-known filenames to a known format descriptor.
//
// Detectors are registered one per BinaryKind at startup; custom
// detectors registered later take precedence over a built-in with the
// same key.
package registry

import (
	"bytes"
	"strings"

	"github.com/gobwas/glob"

	"github.com/wyd-tools/gamevault/internal/model"
)

// namePattern is a well-known filename detection rule.
// Patterns containing glob metacharacters are compiled with
// github.com/gobwas/glob; plain names are compared case-insensitively.
type namePattern struct {
	pattern string
	g       glob.Glob // nil for a plain literal name
	desc    model.FormatDescriptor
}

type sigEntry struct {
	sig  []byte
	desc model.FormatDescriptor
}

// Registry holds registered format descriptors and answers lookups by
// extension, signature and filename pattern.
type Registry struct {
	byExt   map[string]model.FormatDescriptor
	byName  []namePattern // evaluated newest-first, so later registrations win
	bySig   []sigEntry
}

// New returns a Registry pre-populated with the built-in descriptors for
// the known game-data and text formats.
func New() *Registry {
	r := &Registry{byExt: map[string]model.FormatDescriptor{}}
	registerBuiltins(r)
	return r
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// RegisterExtension maps ext to desc. A later call with the same ext
// overrides the earlier one — this is how runtime-registered descriptors
// take precedence over built-ins.
func (r *Registry) RegisterExtension(ext string, desc model.FormatDescriptor) {
	r.byExt[normalizeExt(ext)] = desc
}

// RegisterSignature registers a byte-signature match. Signatures are
// tried newest-first, so runtime additions can shadow built-ins.
func (r *Registry) RegisterSignature(sig []byte, desc model.FormatDescriptor) {
	r.bySig = append([]sigEntry{{sig: sig, desc: desc}}, r.bySig...)
}

// RegisterNamePattern registers a well-known filename rule, e.g.
// "ItemList.bin" or a glob like "Item*.bin". Later registrations are
// tried first.
func (r *Registry) RegisterNamePattern(pattern string, desc model.FormatDescriptor) {
	np := namePattern{pattern: pattern, desc: desc}
	if strings.ContainsAny(pattern, "*?[]{}") {
		if g, err := glob.Compile(pattern); err == nil {
			np.g = g
		}
	}
	r.byName = append([]namePattern{np}, r.byName...)
}

// LookupByExtension returns the descriptor registered for ext, if any.
func (r *Registry) LookupByExtension(ext string) (model.FormatDescriptor, bool) {
	d, ok := r.byExt[normalizeExt(ext)]
	return d, ok
}

// LookupBySignature returns the first descriptor whose signature matches
// the start of header.
func (r *Registry) LookupBySignature(header []byte) (model.FormatDescriptor, bool) {
	for _, e := range r.bySig {
		if len(e.sig) > 0 && bytes.HasPrefix(header, e.sig) {
			return e.desc, true
		}
	}
	return model.FormatDescriptor{}, false
}

// Detect runs the ordered detection policy: (1) filename pattern,
// (2) extension, (3) signature. Structural heuristics are the binary
// analyzer's responsibility and are not attempted here.
func (r *Registry) Detect(path string, header []byte) (model.FormatDescriptor, bool) {
	base := baseName(path)
	for _, np := range r.byName {
		if np.g != nil {
			if np.g.Match(base) {
				return np.desc, true
			}
			continue
		}
		if strings.EqualFold(np.pattern, base) {
			return np.desc, true
		}
	}

	if ext := extOf(base); ext != "" {
		if d, ok := r.LookupByExtension(ext); ok {
			return d, true
		}
	}

	if d, ok := r.LookupBySignature(header); ok {
		return d, true
	}

	return model.FormatDescriptor{}, false
}

func baseName(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

func extOf(base string) string {
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return strings.ToLower(base[i:])
	}
	return ""
}
