package policy

import (
	"encoding/json"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wyd-tools/gamevault/internal/errs"
	"github.com/wyd-tools/gamevault/internal/model"
)

// documentJSON is the on-disk shape for a single PolicyDocument: the
// typed Operation slices become their uppercase verb strings, matching
// AuditRecord's own string-operation convention.
type documentJSON struct {
	AllowedRoots          []string            `json:"allowed_roots" yaml:"allowed_roots"`
	DeniedRoots           []string            `json:"denied_roots" yaml:"denied_roots"`
	AllowedExtensions     []string            `json:"allowed_extensions" yaml:"allowed_extensions"`
	DeniedExtensions      []string            `json:"denied_extensions" yaml:"denied_extensions"`
	AllowedOperations     []string            `json:"allowed_operations" yaml:"allowed_operations"`
	PerPathOverrides      map[string][]string `json:"per_path_overrides" yaml:"per_path_overrides"`
	PerExtensionOverrides map[string][]string `json:"per_extension_overrides" yaml:"per_extension_overrides"`
	IncludeSubdirectories bool                `json:"include_subdirectories" yaml:"include_subdirectories"`
	DefaultAllow          bool                `json:"default_allow" yaml:"default_allow"`
}

func toJSON(doc model.PolicyDocument) documentJSON {
	return documentJSON{
		AllowedRoots:          doc.AllowedRoots,
		DeniedRoots:           doc.DeniedRoots,
		AllowedExtensions:     doc.AllowedExtensions,
		DeniedExtensions:      doc.DeniedExtensions,
		AllowedOperations:     opsToStrings(doc.AllowedOperations),
		PerPathOverrides:      overridesToStrings(doc.PerPathOverrides),
		PerExtensionOverrides: overridesToStrings(doc.PerExtensionOverrides),
		IncludeSubdirectories: doc.IncludeSubdirectories,
		DefaultAllow:          doc.DefaultAllow,
	}
}

func fromJSON(j documentJSON) (model.PolicyDocument, error) {
	ops, err := stringsToOps(j.AllowedOperations)
	if err != nil {
		return model.PolicyDocument{}, err
	}
	pathOverrides, err := overridesFromStrings(j.PerPathOverrides)
	if err != nil {
		return model.PolicyDocument{}, err
	}
	extOverrides, err := overridesFromStrings(j.PerExtensionOverrides)
	if err != nil {
		return model.PolicyDocument{}, err
	}
	return model.PolicyDocument{
		AllowedRoots:          j.AllowedRoots,
		DeniedRoots:           j.DeniedRoots,
		AllowedExtensions:     j.AllowedExtensions,
		DeniedExtensions:      j.DeniedExtensions,
		AllowedOperations:     ops,
		PerPathOverrides:      pathOverrides,
		PerExtensionOverrides: extOverrides,
		IncludeSubdirectories: j.IncludeSubdirectories,
		DefaultAllow:          j.DefaultAllow,
	}, nil
}

func opsToStrings(ops []model.Operation) []string {
	out := make([]string, 0, len(ops))
	for _, o := range ops {
		out = append(out, o.String())
	}
	return out
}

func stringsToOps(names []string) ([]model.Operation, error) {
	out := make([]model.Operation, 0, len(names))
	for _, n := range names {
		op, ok := model.ParseOperation(n)
		if !ok {
			return nil, errs.New(errs.CodeRegistryCorruption, "policy: unknown operation name %q", n)
		}
		out = append(out, op)
	}
	return out, nil
}

func overridesToStrings(in map[string][]model.Operation) map[string][]string {
	if in == nil {
		return nil
	}
	out := make(map[string][]string, len(in))
	for k, ops := range in {
		out[k] = opsToStrings(ops)
	}
	return out
}

func overridesFromStrings(in map[string][]string) (map[string][]model.Operation, error) {
	if in == nil {
		return nil, nil
	}
	out := make(map[string][]model.Operation, len(in))
	for k, names := range in {
		ops, err := stringsToOps(names)
		if err != nil {
			return nil, err
		}
		out[k] = ops
	}
	return out, nil
}

// Save writes every configured document to path as a JSON object keyed
// by role ordinal.
func (e *Engine) Save(path string) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]documentJSON, len(e.docs))
	for role, doc := range e.docs {
		out[strconv.Itoa(int(role))] = toJSON(doc)
	}
	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return errs.Wrap(errs.CodeRegistryCorruption, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errs.Wrap(errs.CodeWriteFailure, err)
	}
	return nil
}

// Load replaces every configured document with the contents of path.
func (e *Engine) Load(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errs.Wrap(errs.CodeRegistryCorruption, err)
	}
	var in map[string]documentJSON
	if err := json.Unmarshal(raw, &in); err != nil {
		return errs.Wrap(errs.CodeRegistryCorruption, err)
	}

	docs := make(map[model.Role]model.PolicyDocument, len(in))
	for key, j := range in {
		ordinal, err := strconv.Atoi(key)
		if err != nil {
			return errs.New(errs.CodeRegistryCorruption, "policy: non-numeric role key %q", key)
		}
		doc, err := fromJSON(j)
		if err != nil {
			return err
		}
		docs[model.Role(ordinal)] = doc
	}

	e.mu.Lock()
	e.docs = docs
	e.mu.Unlock()
	return nil
}

// SaveYAML writes every configured document as a YAML document keyed by
// role name, an alternate persisted format for hosts that prefer
// human-editable config over the JSON default.
func (e *Engine) SaveYAML(path string) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]documentJSON, len(e.docs))
	for role, doc := range e.docs {
		out[role.String()] = toJSON(doc)
	}
	raw, err := yaml.Marshal(out)
	if err != nil {
		return errs.Wrap(errs.CodeRegistryCorruption, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errs.Wrap(errs.CodeWriteFailure, err)
	}
	return nil
}

// LoadYAML replaces every configured document with the contents of a
// SaveYAML-produced file.
func (e *Engine) LoadYAML(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errs.Wrap(errs.CodeRegistryCorruption, err)
	}
	var in map[string]documentJSON
	if err := yaml.Unmarshal(raw, &in); err != nil {
		return errs.Wrap(errs.CodeRegistryCorruption, err)
	}

	docs := make(map[model.Role]model.PolicyDocument, len(in))
	for name, j := range in {
		role := model.ParseRole(name)
		doc, err := fromJSON(j)
		if err != nil {
			return err
		}
		docs[role] = doc
	}

	e.mu.Lock()
	e.docs = docs
	e.mu.Unlock()
	return nil
}
