package policy

import (
	"path/filepath"

	"github.com/wyd-tools/gamevault/internal/model"
)

// DefaultDocument returns the shipped default policy document for role,
// with every root anchored under gameRoot. Exposed as a named function,
// rather than only wired at construction time, so a host can print or
// diff the shipped default against a customized document.
//
// HasPermission always compares against the Facade's normalized,
// absolute path, so a document's roots must be absolute too — a
// relative root like "Server" never prefix-matches an absolute target
// and would silently deny everything.
func DefaultDocument(role model.Role, gameRoot string) model.PolicyDocument {
	root := anchoredRoot(gameRoot)
	switch role {
	case model.RoleAdmin:
		return model.PolicyDocument{
			AllowedRoots:          []string{root(".")},
			AllowedOperations:     allOperations(),
			IncludeSubdirectories: true,
			DefaultAllow:          true,
		}
	case model.RoleGameMaster:
		return model.PolicyDocument{
			AllowedRoots: []string{root("Server"), root("logs")},
			AllowedOperations: []model.Operation{
				model.OpCreate, model.OpModify, model.OpCopy, model.OpCompile, model.OpDecompile,
			},
			PerPathOverrides: map[string][]model.Operation{
				root("logs"): allOperations(),
			},
			IncludeSubdirectories: true,
			DefaultAllow:          false,
		}
	case model.RoleDeveloper:
		return model.PolicyDocument{
			AllowedRoots:          []string{root(".")},
			DeniedRoots:           []string{root("logs/security")},
			AllowedOperations:     allOperations(),
			IncludeSubdirectories: true,
			DefaultAllow:          false,
		}
	case model.RoleSupport:
		return model.PolicyDocument{
			AllowedRoots: []string{root("logs"), root("client-config")},
			AllowedOperations: []model.Operation{
				model.OpModify, model.OpCopy,
			},
			IncludeSubdirectories: true,
			DefaultAllow:          false,
		}
	case model.RolePlayer:
		return model.PolicyDocument{
			AllowedRoots: []string{root("saved_games"), root("screenshots")},
			AllowedOperations: []model.Operation{
				model.OpCreate, model.OpModify,
			},
			IncludeSubdirectories: true,
			DefaultAllow:          false,
		}
	default:
		return model.PolicyDocument{}
	}
}

// anchoredRoot returns a closure joining a document-relative root
// (including ".") against gameRoot, made absolute first so the result
// always matches the absolute paths the Facade normalizes to.
func anchoredRoot(gameRoot string) func(rel string) string {
	abs, err := filepath.Abs(gameRoot)
	if err != nil {
		abs = gameRoot
	}
	return func(rel string) string {
		return filepath.Clean(filepath.Join(abs, rel))
	}
}

func allOperations() []model.Operation {
	return []model.Operation{
		model.OpCreate, model.OpModify, model.OpDelete, model.OpMove,
		model.OpCopy, model.OpCompile, model.OpDecompile,
	}
}
