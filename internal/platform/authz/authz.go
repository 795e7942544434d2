// Package authz decides which reporter roles may call which operations.
package authz

import (
	"embed"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/casbin/casbin/v3"
)

//go:embed model.conf policy.csv
var embedFS embed.FS

// RoleAuthority is granted to API key holders. It is not a reporter role.
const RoleAuthority = "authority"

type Action string

const (
	ActionSubmit       Action = "submit"
	ActionAnalyze      Action = "analyze"
	ActionStats        Action = "stats"
	ActionRead         Action = "read"
	ActionExport       Action = "export"
	ActionUpdateStatus Action = "update_status"
)

type Enforcer struct {
	e *casbin.Enforcer
}

// NewEnforcer loads the embedded role model and policy.
func NewEnforcer() (*Enforcer, error) {
	dir, err := os.MkdirTemp("", "billboard-casbin-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	for _, name := range []string{"model.conf", "policy.csv"} {
		data, err := embedFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0600); err != nil {
			return nil, err
		}
	}

	e, err := casbin.NewEnforcer(filepath.Join(dir, "model.conf"), filepath.Join(dir, "policy.csv"))
	if err != nil {
		return nil, fmt.Errorf("authz: failed to load policy: %w", err)
	}
	return &Enforcer{e: e}, nil
}

// Allowed reports whether role may perform action. Errors deny.
func (e *Enforcer) Allowed(role string, action Action) bool {
	ok, err := e.e.Enforce(role, string(action))
	if err != nil {
		log.Printf("❌ [authz] role=%s action=%s: %v", role, action, err)
		return false
	}
	return ok
}
