package guard

import (
	"github.com/sethnnections/authkeeper/internal/common"
)

// PermissionGuard holds the role table. It is copied on construction and has
// no mutators, so it is safe to share between goroutines.
type PermissionGuard struct {
	rights map[string]map[string]struct{}
}

func NewPermissionGuard(roles map[string][]string) *PermissionGuard {
	g := &PermissionGuard{rights: make(map[string]map[string]struct{}, len(roles))}
	for role, rights := range roles {
		set := make(map[string]struct{}, len(rights))
		for _, r := range rights {
			set[r] = struct{}{}
		}
		g.rights[role] = set
	}
	return g
}

func (g *PermissionGuard) HasRole(role string) bool {
	_, ok := g.rights[role]
	return ok
}

// Check passes when the principal's role grants every required right, or
// when the request targets the principal's own user id. Unknown roles have
// no rights.
func (g *PermissionGuard) Check(p Principal, required []string, targetUserID string) error {
	if targetUserID != "" && targetUserID == p.UserID {
		return nil
	}

	granted := g.rights[p.Role]
	for _, r := range required {
		if _, ok := granted[r]; !ok {
			return common.ErrorForbidden
		}
	}
	return nil
}
