package guard

import (
	"errors"
	"testing"

	"github.com/sethnnections/authkeeper/internal/common"
	"github.com/sethnnections/authkeeper/internal/server/models"
)

func TestPermissionGuard_Check(t *testing.T) {
	g := NewPermissionGuard(models.DefaultRoleRights())

	tests := []struct {
		name     string
		p        Principal
		required []string
		target   string
		wantErr  bool
	}{
		{"admin manages users", Principal{UserID: "a", Role: models.RoleAdmin}, []string{models.RightManageUsers}, "b", false},
		{"user cannot manage others", Principal{UserID: "a", Role: models.RoleUser}, []string{models.RightManageUsers}, "b", true},
		{"user may act on self", Principal{UserID: "a", Role: models.RoleUser}, []string{models.RightManageUsers}, "a", false},
		{"rights must all be held", Principal{UserID: "a", Role: models.RoleAdmin}, []string{models.RightGetUsers, models.RightManageCart}, "", true},
		{"no rights required", Principal{UserID: "a", Role: models.RoleSeller}, nil, "", false},
		{"unknown role has no rights", Principal{UserID: "a", Role: "ghost"}, []string{models.RightGetUsers}, "", true},
		{"empty target is not self", Principal{UserID: "", Role: models.RoleBuyer}, []string{models.RightManageUsers}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.Check(tt.p, tt.required, tt.target)
			if tt.wantErr && !errors.Is(err, common.ErrorForbidden) {
				t.Fatalf("want ErrorForbidden, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestPermissionGuard_CopiesTable(t *testing.T) {
	table := map[string][]string{"editor": {"write"}}
	g := NewPermissionGuard(table)

	table["editor"][0] = "nothing"
	table["intruder"] = []string{"write"}

	if err := g.Check(Principal{Role: "editor"}, []string{"write"}, ""); err != nil {
		t.Fatalf("table mutated through caller's map: %v", err)
	}
	if g.HasRole("intruder") {
		t.Fatal("role added after construction is visible")
	}
	if !g.HasRole("editor") {
		t.Fatal("configured role missing")
	}
}
