package models

// Role names.
const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleBuyer     = "buyer"
	RoleSeller    = "seller"
	RoleModerator = "moderator"
)

// Rights.
const (
	RightGetUsers       = "getUsers"
	RightManageSelf     = "manageSelf"
	RightManageUsers    = "manageUsers"
	RightManageRoles    = "manageRoles"
	RightGetProducts    = "getProducts"
	RightManageCart     = "manageCart"
	RightManageProducts = "manageProducts"
	RightManageContent  = "manageContent"
)

// DefaultRoleRights returns a fresh copy of the built-in role table.
func DefaultRoleRights() map[string][]string {
	return map[string][]string{
		RoleUser:      {RightGetUsers, RightManageSelf},
		RoleAdmin:     {RightGetUsers, RightManageUsers, RightManageRoles},
		RoleBuyer:     {RightGetProducts, RightManageCart},
		RoleSeller:    {RightManageProducts},
		RoleModerator: {RightManageContent},
	}
}
