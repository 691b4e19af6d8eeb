package auth

import "example.com/cartonbox/internal/models"

// Permission names an action a role may be allowed to perform
type Permission string

const (
	PermCustomersView   Permission = "customers:view"
	PermCustomersCreate Permission = "customers:create"
	PermCustomersEdit   Permission = "customers:edit"
	PermCustomersDelete Permission = "customers:delete"

	PermOrdersView   Permission = "po:view"
	PermOrdersCreate Permission = "po:create"
	PermOrdersEdit   Permission = "po:edit"
	PermOrdersDelete Permission = "po:delete"

	PermProductionView   Permission = "production:view"
	PermProductionUpdate Permission = "production:update"

	PermDeliveryView   Permission = "delivery:view"
	PermDeliveryCreate Permission = "delivery:create"
	PermDeliveryDelete Permission = "delivery:delete"

	PermUsersManage Permission = "users:manage"
)

var viewerPermissions = []Permission{
	PermCustomersView,
	PermOrdersView,
	PermProductionView,
	PermDeliveryView,
}

var editorPermissions = append([]Permission{
	PermCustomersCreate,
	PermCustomersEdit,
	PermOrdersCreate,
	PermOrdersEdit,
	PermProductionUpdate,
	PermDeliveryCreate,
	PermDeliveryDelete,
}, viewerPermissions...)

var adminPermissions = append([]Permission{
	PermCustomersDelete,
	PermOrdersDelete,
	PermUsersManage,
}, editorPermissions...)

// rolePermissions is resolved once at package init; lookups after that are
// pure map reads.
var rolePermissions = buildRolePermissions()

func buildRolePermissions() map[models.UserRole]map[Permission]struct{} {
	table := map[models.UserRole][]Permission{
		models.RoleAdmin:  adminPermissions,
		models.RoleEditor: editorPermissions,
		models.RoleViewer: viewerPermissions,
	}

	resolved := make(map[models.UserRole]map[Permission]struct{}, len(table))
	for role, perms := range table {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		resolved[role] = set
	}
	return resolved
}

// IsAllowed reports whether the given role holds the given permission.
// Unknown roles hold nothing.
func IsAllowed(role models.UserRole, permission Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = perms[permission]
	return ok
}
