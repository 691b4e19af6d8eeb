package auth

import (
	"testing"

	"example.com/cartonbox/internal/models"

	"github.com/stretchr/testify/require"
)

func TestRolePermissions(t *testing.T) {
	cases := []struct {
		role       models.UserRole
		permission Permission
		allowed    bool
	}{
		{models.RoleViewer, PermCustomersView, true},
		{models.RoleViewer, PermDeliveryView, true},
		{models.RoleViewer, PermDeliveryCreate, false},
		{models.RoleViewer, PermProductionUpdate, false},
		{models.RoleViewer, PermUsersManage, false},

		{models.RoleEditor, PermDeliveryCreate, true},
		{models.RoleEditor, PermDeliveryDelete, true},
		{models.RoleEditor, PermProductionUpdate, true},
		{models.RoleEditor, PermCustomersView, true},
		{models.RoleEditor, PermCustomersDelete, false},
		{models.RoleEditor, PermOrdersDelete, false},
		{models.RoleEditor, PermUsersManage, false},

		{models.RoleAdmin, PermCustomersDelete, true},
		{models.RoleAdmin, PermOrdersDelete, true},
		{models.RoleAdmin, PermUsersManage, true},
		{models.RoleAdmin, PermDeliveryView, true},
	}

	for _, tc := range cases {
		got := IsAllowed(tc.role, tc.permission)
		require.Equal(t, tc.allowed, got, "role %s permission %s", tc.role, tc.permission)
	}
}

func TestUnknownRoleHasNoPermissions(t *testing.T) {
	require.False(t, IsAllowed("supervisor", PermCustomersView))
	require.False(t, IsAllowed("", PermCustomersView))
}
