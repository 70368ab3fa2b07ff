package permissions_test

import (
	"net/http"
	"testing"

	"lodge/permissions"
	"lodge/shared/constant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)
	assert.False(t, data.Skip)
	assert.NotEmpty(t, data.Endpoints)
}

func TestPermissionData_FindPermissions(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	tests := []struct {
		name     string
		path     string
		method   string
		skip     bool
		hasRoles []string
	}{
		{name: "public search", path: "/v1/search/properties", method: http.MethodGet, skip: true},
		{name: "public property page", path: "/v1/properties/slug/{slug}", method: http.MethodGet, skip: true},
		{name: "login", path: "/v1/auth/login", method: http.MethodPost, skip: true},
		{name: "property creation is admin only", path: "/v1/properties/", method: http.MethodPost, hasRoles: []string{constant.RoleAdmin}},
		{name: "image upload is admin only", path: "/v1/images/", method: http.MethodPost, hasRoles: []string{constant.RoleAdmin}},
		{name: "change password for every role", path: "/v1/auth/change-password", method: http.MethodPost, hasRoles: []string{constant.RoleAdmin, constant.RoleCabinOwner, constant.RoleRegular}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			permission := data.FindPermissions(tt.path, tt.method)

			assert.Equal(t, tt.skip, permission.Skip)
			assert.ElementsMatch(t, tt.hasRoles, permission.Permissions)
		})
	}

	t.Run("unknown endpoint", func(t *testing.T) {
		permission := data.FindPermissions("/v1/unknown", http.MethodGet)

		assert.Equal(t, permissions.Permission{}, permission)
	})
}

func TestPermission_Allows(t *testing.T) {
	assert.True(t, permissions.Permission{Skip: true}.Allows(""))
	assert.True(t, permissions.Permission{}.Allows(constant.RoleRegular))
	assert.True(t, permissions.Permission{Permissions: []string{constant.RoleAdmin}}.Allows(constant.RoleAdmin))
	assert.False(t, permissions.Permission{Permissions: []string{constant.RoleAdmin}}.Allows(constant.RoleRegular))
}

func TestPermissionData_FindPermissionsWithoutIndex(t *testing.T) {
	data := &permissions.PermissionData{Endpoints: []permissions.Permission{
		{Path: "/v1/rooms/", Method: http.MethodPost, Permissions: []string{constant.RoleAdmin}},
	}}

	assert.Equal(t, []string{constant.RoleAdmin}, data.FindPermissions("/v1/rooms/", "post").Permissions)
}
