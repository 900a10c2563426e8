// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixagen/pixagen/internal/platform/sec"
)

/*
TestParseRole checks the closed enumeration: only the three declared values
parse, everything else is rejected.
*/
func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    sec.Role
		wantErr bool
	}{
		{"super_admin", "SUPER_ADMIN", sec.RoleSuperAdmin, false},
		{"admin", "ADMIN", sec.RoleAdmin, false},
		{"user", "USER", sec.RoleUser, false},
		{"lowercase_rejected", "admin", "", true},
		{"unknown_rejected", "MODERATOR", "", true},
		{"empty_rejected", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := sec.ParseRole(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}

/*
TestRole_In verifies authorization as set membership.
*/
func TestRole_In(t *testing.T) {
	assert.True(t, sec.RoleAdmin.In(sec.RoleAdmin, sec.RoleSuperAdmin))
	assert.True(t, sec.RoleSuperAdmin.In(sec.RoleSuperAdmin))
	assert.False(t, sec.RoleUser.In(sec.RoleAdmin, sec.RoleSuperAdmin))
	assert.False(t, sec.RoleUser.In())
}
