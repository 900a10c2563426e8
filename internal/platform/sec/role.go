// Copyright (c) 2026 Pixagen. All rights reserved.
// Author: dev@pixagen.app

package sec

import "fmt"

// # User Roles

// Role represents the authorization level granted to an account.
//
// It is a closed enumeration: every role stored or carried in a token must be
// one of the three declared values. [ParseRole] is the only way to turn
// untrusted input into a Role.
type Role string

const (
	// Full system access, including user administration
	RoleSuperAdmin Role = "SUPER_ADMIN"

	// Can review generated images and see all sessions
	RoleAdmin Role = "ADMIN"

	// Default role for standard registered accounts
	RoleUser Role = "USER"
)

// Valid reports whether the role is one of the declared enumeration values.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// In reports whether the role is a member of the given permitted set.
//
// # Usage
//
// This is the predicate behind [middleware.RequireRole]; authorization is
// expressed as set membership, not a numeric hierarchy, so a guard can allow
// any combination of roles.
func (r Role) In(permitted ...Role) bool {
	for _, p := range permitted {
		if r == p {
			return true
		}
	}
	return false
}

// ParseRole converts an untrusted string into a [Role].
//
// It returns an error for anything outside the closed enumeration, which
// keeps invalid role values out of the system by construction.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.Valid() {
		return "", fmt.Errorf("sec: unknown role %q", s)
	}
	return role, nil
}
