package domain

import (
	"fmt"
	"slices"
)

// Role is a closed enumeration of account roles. Adding a role means adding a
// constant here and listing it in validRoles; nothing else in the codebase
// compares raw role strings.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// DefaultRole is assigned at registration.
const DefaultRole = RoleUser

var validRoles = []Role{RoleUser, RoleAdmin}

// ParseRole validates a stored or transmitted role string.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !slices.Contains(validRoles, r) {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Satisfies reports whether r is a member of the allowed set. There is no
// hierarchy: ADMIN does not satisfy a USER requirement unless listed.
func (r Role) Satisfies(allowed ...Role) bool {
	return slices.Contains(allowed, r)
}

// String returns the wire form of the role.
func (r Role) String() string { return string(r) }

// RoleStrings converts roles to their wire form, for handing to guards that
// operate on strings.
func RoleStrings(roles ...Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = r.String()
	}
	return out
}
