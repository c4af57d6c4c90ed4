// Package entity contains the core business objects of the project.
package entity

// Role represents the type of role an account can have in the system.
type Role string

const (
	// RoleAdmin indicates the system administrator role.
	RoleAdmin Role = "admin"
	// RoleMerchant indicates a merchant role.
	RoleMerchant Role = "merchant"
	// RoleMember indicates a regular member role.
	RoleMember Role = "member"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleMerchant, RoleMember:
		return true
	default:
		return false
	}
}
