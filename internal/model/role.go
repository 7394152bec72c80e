package model

import "fmt"

// Role is the closed set of user roles. Adding a role is a compile-time
// checked change: every switch over Role below must be extended.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
	RolePatient      Role = "patient"
)

// AllRoles lists every valid role.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleDoctor, RoleReceptionist, RolePatient}
}

// ParseRole converts an untrusted string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleDoctor:
		return RoleDoctor, nil
	case RoleReceptionist:
		return RoleReceptionist, nil
	case RolePatient:
		return RolePatient, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether the role is one of the four enumerated values.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// IsStaff reports whether the role belongs to hospital staff.
func (r Role) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleReceptionist:
		return true
	case RolePatient:
		return false
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}
