package auth

import "strings"

// Role identifies the kind of account a session belongs to.
type Role string

// The two roles the portal knows about.
const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
)

// ParseRole normalises a raw role string. The second return value is
// false for anything other than the two known roles.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleStudent:
		return RoleStudent, true
	case RoleTutor:
		return RoleTutor, true
	default:
		return "", false
	}
}

func (r Role) String() string { return string(r) }
