package models

import (
	"fmt"
	"strings"
)

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin   RoleType = "ADMIN"
	RoleStudent RoleType = "STUDENT"
	RoleFaculty RoleType = "FACULTY"
)

// ParseRoleType converts a wire/file token into a RoleType
func ParseRoleType(s string) (RoleType, error) {
	switch RoleType(strings.ToUpper(s)) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleStudent:
		return RoleStudent, nil
	case RoleFaculty:
		return RoleFaculty, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User defines a portal account. Accounts are never physically removed;
// deactivation stands in for deletion.
type User struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Password string   `json:"-"`
	Role     RoleType `json:"role"`
	Active   bool     `json:"active"`
}
