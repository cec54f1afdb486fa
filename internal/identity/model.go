package identity

import (
	"fmt"
	"time"
)

// Role determines which deposit operations a user may invoke.
type Role string

const (
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
	RoleAgent    Role = "agent"
)

// ParseRole validates a role string supplied at registration.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleTenant, RoleLandlord, RoleAgent:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User represents a registered account. Users are immutable after creation
// and are never deleted.
type User struct {
	ID           int64
	Email        string
	Role         Role
	PasswordHash []byte
	CreatedAt    time.Time
}

// Credentials carries a registration or login request.
type Credentials struct {
	Email    string
	Password string
	Role     string
}
