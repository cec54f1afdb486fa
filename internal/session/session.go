// Package session provides the per-request identity context. A session is
// created once at login, stored server-side in Redis under an opaque token,
// and passed explicitly to every service operation.
package session

import (
	"time"

	"github.com/depositflow/depositflow/internal/identity"
)

// Session identifies an authenticated caller.
type Session struct {
	Token     string        `json:"-"`
	UserID    int64         `json:"user_id"`
	Email     string        `json:"email"`
	Role      identity.Role `json:"role"`
	CreatedAt time.Time     `json:"created_at"`
}
