// Package deposit implements the tenancy deposit refund lifecycle. A deposit
// moves through pending → responded → accepted/disputed; accepted and
// disputed are terminal. Deduction and documentation are set exactly once,
// atomically with the pending → responded transition.
package deposit

import (
	"errors"
	"time"

	"github.com/depositflow/depositflow/internal/identity"
)

// Status is the lifecycle state of a deposit refund claim.
type Status string

const (
	StatusPending   Status = "pending"
	StatusResponded Status = "responded"
	StatusAccepted  Status = "accepted"
	StatusDisputed  Status = "disputed"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusDisputed
}

var (
	// ErrNotAllowed indicates the caller's role does not permit the operation.
	ErrNotAllowed = errors.New("operation not allowed for role")

	// ErrNoPendingDeposit indicates respond found no pending deposit with the
	// given id, so no transition occurred.
	ErrNoPendingDeposit = errors.New("no pending deposit")

	// ErrNoDeposit indicates the user has no deposit on record.
	ErrNoDeposit = errors.New("no deposit found")
)

// Deposit is a refund claim tracked through the status lifecycle. Amounts
// are in minor currency units.
type Deposit struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Amount        int64     `json:"amount"`
	Status        Status    `json:"status"`
	Deduction     *int64    `json:"deduction,omitempty"`
	Documentation *string   `json:"documentation,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StatusView pairs the caller identity with their latest deposit, if any.
type StatusView struct {
	Email   string        `json:"email"`
	Role    identity.Role `json:"role"`
	Deposit *Deposit      `json:"deposit,omitempty"`
}
