package deposit

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	deposits map[int64]Deposit
}

// NewMemoryRepository builds an in-memory deposit store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{deposits: make(map[int64]Deposit)}
}

func (r *memoryRepository) Create(_ context.Context, userID, amount int64) (Deposit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC()
	d := Deposit{
		ID:        r.nextID,
		UserID:    userID,
		Amount:    amount,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.deposits[d.ID] = d
	return d, nil
}

func (r *memoryRepository) Respond(_ context.Context, depositID, deduction int64, documentation string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deposits[depositID]
	if !ok || d.Status != StatusPending {
		return false, nil
	}
	d.Status = StatusResponded
	d.Deduction = &deduction
	d.Documentation = &documentation
	d.UpdatedAt = time.Now().UTC()
	r.deposits[depositID] = d
	return true, nil
}

func (r *memoryRepository) Settle(_ context.Context, userID int64, to Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	applied := false
	for id, d := range r.deposits {
		if d.UserID == userID && d.Status == StatusResponded {
			d.Status = to
			d.UpdatedAt = time.Now().UTC()
			r.deposits[id] = d
			applied = true
		}
	}
	return applied, nil
}

func (r *memoryRepository) LatestByUser(_ context.Context, userID int64) (Deposit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var (
		latest Deposit
		found  bool
	)
	for _, d := range r.deposits {
		if d.UserID == userID && (!found || d.ID > latest.ID) {
			latest = d
			found = true
		}
	}
	if !found {
		return Deposit{}, ErrNoDeposit
	}
	return latest, nil
}
