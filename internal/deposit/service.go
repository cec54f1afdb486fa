package deposit

import (
	"context"
	"errors"
	"fmt"

	"github.com/depositflow/depositflow/internal/identity"
	"github.com/depositflow/depositflow/internal/notification"
	"github.com/depositflow/depositflow/internal/session"
)

// Service applies role authorization and drives the deposit state machine.
type Service struct {
	repo     Repository
	notifier notification.Notifier
}

// NewService builds a deposit service instance.
func NewService(repo Repository, notifier notification.Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// RequestRefund creates a pending deposit for the calling tenant. The amount
// is accepted as-is; no sign or range validation is applied.
func (s *Service) RequestRefund(ctx context.Context, sess session.Session, amount int64) (Deposit, error) {
	if sess.Role != identity.RoleTenant {
		return Deposit{}, ErrNotAllowed
	}

	d, err := s.repo.Create(ctx, sess.UserID, amount)
	if err != nil {
		return Deposit{}, fmt.Errorf("create deposit: %w", err)
	}
	return d, nil
}

// Respond transitions the identified pending deposit to responded, recording
// the deduction and documentation reference in the same statement.
func (s *Service) Respond(ctx context.Context, sess session.Session, depositID, deduction int64, documentationRef string) error {
	if sess.Role != identity.RoleLandlord && sess.Role != identity.RoleAgent {
		return ErrNotAllowed
	}

	ok, err := s.repo.Respond(ctx, depositID, deduction, documentationRef)
	if err != nil {
		return fmt.Errorf("respond to deposit: %w", err)
	}
	if !ok {
		return ErrNoPendingDeposit
	}

	s.notify(ctx, notification.KindDepositResponded, sess.Email,
		fmt.Sprintf("deposit %d responded with deduction %d", depositID, deduction))
	return nil
}

// Accept moves the caller's responded deposit to accepted. A deposit not in
// the responded state is left untouched; repeated calls are no-ops.
func (s *Service) Accept(ctx context.Context, sess session.Session) error {
	return s.settle(ctx, sess, StatusAccepted, notification.KindDepositAccepted)
}

// Dispute moves the caller's responded deposit to disputed, same contract as Accept.
func (s *Service) Dispute(ctx context.Context, sess session.Session) error {
	return s.settle(ctx, sess, StatusDisputed, notification.KindDepositDisputed)
}

func (s *Service) settle(ctx context.Context, sess session.Session, to Status, kind string) error {
	if sess.Role != identity.RoleTenant {
		return ErrNotAllowed
	}

	applied, err := s.repo.Settle(ctx, sess.UserID, to)
	if err != nil {
		return fmt.Errorf("settle deposit: %w", err)
	}
	if applied {
		s.notify(ctx, kind, sess.Email, fmt.Sprintf("deposit for user %d now %s", sess.UserID, to))
	}
	return nil
}

// Status returns the caller's latest deposit together with their identity.
// A user without a deposit gets a view with a nil deposit.
func (s *Service) Status(ctx context.Context, sess session.Session) (StatusView, error) {
	view := StatusView{Email: sess.Email, Role: sess.Role}

	d, err := s.repo.LatestByUser(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, ErrNoDeposit) {
			return view, nil
		}
		return StatusView{}, fmt.Errorf("fetch deposit: %w", err)
	}
	view.Deposit = &d
	return view, nil
}

func (s *Service) notify(ctx context.Context, kind, destination, body string) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Send(ctx, notification.Message{Kind: kind, Destination: destination, Body: body})
}
