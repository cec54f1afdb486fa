package deposit

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists deposits. Transitions are single status-guarded
// statements; callers observe a no-op through the returned bool rather than
// an error.
type Repository interface {
	Create(ctx context.Context, userID, amount int64) (Deposit, error)
	Respond(ctx context.Context, depositID, deduction int64, documentation string) (bool, error)
	Settle(ctx context.Context, userID int64, to Status) (bool, error)
	LatestByUser(ctx context.Context, userID int64) (Deposit, error)
}

// PostgresRepository stores deposits in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed deposit repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new pending deposit.
func (r *PostgresRepository) Create(ctx context.Context, userID, amount int64) (Deposit, error) {
	now := time.Now().UTC()
	d := Deposit{
		UserID:    userID,
		Amount:    amount,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := r.db.QueryRow(ctx, `INSERT INTO deposits (user_id, amount, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $4) RETURNING id`,
		userID, amount, string(StatusPending), now).Scan(&d.ID)
	if err != nil {
		return Deposit{}, err
	}
	return d, nil
}

// Respond transitions the identified deposit from pending to responded,
// setting deduction and documentation in the same statement.
func (r *PostgresRepository) Respond(ctx context.Context, depositID, deduction int64, documentation string) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE deposits
        SET status = $1, deduction = $2, documentation = $3, updated_at = $4
        WHERE id = $5 AND status = $6`,
		string(StatusResponded), deduction, documentation, time.Now().UTC(), depositID, string(StatusPending))
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// Settle transitions the user's responded deposit to accepted or disputed.
func (r *PostgresRepository) Settle(ctx context.Context, userID int64, to Status) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE deposits
        SET status = $1, updated_at = $2
        WHERE user_id = $3 AND status = $4`,
		string(to), time.Now().UTC(), userID, string(StatusResponded))
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// LatestByUser returns the most recent deposit for the user.
func (r *PostgresRepository) LatestByUser(ctx context.Context, userID int64) (Deposit, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, amount, status, deduction, documentation, created_at, updated_at
        FROM deposits WHERE user_id = $1 ORDER BY id DESC LIMIT 1`, userID)

	var (
		d      Deposit
		status string
	)
	err := row.Scan(&d.ID, &d.UserID, &d.Amount, &status, &d.Deduction, &d.Documentation, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Deposit{}, ErrNoDeposit
		}
		return Deposit{}, err
	}
	d.Status = Status(status)
	d.CreatedAt = d.CreatedAt.UTC()
	d.UpdatedAt = d.UpdatedAt.UTC()
	return d, nil
}
