package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"ridehail/internal/domain"
	"ridehail/internal/repository"
)

// CaptainRepository is a PostgreSQL implementation of repository.CaptainRepository.
type CaptainRepository struct {
	q Querier
}

// NewCaptainRepository creates a new PostgreSQL captain repository.
func NewCaptainRepository(db *sql.DB) *CaptainRepository {
	return &CaptainRepository{q: db}
}

// NewCaptainRepositoryWithTx creates a captain repository using a transaction.
func NewCaptainRepositoryWithTx(tx *sql.Tx) *CaptainRepository {
	return &CaptainRepository{q: tx}
}

const captainColumns = `id, name, phone, vehicle_type, COALESCE(plate, ''), status, COALESCE(socket_id, ''), earnings, created_at`

// Create adds a new captain.
func (r *CaptainRepository) Create(ctx context.Context, captain *domain.Captain) error {
	query := `
		INSERT INTO captains (id, name, phone, vehicle_type, plate, status, earnings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.q.ExecContext(ctx, query,
		captain.ID,
		captain.Name,
		captain.Phone,
		captain.VehicleType,
		nullString(captain.Plate),
		captain.Status,
		captain.Earnings,
		captain.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a captain by ID.
func (r *CaptainRepository) GetByID(ctx context.Context, id string) (*domain.Captain, error) {
	query := `SELECT ` + captainColumns + ` FROM captains WHERE id = $1`
	return scanCaptain(r.q.QueryRowContext(ctx, query, id))
}

// GetByPhone retrieves a captain by phone number.
func (r *CaptainRepository) GetByPhone(ctx context.Context, phone string) (*domain.Captain, error) {
	query := `SELECT ` + captainColumns + ` FROM captains WHERE phone = $1`
	return scanCaptain(r.q.QueryRowContext(ctx, query, phone))
}

// GetByIDs retrieves the captains that exist among ids.
func (r *CaptainRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Captain, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + captainColumns + ` FROM captains WHERE id = ANY($1)`
	rows, err := r.q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var captains []*domain.Captain
	for rows.Next() {
		captain, err := scanCaptain(rows)
		if err != nil {
			return nil, err
		}
		captains = append(captains, captain)
	}
	return captains, rows.Err()
}

// UpdateStatus updates the status of a captain.
func (r *CaptainRepository) UpdateStatus(ctx context.Context, id string, status domain.CaptainStatus) error {
	result, err := r.q.ExecContext(ctx, `UPDATE captains SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return expectOneRow(result, repository.ErrNotFound)
}

// UpdateSocketID records the captain's live push session.
func (r *CaptainRepository) UpdateSocketID(ctx context.Context, id, socketID string) error {
	result, err := r.q.ExecContext(ctx, `UPDATE captains SET socket_id = $1 WHERE id = $2`, nullString(socketID), id)
	if err != nil {
		return err
	}
	return expectOneRow(result, repository.ErrNotFound)
}

// AddEarnings increments cumulative earnings in place.
func (r *CaptainRepository) AddEarnings(ctx context.Context, id string, amount int64) error {
	result, err := r.q.ExecContext(ctx, `UPDATE captains SET earnings = earnings + $1 WHERE id = $2`, amount, id)
	if err != nil {
		return err
	}
	return expectOneRow(result, repository.ErrNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCaptain(row rowScanner) (*domain.Captain, error) {
	var captain domain.Captain
	err := row.Scan(
		&captain.ID,
		&captain.Name,
		&captain.Phone,
		&captain.VehicleType,
		&captain.Plate,
		&captain.Status,
		&captain.SocketID,
		&captain.Earnings,
		&captain.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &captain, nil
}
