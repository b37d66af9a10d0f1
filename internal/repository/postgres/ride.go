package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ridehail/internal/domain"
	"ridehail/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, rider_id, captain_id, pickup, destination, vehicle_type, fare, distance_km, status, created_at`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (id, rider_id, captain_id, pickup, destination, vehicle_type, fare, distance_km, otp, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	status := ride.Status
	if status == "" {
		status = domain.RideStatusRequested
	}

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.RiderID,
		nullString(ride.CaptainID),
		ride.Pickup,
		ride.Destination,
		ride.VehicleType,
		ride.Fare,
		ride.DistanceKm,
		ride.OTP,
		status,
		ride.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// GetByID retrieves a ride by ID without its OTP.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + `, '' FROM rides WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetWithOTP retrieves a ride by ID including its OTP.
func (r *RideRepository) GetWithOTP(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + `, otp FROM rides WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetForCaptain retrieves a ride assigned to captainID.
func (r *RideRepository) GetForCaptain(ctx context.Context, id, captainID string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + `, '' FROM rides WHERE id = $1 AND captain_id = $2`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id, captainID))
}

// Accept assigns a captain with a compare-and-swap on status.
func (r *RideRepository) Accept(ctx context.Context, id, captainID string) error {
	query := `
		UPDATE rides
		SET status = $1, captain_id = $2
		WHERE id = $3 AND status = $4
	`

	result, err := r.q.ExecContext(ctx, query,
		domain.RideStatusAccepted,
		captainID,
		id,
		domain.RideStatusRequested,
	)
	if err != nil {
		return err
	}
	return expectOneRow(result, repository.ErrStaleState)
}

// UpdateStatus moves a ride from one status to another.
func (r *RideRepository) UpdateStatus(ctx context.Context, id string, from, to domain.RideStatus) error {
	query := `UPDATE rides SET status = $1 WHERE id = $2 AND status = $3`

	result, err := r.q.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return err
	}
	return expectOneRow(result, repository.ErrStaleState)
}

func (r *RideRepository) scanOne(row *sql.Row) (*domain.Ride, error) {
	var ride domain.Ride
	var captainID sql.NullString

	err := row.Scan(
		&ride.ID,
		&ride.RiderID,
		&captainID,
		&ride.Pickup,
		&ride.Destination,
		&ride.VehicleType,
		&ride.Fare,
		&ride.DistanceKm,
		&ride.Status,
		&ride.CreatedAt,
		&ride.OTP,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if captainID.Valid {
		ride.CaptainID = captainID.String
	}

	return &ride, nil
}
