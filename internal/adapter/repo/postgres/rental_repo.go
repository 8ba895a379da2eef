package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
)

// RentalRepo persists and loads rental records.
type RentalRepo struct{ Pool PgxPool }

// NewRentalRepo constructs a RentalRepo with the given pool.
func NewRentalRepo(p PgxPool) *RentalRepo { return &RentalRepo{Pool: p} }

const rentalColumns = `rental_uid, username, payment_uid, car_uid, date_from, date_to, status`

func scanRental(row pgx.Row) (domain.RentalRecord, error) {
	var rec domain.RentalRecord
	var from, to time.Time
	if err := row.Scan(&rec.RentalUID, &rec.Username, &rec.PaymentUID, &rec.CarUID, &from, &to, &rec.Status); err != nil {
		return domain.RentalRecord{}, err
	}
	rec.DateFrom = from.Format(domain.DateLayout)
	rec.DateTo = to.Format(domain.DateLayout)
	return rec, nil
}

// Create inserts an IN_PROGRESS rental and returns it.
func (r *RentalRepo) Create(ctx domain.Context, req domain.RentalCreate) (domain.RentalRecord, error) {
	from, err := time.Parse(domain.DateLayout, req.DateFrom)
	if err != nil {
		return domain.RentalRecord{}, fmt.Errorf("op=rental.create: %w", domain.ErrInvalidArgument)
	}
	to, err := time.Parse(domain.DateLayout, req.DateTo)
	if err != nil {
		return domain.RentalRecord{}, fmt.Errorf("op=rental.create: %w", domain.ErrInvalidArgument)
	}
	rec := domain.RentalRecord{
		RentalUID:  uuid.New().String(),
		Username:   req.Username,
		PaymentUID: req.PaymentUID,
		CarUID:     req.CarUID,
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
		Status:     domain.RentalInProgress,
	}
	q := `INSERT INTO rental (rental_uid, username, payment_uid, car_uid, date_from, date_to, status)
	      VALUES ($1,$2,$3,$4,$5,$6,$7)`
	if _, err := r.Pool.Exec(ctx, q, rec.RentalUID, rec.Username, rec.PaymentUID, rec.CarUID, from, to, rec.Status); err != nil {
		return domain.RentalRecord{}, fmt.Errorf("op=rental.create: %w", err)
	}
	return rec, nil
}

// ListByUsername loads all rentals belonging to a user.
func (r *RentalRepo) ListByUsername(ctx domain.Context, username string) ([]domain.RentalRecord, error) {
	q := fmt.Sprintf("SELECT %s FROM rental WHERE username=$1 ORDER BY id", rentalColumns)
	rows, err := r.Pool.Query(ctx, q, username)
	if err != nil {
		return nil, fmt.Errorf("op=rental.list: %w", err)
	}
	defer rows.Close()
	out := []domain.RentalRecord{}
	for rows.Next() {
		rec, err := scanRental(rows)
		if err != nil {
			return nil, fmt.Errorf("op=rental.list: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=rental.list: %w", err)
	}
	return out, nil
}

// Get loads one rental by uid and owner.
func (r *RentalRepo) Get(ctx domain.Context, rentalUID, username string) (domain.RentalRecord, error) {
	q := fmt.Sprintf("SELECT %s FROM rental WHERE rental_uid=$1 AND username=$2", rentalColumns)
	rec, err := scanRental(r.Pool.QueryRow(ctx, q, rentalUID, username))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.RentalRecord{}, fmt.Errorf("op=rental.get: %w", domain.ErrNotFound)
		}
		return domain.RentalRecord{}, fmt.Errorf("op=rental.get: %w", err)
	}
	return rec, nil
}

// SetStatus moves one rental to the given status.
func (r *RentalRepo) SetStatus(ctx domain.Context, rentalUID, username, status string) error {
	q := `UPDATE rental SET status=$3 WHERE rental_uid=$1 AND username=$2`
	tag, err := r.Pool.Exec(ctx, q, rentalUID, username, status)
	if err != nil {
		return fmt.Errorf("op=rental.set_status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=rental.set_status: %w", domain.ErrNotFound)
	}
	return nil
}
