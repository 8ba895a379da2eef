package postgres

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
)

// PaymentRepo persists and loads payments.
type PaymentRepo struct{ Pool PgxPool }

// NewPaymentRepo constructs a PaymentRepo with the given pool.
func NewPaymentRepo(p PgxPool) *PaymentRepo { return &PaymentRepo{Pool: p} }

// Create inserts a PAID payment and returns it.
func (r *PaymentRepo) Create(ctx domain.Context, price int) (domain.Payment, error) {
	p := domain.Payment{
		PaymentUID: uuid.New().String(),
		Status:     domain.PaymentPaid,
		Price:      price,
	}
	q := `INSERT INTO payment (payment_uid, status, price) VALUES ($1,$2,$3)`
	if _, err := r.Pool.Exec(ctx, q, p.PaymentUID, p.Status, p.Price); err != nil {
		return domain.Payment{}, fmt.Errorf("op=payment.create: %w", err)
	}
	return p, nil
}

// Get loads one payment by uid.
func (r *PaymentRepo) Get(ctx domain.Context, paymentUID string) (domain.Payment, error) {
	q := `SELECT payment_uid, status, price FROM payment WHERE payment_uid=$1`
	var p domain.Payment
	if err := r.Pool.QueryRow(ctx, q, paymentUID).Scan(&p.PaymentUID, &p.Status, &p.Price); err != nil {
		if err == pgx.ErrNoRows {
			return domain.Payment{}, fmt.Errorf("op=payment.get: %w", domain.ErrNotFound)
		}
		return domain.Payment{}, fmt.Errorf("op=payment.get: %w", err)
	}
	return p, nil
}

// Cancel marks a payment CANCELED.
func (r *PaymentRepo) Cancel(ctx domain.Context, paymentUID string) error {
	tag, err := r.Pool.Exec(ctx, `UPDATE payment SET status=$2 WHERE payment_uid=$1`, paymentUID, domain.PaymentCanceled)
	if err != nil {
		return fmt.Errorf("op=payment.cancel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=payment.cancel: %w", domain.ErrNotFound)
	}
	return nil
}
