package postgres

import (
	"context"
	"fmt"
)

// Schema bootstrap: each service owns one table and creates it on startup.
// The CHECK constraints mirror what the API accepts so bad rows cannot
// appear behind the services' backs.

const carsSchema = `
CREATE TABLE IF NOT EXISTS cars (
    id SERIAL PRIMARY KEY,
    car_uid UUID UNIQUE NOT NULL,
    brand VARCHAR(80) NOT NULL,
    model VARCHAR(80) NOT NULL,
    registration_number VARCHAR(20) NOT NULL,
    power INT,
    price INT NOT NULL,
    type VARCHAR(20)
        CONSTRAINT car_type_check CHECK (type IN ('SEDAN', 'SUV', 'MINIVAN', 'ROADSTER')),
    availability BOOLEAN NOT NULL DEFAULT TRUE
)`

const paymentSchema = `
CREATE TABLE IF NOT EXISTS payment (
    id SERIAL PRIMARY KEY,
    payment_uid UUID UNIQUE NOT NULL,
    status VARCHAR(20) NOT NULL
        CONSTRAINT payment_status_check CHECK (status IN ('PAID', 'CANCELED')),
    price INT NOT NULL
)`

const rentalSchema = `
CREATE TABLE IF NOT EXISTS rental (
    id SERIAL PRIMARY KEY,
    rental_uid UUID UNIQUE NOT NULL,
    username VARCHAR(80) NOT NULL,
    payment_uid UUID NOT NULL,
    car_uid UUID NOT NULL,
    date_from DATE NOT NULL,
    date_to DATE NOT NULL,
    status VARCHAR(20) NOT NULL
        CONSTRAINT rental_status_check CHECK (status IN ('IN_PROGRESS', 'FINISHED', 'CANCELED'))
)`

// EnsureCarsSchema creates the cars table if missing.
func EnsureCarsSchema(ctx context.Context, pool PgxPool) error {
	if _, err := pool.Exec(ctx, carsSchema); err != nil {
		return fmt.Errorf("op=schema.cars: %w", err)
	}
	return nil
}

// EnsurePaymentSchema creates the payment table if missing.
func EnsurePaymentSchema(ctx context.Context, pool PgxPool) error {
	if _, err := pool.Exec(ctx, paymentSchema); err != nil {
		return fmt.Errorf("op=schema.payment: %w", err)
	}
	return nil
}

// EnsureRentalSchema creates the rental table if missing.
func EnsureRentalSchema(ctx context.Context, pool PgxPool) error {
	if _, err := pool.Exec(ctx, rentalSchema); err != nil {
		return fmt.Errorf("op=schema.rental: %w", err)
	}
	return nil
}
