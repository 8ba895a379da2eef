// Package domain holds the entities and error taxonomy shared by the
// gateway and the three backing services.
package domain

import (
	"context"
	"errors"
	"time"
)

// Context aliases context.Context to keep port signatures short.
type Context = context.Context

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrUnavailable     = errors.New("service unavailable")
	ErrBreakerOpen     = errors.New("circuit breaker open")
	ErrInternal        = errors.New("internal error")
)

// Payment statuses
const (
	PaymentPaid     = "PAID"
	PaymentCanceled = "CANCELED"
)

// Rental statuses
const (
	RentalInProgress = "IN_PROGRESS"
	RentalFinished   = "FINISHED"
	RentalCanceled   = "CANCELED"
)

// DateLayout is the wire format for rental dates.
const DateLayout = "2006-01-02"

// Car is the full car descriptor as served by the cars service.
// Type is one of SEDAN, SUV, MINIVAN, ROADSTER.
type Car struct {
	CarUID             string `json:"carUid"`
	Brand              string `json:"brand"`
	Model              string `json:"model"`
	RegistrationNumber string `json:"registrationNumber"`
	Power              *int   `json:"power,omitempty"`
	Price              int    `json:"price"`
	Type               string `json:"type"`
	Available          bool   `json:"available"`
}

// CarsPage is the paginated cars listing.
type CarsPage struct {
	Page          int   `json:"page"`
	PageSize      int   `json:"pageSize"`
	TotalElements int   `json:"totalElements"`
	Items         []Car `json:"items"`
}

// CarInfo is the reduced car descriptor embedded in rental responses and
// kept in the fallback cache.
type CarInfo struct {
	CarUID             string `json:"carUid"`
	Brand              string `json:"brand"`
	Model              string `json:"model"`
	RegistrationNumber string `json:"registrationNumber"`
}

// Info reduces a Car to the descriptor cached for fallback responses.
func (c Car) Info() CarInfo {
	return CarInfo{
		CarUID:             c.CarUID,
		Brand:              c.Brand,
		Model:              c.Model,
		RegistrationNumber: c.RegistrationNumber,
	}
}

// Payment is the payment record as served by the payment service.
type Payment struct {
	PaymentUID string `json:"paymentUid"`
	Status     string `json:"status"`
	Price      int    `json:"price"`
}

// RentalRecord is the rental row as served by the rental service.
type RentalRecord struct {
	RentalUID  string `json:"rentalUid"`
	Username   string `json:"username"`
	PaymentUID string `json:"paymentUid"`
	CarUID     string `json:"carUid"`
	DateFrom   string `json:"dateFrom"`
	DateTo     string `json:"dateTo"`
	Status     string `json:"status"`
}

// RentalCreate is the body the gateway posts to the rental service.
type RentalCreate struct {
	Username   string `json:"username"`
	PaymentUID string `json:"paymentUid"`
	CarUID     string `json:"carUid"`
	DateFrom   string `json:"dateFrom"`
	DateTo     string `json:"dateTo"`
}

// CreateRentalRequest is the client-facing rental booking request.
type CreateRentalRequest struct {
	CarUID   string `json:"carUid" validate:"required,uuid4"`
	DateFrom string `json:"dateFrom" validate:"required,datetime=2006-01-02"`
	DateTo   string `json:"dateTo" validate:"required,datetime=2006-01-02"`
}

// CreateRentalResponse is returned after a successful booking saga.
type CreateRentalResponse struct {
	RentalUID string  `json:"rentalUid"`
	Status    string  `json:"status"`
	CarUID    string  `json:"carUid"`
	DateFrom  string  `json:"dateFrom"`
	DateTo    string  `json:"dateTo"`
	Payment   Payment `json:"payment"`
}

// RentalResponse is the aggregated rental view with car and payment details.
type RentalResponse struct {
	RentalUID string  `json:"rentalUid"`
	Status    string  `json:"status"`
	DateFrom  string  `json:"dateFrom"`
	DateTo    string  `json:"dateTo"`
	Car       CarInfo `json:"car"`
	Payment   Payment `json:"payment"`
}

// RentalDays returns the whole-day span between two wire dates. Same-day
// rentals yield zero days and therefore a zero price.
func RentalDays(dateFrom, dateTo string) (int, error) {
	from, err := time.Parse(DateLayout, dateFrom)
	if err != nil {
		return 0, ErrInvalidArgument
	}
	to, err := time.Parse(DateLayout, dateTo)
	if err != nil {
		return 0, ErrInvalidArgument
	}
	days := int(to.Sub(from).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days, nil
}
