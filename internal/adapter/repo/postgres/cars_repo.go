package postgres

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fairyhunter13/car-rental-gateway/internal/domain"
)

// CarRepo persists and loads cars.
type CarRepo struct{ Pool PgxPool }

// NewCarRepo constructs a CarRepo with the given pool.
func NewCarRepo(p PgxPool) *CarRepo { return &CarRepo{Pool: p} }

const carColumns = `car_uid, brand, model, registration_number, power, price, type, availability`

func scanCar(row pgx.Row) (domain.Car, error) {
	var c domain.Car
	if err := row.Scan(&c.CarUID, &c.Brand, &c.Model, &c.RegistrationNumber, &c.Power, &c.Price, &c.Type, &c.Available); err != nil {
		return domain.Car{}, err
	}
	return c, nil
}

// List returns one page of cars plus the unpaged total. Unavailable cars
// are filtered out unless showAll is set.
func (r *CarRepo) List(ctx domain.Context, page, size int, showAll bool) ([]domain.Car, int, error) {
	where := "WHERE availability = TRUE"
	if showAll {
		where = ""
	}
	var total int
	if err := r.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM cars "+where).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("op=car.count: %w", err)
	}
	q := fmt.Sprintf("SELECT %s FROM cars %s ORDER BY id OFFSET $1 LIMIT $2", carColumns, where)
	rows, err := r.Pool.Query(ctx, q, (page-1)*size, size)
	if err != nil {
		return nil, 0, fmt.Errorf("op=car.list: %w", err)
	}
	defer rows.Close()
	cars := make([]domain.Car, 0, size)
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("op=car.list: %w", err)
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("op=car.list: %w", err)
	}
	return cars, total, nil
}

// Get loads one car by uid.
func (r *CarRepo) Get(ctx domain.Context, carUID string) (domain.Car, error) {
	q := fmt.Sprintf("SELECT %s FROM cars WHERE car_uid=$1", carColumns)
	c, err := scanCar(r.Pool.QueryRow(ctx, q, carUID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Car{}, fmt.Errorf("op=car.get: %w", domain.ErrNotFound)
		}
		return domain.Car{}, fmt.Errorf("op=car.get: %w", err)
	}
	return c, nil
}

// SetAvailability flips the availability flag for one car.
func (r *CarRepo) SetAvailability(ctx domain.Context, carUID string, available bool) error {
	tag, err := r.Pool.Exec(ctx, "UPDATE cars SET availability=$2 WHERE car_uid=$1", carUID, available)
	if err != nil {
		return fmt.Errorf("op=car.set_availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=car.set_availability: %w", domain.ErrNotFound)
	}
	return nil
}

// Seed inserts the demo fleet when the table is empty.
func (r *CarRepo) Seed(ctx domain.Context) error {
	var count int
	if err := r.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM cars").Scan(&count); err != nil {
		return fmt.Errorf("op=car.seed: %w", err)
	}
	if count > 0 {
		return nil
	}
	power := 249
	q := `INSERT INTO cars (car_uid, brand, model, registration_number, power, price, type, availability)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.Pool.Exec(ctx, q,
		uuid.MustParse("109b42f3-198d-4c89-9276-a7520a7120ab").String(),
		"Mercedes Benz", "GLA 250", "ЛО777Х799", power, 3500, "SEDAN", true)
	if err != nil {
		return fmt.Errorf("op=car.seed: %w", err)
	}
	return nil
}
