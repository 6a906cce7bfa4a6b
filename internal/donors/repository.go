package donors

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads donors.
type Repository interface {
	Search(ctx context.Context, c Criteria) ([]Donor, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Search returns donors of the blood group whose last donation is on or
// before the cut-off date.
func (r *repository) Search(ctx context.Context, c Criteria) ([]Donor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, first_name, last_name, COALESCE(phone, ''), COALESCE(gender, ''), blood_group, last_donation_date
		FROM blood_donors
		WHERE blood_group = $1 AND last_donation_date <= $2
		ORDER BY last_donation_date, id`, c.BloodGroup, c.Before)
	if err != nil {
		return nil, fmt.Errorf("search donors: %w", err)
	}
	donors, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Donor, error) {
		var d Donor
		err := row.Scan(&d.ID, &d.FirstName, &d.LastName, &d.Phone, &d.Gender, &d.BloodGroup, &d.LastDonation)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan donors: %w", err)
	}
	return donors, nil
}
