package postgres

import (
	"context"

	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PartnerRepository struct {
	pool *pgxpool.Pool
}

func NewPartnerRepository(pool *pgxpool.Pool) *PartnerRepository {
	return &PartnerRepository{pool: pool}
}

const insertPartnerQuery = `
        INSERT INTO partners (
            id, name, phone, vehicle_type, current_location,
            is_available, rating, total_deliveries, last_update_time
        ) VALUES (
            $1, $2, $3, $4,
            ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography,
            $7, $8, $9, $10
        )
    `

func (r *PartnerRepository) BulkCreate(ctx context.Context, partners []models.Partner) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, partner := range partners {
		_, err = tx.Exec(ctx, insertPartnerQuery,
			partner.ID,
			partner.Name,
			partner.Phone,
			partner.VehicleType,
			partner.CurrentLocation.Lng,
			partner.CurrentLocation.Lat,
			partner.IsAvailable,
			partner.Rating,
			partner.TotalDeliveries,
			partner.LastUpdateTime,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PartnerRepository) Create(ctx context.Context, partner *models.Partner) error {
	_, err := r.pool.Exec(ctx, insertPartnerQuery,
		partner.ID,
		partner.Name,
		partner.Phone,
		partner.VehicleType,
		partner.CurrentLocation.Lng,
		partner.CurrentLocation.Lat,
		partner.IsAvailable,
		partner.Rating,
		partner.TotalDeliveries,
		partner.LastUpdateTime,
	)
	return err
}

func (r *PartnerRepository) GetAll(ctx context.Context) ([]models.Partner, error) {
	query := `
        SELECT id, name, phone, vehicle_type,
               ST_AsText(current_location::geometry),
               is_available, rating, total_deliveries, last_update_time
        FROM partners
        ORDER BY last_update_time
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []models.Partner
	for rows.Next() {
		var p models.Partner
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Phone,
			&p.VehicleType,
			&p.CurrentLocation,
			&p.IsAvailable,
			&p.Rating,
			&p.TotalDeliveries,
			&p.LastUpdateTime,
		); err != nil {
			return nil, err
		}
		partners = append(partners, p)
	}
	return partners, rows.Err()
}

func (r *PartnerRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM partners`).Scan(&count)
	return count, err
}

func (r *PartnerRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM partners`)
	return err
}
