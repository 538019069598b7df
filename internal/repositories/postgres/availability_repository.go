package postgres

import (
	"context"
	"time"

	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AvailabilityRepository struct {
	pool *pgxpool.Pool
}

func NewAvailabilityRepository(pool *pgxpool.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool}
}

func (r *AvailabilityRepository) BulkCreate(ctx context.Context, windows []models.AvailabilityWindow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO partner_availability (partner_id, day_of_week, start_time, end_time)
        VALUES ($1, $2, $3, $4)
    `
	for _, w := range windows {
		if _, err = tx.Exec(ctx, query, w.PartnerID, int(w.DayOfWeek), w.StartTime, w.EndTime); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *AvailabilityRepository) GetByPartnerID(ctx context.Context, partnerID string) ([]models.AvailabilityWindow, error) {
	query := `
        SELECT partner_id, day_of_week, start_time, end_time
        FROM partner_availability
        WHERE partner_id = $1
        ORDER BY day_of_week, start_time
    `
	rows, err := r.pool.Query(ctx, query, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []models.AvailabilityWindow
	for rows.Next() {
		var w models.AvailabilityWindow
		var day int
		if err := rows.Scan(&w.PartnerID, &day, &w.StartTime, &w.EndTime); err != nil {
			return nil, err
		}
		w.DayOfWeek = weekdayFromInt(day)
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

func (r *AvailabilityRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM partner_availability`)
	return err
}

func weekdayFromInt(day int) time.Weekday {
	return time.Weekday(day % 7)
}
