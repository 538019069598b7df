package postgres

import (
	"context"
	"encoding/json"

	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	price, err := json.Marshal(order.Price)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO orders (
            id, customer_id, partner_id, service_type,
            pickup_location, delivery_location,
            package_description, weight, special_instructions, recipient_phone,
            price_breakdown, status, created_at, updated_at
        ) VALUES (
            $1, $2, NULLIF($3, ''), $4,
            ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography,
            ST_SetSRID(ST_MakePoint($7, $8), 4326)::geography,
            $9, $10, $11, $12,
            $13, $14::order_status, $15, $16
        )
    `
	_, err = r.pool.Exec(ctx, query,
		order.ID,
		order.CustomerID,
		order.PartnerID,
		order.ServiceType,
		order.PickupLocation.Lng,
		order.PickupLocation.Lat,
		order.DeliveryLocation.Lng,
		order.DeliveryLocation.Lat,
		order.PackageDescription,
		order.Weight,
		order.SpecialInstructions,
		order.RecipientPhone,
		price,
		string(order.Status),
		order.CreatedAt,
		order.UpdatedAt,
	)
	return err
}

func (r *OrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	query := `
        SELECT id, customer_id, COALESCE(partner_id, ''), service_type,
               ST_AsText(pickup_location::geometry),
               ST_AsText(delivery_location::geometry),
               package_description, weight, special_instructions, recipient_phone,
               price_breakdown, status, created_at, updated_at
        FROM orders
        ORDER BY created_at
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		var price []byte
		var status string
		if err := rows.Scan(
			&o.ID,
			&o.CustomerID,
			&o.PartnerID,
			&o.ServiceType,
			&o.PickupLocation,
			&o.DeliveryLocation,
			&o.PackageDescription,
			&o.Weight,
			&o.SpecialInstructions,
			&o.RecipientPhone,
			&price,
			&status,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(price, &o.Price); err != nil {
			return nil, err
		}
		o.Status = models.OrderStatus(status)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count)
	return count, err
}

func (r *OrderRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM orders`)
	return err
}
