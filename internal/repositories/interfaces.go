package repositories

import (
	"context"

	"github.com/chrisdamba/foodispatch/internal/models"
)

type UserRepository interface {
	BulkCreate(ctx context.Context, users []models.User) error
	Create(ctx context.Context, user *models.User) error
	GetAll(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type PartnerRepository interface {
	BulkCreate(ctx context.Context, partners []models.Partner) error
	Create(ctx context.Context, partner *models.Partner) error
	GetAll(ctx context.Context) ([]models.Partner, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type AvailabilityRepository interface {
	BulkCreate(ctx context.Context, windows []models.AvailabilityWindow) error
	GetByPartnerID(ctx context.Context, partnerID string) ([]models.AvailabilityWindow, error)
	DeleteAll(ctx context.Context) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetAll(ctx context.Context) ([]models.Order, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}
