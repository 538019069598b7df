package postgres

import (
	"context"

	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const insertUserQuery = `
        INSERT INTO users (id, name, phone, email, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `

func (r *UserRepository) BulkCreate(ctx context.Context, users []models.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, user := range users {
		if _, err = tx.Exec(ctx, insertUserQuery,
			user.ID, user.Name, user.Phone, user.Email, user.CreatedAt,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.pool.Exec(ctx, insertUserQuery,
		user.ID, user.Name, user.Phone, user.Email, user.CreatedAt,
	)
	return err
}

func (r *UserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, phone, email, created_at FROM users`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (r *UserRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users`)
	return err
}
