package factories

import (
	"time"

	"github.com/chrisdamba/foodispatch/internal/models"
	"github.com/lucsky/cuid"
)

type UserFactory struct{}

func (uf *UserFactory) CreateUser(config *models.Config) models.User {
	return models.User{
		ID:    "user_" + cuid.New(),
		Name:  fake.Person().Name(),
		Phone: fake.Phone().Number(),
		Email: fake.Internet().Email(),
	}
}

func weekday(day int) time.Weekday {
	return time.Weekday(day % 7)
}
