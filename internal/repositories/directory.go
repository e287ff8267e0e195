package repositories

import (
	"astromart/internal/models"
)

// UserRepository is the user directory consumed by the billing core.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByPhone(phone string) (*models.User, error)
	Update(user *models.User) error
	IncrementTokenVersion(id uint) error
}

// ProductRepository is the product directory.
type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id uint) (*models.Product, error)
}

// OrderRepository persists order records.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByUser(userID uint, limit, offset int) ([]models.Order, error)
	Update(order *models.Order) error
}
