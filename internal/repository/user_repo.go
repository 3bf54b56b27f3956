package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Hoossayn/hottakes-backend/internal/db"
)

// UserRepository resolves users by username. The takes core never writes to
// the users table; it only needs existence plus the canonical casing.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository bound to the given DB connection.
func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// FindByUsername looks a user up by username, case-insensitively (usernames
// are stored lower-cased). Returns gorm.ErrRecordNotFound when absent.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).
		Where("username = ?", strings.ToLower(username)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
