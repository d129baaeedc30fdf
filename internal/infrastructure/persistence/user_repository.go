package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by its ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "User", id)
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a user by normalized email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var model models.UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		return nil, notFound(err, "User", email)
	}
	return model.ToDomain(), nil
}

// FindFirstByRole returns the oldest active user holding the role
func (r *GormUserRepository) FindFirstByRole(ctx context.Context, role identity.Role) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Where("role = ? AND active = ?", role, true).
		Order("created_at ASC").
		First(&model).Error; err != nil {
		return nil, notFound(err, "User", role)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a user
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "phone", "password_hash", "role", "active", "updated_at"}),
	}).Create(model).Error
	return translate(err, "User")
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
