package repository

import (
	"context"
	"errors"
	"time"

	"jobboard/internal/models"

	"gorm.io/gorm"
)

// UserFilter narrows admin user listings.
type UserFilter struct {
	Role models.Role
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	CreateApplicantAccount(ctx context.Context, user *models.User, resume *models.Attachment) error
	CreateProviderAccount(ctx context.Context, user *models.User, provider *models.Provider, docs []*models.Attachment) error
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	SetActive(ctx context.Context, id uint, active bool) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	List(ctx context.Context, filter UserFilter, page models.PageQuery) ([]models.User, int64, error)
	ListIDsByRole(ctx context.Context, role models.Role) ([]uint, error)
	CountByRole(ctx context.Context, role models.Role) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "User", id)
	}
	return &user, nil
}

// GetByEmail returns nil, nil when no user has the address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// CreateApplicantAccount writes the user and its optional resume in one
// transaction.
func (r *userRepository) CreateApplicantAccount(ctx context.Context, user *models.User, resume *models.Attachment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if resume == nil {
			return nil
		}
		resume.OwnerKind = models.OwnerUserResume
		resume.OwnerID = user.ID
		return tx.Create(resume).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// CreateProviderAccount writes the user, its provider profile and any
// registration documents in one transaction.
func (r *userRepository) CreateProviderAccount(ctx context.Context, user *models.User, provider *models.Provider, docs []*models.Attachment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		provider.UserID = user.ID
		if err := tx.Create(provider).Error; err != nil {
			return err
		}
		for i, doc := range docs {
			doc.OwnerKind = models.OwnerProviderDoc
			doc.OwnerID = provider.ID
			doc.Position = i
			if err := tx.Create(doc).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.UpdateFields(ctx, id, map[string]any{"is_active": active})
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.UpdateFields(ctx, id, map[string]any{"last_login": at})
}

func (r *userRepository) List(ctx context.Context, filter UserFilter, page models.PageQuery) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var users []models.User
	if err := q.Scopes(paginate(page)).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}

func (r *userRepository) ListIDsByRole(ctx context.Context, role models.Role) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", role).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *userRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", role).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
