package repository

import (
	"context"
	"errors"

	"jobboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProviderFilter narrows admin provider listings.
type ProviderFilter struct {
	VerificationStatus models.VerificationStatus
}

// ProviderRepository defines persistence operations for provider profiles.
type ProviderRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Provider, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Provider, error)
	GetOrCreate(ctx context.Context, seed *models.Provider) (*models.Provider, error)
	Create(ctx context.Context, provider *models.Provider) error
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	List(ctx context.Context, filter ProviderFilter, page models.PageQuery) ([]models.Provider, int64, error)
	Count(ctx context.Context) (int64, error)
}

type providerRepository struct {
	db *gorm.DB
}

// NewProviderRepository returns a new ProviderRepository implementation.
func NewProviderRepository(db *gorm.DB) ProviderRepository {
	return &providerRepository{db: db}
}

func (r *providerRepository) GetByID(ctx context.Context, id uint) (*models.Provider, error) {
	var p models.Provider
	if err := r.db.WithContext(ctx).Preload("User").First(&p, id).Error; err != nil {
		return nil, notFoundOr(err, "Provider", id)
	}
	return &p, nil
}

// GetByUserID returns nil, nil when the user has no provider profile.
func (r *providerRepository) GetByUserID(ctx context.Context, userID uint) (*models.Provider, error) {
	var p models.Provider
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &p, nil
}

// GetOrCreate inserts seed unless a row for seed.UserID exists, then returns
// the stored row. Concurrent callers all observe the same provider.
func (r *providerRepository) GetOrCreate(ctx context.Context, seed *models.Provider) (*models.Provider, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(seed).Error
	if err != nil && !isUniqueConstraintError(err) {
		return nil, models.NewInternalError(err)
	}

	p, err := r.GetByUserID(ctx, seed.UserID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, models.NewInternalError(errors.New("provider missing after insert"))
	}
	return p, nil
}

func (r *providerRepository) Create(ctx context.Context, provider *models.Provider) error {
	if err := r.db.WithContext(ctx).Create(provider).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Provider profile already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *providerRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Provider{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Provider", id)
	}
	return nil
}

func (r *providerRepository) List(ctx context.Context, filter ProviderFilter, page models.PageQuery) ([]models.Provider, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Provider{})
	if filter.VerificationStatus != "" {
		q = q.Where("verification_status = ?", filter.VerificationStatus)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var providers []models.Provider
	if err := q.Preload("User").Scopes(paginate(page)).Order("created_at DESC").Find(&providers).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return providers, total, nil
}

func (r *providerRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Provider{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
