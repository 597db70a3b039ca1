package repository

import (
	"context"
	"time"

	"jobboard/internal/models"

	"gorm.io/gorm"
)

// JobFilter narrows job listings. Nil IsActive matches every job.
type JobFilter struct {
	JobType    models.JobType
	Location   string
	Search     string
	ProviderID uint
	IsActive   *bool
}

// JobRepository defines persistence operations for job postings.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uint) (*models.Job, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	SetActive(ctx context.Context, id uint, active bool) error
	List(ctx context.Context, filter JobFilter, page models.PageQuery) ([]models.Job, int64, error)
	CountActive(ctx context.Context) (int64, error)
	CountByProvider(ctx context.Context, providerID uint) (int64, error)
	DeactivateExpired(ctx context.Context, now time.Time) ([]models.Job, error)
}

type jobRepository struct {
	db *gorm.DB
}

// NewJobRepository returns a new JobRepository implementation.
func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(ctx context.Context, job *models.Job) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *jobRepository) GetByID(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	if err := r.db.WithContext(ctx).Preload("Provider").First(&job, id).Error; err != nil {
		return nil, notFoundOr(err, "Job", id)
	}
	return &job, nil
}

func (r *jobRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Job", id)
	}
	return nil
}

func (r *jobRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.UpdateFields(ctx, id, map[string]any{"is_active": active})
}

func (r *jobRepository) List(ctx context.Context, filter JobFilter, page models.PageQuery) ([]models.Job, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Job{})
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	if filter.ProviderID != 0 {
		q = q.Where("provider_id = ?", filter.ProviderID)
	}
	if filter.JobType != "" {
		q = q.Where("job_type = ?", filter.JobType)
	}
	if filter.Location != "" {
		q = q.Where("LOWER(location) LIKE ?"+likeEscape, likePattern(filter.Location))
	}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		q = q.Where("LOWER(job_title) LIKE ?"+likeEscape+" OR LOWER(description) LIKE ?"+likeEscape, p, p)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var jobs []models.Job
	if err := q.Preload("Provider").Scopes(paginate(page)).Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return jobs, total, nil
}

func (r *jobRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Job{}).Where("is_active = ?", true).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *jobRepository) CountByProvider(ctx context.Context, providerID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Job{}).Where("provider_id = ?", providerID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// DeactivateExpired closes active jobs whose deadline is before now and
// returns the closed jobs with only ID and ProviderID loaded.
func (r *jobRepository) DeactivateExpired(ctx context.Context, now time.Time) ([]models.Job, error) {
	var expired []models.Job
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Job{}).Select("id", "provider_id").
			Where("is_active = ? AND deadline IS NOT NULL AND deadline < ?", true, now).
			Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}
		ids := make([]uint, len(expired))
		for i, j := range expired {
			ids[i] = j.ID
		}
		return tx.Model(&models.Job{}).Where("id IN ?", ids).Update("is_active", false).Error
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return expired, nil
}
