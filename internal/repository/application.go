package repository

import (
	"context"

	"jobboard/internal/models"

	"gorm.io/gorm"
)

// ApplicationFilter narrows application listings. Zero fields match all.
type ApplicationFilter struct {
	UserID     uint
	ProviderID uint
	JobID      uint
	Status     models.ApplicationStatus
}

// ApplicationRepository defines persistence operations for applications.
// Creation and deletion keep Job.ApplicationsCount in step with the rows.
type ApplicationRepository interface {
	CreateWithCounter(ctx context.Context, app *models.Application, resume *models.Attachment) error
	DeleteWithCounter(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id uint) (*models.Application, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	List(ctx context.Context, filter ApplicationFilter, page models.PageQuery) ([]models.Application, int64, error)
	Count(ctx context.Context, filter ApplicationFilter) (int64, error)
	StatsForUser(ctx context.Context, userID uint) (models.ApplicationStats, error)
}

type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository returns a new ApplicationRepository implementation.
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) CreateWithCounter(ctx context.Context, app *models.Application, resume *models.Attachment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(app).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Job{}).Where("id = ?", app.JobID).
			UpdateColumn("applications_count", gorm.Expr("applications_count + 1")).Error; err != nil {
			return err
		}
		if resume != nil {
			resume.OwnerKind = models.OwnerApplicationResume
			resume.OwnerID = app.ID
			if err := tx.Create(resume).Error; err != nil {
				return err
			}
			app.HasResume = true
		}
		return nil
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("You have already applied for this job")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *applicationRepository) DeleteWithCounter(ctx context.Context, app *models.Application) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Application{}, app.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Model(&models.Job{}).Where("id = ?", app.JobID).
			UpdateColumn("applications_count",
				gorm.Expr("CASE WHEN applications_count > 0 THEN applications_count - 1 ELSE 0 END")).Error; err != nil {
			return err
		}
		return tx.Where("owner_kind = ? AND owner_id = ?", models.OwnerApplicationResume, app.ID).
			Delete(&models.Attachment{}).Error
	})
	if err != nil {
		return notFoundOr(err, "Application", app.ID)
	}
	return nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	var app models.Application
	if err := r.db.WithContext(ctx).Preload("Job").First(&app, id).Error; err != nil {
		return nil, notFoundOr(err, "Application", id)
	}
	return &app, nil
}

func (r *applicationRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Application", id)
	}
	return nil
}

func (r *applicationRepository) scoped(ctx context.Context, f ApplicationFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Application{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.ProviderID != 0 {
		q = q.Where("provider_id = ?", f.ProviderID)
	}
	if f.JobID != 0 {
		q = q.Where("job_id = ?", f.JobID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

// List preloads the job, and the applicant when listing for a provider.
func (r *applicationRepository) List(ctx context.Context, filter ApplicationFilter, page models.PageQuery) ([]models.Application, int64, error) {
	q := r.scoped(ctx, filter)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	q = q.Preload("Job")
	if filter.ProviderID != 0 {
		q = q.Preload("User")
	}
	var apps []models.Application
	if err := q.Scopes(paginate(page)).Order("applied_date DESC").Order("id DESC").Find(&apps).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	if err := r.markResumes(ctx, apps); err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *applicationRepository) markResumes(ctx context.Context, apps []models.Application) error {
	if len(apps) == 0 {
		return nil
	}
	ids := make([]uint, len(apps))
	for i := range apps {
		ids[i] = apps[i].ID
	}
	var withResume []uint
	err := r.db.WithContext(ctx).Model(&models.Attachment{}).
		Where("owner_kind = ? AND owner_id IN ?", models.OwnerApplicationResume, ids).
		Distinct().
		Pluck("owner_id", &withResume).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	set := make(map[uint]struct{}, len(withResume))
	for _, id := range withResume {
		set[id] = struct{}{}
	}
	for i := range apps {
		_, apps[i].HasResume = set[apps[i].ID]
	}
	return nil
}

func (r *applicationRepository) Count(ctx context.Context, filter ApplicationFilter) (int64, error) {
	var n int64
	if err := r.scoped(ctx, filter).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *applicationRepository) StatsForUser(ctx context.Context, userID uint) (models.ApplicationStats, error) {
	var rows []struct {
		Status models.ApplicationStatus
		N      int64
	}
	err := r.scoped(ctx, ApplicationFilter{UserID: userID}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return models.ApplicationStats{}, models.NewInternalError(err)
	}

	var stats models.ApplicationStats
	for _, row := range rows {
		stats.TotalApplications += row.N
		switch row.Status {
		case models.StatusApplied:
			stats.Applied = row.N
		case models.StatusInterview:
			stats.Interviews = row.N
		case models.StatusOffer:
			stats.Offers = row.N
		case models.StatusRejected:
			stats.Rejected = row.N
		case models.StatusWithdrawn:
			stats.Withdrawn = row.N
		}
	}
	return stats, nil
}
