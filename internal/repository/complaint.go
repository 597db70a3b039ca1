package repository

import (
	"context"

	"jobboard/internal/models"

	"gorm.io/gorm"
)

// ComplaintFilter narrows complaint listings.
type ComplaintFilter struct {
	UserID     uint
	Status     models.ComplaintStatus
	TargetType models.ComplaintTarget
}

// ComplaintRepository defines persistence operations for complaints.
type ComplaintRepository interface {
	Create(ctx context.Context, c *models.Complaint) error
	GetByID(ctx context.Context, id uint) (*models.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter, page models.PageQuery) ([]models.Complaint, int64, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
}

type complaintRepository struct {
	db *gorm.DB
}

// NewComplaintRepository returns a new ComplaintRepository implementation.
func NewComplaintRepository(db *gorm.DB) ComplaintRepository {
	return &complaintRepository{db: db}
}

func (r *complaintRepository) Create(ctx context.Context, c *models.Complaint) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id uint) (*models.Complaint, error) {
	var c models.Complaint
	if err := r.db.WithContext(ctx).Preload("User").First(&c, id).Error; err != nil {
		return nil, notFoundOr(err, "Complaint", id)
	}
	return &c, nil
}

func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter, page models.PageQuery) ([]models.Complaint, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Complaint{})
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.TargetType != "" {
		q = q.Where("target_type = ?", filter.TargetType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var out []models.Complaint
	if err := q.Preload("User").Scopes(paginate(page)).Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return out, total, nil
}

func (r *complaintRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Complaint{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Complaint", id)
	}
	return nil
}
