package repository

import (
	"context"
	"errors"

	"jobboard/internal/models"

	"gorm.io/gorm"
)

// metaColumns excludes the blob so listings stay cheap.
var metaColumns = []string{"id", "owner_kind", "owner_id", "position", "filename", "content_type", "size", "created_at"}

// AttachmentRepository stores binary blobs keyed by a stable ID.
type AttachmentRepository interface {
	Get(ctx context.Context, id string) (*models.Attachment, error)
	GetForOwner(ctx context.Context, kind models.OwnerKind, ownerID uint) (*models.Attachment, error)
	ListMeta(ctx context.Context, kind models.OwnerKind, ownerID uint) ([]models.Attachment, error)
	HasForOwner(ctx context.Context, kind models.OwnerKind, ownerIDs []uint) (map[uint]bool, error)
	Replace(ctx context.Context, att *models.Attachment) error
	Append(ctx context.Context, kind models.OwnerKind, ownerID uint, atts []*models.Attachment) error
	Delete(ctx context.Context, id string) error
}

type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository returns a new AttachmentRepository implementation.
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Get(ctx context.Context, id string) (*models.Attachment, error) {
	var a models.Attachment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, notFoundOr(err, "Attachment", id)
	}
	return &a, nil
}

// GetForOwner returns the newest attachment of kind for the owner, or nil, nil.
func (r *attachmentRepository) GetForOwner(ctx context.Context, kind models.OwnerKind, ownerID uint) (*models.Attachment, error) {
	var a models.Attachment
	err := r.db.WithContext(ctx).
		Where("owner_kind = ? AND owner_id = ?", kind, ownerID).
		Order("created_at DESC").
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &a, nil
}

// ListMeta returns attachments without their bytes, in position order.
func (r *attachmentRepository) ListMeta(ctx context.Context, kind models.OwnerKind, ownerID uint) ([]models.Attachment, error) {
	var out []models.Attachment
	err := r.db.WithContext(ctx).
		Select(metaColumns).
		Where("owner_kind = ? AND owner_id = ?", kind, ownerID).
		Order("position ASC").
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func (r *attachmentRepository) HasForOwner(ctx context.Context, kind models.OwnerKind, ownerIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Attachment{}).
		Where("owner_kind = ? AND owner_id IN ?", kind, ownerIDs).
		Distinct().
		Pluck("owner_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// Replace stores att as the single attachment of its kind for the owner.
func (r *attachmentRepository) Replace(ctx context.Context, att *models.Attachment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_kind = ? AND owner_id = ?", att.OwnerKind, att.OwnerID).
			Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Create(att).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Append adds atts after the owner's existing attachments of kind.
func (r *attachmentRepository) Append(ctx context.Context, kind models.OwnerKind, ownerID uint, atts []*models.Attachment) error {
	if len(atts) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next struct{ N *int }
		if err := tx.Model(&models.Attachment{}).
			Select("MAX(position) + 1 AS n").
			Where("owner_kind = ? AND owner_id = ?", kind, ownerID).
			Scan(&next).Error; err != nil {
			return err
		}
		pos := 0
		if next.N != nil {
			pos = *next.N
		}
		for _, a := range atts {
			a.OwnerKind = kind
			a.OwnerID = ownerID
			a.Position = pos
			pos++
			if err := tx.Create(a).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *attachmentRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Attachment{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Attachment", id)
	}
	return nil
}
