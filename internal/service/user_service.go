package service

import (
	"context"
	"strings"

	"jobboard/internal/media"
	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/validation"

	"gorm.io/datatypes"
)

// UserService handles self-service profile edits and admin account control.
type UserService struct {
	users       repository.UserRepository
	attachments repository.AttachmentRepository
}

// NewUserService returns a new UserService.
func NewUserService(users repository.UserRepository, attachments repository.AttachmentRepository) *UserService {
	return &UserService{users: users, attachments: attachments}
}

// UpdateProfileInput is a partial self-service profile edit.
type UpdateProfileInput struct {
	Name         *string
	Phone        *string
	Bio          *string
	Location     *string
	Skills       *[]string
	Experience   *int
	Resume       *models.Upload
	ProfileImage *models.Upload
}

const maxBioLen = 1000

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile applies the supplied fields and replaces uploaded attachments.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.User, error) {
	fields := make(map[string]any)
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, models.NewValidationError("Name cannot be empty")
		}
		fields["name"] = name
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if err := validation.ValidatePhone(phone); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		fields["phone"] = phone
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 1000 characters)")
		}
		fields["bio"] = *in.Bio
	}
	if in.Location != nil {
		fields["location"] = strings.TrimSpace(*in.Location)
	}
	if in.Skills != nil {
		fields["skills"] = datatypes.JSONSlice[string](*in.Skills)
	}
	if in.Experience != nil {
		if *in.Experience < 0 {
			return nil, models.NewValidationError("Experience must not be negative")
		}
		fields["experience"] = *in.Experience
	}

	var resume, image *models.Attachment
	if in.Resume != nil {
		u, err := media.Validate(*in.Resume, media.KindDocument)
		if err != nil {
			return nil, err
		}
		resume = u.ToAttachment(models.OwnerUserResume, userID)
	}
	if in.ProfileImage != nil {
		u, err := media.NormalizeImage(*in.ProfileImage)
		if err != nil {
			return nil, err
		}
		image = u.ToAttachment(models.OwnerUserImage, userID)
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
		return nil, err
	}
	if resume != nil {
		if err := s.attachments.Replace(ctx, resume); err != nil {
			return nil, err
		}
	}
	if image != nil {
		if err := s.storeImage(ctx, image); err != nil {
			return nil, err
		}
	}
	return s.users.GetByID(ctx, userID)
}

// SetProfileImage replaces the user's profile image.
func (s *UserService) SetProfileImage(ctx context.Context, userID uint, upload models.Upload) (*models.User, error) {
	u, err := media.NormalizeImage(upload)
	if err != nil {
		return nil, err
	}
	if err := s.storeImage(ctx, u.ToAttachment(models.OwnerUserImage, userID)); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

func (s *UserService) storeImage(ctx context.Context, image *models.Attachment) error {
	if err := s.attachments.Replace(ctx, image); err != nil {
		return err
	}
	return s.users.UpdateFields(ctx, image.OwnerID, map[string]any{"profile_photo": image.ID})
}

// Resume returns the user's profile resume.
func (s *UserService) Resume(ctx context.Context, userID uint) (*models.Attachment, error) {
	return s.ownedAttachment(ctx, models.OwnerUserResume, userID, "No resume uploaded")
}

// ProfileImage returns the user's profile image.
func (s *UserService) ProfileImage(ctx context.Context, userID uint) (*models.Attachment, error) {
	return s.ownedAttachment(ctx, models.OwnerUserImage, userID, "No profile image uploaded")
}

func (s *UserService) ownedAttachment(ctx context.Context, kind models.OwnerKind, userID uint, missing string) (*models.Attachment, error) {
	att, err := s.attachments.GetForOwner(ctx, kind, userID)
	if err != nil {
		return nil, err
	}
	if att == nil {
		return nil, models.NewNotFoundMessage(missing)
	}
	return att, nil
}

// List is the admin user listing, optionally by role.
func (s *UserService) List(ctx context.Context, role string, page models.PageQuery) ([]models.User, int64, error) {
	filter := repository.UserFilter{}
	if role != "" {
		r := models.Role(role)
		if !r.Valid() {
			return nil, 0, models.NewValidationError("Invalid role")
		}
		filter.Role = r
	}
	return s.users.List(ctx, filter, page)
}

// SetStatus activates or deactivates an account. Admins cannot lock themselves out.
func (s *UserService) SetStatus(ctx context.Context, actor models.Principal, userID uint, active bool) (*models.User, error) {
	if actor.UserID == userID && !active {
		return nil, models.NewValidationError("You cannot deactivate your own account")
	}
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}
