package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobboard/internal/models"
	"jobboard/internal/repository"
)

// ComplaintService files complaints and runs the admin review.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	notifier   *NotificationService
	now        func() time.Time
}

// NewComplaintService returns a new ComplaintService.
func NewComplaintService(complaints repository.ComplaintRepository, notifier *NotificationService) *ComplaintService {
	return &ComplaintService{complaints: complaints, notifier: notifier, now: time.Now}
}

// ComplaintInput is a new complaint. TargetID is not resolved.
type ComplaintInput struct {
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
	Message    string `json:"message"`
}

// ReviewInput is an admin decision on a complaint.
type ReviewInput struct {
	Status        string `json:"status"`
	AdminResponse string `json:"adminResponse"`
}

func (s *ComplaintService) Create(ctx context.Context, p models.Principal, in ComplaintInput) (*models.Complaint, error) {
	target, ok := models.ParseComplaintTarget(strings.TrimSpace(in.TargetType))
	if !ok {
		return nil, models.NewValidationError("targetType must be one of provider, job, application, user")
	}
	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		return nil, models.NewValidationError("message is required")
	}

	c := &models.Complaint{
		UserID:     p.UserID,
		TargetType: target,
		TargetID:   strings.TrimSpace(in.TargetID),
		Message:    msg,
		Status:     models.ComplaintOpen,
	}
	if err := s.complaints.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns every complaint matching filter.
func (s *ComplaintService) List(ctx context.Context, filter repository.ComplaintFilter, page models.PageQuery) ([]models.Complaint, int64, error) {
	return s.complaints.List(ctx, filter, page)
}

// ListMine returns the caller's complaints.
func (s *ComplaintService) ListMine(ctx context.Context, p models.Principal, status models.ComplaintStatus, page models.PageQuery) ([]models.Complaint, int64, error) {
	return s.complaints.List(ctx, repository.ComplaintFilter{UserID: p.UserID, Status: status}, page)
}

// Review records an admin decision and notifies the filer.
func (s *ComplaintService) Review(ctx context.Context, admin models.Principal, id uint, in ReviewInput) (*models.Complaint, error) {
	status, ok := models.ParseComplaintStatus(strings.TrimSpace(in.Status))
	if !ok {
		return nil, models.NewValidationError("status must be one of open, in_review, resolved, rejected")
	}

	c, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.complaints.UpdateFields(ctx, c.ID, map[string]any{
		"status":         status,
		"admin_response": strings.TrimSpace(in.AdminResponse),
		"reviewed_by":    admin.UserID,
		"reviewed_at":    now,
	}); err != nil {
		return nil, err
	}

	s.notifier.Emit(ctx, c.UserID, models.NotificationComplaintReviewed,
		fmt.Sprintf("Your complaint has been reviewed. Status: %s", status),
		map[string]any{"complaintId": c.ID, "status": string(status)},
	)
	return s.complaints.GetByID(ctx, c.ID)
}
