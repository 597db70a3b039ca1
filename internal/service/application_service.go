package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobboard/internal/cache"
	"jobboard/internal/featureflags"
	"jobboard/internal/media"
	"jobboard/internal/models"
	"jobboard/internal/observability"
	"jobboard/internal/repository"
)

// transitions is the table enforced when strict application status is on.
var transitions = map[models.ApplicationStatus][]models.ApplicationStatus{
	models.StatusApplied:   {models.StatusInterview, models.StatusOffer, models.StatusRejected, models.StatusWithdrawn},
	models.StatusInterview: {models.StatusOffer, models.StatusRejected, models.StatusWithdrawn},
	models.StatusOffer:     {models.StatusRejected, models.StatusWithdrawn},
}

// CanTransition reports whether from may move to to under the strict table.
// Re-applying the current status is always allowed.
func CanTransition(from, to models.ApplicationStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ApplicationService owns the application lifecycle and who may see what.
type ApplicationService struct {
	apps        repository.ApplicationRepository
	jobs        repository.JobRepository
	attachments repository.AttachmentRepository
	providers   *ProviderService
	notifier    *NotificationService
	flags       *featureflags.Manager
}

// NewApplicationService returns a new ApplicationService.
func NewApplicationService(
	apps repository.ApplicationRepository,
	jobs repository.JobRepository,
	attachments repository.AttachmentRepository,
	providers *ProviderService,
	notifier *NotificationService,
	flags *featureflags.Manager,
) *ApplicationService {
	return &ApplicationService{
		apps:        apps,
		jobs:        jobs,
		attachments: attachments,
		providers:   providers,
		notifier:    notifier,
		flags:       flags,
	}
}

// ApplyInput is an applicant's submission.
type ApplyInput struct {
	JobID       uint
	CoverLetter string
	Resume      *models.Upload
}

// Create submits an application and bumps the job's counter atomically.
func (s *ApplicationService) Create(ctx context.Context, p models.Principal, in ApplyInput) (*models.Application, error) {
	ctx, end := observability.StartSpan(ctx, "application.create",
		observability.AttrJobID.Int64(int64(in.JobID)),
	)
	app, err := s.create(ctx, p, in)
	end(err)
	return app, err
}

func (s *ApplicationService) create(ctx context.Context, p models.Principal, in ApplyInput) (*models.Application, error) {
	if in.JobID == 0 {
		return nil, models.NewValidationError("jobId is required")
	}
	job, err := s.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		return nil, err
	}
	if !job.IsActive {
		return nil, models.NewValidationError("This job is no longer accepting applications")
	}

	var resume *models.Attachment
	if in.Resume != nil {
		u, err := media.Validate(*in.Resume, media.KindDocument)
		if err != nil {
			return nil, err
		}
		resume = u.ToAttachment(models.OwnerApplicationResume, 0)
	}

	app := &models.Application{
		UserID:      p.UserID,
		JobID:       job.ID,
		ProviderID:  job.ProviderID,
		Status:      models.StatusApplied,
		AppliedDate: time.Now(),
		CoverLetter: strings.TrimSpace(in.CoverLetter),
	}
	if err := s.apps.CreateWithCounter(ctx, app, resume); err != nil {
		return nil, err
	}
	observability.ApplicationsCreated.Inc()
	cache.InvalidateJob(ctx, job.ID)
	cache.InvalidateStats(ctx, job.ProviderID)

	if job.Provider != nil {
		s.notifier.Emit(ctx, job.Provider.UserID, models.NotificationNewApplication,
			"New application for "+job.JobTitle,
			map[string]any{"applicationId": app.ID, "jobId": job.ID},
		)
	}
	return app, nil
}

// ResolveForViewer loads an application if the viewer may see it: admins
// always, applicants their own, providers those addressed to them.
func (s *ApplicationService) ResolveForViewer(ctx context.Context, id uint, viewer models.Principal) (*models.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeViewer(ctx, app, viewer); err != nil {
		return nil, err
	}
	resume, err := s.attachments.HasForOwner(ctx, models.OwnerApplicationResume, []uint{app.ID})
	if err != nil {
		return nil, err
	}
	app.HasResume = resume[app.ID]
	return app, nil
}

func (s *ApplicationService) authorizeViewer(ctx context.Context, app *models.Application, viewer models.Principal) error {
	denied := models.NewForbiddenError("Not authorized to view this application")
	switch viewer.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleApplicant:
		if app.UserID == viewer.UserID {
			return nil
		}
		return denied
	case models.RoleProvider:
		provider, err := s.providers.GetOrCreate(ctx, viewer)
		if err != nil {
			return err
		}
		if provider.ID == app.ProviderID {
			return nil
		}
		return denied
	default:
		return denied
	}
}

// ResolveResume returns the application's own resume, falling back to the
// applicant's profile resume.
func (s *ApplicationService) ResolveResume(ctx context.Context, id uint, viewer models.Principal) (*models.Attachment, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeViewer(ctx, app, viewer); err != nil {
		return nil, err
	}

	att, err := s.attachments.GetForOwner(ctx, models.OwnerApplicationResume, app.ID)
	if err != nil {
		return nil, err
	}
	if att != nil {
		return att, nil
	}
	att, err = s.attachments.GetForOwner(ctx, models.OwnerUserResume, app.UserID)
	if err != nil {
		return nil, err
	}
	if att != nil {
		return att, nil
	}
	return nil, models.NewNotFoundMessage("No resume available for this application").
		WithField("requiresResume", true)
}

// StatusInput is a provider's status update. Nil fields are left unchanged.
type StatusInput struct {
	Status         string     `json:"status"`
	InterviewDate  *time.Time `json:"interviewDate"`
	InterviewNotes *string    `json:"interviewNotes"`
	OfferDetails   *string    `json:"offerDetails"`
	Feedback       *string    `json:"feedback"`
	Rating         *int       `json:"rating"`
}

// UpdateStatus changes an application's status on behalf of its provider.
func (s *ApplicationService) UpdateStatus(ctx context.Context, p models.Principal, id uint, in StatusInput) (*models.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	provider, err := s.providers.GetOrCreate(ctx, p)
	if err != nil {
		return nil, err
	}
	if provider.ID != app.ProviderID {
		return nil, models.NewForbiddenError("Not authorized to update this application")
	}

	status, ok := models.ParseApplicationStatus(in.Status)
	if !ok {
		return nil, models.NewValidationError("Invalid status")
	}
	if s.flags.Enabled(featureflags.StrictApplicationStatus, p.UserID) && !CanTransition(app.Status, status) {
		return nil, models.NewValidationError(fmt.Sprintf("Cannot move application from %s to %s", app.Status, status))
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return nil, models.NewValidationError("Rating must be between 1 and 5")
	}

	fields := map[string]any{"status": status}
	if in.InterviewDate != nil {
		fields["interview_date"] = *in.InterviewDate
	}
	if in.InterviewNotes != nil {
		fields["interview_notes"] = *in.InterviewNotes
	}
	if in.OfferDetails != nil {
		fields["offer_details"] = *in.OfferDetails
	}
	if in.Feedback != nil {
		fields["feedback"] = *in.Feedback
	}
	if in.Rating != nil {
		fields["rating"] = *in.Rating
	}
	if err := s.apps.UpdateFields(ctx, app.ID, fields); err != nil {
		return nil, err
	}
	observability.ApplicationStatusChanges.WithLabelValues(string(status)).Inc()
	cache.InvalidateStats(ctx, app.ProviderID)

	if status != app.Status {
		title := "your application"
		if app.Job != nil {
			title = app.Job.JobTitle
		}
		s.notifier.Emit(ctx, app.UserID, models.NotificationApplicationStatus,
			fmt.Sprintf("Your application for %s is now %s", title, status),
			map[string]any{"applicationId": app.ID, "status": string(status)},
		)
	}
	return s.apps.GetByID(ctx, app.ID)
}

// Delete removes an application. Only its applicant or an admin may do so.
func (s *ApplicationService) Delete(ctx context.Context, p models.Principal, id uint) error {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if app.UserID != p.UserID && !p.IsAdmin() {
		return models.NewForbiddenError("Not authorized to delete this application")
	}
	if err := s.apps.DeleteWithCounter(ctx, app); err != nil {
		return err
	}
	cache.InvalidateJob(ctx, app.JobID)
	cache.InvalidateStats(ctx, app.ProviderID)
	return nil
}

// ListMine lists the applicant's own applications.
func (s *ApplicationService) ListMine(ctx context.Context, p models.Principal, filter repository.ApplicationFilter, page models.PageQuery) ([]models.Application, int64, error) {
	filter.UserID = p.UserID
	filter.ProviderID = 0
	return s.apps.List(ctx, filter, page)
}

// ListForProvider lists applications addressed to the caller's provider.
func (s *ApplicationService) ListForProvider(ctx context.Context, p models.Principal, filter repository.ApplicationFilter, page models.PageQuery) ([]models.Application, int64, error) {
	provider, err := s.providers.GetOrCreate(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	filter.ProviderID = provider.ID
	filter.UserID = 0
	return s.apps.List(ctx, filter, page)
}

// UserStats partitions the applicant's applications by status.
func (s *ApplicationService) UserStats(ctx context.Context, userID uint) (models.ApplicationStats, error) {
	return s.apps.StatsForUser(ctx, userID)
}
