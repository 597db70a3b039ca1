package service

import (
	"context"
	"testing"

	"jobboard/internal/featureflags"
	"jobboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type applicationFixture struct {
	svc         *ApplicationService
	apps        *appRepoStub
	jobs        *jobRepoStub
	attachments *memAttachmentRepo
	notes       *notificationRepoStub
}

// Provider 1 (user 10) owns job 3; applicant 1 owns application 5.
func newApplicationFixture(flags string) *applicationFixture {
	pf := newProviderFixture(
		&models.Provider{ID: 1, UserID: 10, VerificationStatus: models.VerificationVerified},
		&models.Provider{ID: 2, UserID: 20, VerificationStatus: models.VerificationVerified},
	)
	f := &applicationFixture{
		apps:        noopAppRepo(),
		jobs:        noopJobRepo(),
		attachments: pf.attachments,
		notes:       pf.notes,
	}
	f.jobs.getByIDFn = func(_ context.Context, id uint) (*models.Job, error) {
		return &models.Job{ID: id, ProviderID: 1, Provider: &models.Provider{ID: 1, UserID: 10}, JobTitle: "Engineer", IsActive: true}, nil
	}
	f.apps.getByIDFn = func(_ context.Context, id uint) (*models.Application, error) {
		return &models.Application{ID: id, UserID: 1, JobID: 3, ProviderID: 1, Status: models.StatusApplied, Job: &models.Job{JobTitle: "Engineer"}}, nil
	}
	f.svc = NewApplicationService(f.apps, f.jobs, f.attachments, pf.svc, NewNotificationService(f.notes), featureflags.NewManager(flags))
	return f
}

var (
	adminViewer     = models.Principal{UserID: 99, Role: models.RoleAdmin}
	ownerApplicant  = models.Principal{UserID: 1, Role: models.RoleApplicant}
	otherApplicant  = models.Principal{UserID: 2, Role: models.RoleApplicant}
	owningProvider  = models.Principal{UserID: 10, Role: models.RoleProvider}
	unrelatedVendor = models.Principal{UserID: 20, Role: models.RoleProvider}
)

func TestApplicationServiceCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("copies provider and notifies job owner", func(t *testing.T) {
		f := newApplicationFixture("")
		var gotResume *models.Attachment
		f.apps.createWithCounterFn = func(_ context.Context, a *models.Application, r *models.Attachment) error {
			gotResume = r
			a.ID = 42
			return nil
		}

		app, err := f.svc.Create(ctx, ownerApplicant, ApplyInput{
			JobID:       3,
			CoverLetter: " hi ",
			Resume:      &models.Upload{Filename: "cv.pdf", Data: pdfBytes},
		})
		require.NoError(t, err)
		assert.Equal(t, uint(1), app.ProviderID)
		assert.Equal(t, models.StatusApplied, app.Status)
		assert.Equal(t, "hi", app.CoverLetter)
		require.NotNil(t, gotResume)
		assert.Equal(t, "application/pdf", gotResume.ContentType)

		sent := f.notes.ofType(models.NotificationNewApplication)
		require.Len(t, sent, 1)
		assert.Equal(t, uint(10), sent[0].UserID)
		assert.Equal(t, "New application for Engineer", sent[0].Message)
		assert.Equal(t, uint(42), sent[0].Data["applicationId"])
	})

	t.Run("duplicate surfaces conflict", func(t *testing.T) {
		f := newApplicationFixture("")
		f.apps.createWithCounterFn = func(context.Context, *models.Application, *models.Attachment) error {
			return models.NewConflictError("You have already applied for this job")
		}
		_, err := f.svc.Create(ctx, ownerApplicant, ApplyInput{JobID: 3})
		assertAppErrorCode(t, err, models.CodeConflict)
		assert.Empty(t, f.notes.created)
	})

	t.Run("notification failure does not fail the application", func(t *testing.T) {
		f := newApplicationFixture("")
		f.notes.createFn = func(context.Context, *models.Notification) error {
			return models.NewInternalError(assert.AnError)
		}
		_, err := f.svc.Create(ctx, ownerApplicant, ApplyInput{JobID: 3})
		require.NoError(t, err)
	})

	t.Run("missing job", func(t *testing.T) {
		f := newApplicationFixture("")
		f.jobs.getByIDFn = func(_ context.Context, id uint) (*models.Job, error) {
			return nil, models.NewNotFoundError("Job", id)
		}
		_, err := f.svc.Create(ctx, ownerApplicant, ApplyInput{JobID: 3})
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestApplicationServiceResolveForViewer(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		viewer  models.Principal
		allowed bool
	}{
		{"admin", adminViewer, true},
		{"owning applicant", ownerApplicant, true},
		{"other applicant", otherApplicant, false},
		{"owning provider", owningProvider, true},
		{"unrelated provider", unrelatedVendor, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newApplicationFixture("")
			app, err := f.svc.ResolveForViewer(context.Background(), 5, tc.viewer)
			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, uint(5), app.ID)
				return
			}
			assertAppErrorCode(t, err, models.CodeForbidden)
		})
	}
}

func TestApplicationServiceResolveResume(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("application resume wins over profile resume", func(t *testing.T) {
		f := newApplicationFixture("")
		require.NoError(t, f.attachments.Replace(ctx, &models.Attachment{OwnerKind: models.OwnerUserResume, OwnerID: 1, Filename: "profile.pdf"}))
		require.NoError(t, f.attachments.Replace(ctx, &models.Attachment{OwnerKind: models.OwnerApplicationResume, OwnerID: 5, Filename: "app.pdf"}))

		att, err := f.svc.ResolveResume(ctx, 5, owningProvider)
		require.NoError(t, err)
		assert.Equal(t, "app.pdf", att.Filename)
	})

	t.Run("falls back to profile resume", func(t *testing.T) {
		f := newApplicationFixture("")
		require.NoError(t, f.attachments.Replace(ctx, &models.Attachment{OwnerKind: models.OwnerUserResume, OwnerID: 1, Filename: "profile.pdf"}))

		att, err := f.svc.ResolveResume(ctx, 5, ownerApplicant)
		require.NoError(t, err)
		assert.Equal(t, "profile.pdf", att.Filename)
	})

	t.Run("flags missing resume", func(t *testing.T) {
		f := newApplicationFixture("")
		_, err := f.svc.ResolveResume(ctx, 5, adminViewer)
		appErr := assertAppErrorCode(t, err, models.CodeNotFound)
		assert.Equal(t, true, appErr.Fields["requiresResume"])
	})

	t.Run("denies before looking at content", func(t *testing.T) {
		f := newApplicationFixture("")
		require.NoError(t, f.attachments.Replace(ctx, &models.Attachment{OwnerKind: models.OwnerApplicationResume, OwnerID: 5, Filename: "app.pdf"}))
		_, err := f.svc.ResolveResume(ctx, 5, otherApplicant)
		assertAppErrorCode(t, err, models.CodeForbidden)
	})
}

func TestApplicationServiceUpdateStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("partial update by owning provider", func(t *testing.T) {
		f := newApplicationFixture("")
		var fields map[string]any
		f.apps.updateFieldsFn = func(_ context.Context, _ uint, got map[string]any) error {
			fields = got
			return nil
		}
		notes := "went well"
		_, err := f.svc.UpdateStatus(ctx, owningProvider, 5, StatusInput{Status: "Interview", InterviewNotes: &notes})
		require.NoError(t, err)
		assert.Equal(t, models.StatusInterview, fields["status"])
		assert.Equal(t, "went well", fields["interview_notes"])
		assert.NotContains(t, fields, "offer_details")
		assert.NotContains(t, fields, "feedback")

		sent := f.notes.ofType(models.NotificationApplicationStatus)
		require.Len(t, sent, 1)
		assert.Equal(t, uint(1), sent[0].UserID)
	})

	t.Run("unrelated provider is forbidden", func(t *testing.T) {
		f := newApplicationFixture("")
		_, err := f.svc.UpdateStatus(ctx, unrelatedVendor, 5, StatusInput{Status: "Offer"})
		assertAppErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newApplicationFixture("")
		_, err := f.svc.UpdateStatus(ctx, owningProvider, 5, StatusInput{Status: "Hired"})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("any status may follow any other by default", func(t *testing.T) {
		f := newApplicationFixture("")
		f.apps.getByIDFn = func(_ context.Context, id uint) (*models.Application, error) {
			return &models.Application{ID: id, UserID: 1, ProviderID: 1, Status: models.StatusRejected}, nil
		}
		_, err := f.svc.UpdateStatus(ctx, owningProvider, 5, StatusInput{Status: "Applied"})
		require.NoError(t, err)
	})

	t.Run("strict flag enforces transitions", func(t *testing.T) {
		f := newApplicationFixture(featureflags.StrictApplicationStatus + "=on")
		f.apps.getByIDFn = func(_ context.Context, id uint) (*models.Application, error) {
			return &models.Application{ID: id, UserID: 1, ProviderID: 1, Status: models.StatusRejected}, nil
		}
		_, err := f.svc.UpdateStatus(ctx, owningProvider, 5, StatusInput{Status: "Applied"})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("rating bounds", func(t *testing.T) {
		f := newApplicationFixture("")
		rating := 9
		_, err := f.svc.UpdateStatus(ctx, owningProvider, 5, StatusInput{Status: "Offer", Rating: &rating})
		assertAppErrorCode(t, err, models.CodeValidation)
	})
}

func TestCanTransition(t *testing.T) {
	t.Parallel()
	assert.True(t, CanTransition(models.StatusApplied, models.StatusInterview))
	assert.True(t, CanTransition(models.StatusInterview, models.StatusOffer))
	assert.True(t, CanTransition(models.StatusOffer, models.StatusOffer))
	assert.False(t, CanTransition(models.StatusOffer, models.StatusInterview))
	assert.False(t, CanTransition(models.StatusWithdrawn, models.StatusApplied))
	assert.False(t, CanTransition(models.StatusRejected, models.StatusOffer))
}

func TestApplicationServiceDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for _, tc := range []struct {
		name    string
		actor   models.Principal
		allowed bool
	}{
		{"owner", ownerApplicant, true},
		{"admin", adminViewer, true},
		{"other applicant", otherApplicant, false},
		{"owning provider", owningProvider, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newApplicationFixture("")
			deleted := false
			f.apps.deleteWithCounterFn = func(context.Context, *models.Application) error {
				deleted = true
				return nil
			}
			err := f.svc.Delete(ctx, tc.actor, 5)
			if tc.allowed {
				require.NoError(t, err)
				assert.True(t, deleted)
				return
			}
			assertAppErrorCode(t, err, models.CodeForbidden)
			assert.False(t, deleted)
		})
	}
}
