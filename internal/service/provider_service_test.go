package service

import (
	"context"
	"testing"

	"jobboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerFixture struct {
	svc         *ProviderService
	providers   *providerRepoStub
	users       *userRepoStub
	attachments *memAttachmentRepo
	notes       *notificationRepoStub
}

func newProviderFixture(providers ...*models.Provider) *providerFixture {
	f := &providerFixture{
		providers:   memProviderRepo(providers...),
		users:       noopUserRepo(),
		attachments: &memAttachmentRepo{},
		notes:       &notificationRepoStub{},
	}
	f.svc = NewProviderService(f.providers, f.users, noopJobRepo(), noopAppRepo(), f.attachments, NewNotificationService(f.notes))
	return f
}

func TestProviderServiceSetVerification(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("verified clears reason and notes", func(t *testing.T) {
		f := newProviderFixture(&models.Provider{
			ID: 1, UserID: 10, VerificationStatus: models.VerificationRejected,
			RejectionReason: "blurry docs", VerificationNotes: "recheck",
		})

		p, err := f.svc.SetVerification(ctx, 1, "verified", "ignored")
		require.NoError(t, err)
		assert.Equal(t, models.VerificationVerified, p.VerificationStatus)
		assert.Empty(t, p.RejectionReason)
		assert.Empty(t, p.VerificationNotes)

		sent := f.notes.ofType(models.NotificationProviderVerified)
		require.Len(t, sent, 1)
		assert.Equal(t, uint(10), sent[0].UserID)
		assert.Equal(t, "Your provider account has been verified!", sent[0].Message)
		assert.Equal(t, uint(1), sent[0].Data["providerId"])
	})

	t.Run("rejected stores reason and keeps notes", func(t *testing.T) {
		f := newProviderFixture(&models.Provider{
			ID: 1, UserID: 10, VerificationStatus: models.VerificationPending, VerificationNotes: "keep me",
		})

		p, err := f.svc.SetVerification(ctx, 1, "rejected", "bad docs")
		require.NoError(t, err)
		assert.Equal(t, "bad docs", p.RejectionReason)
		assert.Equal(t, "keep me", p.VerificationNotes)

		sent := f.notes.ofType(models.NotificationProviderRejected)
		require.Len(t, sent, 1)
		assert.Contains(t, sent[0].Message, "Reason: bad docs")
	})

	t.Run("rejected without reason", func(t *testing.T) {
		f := newProviderFixture(&models.Provider{ID: 1, UserID: 10})
		_, err := f.svc.SetVerification(ctx, 1, "rejected", "  ")
		require.NoError(t, err)
		assert.Contains(t, f.notes.created[0].Message, "Reason: Not specified")
	})

	t.Run("pending stores notes", func(t *testing.T) {
		f := newProviderFixture(&models.Provider{ID: 1, UserID: 10, VerificationStatus: models.VerificationVerified})
		p, err := f.svc.SetVerification(ctx, 1, "pending", "license expired")
		require.NoError(t, err)
		assert.Equal(t, models.VerificationPending, p.VerificationStatus)
		assert.Equal(t, "license expired", p.VerificationNotes)
		assert.Len(t, f.notes.ofType(models.NotificationProviderReverted), 1)
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newProviderFixture(&models.Provider{ID: 1, UserID: 10})
		_, err := f.svc.SetVerification(ctx, 1, "approved", "")
		assertAppErrorCode(t, err, models.CodeValidation)
		assert.Empty(t, f.notes.created)
	})

	t.Run("unknown provider", func(t *testing.T) {
		f := newProviderFixture()
		_, err := f.svc.SetVerification(ctx, 99, "verified", "")
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestProviderServiceResubmitNotifiesEveryAdmin(t *testing.T) {
	t.Parallel()
	f := newProviderFixture(&models.Provider{ID: 1, UserID: 10, CompanyName: "Acme", VerificationStatus: models.VerificationRejected})
	f.users.listIDsByRoleFn = func(_ context.Context, role models.Role) ([]uint, error) {
		require.Equal(t, models.RoleAdmin, role)
		return []uint{7, 8, 9}, nil
	}

	p, err := f.svc.Resubmit(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPending, p.VerificationStatus)

	sent := f.notes.ofType(models.NotificationProviderResubmitted)
	require.Len(t, sent, 3)
	recipients := map[uint]int{}
	for _, n := range sent {
		recipients[n.UserID]++
	}
	assert.Equal(t, map[uint]int{7: 1, 8: 1, 9: 1}, recipients)
}

func TestProviderServiceResubmitFanOutSurvivesFailures(t *testing.T) {
	t.Parallel()
	f := newProviderFixture(&models.Provider{ID: 1, UserID: 10})
	f.users.listIDsByRoleFn = func(context.Context, models.Role) ([]uint, error) { return []uint{7, 8}, nil }
	f.notes.createFn = func(_ context.Context, n *models.Notification) error {
		if n.UserID == 7 {
			return models.NewInternalError(assert.AnError)
		}
		return nil
	}

	_, err := f.svc.Resubmit(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, f.notes.created, 1)
	assert.Equal(t, uint(8), f.notes.created[0].UserID)
}

func TestProviderServiceResubmitWithoutProfile(t *testing.T) {
	t.Parallel()
	f := newProviderFixture()
	_, err := f.svc.Resubmit(context.Background(), 10)
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestProviderServiceGetOrCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("provisions pending profile for provider accounts", func(t *testing.T) {
		f := newProviderFixture()
		f.users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Name: "Jo", Email: "jo@corp.io", CompanyName: "Corp", Role: models.RoleProvider}, nil
		}

		first, err := f.svc.GetOrCreate(ctx, models.Principal{UserID: 5, Role: models.RoleProvider})
		require.NoError(t, err)
		assert.Equal(t, models.VerificationPending, first.VerificationStatus)
		assert.Equal(t, "Corp", first.CompanyName)
		assert.Equal(t, "jo@corp.io", first.CompanyEmail)

		second, err := f.svc.GetOrCreate(ctx, models.Principal{UserID: 5, Role: models.RoleProvider})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("other roles are not provisioned", func(t *testing.T) {
		f := newProviderFixture()
		_, err := f.svc.GetOrCreate(ctx, models.Principal{UserID: 5, Role: models.RoleApplicant})
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestProviderServiceRemoveDocShiftsPositions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := models.Principal{UserID: 10, Role: models.RoleProvider}

	f := newProviderFixture(&models.Provider{ID: 1, UserID: 10})
	require.NoError(t, f.attachments.Append(ctx, models.OwnerProviderDoc, 1, []*models.Attachment{
		{Filename: "a.pdf"}, {Filename: "b.pdf"}, {Filename: "c.pdf"},
	}))

	p, err := f.svc.RemoveDoc(ctx, owner, "0")
	require.NoError(t, err)
	require.Len(t, p.CompanyDocs, 2)
	assert.Equal(t, "b.pdf", p.CompanyDocs[0].Filename)
	assert.Equal(t, "c.pdf", p.CompanyDocs[1].Filename)

	p, err = f.svc.RemoveDoc(ctx, owner, p.CompanyDocs[1].ID)
	require.NoError(t, err)
	require.Len(t, p.CompanyDocs, 1)
	assert.Equal(t, "b.pdf", p.CompanyDocs[0].Filename)

	_, err = f.svc.RemoveDoc(ctx, owner, "5")
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestProviderServiceUpdateProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	owner := models.Principal{UserID: 10, Role: models.RoleProvider}

	t.Run("appends docs and mirrors company name", func(t *testing.T) {
		f := newProviderFixture(&models.Provider{ID: 1, UserID: 10, CompanyName: "Old"})
		var mirrored map[string]any
		f.users.updateFieldsFn = func(_ context.Context, _ uint, fields map[string]any) error {
			mirrored = fields
			return nil
		}

		name := "New Co"
		p, err := f.svc.UpdateProfile(ctx, owner, ProviderUpdateInput{
			Profile: ProfileInput{CompanyName: &name},
			Docs:    []models.Upload{{Filename: "license.pdf", Data: pdfBytes}},
		})
		require.NoError(t, err)
		assert.Equal(t, "New Co", p.CompanyName)
		require.Len(t, p.CompanyDocs, 1)
		assert.Equal(t, "application/pdf", p.CompanyDocs[0].ContentType)
		assert.Equal(t, "New Co", mirrored["company_name"])
	})

	t.Run("rejects non-pdf documents", func(t *testing.T) {
		f := newProviderFixture(&models.Provider{ID: 1, UserID: 10})
		_, err := f.svc.UpdateProfile(ctx, owner, ProviderUpdateInput{
			Docs: []models.Upload{{Filename: "x.pdf", Data: []byte("plain text")}},
		})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("caps document count", func(t *testing.T) {
		f := newProviderFixture(&models.Provider{ID: 1, UserID: 10})
		docs := make([]models.Upload, 6)
		for i := range docs {
			docs[i] = models.Upload{Filename: "d.pdf", Data: pdfBytes}
		}
		_, err := f.svc.UpdateProfile(ctx, owner, ProviderUpdateInput{Docs: docs})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("resubmit flag runs resubmission", func(t *testing.T) {
		f := newProviderFixture(&models.Provider{ID: 1, UserID: 10, VerificationStatus: models.VerificationRejected})
		f.users.listIDsByRoleFn = func(context.Context, models.Role) ([]uint, error) { return []uint{7}, nil }

		p, err := f.svc.UpdateProfile(ctx, owner, ProviderUpdateInput{Resubmit: true})
		require.NoError(t, err)
		assert.Equal(t, models.VerificationPending, p.VerificationStatus)
		assert.Len(t, f.notes.ofType(models.NotificationProviderResubmitted), 1)
	})
}

func TestProviderServiceCreateProfileConflict(t *testing.T) {
	t.Parallel()
	f := newProviderFixture(&models.Provider{ID: 1, UserID: 10})
	name := "Dup"
	_, err := f.svc.CreateProfile(context.Background(), models.Principal{UserID: 10, Role: models.RoleProvider}, ProfileInput{CompanyName: &name})
	assertAppErrorCode(t, err, models.CodeConflict)
}
