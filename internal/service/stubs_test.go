package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"jobboard/internal/models"
	"jobboard/internal/repository"
)

var pdfBytes = []byte("%PDF-1.4\n%test document\n")

func assertAppErrorCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != code {
		t.Fatalf("expected %s app error, got %#v", code, err)
	}
	return appErr
}

type userRepoStub struct {
	getByIDFn               func(context.Context, uint) (*models.User, error)
	getByEmailFn            func(context.Context, string) (*models.User, error)
	createFn                func(context.Context, *models.User) error
	createApplicantFn       func(context.Context, *models.User, *models.Attachment) error
	createProviderAccountFn func(context.Context, *models.User, *models.Provider, []*models.Attachment) error
	updateFieldsFn          func(context.Context, uint, map[string]any) error
	setActiveFn             func(context.Context, uint, bool) error
	touchLastLoginFn        func(context.Context, uint, time.Time) error
	listFn                  func(context.Context, repository.UserFilter, models.PageQuery) ([]models.User, int64, error)
	listIDsByRoleFn         func(context.Context, models.Role) ([]uint, error)
	countByRoleFn           func(context.Context, models.Role) (int64, error)
	countFn                 func(context.Context) (int64, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	return s.createFn(ctx, u)
}
func (s *userRepoStub) CreateApplicantAccount(ctx context.Context, u *models.User, resume *models.Attachment) error {
	return s.createApplicantFn(ctx, u, resume)
}
func (s *userRepoStub) CreateProviderAccount(ctx context.Context, u *models.User, p *models.Provider, docs []*models.Attachment) error {
	return s.createProviderAccountFn(ctx, u, p, docs)
}
func (s *userRepoStub) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	return s.updateFieldsFn(ctx, id, fields)
}
func (s *userRepoStub) SetActive(ctx context.Context, id uint, active bool) error {
	return s.setActiveFn(ctx, id, active)
}
func (s *userRepoStub) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return s.touchLastLoginFn(ctx, id, at)
}
func (s *userRepoStub) List(ctx context.Context, f repository.UserFilter, p models.PageQuery) ([]models.User, int64, error) {
	return s.listFn(ctx, f, p)
}
func (s *userRepoStub) ListIDsByRole(ctx context.Context, role models.Role) ([]uint, error) {
	return s.listIDsByRoleFn(ctx, role)
}
func (s *userRepoStub) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	return s.countByRoleFn(ctx, role)
}
func (s *userRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Name: "User", Email: "user@example.com", Role: models.RoleProvider, IsActive: true}, nil
		},
		getByEmailFn:            func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:                func(context.Context, *models.User) error { return nil },
		createApplicantFn:       func(context.Context, *models.User, *models.Attachment) error { return nil },
		createProviderAccountFn: func(context.Context, *models.User, *models.Provider, []*models.Attachment) error { return nil },
		updateFieldsFn:          func(context.Context, uint, map[string]any) error { return nil },
		setActiveFn:             func(context.Context, uint, bool) error { return nil },
		touchLastLoginFn:        func(context.Context, uint, time.Time) error { return nil },
		listFn: func(context.Context, repository.UserFilter, models.PageQuery) ([]models.User, int64, error) {
			return nil, 0, nil
		},
		listIDsByRoleFn: func(context.Context, models.Role) ([]uint, error) { return nil, nil },
		countByRoleFn:   func(context.Context, models.Role) (int64, error) { return 0, nil },
		countFn:         func(context.Context) (int64, error) { return 0, nil },
	}
}

type providerRepoStub struct {
	getByIDFn      func(context.Context, uint) (*models.Provider, error)
	getByUserIDFn  func(context.Context, uint) (*models.Provider, error)
	getOrCreateFn  func(context.Context, *models.Provider) (*models.Provider, error)
	createFn       func(context.Context, *models.Provider) error
	updateFieldsFn func(context.Context, uint, map[string]any) error
	listFn         func(context.Context, repository.ProviderFilter, models.PageQuery) ([]models.Provider, int64, error)
	countFn        func(context.Context) (int64, error)
}

func (s *providerRepoStub) GetByID(ctx context.Context, id uint) (*models.Provider, error) {
	return s.getByIDFn(ctx, id)
}
func (s *providerRepoStub) GetByUserID(ctx context.Context, userID uint) (*models.Provider, error) {
	return s.getByUserIDFn(ctx, userID)
}
func (s *providerRepoStub) GetOrCreate(ctx context.Context, seed *models.Provider) (*models.Provider, error) {
	return s.getOrCreateFn(ctx, seed)
}
func (s *providerRepoStub) Create(ctx context.Context, p *models.Provider) error {
	return s.createFn(ctx, p)
}
func (s *providerRepoStub) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	return s.updateFieldsFn(ctx, id, fields)
}
func (s *providerRepoStub) List(ctx context.Context, f repository.ProviderFilter, p models.PageQuery) ([]models.Provider, int64, error) {
	return s.listFn(ctx, f, p)
}
func (s *providerRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}

// memProviderRepo keeps providers in a map so field updates are observable.
func memProviderRepo(providers ...*models.Provider) *providerRepoStub {
	byID := make(map[uint]*models.Provider)
	for _, p := range providers {
		byID[p.ID] = p
	}
	byUser := func(userID uint) *models.Provider {
		for _, p := range byID {
			if p.UserID == userID {
				return p
			}
		}
		return nil
	}
	return &providerRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Provider, error) {
			p, ok := byID[id]
			if !ok {
				return nil, models.NewNotFoundError("Provider", id)
			}
			cp := *p
			return &cp, nil
		},
		getByUserIDFn: func(_ context.Context, userID uint) (*models.Provider, error) {
			p := byUser(userID)
			if p == nil {
				return nil, nil
			}
			cp := *p
			return &cp, nil
		},
		getOrCreateFn: func(_ context.Context, seed *models.Provider) (*models.Provider, error) {
			if p := byUser(seed.UserID); p != nil {
				cp := *p
				return &cp, nil
			}
			seed.ID = uint(len(byID) + 100)
			byID[seed.ID] = seed
			cp := *seed
			return &cp, nil
		},
		createFn: func(_ context.Context, p *models.Provider) error {
			if byUser(p.UserID) != nil {
				return models.NewConflictError("Provider profile already exists")
			}
			p.ID = uint(len(byID) + 100)
			byID[p.ID] = p
			return nil
		},
		updateFieldsFn: func(_ context.Context, id uint, fields map[string]any) error {
			p, ok := byID[id]
			if !ok {
				return models.NewNotFoundError("Provider", id)
			}
			for k, v := range fields {
				switch k {
				case "verification_status":
					p.VerificationStatus = v.(models.VerificationStatus)
				case "rejection_reason":
					p.RejectionReason = v.(string)
				case "verification_notes":
					p.VerificationNotes = v.(string)
				case "company_name":
					p.CompanyName = v.(string)
				}
			}
			return nil
		},
		listFn: func(context.Context, repository.ProviderFilter, models.PageQuery) ([]models.Provider, int64, error) {
			return nil, 0, nil
		},
		countFn: func(context.Context) (int64, error) { return int64(len(byID)), nil },
	}
}

type jobRepoStub struct {
	createFn            func(context.Context, *models.Job) error
	getByIDFn           func(context.Context, uint) (*models.Job, error)
	updateFieldsFn      func(context.Context, uint, map[string]any) error
	setActiveFn         func(context.Context, uint, bool) error
	listFn              func(context.Context, repository.JobFilter, models.PageQuery) ([]models.Job, int64, error)
	countActiveFn       func(context.Context) (int64, error)
	countByProviderFn   func(context.Context, uint) (int64, error)
	deactivateExpiredFn func(context.Context, time.Time) ([]models.Job, error)
}

func (s *jobRepoStub) Create(ctx context.Context, j *models.Job) error { return s.createFn(ctx, j) }
func (s *jobRepoStub) GetByID(ctx context.Context, id uint) (*models.Job, error) {
	return s.getByIDFn(ctx, id)
}
func (s *jobRepoStub) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	return s.updateFieldsFn(ctx, id, fields)
}
func (s *jobRepoStub) SetActive(ctx context.Context, id uint, active bool) error {
	return s.setActiveFn(ctx, id, active)
}
func (s *jobRepoStub) List(ctx context.Context, f repository.JobFilter, p models.PageQuery) ([]models.Job, int64, error) {
	return s.listFn(ctx, f, p)
}
func (s *jobRepoStub) CountActive(ctx context.Context) (int64, error) { return s.countActiveFn(ctx) }
func (s *jobRepoStub) CountByProvider(ctx context.Context, id uint) (int64, error) {
	return s.countByProviderFn(ctx, id)
}
func (s *jobRepoStub) DeactivateExpired(ctx context.Context, now time.Time) ([]models.Job, error) {
	return s.deactivateExpiredFn(ctx, now)
}

func noopJobRepo() *jobRepoStub {
	return &jobRepoStub{
		createFn: func(_ context.Context, j *models.Job) error {
			j.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Job, error) {
			return &models.Job{ID: id, ProviderID: 1, JobTitle: "Engineer", IsActive: true}, nil
		},
		updateFieldsFn: func(context.Context, uint, map[string]any) error { return nil },
		setActiveFn:    func(context.Context, uint, bool) error { return nil },
		listFn: func(context.Context, repository.JobFilter, models.PageQuery) ([]models.Job, int64, error) {
			return nil, 0, nil
		},
		countActiveFn:       func(context.Context) (int64, error) { return 0, nil },
		countByProviderFn:   func(context.Context, uint) (int64, error) { return 0, nil },
		deactivateExpiredFn: func(context.Context, time.Time) ([]models.Job, error) { return nil, nil },
	}
}

type appRepoStub struct {
	createWithCounterFn func(context.Context, *models.Application, *models.Attachment) error
	deleteWithCounterFn func(context.Context, *models.Application) error
	getByIDFn           func(context.Context, uint) (*models.Application, error)
	updateFieldsFn      func(context.Context, uint, map[string]any) error
	listFn              func(context.Context, repository.ApplicationFilter, models.PageQuery) ([]models.Application, int64, error)
	countFn             func(context.Context, repository.ApplicationFilter) (int64, error)
	statsForUserFn      func(context.Context, uint) (models.ApplicationStats, error)
}

func (s *appRepoStub) CreateWithCounter(ctx context.Context, a *models.Application, r *models.Attachment) error {
	return s.createWithCounterFn(ctx, a, r)
}
func (s *appRepoStub) DeleteWithCounter(ctx context.Context, a *models.Application) error {
	return s.deleteWithCounterFn(ctx, a)
}
func (s *appRepoStub) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	return s.getByIDFn(ctx, id)
}
func (s *appRepoStub) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	return s.updateFieldsFn(ctx, id, fields)
}
func (s *appRepoStub) List(ctx context.Context, f repository.ApplicationFilter, p models.PageQuery) ([]models.Application, int64, error) {
	return s.listFn(ctx, f, p)
}
func (s *appRepoStub) Count(ctx context.Context, f repository.ApplicationFilter) (int64, error) {
	return s.countFn(ctx, f)
}
func (s *appRepoStub) StatsForUser(ctx context.Context, userID uint) (models.ApplicationStats, error) {
	return s.statsForUserFn(ctx, userID)
}

func noopAppRepo() *appRepoStub {
	return &appRepoStub{
		createWithCounterFn: func(_ context.Context, a *models.Application, _ *models.Attachment) error {
			a.ID = 1
			return nil
		},
		deleteWithCounterFn: func(context.Context, *models.Application) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Application, error) {
			return &models.Application{ID: id, UserID: 1, JobID: 1, ProviderID: 1, Status: models.StatusApplied}, nil
		},
		updateFieldsFn: func(context.Context, uint, map[string]any) error { return nil },
		listFn: func(context.Context, repository.ApplicationFilter, models.PageQuery) ([]models.Application, int64, error) {
			return nil, 0, nil
		},
		countFn:        func(context.Context, repository.ApplicationFilter) (int64, error) { return 0, nil },
		statsForUserFn: func(context.Context, uint) (models.ApplicationStats, error) { return models.ApplicationStats{}, nil },
	}
}

// memAttachmentRepo is an ordered in-memory attachment store.
type memAttachmentRepo struct {
	items []*models.Attachment
	seq   int
}

func (m *memAttachmentRepo) nextID() string {
	m.seq++
	return fmt.Sprintf("att-%d", m.seq)
}

func (m *memAttachmentRepo) Get(_ context.Context, id string) (*models.Attachment, error) {
	for _, a := range m.items {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, models.NewNotFoundError("Attachment", id)
}

func (m *memAttachmentRepo) GetForOwner(_ context.Context, kind models.OwnerKind, ownerID uint) (*models.Attachment, error) {
	for i := len(m.items) - 1; i >= 0; i-- {
		a := m.items[i]
		if a.OwnerKind == kind && a.OwnerID == ownerID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memAttachmentRepo) ListMeta(_ context.Context, kind models.OwnerKind, ownerID uint) ([]models.Attachment, error) {
	var out []models.Attachment
	for _, a := range m.items {
		if a.OwnerKind == kind && a.OwnerID == ownerID {
			cp := *a
			cp.Data = nil
			out = append(out, cp)
		}
	}
	return out, nil
}

func (m *memAttachmentRepo) HasForOwner(_ context.Context, kind models.OwnerKind, ids []uint) (map[uint]bool, error) {
	out := make(map[uint]bool)
	for _, a := range m.items {
		for _, id := range ids {
			if a.OwnerKind == kind && a.OwnerID == id {
				out[id] = true
			}
		}
	}
	return out, nil
}

func (m *memAttachmentRepo) Replace(_ context.Context, att *models.Attachment) error {
	kept := m.items[:0]
	for _, a := range m.items {
		if a.OwnerKind != att.OwnerKind || a.OwnerID != att.OwnerID {
			kept = append(kept, a)
		}
	}
	m.items = kept
	if att.ID == "" {
		att.ID = m.nextID()
	}
	m.items = append(m.items, att)
	return nil
}

func (m *memAttachmentRepo) Append(_ context.Context, kind models.OwnerKind, ownerID uint, atts []*models.Attachment) error {
	for _, a := range atts {
		a.OwnerKind = kind
		a.OwnerID = ownerID
		if a.ID == "" {
			a.ID = m.nextID()
		}
		m.items = append(m.items, a)
	}
	return nil
}

func (m *memAttachmentRepo) Delete(_ context.Context, id string) error {
	for i, a := range m.items {
		if a.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return models.NewNotFoundError("Attachment", id)
}

type notificationRepoStub struct {
	created  []*models.Notification
	createFn func(context.Context, *models.Notification) error
	getFn    func(context.Context, uint) (*models.Notification, error)
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	if s.createFn != nil {
		if err := s.createFn(ctx, n); err != nil {
			return err
		}
	}
	s.created = append(s.created, n)
	return nil
}
func (s *notificationRepoStub) CreateBatch(ctx context.Context, ns []*models.Notification) error {
	for _, n := range ns {
		if err := s.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}
func (s *notificationRepoStub) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	return s.getFn(ctx, id)
}
func (s *notificationRepoStub) ListByUser(context.Context, uint, *bool, models.PageQuery) ([]models.Notification, int64, error) {
	return nil, 0, nil
}
func (s *notificationRepoStub) CountUnread(context.Context, uint) (int64, error) { return 0, nil }
func (s *notificationRepoStub) MarkRead(_ context.Context, _ uint, id uint) (*models.Notification, error) {
	return &models.Notification{ID: id, Read: true}, nil
}
func (s *notificationRepoStub) MarkAllRead(context.Context, uint) (int64, error) { return 0, nil }
func (s *notificationRepoStub) Delete(context.Context, uint, uint) error         { return nil }

func (s *notificationRepoStub) ofType(typ string) []*models.Notification {
	var out []*models.Notification
	for _, n := range s.created {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}
