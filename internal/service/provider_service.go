package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"jobboard/internal/cache"
	"jobboard/internal/media"
	"jobboard/internal/models"
	"jobboard/internal/observability"
	"jobboard/internal/repository"
)

// ProviderService owns provider profiles, documents and the verification
// state machine.
type ProviderService struct {
	providers   repository.ProviderRepository
	users       repository.UserRepository
	jobs        repository.JobRepository
	apps        repository.ApplicationRepository
	attachments repository.AttachmentRepository
	notifier    *NotificationService
}

// NewProviderService returns a new ProviderService.
func NewProviderService(
	providers repository.ProviderRepository,
	users repository.UserRepository,
	jobs repository.JobRepository,
	apps repository.ApplicationRepository,
	attachments repository.AttachmentRepository,
	notifier *NotificationService,
) *ProviderService {
	return &ProviderService{
		providers:   providers,
		users:       users,
		jobs:        jobs,
		apps:        apps,
		attachments: attachments,
		notifier:    notifier,
	}
}

// ProfileInput carries editable company fields. Nil fields are left unchanged.
type ProfileInput struct {
	CompanyName     *string `json:"companyName" form:"companyName"`
	CompanyEmail    *string `json:"companyEmail" form:"companyEmail"`
	CompanyPhone    *string `json:"companyPhone" form:"companyPhone"`
	CompanyWebsite  *string `json:"companyWebsite" form:"companyWebsite"`
	CompanyType     *string `json:"companyType" form:"companyType"`
	Industry        *string `json:"industry" form:"industry"`
	Location        *string `json:"location" form:"location"`
	Description     *string `json:"description" form:"description"`
	EmployeeCount   *string `json:"employeeCount" form:"employeeCount"`
	TaxID           *string `json:"taxId" form:"taxId"`
	BusinessLicense *string `json:"businessLicense" form:"businessLicense"`
}

func (in ProfileInput) fields() map[string]any {
	out := make(map[string]any)
	set := func(col string, v *string) {
		if v != nil {
			out[col] = strings.TrimSpace(*v)
		}
	}
	set("company_name", in.CompanyName)
	set("company_email", in.CompanyEmail)
	set("company_phone", in.CompanyPhone)
	set("company_website", in.CompanyWebsite)
	set("company_type", in.CompanyType)
	set("industry", in.Industry)
	set("location", in.Location)
	set("description", in.Description)
	set("employee_count", in.EmployeeCount)
	set("tax_id", in.TaxID)
	set("business_license", in.BusinessLicense)
	return out
}

// ProviderStats summarizes one provider's hiring activity.
type ProviderStats struct {
	TotalJobs           int64 `json:"totalJobs"`
	TotalApplicants     int64 `json:"totalApplicants"`
	OffersMade          int64 `json:"offersMade"`
	InterviewsScheduled int64 `json:"interviewsScheduled"`
}

// GetOrCreate returns the caller's provider row, provisioning a pending one
// for provider accounts that have none. Concurrent first calls converge on a
// single row.
func (s *ProviderService) GetOrCreate(ctx context.Context, p models.Principal) (*models.Provider, error) {
	existing, err := s.providers.GetByUserID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	if p.Role != models.RoleProvider {
		return nil, models.NewNotFoundMessage("Provider profile not found")
	}

	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	name := user.CompanyName
	if name == "" {
		name = user.Name
	}
	if name == "" {
		name = "Provider"
	}
	return s.providers.GetOrCreate(ctx, &models.Provider{
		UserID:             user.ID,
		CompanyName:        name,
		CompanyEmail:       user.Email,
		CompanyPhone:       user.Phone,
		VerificationStatus: models.VerificationPending,
		IsActive:           true,
	})
}

// Profile returns the caller's provider with document metadata attached.
func (s *ProviderService) Profile(ctx context.Context, p models.Principal) (*models.Provider, error) {
	provider, err := s.GetOrCreate(ctx, p)
	if err != nil {
		return nil, err
	}
	return provider, s.attachMeta(ctx, provider)
}

// CreateProfile explicitly creates the caller's provider profile.
func (s *ProviderService) CreateProfile(ctx context.Context, p models.Principal, in ProfileInput) (*models.Provider, error) {
	existing, err := s.providers.GetByUserID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Provider profile already exists")
	}
	if in.CompanyName == nil || strings.TrimSpace(*in.CompanyName) == "" {
		return nil, models.NewValidationError("companyName is required")
	}

	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	provider := &models.Provider{
		UserID:             p.UserID,
		CompanyEmail:       user.Email,
		VerificationStatus: models.VerificationPending,
		IsActive:           true,
	}
	applyProfile(provider, in)
	if err := s.providers.Create(ctx, provider); err != nil {
		return nil, err
	}
	if err := s.users.UpdateFields(ctx, p.UserID, map[string]any{"company_name": provider.CompanyName}); err != nil {
		return nil, err
	}
	return provider, s.attachMeta(ctx, provider)
}

func applyProfile(p *models.Provider, in ProfileInput) {
	assign := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	assign(&p.CompanyName, in.CompanyName)
	assign(&p.CompanyEmail, in.CompanyEmail)
	assign(&p.CompanyPhone, in.CompanyPhone)
	assign(&p.CompanyWebsite, in.CompanyWebsite)
	assign(&p.CompanyType, in.CompanyType)
	assign(&p.Industry, in.Industry)
	assign(&p.Location, in.Location)
	assign(&p.Description, in.Description)
	assign(&p.EmployeeCount, in.EmployeeCount)
	assign(&p.TaxID, in.TaxID)
	assign(&p.BusinessLicense, in.BusinessLicense)
}

// ProviderUpdateInput bundles a profile edit with its optional uploads.
type ProviderUpdateInput struct {
	Profile  ProfileInput
	Docs     []models.Upload
	Logo     *models.Upload
	Resubmit bool
}

// UpdateProfile edits company fields, appends documents, replaces the logo
// and optionally resubmits for verification.
func (s *ProviderService) UpdateProfile(ctx context.Context, p models.Principal, in ProviderUpdateInput) (*models.Provider, error) {
	provider, err := s.GetOrCreate(ctx, p)
	if err != nil {
		return nil, err
	}

	if in.Profile.CompanyName != nil && strings.TrimSpace(*in.Profile.CompanyName) == "" {
		return nil, models.NewValidationError("companyName cannot be empty")
	}

	docs := make([]*models.Attachment, 0, len(in.Docs))
	for _, u := range in.Docs {
		u, err := media.Validate(u, media.KindDocument)
		if err != nil {
			return nil, err
		}
		docs = append(docs, u.ToAttachment(models.OwnerProviderDoc, provider.ID))
	}
	if len(docs) > 0 {
		current, err := s.attachments.ListMeta(ctx, models.OwnerProviderDoc, provider.ID)
		if err != nil {
			return nil, err
		}
		if len(current)+len(docs) > media.MaxCompanyDocs {
			return nil, models.NewValidationError(fmt.Sprintf("A provider may keep at most %d documents", media.MaxCompanyDocs))
		}
	}

	var logo *models.Attachment
	if in.Logo != nil {
		u, err := media.NormalizeImage(*in.Logo)
		if err != nil {
			return nil, err
		}
		logo = u.ToAttachment(models.OwnerProviderLogo, provider.ID)
	}

	if err := s.providers.UpdateFields(ctx, provider.ID, in.Profile.fields()); err != nil {
		return nil, err
	}
	if in.Profile.CompanyName != nil {
		name := strings.TrimSpace(*in.Profile.CompanyName)
		if err := s.users.UpdateFields(ctx, p.UserID, map[string]any{"company_name": name}); err != nil {
			return nil, err
		}
	}
	if err := s.attachments.Append(ctx, models.OwnerProviderDoc, provider.ID, docs); err != nil {
		return nil, err
	}
	if logo != nil {
		if err := s.attachments.Replace(ctx, logo); err != nil {
			return nil, err
		}
	}

	if in.Resubmit {
		return s.Resubmit(ctx, p.UserID)
	}
	return s.reload(ctx, provider.ID)
}

// Resubmit puts the user's provider back into pending review and tells every
// admin about it.
func (s *ProviderService) Resubmit(ctx context.Context, userID uint) (*models.Provider, error) {
	provider, err := s.providers.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, models.NewNotFoundMessage("Provider profile not found")
	}

	if err := s.providers.UpdateFields(ctx, provider.ID, map[string]any{
		"verification_status": models.VerificationPending,
	}); err != nil {
		return nil, err
	}

	admins, err := s.users.ListIDsByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.notifier.Broadcast(ctx, admins, models.NotificationProviderResubmitted,
		fmt.Sprintf("%s resubmitted their provider profile for verification", provider.CompanyName),
		map[string]any{"providerId": provider.ID},
	)
	return s.reload(ctx, provider.ID)
}

// SetVerification records an admin decision on a provider.
func (s *ProviderService) SetVerification(ctx context.Context, providerID uint, rawStatus, reason string) (*models.Provider, error) {
	ctx, end := observability.StartSpan(ctx, "provider.set_verification",
		observability.AttrProviderID.Int64(int64(providerID)),
		observability.AttrStatus.String(rawStatus),
	)
	provider, err := s.setVerification(ctx, providerID, rawStatus, reason)
	end(err)
	return provider, err
}

func (s *ProviderService) setVerification(ctx context.Context, providerID uint, rawStatus, reason string) (*models.Provider, error) {
	status, ok := models.ParseVerificationStatus(rawStatus)
	if !ok {
		return nil, models.NewValidationError("Invalid verification status")
	}

	provider, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	fields := map[string]any{"verification_status": status}
	var typ, message string
	switch status {
	case models.VerificationVerified:
		fields["rejection_reason"] = ""
		fields["verification_notes"] = ""
		typ = models.NotificationProviderVerified
		message = "Your provider account has been verified!"
	case models.VerificationRejected:
		fields["rejection_reason"] = reason
		typ = models.NotificationProviderRejected
		message = "Your provider account was rejected. Reason: " + orDefault(reason, "Not specified")
	case models.VerificationPending:
		fields["verification_notes"] = reason
		typ = models.NotificationProviderReverted
		message = "Your provider account status was changed to pending. Reason: " + orDefault(reason, "Not specified")
	}

	if err := s.providers.UpdateFields(ctx, provider.ID, fields); err != nil {
		return nil, err
	}
	observability.VerificationDecisions.WithLabelValues(string(status)).Inc()

	s.notifier.Emit(ctx, provider.UserID, typ, message, map[string]any{
		"providerId": provider.ID,
		"reason":     reason,
	})
	return s.reload(ctx, provider.ID)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// RemoveDoc deletes one of the caller's documents by id, or by position when
// ref is numeric and matches no id.
func (s *ProviderService) RemoveDoc(ctx context.Context, p models.Principal, ref string) (*models.Provider, error) {
	provider, err := s.GetOrCreate(ctx, p)
	if err != nil {
		return nil, err
	}
	doc, err := s.findDoc(ctx, provider.ID, ref)
	if err != nil {
		return nil, err
	}
	if err := s.attachments.Delete(ctx, doc.ID); err != nil {
		return nil, err
	}
	return s.reload(ctx, provider.ID)
}

func (s *ProviderService) findDoc(ctx context.Context, providerID uint, ref string) (*models.Attachment, error) {
	docs, err := s.attachments.ListMeta(ctx, models.OwnerProviderDoc, providerID)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if docs[i].ID == ref {
			return &docs[i], nil
		}
	}
	if idx, err := strconv.Atoi(ref); err == nil && idx >= 0 && idx < len(docs) {
		return &docs[idx], nil
	}
	return nil, models.NewNotFoundMessage("Document not found")
}

// Doc returns a provider document with its bytes.
func (s *ProviderService) Doc(ctx context.Context, providerID uint, ref string) (*models.Attachment, error) {
	if _, err := s.providers.GetByID(ctx, providerID); err != nil {
		return nil, err
	}
	meta, err := s.findDoc(ctx, providerID, ref)
	if err != nil {
		return nil, err
	}
	return s.attachments.Get(ctx, meta.ID)
}

// Logo returns the caller's company logo.
func (s *ProviderService) Logo(ctx context.Context, p models.Principal) (*models.Attachment, error) {
	provider, err := s.GetOrCreate(ctx, p)
	if err != nil {
		return nil, err
	}
	logo, err := s.attachments.GetForOwner(ctx, models.OwnerProviderLogo, provider.ID)
	if err != nil {
		return nil, err
	}
	if logo == nil {
		return nil, models.NewNotFoundMessage("No company logo uploaded")
	}
	return logo, nil
}

// Get returns any provider with document metadata, for admin review.
func (s *ProviderService) Get(ctx context.Context, providerID uint) (*models.Provider, error) {
	return s.reload(ctx, providerID)
}

func (s *ProviderService) List(ctx context.Context, filter repository.ProviderFilter, page models.PageQuery) ([]models.Provider, int64, error) {
	return s.providers.List(ctx, filter, page)
}

// Stats returns cached hiring counters for the caller's provider.
func (s *ProviderService) Stats(ctx context.Context, p models.Principal) (*ProviderStats, error) {
	provider, err := s.GetOrCreate(ctx, p)
	if err != nil {
		return nil, err
	}

	var stats ProviderStats
	err = cache.Aside(ctx, cache.ProviderStatsKey(provider.ID), &stats, cache.ProviderStatsTTL, func() error {
		var err error
		if stats.TotalJobs, err = s.jobs.CountByProvider(ctx, provider.ID); err != nil {
			return err
		}
		if stats.TotalApplicants, err = s.apps.Count(ctx, repository.ApplicationFilter{ProviderID: provider.ID}); err != nil {
			return err
		}
		if stats.OffersMade, err = s.apps.Count(ctx, repository.ApplicationFilter{ProviderID: provider.ID, Status: models.StatusOffer}); err != nil {
			return err
		}
		stats.InterviewsScheduled, err = s.apps.Count(ctx, repository.ApplicationFilter{ProviderID: provider.ID, Status: models.StatusInterview})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *ProviderService) reload(ctx context.Context, providerID uint) (*models.Provider, error) {
	provider, err := s.providers.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return provider, s.attachMeta(ctx, provider)
}

func (s *ProviderService) attachMeta(ctx context.Context, provider *models.Provider) error {
	docs, err := s.attachments.ListMeta(ctx, models.OwnerProviderDoc, provider.ID)
	if err != nil {
		return err
	}
	if docs == nil {
		docs = []models.Attachment{}
	}
	provider.CompanyDocs = docs

	has, err := s.attachments.HasForOwner(ctx, models.OwnerProviderLogo, []uint{provider.ID})
	if err != nil {
		return err
	}
	provider.HasLogo = has[provider.ID]
	return nil
}
