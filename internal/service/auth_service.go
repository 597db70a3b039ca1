package service

import (
	"context"
	"log/slog"
	"time"

	"jobboard/internal/auth"
	"jobboard/internal/cache"
	"jobboard/internal/media"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// AuthService registers accounts and exchanges credentials for tokens.
type AuthService struct {
	users    repository.UserRepository
	tokens   *auth.TokenService
	hashCost int
	now      func() time.Time
}

// NewAuthService returns a new AuthService.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenService) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// WithHashCost overrides the bcrypt cost, mainly for tests.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.hashCost = cost
	return s
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterInput is a validated registration plus its uploads. Resume is only
// honored for applicants and Docs only for providers.
type RegisterInput struct {
	Registration validation.Registration
	Resume       *models.Upload
	Docs         []models.Upload
}

// Register creates an applicant or provider account and signs a token for it.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	acct := in.Registration.Account()

	existing, err := s.users.GetByEmail(ctx, acct.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(acct.Password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:     acct.Name,
		Email:    acct.Email,
		Password: string(hash),
		Phone:    acct.Phone,
		IsActive: true,
	}

	switch reg := in.Registration.(type) {
	case *validation.ApplicantRegistration:
		user.Role = models.RoleApplicant
		user.Location = reg.Location
		user.Skills = reg.Skills
		user.Experience = reg.Experience

		var resume *models.Attachment
		if in.Resume != nil {
			u, err := media.Validate(*in.Resume, media.KindDocument)
			if err != nil {
				return nil, err
			}
			resume = u.ToAttachment(models.OwnerUserResume, 0)
		}
		if err := s.users.CreateApplicantAccount(ctx, user, resume); err != nil {
			return nil, err
		}

	case *validation.ProviderRegistration:
		if len(in.Docs) > media.MaxCompanyDocs {
			return nil, models.NewValidationError("A provider may upload at most 5 documents")
		}
		docs := make([]*models.Attachment, 0, len(in.Docs))
		for _, d := range in.Docs {
			u, err := media.Validate(d, media.KindDocument)
			if err != nil {
				return nil, err
			}
			docs = append(docs, u.ToAttachment(models.OwnerProviderDoc, 0))
		}

		user.Role = models.RoleProvider
		user.CompanyName = reg.CompanyName
		if user.CompanyName == "" {
			user.CompanyName = user.Name
		}
		provider := &models.Provider{
			CompanyName:        user.CompanyName,
			CompanyEmail:       user.Email,
			CompanyPhone:       user.Phone,
			CompanyWebsite:     reg.CompanyWebsite,
			CompanyType:        reg.CompanyType,
			Location:           reg.CompanyLocation,
			Description:        reg.CompanyDescription,
			EmployeeCount:      reg.CompanySize,
			TaxID:              reg.TaxID,
			BusinessLicense:    reg.BusinessLicense,
			VerificationStatus: models.VerificationPending,
			IsActive:           true,
		}
		if err := s.users.CreateProviderAccount(ctx, user, provider, docs); err != nil {
			return nil, err
		}

	default:
		return nil, models.NewValidationError("Unsupported registration")
	}

	return s.issue(user)
}

// Login verifies credentials. Deactivated accounts are refused with Forbidden.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthenticatedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthenticatedError("Invalid credentials")
	}
	if !user.IsActive {
		return nil, models.NewForbiddenError("Account is deactivated")
	}

	now := s.now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to record last login",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("error", err.Error()),
		)
	} else {
		user.LastLogin = &now
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Logout revokes the token until its natural expiry. Without Redis the token
// simply stays valid until it expires.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) {
	if claims == nil || claims.ID == "" {
		return
	}
	if err := cache.RevokeToken(ctx, claims.ID, claims.ExpiresAt); err != nil {
		middleware.Logger.WarnContext(ctx, "token revocation skipped",
			slog.String("error", err.Error()),
		)
	}
}
