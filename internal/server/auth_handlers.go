package server

import (
	"mime/multipart"
	"strings"

	"jobboard/internal/models"
	"jobboard/internal/service"
	"jobboard/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register
// @Summary Register an applicant or provider
// @Tags auth
// @Accept json,mpfd
// @Produce json
// @Success 201 {object} service.AuthResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var payload validation.RegistrationPayload
	if err := c.BodyParser(&payload); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	form, err := multipartForm(c)
	if err != nil {
		return models.RespondError(c, err)
	}
	if form != nil {
		if raw, ok := formList(form, "skills"); ok {
			payload.Skills.Parse(raw)
		}
		if raw, ok := formValue(form, "experience"); ok {
			if err := payload.Experience.Parse(raw); err != nil {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("experience: "+err.Error()))
			}
		}
	}

	reg, err := validation.ParseRegistration(payload)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError(err.Error()))
	}

	in := service.RegisterInput{Registration: reg}
	switch reg.(type) {
	case *validation.ApplicantRegistration:
		if in.Resume, err = formFile(form, s.maxUpload, "resume"); err != nil {
			return models.RespondError(c, err)
		}
	case *validation.ProviderRegistration:
		if in.Docs, err = formFiles(form, s.maxUpload, "companyDocs", "companyDocs[]"); err != nil {
			return models.RespondError(c, err)
		}
	}

	result, err := s.authService.Register(c.UserContext(), in)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   result.Token,
		"user":    result.User,
	})
}

// Login handles POST /api/auth/login
// @Summary Exchange credentials for a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} service.AuthResult
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   result.Token,
		"user":    result.User,
	})
}

// Logout handles POST /api/auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	s.authService.Logout(c.UserContext(), tokenClaims(c))
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// GetMe handles GET /api/auth/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.userService.Get(c.UserContext(), principal(c).UserID)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// UpdateMyProfile handles PUT /api/auth/profile. Accepts JSON or a multipart
// form carrying optional resume and profileImage files.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	form, err := multipartForm(c)
	if err != nil {
		return models.RespondError(c, err)
	}

	var in service.UpdateProfileInput
	if form != nil {
		in, err = s.profileFromForm(form)
	} else {
		in, err = profileFromJSON(c)
	}
	if err != nil {
		return models.RespondError(c, err)
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), principal(c).UserID, in)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Profile updated successfully", "user": user})
}

func profileFromJSON(c *fiber.Ctx) (service.UpdateProfileInput, error) {
	var req struct {
		Name       *string                `json:"name"`
		Phone      *string                `json:"phone"`
		Bio        *string                `json:"bio"`
		Location   *string                `json:"location"`
		Skills     validation.FlexStrings `json:"skills"`
		Experience validation.FlexInt     `json:"experience"`
	}
	if err := c.BodyParser(&req); err != nil {
		return service.UpdateProfileInput{}, models.NewValidationError("Invalid request body")
	}

	in := service.UpdateProfileInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Bio:      req.Bio,
		Location: req.Location,
	}
	if req.Skills.Set {
		skills := req.Skills.Values
		in.Skills = &skills
	}
	if req.Experience.Set {
		exp := req.Experience.Value
		in.Experience = &exp
	}
	return in, nil
}

func (s *Server) profileFromForm(form *multipart.Form) (service.UpdateProfileInput, error) {
	var in service.UpdateProfileInput
	for key, dst := range map[string]**string{
		"name":     &in.Name,
		"phone":    &in.Phone,
		"bio":      &in.Bio,
		"location": &in.Location,
	} {
		if v, ok := formValue(form, key); ok {
			*dst = &v
		}
	}
	if raw, ok := formList(form, "skills"); ok {
		skills := validation.SplitCSV(raw)
		in.Skills = &skills
	}
	if raw, ok := formValue(form, "experience"); ok && strings.TrimSpace(raw) != "" {
		var exp validation.FlexInt
		if err := exp.Parse(raw); err != nil {
			return in, models.NewValidationError("experience: " + err.Error())
		}
		in.Experience = &exp.Value
	}

	var err error
	if in.Resume, err = formFile(form, s.maxUpload, "resume"); err != nil {
		return in, err
	}
	if in.ProfileImage, err = formFile(form, s.maxUpload, "profileImage"); err != nil {
		return in, err
	}
	return in, nil
}

// GetMyResume handles GET /api/auth/me/resume
func (s *Server) GetMyResume(c *fiber.Ctx) error {
	att, err := s.userService.Resume(c.UserContext(), principal(c).UserID)
	if err != nil {
		return models.RespondError(c, err)
	}
	return sendAttachment(c, att)
}

// GetMyProfileImage handles GET /api/auth/me/profile-image
func (s *Server) GetMyProfileImage(c *fiber.Ctx) error {
	att, err := s.userService.ProfileImage(c.UserContext(), principal(c).UserID)
	if err != nil {
		return models.RespondError(c, err)
	}
	c.Set(fiber.HeaderContentType, att.ContentType)
	return c.Send(att.Data)
}

// UploadMyProfileImage handles POST /api/auth/me/profile-image
func (s *Server) UploadMyProfileImage(c *fiber.Ctx) error {
	form, err := multipartForm(c)
	if err != nil {
		return models.RespondError(c, err)
	}
	upload, err := formFile(form, s.maxUpload, "profileImage")
	if err != nil {
		return models.RespondError(c, err)
	}
	if upload == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No image uploaded"))
	}

	user, err := s.userService.SetProfileImage(c.UserContext(), principal(c).UserID, *upload)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Profile image updated", "user": user})
}
