package server

import (
	"strconv"
	"strings"

	"jobboard/internal/models"
	"jobboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProviderProfile handles GET /api/provider/profile. A provider account
// without a profile gets a pending one.
func (s *Server) GetProviderProfile(c *fiber.Ctx) error {
	provider, err := s.providerService.Profile(c.UserContext(), principal(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(provider)
}

// CreateProviderProfile handles POST /api/provider/profile
func (s *Server) CreateProviderProfile(c *fiber.Ctx) error {
	var in service.ProfileInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	provider, err := s.providerService.CreateProfile(c.UserContext(), principal(c), in)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Provider profile created successfully",
		"provider": provider,
	})
}

// UpdateProviderProfile handles PUT /api/provider/profile
// @Summary Edit company profile, append documents, replace logo
// @Tags provider
// @Accept json,mpfd
// @Produce json
// @Param companyDocs formData file false "PDF documents (max 5 in total)"
// @Param companyLogo formData file false "Logo image"
// @Param resubmit formData bool false "Resubmit for verification"
// @Security BearerAuth
// @Router /provider/profile [put]
func (s *Server) UpdateProviderProfile(c *fiber.Ctx) error {
	var in service.ProviderUpdateInput
	if err := c.BodyParser(&in.Profile); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	form, err := multipartForm(c)
	if err != nil {
		return models.RespondError(c, err)
	}
	if form != nil {
		if raw, ok := formValue(form, "resubmit"); ok {
			in.Resubmit, _ = strconv.ParseBool(strings.TrimSpace(raw))
		}
		if in.Docs, err = formFiles(form, s.maxUpload, "companyDocs", "companyDocs[]"); err != nil {
			return models.RespondError(c, err)
		}
		if in.Logo, err = formFile(form, s.maxUpload, "companyLogo"); err != nil {
			return models.RespondError(c, err)
		}
	} else {
		var flags struct {
			Resubmit bool `json:"resubmit"`
		}
		if err := c.BodyParser(&flags); err == nil {
			in.Resubmit = flags.Resubmit
		}
	}

	provider, err := s.providerService.UpdateProfile(c.UserContext(), principal(c), in)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":  "Provider profile updated successfully",
		"provider": provider,
	})
}

// ResubmitProvider handles POST /api/provider/profile/resubmit
func (s *Server) ResubmitProvider(c *fiber.Ctx) error {
	provider, err := s.providerService.Resubmit(c.UserContext(), principal(c).UserID)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":  "Provider resubmitted for verification",
		"provider": provider,
	})
}

// GetProviderLogo handles GET /api/provider/profile/logo
func (s *Server) GetProviderLogo(c *fiber.Ctx) error {
	logo, err := s.providerService.Logo(c.UserContext(), principal(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	c.Set(fiber.HeaderContentType, logo.ContentType)
	return c.Send(logo.Data)
}

// DeleteProviderDoc handles DELETE /api/provider/profile/docs/:docId
func (s *Server) DeleteProviderDoc(c *fiber.Ctx) error {
	ref := strings.TrimSpace(c.Params("docId"))
	if ref == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid document id"))
	}

	provider, err := s.providerService.RemoveDoc(c.UserContext(), principal(c), ref)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Document removed", "provider": provider})
}

// ListApplicants handles GET /api/provider/applicants
func (s *Server) ListApplicants(c *fiber.Ctx) error {
	filter, err := applicationFilter(c)
	if err != nil {
		return models.RespondError(c, err)
	}
	page := parsePage(c)
	apps, total, err := s.applicationService.ListForProvider(c.UserContext(), principal(c), filter, page)
	if err != nil {
		return models.RespondError(c, err)
	}
	return paginated(c, "applicants", apps, page, total)
}

// GetProviderStats handles GET /api/provider/stats
func (s *Server) GetProviderStats(c *fiber.Ctx) error {
	stats, err := s.providerService.Stats(c.UserContext(), principal(c))
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(stats)
}
