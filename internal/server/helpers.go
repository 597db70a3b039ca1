package server

import (
	"errors"
	"mime/multipart"
	"strconv"
	"strings"
	"unicode"

	"jobboard/internal/auth"
	"jobboard/internal/media"
	"jobboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	defaultPageLimit   = 10
	maxPaginationLimit = 100
)

// parsePage extracts page and limit query parameters.
func parsePage(c *fiber.Ctx) models.PageQuery {
	page := c.QueryInt("page", 1)
	if page <= 0 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPageLimit)
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}
	return models.PageQuery{Page: page, Limit: limit}
}

// paginated writes {key: items, pagination: {...}}.
func paginated(c *fiber.Ctx, key string, items any, page models.PageQuery, total int64) error {
	return c.JSON(fiber.Map{
		key:          items,
		"pagination": models.NewPage(page.Page, page.Limit, total),
	})
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "jobId" -> "job ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// queryUint parses an optional numeric filter. Zero means absent.
func queryUint(c *fiber.Ctx, key string) (uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, models.NewValidationError("Invalid " + humanizeParam(key))
	}
	return uint(v), nil
}

// queryBool parses an optional boolean filter.
func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, models.NewValidationError("Invalid " + key)
	}
	return &v, nil
}

// principal returns the caller set by AuthRequired.
func principal(c *fiber.Ctx) models.Principal {
	p, _ := c.Locals(localPrincipal).(models.Principal)
	return p
}

func tokenClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(localClaims).(*auth.Claims)
	return claims
}

// sendAttachment streams a stored attachment as a download.
func sendAttachment(c *fiber.Ctx, att *models.Attachment) error {
	contentType := att.ContentType
	if contentType == "" {
		contentType = fiber.MIMEOctetStream
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, media.ContentDisposition(att.Filename))
	return c.Send(att.Data)
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// multipartForm returns the parsed form, or nil when the request is not multipart.
func multipartForm(c *fiber.Ctx) (*multipart.Form, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, models.NewValidationError("Invalid multipart form")
	}
	return form, nil
}

// formFiles reads every file under any of keys, bounded per file.
func formFiles(form *multipart.Form, maxBytes int64, keys ...string) ([]models.Upload, error) {
	if form == nil {
		return nil, nil
	}
	var uploads []models.Upload
	for _, key := range keys {
		for _, fh := range form.File[key] {
			u, err := media.ReadFile(fh, maxBytes)
			if err != nil {
				return nil, err
			}
			uploads = append(uploads, u)
		}
	}
	return uploads, nil
}

// formFile reads the first file under key, or returns nil.
func formFile(form *multipart.Form, maxBytes int64, key string) (*models.Upload, error) {
	files, err := formFiles(form, maxBytes, key)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	return &files[0], nil
}

// formValue returns the first value for key and whether it was sent at all.
func formValue(form *multipart.Form, key string) (string, bool) {
	if form == nil {
		return "", false
	}
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// formList joins repeated values ("skills", "skills[]") into one CSV string.
func formList(form *multipart.Form, key string) (string, bool) {
	if form == nil {
		return "", false
	}
	var parts []string
	found := false
	for _, k := range []string{key, key + "[]"} {
		if values, ok := form.Value[k]; ok {
			found = true
			parts = append(parts, values...)
		}
	}
	return strings.Join(parts, ","), found
}
