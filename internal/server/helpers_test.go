package server

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "ID", humanizeParam("id"))
	assert.Equal(t, "job ID", humanizeParam("jobId"))
	assert.Equal(t, "company doc ID", humanizeParam("companyDocId"))
	assert.Equal(t, "page", humanizeParam("page"))
}

func TestParsePageAndQueries(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		page := parsePage(c)
		active, err := queryBool(c, "isActive")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		jobID, err := queryUint(c, "jobId")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		return c.SendString(fmt.Sprintf("%d/%d/%v/%d", page.Page, page.Limit, active != nil && *active, jobID))
	})

	cases := []struct {
		query string
		want  string
		code  int
	}{
		{"", "1/10/false/0", http.StatusOK},
		{"?page=3&limit=500", "3/100/false/0", http.StatusOK},
		{"?page=-1&limit=0&isActive=true&jobId=9", "1/10/true/9", http.StatusOK},
		{"?isActive=perhaps", "Invalid isActive", http.StatusBadRequest},
		{"?jobId=abc", "Invalid job ID", http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+tc.query, nil))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, tc.code, resp.StatusCode, tc.query)
		assert.Equal(t, tc.want, string(body), tc.query)
	}
}

func TestParseID_WritesBadRequest(t *testing.T) {
	app := fiber.New()
	app.Get("/jobs/:jobId", func(c *fiber.Ctx) error {
		if _, err := parseID(c, "jobId"); err != nil {
			return nil
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/jobs/abc", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "Invalid job ID")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/jobs/0", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/jobs/12", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestFormList(t *testing.T) {
	form := &multipart.Form{Value: map[string][]string{
		"skills":   {"go, sql"},
		"skills[]": {"redis"},
	}}
	got, ok := formList(form, "skills")
	assert.True(t, ok)
	assert.Equal(t, "go, sql,redis", got)

	_, ok = formList(form, "missing")
	assert.False(t, ok)
	_, ok = formList(nil, "skills")
	assert.False(t, ok)
}

func TestApplicantResumeRoundTrip(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"name":     "Ann",
		"email":    "ann@example.com",
		"password": "secret123",
		"phone":    "+1 555 0100",
		"role":     "applicant",
		"skills":   "go,sql",
	} {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("resume", "ann cv.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "ann@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["token"].(string)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me/resume", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = s.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), "attachment"))
	data, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
