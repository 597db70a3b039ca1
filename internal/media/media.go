// Package media validates uploaded attachments and normalizes images.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // register GIF decoder
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"jobboard/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// DefaultMaxBytes bounds any single attachment.
	DefaultMaxBytes int64 = 5 * 1024 * 1024

	// MaxImageEdge is the longest side kept for logos and profile images.
	MaxImageEdge = 512
	WebPQuality  = 80

	// MaxCompanyDocs is how many documents registration accepts.
	MaxCompanyDocs = 5
)

// Kind selects which content types an upload may have.
type Kind int

const (
	KindDocument Kind = iota
	KindImage
)

// ReadFile reads a multipart file, refusing anything over maxBytes.
func ReadFile(fh *multipart.FileHeader, maxBytes int64) (models.Upload, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if fh.Size > maxBytes {
		return models.Upload{}, tooLarge(maxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return models.Upload{}, models.NewValidationError("Could not read uploaded file")
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return models.Upload{}, models.NewValidationError("Could not read uploaded file")
	}
	if int64(len(data)) > maxBytes {
		return models.Upload{}, tooLarge(maxBytes)
	}

	return models.Upload{
		Filename:    filepath.Base(fh.Filename),
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func tooLarge(maxBytes int64) error {
	return models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", maxBytes/(1024*1024)))
}

// Validate checks the upload's sniffed content type against kind and
// replaces the client-declared type with the detected one.
func Validate(u models.Upload, kind Kind) (models.Upload, error) {
	if len(u.Data) == 0 {
		return u, models.NewValidationError("Uploaded file is empty")
	}

	detected := normalizeContentType(http.DetectContentType(u.Data))
	switch kind {
	case KindDocument:
		if detected != "application/pdf" {
			return u, models.NewValidationError("Only PDF files are allowed")
		}
	case KindImage:
		if !isAllowedImageMIME(detected) {
			return u, models.NewValidationError("Only image files are allowed (jpg, png, gif, webp)")
		}
	}
	u.ContentType = detected
	return u, nil
}

// NormalizeImage decodes an image upload, fits it within MaxImageEdge and
// re-encodes it as WebP.
func NormalizeImage(u models.Upload) (models.Upload, error) {
	u, err := Validate(u, KindImage)
	if err != nil {
		return u, err
	}

	decoded, _, err := image.Decode(bytes.NewReader(u.Data))
	if err != nil {
		return u, models.NewValidationError("Invalid image file")
	}

	resized := resizeToFit(decoded, MaxImageEdge, MaxImageEdge)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, resized, &webp.Options{Quality: WebPQuality}); err != nil {
		return u, models.NewInternalError(err)
	}

	name := strings.TrimSuffix(u.Filename, filepath.Ext(u.Filename))
	if name == "" {
		name = "image"
	}
	return models.Upload{
		Filename:    name + ".webp",
		ContentType: "image/webp",
		Data:        buf.Bytes(),
	}, nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return toRGBA(src)
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

func toRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok {
		return rgba
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// ContentDisposition builds the attachment header for a stored filename.
func ContentDisposition(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, name)
}
