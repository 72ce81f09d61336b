package web

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/vbonduro/healthlog/internal/domain"
)

const maxPhotoSize = 10 * 1024 * 1024 // 10 MB decoded

// allowedImageTypes is the set of MIME types accepted for entry photos.
// JPEG, PNG and GIF are sniffed with http.DetectContentType, which has no
// WebP signature; see isWebP.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// allowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func allowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

// checkPhoto decodes a base64 data URL and verifies the bytes are an
// accepted image. MimeType and Size are overwritten with what was sniffed.
func checkPhoto(p *domain.Photo) error {
	if p == nil {
		return nil
	}
	header, payload, ok := strings.Cut(p.DataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return fmt.Errorf("%w: photo must be a base64 data URL", domain.ErrValidation)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("%w: photo data is not valid base64", domain.ErrValidation)
	}
	if len(data) > maxPhotoSize {
		return fmt.Errorf("%w: photo exceeds %d bytes", domain.ErrValidation, maxPhotoSize)
	}
	mime, ok := allowedImageMIME(data)
	if !ok {
		return fmt.Errorf("%w: photo is not a JPEG, PNG, GIF or WebP image", domain.ErrValidation)
	}
	if p.Source != "" && p.Source != domain.PhotoSourceCamera && p.Source != domain.PhotoSourceLibrary {
		return fmt.Errorf("%w: unknown photo source %q", domain.ErrValidation, p.Source)
	}

	p.MimeType = mime
	p.Size = int64(len(data))
	return nil
}
