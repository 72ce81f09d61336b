package web

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/healthlog/internal/domain"
)

func TestAllowedImageMIME(t *testing.T) {
	tests := []struct {
		name         string
		data         []byte
		wantMIME     string
		wantDetected bool
	}{
		{
			name:         "JPEG",
			data:         []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10},
			wantMIME:     "image/jpeg",
			wantDetected: true,
		},
		{
			name:         "PNG",
			data:         []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00},
			wantMIME:     "image/png",
			wantDetected: true,
		},
		{
			name:         "WebP",
			data:         append([]byte("RIFF\x00\x00\x00\x00WEBP"), make([]byte, 10)...),
			wantMIME:     "image/webp",
			wantDetected: true,
		},
		{
			name:         "RIFF but not WebP",
			data:         append([]byte("RIFF\x00\x00\x00\x00WAVE"), make([]byte, 10)...),
			wantDetected: false,
		},
		{
			name:         "PDF disguised as image",
			data:         []byte("%PDF-1.4 malicious content"),
			wantDetected: false,
		},
		{
			name:         "empty",
			data:         []byte{},
			wantDetected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMIME, gotDetected := allowedImageMIME(tt.data)
			assert.Equal(t, tt.wantDetected, gotDetected)
			assert.Equal(t, tt.wantMIME, gotMIME)
		})
	}
}

func jpegDataURL() string {
	data := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
}

func TestCheckPhoto(t *testing.T) {
	p := &domain.Photo{DataURL: jpegDataURL(), MimeType: "image/png", Source: domain.PhotoSourceCamera}
	require.NoError(t, checkPhoto(p))
	assert.Equal(t, "image/jpeg", p.MimeType)
	assert.Equal(t, int64(8), p.Size)

	assert.NoError(t, checkPhoto(nil))
}

func TestCheckPhoto_Rejects(t *testing.T) {
	tests := map[string]*domain.Photo{
		"not a data URL": {DataURL: "https://example.com/a.jpg"},
		"bad base64":     {DataURL: "data:image/jpeg;base64,@@@"},
		"not an image":   {DataURL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("%PDF-1.4"))},
		"bad source":     {DataURL: jpegDataURL(), Source: "scanner"},
	}
	for name, p := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, checkPhoto(p), domain.ErrValidation)
		})
	}
}
