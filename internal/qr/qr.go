// Package qr generates and renders patient QR identifiers. An identifier is
// an opaque token of the form MED-XXXXXXXX (8 uppercase hex digits) bound 1:1
// to a patient account.
package qr

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"medicase/internal/config"
)

const codePrefix = "MED-"

var codePattern = regexp.MustCompile(`^MED-[0-9A-F]{8}$`)

// GenerateCode returns a fresh random identifier. Uniqueness against already
// assigned identifiers is the caller's concern.
func GenerateCode() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate qr code id: %w", err)
	}
	return codePrefix + strings.ToUpper(hex.EncodeToString(b[:])), nil
}

// ValidCode structurally validates an identifier. Malformed input is rejected
// here, before any store lookup.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// Renderer encodes identifiers as scannable PNG images pointing at the
// configured lookup URL.
type Renderer struct {
	baseURL string
	size    int
}

// NewRenderer builds a Renderer from configuration.
func NewRenderer(cfg config.QRConfig) *Renderer {
	size := cfg.Size
	if size <= 0 {
		size = 300
	}
	return &Renderer{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		size:    size,
	}
}

// URL returns the lookup URL encoded into the QR image for a code.
func (r *Renderer) URL(code string) string {
	return r.baseURL + "/" + code
}

// RenderPNG encodes the lookup URL for the code as a PNG image.
func (r *Renderer) RenderPNG(code string) ([]byte, error) {
	png, err := qrcode.Encode(r.URL(code), qrcode.Medium, r.size)
	if err != nil {
		return nil, fmt.Errorf("render qr image: %w", err)
	}
	return png, nil
}

// RenderDataURL encodes the QR image as a base64 PNG data URL for direct
// embedding in API responses.
func (r *Renderer) RenderDataURL(code string) (string, error) {
	png, err := r.RenderPNG(code)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
