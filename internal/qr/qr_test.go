package qr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medicase/internal/config"
)

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.True(t, ValidCode(code), "generated code %q must validate", code)
		seen[code] = struct{}{}
	}
	// 100 draws from a 32-bit space colliding would point at a broken RNG
	assert.Equal(t, 100, len(seen))
}

func TestValidCode(t *testing.T) {
	assert.True(t, ValidCode("MED-0A1B2C3D"))
	assert.True(t, ValidCode("MED-FFFFFFFF"))

	assert.False(t, ValidCode(""))
	assert.False(t, ValidCode("MED-"))
	assert.False(t, ValidCode("MED-0a1b2c3d"), "lowercase hex is rejected")
	assert.False(t, ValidCode("MED-0A1B2C3"), "too short")
	assert.False(t, ValidCode("MED-0A1B2C3D4"), "too long")
	assert.False(t, ValidCode("MED-0A1B2C3G"), "non-hex digit")
	assert.False(t, ValidCode("XYZ-0A1B2C3D"), "wrong prefix")
	assert.False(t, ValidCode("med-0a1b2c3d"))
}

func TestRenderer(t *testing.T) {
	r := NewRenderer(config.QRConfig{BaseURL: "https://app.example.com/patient/", Size: 256})

	assert.Equal(t, "https://app.example.com/patient/MED-00000001", r.URL("MED-00000001"))

	png, err := r.RenderPNG("MED-00000001")
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG", string(png[:4]))

	dataURL, err := r.RenderDataURL("MED-00000001")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))
}

func TestRendererDefaults(t *testing.T) {
	r := NewRenderer(config.QRConfig{BaseURL: "http://localhost:4200/patient"})
	assert.Equal(t, 300, r.size)
}
