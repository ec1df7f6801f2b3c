package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskAddress(t *testing.T) {
	assert.Equal(t, "0x8894E0a0...E2D4E3", MaskAddress("0x8894E0a0c962CB723c1976a4421c95949bE2D4E3"))
	assert.Equal(t, "", MaskAddress(""))
	assert.Equal(t, "0x1234", MaskAddress("0x1234"))
}

func TestMaskString(t *testing.T) {
	t.Run("masks wallet addresses", func(t *testing.T) {
		got := MaskString("linked 0x8894E0a0c962CB723c1976a4421c95949bE2D4E3 ok")
		assert.Equal(t, "linked 0x8894E0a0...E2D4E3 ok", got)
	})

	t.Run("masks explorer api key in urls", func(t *testing.T) {
		got := MaskString("GET https://api.bscscan.com/api?module=account&apikey=ABCDEF123&sort=desc")
		assert.Contains(t, got, "apikey=***REDACTED***&sort=desc")
		assert.NotContains(t, got, "ABCDEF123")
	})

	t.Run("masks jwts", func(t *testing.T) {
		got := MaskString("Bearer eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig")
		assert.Equal(t, "Bearer eyJ***REDACTED***", got)
	})
}

func TestMaskMap(t *testing.T) {
	got := MaskMap(map[string]interface{}{
		"username": "alice",
		"password": "hunter22",
		"nested":   map[string]interface{}{"pin": "123456"},
	})
	assert.Equal(t, "alice", got["username"])
	assert.Equal(t, "***REDACTED***", got["password"])
	assert.Equal(t, "***REDACTED***", got["nested"].(map[string]interface{})["pin"])
}

func TestRedactHeaders(t *testing.T) {
	got := RedactHeaders(map[string][]string{
		"Authorization": {"Bearer abc"},
		"User-Agent":    {"curl"},
	})
	assert.Equal(t, "***REDACTED***", got["Authorization"])
	assert.Equal(t, "curl", got["User-Agent"])
}
