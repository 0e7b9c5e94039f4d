package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignAndVerifyID(t *testing.T) {
	s := NewSession()
	value := SignID("secret", s.ID)

	id, ok := VerifyID("secret", value)
	assert.True(t, ok)
	assert.Equal(t, s.ID, id)
}

func TestVerifyID_Tampered(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"empty", ""},
		{"no signature", "abc"},
		{"wrong signature", "abc.deadbeef"},
		{"signed under other secret", SignID("other", "abc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := VerifyID("secret", tt.value)
			assert.False(t, ok)
		})
	}
}

func TestValidCSRF(t *testing.T) {
	s := NewSession()

	assert.True(t, s.ValidCSRF(s.CSRFToken))
	assert.False(t, s.ValidCSRF(""))
	assert.False(t, s.ValidCSRF("wrong"))
}

func TestPopFlashes(t *testing.T) {
	s := NewSession()
	s.AddFlash("success", "first")
	s.AddFlash("danger", "second")

	flashes := s.PopFlashes()
	assert.Len(t, flashes, 2)
	assert.Equal(t, "first", flashes[0].Message)
	assert.Empty(t, s.PopFlashes())
}
