package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrClosed", ErrClosed},
		{"ErrTransport", ErrTransport},
		{"ErrUnauthorized", ErrUnauthorized},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrIdentityUnavailable", ErrIdentityUnavailable},
		{"ErrConsentRequired", ErrConsentRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrTransport_Wrapping tests that wrapped transport errors stay detectable
func TestErrTransport_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("directory search: %w", ErrTransport)
	assert.True(t, errors.Is(wrapped, ErrTransport))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
}
