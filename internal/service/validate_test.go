package service

import (
	"strings"
	"testing"

	"storefront/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "Bob@Example.com", want: "bob@example.com"},
		{input: "  carol+shop@mail.io ", want: "carol+shop@mail.io"},
		{input: "", wantErr: true},
		{input: "bob", wantErr: true},
		{input: "bob@", wantErr: true},
		{input: "Bob <bob@example.com>", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := normalizeEmail(tt.input)
			if tt.wantErr {
				assert.Equal(t, model.KindValidation, model.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, validatePassword("1234567"))
	assert.NoError(t, validatePassword("12345678"))
	assert.NoError(t, validatePassword(strings.Repeat("x", 72)))
	assert.Error(t, validatePassword(strings.Repeat("x", 73)))
}

func TestValidateMobile(t *testing.T) {
	valid := []string{"9876543210", "+919876543210", "123456789012345"}
	invalid := []string{"", "987654321", "1234567890123456", "98765-43210", "+91 9876543210"}

	for _, m := range valid {
		assert.NoError(t, validateMobile(m), m)
	}
	for _, m := range invalid {
		assert.Error(t, validateMobile(m), m)
	}
}

func TestValidateUsername(t *testing.T) {
	assert.Error(t, validateUsername(""))
	assert.NoError(t, validateUsername(strings.Repeat("é", 50)))
	assert.Error(t, validateUsername(strings.Repeat("a", 51)))
}

func TestNormalizeAddress(t *testing.T) {
	req := validAddressRequest()
	req.City = "  London  "
	req.IsDefault = true

	got, err := normalizeAddress(&req)

	require.NoError(t, err)
	assert.Equal(t, "London", got.City)
	assert.True(t, got.IsDefault)

	_, err = normalizeAddress(nil)
	assert.Error(t, err)

	missing := validAddressRequest()
	missing.Zip = ""
	_, err = normalizeAddress(&missing)
	assert.ErrorContains(t, err, "zip")
}
