package validation

import (
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/nodeauth/internal/errors"
)

func TestNodeName(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		shouldErr bool
	}{
		{name: "http host", value: "http://host1.com"},
		{name: "https host with port", value: "https://host3.com:444"},
		{name: "ipv6 host", value: "http://[::1]:8080"},
		{name: "trailing slash", value: "http://host1.com/"},
		{name: "missing scheme", value: "host1.com", shouldErr: true},
		{name: "ftp scheme", value: "ftp://host1.com", shouldErr: true},
		{name: "with path", value: "http://host1.com/storage", shouldErr: true},
		{name: "with query", value: "http://host1.com?x=1", shouldErr: true},
		{name: "with credentials", value: "http://user:pw@host1.com", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, NodeName)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHex(t *testing.T) {
	assert.NoError(t, validation.Validate("deadbeef", Hex))
	assert.NoError(t, validation.Validate("abc", Hex))
	assert.Error(t, validation.Validate("xyz", Hex))
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, validation.Validate("value", NoWhitespace))
	assert.Error(t, validation.Validate(" value", NoWhitespace))
	assert.Error(t, validation.Validate("value\n", NoWhitespace))
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, validation.Validate("value", NotBlank))
	assert.Error(t, validation.Validate("   ", NotBlank))
}

func TestBase64(t *testing.T) {
	assert.NoError(t, validation.Validate("aGVsbG8=", Base64))
	assert.NoError(t, validation.Validate("", Base64))
	assert.Error(t, validation.Validate("not base64!", Base64))
}

func TestWrapErrors(t *testing.T) {
	assert.Nil(t, WrapValidationError(nil))
	assert.Nil(t, WrapConfigurationError(nil))

	err := validation.Validate("", validation.Required)
	assert.ErrorIs(t, WrapValidationError(err), apperrors.ErrInvalidInput)
	assert.ErrorIs(t, WrapConfigurationError(err), apperrors.ErrConfiguration)
}
