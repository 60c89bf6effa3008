// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/nodeauth/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// WrapConfigurationError wraps validation errors as ErrConfiguration.
func WrapConfigurationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrConfiguration, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Hex validates hex-encoded secrets.
var Hex = validation.NewStringRuleWithError(
	func(s string) bool {
		if len(s)%2 != 0 {
			s += "0"
		}
		_, err := hex.DecodeString(s)
		return err == nil
	},
	validation.NewError("validation_hex", "must be hex-encoded"),
)

// Base64 validates KMS ciphertexts, which are stored in standard base64.
var Base64 = validation.NewStringRuleWithError(
	func(s string) bool {
		decoded, err := base64.StdEncoding.DecodeString(s)
		return err == nil && len(decoded) > 0
	},
	validation.NewError("validation_base64", "must be base64-encoded"),
)

// NodeName validates a canonical node name such as "https://host:8443".
// Paths, queries and credentials are not part of a node name.
var NodeName = validation.NewStringRuleWithError(
	func(s string) bool {
		u, err := url.Parse(s)
		if err != nil {
			return false
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false
		}
		return u.Host != "" && u.User == nil && u.RawQuery == "" && u.Fragment == "" &&
			(u.Path == "" || u.Path == "/")
	},
	validation.NewError("validation_node_name", "must be a node name like scheme://host[:port]"),
)
