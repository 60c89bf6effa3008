// Package domain defines core domain models and errors for node signing secrets.
package domain

import (
	"github.com/allisson/nodeauth/internal/errors"
)

// Secret-specific error definitions.
var (
	// ErrInvalidSecretsFile indicates a secrets file could not be parsed.
	//
	// Raised at load time for duplicate node rows, malformed "ts:secret" pairs
	// or non-integer timestamps. Never raised while serving requests.
	ErrInvalidSecretsFile = errors.Wrap(errors.ErrConfiguration, "invalid secrets file")

	// ErrMutuallyExclusiveSecrets indicates both a fixed secret and a secrets file were configured.
	ErrMutuallyExclusiveSecrets = errors.Wrap(
		errors.ErrConfiguration,
		"only one of secret or secrets file can be specified",
	)

	// ErrUnknownSecretsBackend indicates the configured backend kind is not supported.
	ErrUnknownSecretsBackend = errors.Wrap(errors.ErrConfiguration, "unknown secrets backend")

	// ErrMissingSecretsSource indicates a backend was selected without the input it needs.
	ErrMissingSecretsSource = errors.Wrap(errors.ErrConfiguration, "missing secrets source")

	// ErrInvalidMasterSecret indicates a master secret is too short or could not be unwrapped.
	ErrInvalidMasterSecret = errors.Wrap(errors.ErrConfiguration, "invalid master secret")

	// ErrDuplicateSecretInsertion indicates a second secret was added for a node within
	// the same wall-clock second. Timestamps have one-second resolution and must grow
	// strictly, so this is a hard ceiling.
	ErrDuplicateSecretInsertion = errors.Wrap(
		errors.ErrConflict,
		"only one secret per second can be added for a node",
	)

	// ErrInvalidSecretSize indicates a non-positive secret size was requested.
	ErrInvalidSecretSize = errors.Wrap(errors.ErrInvalidInput, "invalid secret size")
)
