package service

import (
	"context"
	"fmt"
	"log/slog"

	secretsDomain "github.com/allisson/nodeauth/internal/secrets/domain"
)

// Options selects and configures a SecretStore backend.
type Options struct {
	// Backend is the backend kind. When empty it is inferred from whichever
	// source below is set.
	Backend secretsDomain.BackendKind

	// Secret is a whitespace separated list of fixed secrets.
	Secret string

	// SecretsFiles are CSV secrets files loaded in order.
	SecretsFiles []string

	// MasterSecrets are master secrets for the derived backend, oldest first.
	MasterSecrets []string

	// KMSKeyURI, when set, means MasterSecrets are base64 KMS ciphertexts.
	KMSKeyURI string

	// KMSService opens the keeper for KMSKeyURI. Defaults to NewKMSService().
	KMSService KMSService

	Logger *slog.Logger
}

// NewSecretStore builds the store described by opts.
//
// Setting both a fixed secret and secrets files is an error. When nothing is
// configured a fixed store with a single random secret is returned and a
// warning is logged; tokens signed with it do not survive a restart.
func NewSecretStore(ctx context.Context, opts Options) (SecretStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Secret != "" && len(opts.SecretsFiles) > 0 {
		return nil, secretsDomain.ErrMutuallyExclusiveSecrets
	}

	backend := opts.Backend
	if backend == "" {
		switch {
		case opts.Secret != "":
			backend = secretsDomain.BackendFixed
		case len(opts.SecretsFiles) > 0:
			backend = secretsDomain.BackendFile
		case len(opts.MasterSecrets) > 0:
			backend = secretsDomain.BackendDerived
		default:
			secret, err := GenerateHexSecret(DefaultSecretSize)
			if err != nil {
				return nil, err
			}
			logger.Warn("no secrets configured, using a random secret; tokens will not survive a restart")
			return NewFixedSecrets(secret), nil
		}
	}

	switch backend {
	case secretsDomain.BackendFixed:
		store := ParseFixedSecrets(opts.Secret)
		if len(store.secrets) == 0 {
			return nil, fmt.Errorf("%w: fixed backend requires SECRET", secretsDomain.ErrMissingSecretsSource)
		}
		return store, nil

	case secretsDomain.BackendFile:
		if len(opts.SecretsFiles) == 0 {
			return nil, fmt.Errorf("%w: file backend requires SECRETS_FILE", secretsDomain.ErrMissingSecretsSource)
		}
		store, err := NewFileSecrets(opts.SecretsFiles...)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded secrets files", slog.Int("nodes", len(store.Keys())))
		return store, nil

	case secretsDomain.BackendDerived:
		if len(opts.MasterSecrets) == 0 {
			return nil, fmt.Errorf("%w: derived backend requires MASTER_SECRETS", secretsDomain.ErrMissingSecretsSource)
		}
		masters := opts.MasterSecrets
		if opts.KMSKeyURI != "" {
			unwrapped, err := unwrapWithKMS(ctx, opts)
			if err != nil {
				return nil, err
			}
			masters = unwrapped
		}
		return NewDerivedSecrets(masters...)

	default:
		return nil, fmt.Errorf("%w: %q", secretsDomain.ErrUnknownSecretsBackend, backend)
	}
}

func unwrapWithKMS(ctx context.Context, opts Options) ([]string, error) {
	kms := opts.KMSService
	if kms == nil {
		kms = NewKMSService()
	}
	keeper, err := kms.OpenKeeper(ctx, opts.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", secretsDomain.ErrInvalidMasterSecret, err)
	}
	defer func() {
		_ = keeper.Close()
	}()
	return UnwrapMasterSecrets(ctx, keeper, opts.MasterSecrets)
}
