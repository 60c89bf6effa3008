package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	secretsDomain "github.com/allisson/nodeauth/internal/secrets/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

type kmsService struct{}

// NewKMSService creates a KMSService backed by gocloud.dev/secrets.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper returns a *secrets.Keeper for keyURI.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (secretsDomain.KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// WrapMasterSecret encrypts master with keeper and returns the standard base64
// ciphertext, the form expected in MASTER_SECRETS when a KMS key is configured.
func WrapMasterSecret(ctx context.Context, keeper secretsDomain.KMSKeeper, master string) (string, error) {
	ciphertext, err := keeper.Encrypt(ctx, []byte(master))
	if err != nil {
		return "", fmt.Errorf("failed to wrap master secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// UnwrapMasterSecrets decodes and decrypts every wrapped master secret, keeping order.
func UnwrapMasterSecrets(
	ctx context.Context,
	keeper secretsDomain.KMSKeeper,
	wrapped []string,
) ([]string, error) {
	masters := make([]string, 0, len(wrapped))
	for i, item := range wrapped {
		ciphertext, err := base64.StdEncoding.DecodeString(item)
		if err != nil {
			return nil, fmt.Errorf("%w: master secret %d is not base64: %v",
				secretsDomain.ErrInvalidMasterSecret, i, err)
		}
		plaintext, err := keeper.Decrypt(ctx, ciphertext)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to unwrap master secret %d: %v",
				secretsDomain.ErrInvalidMasterSecret, i, err)
		}
		masters = append(masters, string(plaintext))
	}
	return masters, nil
}
