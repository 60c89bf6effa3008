package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	secretsDomain "github.com/allisson/nodeauth/internal/secrets/domain"
)

// maxMasterSecretLen bounds master secrets so that len/2 stays within the
// HKDF-SHA256 output limit of 255 blocks.
const maxMasterSecretLen = 2 * 255 * sha256.Size

// DerivedSecrets computes per-node secrets from a list of master secrets, so
// that new nodes need no provisioning and a node never sees the masters.
type DerivedSecrets struct {
	masters []string
}

// NewDerivedSecrets creates a store from master secrets, oldest first.
func NewDerivedSecrets(masters ...string) (*DerivedSecrets, error) {
	for i, master := range masters {
		if err := validateMasterSecret(master); err != nil {
			return nil, fmt.Errorf("master secret %d: %w", i, err)
		}
	}
	return &DerivedSecrets{masters: append([]string(nil), masters...)}, nil
}

// Get derives one secret per master for node, in master order.
func (d *DerivedSecrets) Get(node string) []string {
	secrets := make([]string, 0, len(d.masters))
	for _, master := range d.masters {
		// masters are validated on construction, derivation cannot fail here
		secret, _ := DeriveNodeSecret(master, node)
		secrets = append(secrets, secret)
	}
	return secrets
}

// Keys is always empty.
func (d *DerivedSecrets) Keys() []string {
	return []string{}
}

// DeriveNodeSecret returns hex(HKDF-SHA256(master, info=prefix+node)) with
// len(master)/2 bytes of output, so the result is as long as the master.
func DeriveNodeSecret(master, node string) (string, error) {
	if err := validateMasterSecret(master); err != nil {
		return "", err
	}
	info := []byte(secretsDomain.HKDFInfoNodeSecret + node)
	reader := hkdf.New(sha256.New, []byte(master), nil, info)

	out := make([]byte, len(master)/2)
	if _, err := io.ReadFull(reader, out); err != nil {
		return "", fmt.Errorf("failed to derive node secret: %w", err)
	}
	return hex.EncodeToString(out), nil
}

func validateMasterSecret(master string) error {
	if len(master) < 2 {
		return fmt.Errorf("%w: must be at least 2 characters", secretsDomain.ErrInvalidMasterSecret)
	}
	if len(master) > maxMasterSecretLen {
		return fmt.Errorf("%w: must be at most %d characters",
			secretsDomain.ErrInvalidMasterSecret, maxMasterSecretLen)
	}
	return nil
}
