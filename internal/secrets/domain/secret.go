package domain

import (
	"context"
	"fmt"
	"sort"
)

// HKDFInfoNodeSecret is the namespace prefix of the HKDF "info" parameter used to
// derive node secrets from master secrets. The node id is appended to it.
const HKDFInfoNodeSecret = "services.mozilla.com/mozsvc/v1/node_secret/"

// SecretEntry is one timestamped signing secret of a node.
//
// Within a node the entries are ordered by ascending timestamp. The last entry is
// the current secret used to sign new tokens, every entry remains valid for
// verifying tokens issued before a rotation.
type SecretEntry struct {
	Timestamp int64
	Secret    string
}

// SortEntries orders entries by timestamp, breaking ties by secret.
func SortEntries(entries []SecretEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp != entries[j].Timestamp {
			return entries[i].Timestamp < entries[j].Timestamp
		}
		return entries[i].Secret < entries[j].Secret
	})
}

// Secrets returns the secret values of entries in order.
func Secrets(entries []SecretEntry) []string {
	secrets := make([]string, 0, len(entries))
	for _, entry := range entries {
		secrets = append(secrets, entry.Secret)
	}
	return secrets
}

// BackendKind selects one of the SecretStore implementations.
type BackendKind string

const (
	// BackendFixed shares one list of secrets between all nodes.
	BackendFixed BackendKind = "fixed"
	// BackendFile loads per-node secrets from CSV files.
	BackendFile BackendKind = "file"
	// BackendDerived HKDF-derives per-node secrets from master secrets.
	BackendDerived BackendKind = "derived"
)

// ParseBackendKind converts a configuration string into a BackendKind.
func ParseBackendKind(kind string) (BackendKind, error) {
	switch BackendKind(kind) {
	case BackendFixed, BackendFile, BackendDerived:
		return BackendKind(kind), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSecretsBackend, kind)
	}
}

// KMSKeeper is the subset of a KMS keeper used to wrap and unwrap master secrets.
// *gocloud.dev/secrets.Keeper satisfies it.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
