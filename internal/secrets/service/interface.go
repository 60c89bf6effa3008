// Package service provides the node signing secret stores.
//
// A SecretStore answers one question: which secrets may have signed a token for
// a given node. Stores are read-mostly and safe for concurrent use; the file
// backend additionally supports the operator Add/Save workflow.
package service

import (
	"context"

	secretsDomain "github.com/allisson/nodeauth/internal/secrets/domain"
)

// SecretStore resolves the signing secrets of a node.
type SecretStore interface {
	// Get returns the secrets valid for node, oldest first. The last element is
	// the current signing secret. Unknown nodes yield an empty slice.
	Get(node string) []string

	// Keys returns the node ids the store knows about. Backends that serve any
	// node (fixed, derived) return an empty slice.
	Keys() []string
}

// KMSService opens KMS keepers used to wrap and unwrap master secrets.
type KMSService interface {
	// OpenKeeper opens a keeper for keyURI.
	// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
	OpenKeeper(ctx context.Context, keyURI string) (secretsDomain.KMSKeeper, error)
}
