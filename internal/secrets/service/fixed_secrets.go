package service

import (
	"strings"
)

// FixedSecrets serves the same list of secrets for every node.
type FixedSecrets struct {
	secrets []string
}

// NewFixedSecrets creates a store from an explicit list of secrets.
func NewFixedSecrets(secrets ...string) *FixedSecrets {
	return &FixedSecrets{secrets: append([]string(nil), secrets...)}
}

// ParseFixedSecrets creates a store from a whitespace separated list.
func ParseFixedSecrets(secrets string) *FixedSecrets {
	return NewFixedSecrets(strings.Fields(secrets)...)
}

// Get returns a copy of the configured secrets regardless of node.
func (f *FixedSecrets) Get(node string) []string {
	return append([]string(nil), f.secrets...)
}

// Keys is always empty.
func (f *FixedSecrets) Keys() []string {
	return []string{}
}
