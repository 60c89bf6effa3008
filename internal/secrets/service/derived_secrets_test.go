package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	secretsDomain "github.com/allisson/nodeauth/internal/secrets/domain"
)

func TestDeriveNodeSecret(t *testing.T) {
	master := strings.Repeat("ab", 32)

	t.Run("Deterministic", func(t *testing.T) {
		first, err := DeriveNodeSecret(master, "https://host1.com")
		require.NoError(t, err)
		second, err := DeriveNodeSecret(master, "https://host1.com")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Len(t, first, len(master))
	})

	t.Run("DistinctPerNode", func(t *testing.T) {
		one, err := DeriveNodeSecret(master, "https://host1.com")
		require.NoError(t, err)
		two, err := DeriveNodeSecret(master, "https://host2.com")
		require.NoError(t, err)

		assert.NotEqual(t, one, two)
	})

	t.Run("DistinctPerMaster", func(t *testing.T) {
		one, err := DeriveNodeSecret(master, "https://host1.com")
		require.NoError(t, err)
		two, err := DeriveNodeSecret(strings.Repeat("cd", 32), "https://host1.com")
		require.NoError(t, err)

		assert.NotEqual(t, one, two)
	})

	t.Run("OddLengthMaster", func(t *testing.T) {
		secret, err := DeriveNodeSecret("abcde", "node")
		require.NoError(t, err)
		assert.Len(t, secret, 4)
	})

	t.Run("Error_TooShort", func(t *testing.T) {
		_, err := DeriveNodeSecret("a", "node")
		assert.ErrorIs(t, err, secretsDomain.ErrInvalidMasterSecret)
	})

	t.Run("Error_TooLong", func(t *testing.T) {
		_, err := DeriveNodeSecret(strings.Repeat("a", maxMasterSecretLen+2), "node")
		assert.ErrorIs(t, err, secretsDomain.ErrInvalidMasterSecret)
	})
}

func TestDerivedSecrets(t *testing.T) {
	old := strings.Repeat("11", 16)
	current := strings.Repeat("22", 16)

	store, err := NewDerivedSecrets(old, current)
	require.NoError(t, err)

	secrets := store.Get("https://host1.com")
	require.Len(t, secrets, 2)

	expectedOld, err := DeriveNodeSecret(old, "https://host1.com")
	require.NoError(t, err)
	expectedCurrent, err := DeriveNodeSecret(current, "https://host1.com")
	require.NoError(t, err)

	assert.Equal(t, []string{expectedOld, expectedCurrent}, secrets)
	assert.Empty(t, store.Keys())

	_, err = NewDerivedSecrets(current, "x")
	assert.ErrorIs(t, err, secretsDomain.ErrInvalidMasterSecret)
}

func TestFixedSecrets(t *testing.T) {
	store := ParseFixedSecrets("  one two\tthree\n")

	assert.Equal(t, []string{"one", "two", "three"}, store.Get("any"))
	assert.Equal(t, store.Get("any"), store.Get("other"))
	assert.Empty(t, store.Keys())

	got := store.Get("any")
	got[0] = "mutated"
	assert.Equal(t, "one", store.Get("any")[0])
}

func TestGenerateHexSecret(t *testing.T) {
	secret, err := GenerateHexSecret(32)
	require.NoError(t, err)
	assert.Len(t, secret, 64)

	other, err := GenerateHexSecret(32)
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)

	_, err = GenerateHexSecret(-1)
	assert.ErrorIs(t, err, secretsDomain.ErrInvalidSecretSize)
}
