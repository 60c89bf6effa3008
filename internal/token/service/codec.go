// Package service encodes and decodes node tokens.
package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	tokenDomain "github.com/allisson/nodeauth/internal/token/domain"
)

const saltSize = 3

// Claims is the payload of a node token.
type Claims struct {
	UID  int64  `json:"uid"`
	Node string `json:"node"`
	Salt string `json:"salt"`
	jwt.RegisteredClaims
}

// Codec issues and verifies HS256 node tokens. The JWT key and the per-token
// request-signing key are both HKDF-derived from the node secret, so the raw
// secret never signs anything directly.
type Codec struct {
	duration time.Duration
	now      func() time.Time
}

// NewCodec creates a Codec issuing tokens valid for duration.
func NewCodec(duration time.Duration) *Codec {
	if duration <= 0 {
		duration = tokenDomain.DefaultDuration
	}
	return &Codec{duration: duration, now: time.Now}
}

// Encode issues a token for uid on node, signed with secret.
func (c *Codec) Encode(secret, node string, uid int64) (*tokenDomain.Token, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token id: %w", err)
	}
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate token salt: %w", err)
	}

	now := c.now().Truncate(time.Second)
	claims := &Claims{
		UID:  uid,
		Node: node,
		Salt: hex.EncodeToString(salt),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.duration)),
		},
	}

	signingKey, err := deriveKey(secret, nil, tokenDomain.HKDFInfoSigning)
	if err != nil {
		return nil, err
	}
	value, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return c.toToken(secret, value, claims)
}

// Decode verifies value against secret and returns its contents. Tokens signed
// with another secret yield ErrInvalidToken, expired ones ErrExpiredToken.
func (c *Codec) Decode(secret, value string) (*tokenDomain.Token, error) {
	signingKey, err := deriveKey(secret, nil, tokenDomain.HKDFInfoSigning)
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(
		value,
		claims,
		func(*jwt.Token) (any, error) { return signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, tokenDomain.ErrExpiredToken
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tokenDomain.ErrInvalidToken, err)
	}
	if claims.ID == "" || claims.Node == "" {
		return nil, fmt.Errorf("%w: missing claims", tokenDomain.ErrInvalidToken)
	}

	return c.toToken(secret, value, claims)
}

func (c *Codec) toToken(secret, value string, claims *Claims) (*tokenDomain.Token, error) {
	key, err := DeriveRequestKey(secret, claims.Salt, value)
	if err != nil {
		return nil, err
	}
	token := &tokenDomain.Token{
		Value: value,
		ID:    claims.ID,
		UID:   claims.UID,
		Node:  claims.Node,
		Key:   key,
	}
	if claims.IssuedAt != nil {
		token.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		token.ExpiresAt = claims.ExpiresAt.Time
	}
	return token, nil
}

// DeriveRequestKey returns the key a token holder signs requests with:
// base64url(HKDF-SHA256(secret, salt, info=derive prefix + token)).
func DeriveRequestKey(secret, salt, value string) (string, error) {
	key, err := deriveKey(secret, []byte(salt), tokenDomain.HKDFInfoDerive+value)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(key), nil
}

func deriveKey(secret string, salt []byte, info string) ([]byte, error) {
	reader := hkdf.New(sha256.New, []byte(secret), salt, []byte(info))
	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}
