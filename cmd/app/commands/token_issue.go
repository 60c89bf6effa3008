package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	validation "github.com/jellydator/validation"

	authUseCase "github.com/allisson/nodeauth/internal/auth/usecase"
	customValidation "github.com/allisson/nodeauth/internal/validation"
)

// RunTokenIssue issues a token for uid on node with the configured secret
// store and prints the token id and its request-signing key.
func RunTokenIssue(
	ctx context.Context,
	authenticator authUseCase.Authenticator,
	logger *slog.Logger,
	out io.Writer,
	node string,
	uid int64,
	format string,
) error {
	if err := (validation.Errors{
		"node": validation.Validate(node, validation.Required, customValidation.NodeName),
		"uid":  validation.Validate(uid, validation.Min(int64(0))),
	}).Filter(); err != nil {
		return customValidation.WrapValidationError(err)
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	token, err := authenticator.IssueToken(ctx, node, uid)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	logger.Info("issued token",
		slog.String("node", token.Node),
		slog.Int64("uid", token.UID),
		slog.Time("expires_at", token.ExpiresAt),
	)

	if format == "json" {
		return writeJSON(out, map[string]any{
			"id":         token.Value,
			"key":        token.Key,
			"uid":        token.UID,
			"node":       token.Node,
			"expires_at": token.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}

	_, _ = fmt.Fprintf(out, "id: %s\n", token.Value)
	_, _ = fmt.Fprintf(out, "key: %s\n", token.Key)
	_, _ = fmt.Fprintf(out, "uid: %d\n", token.UID)
	_, _ = fmt.Fprintf(out, "node: %s\n", token.Node)
	_, err = fmt.Fprintf(out, "expires_at: %s\n", token.ExpiresAt.UTC().Format(time.RFC3339))
	return err
}
