package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	secretsService "github.com/allisson/nodeauth/internal/secrets/service"
)

// ParseSecretSize parses the optional size argument of "secrets new".
// An empty argument selects DefaultSecretSize.
func ParseSecretSize(arg string) (int, error) {
	if arg == "" {
		return secretsService.DefaultSecretSize, nil
	}
	size, err := strconv.Atoi(arg)
	if err != nil || size <= 0 {
		return 0, fmt.Errorf("size must be a positive integer, got: %q", arg)
	}
	return size, nil
}

// RunSecretsNew prints the hex encoding of size random bytes.
//
// When kmsKeyURI is set the secret is also wrapped with that KMS key and the
// environment lines for the derived backend are printed:
//   - MASTER_SECRETS="<base64-kms-ciphertext>"
//   - KMS_KEY_URI="<uri>"
func RunSecretsNew(
	ctx context.Context,
	kmsService secretsService.KMSService,
	logger *slog.Logger,
	out io.Writer,
	size int,
	kmsKeyURI string,
) error {
	secret, err := secretsService.GenerateHexSecret(size)
	if err != nil {
		return fmt.Errorf("failed to generate secret: %w", err)
	}

	if kmsKeyURI == "" {
		_, err = fmt.Fprintln(out, secret)
		return err
	}

	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	wrapped, err := secretsService.WrapMasterSecret(ctx, keeper, secret)
	if err != nil {
		return err
	}

	logger.Info("generated KMS wrapped master secret", slog.Int("size", size))

	_, _ = fmt.Fprintln(out, secret)
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "# Derived backend configuration (KMS mode)")
	_, _ = fmt.Fprintln(out, "# Append the ciphertext to MASTER_SECRETS, separated by a space, to rotate")
	_, _ = fmt.Fprintln(out, `SECRETS_BACKEND="derived"`)
	_, _ = fmt.Fprintf(out, "KMS_KEY_URI=%q\n", kmsKeyURI)
	_, err = fmt.Fprintf(out, "MASTER_SECRETS=%q\n", wrapped)
	return err
}
