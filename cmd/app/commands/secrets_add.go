package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	validation "github.com/jellydator/validation"

	secretsService "github.com/allisson/nodeauth/internal/secrets/service"
	customValidation "github.com/allisson/nodeauth/internal/validation"
)

// RunSecretsAdd appends a fresh secret to node in the secrets file at path and
// saves it. The file is created when missing. Older secrets of the node stay
// valid for verifying tokens issued before the rotation.
func RunSecretsAdd(logger *slog.Logger, out io.Writer, path, node string, size int) error {
	if err := (validation.Errors{
		"file": validation.Validate(path, validation.Required, customValidation.NotBlank),
		"node": validation.Validate(node, validation.Required, customValidation.NodeName),
		"size": validation.Validate(size, validation.Required, validation.Min(1)),
	}).Filter(); err != nil {
		return customValidation.WrapValidationError(err)
	}

	var paths []string
	if _, err := os.Stat(path); err == nil {
		paths = append(paths, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat secrets file: %w", err)
	}

	store, err := secretsService.NewFileSecrets(paths...)
	if err != nil {
		return err
	}

	secret, err := store.Add(node, size)
	if err != nil {
		return err
	}
	if err := store.Save(path); err != nil {
		return err
	}

	entries := store.Entries(node)
	logger.Info("added node secret",
		slog.String("file", path),
		slog.String("node", node),
		slog.Int("secrets", len(entries)),
	)

	_, err = fmt.Fprintf(out, "%s,%d:%s\n", node, entries[len(entries)-1].Timestamp, secret)
	return err
}
