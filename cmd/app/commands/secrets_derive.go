package commands

import (
	"fmt"
	"io"

	validation "github.com/jellydator/validation"

	secretsService "github.com/allisson/nodeauth/internal/secrets/service"
	customValidation "github.com/allisson/nodeauth/internal/validation"
)

// RunSecretsDerive prints the secret the derived backend computes for node
// from a single master secret.
func RunSecretsDerive(out io.Writer, masterSecret, node string) error {
	if err := (validation.Errors{
		"master_secret": validation.Validate(masterSecret, validation.Required, customValidation.NoWhitespace),
		"node_name":     validation.Validate(node, validation.Required, customValidation.NotBlank),
	}).Filter(); err != nil {
		return customValidation.WrapValidationError(err)
	}

	store, err := secretsService.NewDerivedSecrets(masterSecret)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, store.Get(node)[0])
	return err
}
