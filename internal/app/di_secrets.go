package app

import (
	"context"
	"fmt"

	secretsDomain "github.com/allisson/nodeauth/internal/secrets/domain"
	secretsService "github.com/allisson/nodeauth/internal/secrets/service"
)

// KMSService returns the KMS service used to unwrap master secrets.
func (c *Container) KMSService() secretsService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = secretsService.NewKMSService()
	})
	return c.kmsService
}

// SecretStore returns the node secret store selected by configuration.
func (c *Container) SecretStore() (secretsService.SecretStore, error) {
	var err error
	c.secretStoreInit.Do(func() {
		c.secretStore, err = c.initSecretStore()
		if err != nil {
			c.initErrors["secretStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretStore"]; exists {
		return nil, storedErr
	}
	return c.secretStore, nil
}

// initSecretStore builds the secret store, unwrapping KMS-protected master
// secrets at startup.
func (c *Container) initSecretStore() (secretsService.SecretStore, error) {
	store, err := secretsService.NewSecretStore(context.Background(), secretsService.Options{
		Backend:       secretsDomain.BackendKind(c.config.SecretsBackend),
		Secret:        c.config.Secret,
		SecretsFiles:  c.config.SecretsFiles,
		MasterSecrets: c.config.MasterSecrets,
		KMSKeyURI:     c.config.KMSKeyURI,
		KMSService:    c.KMSService(),
		Logger:        c.Logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create secret store: %w", err)
	}
	return store, nil
}
