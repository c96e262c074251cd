package config

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// SecretAccessor reads a secret version payload.
type SecretAccessor interface {
	Access(ctx context.Context, name string) (string, error)
}

type gcpSecretAccessor struct{}

func (gcpSecretAccessor) Access(ctx context.Context, name string) (string, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create secret manager client: %w", err)
	}
	defer func() { _ = client.Close() }()

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("failed to access secret %s: %w", name, err)
	}
	return string(resp.GetPayload().GetData()), nil
}

// SecretName expands a short secret id into a full version resource name.
// Values already starting with "projects/" are returned unchanged.
func SecretName(project, secret string) (string, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", fmt.Errorf("secret name is empty")
	}
	if strings.HasPrefix(secret, "projects/") {
		if !strings.Contains(secret, "/versions/") {
			secret += "/versions/latest"
		}
		return secret, nil
	}
	if project == "" {
		return "", fmt.Errorf("GOOGLE_CLOUD_PROJECT is required to resolve secret %q", secret)
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, secret), nil
}

// AdminPassword resolves ADMIN_PASSWORD_SECRET through Secret Manager.
// ok is false when no secret is configured.
func (c *Config) AdminPassword(ctx context.Context) (password string, ok bool, err error) {
	return c.adminPassword(ctx, gcpSecretAccessor{})
}

func (c *Config) adminPassword(ctx context.Context, accessor SecretAccessor) (string, bool, error) {
	if c.AdminPasswordSecret == "" {
		return "", false, nil
	}
	name, err := SecretName(c.GCPProject, c.AdminPasswordSecret)
	if err != nil {
		return "", false, err
	}
	value, err := accessor.Access(ctx, name)
	if err != nil {
		return "", false, err
	}
	return strings.TrimRight(value, "\r\n"), true, nil
}
