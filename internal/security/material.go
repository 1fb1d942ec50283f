package security

import (
	"fmt"

	"github.com/Matheuscfs/tgt-contratto-mvp/configs"
)

// Material holds the constructed signers. The webhook signer checks the
// provider's X-Signature header; the metadata signer covers session
// metadata that round-trips through the provider.
type Material struct {
	Webhook  Signer
	Metadata Signer
}

func NewMaterial(c configs.Config) (*Material, error) {
	if c.Webhook.Secret == "" {
		return nil, ErrMissingSecret
	}
	wh, err := NewHMACSigner([]byte(c.Webhook.Secret))
	if err != nil {
		return nil, fmt.Errorf("webhook signer: %w", err)
	}

	// Metadata signing falls back to the webhook secret when no separate
	// key is configured.
	metaSecret := c.Webhook.MetadataSecret
	if metaSecret == "" {
		metaSecret = c.Webhook.Secret
	}
	meta, err := NewHMACSigner([]byte(metaSecret))
	if err != nil {
		return nil, fmt.Errorf("metadata signer: %w", err)
	}

	return &Material{Webhook: wh, Metadata: meta}, nil
}
