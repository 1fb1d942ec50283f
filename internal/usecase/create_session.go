package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/Matheuscfs/tgt-contratto-mvp/internal/adapter/observ"
	domain "github.com/Matheuscfs/tgt-contratto-mvp/internal/entity"
	"github.com/google/uuid"
)

type CreateSessionInput struct {
	ServiceID string
	Tier      domain.Tier
	// BuyerID comes from the authenticated context, never the body.
	BuyerID string
}

type CreateSessionOutput struct {
	SessionID   string
	AmountCents int64
	Currency    string
	PaymentURL  string
}

// CreateSession issues a checkout session with a catalog-derived price.
// The tier in the input is only a selector; any price the client sends
// alongside it never reaches this code.
type CreateSession struct {
	catalog  CatalogReader
	sessions SessionStore
	signer   MetadataSigner

	currency       string
	paymentBaseURL string
}

func NewCreateSession(catalog CatalogReader, sessions SessionStore, signer MetadataSigner, currency, paymentBaseURL string) *CreateSession {
	return &CreateSession{
		catalog:        catalog,
		sessions:       sessions,
		signer:         signer,
		currency:       currency,
		paymentBaseURL: paymentBaseURL,
	}
}

func (uc *CreateSession) Execute(ctx context.Context, in CreateSessionInput) (CreateSessionOutput, error) {
	svc, _, err := uc.catalog.GetServiceWithOwner(ctx, in.ServiceID)
	if err != nil {
		return CreateSessionOutput{}, err
	}

	amount, err := domain.ResolvePrice(svc, in.Tier, uc.currency)
	if err != nil {
		return CreateSessionOutput{}, err
	}

	sessionID := "sess_" + uuid.NewString()

	meta := PaymentMetadata{
		ServiceID:   in.ServiceID,
		Tier:        string(in.Tier),
		BuyerID:     in.BuyerID,
		AmountCents: amount.Cents,
		SessionID:   sessionID,
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return CreateSessionOutput{}, fmt.Errorf("marshal metadata: %w", err)
	}
	sig := uc.signer.Sign(metaJSON)

	now := time.Now().UTC()
	sess := &domain.CheckoutSession{
		SessionID:   sessionID,
		ServiceID:   in.ServiceID,
		Tier:        in.Tier,
		BuyerID:     in.BuyerID,
		Amount:      amount,
		Status:      domain.SessionCreated,
		MetadataSig: sig,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.sessions.Put(ctx, sess); err != nil {
		return CreateSessionOutput{}, fmt.Errorf("persist session: %w", err)
	}

	observ.SessionsIssued.Inc()

	return CreateSessionOutput{
		SessionID:   sessionID,
		AmountCents: amount.Cents,
		Currency:    amount.Currency,
		PaymentURL:  uc.paymentURL(sessionID, amount.Cents, sig),
	}, nil
}

// paymentURL builds the provider redirect. The signature lets the
// provider echo the metadata back verifiably; the materializer still
// re-derives everything from the catalog.
func (uc *CreateSession) paymentURL(sessionID string, cents int64, sig string) string {
	q := url.Values{}
	q.Set("session", sessionID)
	q.Set("amount", fmt.Sprintf("%d", cents))
	q.Set("sig", sig)
	return uc.paymentBaseURL + "?" + q.Encode()
}
