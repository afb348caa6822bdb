// Package notify carries transaction events to the external notification
// collaborator and owns per-user notification settings. Delivery is
// fire-and-forget: a failed emit is logged and never rolls back the journal
// transaction that produced it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/domain"
)

// Event is the payload handed to the notification collaborator after a
// journal commit.
type Event struct {
	TransactionID string                 `json:"transaction_id"`
	WalletID      string                 `json:"wallet_id"`
	ActorUserID   string                 `json:"actor_user_id"`
	Amount        decimal.Decimal        `json:"amount"`
	Description   string                 `json:"description"`
	Type          domain.TransactionType `json:"type"`
}

type Emitter interface {
	Emit(ctx context.Context, ev Event) error
}

// LogEmitter records events in the service log only. Used when no webhook
// is configured and as the fallback sink in tests.
type LogEmitter struct {
	Log zerolog.Logger
}

func (e *LogEmitter) Emit(_ context.Context, ev Event) error {
	e.Log.Info().
		Str("transaction_id", ev.TransactionID).
		Str("wallet_id", ev.WalletID).
		Str("actor_user_id", ev.ActorUserID).
		Str("amount", ev.Amount.String()).
		Str("type", string(ev.Type)).
		Msg("transaction notification")
	return nil
}

// WebhookEmitter posts events to the configured notification endpoint.
type WebhookEmitter struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

func NewWebhookEmitter(url string, timeout time.Duration) *WebhookEmitter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookEmitter{
		URL:     url,
		Client:  &http.Client{Timeout: timeout},
		Timeout: timeout,
	}
}

func (e *WebhookEmitter) Emit(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := e.Client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return &webhookError{Status: res.StatusCode, Body: string(raw)}
	}
	return nil
}

type webhookError struct {
	Status int
	Body   string
}

func (e *webhookError) Error() string {
	return "notification webhook failed"
}
