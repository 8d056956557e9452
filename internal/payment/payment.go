// Package payment defines the black-box interface to the external
// payment service.  The reservation core never retries a charge: a
// declined or timed out result is terminal for the booking attempt and
// the client starts over with a fresh hold.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Outcome is the three-way result of a charge attempt.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeDeclined Outcome = "declined"
	OutcomeTimeout  Outcome = "timeout"
)

// Charger charges a user for a booking.  Implementations must respect
// the context deadline; the orchestrator maps a deadline error to a
// timeout outcome.
type Charger interface {
	Charge(ctx context.Context, amountCents uint32, userRef string) (Outcome, error)
}

// Gateway is an HTTP JSON client for the external payment service.
// It POSTs a charge request and interprets the service's decision.
// Any transport error other than a deadline is returned as-is so the
// orchestrator can release the hold and surface a failure.
type Gateway struct {
	baseURL string
	client  *http.Client
}

// NewGateway constructs a Gateway for the service at baseURL.  The
// timeout bounds each charge call in addition to whatever deadline the
// caller's context carries.
func NewGateway(baseURL string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type chargeRequest struct {
	AmountCents uint32 `json:"amount_cents"`
	UserRef     string `json:"user_ref"`
}

type chargeResponse struct {
	Decision string `json:"decision"` // "approved" or "declined"
}

// Charge submits the charge and maps the response decision to an
// Outcome.  Context or client timeouts yield OutcomeTimeout with a nil
// error; the attempt is settled, just unsuccessfully.
func (g *Gateway) Charge(ctx context.Context, amountCents uint32, userRef string) (Outcome, error) {
	body, err := json.Marshal(chargeRequest{AmountCents: amountCents, UserRef: userRef})
	if err != nil {
		return OutcomeDeclined, fmt.Errorf("encode charge request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return OutcomeDeclined, fmt.Errorf("build charge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
			return OutcomeTimeout, nil
		}
		return OutcomeDeclined, fmt.Errorf("charge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusPaymentRequired {
		return OutcomeDeclined, nil
	}
	if resp.StatusCode != http.StatusOK {
		return OutcomeDeclined, fmt.Errorf("payment service returned %d", resp.StatusCode)
	}
	var cr chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return OutcomeDeclined, fmt.Errorf("decode charge response: %w", err)
	}
	if cr.Decision == "approved" {
		return OutcomeApproved, nil
	}
	return OutcomeDeclined, nil
}

func isClientTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	var t timeouter
	return errors.As(err, &t) && t.Timeout()
}
