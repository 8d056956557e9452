package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChargeApproved(t *testing.T) {
	var got chargeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/charges", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(chargeResponse{Decision: "approved"})
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, time.Second)
	outcome, err := g.Charge(context.Background(), 45000, "user-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeApproved, outcome)
	assert.Equal(t, uint32(45000), got.AmountCents)
	assert.Equal(t, "user-1", got.UserRef)
}

func TestChargeDeclinedDecision(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chargeResponse{Decision: "declined"})
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, time.Second)
	outcome, err := g.Charge(context.Background(), 100, "user-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeclined, outcome)
}

func TestChargeDeclinedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, time.Second)
	outcome, err := g.Charge(context.Background(), 100, "user-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeclined, outcome)
}

func TestChargeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, time.Second)
	outcome, err := g.Charge(context.Background(), 100, "user-1")
	require.Error(t, err)
	assert.Equal(t, OutcomeDeclined, outcome)
}

func TestChargeTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	g := NewGateway(srv.URL, 50*time.Millisecond)
	outcome, err := g.Charge(context.Background(), 100, "user-1")
	require.NoError(t, err, "a timeout is a settled outcome, not an error")
	assert.Equal(t, OutcomeTimeout, outcome)
}

func TestChargeContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	g := NewGateway(srv.URL, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	outcome, err := g.Charge(ctx, 100, "user-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeTimeout, outcome)
}

func TestChargeConnectionRefused(t *testing.T) {
	// a closed server produces a transport error, not a timeout
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	g := NewGateway(srv.URL, time.Second)
	_, err := g.Charge(context.Background(), 100, "user-1")
	assert.Error(t, err)
}
