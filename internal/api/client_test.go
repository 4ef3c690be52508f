package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minhvu-dev/teahouse/internal/orders"
	"github.com/minhvu-dev/teahouse/pkg/config"
	"github.com/minhvu-dev/teahouse/pkg/enums"
	pkgerrors "github.com/minhvu-dev/teahouse/pkg/errors"
	"github.com/minhvu-dev/teahouse/pkg/logger"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// memCreds is an in-memory stand-in for the session slot store.
type memCreds struct {
	mu      sync.Mutex
	access  string
	refresh string
	cleared bool
}

func (m *memCreds) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access, nil
}

func (m *memCreds) RefreshToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh, nil
}

func (m *memCreds) SetAccessToken(ctx context.Context, access string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = access
	return nil
}

func (m *memCreds) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh = "", ""
	m.cleared = true
	return nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func newTestClient(t *testing.T, creds CredentialSource, rt roundTripFunc, opts ...Option) *Client {
	t.Helper()

	opts = append(opts, WithHTTPClient(&http.Client{Transport: rt}))
	client, err := NewClient(
		config.APIConfig{BaseURL: "http://backend.test/api", Timeout: 5 * time.Second},
		creds,
		logger.New(logger.Options{ServiceName: "test"}),
		opts...,
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestClientStampsBearerCredential(t *testing.T) {
	t.Parallel()

	creds := &memCreds{access: "bearer-1"}
	var captured http.Header

	client := newTestClient(t, creds, func(req *http.Request) (*http.Response, error) {
		captured = req.Header.Clone()
		return jsonResponse(http.StatusOK, `{"success":true,"data":[]}`), nil
	})

	var out []struct{}
	if err := client.Get(context.Background(), "/products", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := captured.Get("Authorization"); got != "Bearer bearer-1" {
		t.Fatalf("unexpected authorization header %q", got)
	}
}

func TestClientOmitsHeaderWithoutCredential(t *testing.T) {
	t.Parallel()

	var captured http.Header
	client := newTestClient(t, &memCreds{}, func(req *http.Request) (*http.Response, error) {
		captured = req.Header.Clone()
		return jsonResponse(http.StatusOK, `[]`), nil
	})

	var out []struct{}
	if err := client.Get(context.Background(), "/products", &out); err != nil {
		t.Fatalf("get: %v", err)
	}
	if captured.Get("Authorization") != "" {
		t.Fatal("request without stored credential must not carry a bearer header")
	}
}

func TestClientRefreshesAndRetriesOnce(t *testing.T) {
	t.Parallel()

	creds := &memCreds{access: "stale", refresh: "refresh-1"}
	var productCalls, refreshCalls int

	client := newTestClient(t, creds, func(req *http.Request) (*http.Response, error) {
		if strings.HasSuffix(req.URL.Path, "/auth/refresh") {
			refreshCalls++
			return jsonResponse(http.StatusOK, `{"accessToken":"fresh"}`), nil
		}
		productCalls++
		if req.Header.Get("Authorization") != "Bearer fresh" {
			return jsonResponse(http.StatusUnauthorized, `{"message":"token expired"}`), nil
		}
		return jsonResponse(http.StatusOK, `{"success":true,"data":{"Id":12,"Name":"oolong"}}`), nil
	})

	var out struct {
		ID   int64  `json:"Id"`
		Name string `json:"Name"`
	}
	if err := client.Get(context.Background(), "/products/12", &out); err != nil {
		t.Fatalf("get: %v", err)
	}

	if out.Name != "oolong" {
		t.Fatalf("retried result not surfaced: %+v", out)
	}
	if productCalls != 2 {
		t.Fatalf("expected original call plus one retry, got %d", productCalls)
	}
	if refreshCalls != 1 {
		t.Fatalf("expected exactly one refresh exchange, got %d", refreshCalls)
	}
	if creds.access != "fresh" {
		t.Fatalf("refreshed credential not persisted, have %q", creds.access)
	}
}

func TestClientNeverRetriesTwice(t *testing.T) {
	t.Parallel()

	creds := &memCreds{access: "stale", refresh: "refresh-1"}
	var productCalls, refreshCalls int

	client := newTestClient(t, creds, func(req *http.Request) (*http.Response, error) {
		if strings.HasSuffix(req.URL.Path, "/auth/refresh") {
			refreshCalls++
			return jsonResponse(http.StatusOK, `{"accessToken":"still-rejected"}`), nil
		}
		productCalls++
		return jsonResponse(http.StatusUnauthorized, `{"message":"token expired"}`), nil
	})

	err := client.Get(context.Background(), "/orders", nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodeAuthExpired) {
		t.Fatalf("expected auth-expired rejection, got %v", err)
	}
	if productCalls != 2 {
		t.Fatalf("expected exactly two attempts, got %d", productCalls)
	}
	if refreshCalls != 1 {
		t.Fatalf("retry budget must cap refreshes at one, got %d", refreshCalls)
	}
}

func TestClientPurgesWhenRefreshFails(t *testing.T) {
	t.Parallel()

	creds := &memCreds{access: "stale", refresh: "stale-refresh"}
	hookFired := false

	client := newTestClient(t, creds, func(req *http.Request) (*http.Response, error) {
		if strings.HasSuffix(req.URL.Path, "/auth/refresh") {
			return jsonResponse(http.StatusUnauthorized, `{"message":"refresh rejected"}`), nil
		}
		return jsonResponse(http.StatusUnauthorized, `{"message":"token expired"}`), nil
	}, WithAuthFailureHook(func() { hookFired = true }))

	err := client.Get(context.Background(), "/orders", nil)
	if err == nil {
		t.Fatal("expected rejection after failed refresh")
	}
	if !creds.cleared {
		t.Fatal("credentials must be purged when the refresh exchange fails")
	}
	if creds.access != "" || creds.refresh != "" {
		t.Fatal("no residual credential may remain after purge")
	}
	if !hookFired {
		t.Fatal("auth failure hook must fire on purge")
	}
}

func TestClientDoesNotRetryNonAuthFailures(t *testing.T) {
	t.Parallel()

	creds := &memCreds{access: "bearer-1", refresh: "refresh-1"}
	calls := 0

	client := newTestClient(t, creds, func(req *http.Request) (*http.Response, error) {
		calls++
		return jsonResponse(http.StatusBadGateway, `{"message":"upstream down"}`), nil
	})

	err := client.Get(context.Background(), "/products", nil)
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("non-auth failures must never be retried, got %d calls", calls)
	}
	if creds.cleared {
		t.Fatal("non-auth failure must not purge credentials")
	}
}

func TestProbeSessionSpendsNoRefreshBudget(t *testing.T) {
	t.Parallel()

	creds := &memCreds{access: "stale", refresh: "refresh-1"}
	refreshCalls := 0

	client := newTestClient(t, creds, func(req *http.Request) (*http.Response, error) {
		if strings.HasSuffix(req.URL.Path, "/auth/refresh") {
			refreshCalls++
			return jsonResponse(http.StatusOK, `{"accessToken":"fresh"}`), nil
		}
		return jsonResponse(http.StatusUnauthorized, `{"message":"token expired"}`), nil
	})

	err := client.ProbeSession(context.Background())
	if !pkgerrors.HasCode(err, pkgerrors.CodeAuthExpired) {
		t.Fatalf("expected auth-expired from probe, got %v", err)
	}
	if refreshCalls != 0 {
		t.Fatal("the probe must not refresh on its own")
	}
}

func TestDecodePayloadHandlesEnvelopeAndBareShapes(t *testing.T) {
	t.Parallel()

	var fromEnvelope []map[string]any
	if err := decodePayload(strings.NewReader(`{"success":true,"data":[{"Id":1}]}`), &fromEnvelope); err != nil {
		t.Fatalf("envelope decode: %v", err)
	}
	if len(fromEnvelope) != 1 {
		t.Fatalf("expected one element, got %d", len(fromEnvelope))
	}

	var bare []map[string]any
	if err := decodePayload(strings.NewReader(`[{"Id":1},{"Id":2}]`), &bare); err != nil {
		t.Fatalf("bare decode: %v", err)
	}
	if len(bare) != 2 {
		t.Fatalf("expected two elements, got %d", len(bare))
	}

	var object struct {
		AccessToken string `json:"accessToken"`
	}
	if err := decodePayload(strings.NewReader(`{"accessToken":"tok"}`), &object); err != nil {
		t.Fatalf("object decode: %v", err)
	}
	if object.AccessToken != "tok" {
		t.Fatalf("unexpected token %q", object.AccessToken)
	}
}

func TestStatusErrorUsesBackendMessage(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, &memCreds{}, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"success":false,"message":"product not found"}`), nil
	})

	err := client.Get(context.Background(), "/products/999", nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found code, got %v", err)
	}
	if typed.Message() != "product not found" {
		t.Fatalf("backend message lost: %q", typed.Message())
	}
}

func TestClientSendsJSONBody(t *testing.T) {
	t.Parallel()

	var captured []byte
	client := newTestClient(t, &memCreds{access: "bearer-1"}, func(req *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		captured = body
		if req.Header.Get("Content-Type") != "application/json" {
			t.Fatalf("unexpected content type %q", req.Header.Get("Content-Type"))
		}
		return jsonResponse(http.StatusCreated, `{"success":true,"data":{"id":1}}`), nil
	})

	payload := map[string]any{"storeId": 3}
	if err := client.Post(context.Background(), "/orders", payload, nil); err != nil {
		t.Fatalf("post: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(captured, &decoded); err != nil {
		t.Fatalf("unmarshal captured body: %v", err)
	}
	if decoded["storeId"] != float64(3) {
		t.Fatalf("unexpected body %v", decoded)
	}
}

func TestClientSerializesMoneyAsNumbers(t *testing.T) {
	t.Parallel()

	var captured []byte
	client := newTestClient(t, &memCreds{access: "bearer-1"}, func(req *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		captured = body
		return jsonResponse(http.StatusCreated, `{"success":true,"data":{"id":1}}`), nil
	})

	payload := orders.Submission{
		StoreID:         3,
		PaymentMethod:   enums.PaymentMethodCash,
		ShippingAddress: "12 Ly Thuong Kiet",
		Items: []orders.SubmissionItem{
			{ProductID: 1, Quantity: 2, Price: decimal.NewFromInt(45000)},
		},
	}
	if err := client.Post(context.Background(), "/orders", payload, nil); err != nil {
		t.Fatalf("post: %v", err)
	}

	if !strings.Contains(string(captured), `"price":45000`) {
		t.Fatalf("price must cross the wire as a JSON number, body: %s", captured)
	}
	if strings.Contains(string(captured), `"price":"45000"`) {
		t.Fatalf("price crossed the wire quoted, body: %s", captured)
	}
}
