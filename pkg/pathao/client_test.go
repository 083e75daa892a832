package pathao

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nazmulhossain/shopdesk-backend/pkg/config"
)

type memoryTokenStore struct {
	mtx    sync.Mutex
	values map[string]string
	sets   int
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{values: map[string]string{}}
}

func (m *memoryTokenStore) Get(_ context.Context, key string) (string, error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.values[key], nil
}

func (m *memoryTokenStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.values[key] = value.(string)
	m.sets++
	return nil
}

func (m *memoryTokenStore) CourierTokenKey(brand string) string {
	return "test:courier:token:" + brand
}

func testCredentials() config.PathaoConfig {
	return config.PathaoConfig{
		Credentials: map[string]config.PathaoBrandCredential{
			"aranya": {
				ClientID:     "client-id",
				ClientSecret: "client-secret",
				Username:     "merchant@aranya.example",
				Password:     "pw",
				StoreID:      "store-1",
			},
		},
		TokenTTL: time.Hour,
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	tokenIssues := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/aladdin/api/v1/issue-token", func(w http.ResponseWriter, r *http.Request) {
		tokenIssues++
		var req issueTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "password", req.GrantType)
		_ = json.NewEncoder(w).Encode(issueTokenResponse{
			TokenType:   "Bearer",
			AccessToken: "token-123",
			ExpiresIn:   3600,
		})
	})
	mux.HandleFunc("/aladdin/api/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(apiEnvelope{
			Message: "Order Created Successfully",
			Type:    "success",
			Code:    200,
			Data: consignmentData{
				ConsignmentID:   "DL123456",
				MerchantOrderID: req.MerchantOrderID,
				OrderStatus:     "Pending",
				DeliveryFee:     decimal.NewFromInt(80),
			},
		})
	})
	mux.HandleFunc("/aladdin/api/v1/orders/DL123456/info", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(apiEnvelope{
			Type: "success",
			Code: 200,
			Data: consignmentData{
				ConsignmentID: "DL123456",
				OrderStatus:   "Delivered",
			},
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &tokenIssues
}

func TestCreateConsignment(t *testing.T) {
	server, _ := newTestServer(t)
	client, err := NewClient(testCredentials(), WithBaseURL(server.URL))
	require.NoError(t, err)

	got, err := client.CreateConsignment(context.Background(), "aranya", CreateOrderRequest{
		StoreID:         "store-1",
		MerchantOrderID: "ORD-0001",
		RecipientName:   "Customer",
		RecipientPhone:  "01700000000",
		ItemQuantity:    1,
		AmountToCollect: decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	assert.Equal(t, "DL123456", got.ConsignmentID)
	assert.Equal(t, "Pending", got.Status)
	assert.True(t, got.DeliveryFee.Equal(decimal.NewFromInt(80)))
}

func TestGetStatus(t *testing.T) {
	server, _ := newTestServer(t)
	client, err := NewClient(testCredentials(), WithBaseURL(server.URL))
	require.NoError(t, err)

	got, err := client.GetStatus(context.Background(), "aranya", "DL123456")
	require.NoError(t, err)
	assert.Equal(t, "Delivered", got.Status)
}

func TestTokenReusedFromCache(t *testing.T) {
	server, issues := newTestServer(t)
	store := newMemoryTokenStore()
	client, err := NewClient(testCredentials(), WithBaseURL(server.URL), WithTokenStore(store))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = client.GetStatus(ctx, "aranya", "DL123456")
	require.NoError(t, err)
	_, err = client.GetStatus(ctx, "aranya", "DL123456")
	require.NoError(t, err)

	assert.Equal(t, 1, *issues)
	assert.Equal(t, 1, store.sets)
}

func TestUnknownBrandFailsFast(t *testing.T) {
	server, issues := newTestServer(t)
	client, err := NewClient(testCredentials(), WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.GetStatus(context.Background(), "unknown", "DL123456")
	require.Error(t, err)
	assert.Zero(t, *issues)
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(config.PathaoConfig{})
	require.Error(t, err)
}
