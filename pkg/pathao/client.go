package pathao

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nazmulhossain/shopdesk-backend/pkg/config"
	pkgerrors "github.com/nazmulhossain/shopdesk-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://api-hermes.pathao.com"
	issueTokenPath              = "aladdin/api/v1/issue-token"
	createOrderPath             = "aladdin/api/v1/orders"
	orderInfoPathFmt            = "aladdin/api/v1/orders/%s/info"
	requestBodyReadLimit  int64 = 1024
	defaultRequestTimeout       = 15 * time.Second
	passwordGrant               = "password"
)

var errNoCredentials = errors.New("pathao credentials are required")

// TokenStore caches issued access tokens between requests.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CourierTokenKey(brand string) string
}

// Client wraps the provider's merchant API, scoped per brand credential set.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      map[string]config.PathaoBrandCredential
	tokens     TokenStore
	tokenTTL   time.Duration
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTokenStore attaches a cache for issued tokens.
func WithTokenStore(store TokenStore) Option {
	return func(c *Client) {
		c.tokens = store
	}
}

// NewClient builds the courier client from the brand credential map.
func NewClient(cfg config.PathaoConfig, opts ...Option) (*Client, error) {
	if len(cfg.Credentials) == 0 {
		return nil, errNoCredentials
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	client := &Client{
		baseURL:    defaultBaseURL,
		creds:      cfg.Credentials,
		tokenTTL:   cfg.TokenTTL,
		httpClient: &http.Client{Timeout: timeout},
	}
	if trimmed := strings.TrimSpace(cfg.BaseURL); trimmed != "" {
		client.baseURL = trimmed
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}

	return client, nil
}

// StoreID returns the provider store identifier configured for the brand.
func (c *Client) StoreID(brand string) (string, error) {
	cred, err := c.credentialFor(brand)
	if err != nil {
		return "", err
	}
	return cred.StoreID, nil
}

// CreateConsignment registers the order with the provider and returns the
// tracked consignment.
func (c *Client) CreateConsignment(ctx context.Context, brand string, req CreateOrderRequest) (*Consignment, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pathao client not configured")
	}
	if strings.TrimSpace(req.RecipientPhone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient phone is required")
	}

	token, err := c.token(ctx, brand)
	if err != nil {
		return nil, err
	}

	var envelope apiEnvelope
	if err := c.doJSON(ctx, http.MethodPost, c.buildURL(createOrderPath), token, req, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data.ConsignmentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "provider returned no consignment id")
	}

	return &Consignment{
		ConsignmentID: envelope.Data.ConsignmentID,
		Status:        envelope.Data.OrderStatus,
		DeliveryFee:   envelope.Data.DeliveryFee,
	}, nil
}

// GetStatus queries the provider for the consignment's current status.
func (c *Client) GetStatus(ctx context.Context, brand, consignmentID string) (*ConsignmentStatus, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pathao client not configured")
	}
	trimmed := strings.TrimSpace(consignmentID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "consignment id is required")
	}

	token, err := c.token(ctx, brand)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf(orderInfoPathFmt, url.PathEscape(trimmed))
	var envelope apiEnvelope
	if err := c.doJSON(ctx, http.MethodGet, c.buildURL(path), token, nil, &envelope); err != nil {
		return nil, err
	}

	return &ConsignmentStatus{
		ConsignmentID: trimmed,
		Status:        envelope.Data.OrderStatus,
	}, nil
}

func (c *Client) credentialFor(brand string) (config.PathaoBrandCredential, error) {
	cred, ok := c.creds[brand]
	if !ok {
		return config.PathaoBrandCredential{}, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("no courier credentials for brand %q", brand))
	}
	return cred, nil
}

// token returns a cached access token for the brand, issuing a new one when
// the cache misses.
func (c *Client) token(ctx context.Context, brand string) (string, error) {
	cred, err := c.credentialFor(brand)
	if err != nil {
		return "", err
	}

	if c.tokens != nil {
		cached, err := c.tokens.Get(ctx, c.tokens.CourierTokenKey(brand))
		if err == nil && cached != "" {
			return cached, nil
		}
	}

	issued, err := c.issueToken(ctx, cred)
	if err != nil {
		return "", err
	}

	if c.tokens != nil {
		ttl := c.tokenTTL
		if issued.ExpiresIn > 0 {
			expiry := time.Duration(issued.ExpiresIn) * time.Second
			if ttl <= 0 || expiry < ttl {
				ttl = expiry
			}
		}
		// Cache failures are not fatal; the token is still usable.
		_ = c.tokens.Set(ctx, c.tokens.CourierTokenKey(brand), issued.AccessToken, ttl)
	}

	return issued.AccessToken, nil
}

func (c *Client) issueToken(ctx context.Context, cred config.PathaoBrandCredential) (*issueTokenResponse, error) {
	req := issueTokenRequest{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		GrantType:    passwordGrant,
		Username:     cred.Username,
		Password:     cred.Password,
	}

	var resp issueTokenResponse
	if err := c.doJSON(ctx, http.MethodPost, c.buildURL(issueTokenPath), "", req, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "provider returned empty access token")
	}
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, url, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal request")
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "courier request failed")
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
	}
	return nil
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
