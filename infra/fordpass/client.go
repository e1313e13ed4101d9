// Package fordpass implements the cloud session against the FordPass /
// Autonomic endpoints.
package fordpass

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/kilianp07/vehiclepass/config"
	"github.com/kilianp07/vehiclepass/core/cloud"
	"github.com/kilianp07/vehiclepass/core/logger"
	infralogger "github.com/kilianp07/vehiclepass/infra/logger"
)

const (
	loginUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 18_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.0 Mobile/15E148 Safari/604.1"
	apiUserAgent   = "FordPass/2 CFNetwork/1475 Darwin/23.0.0"
)

// Client is an authenticated HTTP session implementing cloud.Session.
type Client struct {
	http  *http.Client
	log   logger.Logger
	creds config.CredentialsConfig
	urls  config.CloudConfig
	token *oauth2.Token
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger substitutes the session logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// Dial logs in against the cloud and returns a ready session. The login is a
// two-step flow: the provider auth endpoint exchanges credentials for a
// provider token, which is then exchanged at the OIDC endpoint for the API
// token used on every subsequent request.
func Dial(ctx context.Context, creds config.CredentialsConfig, urls config.CloudConfig, opts ...Option) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		http:  &http.Client{Timeout: 30 * time.Second},
		log:   infralogger.New("fordpass"),
		creds: creds,
		urls:  urls,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.login(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) login(ctx context.Context) error {
	provider, err := c.providerToken(ctx)
	if err != nil {
		return err
	}
	token, err := c.exchangeToken(ctx, provider)
	if err != nil {
		return err
	}
	c.token = token
	c.log.Infof("logged in, token expires at %s", token.Expiry.Format(time.RFC3339))
	return nil
}

// providerToken posts the account credentials to the provider auth endpoint.
func (c *Client) providerToken(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"username": c.creds.Username,
		"password": c.creds.Password,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.urls.AuthURL, bytes.NewReader(body))
	if err != nil {
		return "", &cloud.TransportError{Op: "login", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", loginUserAgent)

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(req, "login", &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", &cloud.TransportError{Op: "login", Err: fmt.Errorf("no access token in response")}
	}
	return out.AccessToken, nil
}

// exchangeToken trades the provider token for an API token via the OIDC
// token-exchange grant.
func (c *Client) exchangeToken(ctx context.Context, providerToken string) (*oauth2.Token, error) {
	form := url.Values{
		"subject_token":      {providerToken},
		"subject_issuer":     {"fordpass"},
		"client_id":          {"fordpass-prod"},
		"grant_type":         {"urn:ietf:params:oauth:grant-type:token-exchange"},
		"subject_token_type": {"urn:ietf:params:oauth:token-type:jwt"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.urls.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &cloud.TransportError{Op: "token exchange", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", loginUserAgent)

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := c.do(req, "token exchange", &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &cloud.TransportError{Op: "token exchange", Err: fmt.Errorf("no access token in response")}
	}
	token := &oauth2.Token{AccessToken: out.AccessToken, TokenType: "Bearer"}
	if out.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	}
	return token, nil
}

// authorize refreshes the token when expired and sets the API headers.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.token == nil || !c.token.Valid() {
		if err := c.login(ctx); err != nil {
			return err
		}
	}
	c.token.SetAuthHeader(req)
	req.Header.Set("User-Agent", apiUserAgent)
	req.Header.Set("Application-Id", c.urls.ApplicationID)
	return nil
}

// FetchStatus returns the decoded telemetry document for the vehicle.
func (c *Client) FetchStatus(ctx context.Context) (map[string]any, error) {
	u := fmt.Sprintf("%s/%s", c.urls.TelemetryURL, c.creds.VIN)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &cloud.TransportError{Op: "fetch status", Err: err}
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}
	var out map[string]any
	if err := c.do(req, "fetch status", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendCommand posts a command for the vehicle. Client errors from the cloud
// surface as *cloud.RejectedError; anything else as *cloud.TransportError.
func (c *Client) SendCommand(ctx context.Context, name string) (map[string]any, error) {
	body, err := json.Marshal(map[string]any{
		"type":   name,
		"wakeUp": true,
	})
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/%s/commands", c.urls.CommandURL, c.creds.VIN)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, &cloud.TransportError{Op: "send command", Err: err}
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	c.log.Debugw("sending command", map[string]any{"command": name, "request_id": requestID})

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &cloud.TransportError{Op: "send command", Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &cloud.TransportError{Op: "send command", Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, &cloud.RejectedError{Command: name, Status: resp.StatusCode, Detail: strings.TrimSpace(string(data))}
	}
	if resp.StatusCode >= 500 {
		return nil, &cloud.TransportError{Op: "send command", Status: resp.StatusCode, Err: fmt.Errorf("server error")}
	}
	out := map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, &cloud.TransportError{Op: "send command", Status: resp.StatusCode, Err: err}
		}
	}
	return out, nil
}

// Close releases idle connections. The token is discarded.
func (c *Client) Close() error {
	c.token = nil
	c.http.CloseIdleConnections()
	return nil
}

// do executes a request expecting a JSON body decoded into out.
func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &cloud.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck
	c.log.Debugf("%s returned status %d", op, resp.StatusCode)
	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &cloud.TransportError{
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s", strings.TrimSpace(string(data))),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &cloud.TransportError{Op: op, Status: resp.StatusCode, Err: err}
	}
	return nil
}
