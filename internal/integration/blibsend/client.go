package blibsend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Error is the sentinel for any gateway failure.
var Error = errors.New("blibsend")

// Config carries the gateway credentials.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	SessionToken string
}

// Client talks to the Blibsend WhatsApp gateway. Bearer tokens from
// /auth/signin are cached until shortly before expiry and refreshed
// once on a 401.
type Client struct {
	http   *resty.Client
	config Config

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	now func() time.Time
}

// NewClient constructs a Client.
func NewClient(config Config) *Client {
	http := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(25 * time.Second).
		SetHeader("User-Agent", "wimotos/1.0")
	return &Client{http: http, config: config, now: time.Now}
}

type signinResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
	// the gateway docs carry this typo and some deployments still use it
	ExiresIn int `json:"exires_in"`
}

// SendResult is the gateway acknowledgement for a sent message.
type SendResult struct {
	Message  string          `json:"message"`
	Metadata json.RawMessage `json:"metadata"`
}

type sendRequest struct {
	To   []string `json:"to"`
	Body string   `json:"body"`
}

// SendText delivers a WhatsApp text message to the given numbers.
func (c *Client) SendText(ctx context.Context, to []string, body string) (*SendResult, error) {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	result, status, err := c.post(ctx, token, to, body)
	if err != nil {
		return nil, err
	}
	if status == 401 {
		// token expired or revoked server-side, refresh once and retry
		token, err = c.signin(ctx)
		if err != nil {
			return nil, err
		}
		result, status, err = c.post(ctx, token, to, body)
		if err != nil {
			return nil, err
		}
	}
	if status != 200 && status != 201 {
		return nil, fmt.Errorf("%w: send failed with status %d", Error, status)
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, token string, to []string, body string) (*SendResult, int, error) {
	var result SendResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("session_token", c.config.SessionToken).
		SetBody(sendRequest{To: to, Body: body}).
		SetResult(&result).
		ForceContentType("application/json").
		Post("/messages/send")
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", Error, err)
	}
	return &result, resp.StatusCode(), nil
}

func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	valid := c.token != "" && c.expiresAt.After(c.now())
	token := c.token
	c.mu.Unlock()

	if valid {
		return token, nil
	}
	return c.signin(ctx)
}

func (c *Client) signin(ctx context.Context) (string, error) {
	if c.config.ClientID == "" || c.config.ClientSecret == "" {
		return "", fmt.Errorf("%w: missing client credentials", Error)
	}

	// the gateway answers JSON but not always with the right Content-Type
	var body signinResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.config.ClientID, c.config.ClientSecret).
		SetResult(&body).
		ForceContentType("application/json").
		Post("/auth/signin")
	if err != nil {
		return "", fmt.Errorf("%w: signin: %w", Error, err)
	}
	if resp.StatusCode() >= 300 {
		return "", fmt.Errorf("%w: signin failed with status %d", Error, resp.StatusCode())
	}
	if body.Token == "" {
		return "", fmt.Errorf("%w: signin response has no token", Error)
	}

	expiresIn := body.ExpiresIn
	if expiresIn == 0 {
		expiresIn = body.ExiresIn
	}
	if expiresIn <= 0 {
		expiresIn = 86400
	}
	if expiresIn > 120 {
		expiresIn -= 60
	}

	c.mu.Lock()
	c.token = body.Token
	c.expiresAt = c.now().Add(time.Duration(expiresIn) * time.Second)
	c.mu.Unlock()
	return body.Token, nil
}
