// Package gateway is the single chokepoint between the synchronizers and the
// HobbySprout concept API. Every action is a POST to {base}/{concept}/{action}
// with a JSON object body; responses are either the action's result object or
// an {error: string} marker.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is generous because step generation can take the server a
// long while.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies the bearer credential for authenticated actions. An
// empty token means no session is held.
type TokenSource interface {
	SessionToken() string
}

// publicActions never carry a credential.
var publicActions = map[string]bool{
	"PasswordAuthentication/register":     true,
	"PasswordAuthentication/authenticate": true,
	"PasswordAuthentication/logout":       true,
}

type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource

	onAuthRejected func()
}

func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: DefaultTimeout},
	}
}

func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.http.Timeout = d
	}
}

// SetTokenSource wires the session manager in as the credential provider.
func (c *Client) SetTokenSource(ts TokenSource) { c.tokens = ts }

// OnAuthRejected registers the callback run when the server rejects the
// session credential with HTTP 401. Clearing storage and navigating to the
// login surface belong to the registrant, not the gateway.
func (c *Client) OnAuthRejected(fn func()) { c.onAuthRejected = fn }

// Call performs one concept action. A nil payload sends an empty object. The
// returned error is always a *CallError; the raw body is returned on success
// for the caller's action-specific decoder.
func (c *Client) Call(ctx context.Context, concept, action string, payload any) (json.RawMessage, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewDecodeError(concept, action, fmt.Sprintf("encode payload: %v", err))
	}
	endpoint := c.base + "/" + url.PathEscape(concept) + "/" + url.PathEscape(action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, NewTransportError(concept, action, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	if !publicActions[concept+"/"+action] && c.tokens != nil {
		if tok := c.tokens.SessionToken(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, NewTimeoutError(concept, action)
		}
		return nil, NewTransportError(concept, action, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(concept, action, err.Error())
	}
	if resp.StatusCode == http.StatusUnauthorized {
		if c.onAuthRejected != nil {
			c.onAuthRejected()
		}
		return nil, NewUnauthorizedError(concept, action, errorMessage(raw, "unauthorized"))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewTransportError(concept, action, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}
	if msg, ok := domainError(raw); ok {
		return nil, NewDomainError(concept, action, msg)
	}
	return json.RawMessage(raw), nil
}

// domainError reports whether a 2xx body is the {error: string} marker.
func domainError(raw []byte) (string, bool) {
	var probe struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.Error == nil {
		return "", false
	}
	return *probe.Error, true
}

func errorMessage(raw []byte, fallback string) string {
	if msg, ok := domainError(raw); ok && msg != "" {
		return msg
	}
	return fallback
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
