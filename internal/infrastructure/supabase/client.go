// Package supabase bridges the domain repository to a managed
// Supabase project: PostgREST for rows, GoTrue for identities.
package supabase

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
)

// Client is a thin PostgREST client bound to one API key.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Clients holds the two-credential strategy: an optional elevated
// (service-role) client alongside the caller-scoped (anon) one. Row-level
// authorization is intentionally bypassed for writes because ownership is
// enforced in the use-case layer.
type Clients struct {
	Standard *Client
	Admin    *Client
}

// NewClients builds the pair from raw keys; an empty key leaves that slot nil.
func NewClients(baseURL, anonKey, serviceRoleKey string) *Clients {
	cs := &Clients{}
	if anonKey != "" {
		cs.Standard = NewClient(baseURL, anonKey)
	}
	if serviceRoleKey != "" {
		cs.Admin = NewClient(baseURL, serviceRoleKey)
	}
	return cs
}

// Reader returns the client used for reads: the caller-scoped one when
// present, otherwise the elevated one.
func (cs *Clients) Reader() *Client {
	if cs.Standard != nil {
		return cs.Standard
	}
	return cs.Admin
}

// Writer returns the client used for all mutating calls: elevated if present,
// caller-scoped otherwise.
func (cs *Clients) Writer() *Client {
	if cs.Admin != nil {
		return cs.Admin
	}
	return cs.Standard
}

// Configured reports whether at least one credential is usable.
func (cs *Clients) Configured() bool {
	return cs != nil && (cs.Standard != nil || cs.Admin != nil)
}

// APIError is a non-2xx PostgREST response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("postgrest: status %d: %s", e.Status, e.Message)
}

// rest performs one PostgREST call against /rest/v1/<table>. When out is
// non-nil the response body is decoded into it. Mutations ask for the
// affected rows back via Prefer: return=representation.
func (c *Client) rest(ctx context.Context, method, table string, query url.Values, body, out any) error {
	endpoint := c.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &APIError{Status: res.StatusCode, Message: readErrorMessage(res.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return "no response body"
	}
	var parsed struct {
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Msg != "" {
			return parsed.Msg
		}
	}
	return string(raw)
}
