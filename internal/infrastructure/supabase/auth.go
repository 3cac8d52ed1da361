package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/asanchezf/recetario-api/internal/domain/entity"
)

var ErrInvalidToken = errors.New("invalid access token")

// AuthClient talks to the provider's GoTrue API. When the project JWT secret
// is configured, access tokens are verified locally instead of a network
// round trip per request.
type AuthClient struct {
	baseURL   string
	apiKey    string
	jwtSecret []byte
	http      *http.Client
}

func NewAuthClient(baseURL, apiKey, jwtSecret string) *AuthClient {
	return &AuthClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		jwtSecret: func() []byte {
			if jwtSecret == "" {
				return nil
			}
			return []byte(jwtSecret)
		}(),
	}
}

// Session is the token bundle GoTrue issues on login.
type Session struct {
	AccessToken  string  `json:"access_token"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    int     `json:"expires_in"`
	RefreshToken string  `json:"refresh_token"`
	User         apiUser `json:"user"`
}

type apiUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (u apiUser) toEntity() *entity.User {
	return &entity.User{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

// SignUp registers a new identity with the provider.
func (a *AuthClient) SignUp(ctx context.Context, email, password string) (*entity.User, error) {
	var out apiUser
	err := a.call(ctx, http.MethodPost, "/auth/v1/signup", "", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.toEntity(), nil
}

// SignInWithPassword exchanges credentials for a session.
func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var out Session
	err := a.call(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUser resolves the identity behind an access token via the provider.
func (a *AuthClient) GetUser(ctx context.Context, token string) (*entity.User, error) {
	var out apiUser
	if err := a.call(ctx, http.MethodGet, "/auth/v1/user", token, nil, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, ErrInvalidToken
	}
	return out.toEntity(), nil
}

// VerifyToken resolves a bearer token to the caller's user id. Local HS256
// verification is used when the secret is known, the provider otherwise.
func (a *AuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	if len(a.jwtSecret) > 0 {
		return a.verifyLocal(token)
	}
	u, err := a.GetUser(ctx, token)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

func (a *AuthClient) verifyLocal(token string) (string, error) {
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return a.jwtSecret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (a *AuthClient) call(ctx context.Context, method, path, bearer string, body, out any) error {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", a.apiKey)
	if bearer == "" {
		bearer = a.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return ErrInvalidToken
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &APIError{Status: res.StatusCode, Message: readErrorMessage(res.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
