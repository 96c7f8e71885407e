package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Identity is the verified external identity behind a sign-in token.
type Identity struct {
	Email string
	Name  string
}

// Verifier exchanges an opaque identity-provider token for a verified
// identity. Implementations are external collaborators; a failure maps to a
// 400-class response.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// GoogleVerifier validates Google ID tokens against the tokeninfo endpoint.
type GoogleVerifier struct {
	ClientID string
	Client   *http.Client
	Endpoint string
}

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// NewGoogleVerifier builds the production verifier for the configured OAuth
// client id.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		ClientID: clientID,
		Client:   &http.Client{Timeout: 10 * time.Second},
		Endpoint: googleTokenInfoURL,
	}
}

// Verify checks the ID token's signature, audience and expiry via Google and
// returns the embedded email and display name.
func (g *GoogleVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	endpoint := g.Endpoint
	if endpoint == "" {
		endpoint = googleTokenInfoURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?id_token="+url.QueryEscape(token), nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tokeninfo returned %s", ErrExternalAuth, resp.Status)
	}

	var payload struct {
		Aud           string `json:"aud"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalAuth, err)
	}

	if g.ClientID != "" && payload.Aud != g.ClientID {
		return nil, fmt.Errorf("%w: audience mismatch", ErrExternalAuth)
	}
	if payload.Email == "" {
		return nil, fmt.Errorf("%w: token carries no email", ErrExternalAuth)
	}

	return &Identity{Email: payload.Email, Name: payload.Name}, nil
}
