package webviewauth

import (
	"context"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/xerrors"
)

// refreshSeed is the configuration snapshot a bundle retains so it can
// refresh itself after the originating Config is gone. It is a copy, never
// a live reference.
type refreshSeed struct {
	authority   string
	policy      string
	clientID    string
	redirectURI string
	scopes      []string
	client      HTTPClient
}

func (s refreshSeed) tokenURL() string {
	return s.authority + "/" + s.policy + "/oauth2/v2.0/token"
}

func (s refreshSeed) clone() refreshSeed {
	c := s
	c.scopes = append([]string(nil), s.scopes...)
	return c
}

// TokenBundle is the immutable result of a successful token exchange.
// A bundle is never mutated; Refresh produces a brand-new one.
type TokenBundle struct {
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	seed         refreshSeed
}

func newTokenBundle(tr tokenResponse, seed refreshSeed) *TokenBundle {
	return &TokenBundle{
		accessToken:  tr.accessToken,
		refreshToken: tr.refreshToken,
		expiresAt:    tr.expiresAt,
		seed:         seed.clone(),
	}
}

// AccessToken returns the access token.
func (t *TokenBundle) AccessToken() string {
	return t.accessToken
}

// RefreshToken returns the refresh token, or "" if the endpoint did not
// return one.
func (t *TokenBundle) RefreshToken() string {
	return t.refreshToken
}

// ExpiresAt returns the absolute expiry and whether the endpoint reported
// one.
func (t *TokenBundle) ExpiresAt() (time.Time, bool) {
	return t.expiresAt, !t.expiresAt.IsZero()
}

// Expired returns true if the access token has expired. A bundle without a
// reported expiry never expires.
func (t *TokenBundle) Expired() bool {
	if t.expiresAt.IsZero() {
		return false
	}
	return time.Now().After(t.expiresAt)
}

// ExpiresIn returns the duration until the access token expires.
// Returns 0 if it is already expired or has no expiry.
func (t *TokenBundle) ExpiresIn() time.Duration {
	if t.expiresAt.IsZero() {
		return 0
	}
	d := time.Until(t.expiresAt)
	if d < 0 {
		return 0
	}
	return d
}

// OAuth2Token converts the bundle into a golang.org/x/oauth2 token for
// interop with clients built on that package.
func (t *TokenBundle) OAuth2Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.accessToken,
		TokenType:    "Bearer",
		RefreshToken: t.refreshToken,
		Expiry:       t.expiresAt,
	}
}

// Refresh exchanges the refresh token for a new bundle carrying the same
// retained authority data, so the chain can be refreshed again. The receiver
// is not mutated. Fails with ErrNoRefreshToken, without a network call, when
// the bundle has no refresh token.
func (t *TokenBundle) Refresh(ctx context.Context) (*TokenBundle, error) {
	if t.refreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	params := url.Values{}
	params.Set("grant_type", "refresh_token")
	params.Set("refresh_token", t.refreshToken)
	params.Set("client_id", t.seed.clientID)
	params.Set("redirect_uri", t.seed.redirectURI)
	params.Set("scope", strings.Join(t.seed.scopes, " "))
	tr, err := exchangeToken(ctx, t.seed.client, t.seed.tokenURL(), params)
	if err != nil {
		return nil, xerrors.Errorf("could not refresh the token: %w", err)
	}
	return newTokenBundle(tr, t.seed), nil
}
