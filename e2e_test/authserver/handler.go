// Package authserver provides a stub of the Azure AD B2C authorize and
// token endpoints of a single tenant.
// See https://tools.ietf.org/html/rfc6749#section-4.1
package authserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

// AuthorizationRequest represents an authorization request described as:
// https://tools.ietf.org/html/rfc6749#section-4.1.1
type AuthorizationRequest struct {
	Policy      string
	ClientID    string
	Nonce       string
	RedirectURI string
	Scope       string
	Raw         url.Values
}

// TokenRequest represents a token request. The stub reads the parameters
// from the query string, the form the widget sends them in.
type TokenRequest struct {
	GrantType    string
	Code         string
	RefreshToken string
	ClientID     string
	RedirectURI  string
	Scope        string
	Policy       string
	Raw          url.Values
}

// Handler handles HTTP requests on the B2C endpoint paths of Tenant.
type Handler struct {
	T      *testing.T
	Tenant string

	// This should return a URL with query parameters of authorization response.
	// See https://tools.ietf.org/html/rfc6749#section-4.1.2
	NewAuthorizationResponse func(r AuthorizationRequest) string

	// This should return a JSON body of access token response or error response.
	// See https://tools.ietf.org/html/rfc6749#section-5.1
	// and https://tools.ietf.org/html/rfc6749#section-5.2
	NewTokenResponse func(r TokenRequest) (int, string)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.T.Logf("authServer: %s %s", r.Method, r.RequestURI)
	if err := h.serveHTTP(w, r); err != nil {
		h.T.Errorf("authServer error: %s", err)
		http.Error(w, err.Error(), 500)
	}
}

func (h *Handler) serveHTTP(w http.ResponseWriter, r *http.Request) error {
	base := "/" + h.Tenant + ".onmicrosoft.com"
	q := r.URL.Query()
	switch {
	case r.Method == "GET" && r.URL.Path == base+"/oauth2/v2.0/authorize":
		clientID, redirectURI, nonce := q.Get("client_id"), q.Get("redirect_uri"), q.Get("nonce")
		if clientID == "" {
			return errors.New("client_id is missing")
		}
		if redirectURI == "" {
			return errors.New("redirect_uri is missing")
		}
		if nonce == "" {
			return errors.New("nonce is missing")
		}
		to := h.NewAuthorizationResponse(AuthorizationRequest{
			Policy:      q.Get("p"),
			ClientID:    clientID,
			Nonce:       nonce,
			RedirectURI: redirectURI,
			Scope:       q.Get("scope"),
			Raw:         q,
		})
		http.Redirect(w, r, to, 302)

	case r.Method == "POST" && strings.HasPrefix(r.URL.Path, base+"/") && strings.HasSuffix(r.URL.Path, "/oauth2/v2.0/token"):
		policy := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, base+"/"), "/oauth2/v2.0/token")
		if q.Get("grant_type") == "" {
			return errors.New("grant_type is missing")
		}
		status, b := h.NewTokenResponse(TokenRequest{
			GrantType:    q.Get("grant_type"),
			Code:         q.Get("code"),
			RefreshToken: q.Get("refresh_token"),
			ClientID:     q.Get("client_id"),
			RedirectURI:  q.Get("redirect_uri"),
			Scope:        q.Get("scope"),
			Policy:       policy,
			Raw:          q,
		})
		w.Header().Add("Content-Type", "application/json")
		w.WriteHeader(status)
		if _, err := w.Write([]byte(b)); err != nil {
			return fmt.Errorf("error while writing response body: %w", err)
		}

	default:
		http.NotFound(w, r)
	}
	return nil
}
