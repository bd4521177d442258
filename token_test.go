package webviewauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenBundle_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		var refreshCount int
		sv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			refreshCount++
			if w := "/contoso.onmicrosoft.com/B2C_1_signin/oauth2/v2.0/token"; r.URL.Path != w {
				t.Errorf("path wants %s but was %s", w, r.URL.Path)
			}
			q := r.URL.Query()
			if w := "refresh_token"; q.Get("grant_type") != w {
				t.Errorf("grant_type wants %s but was %s", w, q.Get("grant_type"))
			}
			if w := "REFRESH1"; q.Get("refresh_token") != w {
				t.Errorf("refresh_token wants %s but was %s", w, q.Get("refresh_token"))
			}
			if w := "abc"; q.Get("client_id") != w {
				t.Errorf("client_id wants %s but was %s", w, q.Get("client_id"))
			}
			fmt.Fprint(w, `{"access_token":"ACCESS2","refresh_token":"REFRESH2","expires_in":3600}`)
		}))
		defer sv.Close()

		seed := refreshSeed{
			authority:   sv.URL + "/contoso.onmicrosoft.com",
			policy:      "B2C_1_signin",
			clientID:    "abc",
			redirectURI: "myapp://auth",
			scopes:      []string{"openid", "profile offline_access"},
			client:      http.DefaultClient,
		}
		bundle := newTokenBundle(tokenResponse{accessToken: "ACCESS1", refreshToken: "REFRESH1"}, seed)

		got, err := bundle.Refresh(ctx)
		if err != nil {
			t.Fatalf("Refresh error: %s", err)
		}
		if refreshCount != 1 {
			t.Errorf("refresh count wants 1 but was %d", refreshCount)
		}
		if got.AccessToken() != "ACCESS2" {
			t.Errorf("AccessToken wants ACCESS2 but was %s", got.AccessToken())
		}
		if got.RefreshToken() != "REFRESH2" {
			t.Errorf("RefreshToken wants REFRESH2 but was %s", got.RefreshToken())
		}
		// the receiver is not mutated
		if bundle.AccessToken() != "ACCESS1" {
			t.Errorf("AccessToken wants ACCESS1 but was %s", bundle.AccessToken())
		}
		// the new bundle retains the seed, so the chain can go on
		if _, err := got.Refresh(ctx); err != nil {
			t.Errorf("second Refresh error: %s", err)
		}
		if refreshCount != 2 {
			t.Errorf("refresh count wants 2 but was %d", refreshCount)
		}
	})

	t.Run("NoRefreshToken", func(t *testing.T) {
		seed := refreshSeed{
			authority: "https://contoso.b2clogin.com/contoso.onmicrosoft.com",
			policy:    "B2C_1_signin",
			client:    &failingClient{t: t},
		}
		bundle := newTokenBundle(tokenResponse{accessToken: "ACCESS"}, seed)
		_, err := bundle.Refresh(ctx)
		if !errors.Is(err, ErrNoRefreshToken) {
			t.Errorf("error wants ErrNoRefreshToken but was %s", err)
		}
	})
}

func TestTokenBundle_ExpiresAt(t *testing.T) {
	t.Run("Set", func(t *testing.T) {
		expiry := time.Now().Add(time.Hour)
		bundle := newTokenBundle(tokenResponse{accessToken: "A", expiresAt: expiry}, refreshSeed{})
		got, ok := bundle.ExpiresAt()
		if !ok {
			t.Fatalf("ExpiresAt wants ok but was not")
		}
		if !got.Equal(expiry) {
			t.Errorf("ExpiresAt wants %s but was %s", expiry, got)
		}
		if bundle.Expired() {
			t.Errorf("Expired wants false but was true")
		}
		if bundle.ExpiresIn() <= 0 {
			t.Errorf("ExpiresIn wants a positive duration but was %s", bundle.ExpiresIn())
		}
	})

	t.Run("Unset", func(t *testing.T) {
		bundle := newTokenBundle(tokenResponse{accessToken: "A"}, refreshSeed{})
		if _, ok := bundle.ExpiresAt(); ok {
			t.Errorf("ExpiresAt wants not ok but was ok")
		}
		if bundle.Expired() {
			t.Errorf("Expired wants false but was true")
		}
	})

	t.Run("Past", func(t *testing.T) {
		bundle := newTokenBundle(tokenResponse{accessToken: "A", expiresAt: time.Now().Add(-time.Hour)}, refreshSeed{})
		if !bundle.Expired() {
			t.Errorf("Expired wants true but was false")
		}
		if bundle.ExpiresIn() != 0 {
			t.Errorf("ExpiresIn wants 0 but was %s", bundle.ExpiresIn())
		}
	})
}

func TestTokenBundle_OAuth2Token(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	bundle := newTokenBundle(tokenResponse{
		accessToken:  "ACCESS",
		refreshToken: "REFRESH",
		expiresAt:    expiry,
	}, refreshSeed{})
	got := bundle.OAuth2Token()
	if got.AccessToken != "ACCESS" {
		t.Errorf("AccessToken wants ACCESS but was %s", got.AccessToken)
	}
	if got.RefreshToken != "REFRESH" {
		t.Errorf("RefreshToken wants REFRESH but was %s", got.RefreshToken)
	}
	if got.TokenType != "Bearer" {
		t.Errorf("TokenType wants Bearer but was %s", got.TokenType)
	}
	if !got.Expiry.Equal(expiry) {
		t.Errorf("Expiry wants %s but was %s", expiry, got.Expiry)
	}
}
