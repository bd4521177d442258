package webviewauth

import (
	"fmt"
	"testing"
)

func TestConfig_AuthorizeURL(t *testing.T) {
	t.Run("B2C", func(t *testing.T) {
		c := newTestConfig(t, newTestBuilder())
		got := c.AuthorizeURL("B2C_1_signin")
		want := "https://contoso.b2clogin.com/contoso.onmicrosoft.com/oauth2/v2.0/authorize?p=B2C_1_signin&client_id=abc&nonce=defaultNonce&redirect_uri=myapp%3A%2F%2Fauth&scope=openid&response_type=code&prompt=login"
		if got != want {
			t.Errorf("AuthorizeURL wants %s but was %s", want, got)
		}
	})

	t.Run("NonB2C", func(t *testing.T) {
		c := newTestConfig(t, newTestBuilder().B2C(false))
		got := c.AuthorizeURL("B2C_1_signin")
		want := "https://login.microsoftonline.com/contoso/oauth2/v2.0/authorize?client_id=abc&nonce=defaultNonce&redirect_uri=myapp%3A%2F%2Fauth&scope=openid&response_type=code&prompt=login"
		if got != want {
			t.Errorf("AuthorizeURL wants %s but was %s", want, got)
		}
	})

	t.Run("Reflexivity", func(t *testing.T) {
		c := newTestConfig(t, newTestBuilder())
		u := c.AuthorizeURL("B2C_1_signin")
		if !URIsMatch(u, u) {
			t.Errorf("URIsMatch(%s, %s) wants true but was false", u, u)
		}
	})
}

func TestConfig_LogoutURL(t *testing.T) {
	c := newTestConfig(t, newTestBuilder())
	got := c.LogoutURL()
	want := "https://contoso.b2clogin.com/contoso.onmicrosoft.com/oauth2/v2.0/logout?post_logout_redirect_uri=myapp%3A%2F%2Fauth"
	if got != want {
		t.Errorf("LogoutURL wants %s but was %s", want, got)
	}
}

func TestConfig_TokenURL(t *testing.T) {
	t.Run("B2C", func(t *testing.T) {
		c := newTestConfig(t, newTestBuilder())
		got := c.TokenURL("B2C_1_signin")
		want := "https://contoso.b2clogin.com/contoso.onmicrosoft.com/B2C_1_signin/oauth2/v2.0/token"
		if got != want {
			t.Errorf("TokenURL wants %s but was %s", want, got)
		}
	})

	t.Run("NonB2C", func(t *testing.T) {
		c := newTestConfig(t, newTestBuilder().B2C(false))
		got := c.TokenURL("B2C_1_signin")
		want := "https://login.microsoftonline.com/contoso/B2C_1_signin/oauth2/v2.0/token"
		if got != want {
			t.Errorf("TokenURL wants %s but was %s", want, got)
		}
	})
}

func TestURIsMatch(t *testing.T) {
	for _, testcase := range []struct {
		a    string
		b    string
		want bool
	}{
		{"https://x/y?foo=1", "http://x/y?bar=2", true},
		{"https://x/y", "https://x/z", false},
		{"https://X/Y", "https://x/y", true},
		{"https://x/y", "https://other/y", false},
		{"myapp://auth?code=XYZ", "myapp://auth", true},
		{"http://127.0.0.1:8000/?code=XYZ", "http://127.0.0.1:8000", true},
		{"://bad", "https://x/y", false},
		{"https://x/y", "://bad", false},
		{"", "", true},
	} {
		t.Run(fmt.Sprintf("%s_%s", testcase.a, testcase.b), func(t *testing.T) {
			if got := URIsMatch(testcase.a, testcase.b); got != testcase.want {
				t.Errorf("URIsMatch(%q, %q) wants %v but was %v", testcase.a, testcase.b, testcase.want, got)
			}
			// the matcher is symmetric
			if got := URIsMatch(testcase.b, testcase.a); got != testcase.want {
				t.Errorf("URIsMatch(%q, %q) wants %v but was %v", testcase.b, testcase.a, testcase.want, got)
			}
		})
	}
}
