package webviewauth

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mizuki/webviewauth/internal"
)

// The authorize request always carries this fixed nonce. The widget does not
// validate id_token nonces, so a constant value is what the authority sees.
const defaultNonce = "defaultNonce"

// AuthorityURL returns the base authority URL of the tenant:
// https://{tenant}.b2clogin.com/{tenant}.onmicrosoft.com in B2C mode,
// https://login.microsoftonline.com/{tenant} otherwise.
func (c *Config) AuthorityURL() string {
	if c.b2c {
		return fmt.Sprintf("https://%s.b2clogin.com/%s.onmicrosoft.com", c.tenant, c.tenant)
	}
	return fmt.Sprintf("https://login.microsoftonline.com/%s", c.tenant)
}

// AuthorizeURL returns the authorization endpoint URL for the given policy.
// The query parameter order is fixed; the policy parameter is only emitted
// in B2C mode.
func (c *Config) AuthorizeURL(policy string) string {
	var params []internal.Param
	if c.b2c {
		params = append(params, internal.Param{Key: "p", Value: policy})
	}
	params = append(params,
		internal.Param{Key: "client_id", Value: c.clientID},
		internal.Param{Key: "nonce", Value: defaultNonce},
		internal.Param{Key: "redirect_uri", Value: c.redirectURI},
		internal.Param{Key: "scope", Value: "openid"},
		internal.Param{Key: "response_type", Value: "code"},
		internal.Param{Key: "prompt", Value: "login"},
	)
	return c.AuthorityURL() + "/oauth2/v2.0/authorize?" + internal.EncodeQuery(params)
}

// LogoutURL returns the logout endpoint URL of the tenant.
func (c *Config) LogoutURL() string {
	q := internal.EncodeQuery([]internal.Param{
		{Key: "post_logout_redirect_uri", Value: c.redirectURI},
	})
	return c.AuthorityURL() + "/oauth2/v2.0/logout?" + q
}

// TokenURL returns the token endpoint URL for the given policy.
// Request parameters travel in the query string of the POST, not here.
func (c *Config) TokenURL(policy string) string {
	return c.AuthorityURL() + "/" + policy + "/oauth2/v2.0/token"
}

// URIsMatch reports whether two URLs identify the same endpoint.
// Only host and path are compared, case-insensitively and trimmed; scheme
// and query string are ignored because the redirect the browser lands on
// carries extra query parameters that must not affect endpoint identity.
// A trailing slash does not affect endpoint identity either.
// Malformed input on either side yields false.
func URIsMatch(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(ua.Host), strings.TrimSpace(ub.Host)) &&
		strings.EqualFold(normalizePath(ua.Path), normalizePath(ub.Path))
}

func normalizePath(p string) string {
	return strings.TrimSuffix(strings.TrimSpace(p), "/")
}
