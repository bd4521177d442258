package webviewauth

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// defaultScopes are appended after any explicitly configured scopes unless
// NoDefaultScopes is set. The second entry is a single scope string the
// authority accepts as-is.
var defaultScopes = []string{"openid", "profile offline_access"}

// HTTPClient is the back-channel HTTP capability used for token requests.
// http.DefaultClient satisfies it; tests and callers with special transport
// needs can inject their own.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config is the validated, immutable configuration of a flow.
// Build one with a Builder; a Config is read-only afterwards and safe to
// share between a flow and the token bundles it produces.
type Config struct {
	tenant              string
	clientID            string
	redirectURI         string
	b2c                 bool
	loginPolicy         string
	registerPolicy      string
	passwordResetPolicy string
	scopes              []string
	initialPage         Page
	clearCacheOnStart   bool
	initialScript       string
	onNewTokens         NewTokensHandler
	onNavigationError   NavigationErrorHandler
	httpClient          HTTPClient
	logf                func(format string, args ...interface{})
}

func (c *Config) Tenant() string              { return c.tenant }
func (c *Config) ClientID() string            { return c.clientID }
func (c *Config) RedirectURI() string         { return c.redirectURI }
func (c *Config) IsB2C() bool                 { return c.b2c }
func (c *Config) LoginPolicy() string         { return c.loginPolicy }
func (c *Config) RegisterPolicy() string      { return c.registerPolicy }
func (c *Config) PasswordResetPolicy() string { return c.passwordResetPolicy }
func (c *Config) InitialPage() Page           { return c.initialPage }

// Scopes returns a copy of the effective scope list, in order: the
// explicitly configured scopes followed by the defaults unless suppressed.
// Duplicates are preserved.
func (c *Config) Scopes() []string {
	s := make([]string, len(c.scopes))
	copy(s, c.scopes)
	return s
}

// scopeParam is the space-joined scope value sent on token requests.
func (c *Config) scopeParam() string {
	return strings.Join(c.scopes, " ")
}

func (c *Config) log(format string, args ...interface{}) {
	if c.logf != nil {
		c.logf(format, args...)
	}
}

// OAuth2Config returns an equivalent golang.org/x/oauth2 client
// configuration pointing at the same tenant endpoints, for callers who want
// to run a standard flow alongside this package.
func (c *Config) OAuth2Config() oauth2.Config {
	return oauth2.Config{
		ClientID:    c.clientID,
		RedirectURL: c.redirectURI,
		Scopes:      c.Scopes(),
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.AuthorizeURL(c.loginPolicy),
			TokenURL: c.TokenURL(c.loginPolicy),
		},
	}
}

// Builder accumulates configuration and validates it on Build.
// The zero Builder is not ready to use; call NewBuilder, which applies the
// defaults (B2C mode on, initial page login).
type Builder struct {
	tenant              string
	clientID            string
	redirectURI         string
	b2c                 bool
	loginPolicy         string
	registerPolicy      string
	passwordResetPolicy string
	scopes              []string
	noDefaultScopes     bool
	initialPage         Page
	clearCacheOnStart   bool
	initialScript       string
	onNewTokens         NewTokensHandler
	onNavigationError   NavigationErrorHandler
	httpClient          HTTPClient
	logf                func(format string, args ...interface{})
}

// NewBuilder returns a Builder with the defaults applied.
func NewBuilder() *Builder {
	return &Builder{b2c: true}
}

// Tenant sets the directory tenant name, e.g. "contoso".
func (b *Builder) Tenant(tenant string) *Builder {
	b.tenant = tenant
	return b
}

// ClientID sets the application (client) id.
func (b *Builder) ClientID(clientID string) *Builder {
	b.clientID = clientID
	return b
}

// RedirectURI sets the URI the provider redirects back to after sign-in.
func (b *Builder) RedirectURI(redirectURI string) *Builder {
	b.redirectURI = redirectURI
	return b
}

// B2C selects between the B2C authority URL shape (the default) and the
// regular login.microsoftonline.com shape.
func (b *Builder) B2C(b2c bool) *Builder {
	b.b2c = b2c
	return b
}

// LoginPolicy sets the sign-in user flow. It is required even outside B2C
// mode because the token endpoint path carries it.
func (b *Builder) LoginPolicy(policy string) *Builder {
	b.loginPolicy = policy
	return b
}

// RegisterPolicy sets the optional sign-up user flow.
func (b *Builder) RegisterPolicy(policy string) *Builder {
	b.registerPolicy = policy
	return b
}

// PasswordResetPolicy sets the optional password reset user flow.
func (b *Builder) PasswordResetPolicy(policy string) *Builder {
	b.passwordResetPolicy = policy
	return b
}

// Scopes appends explicitly requested scopes. The default scopes are added
// after them on Build unless NoDefaultScopes is set.
func (b *Builder) Scopes(scopes ...string) *Builder {
	b.scopes = append(b.scopes, scopes...)
	return b
}

// NoDefaultScopes suppresses the default scopes.
func (b *Builder) NoDefaultScopes() *Builder {
	b.noDefaultScopes = true
	return b
}

// InitialPage selects which page the browser opens first.
func (b *Builder) InitialPage(page Page) *Builder {
	b.initialPage = page
	return b
}

// ClearCache makes Flow.Start clear the browser cache before navigating.
func (b *Builder) ClearCache(clear bool) *Builder {
	b.clearCacheOnStart = clear
	return b
}

// InitialScript is JavaScript run once in the browser on Flow.Start.
func (b *Builder) InitialScript(js string) *Builder {
	b.initialScript = js
	return b
}

// OnNewTokens sets the required sink for completed flows.
func (b *Builder) OnNewTokens(h NewTokensHandler) *Builder {
	b.onNewTokens = h
	return b
}

// OnNavigationError sets the optional sink for navigation handling errors.
// When unset, errors resolve to DecisionBlock.
func (b *Builder) OnNavigationError(h NavigationErrorHandler) *Builder {
	b.onNavigationError = h
	return b
}

// HTTPClient overrides the HTTP client used for token requests.
// Default to http.DefaultClient.
func (b *Builder) HTTPClient(client HTTPClient) *Builder {
	b.httpClient = client
	return b
}

// Logf sets the logger of the flow. Default to no logging.
func (b *Builder) Logf(logf func(format string, args ...interface{})) *Builder {
	b.logf = logf
	return b
}

// Build validates the accumulated fields and returns the immutable Config.
// The required fields are checked in a fixed order and the first missing
// one is named in the returned error.
func (b *Builder) Build() (*Config, error) {
	if strings.TrimSpace(b.clientID) == "" {
		return nil, fmt.Errorf("%w: client_id is required", ErrInvalidConfiguration)
	}
	if strings.TrimSpace(b.tenant) == "" {
		return nil, fmt.Errorf("%w: tenant is required", ErrInvalidConfiguration)
	}
	if strings.TrimSpace(b.loginPolicy) == "" {
		return nil, fmt.Errorf("%w: login_policy is required", ErrInvalidConfiguration)
	}
	if strings.TrimSpace(b.redirectURI) == "" {
		return nil, fmt.Errorf("%w: redirect_uri is required", ErrInvalidConfiguration)
	}
	if b.onNewTokens == nil {
		return nil, fmt.Errorf("%w: on_new_tokens is required", ErrInvalidConfiguration)
	}

	scopes := make([]string, 0, len(b.scopes)+len(defaultScopes))
	scopes = append(scopes, b.scopes...)
	if !b.noDefaultScopes {
		scopes = append(scopes, defaultScopes...)
	}

	client := b.httpClient
	if client == nil {
		client = http.DefaultClient
	}

	return &Config{
		tenant:              b.tenant,
		clientID:            b.clientID,
		redirectURI:         b.redirectURI,
		b2c:                 b.b2c,
		loginPolicy:         b.loginPolicy,
		registerPolicy:      b.registerPolicy,
		passwordResetPolicy: b.passwordResetPolicy,
		scopes:              scopes,
		initialPage:         b.initialPage,
		clearCacheOnStart:   b.clearCacheOnStart,
		initialScript:       b.initialScript,
		onNewTokens:         b.onNewTokens,
		onNavigationError:   b.onNavigationError,
		httpClient:          client,
		logf:                b.logf,
	}, nil
}
