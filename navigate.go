package webviewauth

import (
	"context"
	"net/url"

	"golang.org/x/xerrors"
)

// Target classifies a navigated URL against the recognized endpoints.
type Target int

const (
	// TargetOther is anything not recognized, e.g. asset loads within the
	// provider's pages.
	TargetOther Target = iota

	// TargetAuthorize is the sign-in authorize endpoint.
	TargetAuthorize

	// TargetRegister is the sign-up authorize endpoint.
	TargetRegister

	// TargetPasswordReset is the password reset authorize endpoint.
	TargetPasswordReset

	// TargetRedirect is the configured redirect URI.
	TargetRedirect
)

func (t Target) String() string {
	switch t {
	case TargetAuthorize:
		return "authorize"
	case TargetRegister:
		return "register"
	case TargetPasswordReset:
		return "password_reset"
	case TargetRedirect:
		return "redirect"
	default:
		return "other"
	}
}

// Flow is the navigation interception state machine of the authorization
// code flow. It is stateless across navigation events: each event is
// classified independently against the Config the flow closes over, so a
// single Flow handles any number of events and is safe for reuse.
type Flow struct {
	config *Config
}

// NewFlow returns a Flow over the given configuration.
func NewFlow(c *Config) *Flow {
	return &Flow{config: c}
}

// Config returns the configuration the flow was built with.
func (f *Flow) Config() *Config {
	return f.config
}

// InitialURL returns the authorize URL of the configured initial page.
func (f *Flow) InitialURL() string {
	switch f.config.initialPage {
	case PageRegister:
		return f.config.AuthorizeURL(f.config.registerPolicy)
	case PagePasswordReset:
		return f.config.AuthorizeURL(f.config.passwordResetPolicy)
	default:
		return f.config.AuthorizeURL(f.config.loginPolicy)
	}
}

// Start performs the one-time startup actions on the browser control: cache
// clearing and script injection when configured, then navigation to the
// initial page.
func (f *Flow) Start(b BrowserControl) error {
	if f.config.clearCacheOnStart {
		if err := b.ClearCache(); err != nil {
			return xerrors.Errorf("could not clear the browser cache: %w", err)
		}
	}
	if f.config.initialScript != "" {
		if err := b.RunScript(f.config.initialScript); err != nil {
			return xerrors.Errorf("could not run the initial script: %w", err)
		}
	}
	if err := b.Navigate(f.InitialURL()); err != nil {
		return xerrors.Errorf("could not navigate to the initial page: %w", err)
	}
	return nil
}

// Classify tests rawURL against the recognized endpoints in a fixed order:
// sign-in, sign-up, password reset, then the redirect URI. The first match
// wins. The order matters because the redirect URI can coincide with an
// authorize endpoint on some tenants.
func (f *Flow) Classify(rawURL string) Target {
	c := f.config
	if URIsMatch(rawURL, c.AuthorizeURL(c.loginPolicy)) {
		return TargetAuthorize
	}
	if c.registerPolicy != "" && URIsMatch(rawURL, c.AuthorizeURL(c.registerPolicy)) {
		return TargetRegister
	}
	if c.passwordResetPolicy != "" && URIsMatch(rawURL, c.AuthorizeURL(c.passwordResetPolicy)) {
		return TargetPasswordReset
	}
	if URIsMatch(rawURL, c.redirectURI) {
		return TargetRedirect
	}
	return TargetOther
}

// HandleNavigation classifies a single navigation event and returns the
// decision for it. Provider-hosted pages are allowed through; reaching the
// redirect URI triggers the code exchange and the configured callbacks.
// Errors and panics raised anywhere inside the handler, including inside
// caller callbacks, are routed through the navigation-error callback and
// never escape to the browser control.
func (f *Flow) HandleNavigation(ctx context.Context, ev NavigationEvent) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			d = f.dispatchError(ctx, xerrors.Errorf("panic while handling a navigation event: %v", r), ev)
		}
	}()
	f.config.log("navigation to %s", ev.URL)
	switch f.Classify(ev.URL) {
	case TargetAuthorize, TargetRegister, TargetPasswordReset:
		return DecisionAllow
	case TargetRedirect:
		return f.handleRedirect(ctx, ev)
	default:
		return DecisionAllow
	}
}

func (f *Flow) handleRedirect(ctx context.Context, ev NavigationEvent) Decision {
	if f.config.initialPage != PageLogin {
		// The register and password reset flows end on the redirect URI
		// without an authorization code.
		return f.dispatchTokens(ctx, nil, ev)
	}
	u, err := url.Parse(ev.URL)
	if err != nil {
		return f.dispatchError(ctx, xerrors.Errorf("could not parse the navigated URL: %w", err), ev)
	}
	code := u.Query().Get("code")
	if code == "" {
		// Not every navigation to the redirect URI completes the flow.
		return DecisionAllow
	}
	f.config.log("exchanging the authorization code at %s", f.config.TokenURL(f.config.loginPolicy))
	tokens, err := f.exchangeCode(ctx, code)
	if err != nil {
		return f.dispatchError(ctx, err, ev)
	}
	return f.dispatchTokens(ctx, tokens, ev)
}

func (f *Flow) exchangeCode(ctx context.Context, code string) (*TokenBundle, error) {
	c := f.config
	params := url.Values{}
	params.Set("grant_type", "authorization_code")
	params.Set("code", code)
	params.Set("client_id", c.clientID)
	params.Set("redirect_uri", c.redirectURI)
	params.Set("scope", c.scopeParam())
	tr, err := exchangeToken(ctx, c.httpClient, c.TokenURL(c.loginPolicy), params)
	if err != nil {
		return nil, err
	}
	seed := refreshSeed{
		authority:   c.AuthorityURL(),
		policy:      c.loginPolicy,
		clientID:    c.clientID,
		redirectURI: c.redirectURI,
		scopes:      c.Scopes(),
		client:      c.httpClient,
	}
	return newTokenBundle(tr, seed), nil
}

func (f *Flow) dispatchTokens(ctx context.Context, tokens *TokenBundle, ev NavigationEvent) Decision {
	e := NewTokensEvent{
		InitialPage: f.config.initialPage,
		Tokens:      tokens,
		Navigation:  ev,
	}
	if d := f.config.onNewTokens(ctx, e); d != DecisionDefault {
		return d
	}
	return DecisionAllow
}

func (f *Flow) dispatchError(ctx context.Context, err error, ev NavigationEvent) (d Decision) {
	d = DecisionBlock
	f.config.log("navigation error: %s", err)
	if f.config.onNavigationError == nil {
		return d
	}
	// A panicking error callback must not take down the browser control
	// either; the decision stays at block.
	defer func() {
		recover()
	}()
	if got := f.config.onNavigationError(ctx, NavigationErrorEvent{Err: err, Navigation: ev}); got != DecisionDefault {
		d = got
	}
	return d
}
