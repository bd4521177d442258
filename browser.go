package webviewauth

import "context"

// Decision tells the browser control whether to continue a navigation.
type Decision int

const (
	// DecisionDefault applies the context-specific default:
	// DecisionAllow on success paths and DecisionBlock on error paths.
	// It is the zero value, so a callback can simply return it to defer
	// to the flow.
	DecisionDefault Decision = iota

	// DecisionAllow lets the browser proceed with the navigation.
	DecisionAllow

	// DecisionBlock prevents the navigation.
	DecisionBlock
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionBlock:
		return "block"
	default:
		return "default"
	}
}

// Page selects which provider-hosted page the browser opens first.
type Page int

const (
	// PageLogin opens the sign-in page. This is the default and the only
	// initial page whose final redirect carries an authorization code.
	PageLogin Page = iota

	// PageRegister opens the sign-up page.
	PageRegister

	// PagePasswordReset opens the password reset page.
	PagePasswordReset
)

func (p Page) String() string {
	switch p {
	case PageRegister:
		return "register"
	case PagePasswordReset:
		return "password_reset"
	default:
		return "login"
	}
}

// NavigationEvent carries the target URL of a navigation the browser
// control is about to perform.
type NavigationEvent struct {
	URL string
}

// BrowserControl is the surface of the embedded browser the flow drives.
// The flow never renders anything itself; it only issues commands through
// this interface and answers the navigation events the host feeds into
// Flow.HandleNavigation.
type BrowserControl interface {
	// Navigate opens the given URL.
	Navigate(url string) error

	// ClearCache drops the browser cache and cookies.
	ClearCache() error

	// RunScript evaluates the given JavaScript in the current page.
	RunScript(js string) error
}

// NewTokensEvent is passed to the NewTokensHandler when the flow reaches
// the redirect URI.
type NewTokensEvent struct {
	// InitialPage is the page the flow started on.
	InitialPage Page

	// Tokens is nil when the flow started on a page that does not yield
	// an authorization code, such as register or password reset.
	Tokens *TokenBundle

	// Navigation is the raw navigation event that completed the flow.
	Navigation NavigationEvent
}

// NavigationErrorEvent is passed to the NavigationErrorHandler when the
// token exchange or the navigation handling itself fails.
type NavigationErrorEvent struct {
	Err        error
	Navigation NavigationEvent
}

// NewTokensHandler receives the outcome of a completed flow.
// Returning DecisionDefault resolves to DecisionAllow.
type NewTokensHandler func(ctx context.Context, e NewTokensEvent) Decision

// NavigationErrorHandler receives errors raised while handling a
// navigation event. Returning DecisionDefault resolves to DecisionBlock.
type NavigationErrorHandler func(ctx context.Context, e NavigationErrorEvent) Decision
