package webviewauth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/int128/listener"
	"github.com/pkg/browser"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/mizuki/webviewauth/internal"
)

// DefaultLocalServerSuccessHTML is the response body shown in the user's
// browser when the flow has completed.
const DefaultLocalServerSuccessHTML = `<html><body>Signed in. You can close this window.</body></html>`

// ServerConfig controls the local server used by GetTokenViaLocalServer.
type ServerConfig struct {
	// Address candidates which the local server binds to, tried in order.
	// Default to a free port on 127.0.0.1.
	LocalServerBindAddress []string
	// A PEM-encoded certificate, and possibly the complete certificate chain.
	// When set, the local server serves TLS traffic. It is recommended that
	// the public key's SANs contain the loopback addresses.
	LocalServerCertFile string
	// A PEM-encoded private key for the certificate.
	// This is required when LocalServerCertFile is set.
	LocalServerKeyFile string
	// Response body on authorization completed.
	// Default to DefaultLocalServerSuccessHTML.
	LocalServerSuccessHTML string
	// Middleware for the local server. Default to none.
	LocalServerMiddleware func(h http.Handler) http.Handler
	// A channel to send its URL when the local server is ready. Default to none.
	LocalServerReadyChan chan<- string
	// Skip opening the system browser if it is true.
	SkipOpenBrowser bool
}

// localServerResult is the terminal outcome of one flow run, delivered from
// the chained callbacks to the waiting caller.
type localServerResult struct {
	tokens *TokenBundle
	err    error
}

// withResultChannel returns a copy of c whose callbacks additionally deliver
// the terminal result to respCh. The caller's own callbacks still run first
// and their decisions are preserved.
func (c *Config) withResultChannel(respCh chan<- *localServerResult) *Config {
	derived := *c
	userTokens := c.onNewTokens
	userErr := c.onNavigationError
	derived.onNewTokens = func(ctx context.Context, e NewTokensEvent) Decision {
		d := userTokens(ctx, e)
		respCh <- &localServerResult{tokens: e.Tokens}
		return d
	}
	derived.onNavigationError = func(ctx context.Context, e NavigationErrorEvent) Decision {
		d := DecisionDefault
		if userErr != nil {
			d = userErr(ctx, e)
		}
		respCh <- &localServerResult{err: e.Err}
		return d
	}
	return &derived
}

// GetTokenViaLocalServer runs the authorization code flow with the system
// browser and a local server bound to the redirect URI.
//
// This does the following steps:
//
//  1. Start a local server.
//  2. Open the system browser.
//  3. Wait for the user authorization on the provider-hosted pages.
//  4. Feed the redirect request through the navigation flow, which
//     exchanges the authorization code for tokens.
//  5. Return the token bundle.
//
// The redirect URI in c must point at the local server, e.g.
// http://localhost:8000 with a matching bind address. The configured
// callbacks are invoked as usual before the result is returned.
func GetTokenViaLocalServer(ctx context.Context, c *Config, sc ServerConfig) (*TokenBundle, error) {
	if sc.LocalServerMiddleware == nil {
		sc.LocalServerMiddleware = internal.DefaultMiddleware
	}
	if sc.LocalServerSuccessHTML == "" {
		sc.LocalServerSuccessHTML = DefaultLocalServerSuccessHTML
	}
	l, err := listener.New(sc.LocalServerBindAddress)
	if err != nil {
		return nil, xerrors.Errorf("could not start a local server: %w", err)
	}
	defer l.Close()
	switch {
	case sc.LocalServerCertFile == "" && sc.LocalServerKeyFile == "":
	case sc.LocalServerCertFile != "" && sc.LocalServerKeyFile != "":
		l.URL.Scheme = "https"
	default:
		return nil, xerrors.New("both LocalServerCertFile and LocalServerKeyFile must be set")
	}

	respCh := make(chan *localServerResult)
	flow := NewFlow(c.withResultChannel(respCh))
	server := http.Server{
		Handler: sc.LocalServerMiddleware(&localServerHandler{
			flow:        flow,
			baseURL:     strings.TrimSuffix(l.URL.String(), "/"),
			successHTML: sc.LocalServerSuccessHTML,
			respCh:      respCh,
		}),
	}
	var result *localServerResult
	var eg errgroup.Group
	eg.Go(func() error {
		for {
			select {
			case received, ok := <-respCh:
				if !ok {
					return nil // channel is closed (after the server is stopped)
				}
				if result == nil {
					result = received // pick only the first response
				}
				if err := server.Shutdown(ctx); err != nil {
					return xerrors.Errorf("could not shutdown the local server: %w", err)
				}
			case <-ctx.Done():
				if err := server.Shutdown(ctx); err != nil {
					return xerrors.Errorf("could not shutdown the local server: %w", err)
				}
				return xerrors.Errorf("context done while waiting for authorization response: %w", ctx.Err())
			}
		}
	})
	eg.Go(func() error {
		defer close(respCh)
		if sc.LocalServerCertFile != "" && sc.LocalServerKeyFile != "" {
			if err := server.ServeTLS(l, sc.LocalServerCertFile, sc.LocalServerKeyFile); err != nil && err != http.ErrServerClosed {
				return xerrors.Errorf("could not start a local TLS server: %w", err)
			}
		} else {
			if err := server.Serve(l); err != nil && err != http.ErrServerClosed {
				return xerrors.Errorf("could not start a local server: %w", err)
			}
		}
		return nil
	})
	eg.Go(func() error {
		if sc.SkipOpenBrowser {
			return nil
		}
		// A flow starting on register or password reset must land on the
		// provider page directly; the local index only redirects to the
		// sign-in authorize URL.
		target := l.URL.String()
		if c.initialPage != PageLogin {
			target = flow.InitialURL()
		}
		c.log("opening %s in the browser", target)
		if err := browser.OpenURL(target); err != nil {
			c.log("could not open the browser: %s", err)
		}
		return nil
	})
	if sc.LocalServerReadyChan != nil {
		sc.LocalServerReadyChan <- l.URL.String()
	}

	if err := eg.Wait(); err != nil {
		return nil, xerrors.Errorf("authorization error: %w", err)
	}
	if result == nil {
		return nil, xerrors.New("no authorization response")
	}
	if result.err != nil {
		return nil, result.err
	}
	if result.tokens == nil {
		return nil, xerrors.New("authorization flow ended without tokens")
	}
	return result.tokens, nil
}

type localServerHandler struct {
	flow        *Flow
	baseURL     string
	successHTML string
	respCh      chan<- *localServerResult
}

func (h *localServerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	switch {
	case q.Get("error") != "":
		// Authorization error response from the provider,
		// https://tools.ietf.org/html/rfc6749#section-4.1.2.1
		h.respCh <- &localServerResult{
			err: xerrors.Errorf("authorization error from the provider: %s %s", q.Get("error"), q.Get("error_description")),
		}
		http.Error(w, "authorization error", 500)
	case q.Get("code") != "" || h.flow.Config().InitialPage() != PageLogin:
		d := h.flow.HandleNavigation(r.Context(), NavigationEvent{URL: h.baseURL + r.RequestURI})
		if d == DecisionBlock {
			http.Error(w, "authorization error", 500)
			return
		}
		w.Header().Add("Content-Type", "text/html")
		fmt.Fprint(w, h.successHTML)
	case r.URL.Path == "/":
		http.Redirect(w, r, h.flow.InitialURL(), 302)
	default:
		http.NotFound(w, r)
	}
}
