package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mizuki/webviewauth"
	"github.com/pkg/browser"
	"golang.org/x/sync/errgroup"
)

func init() {
	log.SetFlags(log.Lshortfile | log.Lmicroseconds)
}

type cmdOptions struct {
	tenant          string
	clientID        string
	loginPolicy     string
	scopes          string
	bindAddress     string
	localServerCert string
	localServerKey  string
	manual          bool
}

func main() {
	var o cmdOptions
	flag.StringVar(&o.tenant, "tenant", "", "Azure AD B2C tenant name, e.g. contoso")
	flag.StringVar(&o.clientID, "client-id", "", "Application (client) ID")
	flag.StringVar(&o.loginPolicy, "login-policy", "", "Sign-in user flow, e.g. B2C_1_signin")
	flag.StringVar(&o.scopes, "scopes", "", "Extra scopes to request, comma separated (optional)")
	flag.StringVar(&o.bindAddress, "address", "localhost:8000", "Address of the local server receiving the redirect")
	flag.StringVar(&o.localServerCert, "local-server-cert", "", "Path to a certificate file for the local server (optional)")
	flag.StringVar(&o.localServerKey, "local-server-key", "", "Path to a key file for the local server (optional)")
	flag.BoolVar(&o.manual, "manual", false, "Paste the redirect URL instead of running a local server")
	flag.Parse()
	if o.tenant == "" || o.clientID == "" || o.loginPolicy == "" {
		log.Printf(`You need to set the tenant, client and user flow.
Open https://portal.azure.com and register an application.
Then set the following options:`)
		flag.PrintDefaults()
		os.Exit(1)
		return
	}
	if o.localServerCert != "" {
		log.Printf("Using the TLS certificate: %s", o.localServerCert)
	}
	scheme := "http"
	if o.localServerCert != "" {
		scheme = "https"
	}

	b := webviewauth.NewBuilder().
		Tenant(o.tenant).
		ClientID(o.clientID).
		LoginPolicy(o.loginPolicy).
		RedirectURI(fmt.Sprintf("%s://%s", scheme, o.bindAddress)).
		OnNewTokens(func(ctx context.Context, e webviewauth.NewTokensEvent) webviewauth.Decision {
			return webviewauth.DecisionDefault
		}).
		Logf(log.Printf)
	if o.scopes != "" {
		b.Scopes(strings.Split(o.scopes, ",")...)
	}
	cfg, err := b.Build()
	if err != nil {
		log.Fatalf("error: %s", err)
	}

	ctx := context.Background()
	if o.manual {
		tokens, err := webviewauth.GetTokenViaManualInput(ctx, cfg, webviewauth.ManualInputConfig{})
		if err != nil {
			log.Fatalf("authorization error: %s", err)
		}
		report(tokens)
		return
	}

	ready := make(chan string, 1)
	defer close(ready)
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		select {
		case url := <-ready:
			log.Printf("Open %s", url)
			if err := browser.OpenURL(url); err != nil {
				log.Printf("could not open the browser: %s", err)
			}
			return nil
		case <-ctx.Done():
			return fmt.Errorf("context done while waiting for authorization: %w", ctx.Err())
		}
	})
	eg.Go(func() error {
		tokens, err := webviewauth.GetTokenViaLocalServer(ctx, cfg, webviewauth.ServerConfig{
			LocalServerBindAddress: []string{o.bindAddress},
			LocalServerCertFile:    o.localServerCert,
			LocalServerKeyFile:     o.localServerKey,
			LocalServerReadyChan:   ready,
			SkipOpenBrowser:        true,
		})
		if err != nil {
			return fmt.Errorf("could not get a token: %w", err)
		}
		report(tokens)
		return nil
	})
	if err := eg.Wait(); err != nil {
		log.Fatalf("authorization error: %s", err)
	}
}

func report(tokens *webviewauth.TokenBundle) {
	if expiry, ok := tokens.ExpiresAt(); ok {
		log.Printf("You got a valid token until %s", expiry)
		return
	}
	log.Printf("You got a token")
}
