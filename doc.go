// Package webviewauth drives an interactive OAuth 2.0 / OpenID Connect
// Authorization Code flow against Azure Active Directory, including B2C
// tenants, through an embedded browser surface supplied by the caller.
// It classifies every URL the browser is about to navigate to, lets the
// provider-hosted pages through, intercepts the redirect back to the
// application, exchanges the authorization code for tokens over a
// back-channel HTTP call and hands the token bundle to the configured
// callbacks.
package webviewauth
