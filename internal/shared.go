// Package internal provides helpers shared across the webviewauth package.
package internal

import (
	"net/http"
	"net/url"
	"strings"
)

// Param is a single query string parameter.
type Param struct {
	Key   string
	Value string
}

// EncodeQuery percent-encodes the parameters preserving their order.
// url.Values.Encode sorts keys alphabetically, but the authority expects
// the policy parameter first. A parameter with an empty value is omitted
// entirely rather than emitted empty.
func EncodeQuery(params []Param) string {
	var b strings.Builder
	for _, p := range params {
		if p.Value == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// DefaultMiddleware returns h handler
func DefaultMiddleware(h http.Handler) http.Handler {
	return h
}
