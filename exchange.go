package webviewauth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/xerrors"
)

// tokenResponse is the normalized result of a token endpoint call.
// An empty accessToken is propagated as-is: beyond the status code, the
// authority is trusted to return well-formed success bodies.
type tokenResponse struct {
	accessToken  string
	refreshToken string
	expiresAt    time.Time // zero when the endpoint did not report a usable expires_in
}

// exchangeToken POSTs params to the token endpoint and normalizes the JSON
// response. The authority accepts the token request parameters in the query
// string, so the request body stays empty.
func exchangeToken(ctx context.Context, client HTTPClient, endpoint string, params url.Values) (tokenResponse, error) {
	var tr tokenResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return tr, xerrors.Errorf("could not create a token request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return tr, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return tr, &NetworkError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return tr, &ProtocolError{StatusCode: resp.StatusCode}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return tr, &ProtocolError{Reason: "token endpoint returned a body that is not a JSON object"}
	}

	if v, ok := fields["access_token"].(string); ok {
		tr.accessToken = v
	}
	if v, ok := fields["refresh_token"].(string); ok {
		tr.refreshToken = v
	}
	if d, ok := parseExpiresIn(fields["expires_in"]); ok {
		tr.expiresAt = time.Now().Add(d)
	}
	return tr, nil
}

// parseExpiresIn accepts the expires_in field as a JSON number or a numeric
// string; anything else leaves the expiry unset rather than erroring.
func parseExpiresIn(v interface{}) (time.Duration, bool) {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = t
	default:
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(n) * time.Second, true
}
