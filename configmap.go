package webviewauth

import (
	"encoding/json"
	"fmt"
)

// NewBuilderFromMap translates a weakly-typed key/value mapping into builder
// calls. The recognized keys are:
//
//	tenant, client_id, redirect_uri, login_policy, register_policy,
//	password_reset_policy, scopes, no_default_scopes, initial_uri,
//	initial_javascript, clear_cache, is_b2c
//
// Callback fields are not serializable and must be attached on the returned
// Builder before Build. Unknown keys and mistyped values are rejected.
func NewBuilderFromMap(m map[string]interface{}) (*Builder, error) {
	b := NewBuilder()
	for key, value := range m {
		switch key {
		case "tenant":
			s, err := stringValue(key, value)
			if err != nil {
				return nil, err
			}
			b.Tenant(s)
		case "client_id":
			s, err := stringValue(key, value)
			if err != nil {
				return nil, err
			}
			b.ClientID(s)
		case "redirect_uri":
			s, err := stringValue(key, value)
			if err != nil {
				return nil, err
			}
			b.RedirectURI(s)
		case "login_policy":
			s, err := stringValue(key, value)
			if err != nil {
				return nil, err
			}
			b.LoginPolicy(s)
		case "register_policy":
			s, err := stringValue(key, value)
			if err != nil {
				return nil, err
			}
			b.RegisterPolicy(s)
		case "password_reset_policy":
			s, err := stringValue(key, value)
			if err != nil {
				return nil, err
			}
			b.PasswordResetPolicy(s)
		case "initial_javascript":
			s, err := stringValue(key, value)
			if err != nil {
				return nil, err
			}
			b.InitialScript(s)
		case "initial_uri":
			s, err := stringValue(key, value)
			if err != nil {
				return nil, err
			}
			page, err := pageValue(s)
			if err != nil {
				return nil, err
			}
			b.InitialPage(page)
		case "scopes":
			scopes, err := stringListValue(key, value)
			if err != nil {
				return nil, err
			}
			b.Scopes(scopes...)
		case "no_default_scopes":
			v, err := boolValue(key, value)
			if err != nil {
				return nil, err
			}
			if v {
				b.NoDefaultScopes()
			}
		case "clear_cache":
			v, err := boolValue(key, value)
			if err != nil {
				return nil, err
			}
			b.ClearCache(v)
		case "is_b2c":
			v, err := boolValue(key, value)
			if err != nil {
				return nil, err
			}
			b.B2C(v)
		case "on_new_tokens", "on_navigation_error":
			return nil, fmt.Errorf("%w: %s cannot be set from a map; attach it on the builder", ErrInvalidConfiguration, key)
		default:
			return nil, fmt.Errorf("%w: unknown key %s", ErrInvalidConfiguration, key)
		}
	}
	return b, nil
}

// NewBuilderFromJSON is NewBuilderFromMap for a JSON-encoded object.
func NewBuilderFromJSON(data []byte) (*Builder, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: could not parse JSON: %s", ErrInvalidConfiguration, err)
	}
	return NewBuilderFromMap(m)
}

func stringValue(key string, value interface{}) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidConfiguration, key)
	}
	return s, nil
}

func boolValue(key string, value interface{}) (bool, error) {
	v, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s must be a bool", ErrInvalidConfiguration, key)
	}
	return v, nil
}

func stringListValue(key string, value interface{}) ([]string, error) {
	switch list := value.(type) {
	case []string:
		return list, nil
	case []interface{}:
		scopes := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s must contain only strings", ErrInvalidConfiguration, key)
			}
			scopes = append(scopes, s)
		}
		return scopes, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a list of strings", ErrInvalidConfiguration, key)
	}
}

func pageValue(s string) (Page, error) {
	switch s {
	case "login":
		return PageLogin, nil
	case "register":
		return PageRegister, nil
	case "password_reset":
		return PagePasswordReset, nil
	default:
		return PageLogin, fmt.Errorf("%w: initial_uri must be one of login, register or password_reset", ErrInvalidConfiguration)
	}
}
