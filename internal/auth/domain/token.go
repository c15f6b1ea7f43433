package domain

import "time"

// TokenPair is the only artifact login and registration return to callers:
// the short-lived access token and the long-lived refresh token, both JWTs
// signed under independent contexts.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // always "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // access token lifetime
}
