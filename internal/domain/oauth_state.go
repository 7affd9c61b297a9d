package domain

import "time"

// StateTTL is how long an issued OAuth state token stays valid.
const StateTTL = 600 * time.Second

// OAuthState correlates an outbound authorization redirect with the tenant
// that initiated it. Tokens are single-use: consuming one deletes it.
type OAuthState struct {
	Token     string    `json:"token"`
	TenantID  string    `json:"tenant_id"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the state is past its TTL at the given instant.
func (s *OAuthState) Expired(now time.Time) bool {
	return !now.Before(s.CreatedAt.Add(StateTTL))
}

// ClientCredentials is the integration's own client identifier and secret
// used to authenticate with the external platform.
type ClientCredentials struct {
	APIKey    string
	APISecret string
}
