package model

import "time"

type System string

const (
	SystemSIS  System = "sis"
	SystemEdFi System = "edfi"
)

// Credential is issued once per system per run and replaced wholesale, never mutated.
type Credential struct {
	System     System    `json:"system"`
	Token      string    `json:"-"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"` // zero when the token carries no exp claim
}

func (c Credential) Valid() bool {
	return c.Token != ""
}

func (c Credential) BearerHeader() string {
	return "Bearer " + c.Token
}

// Credentials is handed by the orchestrator to the extractor and loader.
// SIS stays empty when the run reads from a pre-fetched source.
type Credentials struct {
	SIS  Credential
	EdFi Credential
}

type AuthTokenResponse struct {
	Token string `json:"token"`
}

type OAuthTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
