package domain

import "time"

// User is the application-owned profile document kept in the provider's users
// collection. AccountID links the document to the provider-side account that
// authenticates; the two identifiers are distinct and both opaque.
type User struct {
	ID        string    `json:"$id"`
	AccountID string    `json:"accountId"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"$createdAt"`
}

// Account is the provider-side identity resolved from a session token.
type Account struct {
	ID    string `json:"$id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is a provider-issued session artifact. Secret is the opaque value
// sealed into the session cookie; the provider owns its validity window.
type Session struct {
	ID        string
	AccountID string
	Secret    string
	ExpiresAt time.Time
}
