package model

import "time"

// User is the public-safe projection of a dashboard account. It never carries
// OAuth tokens or other secrets, so it can be cached and returned as-is.
type User struct {
	ID        string    `json:"id"`
	DiscordID string    `json:"discord_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	IsActive  bool      `json:"is_active"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenClaims is what the gate keeps from a verified bearer token.
type TokenClaims struct {
	Subject   string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ServerRelation is a row of the user/server membership table.
type ServerRelation struct {
	UserID              string
	ServerID            string
	IsOwner             bool
	HasAdminPermissions bool
}

// Elevated reports whether the relation grants dashboard management rights.
func (r ServerRelation) Elevated() bool {
	return r.IsOwner || r.HasAdminPermissions
}

type ServerAccess struct {
	ServerID string `json:"server_id"`
	UserID   string `json:"user_id"`
	Access   bool   `json:"access"`
}
