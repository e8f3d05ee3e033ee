package models

import (
	"strings"
	"time"

	"xpointconnect/backend/libs/auth"
)

// User is a staff account: back-office personnel or a station operator.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         auth.Role `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// EVOwner is a self-registered vehicle owner keyed by NIC.
type EVOwner struct {
	NIC                  string    `db:"nic" json:"nic"`
	FirstName            string    `db:"first_name" json:"firstName"`
	LastName             string    `db:"last_name" json:"lastName"`
	Email                string    `db:"email" json:"email"`
	PhoneNumber          string    `db:"phone_number" json:"phoneNumber"`
	Address              string    `db:"address" json:"address"`
	PasswordHash         string    `db:"password_hash" json:"-"`
	IsActive             bool      `db:"is_active" json:"isActive"`
	RequiresReactivation bool      `db:"requires_reactivation" json:"requiresReactivation"`
	CreatedAt            time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time `db:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name.
func (o EVOwner) FullName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

// CanLogin reports whether the account may authenticate.
func (o EVOwner) CanLogin() bool {
	return o.IsActive && !o.RequiresReactivation
}

// LoginResult is returned by successful logins.
type LoginResult struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	Subject   string    `json:"subject"`
	Name      string    `json:"name"`
	Role      auth.Role `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}
