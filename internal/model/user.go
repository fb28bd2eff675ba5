package model

import "time"

// Roles stored in users.role.  CLIENT accounts browse and reserve; ADMIN
// accounts additionally manage the reservation ledger.
const (
	RoleClient = "CLIENT"
	RoleAdmin  = "ADMIN"
)

// User represents a row in the `users` table.  Only the bcrypt hash of the
// password is ever stored.
//
// Fields:
//
//	ID           – primary key identifier.
//	Username     – display handle chosen at registration.
//	FirstName    – given name.
//	LastName     – family name.
//	Email        – unique, lowercased email address used to log in.
//	PasswordHash – bcrypt hash of the password.
//	Role         – CLIENT or ADMIN.
//	CreatedAt    – timestamp of registration.
type User struct {
	ID           uint64
	Username     string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is never persisted; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64
	UserID    uint64
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
