package core

import "time"

// User represents an account record in the users collection
type User struct {
	ID           string    // Backend record ID
	Email        string    // Login identity, unique
	Name         string    // Display name
	PasswordHash string    // Self-describing PBKDF2 hash, never the plaintext
	Created      time.Time // When the record was created
	Updated      time.Time // When the record was last updated
}

// Session represents an authenticated user session
type Session struct {
	ID            string    // Unique session identifier
	UserID        string    // Backend record ID of the user
	Email         string    // Login identity of the user
	IssuedAt      time.Time // When the session was created
	RefreshExpiry time.Time // When the refresh capability expires
	AccessExpiry  time.Time // When the access capability expires
	RefreshID     string    // Unique identifier for the refresh token
}
