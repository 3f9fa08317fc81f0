package model

import "time"

// User is an administrator account permitted to edit site content.
// PasswordHash holds a bcrypt hash; plaintext passwords never leave the
// application service that hashes them. Active gates authentication only,
// it is not a deletion marker.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Name         string
	Email        string
	Active       bool
	CreatedAt    time.Time
}
