package models

import "time"

// Session is the audit record of a login. IsValid flips to false on logout;
// AccessToken tracks the latest token minted by a refresh.
type Session struct {
	ID           string
	UserID       string
	AccessToken  string
	RefreshToken string
	IsValid      bool
	UserAgent    string
	IP           string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
