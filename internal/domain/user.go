package domain

import "time"

type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicUser is the shape returned by /login and /token.
type PublicUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Profile is the shape returned by /user.
type Profile struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

func (u *User) Public() PublicUser {
	return PublicUser{Username: u.Username, Email: u.Email}
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Email: u.Email, Username: u.Username}
}
