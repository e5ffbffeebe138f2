// Package user manages accounts, credentials and the follow relationship between users.
package user

import (
	"time"
)

const DefaultProfileImage = "default-profile.jpg"

// User is the public view of an account. The password hash never leaves Credentials.
type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	ProfileImgURL string    `json:"profileImgUrl"`
	IsAdmin       bool      `json:"isAdmin"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Credentials is only produced for authentication.
type Credentials struct {
	User
	PasswordHash string `json:"-"`
}

// NewUser is the registration input with the plain password.
type NewUser struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	IsAdmin   bool
}

// Registration is what the repository stores: NewUser with the password already hashed.
type Registration struct {
	Username      string
	PasswordHash  string
	FirstName     string
	LastName      string
	Email         string
	ProfileImgURL string
	IsAdmin       bool
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Username      *string
	FirstName     *string
	LastName      *string
	Email         *string
	ProfileImgURL *string
	Password      *string
}

func (p Patch) Empty() bool {
	return p.Username == nil && p.FirstName == nil && p.LastName == nil &&
		p.Email == nil && p.ProfileImgURL == nil && p.Password == nil
}

type FollowStatus string

const (
	FollowPending  FollowStatus = "pending"
	FollowAccepted FollowStatus = "accepted"
)

// Follow is an edge from FollowerID to UserID, the followed user.
type Follow struct {
	ID         int64        `json:"id"`
	UserID     int64        `json:"userId"`
	FollowerID int64        `json:"followerId"`
	Status     FollowStatus `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// Summary is the short form used in follower listings.
type Summary struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
