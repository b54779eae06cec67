package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID         int64      `json:"id" db:"id" example:"1"`                                   // Unique identifier for the user
	Username   string     `json:"username" db:"username" example:"mkuznetsov"`              // Unique username, used in URLs
	Email      string     `json:"email" db:"email" example:"user@example.com"`              // User's email address
	Password   string     `json:"-" db:"password"`                                          // User's hashed password (excluded from JSON)
	FirstName  string     `json:"firstName" db:"first_name" example:"Mikhail"`              // User's first name
	LastName   string     `json:"lastName" db:"last_name" example:"Kuznetsov"`              // User's last name
	Bio        *string    `json:"bio,omitempty" db:"bio"`                                   // Short self-description (nullable)
	AvatarURL  *string    `json:"avatar,omitempty" db:"avatar_url"`                         // URL of the user's avatar (nullable)
	Website    *string    `json:"website,omitempty" db:"website"`                           // Personal website (nullable)
	Location   *string    `json:"location,omitempty" db:"location"`                         // Free-form location (nullable)
	BirthDate  *time.Time `json:"birthDate,omitempty" db:"birth_date"`                      // Date of birth (nullable)
	IsPublic   bool       `json:"isPublic" db:"is_public" example:"true"`                   // Whether the profile timeline is visible to others
	IsStaff    bool       `json:"-" db:"is_staff"`                                          // Staff members bypass visibility rules
	IsVerified bool       `json:"isVerified" db:"is_verified" example:"false"`              // Whether the account has been verified
	DateJoined time.Time  `json:"dateJoined" db:"date_joined" example:"2024-01-01T10:00:00Z"` // Timestamp when the account was created
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at" example:"2024-01-02T15:30:00Z"` // Timestamp when the account was last updated
}

// Viewer converts the user into a visibility viewer. Safe on a nil receiver,
// which yields the anonymous viewer.
func (u *User) Viewer() *Viewer {
	if u == nil {
		return nil
	}
	return &Viewer{ID: u.ID, IsStaff: u.IsStaff}
}

// UserCounts carries a user's aggregate counts. They are computed from live
// rows at query time and are never stored on the users table.
type UserCounts struct {
	Followers int64 `json:"followersCount"` // Subscriptions targeting this user
	Following int64 `json:"followingCount"` // Subscriptions created by this user
	Branches  int64 `json:"branchesCount"`
	Posts     int64 `json:"postsCount"`
}
