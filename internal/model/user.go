package model

import (
	"time"
)

// User is the account an interaction is attributed to. FollowersCount and
// FollowingCount are caches of the follows table and are only changed by the
// counter reconciler.
type User struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"-"`
	ProfilePicture *string   `db:"profile_picture" json:"profilePicture"`
	FollowersCount int       `db:"followers_count" json:"followersCount"`
	FollowingCount int       `db:"following_count" json:"followingCount"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// UserSummary is the public projection embedded in lists and comments.
type UserSummary struct {
	ID             string  `db:"id" json:"id"`
	Name           string  `db:"name" json:"name"`
	ProfilePicture *string `db:"profile_picture" json:"profilePicture"`
	IsFollowing    bool    `db:"-" json:"isFollowing"`
}

// Summary projects a user to its public fields.
func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:             u.ID,
		Name:           u.Name,
		ProfilePicture: u.ProfilePicture,
	}
}
