// Package user defines the user and profile domain types.
package user

import "time"

// User is a registered account with its public profile data.
type User struct {
	ID        string
	Username  string
	Email     string
	Avatar    string
	Intro     string
	CreatedAt time.Time
}

// Profile is the social-relationship facet of a user, as seen by a viewer.
// Followed means the target follows the viewer; Following means the viewer
// follows the target. Blocked/Blocking follow the same orientation.
type Profile struct {
	Username  string
	Avatar    string
	Intro     string
	Followed  bool
	Following bool
	Blocked   bool
	Blocking  bool
}

// Profile projects the user with the given relationship flags.
func (u User) Profile(followed, following, blocked, blocking bool) Profile {
	return Profile{
		Username:  u.Username,
		Avatar:    u.Avatar,
		Intro:     u.Intro,
		Followed:  followed,
		Following: following,
		Blocked:   blocked,
		Blocking:  blocking,
	}
}
