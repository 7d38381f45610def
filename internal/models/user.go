package models

import "time"

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Fullname     string    `json:"fullname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Followers    []string  `json:"followers"`
	Following    []string  `json:"following"`
	ProfileImg   string    `json:"profileImg"`
	CoverImg     string    `json:"coverImg"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicProfile is the subset of a user that is safe to return to clients.
type PublicProfile struct {
	ID         string   `json:"_id"`
	Username   string   `json:"username"`
	Fullname   string   `json:"fullname"`
	Email      string   `json:"email"`
	Followers  []string `json:"followers"`
	Following  []string `json:"following"`
	ProfileImg string   `json:"profileImg"`
	CoverImg   string   `json:"coverImg"`
}

// Profile returns the public view of u. Nil social graph slices become empty
// so they encode as [] rather than null.
func (u *User) Profile() PublicProfile {
	followers := u.Followers
	if followers == nil {
		followers = []string{}
	}
	following := u.Following
	if following == nil {
		following = []string{}
	}
	return PublicProfile{
		ID:         u.ID,
		Username:   u.Username,
		Fullname:   u.Fullname,
		Email:      u.Email,
		Followers:  followers,
		Following:  following,
		ProfileImg: u.ProfileImg,
		CoverImg:   u.CoverImg,
	}
}
