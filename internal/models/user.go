package models

import "os"

// User is the authenticated member's profile as returned by GET /api/profile.
type User struct {
	ID                  ID       `json:"id"`
	Username            string   `json:"username"`
	Email               string   `json:"email"`
	Age                 int      `json:"age,omitempty"`
	Level               int      `json:"level,omitempty"`
	Exp                 int      `json:"exp,omitempty"`
	Bio                 string   `json:"bio,omitempty"`
	StudyFields         []string `json:"studyFields,omitempty"`
	ProfileImageURL     string   `json:"profileImageUrl,omitempty"`
	NotificationEnabled bool     `json:"notificationEnabled"`
}

// UserPatch is a partial profile. Nil fields are left untouched when merged.
type UserPatch struct {
	Username            *string  `json:"username,omitempty"`
	Bio                 *string  `json:"bio,omitempty"`
	StudyFields         []string `json:"studyFields,omitempty"`
	ProfileImageURL     *string  `json:"profileImageUrl,omitempty"`
	NotificationEnabled *bool    `json:"notificationEnabled,omitempty"`
	Age                 *int     `json:"age,omitempty"`
}

// Apply merges p into a copy of u.
func (p UserPatch) Apply(u User) User {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.StudyFields != nil {
		u.StudyFields = append([]string(nil), p.StudyFields...)
	}
	if p.ProfileImageURL != nil {
		u.ProfileImageURL = *p.ProfileImageURL
	}
	if p.NotificationEnabled != nil {
		u.NotificationEnabled = *p.NotificationEnabled
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	return u
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse covers the token-bearing login responses. Cookie-only backends leave both empty.
type LoginResponse struct {
	AccessToken string `json:"accessToken,omitempty"`
	Token       string `json:"token,omitempty"`
	Message     string `json:"message,omitempty"`
}

// BearerToken returns whichever token field the backend filled.
func (r LoginResponse) BearerToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// RegisterRequest is the sign-up payload. When ProfileImage names a file the request is sent as multipart.
type RegisterRequest struct {
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Age          int      `json:"age,omitempty"`
	StudyFields  []string `json:"studyFields,omitempty"`
	Bio          string   `json:"bio,omitempty"`
	ProfileImage string   `json:"-"`
}

// HasProfileImage reports whether a readable profile image was supplied.
func (r RegisterRequest) HasProfileImage() bool {
	if r.ProfileImage == "" {
		return false
	}
	info, err := os.Stat(r.ProfileImage)
	return err == nil && !info.IsDir()
}

// PasswordChange is the body of PATCH /api/update/password.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AccountDeletion is the body of DELETE /api/delete/account.
type AccountDeletion struct {
	Password string `json:"password,omitempty"`
}
