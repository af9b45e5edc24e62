// internal/domain/models/user.go
package models

import "time"

// User is a profile document. The _id is the identity-provider UID (a
// string), not an ObjectID, so that every other collection can reference
// users by the same value the auth layer hands us.
//
// NOTE:
//   - Group membership is not embedded on User.
//     Use the group_members collection to discover a user's groups.
type User struct {
	UID           string `bson:"_id" json:"uid"`
	DisplayName   string `bson:"display_name" json:"display_name"`
	DisplayNameCI string `bson:"display_name_ci" json:"display_name_ci"` // lowercase, diacritics-stripped
	Email         string `bson:"email" json:"email"`
	Role          string `bson:"role" json:"role"` // admin | moderator | member
	Status        string `bson:"status,omitempty" json:"status,omitempty"`
	AvatarURL     string `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	BannerURL     string `bson:"banner_url,omitempty" json:"banner_url,omitempty"`

	// PasswordHash is set only for accounts using local password login.
	// Accounts created through the identity provider leave it nil.
	PasswordHash *string `bson:"password_hash,omitempty" json:"-"`

	LastSeenAt *time.Time `bson:"last_seen_at,omitempty" json:"last_seen_at,omitempty"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the profile carries the admin role flag.
func (u *User) IsAdmin() bool { return u.Role == "admin" }
