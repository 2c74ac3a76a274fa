package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleTeacher   UserRole = "teacher"
	RoleAdmin     UserRole = "admin"
	RoleModerator UserRole = "moderator"
)

// Profile holds the mutable profile sub-document of a user.
type Profile struct {
	Bio       string   `json:"bio"`
	Avatar    string   `json:"avatar"`
	Badges    []string `json:"badges,omitempty"`
	Bookmarks []uint   `json:"bookmarks,omitempty"`
}

type User struct {
	ID              uint                        `json:"id" gorm:"primaryKey"`
	Name            string                      `json:"name" gorm:"not null;size:100"`
	Email           string                      `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash    string                      `json:"-" gorm:"not null;size:100"`
	InstitutionName string                      `json:"institution_name" gorm:"not null;size:200"`
	Class           string                      `json:"class" gorm:"not null;size:50;index"`
	Role            UserRole                    `json:"role" gorm:"not null;default:student;index"`
	Profile         datatypes.JSONType[Profile] `json:"profile" gorm:"type:jsonb"`

	IsVerifiedTeacher bool `json:"is_verified_teacher" gorm:"default:false"`
	AppliedForPaid    bool `json:"applied_for_paid" gorm:"default:false"`
	Suspended         bool `json:"suspended" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// SetPassword replaces the stored digest with the bcrypt hash of plain.
// Saving a user without calling this never changes the digest.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// ComparePassword reports whether plain hashes to the stored digest.
func (u *User) ComparePassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// UserSummary is the shape returned to clients on register/login/profile
// endpoints. The password digest is never serialized.
type UserSummary struct {
	ID              uint     `json:"id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Role            UserRole `json:"role"`
	Class           string   `json:"class"`
	InstitutionName string   `json:"institution_name"`
	Profile         Profile  `json:"profile"`
	Suspended       bool     `json:"suspended"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		Class:           u.Class,
		InstitutionName: u.InstitutionName,
		Profile:         u.Profile.Data(),
		Suspended:       u.Suspended,
	}
}
