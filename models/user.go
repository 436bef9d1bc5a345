package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	Name       string  `json:"name" gorm:"not null"`
	Email      string  `json:"email" gorm:"unique;not null"`
	Password   string  `json:"-"`
	Role       string  `json:"role" gorm:"default:user"`
	GoogleID   *string `json:"-" gorm:"index"`
	FacebookID *string `json:"-" gorm:"index"`

	OTP             *string `json:"-"`
	IsEmailVerified bool    `json:"is_email_verified" gorm:"default:false"`

	ResetPasswordToken   *string    `json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Profiles []Profile `json:"-" gorm:"foreignKey:UserID"`
}

// SetPassword stores a bcrypt hash of the plaintext password.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword reports whether the plaintext matches the stored hash.
// OAuth-only accounts have no password and never match.
func (u *User) CheckPassword(plain string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}
