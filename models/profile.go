package models

import (
	"time"
)

type Profile struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	UserID      uint    `json:"user_id" gorm:"not null;index"`
	ProfileType string  `json:"profile_type" gorm:"default:personal"`
	Name        string  `json:"name" gorm:"not null"`
	Title       string  `json:"title"`
	Bio         string  `json:"bio"`
	Color       string  `json:"color"`
	DesignMode  string  `json:"design_mode"`
	Template    string  `json:"template"`
	Avatar      *string `json:"avatar"`
	Slug        string  `json:"slug" gorm:"unique;not null"`
	QRCode      *string `json:"qr_code"`
	ViewCount   int     `json:"view_count" gorm:"default:0"`
	IsActive    bool    `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SocialLinks []SocialLink  `json:"social_links,omitempty" gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
	Views       []ProfileView `json:"-" gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE"`
}
