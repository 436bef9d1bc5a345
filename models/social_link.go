package models

import (
	"time"
)

type SocialLink struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ProfileID  uint   `json:"profile_id" gorm:"not null;index"`
	Platform   string `json:"platform" gorm:"not null"`
	URL        string `json:"url" gorm:"not null"`
	Label      string `json:"label"`
	IsVisible  bool   `json:"is_visible"`
	Position   int    `json:"position" gorm:"default:0"`
	ClickCount int    `json:"click_count" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
