package models

import (
	"time"
)

// View sources a visitor can arrive through. Anything else coerces to
// SourceDirect at the recording boundary.
const (
	SourceDirect = "direct"
	SourceQR     = "qr"
	SourceNFC    = "nfc"
	SourceLink   = "link"
)

// ProfileView is one recorded visit. Rows are immutable once created;
// they only go away through the retention cleanup or a cascading
// profile delete.
type ProfileView struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ProfileID     uint      `json:"profile_id" gorm:"not null;index"`
	ViewerIP      *string   `json:"-"`
	ViewerCountry *string   `json:"viewer_country" gorm:"size:2"`
	ViewerCity    *string   `json:"viewer_city" gorm:"size:100"`
	UserAgent     string    `json:"-"`
	Device        string    `json:"device"`
	Browser       string    `json:"browser"`
	Referrer      *string   `json:"referrer"`
	ViewSource    string    `json:"view_source" gorm:"index"`
	ViewedAt      time.Time `json:"viewed_at" gorm:"index"`
}

// ValidSource reports whether s is one of the enumerated view sources.
func ValidSource(s string) bool {
	switch s {
	case SourceDirect, SourceQR, SourceNFC, SourceLink:
		return true
	}
	return false
}
