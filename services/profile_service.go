package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/LinkMeOrg/LinkMe-api/database"
	"github.com/LinkMeOrg/LinkMe-api/models"
	qrcode "github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

const (
	slugCharset      = "abcdefghijklmnopqrstuvwxyz0123456789"
	slugSuffixLength = 6
	slugMaxAttempts  = 5
)

// ErrProfileNotFound covers both a missing profile and a profile owned by
// someone else. Callers must not be able to tell the two apart.
var ErrProfileNotFound = errors.New("profile not found")

// FindOwnedProfile is the ownership guard: one filtered lookup by primary
// key and owner, so a wrong owner and a wrong id look identical.
func FindOwnedProfile(profileID, userID uint) (*models.Profile, error) {
	var profile models.Profile
	result := database.DB.Where("id = ? AND user_id = ?", profileID, userID).First(&profile)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, result.Error
	}
	return &profile, nil
}

// FindActiveProfileBySlug resolves the public identifier used by the
// tracking endpoint. Inactive profiles are invisible here.
func FindActiveProfileBySlug(slug string) (*models.Profile, error) {
	var profile models.Profile
	result := database.DB.Where("slug = ? AND is_active = ?", slug, true).First(&profile)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, result.Error
	}
	return &profile, nil
}

// FindPublicProfileBySlug is the visitor-facing card lookup: the active
// profile with its visible links in display order. Hidden links and
// inactive profiles never leave the database here.
func FindPublicProfileBySlug(slug string) (*models.Profile, error) {
	var profile models.Profile
	result := database.DB.
		Preload("SocialLinks", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_visible = ?", true).Order("position asc, id asc")
		}).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&profile)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, result.Error
	}
	return &profile, nil
}

// CreateProfile assigns a unique slug derived from the profile name and
// persists the row.
func CreateProfile(profile *models.Profile) error {
	slug, err := generateSlug(profile.Name)
	if err != nil {
		return err
	}
	profile.Slug = slug

	return database.DB.Create(profile).Error
}

func ListProfiles(userID uint, includeInactive bool) ([]models.Profile, error) {
	query := database.DB.Where("user_id = ?", userID)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var profiles []models.Profile
	if err := query.Order("created_at desc").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// DeleteProfile removes the profile and everything hanging off it.
func DeleteProfile(profileID, userID uint) error {
	profile, err := FindOwnedProfile(profileID, userID)
	if err != nil {
		return err
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", profile.ID).Delete(&models.ProfileView{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", profile.ID).Delete(&models.SocialLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(profile).Error
	})
}

func ToggleProfileStatus(profileID, userID uint) (*models.Profile, error) {
	profile, err := FindOwnedProfile(profileID, userID)
	if err != nil {
		return nil, err
	}

	profile.IsActive = !profile.IsActive
	if err := database.DB.Model(profile).Update("is_active", profile.IsActive).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// GenerateQRCode writes a PNG pointing at the card page the frontend
// serves for this slug and stores its path on the profile.
func GenerateQRCode(profile *models.Profile, frontendURL, uploadDir string) error {
	publicURL := fmt.Sprintf("%s/p/%s", frontendURL, profile.Slug)

	dir := filepath.Join(uploadDir, "qr")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("profile-%d.png", profile.ID))

	if err := qrcode.WriteFile(publicURL, qrcode.Medium, 256, path); err != nil {
		return err
	}

	profile.QRCode = &path
	return database.DB.Model(profile).Update("qr_code", path).Error
}

// generateSlug turns the profile name into a URL-safe base and appends a
// random suffix, retrying on the (unlikely) collision.
func generateSlug(name string) (string, error) {
	base := slugify(name)

	for attempt := 0; attempt < slugMaxAttempts; attempt++ {
		suffix, err := randomString(slugSuffixLength)
		if err != nil {
			return "", err
		}

		slug := suffix
		if base != "" {
			slug = base + "-" + suffix
		}

		var existing models.Profile
		result := database.DB.Where("slug = ?", slug).First(&existing)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return slug, nil
		}
		if result.Error != nil {
			return "", result.Error
		}
	}

	return "", errors.New("could not generate a unique slug")
}

func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func randomString(length int) (string, error) {
	code := make([]byte, length)
	charsetLength := big.NewInt(int64(len(slugCharset)))

	for i := 0; i < length; i++ {
		randomIndex, err := rand.Int(rand.Reader, charsetLength)
		if err != nil {
			return "", err
		}
		code[i] = slugCharset[randomIndex.Int64()]
	}

	return string(code), nil
}
