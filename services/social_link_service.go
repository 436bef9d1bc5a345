package services

import (
	"errors"

	"github.com/LinkMeOrg/LinkMe-api/database"
	"github.com/LinkMeOrg/LinkMe-api/models"
	"gorm.io/gorm"
)

var ErrSocialLinkNotFound = errors.New("social link not found")

// FindOwnedSocialLink resolves a link by id and checks, through its
// profile, that the caller owns it. Same conflation as the profile guard.
func FindOwnedSocialLink(linkID, userID uint) (*models.SocialLink, error) {
	var link models.SocialLink
	result := database.DB.
		Joins("JOIN profiles ON profiles.id = social_links.profile_id").
		Where("social_links.id = ? AND profiles.user_id = ?", linkID, userID).
		First(&link)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSocialLinkNotFound
		}
		return nil, result.Error
	}
	return &link, nil
}

func CreateSocialLink(link *models.SocialLink, userID uint) error {
	if _, err := FindOwnedProfile(link.ProfileID, userID); err != nil {
		return err
	}
	return database.DB.Create(link).Error
}

func CreateSocialLinks(profileID, userID uint, links []models.SocialLink) ([]models.SocialLink, error) {
	if _, err := FindOwnedProfile(profileID, userID); err != nil {
		return nil, err
	}

	for i := range links {
		links[i].ProfileID = profileID
	}

	if err := database.DB.Create(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func ListSocialLinks(profileID, userID uint, includeHidden bool) ([]models.SocialLink, error) {
	if _, err := FindOwnedProfile(profileID, userID); err != nil {
		return nil, err
	}

	query := database.DB.Where("profile_id = ?", profileID)
	if !includeHidden {
		query = query.Where("is_visible = ?", true)
	}

	var links []models.SocialLink
	if err := query.Order("position asc, id asc").Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// LinkStatistics summarizes click activity across a profile's links.
type LinkStatistics struct {
	TotalLinks   int                 `json:"total_links"`
	VisibleLinks int                 `json:"visible_links"`
	TotalClicks  int                 `json:"total_clicks"`
	TopLink      *models.SocialLink  `json:"top_link"`
	Links        []models.SocialLink `json:"links"`
}

func GetLinkStatistics(profileID, userID uint) (*LinkStatistics, error) {
	links, err := ListSocialLinks(profileID, userID, true)
	if err != nil {
		return nil, err
	}

	stats := &LinkStatistics{TotalLinks: len(links), Links: links}
	for i := range links {
		if links[i].IsVisible {
			stats.VisibleLinks++
		}
		stats.TotalClicks += links[i].ClickCount
		if stats.TopLink == nil || links[i].ClickCount > stats.TopLink.ClickCount {
			stats.TopLink = &links[i]
		}
	}
	return stats, nil
}

// ReorderSocialLinks applies caller-supplied positions to links the
// caller owns; ids outside the profile are ignored.
func ReorderSocialLinks(profileID, userID uint, positions map[uint]int) error {
	if _, err := FindOwnedProfile(profileID, userID); err != nil {
		return err
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		for id, pos := range positions {
			err := tx.Model(&models.SocialLink{}).
				Where("id = ? AND profile_id = ?", id, profileID).
				Update("position", pos).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func DeleteSocialLinks(profileID, userID uint, linkIDs []uint) (int64, error) {
	if _, err := FindOwnedProfile(profileID, userID); err != nil {
		return 0, err
	}

	result := database.DB.
		Where("profile_id = ? AND id IN ?", profileID, linkIDs).
		Delete(&models.SocialLink{})
	return result.RowsAffected, result.Error
}

// IncrementLinkClick bumps the public click counter with a relative
// update, so concurrent clicks cannot lose increments.
func IncrementLinkClick(linkID uint) (*models.SocialLink, error) {
	var link models.SocialLink
	result := database.DB.Where("id = ? AND is_visible = ?", linkID, true).First(&link)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSocialLinkNotFound
		}
		return nil, result.Error
	}

	err := database.DB.Model(&link).
		UpdateColumn("click_count", gorm.Expr("click_count + ?", 1)).Error
	if err != nil {
		return nil, err
	}

	link.ClickCount++
	return &link, nil
}
