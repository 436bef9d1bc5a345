package services

import (
	"math"
	"strings"
	"time"

	"github.com/LinkMeOrg/LinkMe-api/database"
	"github.com/LinkMeOrg/LinkMe-api/geoip"
	"github.com/LinkMeOrg/LinkMe-api/models"
	ua "github.com/mileusna/useragent"
	"gorm.io/gorm"
)

// AnalyticsService records profile views and answers the aggregate
// queries over them. The geo resolver is injected at construction.
type AnalyticsService struct {
	Geo geoip.Resolver
}

func NewAnalyticsService(geo geoip.Resolver) *AnalyticsService {
	return &AnalyticsService{Geo: geo}
}

// RecordedView is what the public tracking endpoint returns.
type RecordedView struct {
	ViewID    uint `json:"view_id"`
	ProfileID uint `json:"profile_id"`
	ViewCount int  `json:"view_count"`
}

// RecordView looks up the active profile by slug, enriches the request
// context and persists one view. The insert and the counter increment are
// two separate statements, not one transaction: a failure between them
// leaves the counter one behind the event table, which is accepted drift.
func (s *AnalyticsService) RecordView(slug, source, ip, userAgent, referrer string) (*RecordedView, error) {
	profile, err := FindActiveProfileBySlug(slug)
	if err != nil {
		return nil, err
	}

	device, browser := ParseUserAgent(userAgent)
	country, city := s.Geo.Resolve(ip)

	view := models.ProfileView{
		ProfileID:     profile.ID,
		ViewerCountry: country,
		ViewerCity:    city,
		UserAgent:     userAgent,
		Device:        device,
		Browser:       browser,
		ViewSource:    NormalizeSource(source),
		ViewedAt:      time.Now(),
	}
	if ip != "" {
		view.ViewerIP = &ip
	}
	if referrer != "" {
		view.Referrer = &referrer
	}

	if err := database.DB.Create(&view).Error; err != nil {
		return nil, err
	}

	result := database.DB.Model(profile).UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if result.Error != nil {
		return nil, result.Error
	}

	return &RecordedView{
		ViewID:    view.ID,
		ProfileID: profile.ID,
		ViewCount: profile.ViewCount + 1,
	}, nil
}

// NormalizeSource coerces anything outside the enumerated set to
// "direct" rather than rejecting the view.
func NormalizeSource(source string) string {
	source = strings.ToLower(strings.TrimSpace(source))
	if !models.ValidSource(source) {
		return models.SourceDirect
	}
	return source
}

// ParseUserAgent derives a (device, browser) pair from the raw header.
// Unparseable input yields "Unknown" for both.
func ParseUserAgent(userAgent string) (device, browser string) {
	parsed := ua.Parse(userAgent)

	switch {
	case parsed.Mobile:
		device = "Mobile"
	case parsed.Tablet:
		device = "Tablet"
	case parsed.Bot:
		device = "Bot"
	case parsed.Desktop:
		device = "Desktop"
	default:
		device = "Unknown"
	}

	browser = parsed.Name
	if browser == "" {
		browser = "Unknown"
	}
	return device, browser
}

type SourceCount struct {
	Source     string  `json:"source"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

type CityCount struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Count   int    `json:"count"`
}

type DeviceCount struct {
	Device     string  `json:"device"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type BrowserCount struct {
	Browser string `json:"browser"`
	Count   int    `json:"count"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func (s *AnalyticsService) viewsSince(profileID uint, since time.Time) *gorm.DB {
	return database.DB.Model(&models.ProfileView{}).
		Where("profile_id = ? AND viewed_at >= ?", profileID, since)
}

// ViewsBySource groups the period's views by traffic source, each with its
// share of the period total rounded to two decimals.
func (s *AnalyticsService) ViewsBySource(profileID uint, since time.Time) (int, []SourceCount, error) {
	var rows []SourceCount
	err := s.viewsSince(profileID, since).
		Select("view_source AS source, COUNT(*) AS count").
		Group("view_source").
		Scan(&rows).Error
	if err != nil {
		return 0, nil, err
	}

	total := 0
	for _, row := range rows {
		total += row.Count
	}
	for i := range rows {
		rows[i].Percentage = percentage(rows[i].Count, total)
	}
	return total, rows, nil
}

// ViewsByLocation returns the top countries and (city, country) pairs,
// excluding views whose geo lookup came back empty.
func (s *AnalyticsService) ViewsByLocation(profileID uint, since time.Time, limit int) ([]CountryCount, []CityCount, error) {
	var countries []CountryCount
	err := s.viewsSince(profileID, since).
		Where("viewer_country IS NOT NULL").
		Select("viewer_country AS country, COUNT(*) AS count").
		Group("viewer_country").
		Order("count DESC").
		Limit(limit).
		Scan(&countries).Error
	if err != nil {
		return nil, nil, err
	}

	var cities []CityCount
	err = s.viewsSince(profileID, since).
		Where("viewer_city IS NOT NULL").
		Select("viewer_city AS city, viewer_country AS country, COUNT(*) AS count").
		Group("viewer_city, viewer_country").
		Order("count DESC").
		Limit(limit).
		Scan(&cities).Error
	if err != nil {
		return nil, nil, err
	}

	return countries, cities, nil
}

// ViewsByDevice breaks the period down by device (with percentages) and
// browser (top 10; the percentage denominator stays uncapped).
func (s *AnalyticsService) ViewsByDevice(profileID uint, since time.Time) (int, []DeviceCount, []BrowserCount, error) {
	var devices []DeviceCount
	err := s.viewsSince(profileID, since).
		Select("device, COUNT(*) AS count").
		Group("device").
		Order("count DESC").
		Scan(&devices).Error
	if err != nil {
		return 0, nil, nil, err
	}

	total := 0
	for _, row := range devices {
		total += row.Count
	}
	for i := range devices {
		devices[i].Percentage = percentage(devices[i].Count, total)
	}

	var browsers []BrowserCount
	err = s.viewsSince(profileID, since).
		Select("browser, COUNT(*) AS count").
		Group("browser").
		Order("count DESC").
		Limit(10).
		Scan(&browsers).Error
	if err != nil {
		return 0, nil, nil, err
	}

	return total, devices, browsers, nil
}

// ViewsOverTime returns one bucket per calendar day for the last `days`
// days, today included, with zero-count days filled in for charting.
func (s *AnalyticsService) ViewsOverTime(profileID uint, days int) ([]DailyCount, error) {
	start := startOfDay(time.Now()).AddDate(0, 0, -(days - 1))

	var rows []DailyCount
	err := s.viewsSince(profileID, start).
		Select("CAST(DATE(viewed_at) AS TEXT) AS date, COUNT(*) AS count").
		Group("DATE(viewed_at)").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Date] = row.Count
	}

	series := make([]DailyCount, 0, days)
	for d := 0; d < days; d++ {
		day := start.AddDate(0, 0, d).Format("2006-01-02")
		series = append(series, DailyCount{Date: day, Count: counts[day]})
	}
	return series, nil
}

// RecentViews pages through the raw event list, newest first. The viewer
// IP never leaves this layer: the JSON tag on the model drops it.
func (s *AnalyticsService) RecentViews(profileID uint, limit, offset int) (int64, []models.ProfileView, error) {
	var total int64
	err := database.DB.Model(&models.ProfileView{}).
		Where("profile_id = ?", profileID).
		Count(&total).Error
	if err != nil {
		return 0, nil, err
	}

	var views []models.ProfileView
	err = database.DB.
		Where("profile_id = ?", profileID).
		Order("viewed_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&views).Error
	if err != nil {
		return 0, nil, err
	}

	return total, views, nil
}

// Summary is the combined payload behind the main analytics endpoint.
type Summary struct {
	TotalViews int            `json:"total_views"`
	BySource   []SourceCount  `json:"by_source"`
	Countries  []CountryCount `json:"countries"`
	Devices    []DeviceCount  `json:"devices"`
	Browsers   []BrowserCount `json:"browsers"`
}

// Summarize runs the independent aggregates over one date range. The
// queries share nothing but the filter and could run concurrently; at
// this volume sequential is fine.
func (s *AnalyticsService) Summarize(profileID uint, start, end time.Time) (*Summary, error) {
	base := func() *gorm.DB {
		return database.DB.Model(&models.ProfileView{}).
			Where("profile_id = ? AND viewed_at >= ? AND viewed_at <= ?", profileID, start, end)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, err
	}

	var bySource []SourceCount
	err := base().
		Select("view_source AS source, COUNT(*) AS count").
		Group("view_source").
		Scan(&bySource).Error
	if err != nil {
		return nil, err
	}
	for i := range bySource {
		bySource[i].Percentage = percentage(bySource[i].Count, int(total))
	}

	var countries []CountryCount
	err = base().
		Where("viewer_country IS NOT NULL").
		Select("viewer_country AS country, COUNT(*) AS count").
		Group("viewer_country").
		Order("count DESC").
		Limit(10).
		Scan(&countries).Error
	if err != nil {
		return nil, err
	}

	var devices []DeviceCount
	err = base().
		Select("device, COUNT(*) AS count").
		Group("device").
		Order("count DESC").
		Scan(&devices).Error
	if err != nil {
		return nil, err
	}
	for i := range devices {
		devices[i].Percentage = percentage(devices[i].Count, int(total))
	}

	var browsers []BrowserCount
	err = base().
		Select("browser, COUNT(*) AS count").
		Group("browser").
		Order("count DESC").
		Limit(10).
		Scan(&browsers).Error
	if err != nil {
		return nil, err
	}

	return &Summary{
		TotalViews: int(total),
		BySource:   bySource,
		Countries:  countries,
		Devices:    devices,
		Browsers:   browsers,
	}, nil
}

// DeleteOldViews drops events older than now minus daysToKeep days for one
// profile and returns how many went away. There is no soft delete.
func (s *AnalyticsService) DeleteOldViews(profileID uint, daysToKeep int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -daysToKeep)

	result := database.DB.
		Where("profile_id = ? AND viewed_at < ?", profileID, cutoff).
		Delete(&models.ProfileView{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ProfileRollup is the per-profile slice of the account-wide summary.
type ProfileRollup struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Type          string `json:"type"`
	TotalViews    int    `json:"total_views"`
	ViewsInPeriod int    `json:"views_in_period"`
}

// UserRollup is the cross-profile summary for one account.
type UserRollup struct {
	Period             int             `json:"period"`
	TotalProfiles      int             `json:"total_profiles"`
	TotalViews         int             `json:"total_views"`
	TotalViewsInPeriod int             `json:"total_views_in_period"`
	BySource           []SourceCount   `json:"views_by_source"`
	Profiles           []ProfileRollup `json:"profiles"`
}

// RollupForUser aggregates across every profile the account owns.
func (s *AnalyticsService) RollupForUser(userID uint, days int) (*UserRollup, error) {
	var profiles []models.Profile
	err := database.DB.
		Where("user_id = ?", userID).
		Select("id, name, slug, profile_type, view_count").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}

	rollup := &UserRollup{
		Period:   days,
		BySource: []SourceCount{},
		Profiles: []ProfileRollup{},
	}
	if len(profiles) == 0 {
		return rollup, nil
	}

	profileIDs := make([]uint, 0, len(profiles))
	for _, p := range profiles {
		profileIDs = append(profileIDs, p.ID)
		rollup.TotalViews += p.ViewCount
	}
	rollup.TotalProfiles = len(profiles)

	since := time.Now().AddDate(0, 0, -days)

	var totalInPeriod int64
	err = database.DB.Model(&models.ProfileView{}).
		Where("profile_id IN ? AND viewed_at >= ?", profileIDs, since).
		Count(&totalInPeriod).Error
	if err != nil {
		return nil, err
	}
	rollup.TotalViewsInPeriod = int(totalInPeriod)

	err = database.DB.Model(&models.ProfileView{}).
		Where("profile_id IN ? AND viewed_at >= ?", profileIDs, since).
		Select("view_source AS source, COUNT(*) AS count").
		Group("view_source").
		Scan(&rollup.BySource).Error
	if err != nil {
		return nil, err
	}

	type idCount struct {
		ProfileID uint
		Count     int
	}
	var perProfile []idCount
	err = database.DB.Model(&models.ProfileView{}).
		Where("profile_id IN ? AND viewed_at >= ?", profileIDs, since).
		Select("profile_id, COUNT(*) AS count").
		Group("profile_id").
		Scan(&perProfile).Error
	if err != nil {
		return nil, err
	}

	inPeriod := make(map[uint]int, len(perProfile))
	for _, row := range perProfile {
		inPeriod[row.ProfileID] = row.Count
	}

	for _, p := range profiles {
		rollup.Profiles = append(rollup.Profiles, ProfileRollup{
			ID:            p.ID,
			Name:          p.Name,
			Slug:          p.Slug,
			Type:          p.ProfileType,
			TotalViews:    p.ViewCount,
			ViewsInPeriod: inPeriod[p.ID],
		})
	}

	return rollup, nil
}

// percentage is count/total*100 rounded to two decimals; zero when the
// denominator is zero.
func percentage(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*100*100) / 100
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
