package database

import (
	"fmt"
	"time"

	"github.com/LinkMeOrg/LinkMe-api/config"
	"github.com/LinkMeOrg/LinkMe-api/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect(cfg *config.Config, log *logrus.Logger) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	var err error
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		log.WithError(err).Warnf("Failed to connect to database (attempt %d/%d)", i+1, maxRetries)
		time.Sleep(time.Second * 3)
	}

	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database after multiple attempts")
	}

	log.Info("Connected to database")

	if err := Migrate(DB); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	log.Info("Database migration completed")
}

// Migrate creates or updates the schema for every model the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.SocialLink{},
		&models.ProfileView{},
	)
}
