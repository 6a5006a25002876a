package database

import (
	"encoding/json"
	"log"
	"time"

	"dojolibre/config"
	"dojolibre/internal/domain"
	"dojolibre/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Location{},
		&models.AttendanceRecord{},
		&models.Message{},
		&models.Notification{},
		&models.SubscriptionPlan{},
		&models.BillingRecord{},
		&models.Follow{},
		&models.Block{},
		&models.AdminInvite{},
		&models.ChangelogEntry{},
	)
}

// SeedSuperAdmin creates the bootstrap SUPER_ADMIN account if no account
// with that role exists yet. Credentials must be rotated after first login.
func SeedSuperAdmin(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", domain.RoleSuperAdmin).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("change-me-now"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[seed] super admin hash: %v", err)
		return
	}
	u := &models.User{
		Name:         "Super Admin",
		Email:        "admin@dojolibre.local",
		PasswordHash: string(hash),
		Role:         domain.RoleSuperAdmin,
		IsActive:     true,
		MemberSince:  time.Now(),
	}
	if err := db.Create(u).Error; err != nil {
		log.Printf("[seed] super admin: %v", err)
		return
	}
	log.Printf("[seed] created super admin %s", u.Email)
}

// SeedPlans inserts the three default membership tiers when the plan table
// is empty.
func SeedPlans(db *gorm.DB) {
	var count int64
	db.Model(&models.SubscriptionPlan{}).Count(&count)
	if count > 0 {
		return
	}
	defaults := []struct {
		tier, name string
		price      float64
		features   []string
	}{
		{domain.TierBasic, "Basic", 29.99, []string{
			"Access to all locations",
			"Basic equipment usage",
			"Standard hours access",
			"Mobile app access",
		}},
		{domain.TierPro, "Pro", 49.99, []string{
			"All Basic features",
			"Premium equipment access",
			"Extended hours access",
			"Guest passes (2/month)",
			"Priority booking",
			"Fitness tracking",
		}},
		{domain.TierPremium, "Premium", 79.99, []string{
			"All Pro features",
			"Unlimited guest passes",
			"24/7 access",
			"Personal training sessions",
			"Nutrition consultation",
			"Access to exclusive events",
			"Priority support",
		}},
	}
	for _, p := range defaults {
		features, _ := json.Marshal(p.features)
		plan := &models.SubscriptionPlan{
			Tier:     p.tier,
			Name:     p.name,
			Price:    p.price,
			Features: datatypes.JSON(features),
			IsActive: true,
		}
		if err := db.Create(plan).Error; err != nil {
			log.Printf("[seed] plan %s: %v", p.tier, err)
		}
	}
	log.Printf("[seed] created default subscription plans")
}
