package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	seedCities    = []string{"Mumbai", "Pune", "Chennai", "Kochi", "Jaipur", "Lucknow"}
	seedReligions = []string{"Hindu", "Muslim", "Christian", "Sikh", "Jain"}
	seedEducation = []string{"B.Tech", "MBA", "MBBS", "B.Com", "M.Sc"}
	seedStatuses  = []string{"approved", "approved", "approved", "pending", "rejected", "terminated"}
)

// SeedTestData resets the database and populates it with demo members.
//
// Behavior:
//  1. Clears profile_views, payments, photos, moderations and profiles.
//  2. Creates 20 members (10 male, 10 female) with hashed passwords and a
//     random subset of demographic attributes filled in.
//  3. Gives every member a moderation record (mostly approved), some a main
//     photo, verified badge or boost, and a few an accepted package payment.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if err := clearAll(db); err != nil {
		return err
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE profiles AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE payments AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name IN ('profiles', 'payments', 'photos', 'moderations')")
	}

	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	for i := 1; i <= 20; i++ {
		gender := "male"
		if i > 10 {
			gender = "female"
		}
		age := 22 + r.Intn(15)

		p := Profile{
			Name:         fmt.Sprintf("Member %d", i),
			Email:        fmt.Sprintf("member%d@example.com", i),
			PasswordHash: string(hash),
			Gender:       &gender,
			Age:          &age,
		}
		if r.Intn(100) < 80 {
			p.City = ptr(seedCities[r.Intn(len(seedCities))])
		}
		if r.Intn(100) < 70 {
			p.Religion = ptr(seedReligions[r.Intn(len(seedReligions))])
		}
		if r.Intn(100) < 60 {
			p.Education = ptr(seedEducation[r.Intn(len(seedEducation))])
		}
		if r.Intn(100) < 40 {
			p.About = ptr("Family-oriented, loves travel and music.")
		}
		if err := db.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}

		mod := Moderation{
			UserID:             p.UserID,
			ProfileStatus:      seedStatuses[r.Intn(len(seedStatuses))],
			SubscriptionStatus: "free",
			VerifiedBadge:      r.Intn(100) < 25,
		}
		if r.Intn(100) < 20 {
			expires := now.AddDate(0, 0, 30)
			mod.BoostProfile = true
			mod.BoostExpiresAt = &expires
		}

		// every 4th member bought the gold package
		if i%4 == 0 {
			mod.SubscriptionStatus = "gold"
			mod.ViewsLimit = 60
			reviewed := now.Add(-time.Hour)
			pay := Payment{
				Reference:     uuid.NewString(),
				UserID:        p.UserID,
				Amount:        decimal.RequireFromString("1999.00"),
				PackageType:   "gold",
				ViewsLimit:    60,
				PaymentStatus: "accepted",
				ReviewedAt:    &reviewed,
			}
			if err := db.Create(&pay).Error; err != nil {
				return fmt.Errorf("failed to seed payment: %w", err)
			}
		}
		if err := db.Create(&mod).Error; err != nil {
			return fmt.Errorf("failed to seed moderation: %w", err)
		}

		if r.Intn(100) < 60 {
			photo := Photo{UserID: p.UserID, URL: fmt.Sprintf("/media/%d/main.jpg", p.UserID), IsMain: true}
			if err := db.Create(&photo).Error; err != nil {
				return fmt.Errorf("failed to seed photo: %w", err)
			}
		}
	}
	log.Println("Seeded 20 members.")

	return nil
}

func clearAll(db *gorm.DB) error {
	for _, table := range []string{"profile_views", "payments", "photos", "moderations", "profiles"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
