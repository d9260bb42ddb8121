package db_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/matrimony-core/internal/db"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(database))
	return database
}

func TestSeedTestData(t *testing.T) {
	database := openTestDB(t)

	// seeding twice must not duplicate anything
	require.NoError(t, db.SeedTestData(database))
	require.NoError(t, db.SeedTestData(database))

	count := func(model any) int64 {
		var n int64
		require.NoError(t, database.Model(model).Count(&n).Error)
		return n
	}
	assert.EqualValues(t, 20, count(&db.Profile{}))
	assert.EqualValues(t, 20, count(&db.Moderation{}))
	assert.EqualValues(t, 5, count(&db.Payment{}))
	assert.Zero(t, count(&db.ProfileView{}))

	var gold []db.Moderation
	require.NoError(t, database.Where("subscription_status = ?", "gold").Find(&gold).Error)
	assert.Len(t, gold, 5)
	for _, m := range gold {
		assert.Equal(t, 60, m.ViewsLimit)
	}
}

func TestProfileViewPairIsUnique(t *testing.T) {
	database := openTestDB(t)

	require.NoError(t, database.Create(&db.ProfileView{ViewerUserID: 1, ViewedProfileUserID: 2}).Error)
	assert.Error(t, database.Create(&db.ProfileView{ViewerUserID: 1, ViewedProfileUserID: 2}).Error)
	require.NoError(t, database.Create(&db.ProfileView{ViewerUserID: 2, ViewedProfileUserID: 1}).Error)
}

func TestModerationBoosted(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name string
		m    db.Moderation
		want bool
	}{
		{"off", db.Moderation{}, false},
		{"no expiry", db.Moderation{BoostProfile: true}, true},
		{"active", db.Moderation{BoostProfile: true, BoostExpiresAt: &later}, true},
		{"expired", db.Moderation{BoostProfile: true, BoostExpiresAt: &earlier}, false},
		{"expiry without flag", db.Moderation{BoostExpiresAt: &later}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.m.Boosted(now))
		})
	}
}

func TestTrackedValues(t *testing.T) {
	city := "Pune"
	age := 30
	p := db.Profile{City: &city, Age: &age}

	vals := p.TrackedValues()
	require.Len(t, vals, 14)
	assert.Equal(t, "30", vals[1])
	assert.Equal(t, "Pune", vals[2])
	assert.Empty(t, vals[0])
}
