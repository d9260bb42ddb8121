// Package apptest builds an AppContext backed by in-memory SQLite and
// miniredis for service tests.
package apptest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/matrimony-core/internal/app"
	"github.com/oggyb/matrimony-core/internal/cache"
	"github.com/oggyb/matrimony-core/internal/config"
	"github.com/oggyb/matrimony-core/internal/db"
	"github.com/oggyb/matrimony-core/internal/domain"
	"github.com/oggyb/matrimony-core/internal/logger"
	"github.com/oggyb/matrimony-core/internal/repository"
)

// Env is an isolated DB + Redis pair wired into an AppContext.
type Env struct {
	App   *app.AppContext
	Redis *miniredis.Miniredis
	// Clock is the time returned by App.Now. Tests may move it.
	Clock time.Time
}

// New spins up a fresh environment. Each call gets its own database.
func New(t *testing.T) *Env {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	dbase, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(dbase))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	env := &Env{Redis: mr, Clock: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	env.App = app.New(dbase, cache.NewRedisCache(cfg), logger.Discard(), cfg)
	env.App.Now = func() time.Time { return env.Clock }
	return env
}

// Member describes a seeded profile.
type Member struct {
	Name       string
	Status     domain.ProfileStatus
	ViewsLimit int
	Verified   bool
	// BoostUntil, when non-zero, sets the boost flag with that expiry.
	BoostUntil time.Time
	// Filled is the number of tracked attributes to populate (0..14).
	Filled int
	Photo  bool
}

// AddMember registers a profile and adjusts its moderation record.
func (e *Env) AddMember(t *testing.T, m Member) uint64 {
	t.Helper()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	p := &db.Profile{Name: m.Name, Email: m.Name + "@test.com", PasswordHash: string(hash)}
	fill(p, m.Filled)

	profiles := repository.NewProfileRepository(e.App.DB)
	_, err = profiles.Register(ctx, p)
	require.NoError(t, err)

	if m.Photo {
		require.NoError(t, profiles.AddPhoto(ctx, &db.Photo{UserID: p.UserID, URL: "/photos/" + m.Name + ".jpg", IsMain: true}))
	}

	status := m.Status
	if status == "" {
		status = domain.ProfileApproved
	}
	updates := map[string]any{
		"profile_status": string(status),
		"views_limit":    m.ViewsLimit,
		"verified_badge": m.Verified,
	}
	if !m.BoostUntil.IsZero() {
		updates["boost_profile"] = true
		updates["boost_expires_at"] = m.BoostUntil
	}
	require.NoError(t, e.App.DB.Model(&db.Moderation{}).Where("user_id = ?", p.UserID).Updates(updates).Error)
	return p.UserID
}

// AddPayment inserts a payment record for userID in the given state.
func (e *Env) AddPayment(t *testing.T, userID uint64, item string, status domain.PaymentStatus) *db.Payment {
	t.Helper()
	offer, err := domain.OfferFor(item)
	require.NoError(t, err)

	p := &db.Payment{
		Reference:     uuid.NewString(),
		UserID:        userID,
		Amount:        offer.Amount,
		PackageType:   offer.ItemID,
		ViewsLimit:    offer.ViewsLimit,
		PaymentStatus: string(status),
	}
	require.NoError(t, repository.NewPaymentRepository(e.App.DB).Create(context.Background(), p))
	return p
}

// Moderation reloads the moderation record of userID.
func (e *Env) Moderation(t *testing.T, userID uint64) *db.Moderation {
	t.Helper()
	m, err := repository.NewModerationRepository(e.App.DB).Get(context.Background(), userID)
	require.NoError(t, err)
	return m
}

func fill(p *db.Profile, n int) {
	setters := []func(){
		func() { p.Gender = ptr("female") },
		func() { age := 29; p.Age = &age },
		func() { p.City = ptr("Pune") },
		func() { p.State = ptr("Maharashtra") },
		func() { p.Country = ptr("India") },
		func() { p.Religion = ptr("Hindu") },
		func() { p.Caste = ptr("Any") },
		func() { p.MotherTongue = ptr("Marathi") },
		func() { p.Education = ptr("B.Tech") },
		func() { p.Occupation = ptr("Engineer") },
		func() { p.AnnualIncome = ptr("10-15 LPA") },
		func() { p.Height = ptr("5'6\"") },
		func() { p.MaritalStatus = ptr("never_married") },
		func() { p.About = ptr("Loves trekking.") },
	}
	for i := 0; i < n && i < len(setters); i++ {
		setters[i]()
	}
}

func ptr(s string) *string { return &s }
