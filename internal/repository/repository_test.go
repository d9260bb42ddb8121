package repository_test

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/oggyb/matrimony-core/internal/db"
	"github.com/oggyb/matrimony-core/internal/domain"
	"github.com/oggyb/matrimony-core/internal/repository"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

func register(t *testing.T, repo *repository.ProfileRepository, name string) uint64 {
	t.Helper()
	p := &db.Profile{Name: name, Email: name + "@test.com", PasswordHash: "x"}
	_, err := repo.Register(context.Background(), p)
	require.NoError(t, err)
	return p.UserID
}

func TestRegisterCreatesPendingModeration(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	profiles := repository.NewProfileRepository(dbase)
	mods := repository.NewModerationRepository(dbase)

	id := register(t, profiles, "asha")

	m, err := mods.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(domain.ProfilePending), m.ProfileStatus)
	assert.Equal(t, 0, m.ViewsLimit)
	assert.Equal(t, domain.PackageFree, m.SubscriptionStatus)
}

func TestApprovedUserIDs(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	profiles := repository.NewProfileRepository(dbase)
	mods := repository.NewModerationRepository(dbase)

	statuses := []domain.ProfileStatus{
		domain.ProfileApproved, domain.ProfileApproved, domain.ProfilePending,
		domain.ProfileRejected, domain.ProfileTerminated, domain.ProfileApproved,
	}
	var ids []uint64
	for i, st := range statuses {
		id := register(t, profiles, fmt.Sprintf("m%d", i))
		require.NoError(t, mods.SetStatus(ctx, id, st, time.Now().UTC()))
		ids = append(ids, id)
	}

	got, err := mods.ApprovedUserIDs(ctx, nil, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{ids[0], ids[1], ids[5]}, got)

	got, err = mods.ApprovedUserIDs(ctx, &ids[0], 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{ids[1], ids[5]}, got)

	got, err = mods.ApprovedUserIDs(ctx, nil, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestViewInsertIsUniquePerPair(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewViewRepository(setupTestDB(t))

	inserted, err := repo.Insert(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Insert(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, inserted)

	n, err := repo.CountByViewer(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestViewInsertConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewViewRepository(setupTestDB(t))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Insert(ctx, 7, 8)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	n, err := repo.CountByViewer(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestListByViewerPagination(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewViewRepository(setupTestDB(t))

	for target := uint64(2); target <= 6; target++ {
		_, err := repo.Insert(ctx, 1, target)
		require.NoError(t, err)
	}

	page, next, err := repo.ListByViewer(ctx, 1, nil, 3)
	require.NoError(t, err)
	require.Len(t, page, 3)
	require.NotNil(t, next)

	rest, next2, err := repo.ListByViewer(ctx, 1, next, 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
	assert.Nil(t, next2)

	seen := map[uint64]bool{}
	for _, v := range append(page, rest...) {
		seen[v.ViewedProfileUserID] = true
	}
	assert.Len(t, seen, 5)
}

func TestLatestPayment(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPaymentRepository(setupTestDB(t))

	_, err := repo.Latest(ctx, 1)
	assert.True(t, repository.IsNotFound(err))

	for _, st := range []domain.PaymentStatus{domain.PaymentAccepted, domain.PaymentUnderReview} {
		require.NoError(t, repo.Create(ctx, &db.Payment{
			Reference:     uuid.NewString(),
			UserID:        1,
			Amount:        decimal.RequireFromString("999.00"),
			PackageType:   domain.PackageSilver,
			ViewsLimit:    25,
			PaymentStatus: string(st),
		}))
	}

	latest, err := repo.Latest(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, string(domain.PaymentUnderReview), latest.PaymentStatus)
	assert.Equal(t, "999.00", latest.Amount.StringFixed(2))
}

// TestLatestPaymentMissIsNotLogged: most members never paid, and every
// view checks their latest payment.
func TestLatestPaymentMissIsNotLogged(t *testing.T) {
	var buf bytes.Buffer
	database := setupTestDB(t).Session(&gorm.Session{
		Logger: gormlogger.New(log.New(&buf, "", 0), gormlogger.Config{LogLevel: gormlogger.Warn}),
	})
	repo := repository.NewPaymentRepository(database)

	_, err := repo.Latest(context.Background(), 42)
	assert.True(t, repository.IsNotFound(err))
	assert.Empty(t, buf.String())
}

func TestUpgradeNeverLowersViews(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	profiles := repository.NewProfileRepository(dbase)
	mods := repository.NewModerationRepository(dbase)
	id := register(t, profiles, "ravi")

	require.NoError(t, mods.UpgradePackage(ctx, id, domain.PackageGold, 60))
	m, _ := mods.Get(ctx, id)
	assert.Equal(t, 60, m.ViewsLimit)

	require.NoError(t, mods.AddViews(ctx, id, 10))
	require.NoError(t, mods.UpgradePackage(ctx, id, domain.PackageSilver, 25))
	m, _ = mods.Get(ctx, id)
	assert.Equal(t, 70, m.ViewsLimit)
	assert.Equal(t, domain.PackageSilver, m.SubscriptionStatus)

	require.NoError(t, mods.AssignPackage(ctx, id, domain.PackageGold, 60))
	m, _ = mods.Get(ctx, id)
	assert.Equal(t, 130, m.ViewsLimit)
}

func TestEraseCascades(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	profiles := repository.NewProfileRepository(dbase)
	views := repository.NewViewRepository(dbase)
	payments := repository.NewPaymentRepository(dbase)

	a := register(t, profiles, "a")
	b := register(t, profiles, "b")
	_, _ = views.Insert(ctx, a, b)
	_, _ = views.Insert(ctx, b, a)
	require.NoError(t, profiles.AddPhoto(ctx, &db.Photo{UserID: a, URL: "/a.jpg", IsMain: true}))
	require.NoError(t, payments.Create(ctx, &db.Payment{
		Reference: uuid.NewString(), UserID: a, Amount: decimal.NewFromInt(1),
		PackageType: domain.PackageSilver, PaymentStatus: string(domain.PaymentPending),
	}))

	require.NoError(t, profiles.Erase(ctx, a))

	_, err := profiles.Get(ctx, a)
	assert.True(t, repository.IsNotFound(err))
	n, _ := views.CountByViewer(ctx, b)
	assert.Equal(t, int64(0), n)
	var photos int64
	dbase.Model(&db.Photo{}).Count(&photos)
	assert.Equal(t, int64(0), photos)

	assert.True(t, repository.IsNotFound(profiles.Erase(ctx, a)))
}

func TestMainPhotos(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	profiles := repository.NewProfileRepository(dbase)
	a := register(t, profiles, "a")
	b := register(t, profiles, "b")

	require.NoError(t, profiles.AddPhoto(ctx, &db.Photo{UserID: a, URL: "/old.jpg", IsMain: true}))
	require.NoError(t, profiles.AddPhoto(ctx, &db.Photo{UserID: a, URL: "/new.jpg", IsMain: true}))
	require.NoError(t, profiles.AddPhoto(ctx, &db.Photo{UserID: b, URL: "/gallery.jpg"}))

	photos, err := profiles.MainPhotos(ctx, []uint64{a, b})
	require.NoError(t, err)
	assert.Equal(t, "/new.jpg", photos[a])
	_, ok := photos[b]
	assert.False(t, ok)
}
