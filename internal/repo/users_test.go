package repo

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jmsantos/tindahan/internal/models"
)

func initTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.CartItem{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return New(db)
}

func seedUser(t *testing.T, r *GormRepo, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "Test User", Email: email, PasswordHash: "x"}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func TestRecordFailedLogin_LocksAtThreshold(t *testing.T) {
	r := initTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	u := seedUser(t, r, "a@x.com")

	for i := 1; i <= 4; i++ {
		require.NoError(t, r.RecordFailedLogin(ctx, u.ID, now, 5, 2*time.Hour))
		got, err := r.FindUserByID(ctx, u.ID, false)
		require.NoError(t, err)
		assert.Equal(t, i, got.LoginAttempts)
		assert.Nil(t, got.LockUntil, "no lock before the threshold")
	}

	require.NoError(t, r.RecordFailedLogin(ctx, u.ID, now, 5, 2*time.Hour))
	got, err := r.FindUserByID(ctx, u.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 5, got.LoginAttempts)
	require.NotNil(t, got.LockUntil)
	assert.WithinDuration(t, now.Add(2*time.Hour), *got.LockUntil, time.Second)
	assert.True(t, got.IsLocked(now))
	assert.False(t, got.IsLocked(now.Add(3*time.Hour)))
}

func TestRecordFailedLogin_ExpiredLockRestartsAtOne(t *testing.T) {
	r := initTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	u := seedUser(t, r, "a@x.com")
	for i := 0; i < 5; i++ {
		require.NoError(t, r.RecordFailedLogin(ctx, u.ID, now, 5, 2*time.Hour))
	}

	later := now.Add(3 * time.Hour)
	require.NoError(t, r.RecordFailedLogin(ctx, u.ID, later, 5, 2*time.Hour))

	got, err := r.FindUserByID(ctx, u.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LoginAttempts)
	assert.Nil(t, got.LockUntil)
}

func TestResetLoginAttempts(t *testing.T) {
	r := initTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	u := seedUser(t, r, "a@x.com")
	for i := 0; i < 5; i++ {
		require.NoError(t, r.RecordFailedLogin(ctx, u.ID, now, 5, 2*time.Hour))
	}

	require.NoError(t, r.ResetLoginAttempts(ctx, u.ID, now))

	got, err := r.FindUserByID(ctx, u.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 0, got.LoginAttempts)
	assert.Nil(t, got.LockUntil)
	require.NotNil(t, got.LastLogin)
	assert.WithinDuration(t, now, *got.LastLogin, time.Second)
}

func TestFindUserByEmail_SoftDeleteFilter(t *testing.T) {
	r := initTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, r, "a@x.com")
	require.NoError(t, r.SoftDeleteUser(ctx, u.ID, time.Now()))

	_, err := r.FindUserByEmail(ctx, "a@x.com", false)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := r.FindUserByEmail(ctx, "a@x.com", true)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
	require.NotNil(t, got.DeletedAt)
}

func TestFindUserByEmail_NormalizesLookup(t *testing.T) {
	r := initTestRepo(t)
	ctx := context.Background()

	seedUser(t, r, "MiXeD@X.Com")

	got, err := r.FindUserByEmail(ctx, "  mixed@x.com ", false)
	require.NoError(t, err)
	assert.Equal(t, "mixed@x.com", got.Email)
}

func TestListUsers_SoftDeleteFilter(t *testing.T) {
	r := initTestRepo(t)
	ctx := context.Background()

	seedUser(t, r, "a@x.com")
	b := seedUser(t, r, "b@x.com")
	require.NoError(t, r.SoftDeleteUser(ctx, b.ID, time.Now()))

	users, err := r.ListUsers(ctx, false)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a@x.com", users[0].Email)

	all, err := r.ListUsers(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateUserFields_MissingUser(t *testing.T) {
	r := initTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, r, "a@x.com")
	require.NoError(t, r.SoftDeleteUser(ctx, u.ID, time.Now()))

	err := r.UpdateUserFields(ctx, u.ID, map[string]any{"name": "New Name"})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
