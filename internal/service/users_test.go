package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmsantos/tindahan/internal/apperr"
	"github.com/jmsantos/tindahan/internal/models"
	"github.com/jmsantos/tindahan/internal/repo"
)

func newTestUserService(t *testing.T) (*UserService, *Guard, *testClock) {
	t.Helper()
	g, clock := newTestGuard(t)
	s := NewUserService(g.Repo)
	s.Now = clock.Now
	return s, g, clock
}

func strptr(s string) *string { return &s }

func seedProduct(t *testing.T, r *repo.GormRepo, title string, price float64) *models.Product {
	t.Helper()
	p := &models.Product{Title: title, Price: price, Stock: 10}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func TestUpdateProfile(t *testing.T) {
	s, g, _ := newTestUserService(t)
	ctx := context.Background()

	user := register(t, g, "a@x.com", "secret1")

	updated, err := s.UpdateProfile(ctx, user.ID, ProfileUpdate{
		Name:  strptr("Maria Clara"),
		Phone: strptr("+63-917-555-0100"),
		Address: &models.Address{
			Street:   "123 Rizal St",
			City:     "Quezon City",
			Province: "Metro Manila",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Maria Clara", updated.Name)
	assert.Equal(t, "+63-917-555-0100", updated.Phone)
	assert.Equal(t, "Quezon City", updated.Address.City)

	_, err = s.UpdateProfile(ctx, user.ID, ProfileUpdate{Name: strptr("   ")})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAdminUpdate_RoleAndStatusValidation(t *testing.T) {
	s, g, _ := newTestUserService(t)
	ctx := context.Background()

	user := register(t, g, "a@x.com", "secret1")

	_, err := s.Update(ctx, user.ID, AdminUpdate{Role: strptr("superuser")})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.Update(ctx, user.ID, AdminUpdate{Status: strptr("banned")})
	require.ErrorIs(t, err, apperr.ErrValidation)

	updated, err := s.Update(ctx, user.ID, AdminUpdate{
		Role:   strptr(models.RoleModerator),
		Status: strptr(models.StatusSuspended),
		Email:  strptr("New@X.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, updated.Role)
	assert.Equal(t, models.StatusSuspended, updated.Status)
	assert.Equal(t, "new@x.com", updated.Email)
}

func TestDelete_SoftDeleteHidesUser(t *testing.T) {
	s, g, _ := newTestUserService(t)
	ctx := context.Background()

	user := register(t, g, "a@x.com", "secret1")
	register(t, g, "b@x.com", "secret1")

	require.NoError(t, s.Delete(ctx, user.ID))

	_, err := s.Get(ctx, user.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	users, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "b@x.com", users[0].Email)

	// Deleting twice is a not-found, not a silent success.
	err = s.Delete(ctx, user.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDashboardStats(t *testing.T) {
	s, g, clock := newTestUserService(t)
	ctx := context.Background()

	register(t, g, "a@x.com", "secret1")
	b := register(t, g, "b@x.com", "secret1")
	c := register(t, g, "c@x.com", "secret1")

	_, err := s.Update(ctx, b.ID, AdminUpdate{
		Role:   strptr(models.RoleAdmin),
		Status: strptr(models.StatusInactive),
	})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, c.ID))

	// Move the clock into next month so nobody counts as new.
	clock.Advance(32 * 24 * time.Hour)

	stats, err := s.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.ActiveUsers)
	assert.Equal(t, int64(0), stats.NewUsersThisMonth)
	assert.Equal(t, int64(1), stats.UsersByRole[models.RoleCustomer])
	assert.Equal(t, int64(1), stats.UsersByRole[models.RoleAdmin])
}

func TestWishlist(t *testing.T) {
	s, g, _ := newTestUserService(t)
	ctx := context.Background()

	user := register(t, g, "a@x.com", "secret1")
	product := seedProduct(t, g.Repo, "Barong Tagalog", 2500)

	updated, err := s.AddToWishlist(ctx, user.ID, product.ID)
	require.NoError(t, err)
	require.Len(t, updated.Wishlist, 1)
	assert.Equal(t, product.ID, updated.Wishlist[0].ID)

	_, err = s.AddToWishlist(ctx, user.ID, product.ID)
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.AddToWishlist(ctx, user.ID, uuid.New())
	require.ErrorIs(t, err, apperr.ErrNotFound)

	updated, err = s.RemoveFromWishlist(ctx, user.ID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Wishlist)
}
