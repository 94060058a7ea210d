package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmsantos/tindahan/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string, includeDeleted bool) (*models.User, error) {
	var user models.User
	q := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email)))
	if !includeDeleted {
		q = q.Where("is_deleted = ?", false)
	}
	if err := q.First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindUserByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*models.User, error) {
	var user models.User
	q := r.DB.WithContext(ctx).Where("id = ?", id)
	if !includeDeleted {
		q = q.Where("is_deleted = ?", false)
	}
	if err := q.First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) FindUserWithWishlist(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Preload("Wishlist").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) SaveUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Save(u).Error
}

func (r *GormRepo) UpdateUserFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RecordFailedLogin accounts for one failed attempt. The increment is a
// DB-side read-modify-write so two concurrent failures are both counted.
// Crossing maxAttempts sets the lock; an already expired lock restarts
// the counter at 1 instead.
func (r *GormRepo) RecordFailedLogin(ctx context.Context, id uuid.UUID, now time.Time, maxAttempts int, lockFor time.Duration) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.Where("id = ?", id).First(&u).Error; err != nil {
			return err
		}

		if u.LockUntil != nil && u.LockUntil.Before(now) {
			return tx.Model(&models.User{}).Where("id = ?", id).
				Updates(map[string]any{"login_attempts": 1, "lock_until": nil}).Error
		}

		if err := tx.Model(&models.User{}).Where("id = ?", id).
			UpdateColumn("login_attempts", gorm.Expr("login_attempts + ?", 1)).Error; err != nil {
			return err
		}

		if err := tx.Where("id = ?", id).First(&u).Error; err != nil {
			return err
		}
		if u.LoginAttempts >= maxAttempts && u.LockUntil == nil {
			lockUntil := now.Add(lockFor)
			return tx.Model(&models.User{}).Where("id = ?", id).
				UpdateColumn("lock_until", lockUntil).Error
		}
		return nil
	})
}

// ResetLoginAttempts clears the security counters after a successful
// password match and stamps the login time.
func (r *GormRepo) ResetLoginAttempts(ctx context.Context, id uuid.UUID, now time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]any{
			"login_attempts": 0,
			"lock_until":     nil,
			"last_login":     now,
		}).Error
}

func (r *GormRepo) ListUsers(ctx context.Context, includeDeleted bool) ([]models.User, error) {
	var users []models.User
	q := r.DB.WithContext(ctx).Order("created_at DESC")
	if !includeDeleted {
		q = q.Where("is_deleted = ?", false)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SoftDeleteUser marks the account deleted. The row stays; default
// lookups stop seeing it.
func (r *GormRepo) SoftDeleteUser(ctx context.Context, id uuid.UUID, now time.Time) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{"is_deleted": true, "deleted_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type DashboardStats struct {
	TotalUsers       int64            `json:"totalUsers"`
	ActiveUsers      int64            `json:"activeUsers"`
	NewUsersThisMonth int64           `json:"newUsersThisMonth"`
	UsersByRole      map[string]int64 `json:"usersByRole"`
}

func (r *GormRepo) UserDashboardStats(ctx context.Context, now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{UsersByRole: map[string]int64{}}
	db := r.DB.WithContext(ctx)

	if err := db.Model(&models.User{}).
		Where("is_deleted = ?", false).
		Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.User{}).
		Where("is_deleted = ? AND status = ?", false, models.StatusActive).
		Count(&stats.ActiveUsers).Error; err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if err := db.Model(&models.User{}).
		Where("is_deleted = ? AND created_at >= ?", false, monthStart).
		Count(&stats.NewUsersThisMonth).Error; err != nil {
		return nil, err
	}

	var byRole []struct {
		Role  string
		Count int64
	}
	if err := db.Model(&models.User{}).
		Select("role, count(*) as count").
		Where("is_deleted = ?", false).
		Group("role").
		Scan(&byRole).Error; err != nil {
		return nil, err
	}
	for _, rc := range byRole {
		stats.UsersByRole[rc.Role] = rc.Count
	}

	return stats, nil
}

func (r *GormRepo) WishlistContains(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Table("user_wishlist").
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) AddToWishlist(ctx context.Context, user *models.User, product *models.Product) error {
	return r.DB.WithContext(ctx).Model(user).Association("Wishlist").Append(product)
}

func (r *GormRepo) RemoveFromWishlist(ctx context.Context, user *models.User, product *models.Product) error {
	return r.DB.WithContext(ctx).Model(user).Association("Wishlist").Delete(product)
}
