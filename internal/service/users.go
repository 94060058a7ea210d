package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmsantos/tindahan/internal/apperr"
	"github.com/jmsantos/tindahan/internal/models"
	"github.com/jmsantos/tindahan/internal/repo"
)

// UserService covers profile self-service and the admin user management
// surface. Deletion is always soft: the row stays, lookups stop seeing
// it.
type UserService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

func NewUserService(r *repo.GormRepo) *UserService {
	return &UserService{Repo: r, Now: time.Now}
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *UserService) Profile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.Repo.FindUserWithWishlist(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperr.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

// ProfileUpdate carries the fields a user may change about themselves.
// Role and status are deliberately absent.
type ProfileUpdate struct {
	Name    *string         `json:"name"`
	Phone   *string         `json:"phone"`
	Address *models.Address `json:"address"`
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, in ProfileUpdate) (*models.User, error) {
	fields := map[string]any{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("name cannot be empty: %w", apperr.ErrValidation)
		}
		fields["name"] = *in.Name
	}
	if in.Phone != nil {
		fields["phone"] = *in.Phone
	}
	if in.Address != nil {
		fields["addr_street"] = in.Address.Street
		fields["addr_barangay"] = in.Address.Barangay
		fields["addr_city"] = in.Address.City
		fields["addr_province"] = in.Address.Province
		fields["addr_postal_code"] = in.Address.PostalCode
		fields["addr_country"] = in.Address.Country
	}

	if len(fields) > 0 {
		if err := s.Repo.UpdateUserFields(ctx, id, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("user not found: %w", apperr.ErrNotFound)
			}
			return nil, err
		}
	}
	return s.Profile(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx, false)
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.Profile(ctx, id)
}

// AdminUpdate is the admin-only mutation set; it extends the profile
// fields with email, role and status.
type AdminUpdate struct {
	Name    *string         `json:"name"`
	Email   *string         `json:"email"`
	Phone   *string         `json:"phone"`
	Role    *string         `json:"role"`
	Status  *string         `json:"status"`
	Address *models.Address `json:"address"`
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, in AdminUpdate) (*models.User, error) {
	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Email != nil {
		fields["email"] = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		fields["phone"] = *in.Phone
	}
	if in.Role != nil {
		if !models.ValidRole(*in.Role) {
			return nil, fmt.Errorf("unknown role %q: %w", *in.Role, apperr.ErrValidation)
		}
		fields["role"] = *in.Role
	}
	if in.Status != nil {
		if !models.ValidStatus(*in.Status) {
			return nil, fmt.Errorf("unknown status %q: %w", *in.Status, apperr.ErrValidation)
		}
		fields["status"] = *in.Status
	}
	if in.Address != nil {
		fields["addr_street"] = in.Address.Street
		fields["addr_barangay"] = in.Address.Barangay
		fields["addr_city"] = in.Address.City
		fields["addr_province"] = in.Address.Province
		fields["addr_postal_code"] = in.Address.PostalCode
		fields["addr_country"] = in.Address.Country
	}

	if len(fields) > 0 {
		if err := s.Repo.UpdateUserFields(ctx, id, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("user not found: %w", apperr.ErrNotFound)
			}
			return nil, err
		}
	}
	return s.Profile(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.SoftDeleteUser(ctx, id, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperr.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *UserService) DashboardStats(ctx context.Context) (*repo.DashboardStats, error) {
	return s.Repo.UserDashboardStats(ctx, s.now())
}

func (s *UserService) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) (*models.User, error) {
	user, err := s.Repo.FindUserByID(ctx, userID, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperr.ErrNotFound)
		}
		return nil, err
	}

	product, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product not found: %w", apperr.ErrNotFound)
		}
		return nil, err
	}

	exists, err := s.Repo.WishlistContains(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("product already in wishlist: %w", apperr.ErrValidation)
	}

	if err := s.Repo.AddToWishlist(ctx, user, product); err != nil {
		return nil, err
	}
	return s.Profile(ctx, userID)
}

func (s *UserService) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) (*models.User, error) {
	user, err := s.Repo.FindUserByID(ctx, userID, false)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperr.ErrNotFound)
		}
		return nil, err
	}

	product, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product not found: %w", apperr.ErrNotFound)
		}
		return nil, err
	}

	if err := s.Repo.RemoveFromWishlist(ctx, user, product); err != nil {
		return nil, err
	}
	return s.Profile(ctx, userID)
}
