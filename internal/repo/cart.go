package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jmsantos/tindahan/internal/cart"
	"github.com/jmsantos/tindahan/internal/models"
)

// CartStorage persists one user's cart lines. It implements
// cart.Storage; Save replaces the stored snapshot wholesale, which
// matches the single-owner session semantics of the cart.
type CartStorage struct {
	Repo   *GormRepo
	UserID uuid.UUID
}

func (s *CartStorage) Load(ctx context.Context) ([]cart.Line, error) {
	var items []models.CartItem
	if err := s.Repo.DB.WithContext(ctx).
		Where("user_id = ?", s.UserID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	lines := make([]cart.Line, len(items))
	for i, it := range items {
		lines[i] = cart.Line{
			ProductID: it.ProductID,
			Title:     it.Title,
			Image:     it.Image,
			Price:     it.Price,
			Quantity:  it.Quantity,
		}
	}
	return lines, nil
}

func (s *CartStorage) Save(ctx context.Context, lines []cart.Line) error {
	return s.Repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", s.UserID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		items := make([]models.CartItem, len(lines))
		for i, l := range lines {
			items[i] = models.CartItem{
				UserID:    s.UserID,
				ProductID: l.ProductID,
				Title:     l.Title,
				Image:     l.Image,
				Price:     l.Price,
				Quantity:  l.Quantity,
			}
		}
		return tx.Create(&items).Error
	})
}
