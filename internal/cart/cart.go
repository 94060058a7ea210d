// Package cart holds the in-session shopping cart. A Store belongs to
// exactly one user session: it is constructed at request time, mutated
// synchronously and written back through its Storage. Mutations never
// fail; invalid quantities clamp instead of erroring.
package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/jmsantos/tindahan/internal/models"
)

// Line is one cart entry. Price, title and image are snapshots taken
// when the product was added; they are not re-fetched during the
// session so the displayed price stays stable through checkout.
type Line struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
}

// Storage persists cart lines across page loads.
type Storage interface {
	Load(ctx context.Context) ([]Line, error)
	Save(ctx context.Context, lines []Line) error
}

type Store struct {
	lines    []Line
	discount float64
}

func New() *Store {
	return &Store{}
}

func NewFromLines(lines []Line) *Store {
	s := &Store{lines: make([]Line, len(lines))}
	copy(s.lines, lines)
	return s
}

// AddItem puts the product in the cart. Adding a product that is
// already present increments its quantity instead of duplicating the
// line.
func (s *Store) AddItem(p models.Product) {
	for i := range s.lines {
		if s.lines[i].ProductID == p.ID {
			s.lines[i].Quantity++
			return
		}
	}
	s.lines = append(s.lines, Line{
		ProductID: p.ID,
		Title:     p.Title,
		Image:     p.Image,
		Price:     p.Price,
		Quantity:  1,
	})
}

// UpdateQuantity sets the line quantity exactly. Quantities below 1 are
// a no-op; dropping a line is an explicit RemoveItem, never implicit.
func (s *Store) UpdateQuantity(productID uuid.UUID, quantity int) {
	if quantity < 1 {
		return
	}
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity = quantity
			return
		}
	}
}

func (s *Store) RemoveItem(productID uuid.UUID) {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return
		}
	}
}

func (s *Store) Subtotal() float64 {
	var sum float64
	for _, l := range s.lines {
		sum += l.Price * float64(l.Quantity)
	}
	return sum
}

// Total is subtotal minus discount. Discount is always 0 today but the
// field stays wired through for future promo support.
func (s *Store) Total() float64 {
	return s.Subtotal() - s.discount
}

// ItemCount is the number of distinct lines, not the summed quantities.
// The navbar badge counts lines on purpose.
func (s *Store) ItemCount() int {
	return len(s.lines)
}

func (s *Store) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}
