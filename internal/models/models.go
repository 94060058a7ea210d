package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleCustomer  = "customer"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
	StatusPending   = "pending"
)

func ValidRole(r string) bool {
	return r == RoleCustomer || r == RoleAdmin || r == RoleModerator
}

func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusInactive || s == StatusSuspended || s == StatusPending
}

type Address struct {
	Street     string `json:"street,omitempty"`
	Barangay   string `json:"barangay,omitempty"`
	City       string `json:"city,omitempty"`
	Province   string `json:"province,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// User is the persisted account record. The credential hash, the lock
// timestamp and the soft-delete fields never reach a client response.
type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"              json:"id"`
	Name          string     `gorm:"not null"                          json:"name"`
	Email         string     `gorm:"uniqueIndex;not null"              json:"email"`
	PasswordHash  string     `gorm:"not null"                          json:"-"`
	Phone         string     `json:"phone,omitempty"`
	Address       Address    `gorm:"embedded;embeddedPrefix:addr_"     json:"address"`
	Role          string     `gorm:"not null;default:customer;index"   json:"role"`
	Status        string     `gorm:"not null;default:active;index"     json:"status"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	LoginAttempts int        `gorm:"not null;default:0"                json:"-"`
	LockUntil     *time.Time `json:"-"`
	Wishlist      []Product  `gorm:"many2many:user_wishlist"           json:"wishlist,omitempty"`
	IsDeleted     bool       `gorm:"not null;default:false;index"      json:"-"`
	DeletedAt     *time.Time `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsLocked reports whether the account lock is still in force at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null"             json:"title"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null"             json:"price"`
	Image       string    `json:"image"`
	Brand       string    `json:"brand"`
	Category    string    `gorm:"index"                json:"category"`
	Stock       uint      `json:"stock"`
	Rating      float64   `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CartItem is the persisted snapshot of one cart line. Price, title and
// image are copied from the product at add time and stay fixed for the
// session.
type CartItem struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"   json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"   json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"         json:"product_id"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`
	Price     float64   `gorm:"not null"                   json:"price"`
	Quantity  int       `gorm:"not null;default:1;check:quantity>0" json:"quantity"`
}
