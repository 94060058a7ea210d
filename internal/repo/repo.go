// Package repo is the gorm-backed persistence layer. Soft-delete
// filtering is never implicit: every account lookup takes an explicit
// includeDeleted flag so each call site states what it wants.
package repo

import "gorm.io/gorm"

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}
