package hash

import "golang.org/x/crypto/bcrypt"

// Hasher is the password hashing capability. Implementations are
// swappable; the default is bcrypt.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// DefaultCost is high enough to resist offline brute force.
const DefaultCost = 12

type Bcrypt struct {
	Cost int
}

func NewBcrypt() *Bcrypt {
	return &Bcrypt{Cost: DefaultCost}
}

func (b *Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = DefaultCost
	}
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

func (b *Bcrypt) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
