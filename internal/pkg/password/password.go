package password

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the bcrypt cost used for stored credentials
	DefaultCost = 10
	// MaxBytes is the longest password bcrypt accepts, in bytes
	MaxBytes = 72
)

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// Hash hashes a password using bcrypt
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// TooLong reports whether password exceeds the bcrypt input limit
func TooLong(password string) bool {
	return len(password) > MaxBytes
}

// Verify compares a password with a hash.
// An empty hash never matches but still costs one comparison, so callers
// can pass "" for unknown accounts.
func Verify(password, hash string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(fallbackHash(), []byte(password))
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func fallbackHash() []byte {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("libraryhub-unknown-account"), DefaultCost)
	})
	return dummyHash
}
