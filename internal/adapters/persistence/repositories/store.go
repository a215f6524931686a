package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// gormStore implements Store on top of a gorm connection
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by db
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Books() BookRepository {
	return NewBookRepository(s.db)
}

func (s *gormStore) Members() MemberRepository {
	return NewMemberRepository(s.db)
}

func (s *gormStore) Transactions() TransactionRepository {
	return NewTransactionRepository(s.db)
}

func (s *gormStore) Users() UserRepository {
	return NewUserRepository(s.db)
}

// WithTx runs fn inside a database transaction; any error rolls it back
func (s *gormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// Ping checks the underlying connection
func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// likePattern builds a case-insensitive contains pattern
func likePattern(search string) string {
	return "%" + search + "%"
}
