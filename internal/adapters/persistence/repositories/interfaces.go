package repositories

import (
	"context"
	"iter"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/core/domain"
)

// Store groups the repositories and owns the transaction boundary.
// Repositories obtained from the Store passed to WithTx's callback
// participate in that transaction.
type Store interface {
	Books() BookRepository
	Members() MemberRepository
	Transactions() TransactionRepository
	Users() UserRepository
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

// BookFilter narrows book listings
type BookFilter struct {
	Search   string
	Status   domain.BookStatus
	Category string
}

// MemberFilter narrows member listings
type MemberFilter struct {
	Search string
	Status domain.MemberStatus
}

// TransactionFilter narrows transaction listings
type TransactionFilter struct {
	Search   string
	Type     domain.TxType
	Status   domain.TxStatus
	MemberID uint
	BookID   uint
}

// BookRepository defines book repository interface
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	// Update writes catalog fields only; status is left untouched.
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter BookFilter, offset, limit int) ([]*models.Book, int64, error)
	All(ctx context.Context) ([]*models.Book, error)
	// MarkBorrowed flips an Available book to Borrowed and reports whether it did.
	MarkBorrowed(ctx context.Context, id uint) (bool, error)
	MarkAvailable(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context) (map[domain.BookStatus]int64, error)
}

// MemberRepository defines member repository interface
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error)
	// Update writes profile fields; membership ID, join date and loan count are untouched.
	Update(ctx context.Context, member *models.Member) error
	SetMembershipID(ctx context.Context, id uint, membershipID string) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter MemberFilter, offset, limit int) ([]*models.Member, int64, error)
	All(ctx context.Context) ([]*models.Member, error)
	IncrementBorrowed(ctx context.Context, id uint) error
	// DecrementBorrowed never takes the count below zero.
	DecrementBorrowed(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context) (map[domain.MemberStatus]int64, error)
}

// TransactionRepository defines transaction repository interface
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id uint) (*models.Transaction, error)
	List(ctx context.Context, filter TransactionFilter, offset, limit int) ([]*models.Transaction, int64, error)
	All(ctx context.Context) ([]*models.Transaction, error)
	RecentBorrows(ctx context.Context, limit int) ([]*models.Transaction, error)
	Since(ctx context.Context, fromDate string) ([]*models.Transaction, error)
	// CloseBorrow completes an open borrow row and reports whether it did.
	CloseBorrow(ctx context.Context, id uint, returnDate string) (bool, error)
	// Overdue yields open borrows due before today in id order.
	// Each range over the sequence re-reads the store.
	Overdue(ctx context.Context, today string) iter.Seq2[*models.Transaction, error]
	CountOverdue(ctx context.Context, today string) (int64, error)
	MarkOverdue(ctx context.Context, today string) (int64, error)
}

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
