package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/pkg/dates"
	"libraryhub/internal/pkg/validation"

	"gorm.io/gorm"
)

// TransactionService handles borrow and return workflows
type TransactionService struct {
	store     repositories.Store
	views     ViewInvalidator
	reminders ReminderLog
	loanDays  int
	now       func() time.Time
}

// NewTransactionService creates a new transaction service
func NewTransactionService(store repositories.Store, views ViewInvalidator, reminders ReminderLog, loanDays int) *TransactionService {
	if loanDays <= 0 {
		loanDays = domain.DefaultLoanDays
	}
	return &TransactionService{
		store:     store,
		views:     viewsOrNoop(views),
		reminders: reminders,
		loanDays:  loanDays,
		now:       time.Now,
	}
}

// BorrowInput represents borrow input
type BorrowInput struct {
	MemberID uint `json:"memberId" validate:"required" msg:"Member is required"`
	BookID   uint `json:"bookId" validate:"required" msg:"Book is required"`
}

func (s *TransactionService) today() string {
	return dates.Format(s.now())
}

// Borrow lends a book to a member.
// The book flips to Borrowed only if it is still Available at write time,
// so concurrent borrows of one book cannot both succeed.
func (s *TransactionService) Borrow(ctx context.Context, input *BorrowInput) (*models.Transaction, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	today := s.today()
	dueDate, err := dates.AddDays(today, s.loanDays)
	if err != nil {
		return nil, err
	}

	var created *models.Transaction
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		member, err := tx.Members().GetByID(ctx, input.MemberID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrMemberNotFound
			}
			return domain.StoreError("get member", err)
		}

		book, err := tx.Books().GetByID(ctx, input.BookID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrBookNotFound
			}
			return domain.StoreError("get book", err)
		}

		if !book.IsAvailable() {
			return domain.ErrBookUnavailable
		}
		if member.Status == domain.MemberInactive {
			return domain.ErrMemberInactive
		}

		flipped, err := tx.Books().MarkBorrowed(ctx, book.ID)
		if err != nil {
			return domain.StoreError("mark book borrowed", err)
		}
		if !flipped {
			return domain.ErrBookUnavailable
		}

		if err := tx.Members().IncrementBorrowed(ctx, member.ID); err != nil {
			return domain.StoreError("increment borrowed books", err)
		}

		created = &models.Transaction{
			MemberID:   member.ID,
			MemberName: member.Name,
			BookID:     book.ID,
			BookTitle:  book.Title,
			Type:       domain.TxBorrow,
			Date:       today,
			DueDate:    dueDate,
			Status:     domain.TxActive,
		}
		if err := tx.Transactions().Create(ctx, created); err != nil {
			return domain.StoreError("create borrow transaction", err)
		}
		return nil
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindStore {
			log.Printf("❌ Failed to borrow book #%d for member #%d: %v", input.BookID, input.MemberID, err)
		}
		return nil, err
	}

	log.Printf("📖 Book borrowed: %q by %s (due %s)", created.BookTitle, created.MemberName, created.DueDate)
	s.invalidateCirculation()
	return created, nil
}

// Return closes an open borrow and appends a Return event.
// The borrow row keeps type Borrow and becomes Completed; only one of
// several concurrent returns of the same borrow can close it.
func (s *TransactionService) Return(ctx context.Context, transactionID uint) (*models.Transaction, error) {
	today := s.today()

	var returned *models.Transaction
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		borrow, err := tx.Transactions().GetByID(ctx, transactionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTransactionNotFound
			}
			return domain.StoreError("get transaction", err)
		}
		if !borrow.IsOpenBorrow() {
			return domain.ErrInvalidTransactionState
		}

		book, err := tx.Books().GetByID(ctx, borrow.BookID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrBookOrMemberMissing
			}
			return domain.StoreError("get book", err)
		}
		member, err := tx.Members().GetByID(ctx, borrow.MemberID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrBookOrMemberMissing
			}
			return domain.StoreError("get member", err)
		}

		closed, err := tx.Transactions().CloseBorrow(ctx, borrow.ID, today)
		if err != nil {
			return domain.StoreError("close borrow", err)
		}
		if !closed {
			return domain.ErrInvalidTransactionState
		}

		returnDate := today
		borrowID := borrow.ID
		returned = &models.Transaction{
			MemberID:   member.ID,
			MemberName: member.Name,
			BookID:     book.ID,
			BookTitle:  book.Title,
			Type:       domain.TxReturn,
			Date:       today,
			DueDate:    borrow.DueDate,
			ReturnDate: &returnDate,
			Status:     domain.TxCompleted,
			BorrowID:   &borrowID,
		}
		if err := tx.Transactions().Create(ctx, returned); err != nil {
			return domain.StoreError("create return transaction", err)
		}

		if err := tx.Books().MarkAvailable(ctx, book.ID); err != nil {
			return domain.StoreError("mark book available", err)
		}
		if err := tx.Members().DecrementBorrowed(ctx, member.ID); err != nil {
			return domain.StoreError("decrement borrowed books", err)
		}
		return nil
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindStore {
			log.Printf("❌ Failed to return transaction #%d: %v", transactionID, err)
		}
		return nil, err
	}

	log.Printf("📗 Book returned: %q by %s", returned.BookTitle, returned.MemberName)
	s.invalidateCirculation()
	return returned, nil
}

// Overdue yields open borrows whose due date is before today.
// The sequence is lazy and may be ranged over again for a fresh read.
func (s *TransactionService) Overdue(ctx context.Context) iter.Seq2[*models.Transaction, error] {
	return func(yield func(*models.Transaction, error) bool) {
		for tx, err := range s.store.Transactions().Overdue(ctx, s.today()) {
			if err != nil {
				yield(nil, domain.StoreError("list overdue", err))
				return
			}
			if !yield(tx, nil) {
				return
			}
		}
	}
}

// CollectOverdue drains Overdue into a slice
func (s *TransactionService) CollectOverdue(ctx context.Context) ([]*models.Transaction, error) {
	items := []*models.Transaction{}
	for tx, err := range s.Overdue(ctx) {
		if err != nil {
			return nil, err
		}
		items = append(items, tx)
	}
	return items, nil
}

// SendReminder records a reminder for a transaction and returns the
// confirmation message. Nothing is delivered to the member.
func (s *TransactionService) SendReminder(ctx context.Context, transactionID uint) (string, error) {
	tx, err := s.GetByID(ctx, transactionID)
	if err != nil {
		return "", err
	}

	message := fmt.Sprintf("Reminder sent to %s for %s", tx.MemberName, tx.BookTitle)
	if s.reminders != nil {
		if err := s.reminders.Record(ctx, tx.ID, s.now()); err != nil {
			log.Printf("⚠️ Failed to record reminder for transaction #%d: %v", tx.ID, err)
		}
	}

	log.Printf("🔔 %s (due %s)", message, tx.DueDate)
	s.views.Invalidate(ViewReports)
	return message, nil
}

// SweepOverdue marks Active borrows past their due date as Overdue
func (s *TransactionService) SweepOverdue(ctx context.Context) (int64, error) {
	n, err := s.store.Transactions().MarkOverdue(ctx, s.today())
	if err != nil {
		return 0, domain.StoreError("mark overdue", err)
	}
	if n > 0 {
		s.invalidateCirculation()
	}
	return n, nil
}

// GetByID gets a transaction by ID
func (s *TransactionService) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	tx, err := s.store.Transactions().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, domain.StoreError("get transaction", err)
	}
	return tx, nil
}

// List lists transactions newest first
func (s *TransactionService) List(ctx context.Context, filter repositories.TransactionFilter, offset, limit int) ([]*models.Transaction, int64, error) {
	txs, total, err := s.store.Transactions().List(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, domain.StoreError("list transactions", err)
	}
	return txs, total, nil
}

// Export returns every transaction in id order
func (s *TransactionService) Export(ctx context.Context) ([]*models.Transaction, error) {
	txs, err := s.store.Transactions().All(ctx)
	if err != nil {
		return nil, domain.StoreError("export transactions", err)
	}
	return txs, nil
}

func (s *TransactionService) invalidateCirculation() {
	s.views.Invalidate(ViewTransactions, ViewBooks, ViewMembers, ViewHome, ViewReports)
}
