package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/reminders"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"
)

var fixedNow = time.Date(2024, time.April, 20, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type recordingViews struct {
	mu    sync.Mutex
	views []string
}

func (r *recordingViews) Invalidate(views ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, views...)
}

func (r *recordingViews) has(view string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.views {
		if v == view {
			return true
		}
	}
	return false
}

type fixture struct {
	store        *repositories.MemoryStore
	views        *recordingViews
	reminders    *reminders.MemoryLog
	books        *BookService
	members      *MemberService
	transactions *TransactionService
	reports      *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	views := &recordingViews{}
	log := reminders.NewMemoryLog()

	f := &fixture{
		store:        store,
		views:        views,
		reminders:    log,
		books:        NewBookService(store, views),
		members:      NewMemberService(store, views),
		transactions: NewTransactionService(store, views, log, 14),
	}
	f.reports = NewReportService(store, f.transactions, log)
	f.members.now = fixedClock
	f.transactions.now = fixedClock
	f.reports.now = fixedClock
	return f
}

func (f *fixture) addBook(t *testing.T, title string) *models.Book {
	t.Helper()
	book, err := f.books.Create(context.Background(), &BookInput{
		Title:    title,
		Author:   "Author",
		ISBN:     "9780000000000",
		Category: "Fiction",
	})
	if err != nil {
		t.Fatalf("create book: %v", err)
	}
	return book
}

func (f *fixture) addMember(t *testing.T, name, email string) *models.Member {
	t.Helper()
	member, err := f.members.Create(context.Background(), &MemberInput{Name: name, Email: email})
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	return member
}

func (f *fixture) book(t *testing.T, id uint) *models.Book {
	t.Helper()
	book, err := f.store.Books().GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	return book
}

func (f *fixture) member(t *testing.T, id uint) *models.Member {
	t.Helper()
	member, err := f.store.Members().GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	return member
}

// seedBorrow inserts an open borrow row directly, bypassing the clock
func (f *fixture) seedBorrow(t *testing.T, member *models.Member, book *models.Book, date, due string, status domain.TxStatus) *models.Transaction {
	t.Helper()
	ctx := context.Background()
	if _, err := f.store.Books().MarkBorrowed(ctx, book.ID); err != nil {
		t.Fatalf("mark borrowed: %v", err)
	}
	if err := f.store.Members().IncrementBorrowed(ctx, member.ID); err != nil {
		t.Fatalf("increment: %v", err)
	}
	tx := &models.Transaction{
		MemberID:   member.ID,
		MemberName: member.Name,
		BookID:     book.ID,
		BookTitle:  book.Title,
		Type:       domain.TxBorrow,
		Date:       date,
		DueDate:    due,
		Status:     status,
	}
	if err := f.store.Transactions().Create(ctx, tx); err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return tx
}
