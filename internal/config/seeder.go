package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/pkg/dates"
	"libraryhub/internal/pkg/password"

	"github.com/google/uuid"
)

// Demo login created by the seeder in development
const (
	DemoUserEmail    = "librarian@example.com"
	DemoUserPassword = "library123"
)

// Seeder handles database seeding
type Seeder struct {
	store repositories.Store
	now   func() time.Time
}

// NewSeeder creates a new seeder instance
func NewSeeder(store repositories.Store) *Seeder {
	return &Seeder{store: store, now: time.Now}
}

// Run executes all seeders. Each seeder skips when its data already exists.
func (s *Seeder) Run(ctx context.Context) error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedDemoUser(ctx); err != nil {
		log.Printf("⚠️ Demo user seeder skipped: %v", err)
	}
	if err := s.seedLibrary(ctx); err != nil {
		return fmt.Errorf("seed library: %w", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedDemoUser seeds a librarian login for development
func (s *Seeder) seedDemoUser(ctx context.Context) error {
	exists, err := s.store.Users().ExistsByEmail(ctx, DemoUserEmail)
	if err != nil || exists {
		return err
	}

	hashedPassword, err := password.Hash(DemoUserPassword)
	if err != nil {
		return err
	}

	user := &models.User{
		Name:     "Librarian",
		Email:    DemoUserEmail,
		Password: hashedPassword,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return err
	}

	log.Printf("✅ Demo user created: %s", user.Email)
	return nil
}

type seedBook struct {
	title, author, isbn, category, year string
}

type seedMember struct {
	name, email, joinDate, phone, address string
	status                                domain.MemberStatus
}

// seedLoan references books and members by their position in the seed lists
type seedLoan struct {
	book, member int
	borrowedAgo  int
	returnedAgo  int // 0 while still out
	overdue      bool
}

var sampleBooks = []seedBook{
	{"To Kill a Mockingbird", "Harper Lee", "9780061120084", "Fiction", "1960"},
	{"1984", "George Orwell", "9780451524935", "Science Fiction", "1949"},
	{"The Great Gatsby", "F. Scott Fitzgerald", "9780743273565", "Fiction", "1925"},
	{"Pride and Prejudice", "Jane Austen", "9780141439518", "Romance", "1813"},
	{"The Hobbit", "J.R.R. Tolkien", "9780547928227", "Fantasy", "1937"},
	{"The Catcher in the Rye", "J.D. Salinger", "9780316769488", "Fiction", "1951"},
	{"Lord of the Flies", "William Golding", "9780399501487", "Fiction", "1954"},
	{"Animal Farm", "George Orwell", "9780451526342", "Fiction", "1945"},
}

var sampleMembers = []seedMember{
	{"John Doe", "john.doe@example.com", "2022-01-15", "555-123-4567", "123 Main St, Anytown, USA", domain.MemberActive},
	{"Alice Smith", "alice.smith@example.com", "2022-02-20", "555-234-5678", "456 Oak Ave, Somewhere, USA", domain.MemberActive},
	{"Robert Johnson", "robert.johnson@example.com", "2022-03-10", "555-345-6789", "789 Pine Rd, Nowhere, USA", domain.MemberActive},
	{"Emma Wilson", "emma.wilson@example.com", "2022-04-05", "555-456-7890", "101 Elm St, Elsewhere, USA", domain.MemberInactive},
	{"Michael Brown", "michael.brown@example.com", "2022-05-12", "555-567-8901", "202 Maple Dr, Anyplace, USA", domain.MemberActive},
	{"Sarah Davis", "sarah.davis@example.com", "2022-06-18", "555-678-9012", "303 Cedar Ln, Somewhere, USA", domain.MemberActive},
	{"James Miller", "james.miller@example.com", "2022-07-22", "555-789-0123", "404 Birch Blvd, Nowhere, USA", domain.MemberInactive},
}

// Closed loans come first so the history reads oldest to newest
var sampleLoans = []seedLoan{
	{book: 0, member: 1, borrowedAgo: 30, returnedAgo: 18},
	{book: 3, member: 3, borrowedAgo: 29, returnedAgo: 17},
	{book: 5, member: 6, borrowedAgo: 28, returnedAgo: 16},
	{book: 7, member: 5, borrowedAgo: 20, overdue: true},
	{book: 2, member: 0, borrowedAgo: 10},
	{book: 1, member: 2, borrowedAgo: 8},
	{book: 4, member: 4, borrowedAgo: 6},
}

// seedLibrary loads the sample catalog, members and loans into an empty store
func (s *Seeder) seedLibrary(ctx context.Context) error {
	existing, err := s.store.Books().All(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	return s.store.WithTx(ctx, func(tx repositories.Store) error {
		books := make([]*models.Book, 0, len(sampleBooks))
		for _, b := range sampleBooks {
			book := &models.Book{
				Title:         b.title,
				Author:        b.author,
				ISBN:          b.isbn,
				Category:      b.category,
				PublishedYear: b.year,
				Status:        domain.BookAvailable,
			}
			if err := tx.Books().Create(ctx, book); err != nil {
				return err
			}
			books = append(books, book)
		}

		members := make([]*models.Member, 0, len(sampleMembers))
		for _, m := range sampleMembers {
			member := &models.Member{
				Name:         m.name,
				Email:        m.email,
				MembershipID: "PENDING-" + uuid.NewString(),
				JoinDate:     m.joinDate,
				Status:       m.status,
				Phone:        m.phone,
				Address:      m.address,
			}
			if err := tx.Members().Create(ctx, member); err != nil {
				return err
			}
			member.MembershipID = domain.MembershipID(member.ID)
			if err := tx.Members().SetMembershipID(ctx, member.ID, member.MembershipID); err != nil {
				return err
			}
			members = append(members, member)
		}

		for _, loan := range sampleLoans {
			if err := s.seedLoan(ctx, tx, books[loan.book], members[loan.member], loan); err != nil {
				return err
			}
		}

		log.Printf("📚 Seeded %d books, %d members, %d loans", len(books), len(members), len(sampleLoans))
		return nil
	})
}

func (s *Seeder) seedLoan(ctx context.Context, tx repositories.Store, book *models.Book, member *models.Member, loan seedLoan) error {
	today := s.now()
	borrowed := dates.Format(today.AddDate(0, 0, -loan.borrowedAgo))
	due := dates.Format(today.AddDate(0, 0, domain.DefaultLoanDays-loan.borrowedAgo))

	borrow := &models.Transaction{
		MemberID:   member.ID,
		MemberName: member.Name,
		BookID:     book.ID,
		BookTitle:  book.Title,
		Type:       domain.TxBorrow,
		Date:       borrowed,
		DueDate:    due,
		Status:     domain.TxActive,
	}
	if loan.overdue {
		borrow.Status = domain.TxOverdue
	}
	if err := tx.Transactions().Create(ctx, borrow); err != nil {
		return err
	}

	if loan.returnedAgo == 0 {
		if _, err := tx.Books().MarkBorrowed(ctx, book.ID); err != nil {
			return err
		}
		return tx.Members().IncrementBorrowed(ctx, member.ID)
	}

	returned := dates.Format(today.AddDate(0, 0, -loan.returnedAgo))
	if _, err := tx.Transactions().CloseBorrow(ctx, borrow.ID, returned); err != nil {
		return err
	}
	borrowID := borrow.ID
	return tx.Transactions().Create(ctx, &models.Transaction{
		MemberID:   member.ID,
		MemberName: member.Name,
		BookID:     book.ID,
		BookTitle:  book.Title,
		Type:       domain.TxReturn,
		Date:       returned,
		DueDate:    due,
		ReturnDate: &returned,
		Status:     domain.TxCompleted,
		BorrowID:   &borrowID,
	})
}
