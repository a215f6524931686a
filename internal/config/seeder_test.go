package config

import (
	"context"
	"testing"
	"time"

	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"
)

func TestSeederIsConsistentAndIdempotent(t *testing.T) {
	store := repositories.NewMemoryStore()
	seeder := NewSeeder(store)
	seeder.now = func() time.Time { return time.Date(2024, time.April, 20, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	if err := seeder.Run(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := seeder.Run(ctx); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	books, _ := store.Books().All(ctx)
	members, _ := store.Members().All(ctx)
	txs, _ := store.Transactions().All(ctx)
	if len(books) != len(sampleBooks) || len(members) != len(sampleMembers) {
		t.Fatalf("seeding twice duplicated data: %d books, %d members", len(books), len(members))
	}

	openByBook := map[uint]bool{}
	openByMember := map[uint]int{}
	for _, tx := range txs {
		if tx.IsOpenBorrow() {
			openByBook[tx.BookID] = true
			openByMember[tx.MemberID]++
		}
	}
	for _, book := range books {
		if (book.Status == domain.BookBorrowed) != openByBook[book.ID] {
			t.Fatalf("book %q status %s disagrees with open borrows", book.Title, book.Status)
		}
	}
	for _, member := range members {
		if member.BorrowedBooks != openByMember[member.ID] {
			t.Fatalf("member %s has borrowedBooks %d, open borrows %d", member.Name, member.BorrowedBooks, openByMember[member.ID])
		}
		if member.MembershipID != domain.MembershipID(member.ID) {
			t.Fatalf("member %s has membership id %s", member.Name, member.MembershipID)
		}
	}

	overdue, err := store.Transactions().CountOverdue(ctx, "2024-04-20")
	if err != nil || overdue != 1 {
		t.Fatalf("expected one overdue loan, got %d (%v)", overdue, err)
	}

	if ok, _ := store.Users().ExistsByEmail(ctx, DemoUserEmail); !ok {
		t.Fatalf("expected demo user")
	}
}
