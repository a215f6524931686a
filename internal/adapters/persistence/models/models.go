package models

import (
	"time"

	"libraryhub/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Auth
// ============================================================

// User represents users table (signup credentials)
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string    `gorm:"size:255" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// ============================================================
// Catalog & Membership
// ============================================================

// Book represents books table
type Book struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	Title         string            `gorm:"size:255;not null;index" json:"title"`
	Author        string            `gorm:"size:255;not null" json:"author"`
	ISBN          string            `gorm:"column:isbn;size:20;not null" json:"isbn"`
	Category      string            `gorm:"size:100;not null;index" json:"category"`
	Status        domain.BookStatus `gorm:"size:20;not null;default:'Available';index" json:"status"`
	PublishedYear string            `gorm:"size:4" json:"publishedYear,omitempty"`
	Description   string            `gorm:"type:text" json:"description,omitempty"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Book) TableName() string {
	return "books"
}

// IsAvailable reports whether the book can be borrowed
func (b *Book) IsAvailable() bool {
	return b.Status == domain.BookAvailable
}

// Member represents members table
type Member struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	Name          string              `gorm:"size:100;not null;index" json:"name"`
	Email         string              `gorm:"uniqueIndex;size:100;not null" json:"email"`
	MembershipID  string              `gorm:"column:membership_id;uniqueIndex;size:50;not null" json:"membershipId"`
	JoinDate      string              `gorm:"size:10;not null" json:"joinDate"`
	Status        domain.MemberStatus `gorm:"size:20;not null;default:'Active';index" json:"status"`
	BorrowedBooks int                 `gorm:"not null;default:0" json:"borrowedBooks"`
	Phone         string              `gorm:"size:30" json:"phone,omitempty"`
	Address       string              `gorm:"size:255" json:"address,omitempty"`
	CreatedAt     time.Time           `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time           `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Member) TableName() string {
	return "members"
}

// ============================================================
// Circulation
// ============================================================

// Transaction represents transactions table.
// Borrow rows are closed in place on return; the return itself is
// recorded as a separate Return row pointing back via BorrowID.
type Transaction struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	MemberID   uint            `gorm:"not null;index" json:"memberId"`
	MemberName string          `gorm:"size:100;not null" json:"memberName"`
	BookID     uint            `gorm:"not null;index" json:"bookId"`
	BookTitle  string          `gorm:"size:255;not null" json:"bookTitle"`
	Type       domain.TxType   `gorm:"size:10;not null;index" json:"type"`
	Date       string          `gorm:"size:10;not null;index" json:"date"`
	DueDate    string          `gorm:"size:10;not null;index" json:"dueDate"`
	ReturnDate *string         `gorm:"size:10" json:"returnDate"`
	Status     domain.TxStatus `gorm:"size:20;not null;index" json:"status"`
	BorrowID   *uint           `gorm:"index" json:"borrowId,omitempty"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// IsOpenBorrow reports whether the row is a borrow still awaiting return
func (t *Transaction) IsOpenBorrow() bool {
	return t.Type == domain.TxBorrow && t.Status != domain.TxCompleted
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Book{},
		&Member{},
		&Transaction{},
	)
}
