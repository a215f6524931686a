package domain

import "fmt"

// BookStatus represents the circulation state of a book
type BookStatus string

const (
	BookAvailable BookStatus = "Available"
	BookBorrowed  BookStatus = "Borrowed"
)

// MemberStatus represents whether a member may borrow
type MemberStatus string

const (
	MemberActive   MemberStatus = "Active"
	MemberInactive MemberStatus = "Inactive"
)

// TxType distinguishes borrow events from return events
type TxType string

const (
	TxBorrow TxType = "Borrow"
	TxReturn TxType = "Return"
)

// TxStatus represents the lifecycle of a transaction row
type TxStatus string

const (
	TxActive    TxStatus = "Active"
	TxCompleted TxStatus = "Completed"
	TxOverdue   TxStatus = "Overdue"
)

// Valid reports whether s is a known book status
func (s BookStatus) Valid() bool {
	return s == BookAvailable || s == BookBorrowed
}

// Valid reports whether s is a known member status
func (s MemberStatus) Valid() bool {
	return s == MemberActive || s == MemberInactive
}

// Open reports whether a transaction still holds a book out
func (s TxStatus) Open() bool {
	return s == TxActive || s == TxOverdue
}

// MembershipPrefix is prepended to every generated membership ID
const MembershipPrefix = "LIB-"

// MembershipBase offsets member IDs when deriving membership IDs
const MembershipBase = 1000

// DefaultLoanDays is the default borrow period
const DefaultLoanDays = 14

// MembershipID derives the public membership ID from a member's store ID
func MembershipID(id uint) string {
	return fmt.Sprintf("%s%d", MembershipPrefix, MembershipBase+int(id))
}
