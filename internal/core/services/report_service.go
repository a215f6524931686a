package services

import (
	"context"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/pkg/dates"
)

// ReportService builds dashboard and report figures
type ReportService struct {
	store        repositories.Store
	transactions *TransactionService
	reminders    ReminderLog
	now          func() time.Time
}

// NewReportService creates a new report service
func NewReportService(store repositories.Store, transactions *TransactionService, reminders ReminderLog) *ReportService {
	return &ReportService{
		store:        store,
		transactions: transactions,
		reminders:    reminders,
		now:          time.Now,
	}
}

// DashboardStats are the home page counters
type DashboardStats struct {
	TotalBooks     int64                 `json:"totalBooks"`
	AvailableBooks int64                 `json:"availableBooks"`
	BorrowedBooks  int64                 `json:"borrowedBooks"`
	TotalMembers   int64                 `json:"totalMembers"`
	ActiveMembers  int64                 `json:"activeMembers"`
	OverdueBooks   int64                 `json:"overdueBooks"`
	RecentBorrows  []*models.Transaction `json:"recentBorrows"`
}

// MonthlyActivity counts borrow and return events in one month
type MonthlyActivity struct {
	Month   string `json:"month"`
	Borrows int    `json:"borrows"`
	Returns int    `json:"returns"`
}

// OverdueItem is an overdue borrow with reminder details
type OverdueItem struct {
	*models.Transaction
	DaysOverdue    int        `json:"daysOverdue"`
	LastReminderAt *time.Time `json:"lastReminderAt"`
}

// RecentBorrowsLimit is the number of borrows shown on the dashboard
const RecentBorrowsLimit = 5

// Dashboard returns the home page counters
func (s *ReportService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	bookCounts, err := s.store.Books().CountByStatus(ctx)
	if err != nil {
		return nil, domain.StoreError("count books", err)
	}
	memberCounts, err := s.store.Members().CountByStatus(ctx)
	if err != nil {
		return nil, domain.StoreError("count members", err)
	}
	overdue, err := s.store.Transactions().CountOverdue(ctx, dates.Format(s.now()))
	if err != nil {
		return nil, domain.StoreError("count overdue", err)
	}
	recent, err := s.store.Transactions().RecentBorrows(ctx, RecentBorrowsLimit)
	if err != nil {
		return nil, domain.StoreError("recent borrows", err)
	}

	stats := &DashboardStats{
		AvailableBooks: bookCounts[domain.BookAvailable],
		BorrowedBooks:  bookCounts[domain.BookBorrowed],
		ActiveMembers:  memberCounts[domain.MemberActive],
		OverdueBooks:   overdue,
		RecentBorrows:  recent,
	}
	for _, n := range bookCounts {
		stats.TotalBooks += n
	}
	for _, n := range memberCounts {
		stats.TotalMembers += n
	}
	return stats, nil
}

// MonthlyActivity counts borrows and returns for the last n months,
// oldest month first
func (s *ReportService) MonthlyActivity(ctx context.Context, months int) ([]MonthlyActivity, error) {
	if months <= 0 {
		months = 6
	}
	now := s.now()
	from := dates.MonthsBack(now, months)

	txs, err := s.store.Transactions().Since(ctx, from)
	if err != nil {
		return nil, domain.StoreError("transactions since", err)
	}

	activity := make([]MonthlyActivity, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		month := dates.Month(dates.MonthsBack(now, months-i))
		activity[i].Month = month
		index[month] = i
	}

	for _, tx := range txs {
		i, ok := index[dates.Month(tx.Date)]
		if !ok {
			continue
		}
		switch tx.Type {
		case domain.TxBorrow:
			activity[i].Borrows++
		case domain.TxReturn:
			activity[i].Returns++
		}
	}
	return activity, nil
}

// OverdueReport lists overdue borrows with days overdue and the last reminder
func (s *ReportService) OverdueReport(ctx context.Context) ([]OverdueItem, error) {
	today := dates.Format(s.now())

	items := []OverdueItem{}
	for tx, err := range s.transactions.Overdue(ctx) {
		if err != nil {
			return nil, err
		}

		days, err := dates.DaysBetween(tx.DueDate, today)
		if err != nil {
			days = 0
		}
		item := OverdueItem{Transaction: tx, DaysOverdue: days}

		if s.reminders != nil {
			if at, ok, err := s.reminders.LastSent(ctx, tx.ID); err == nil && ok {
				item.LastReminderAt = &at
			}
		}
		items = append(items, item)
	}
	return items, nil
}
