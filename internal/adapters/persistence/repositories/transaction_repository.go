package repositories

import (
	"context"
	"iter"
	"strings"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/core/domain"

	"gorm.io/gorm"
)

// transactionRepository implements TransactionRepository interface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create appends a transaction row
func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// GetByID gets a transaction by ID
func (r *transactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// List lists transactions newest first
func (r *transactionRepository) List(ctx context.Context, filter TransactionFilter, offset, limit int) ([]*models.Transaction, int64, error) {
	var txs []*models.Transaction
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Transaction{})
	if s := strings.ToLower(strings.TrimSpace(filter.Search)); s != "" {
		p := likePattern(s)
		query = query.Where("LOWER(member_name) LIKE ? OR LOWER(book_title) LIKE ?", p, p)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MemberID != 0 {
		query = query.Where("member_id = ?", filter.MemberID)
	}
	if filter.BookID != 0 {
		query = query.Where("book_id = ?", filter.BookID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&txs).Error; err != nil {
		return nil, 0, err
	}

	return txs, total, nil
}

// All returns every transaction in id order
func (r *transactionRepository) All(ctx context.Context) ([]*models.Transaction, error) {
	txs := []*models.Transaction{}
	err := r.db.WithContext(ctx).Order("id ASC").Find(&txs).Error
	return txs, err
}

// RecentBorrows returns the latest borrow rows
func (r *transactionRepository) RecentBorrows(ctx context.Context, limit int) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	err := r.db.WithContext(ctx).
		Where("type = ?", domain.TxBorrow).
		Order("id DESC").
		Limit(limit).
		Find(&txs).Error
	return txs, err
}

// Since returns rows dated on or after fromDate
func (r *transactionRepository) Since(ctx context.Context, fromDate string) ([]*models.Transaction, error) {
	txs := []*models.Transaction{}
	err := r.db.WithContext(ctx).
		Where("date >= ?", fromDate).
		Order("id ASC").
		Find(&txs).Error
	return txs, err
}

// CloseBorrow completes an open borrow; a second call finds nothing to close
func (r *transactionRepository) CloseBorrow(ctx context.Context, id uint, returnDate string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND type = ? AND status <> ?", id, domain.TxBorrow, domain.TxCompleted).
		Updates(map[string]interface{}{
			"status":      domain.TxCompleted,
			"return_date": returnDate,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *transactionRepository) overdueQuery(ctx context.Context, today string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("type = ? AND status <> ? AND due_date < ?", domain.TxBorrow, domain.TxCompleted, today)
}

// Overdue streams overdue borrows row by row
func (r *transactionRepository) Overdue(ctx context.Context, today string) iter.Seq2[*models.Transaction, error] {
	return func(yield func(*models.Transaction, error) bool) {
		rows, err := r.overdueQuery(ctx, today).Order("id ASC").Rows()
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var tx models.Transaction
			if err := r.db.ScanRows(rows, &tx); err != nil {
				yield(nil, err)
				return
			}
			if !yield(&tx, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// CountOverdue counts overdue borrows
func (r *transactionRepository) CountOverdue(ctx context.Context, today string) (int64, error) {
	var count int64
	err := r.overdueQuery(ctx, today).Count(&count).Error
	return count, err
}

// MarkOverdue flags Active borrows past their due date
func (r *transactionRepository) MarkOverdue(ctx context.Context, today string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("type = ? AND status = ? AND due_date < ?", domain.TxBorrow, domain.TxActive, today).
		Update("status", domain.TxOverdue)
	return res.RowsAffected, res.Error
}
