package repositories

import (
	"context"
	"strings"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/core/domain"

	"gorm.io/gorm"
)

// memberRepository implements MemberRepository interface
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create creates a new member
func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// GetByID gets a member by ID
func (r *memberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ExistsByEmail checks if another member already uses email
func (r *memberRepository) ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Count(&count).Error
	return count > 0, err
}

// Update updates profile fields of a member
func (r *memberRepository) Update(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", member.ID).
		Select("name", "email", "status", "phone", "address").
		Updates(member).Error
}

// SetMembershipID assigns the derived membership ID
func (r *memberRepository) SetMembershipID(ctx context.Context, id uint, membershipID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		Update("membership_id", membershipID).Error
}

// Delete deletes a member
func (r *memberRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Member{}, id).Error
}

// List lists members with filter and pagination
func (r *memberRepository) List(ctx context.Context, filter MemberFilter, offset, limit int) ([]*models.Member, int64, error) {
	var members []*models.Member
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Member{})
	if s := strings.ToLower(strings.TrimSpace(filter.Search)); s != "" {
		p := likePattern(s)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(membership_id) LIKE ?", p, p, p)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("id ASC").Offset(offset).Limit(limit).Find(&members).Error; err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

// All returns every member in id order
func (r *memberRepository) All(ctx context.Context) ([]*models.Member, error) {
	members := []*models.Member{}
	err := r.db.WithContext(ctx).Order("id ASC").Find(&members).Error
	return members, err
}

// IncrementBorrowed adds one to the member's loan count
func (r *memberRepository) IncrementBorrowed(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		UpdateColumn("borrowed_books", gorm.Expr("borrowed_books + ?", 1)).Error
}

// DecrementBorrowed subtracts one from the member's loan count, floored at zero
func (r *memberRepository) DecrementBorrowed(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ? AND borrowed_books > 0", id).
		UpdateColumn("borrowed_books", gorm.Expr("borrowed_books - ?", 1)).Error
}

// CountByStatus counts members per status
func (r *memberRepository) CountByStatus(ctx context.Context) (map[domain.MemberStatus]int64, error) {
	var rows []struct {
		Status domain.MemberStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.MemberStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
