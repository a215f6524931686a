package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/pkg/dates"
	"libraryhub/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemberService handles membership business logic
type MemberService struct {
	store repositories.Store
	views ViewInvalidator
	now   func() time.Time
}

// NewMemberService creates a new member service
func NewMemberService(store repositories.Store, views ViewInvalidator) *MemberService {
	return &MemberService{
		store: store,
		views: viewsOrNoop(views),
		now:   time.Now,
	}
}

// MemberInput represents the editable fields of a member.
// Membership ID, join date and loan count are derived.
type MemberInput struct {
	Name    string              `json:"name" validate:"required,max=100" msg:"Name is required" msg_max:"Name must be at most 100 characters"`
	Email   string              `json:"email" validate:"required,email,max=100" msg:"Invalid email address" msg_max:"Email must be at most 100 characters"`
	Status  domain.MemberStatus `json:"status" validate:"omitempty,oneof=Active Inactive" msg:"Status must be Active or Inactive"`
	Phone   string              `json:"phone" validate:"max=30"`
	Address string              `json:"address" validate:"max=255"`
}

func (in *MemberInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
}

// Create registers a member, assigning membership ID and join date
func (s *MemberService) Create(ctx context.Context, input *MemberInput) (*models.Member, error) {
	input.normalize()
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = domain.MemberActive
	}

	var member *models.Member
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		exists, err := tx.Members().ExistsByEmail(ctx, input.Email, 0)
		if err != nil {
			return domain.StoreError("check member email", err)
		}
		if exists {
			return domain.ErrDuplicateEmail
		}

		// The real ID is derived from the row ID, known only after insert
		member = &models.Member{
			Name:         input.Name,
			Email:        input.Email,
			MembershipID: "PENDING-" + uuid.NewString(),
			JoinDate:     dates.Format(s.now()),
			Status:       status,
			Phone:        input.Phone,
			Address:      input.Address,
		}
		if err := tx.Members().Create(ctx, member); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateEmail
			}
			return domain.StoreError("create member", err)
		}

		member.MembershipID = domain.MembershipID(member.ID)
		if err := tx.Members().SetMembershipID(ctx, member.ID, member.MembershipID); err != nil {
			return domain.StoreError("assign membership id", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🪪 Member registered: %s (%s)", member.Name, member.MembershipID)
	s.views.Invalidate(ViewMembers, ViewHome, ViewReports)
	return member, nil
}

// Update changes profile fields of a member
func (s *MemberService) Update(ctx context.Context, id uint, input *MemberInput) (*models.Member, error) {
	input.normalize()
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	var updated *models.Member
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		member, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}

		exists, err := tx.Members().ExistsByEmail(ctx, input.Email, id)
		if err != nil {
			return domain.StoreError("check member email", err)
		}
		if exists {
			return domain.ErrDuplicateEmail
		}

		member.Name = input.Name
		member.Email = input.Email
		if input.Status != "" {
			member.Status = input.Status
		}
		member.Phone = input.Phone
		member.Address = input.Address
		if err := tx.Members().Update(ctx, member); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateEmail
			}
			return domain.StoreError("update member", err)
		}

		updated, err = tx.Members().GetByID(ctx, id)
		if err != nil {
			return domain.StoreError("reload member", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.views.Invalidate(ViewMembers, ViewHome, ViewReports)
	return updated, nil
}

// Delete removes a member with no books out
func (s *MemberService) Delete(ctx context.Context, id uint) error {
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		member, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		if member.BorrowedBooks > 0 {
			return domain.ErrMemberHasLoans
		}
		if err := tx.Members().Delete(ctx, id); err != nil {
			return domain.StoreError("delete member", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("🗑️ Member deleted: #%d", id)
	s.views.Invalidate(ViewMembers, ViewHome, ViewReports)
	return nil
}

// GetByID gets a member by ID
func (s *MemberService) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	return s.find(ctx, s.store, id)
}

// List lists members with filter and pagination
func (s *MemberService) List(ctx context.Context, filter repositories.MemberFilter, offset, limit int) ([]*models.Member, int64, error) {
	members, total, err := s.store.Members().List(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, domain.StoreError("list members", err)
	}
	return members, total, nil
}

// Export returns every member
func (s *MemberService) Export(ctx context.Context) ([]*models.Member, error) {
	members, err := s.store.Members().All(ctx)
	if err != nil {
		return nil, domain.StoreError("export members", err)
	}
	return members, nil
}

func (s *MemberService) find(ctx context.Context, store repositories.Store, id uint) (*models.Member, error) {
	member, err := store.Members().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, domain.StoreError("get member", err)
	}
	return member, nil
}
