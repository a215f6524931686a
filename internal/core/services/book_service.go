package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/core/domain"
	"libraryhub/internal/pkg/validation"

	"gorm.io/gorm"
)

// BookService handles catalog business logic
type BookService struct {
	store repositories.Store
	views ViewInvalidator
}

// NewBookService creates a new book service
func NewBookService(store repositories.Store, views ViewInvalidator) *BookService {
	return &BookService{
		store: store,
		views: viewsOrNoop(views),
	}
}

// BookInput represents the editable fields of a book.
// Status is not part of it: only borrow and return change it.
type BookInput struct {
	Title         string `json:"title" validate:"required,max=255" msg:"Title is required" msg_max:"Title must be at most 255 characters"`
	Author        string `json:"author" validate:"required,max=255" msg:"Author is required" msg_max:"Author must be at most 255 characters"`
	ISBN          string `json:"isbn" validate:"min=10,max=20" msg:"ISBN must be at least 10 characters" msg_max:"ISBN must be at most 20 characters"`
	Category      string `json:"category" validate:"required,max=100" msg:"Category is required" msg_max:"Category must be at most 100 characters"`
	PublishedYear string `json:"publishedYear" validate:"omitempty,numeric,max=4" msg:"Published year must be a year"`
	Description   string `json:"description" validate:"max=5000"`
}

func (in *BookInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.ISBN = strings.TrimSpace(in.ISBN)
	in.Category = strings.TrimSpace(in.Category)
	in.PublishedYear = strings.TrimSpace(in.PublishedYear)
	in.Description = strings.TrimSpace(in.Description)
}

// Create adds a book to the catalog as Available
func (s *BookService) Create(ctx context.Context, input *BookInput) (*models.Book, error) {
	input.normalize()
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	book := &models.Book{
		Title:         input.Title,
		Author:        input.Author,
		ISBN:          input.ISBN,
		Category:      input.Category,
		Status:        domain.BookAvailable,
		PublishedYear: input.PublishedYear,
		Description:   input.Description,
	}
	if err := s.store.Books().Create(ctx, book); err != nil {
		return nil, domain.StoreError("create book", err)
	}

	log.Printf("📚 Book added: #%d %q", book.ID, book.Title)
	s.views.Invalidate(ViewBooks, ViewHome, ViewReports)
	return book, nil
}

// Update changes catalog fields of a book, preserving its status
func (s *BookService) Update(ctx context.Context, id uint, input *BookInput) (*models.Book, error) {
	input.normalize()
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	var updated *models.Book
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		book, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}

		book.Title = input.Title
		book.Author = input.Author
		book.ISBN = input.ISBN
		book.Category = input.Category
		book.PublishedYear = input.PublishedYear
		book.Description = input.Description
		if err := tx.Books().Update(ctx, book); err != nil {
			return domain.StoreError("update book", err)
		}

		updated, err = tx.Books().GetByID(ctx, id)
		if err != nil {
			return domain.StoreError("reload book", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.views.Invalidate(ViewBooks, ViewTransactions)
	return updated, nil
}

// Delete removes a book that is not currently borrowed
func (s *BookService) Delete(ctx context.Context, id uint) error {
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		book, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}
		if book.Status == domain.BookBorrowed {
			return domain.ErrBookBorrowed
		}
		if err := tx.Books().Delete(ctx, id); err != nil {
			return domain.StoreError("delete book", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("🗑️ Book deleted: #%d", id)
	s.views.Invalidate(ViewBooks, ViewHome, ViewReports)
	return nil
}

// GetByID gets a book by ID
func (s *BookService) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	return s.find(ctx, s.store, id)
}

// List lists books with filter and pagination
func (s *BookService) List(ctx context.Context, filter repositories.BookFilter, offset, limit int) ([]*models.Book, int64, error) {
	books, total, err := s.store.Books().List(ctx, filter, offset, limit)
	if err != nil {
		return nil, 0, domain.StoreError("list books", err)
	}
	return books, total, nil
}

// Export returns the full catalog
func (s *BookService) Export(ctx context.Context) ([]*models.Book, error) {
	books, err := s.store.Books().All(ctx)
	if err != nil {
		return nil, domain.StoreError("export books", err)
	}
	return books, nil
}

func (s *BookService) find(ctx context.Context, store repositories.Store, id uint) (*models.Book, error) {
	book, err := store.Books().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, domain.StoreError("get book", err)
	}
	return book, nil
}
