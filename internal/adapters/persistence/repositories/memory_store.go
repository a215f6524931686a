package repositories

import (
	"context"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/core/domain"

	"gorm.io/gorm"
)

// MemoryStore keeps every record in-process. It reports the same gorm
// sentinel errors as the database store so services need no special cases.
// Transactions are serialized and rolled back by restoring a snapshot.
type MemoryStore struct {
	state *memoryState
	inTx  bool
}

type memoryState struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	books        map[uint]models.Book
	members      map[uint]models.Member
	transactions map[uint]models.Transaction
	users        map[uint]models.User

	nextBookID, nextMemberID, nextTxID, nextUserID uint
}

// NewMemoryStore initializes an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memoryState{
		books:        make(map[uint]models.Book),
		members:      make(map[uint]models.Member),
		transactions: make(map[uint]models.Transaction),
		users:        make(map[uint]models.User),
	}}
}

func (m *MemoryStore) Books() BookRepository               { return &memoryBooks{m} }
func (m *MemoryStore) Members() MemberRepository           { return &memoryMembers{m} }
func (m *MemoryStore) Transactions() TransactionRepository { return &memoryTransactions{m} }
func (m *MemoryStore) Users() UserRepository               { return &memoryUsers{m} }

// Ping always succeeds
func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// WithTx serializes fn against other writers and restores the previous
// state when fn fails
func (m *MemoryStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.inTx {
		return fn(m)
	}

	m.state.txMu.Lock()
	defer m.state.txMu.Unlock()

	snap := m.state.snapshot()
	if err := fn(&MemoryStore{state: m.state, inTx: true}); err != nil {
		m.state.restore(snap)
		return err
	}
	return nil
}

func (m *MemoryStore) write(ctx context.Context, fn func(s *memoryState) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.inTx {
		m.state.txMu.Lock()
		defer m.state.txMu.Unlock()
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	return fn(m.state)
}

func (m *MemoryStore) read(ctx context.Context, fn func(s *memoryState) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.state.mu.RLock()
	defer m.state.mu.RUnlock()
	return fn(m.state)
}

func (s *memoryState) snapshot() *memoryState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &memoryState{
		books:        cloneMap(s.books),
		members:      cloneMap(s.members),
		transactions: cloneMap(s.transactions),
		users:        cloneMap(s.users),
		nextBookID:   s.nextBookID,
		nextMemberID: s.nextMemberID,
		nextTxID:     s.nextTxID,
		nextUserID:   s.nextUserID,
	}
}

func (s *memoryState) restore(snap *memoryState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = snap.books
	s.members = snap.members
	s.transactions = snap.transactions
	s.users = snap.users
	s.nextBookID = snap.nextBookID
	s.nextMemberID = snap.nextMemberID
	s.nextTxID = snap.nextTxID
	s.nextUserID = snap.nextUserID
}

func cloneMap[V any](src map[uint]V) map[uint]V {
	dst := make(map[uint]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func sortedKeys[V any](src map[uint]V) []uint {
	keys := make([]uint, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

func page[T any](items []*T, offset, limit int) []*T {
	if offset >= len(items) {
		return []*T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// ============================================================
// Books
// ============================================================

type memoryBooks struct{ m *MemoryStore }

func (r *memoryBooks) Create(ctx context.Context, book *models.Book) error {
	return r.m.write(ctx, func(s *memoryState) error {
		s.nextBookID++
		now := time.Now()
		book.ID = s.nextBookID
		book.CreatedAt, book.UpdatedAt = now, now
		s.books[book.ID] = *book
		return nil
	})
}

func (r *memoryBooks) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var out *models.Book
	err := r.m.read(ctx, func(s *memoryState) error {
		b, ok := s.books[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		out = &b
		return nil
	})
	return out, err
}

func (r *memoryBooks) Update(ctx context.Context, book *models.Book) error {
	return r.m.write(ctx, func(s *memoryState) error {
		cur, ok := s.books[book.ID]
		if !ok {
			return nil
		}
		cur.Title = book.Title
		cur.Author = book.Author
		cur.ISBN = book.ISBN
		cur.Category = book.Category
		cur.PublishedYear = book.PublishedYear
		cur.Description = book.Description
		cur.UpdatedAt = time.Now()
		s.books[book.ID] = cur
		return nil
	})
}

func (r *memoryBooks) Delete(ctx context.Context, id uint) error {
	return r.m.write(ctx, func(s *memoryState) error {
		delete(s.books, id)
		return nil
	})
}

func (r *memoryBooks) List(ctx context.Context, filter BookFilter, offset, limit int) ([]*models.Book, int64, error) {
	var matched []*models.Book
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	err := r.m.read(ctx, func(s *memoryState) error {
		for _, id := range sortedKeys(s.books) {
			b := s.books[id]
			if search != "" && !containsFold(b.Title, search) && !containsFold(b.Author, search) && !strings.Contains(b.ISBN, search) {
				continue
			}
			if filter.Status != "" && b.Status != filter.Status {
				continue
			}
			if filter.Category != "" && b.Category != filter.Category {
				continue
			}
			matched = append(matched, &b)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (r *memoryBooks) All(ctx context.Context) ([]*models.Book, error) {
	books, _, err := r.List(ctx, BookFilter{}, 0, 0)
	return books, err
}

func (r *memoryBooks) MarkBorrowed(ctx context.Context, id uint) (bool, error) {
	var flipped bool
	err := r.m.write(ctx, func(s *memoryState) error {
		b, ok := s.books[id]
		if !ok || b.Status != domain.BookAvailable {
			return nil
		}
		b.Status = domain.BookBorrowed
		b.UpdatedAt = time.Now()
		s.books[id] = b
		flipped = true
		return nil
	})
	return flipped, err
}

func (r *memoryBooks) MarkAvailable(ctx context.Context, id uint) error {
	return r.m.write(ctx, func(s *memoryState) error {
		if b, ok := s.books[id]; ok {
			b.Status = domain.BookAvailable
			b.UpdatedAt = time.Now()
			s.books[id] = b
		}
		return nil
	})
}

func (r *memoryBooks) CountByStatus(ctx context.Context) (map[domain.BookStatus]int64, error) {
	counts := make(map[domain.BookStatus]int64)
	err := r.m.read(ctx, func(s *memoryState) error {
		for _, b := range s.books {
			counts[b.Status]++
		}
		return nil
	})
	return counts, err
}

// ============================================================
// Members
// ============================================================

type memoryMembers struct{ m *MemoryStore }

func (r *memoryMembers) Create(ctx context.Context, member *models.Member) error {
	return r.m.write(ctx, func(s *memoryState) error {
		for _, other := range s.members {
			if other.Email == member.Email || other.MembershipID == member.MembershipID {
				return gorm.ErrDuplicatedKey
			}
		}
		s.nextMemberID++
		now := time.Now()
		member.ID = s.nextMemberID
		member.CreatedAt, member.UpdatedAt = now, now
		s.members[member.ID] = *member
		return nil
	})
}

func (r *memoryMembers) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var out *models.Member
	err := r.m.read(ctx, func(s *memoryState) error {
		mb, ok := s.members[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		out = &mb
		return nil
	})
	return out, err
}

func (r *memoryMembers) ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error) {
	var exists bool
	err := r.m.read(ctx, func(s *memoryState) error {
		for id, mb := range s.members {
			if id != excludeID && mb.Email == email {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (r *memoryMembers) Update(ctx context.Context, member *models.Member) error {
	return r.m.write(ctx, func(s *memoryState) error {
		cur, ok := s.members[member.ID]
		if !ok {
			return nil
		}
		for id, other := range s.members {
			if id != member.ID && other.Email == member.Email {
				return gorm.ErrDuplicatedKey
			}
		}
		cur.Name = member.Name
		cur.Email = member.Email
		cur.Status = member.Status
		cur.Phone = member.Phone
		cur.Address = member.Address
		cur.UpdatedAt = time.Now()
		s.members[member.ID] = cur
		return nil
	})
}

func (r *memoryMembers) SetMembershipID(ctx context.Context, id uint, membershipID string) error {
	return r.m.write(ctx, func(s *memoryState) error {
		if mb, ok := s.members[id]; ok {
			mb.MembershipID = membershipID
			s.members[id] = mb
		}
		return nil
	})
}

func (r *memoryMembers) Delete(ctx context.Context, id uint) error {
	return r.m.write(ctx, func(s *memoryState) error {
		delete(s.members, id)
		return nil
	})
}

func (r *memoryMembers) List(ctx context.Context, filter MemberFilter, offset, limit int) ([]*models.Member, int64, error) {
	var matched []*models.Member
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	err := r.m.read(ctx, func(s *memoryState) error {
		for _, id := range sortedKeys(s.members) {
			mb := s.members[id]
			if search != "" && !containsFold(mb.Name, search) && !containsFold(mb.Email, search) && !containsFold(mb.MembershipID, search) {
				continue
			}
			if filter.Status != "" && mb.Status != filter.Status {
				continue
			}
			matched = append(matched, &mb)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (r *memoryMembers) All(ctx context.Context) ([]*models.Member, error) {
	members, _, err := r.List(ctx, MemberFilter{}, 0, 0)
	return members, err
}

func (r *memoryMembers) IncrementBorrowed(ctx context.Context, id uint) error {
	return r.m.write(ctx, func(s *memoryState) error {
		if mb, ok := s.members[id]; ok {
			mb.BorrowedBooks++
			s.members[id] = mb
		}
		return nil
	})
}

func (r *memoryMembers) DecrementBorrowed(ctx context.Context, id uint) error {
	return r.m.write(ctx, func(s *memoryState) error {
		if mb, ok := s.members[id]; ok && mb.BorrowedBooks > 0 {
			mb.BorrowedBooks--
			s.members[id] = mb
		}
		return nil
	})
}

func (r *memoryMembers) CountByStatus(ctx context.Context) (map[domain.MemberStatus]int64, error) {
	counts := make(map[domain.MemberStatus]int64)
	err := r.m.read(ctx, func(s *memoryState) error {
		for _, mb := range s.members {
			counts[mb.Status]++
		}
		return nil
	})
	return counts, err
}

// ============================================================
// Transactions
// ============================================================

type memoryTransactions struct{ m *MemoryStore }

func (r *memoryTransactions) Create(ctx context.Context, tx *models.Transaction) error {
	return r.m.write(ctx, func(s *memoryState) error {
		s.nextTxID++
		now := time.Now()
		tx.ID = s.nextTxID
		tx.CreatedAt, tx.UpdatedAt = now, now
		s.transactions[tx.ID] = *tx
		return nil
	})
}

func (r *memoryTransactions) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var out *models.Transaction
	err := r.m.read(ctx, func(s *memoryState) error {
		t, ok := s.transactions[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		out = &t
		return nil
	})
	return out, err
}

func (r *memoryTransactions) collect(ctx context.Context, keep func(t *models.Transaction) bool) ([]*models.Transaction, error) {
	matched := []*models.Transaction{}
	err := r.m.read(ctx, func(s *memoryState) error {
		for _, id := range sortedKeys(s.transactions) {
			t := s.transactions[id]
			if keep(&t) {
				matched = append(matched, &t)
			}
		}
		return nil
	})
	return matched, err
}

func (r *memoryTransactions) List(ctx context.Context, filter TransactionFilter, offset, limit int) ([]*models.Transaction, int64, error) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched, err := r.collect(ctx, func(t *models.Transaction) bool {
		if search != "" && !containsFold(t.MemberName, search) && !containsFold(t.BookTitle, search) {
			return false
		}
		if filter.Type != "" && t.Type != filter.Type {
			return false
		}
		if filter.Status != "" && t.Status != filter.Status {
			return false
		}
		if filter.MemberID != 0 && t.MemberID != filter.MemberID {
			return false
		}
		if filter.BookID != 0 && t.BookID != filter.BookID {
			return false
		}
		return true
	})
	if err != nil {
		return nil, 0, err
	}
	slices.Reverse(matched)
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (r *memoryTransactions) All(ctx context.Context) ([]*models.Transaction, error) {
	return r.collect(ctx, func(*models.Transaction) bool { return true })
}

func (r *memoryTransactions) RecentBorrows(ctx context.Context, limit int) ([]*models.Transaction, error) {
	matched, err := r.collect(ctx, func(t *models.Transaction) bool { return t.Type == domain.TxBorrow })
	if err != nil {
		return nil, err
	}
	slices.Reverse(matched)
	return page(matched, 0, limit), nil
}

func (r *memoryTransactions) Since(ctx context.Context, fromDate string) ([]*models.Transaction, error) {
	return r.collect(ctx, func(t *models.Transaction) bool { return t.Date >= fromDate })
}

func (r *memoryTransactions) CloseBorrow(ctx context.Context, id uint, returnDate string) (bool, error) {
	var closed bool
	err := r.m.write(ctx, func(s *memoryState) error {
		t, ok := s.transactions[id]
		if !ok || !t.IsOpenBorrow() {
			return nil
		}
		rd := returnDate
		t.Status = domain.TxCompleted
		t.ReturnDate = &rd
		t.UpdatedAt = time.Now()
		s.transactions[id] = t
		closed = true
		return nil
	})
	return closed, err
}

func isOverdue(t *models.Transaction, today string) bool {
	return t.IsOpenBorrow() && t.DueDate < today
}

func (r *memoryTransactions) Overdue(ctx context.Context, today string) iter.Seq2[*models.Transaction, error] {
	return func(yield func(*models.Transaction, error) bool) {
		matched, err := r.collect(ctx, func(t *models.Transaction) bool { return isOverdue(t, today) })
		if err != nil {
			yield(nil, err)
			return
		}
		for _, t := range matched {
			if !yield(t, nil) {
				return
			}
		}
	}
}

func (r *memoryTransactions) CountOverdue(ctx context.Context, today string) (int64, error) {
	matched, err := r.collect(ctx, func(t *models.Transaction) bool { return isOverdue(t, today) })
	return int64(len(matched)), err
}

func (r *memoryTransactions) MarkOverdue(ctx context.Context, today string) (int64, error) {
	var n int64
	err := r.m.write(ctx, func(s *memoryState) error {
		for id, t := range s.transactions {
			if t.Type == domain.TxBorrow && t.Status == domain.TxActive && t.DueDate < today {
				t.Status = domain.TxOverdue
				t.UpdatedAt = time.Now()
				s.transactions[id] = t
				n++
			}
		}
		return nil
	})
	return n, err
}

// ============================================================
// Users
// ============================================================

type memoryUsers struct{ m *MemoryStore }

func (r *memoryUsers) Create(ctx context.Context, user *models.User) error {
	return r.m.write(ctx, func(s *memoryState) error {
		for _, other := range s.users {
			if other.Email == user.Email {
				return gorm.ErrDuplicatedKey
			}
		}
		s.nextUserID++
		now := time.Now()
		user.ID = s.nextUserID
		user.CreatedAt, user.UpdatedAt = now, now
		s.users[user.ID] = *user
		return nil
	})
}

func (r *memoryUsers) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var out *models.User
	err := r.m.read(ctx, func(s *memoryState) error {
		u, ok := s.users[id]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *memoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var out *models.User
	err := r.m.read(ctx, func(s *memoryState) error {
		for _, u := range s.users {
			if u.Email == email {
				out = &u
				return nil
			}
		}
		return gorm.ErrRecordNotFound
	})
	return out, err
}

func (r *memoryUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	return err == nil, err
}
