package store

import (
	"sync"

	"bookcatalog/internal/domain"
)

// MemoryStore keeps the catalog in-process. Tests use it in place of the
// database.
type MemoryStore struct {
	mu         sync.RWMutex
	categories map[uint]domain.Category
	names      map[string]uint // category name -> id
	books      map[uint]domain.Book
	catOrder   []uint
	bookOrder  []uint
	nextCatID  uint
	nextBookID uint
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categories: make(map[uint]domain.Category),
		names:      make(map[string]uint),
		books:      make(map[uint]domain.Book),
	}
}

// CreateCategory allocates an id and enforces name uniqueness.
func (m *MemoryStore) CreateCategory(name string) (domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.names[name]; exists {
		return domain.Category{}, domain.ErrCategoryExists
	}
	m.nextCatID++
	cat := domain.Category{ID: m.nextCatID, Name: name}
	m.categories[cat.ID] = cat
	m.names[name] = cat.ID
	m.catOrder = append(m.catOrder, cat.ID)
	return cat, nil
}

// ListCategories returns categories in insertion order.
func (m *MemoryStore) ListCategories() ([]domain.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Category, 0, len(m.catOrder))
	for _, id := range m.catOrder {
		res = append(res, m.categories[id])
	}
	return res, nil
}

// GetCategory returns a category by id.
func (m *MemoryStore) GetCategory(id uint) (domain.Category, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cat, ok := m.categories[id]
	return cat, ok, nil
}

// CreateBook allocates an id and stores the book.
func (m *MemoryStore) CreateBook(b domain.Book) (domain.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextBookID++
	b.ID = m.nextBookID
	m.books[b.ID] = b
	m.bookOrder = append(m.bookOrder, b.ID)
	return b, nil
}

// ListBooks returns books in insertion order.
func (m *MemoryStore) ListBooks() ([]domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Book, 0, len(m.bookOrder))
	for _, id := range m.bookOrder {
		if b, ok := m.books[id]; ok {
			res = append(res, b)
		}
	}
	return res, nil
}

// ListBooksByCategory returns books with the given category id.
func (m *MemoryStore) ListBooksByCategory(categoryID uint) ([]domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Book, 0)
	for _, id := range m.bookOrder {
		if b, ok := m.books[id]; ok && b.CategoryID != nil && *b.CategoryID == categoryID {
			res = append(res, b)
		}
	}
	return res, nil
}

// GetBook retrieves a book by id.
func (m *MemoryStore) GetBook(id uint) (domain.Book, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.books[id]
	return b, ok, nil
}

// UpdateBook replaces title and description, and the cover name when given.
func (m *MemoryStore) UpdateBook(id uint, title, description string, cover *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return domain.ErrBookNotFound
	}
	b.Title = title
	b.Description = description
	if cover != nil {
		b.Cover = *cover
	}
	m.books[id] = b
	return nil
}

// SetCover points the book at a cover blob.
func (m *MemoryStore) SetCover(id uint, filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	if !ok {
		return domain.ErrBookNotFound
	}
	b.Cover = filename
	m.books[id] = b
	return nil
}

// DeleteBook removes the book if present.
func (m *MemoryStore) DeleteBook(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.books, id)
	filtered := m.bookOrder[:0]
	for _, item := range m.bookOrder {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	m.bookOrder = filtered
	return nil
}
