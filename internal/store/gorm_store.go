package store

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bookcatalog/internal/domain"
)

// GormStore implements Store using GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens a Postgres connection and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	return NewGormStoreWithDialector(postgres.Open(dsn))
}

// NewGormStoreWithDialector opens the store on any GORM dialector. Tests use
// this with the SQLite driver.
func NewGormStoreWithDialector(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&CategoryModel{}, &BookModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// CreateCategory inserts a category, relying on the unique index to reject
// duplicate names.
func (s *GormStore) CreateCategory(name string) (domain.Category, error) {
	model := CategoryModel{Name: name}
	if err := s.db.Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Category{}, domain.ErrCategoryExists
		}
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}
	return categoryFromModel(model), nil
}

// ListCategories returns all categories ordered by id.
func (s *GormStore) ListCategories() ([]domain.Category, error) {
	var models []CategoryModel
	if err := s.db.Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Category, 0, len(models))
	for _, m := range models {
		res = append(res, categoryFromModel(m))
	}
	return res, nil
}

// GetCategory returns a category by id.
func (s *GormStore) GetCategory(id uint) (domain.Category, bool, error) {
	var model CategoryModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Category{}, false, nil
		}
		return domain.Category{}, false, err
	}
	return categoryFromModel(model), true, nil
}

// CreateBook inserts a book row and returns it with the allocated id.
func (s *GormStore) CreateBook(b domain.Book) (domain.Book, error) {
	model := bookToModel(b)
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Book{}, fmt.Errorf("create book: %w", err)
	}
	return bookFromModel(model), nil
}

// ListBooks returns all books ordered by id.
func (s *GormStore) ListBooks() ([]domain.Book, error) {
	return s.listBooks()
}

// ListBooksByCategory returns books filtered by category.
func (s *GormStore) ListBooksByCategory(categoryID uint) ([]domain.Book, error) {
	return s.listBooks("category_id = ?", categoryID)
}

func (s *GormStore) listBooks(conds ...any) ([]domain.Book, error) {
	var models []BookModel
	tx := s.db.Order("id ASC")
	if len(conds) > 0 {
		tx = tx.Where(conds[0], conds[1:]...)
	}
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Book, 0, len(models))
	for _, m := range models {
		res = append(res, bookFromModel(m))
	}
	return res, nil
}

// GetBook retrieves a book by id.
func (s *GormStore) GetBook(id uint) (domain.Book, bool, error) {
	var model BookModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Book{}, false, nil
		}
		return domain.Book{}, false, err
	}
	return bookFromModel(model), true, nil
}

// UpdateBook replaces title and description, and the cover name when given.
func (s *GormStore) UpdateBook(id uint, title, description string, cover *string) error {
	fields := map[string]any{
		"title":       title,
		"description": description,
	}
	if cover != nil {
		fields["cover"] = *cover
	}
	tx := s.db.Model(&BookModel{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

// SetCover points the book at a cover blob.
func (s *GormStore) SetCover(id uint, filename string) error {
	tx := s.db.Model(&BookModel{}).Where("id = ?", id).Update("cover", filename)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

// DeleteBook removes the row. Blob cleanup is the service's job.
func (s *GormStore) DeleteBook(id uint) error {
	return s.db.Delete(&BookModel{}, "id = ?", id).Error
}

func categoryFromModel(m CategoryModel) domain.Category {
	return domain.Category{ID: m.ID, Name: m.Name}
}

func bookToModel(b domain.Book) BookModel {
	return BookModel{
		ID:          b.ID,
		Title:       b.Title,
		Description: b.Description,
		Cover:       b.Cover,
		CategoryID:  b.CategoryID,
	}
}

func bookFromModel(m BookModel) domain.Book {
	return domain.Book{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Cover:       m.Cover,
		CategoryID:  m.CategoryID,
	}
}
