package store

import "bookcatalog/internal/domain"

// Store defines persistence operations for categories and books.
//
// Not-found and duplicate-name conditions surface as the domain sentinels;
// callers never see driver errors for those cases.
type Store interface {
	// categories
	CreateCategory(name string) (domain.Category, error)
	ListCategories() ([]domain.Category, error)
	GetCategory(id uint) (domain.Category, bool, error)

	// books
	CreateBook(book domain.Book) (domain.Book, error)
	ListBooks() ([]domain.Book, error)
	ListBooksByCategory(categoryID uint) ([]domain.Book, error)
	GetBook(id uint) (domain.Book, bool, error)
	UpdateBook(id uint, title, description string, cover *string) error
	SetCover(id uint, filename string) error
	DeleteBook(id uint) error
}
