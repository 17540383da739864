package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"bookcatalog/internal/domain"
	"bookcatalog/internal/storage"
	"bookcatalog/internal/store"
	"bookcatalog/internal/util"
)

// App is the catalog service. It mediates between the relational store and
// the blob store: every operation that touches both keeps the row and the
// blob from diverging as far as the two uncoordinated stores allow.
type App struct {
	store store.Store
	blobs storage.BlobStore
}

// New constructs the catalog service.
func New(st store.Store, blobs storage.BlobStore) *App {
	return &App{store: st, blobs: blobs}
}

// CreateCategory adds a category. Duplicate names surface the store's
// constraint violation as ErrCategoryExists.
func (a *App) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, fmt.Errorf("name is required: %w", domain.ErrInvalidInput)
	}
	cat, err := a.store.CreateCategory(name)
	if err != nil {
		return domain.Category{}, err
	}
	util.LoggerFromContext(ctx).Info("category created", "id", cat.ID, "name", cat.Name)
	return cat, nil
}

// ListCategories returns all categories.
func (a *App) ListCategories(_ context.Context) ([]domain.Category, error) {
	return a.store.ListCategories()
}

// ListBooks returns all books.
func (a *App) ListBooks(_ context.Context) ([]domain.Book, error) {
	return a.store.ListBooks()
}

// ListBooksByCategory returns the category and its books. A missing
// category is ErrCategoryNotFound, never an empty list.
func (a *App) ListBooksByCategory(_ context.Context, id uint) (domain.Category, []domain.Book, error) {
	cat, ok, err := a.store.GetCategory(id)
	if err != nil {
		return domain.Category{}, nil, err
	}
	if !ok {
		return domain.Category{}, nil, domain.ErrCategoryNotFound
	}
	books, err := a.store.ListBooksByCategory(id)
	if err != nil {
		return domain.Category{}, nil, err
	}
	return cat, books, nil
}

// GetBookInfo returns book metadata.
func (a *App) GetBookInfo(_ context.Context, id uint) (domain.Book, error) {
	book, ok, err := a.store.GetBook(id)
	if err != nil {
		return domain.Book{}, err
	}
	if !ok {
		return domain.Book{}, domain.ErrBookNotFound
	}
	return book, nil
}

// OpenBookFile streams the PDF for a book. A missing row and a missing blob
// are both 404 to the client but distinct failures here: a row without its
// blob means the two stores diverged, which is worth the louder log line.
func (a *App) OpenBookFile(ctx context.Context, id uint) (io.ReadCloser, error) {
	book, ok, err := a.store.GetBook(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	rc, err := a.blobs.Open(ctx, storage.NamespaceBooks, book.PDFKey())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			util.LoggerFromContext(ctx).Warn("book row has no PDF blob", "id", id, "key", book.PDFKey())
			return nil, domain.ErrBookFileNotFound
		}
		return nil, err
	}
	return rc, nil
}

// OpenCover streams a cover image by filename. Lookup is by raw blob key
// with no row involved, so any file in the covers namespace is reachable.
func (a *App) OpenCover(ctx context.Context, filename string) (io.ReadCloser, error) {
	rc, err := a.blobs.Open(ctx, storage.NamespaceCovers, filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, domain.ErrCoverNotFound
		}
		return nil, err
	}
	return rc, nil
}

// UploadBook creates a book row and writes its PDF blob. The blob key is
// derived from the row id, so the row is committed first; if the blob write
// then fails, the orphan row is deleted before the error is returned.
func (a *App) UploadBook(ctx context.Context, filename string, r io.Reader, size int64, title, description string, categoryID *uint) (domain.Book, error) {
	if strings.TrimSpace(title) == "" {
		return domain.Book{}, fmt.Errorf("title is required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(description) == "" {
		return domain.Book{}, fmt.Errorf("description is required: %w", domain.ErrInvalidInput)
	}
	if contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); contentType != "application/pdf" {
		return domain.Book{}, domain.ErrUnsupportedFileType
	}
	if categoryID != nil {
		if _, ok, err := a.store.GetCategory(*categoryID); err != nil {
			return domain.Book{}, err
		} else if !ok {
			return domain.Book{}, domain.ErrCategoryNotFound
		}
	}

	book, err := a.store.CreateBook(domain.Book{
		Title:       title,
		Description: description,
		CategoryID:  categoryID,
	})
	if err != nil {
		return domain.Book{}, fmt.Errorf("save book: %w", err)
	}
	if err := a.blobs.Put(ctx, storage.NamespaceBooks, book.PDFKey(), r, size); err != nil {
		if delErr := a.store.DeleteBook(book.ID); delErr != nil {
			util.LoggerFromContext(ctx).Error("orphan book row left after failed PDF write",
				"id", book.ID, "put_err", err, "delete_err", delErr)
		}
		return domain.Book{}, fmt.Errorf("save file: %w", err)
	}
	util.LoggerFromContext(ctx).Info("book uploaded",
		"id", book.ID, "title", book.Title, "file", book.PDFKey())
	return book, nil
}

// UpdateCover replaces the cover blob for a book and points the row at the
// new filename. The previous blob is removed once the new one is committed,
// so replacing a cover does not leak the old file.
func (a *App) UpdateCover(ctx context.Context, bookID uint, filename string, r io.Reader, size int64) (domain.Book, error) {
	book, ok, err := a.store.GetBook(bookID)
	if err != nil {
		return domain.Book{}, err
	}
	if !ok {
		return domain.Book{}, domain.ErrBookNotFound
	}
	key, err := storage.SafeKey(filename)
	if err != nil {
		return domain.Book{}, fmt.Errorf("cover filename is invalid: %w", domain.ErrInvalidInput)
	}
	if err := a.blobs.Put(ctx, storage.NamespaceCovers, key, r, size); err != nil {
		return domain.Book{}, fmt.Errorf("save cover: %w", err)
	}
	if err := a.store.SetCover(bookID, key); err != nil {
		return domain.Book{}, err
	}
	if book.Cover != "" && book.Cover != key {
		if err := a.blobs.Delete(ctx, storage.NamespaceCovers, book.Cover); err != nil {
			util.LoggerFromContext(ctx).Warn("old cover blob not removed", "id", bookID, "key", book.Cover, "err", err)
		}
	}
	util.LoggerFromContext(ctx).Info("cover updated", "id", bookID, "cover", key)
	book.Cover = key
	return book, nil
}

// UpdateBook replaces title and description, and optionally the cover
// filename. The cover string is taken as-is without checking that a blob
// exists under it; reads surface any mismatch as a 404 later.
func (a *App) UpdateBook(_ context.Context, id uint, title, description string, cover *string) (domain.Book, error) {
	if strings.TrimSpace(title) == "" {
		return domain.Book{}, fmt.Errorf("title is required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(description) == "" {
		return domain.Book{}, fmt.Errorf("description is required: %w", domain.ErrInvalidInput)
	}
	if err := a.store.UpdateBook(id, title, description, cover); err != nil {
		return domain.Book{}, err
	}
	book, ok, err := a.store.GetBook(id)
	if err != nil {
		return domain.Book{}, err
	}
	if !ok {
		return domain.Book{}, domain.ErrBookNotFound
	}
	return book, nil
}

// DeleteBook removes the PDF blob, the cover blob when one is named, and
// then the row. A blob-delete failure aborts before the row disappears so
// nothing on disk becomes unreachable.
func (a *App) DeleteBook(ctx context.Context, id uint) error {
	book, ok, err := a.store.GetBook(id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrBookNotFound
	}
	if err := a.blobs.Delete(ctx, storage.NamespaceBooks, book.PDFKey()); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if book.Cover != "" {
		if err := a.blobs.Delete(ctx, storage.NamespaceCovers, book.Cover); err != nil {
			return fmt.Errorf("delete cover: %w", err)
		}
	}
	if err := a.store.DeleteBook(id); err != nil {
		return err
	}
	util.LoggerFromContext(ctx).Info("book deleted", "id", id)
	return nil
}
