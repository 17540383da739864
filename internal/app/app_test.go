package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookcatalog/internal/domain"
	"bookcatalog/internal/storage"
	"bookcatalog/internal/store"
)

func newTestApp(t *testing.T) (*App, *store.MemoryStore, string, string) {
	t.Helper()
	booksDir := filepath.Join(t.TempDir(), "books")
	coversDir := filepath.Join(t.TempDir(), "covers")
	blobs, err := storage.NewFileStore(booksDir, coversDir)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	st := store.NewMemoryStore()
	return New(st, blobs), st, booksDir, coversDir
}

func uploadPDF(t *testing.T, a *App, title string, payload []byte, categoryID *uint) domain.Book {
	t.Helper()
	book, err := a.UploadBook(context.Background(), "book.pdf", bytes.NewReader(payload), int64(len(payload)), title, "a description", categoryID)
	if err != nil {
		t.Fatalf("upload book: %v", err)
	}
	return book
}

func TestUploadBookCreatesRowAndBlob(t *testing.T) {
	a, st, booksDir, _ := newTestApp(t)
	payload := []byte("%PDF-1.7 content")

	book := uploadPDF(t, a, "T", payload, nil)
	if book.ID == 0 {
		t.Fatal("id not allocated")
	}

	books, err := st.ListBooks()
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("book count = %d, want 1", len(books))
	}
	got, err := os.ReadFile(filepath.Join(booksDir, book.PDFKey()))
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("blob bytes = %q, want %q", got, payload)
	}
}

func TestUploadBookRejectsNonPDF(t *testing.T) {
	a, st, booksDir, _ := newTestApp(t)

	_, err := a.UploadBook(context.Background(), "notes.txt", strings.NewReader("text"), 4, "T", "D", nil)
	if !errors.Is(err, domain.ErrUnsupportedFileType) {
		t.Fatalf("upload txt = %v, want ErrUnsupportedFileType", err)
	}

	books, _ := st.ListBooks()
	if len(books) != 0 {
		t.Fatalf("book count = %d, want 0", len(books))
	}
	entries, _ := os.ReadDir(booksDir)
	if len(entries) != 0 {
		t.Fatalf("blob count = %d, want 0", len(entries))
	}
}

func TestUploadBookRequiresFields(t *testing.T) {
	a, _, _, _ := newTestApp(t)
	ctx := context.Background()

	if _, err := a.UploadBook(ctx, "b.pdf", strings.NewReader("x"), 1, "", "D", nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("missing title = %v, want ErrInvalidInput", err)
	}
	if _, err := a.UploadBook(ctx, "b.pdf", strings.NewReader("x"), 1, "T", "", nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("missing description = %v, want ErrInvalidInput", err)
	}
}

func TestUploadBookMissingCategory(t *testing.T) {
	a, st, _, _ := newTestApp(t)

	missing := uint(42)
	_, err := a.UploadBook(context.Background(), "b.pdf", strings.NewReader("x"), 1, "T", "D", &missing)
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("upload with bad category = %v, want ErrCategoryNotFound", err)
	}
	books, _ := st.ListBooks()
	if len(books) != 0 {
		t.Fatalf("book count = %d, want 0", len(books))
	}
}

type failingBlobStore struct{}

func (failingBlobStore) Put(context.Context, storage.Namespace, string, io.Reader, int64) error {
	return errors.New("disk full")
}

func (failingBlobStore) Open(context.Context, storage.Namespace, string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}

func (failingBlobStore) Delete(context.Context, storage.Namespace, string) error {
	return nil
}

func TestUploadBookDeletesRowWhenBlobWriteFails(t *testing.T) {
	st := store.NewMemoryStore()
	a := New(st, failingBlobStore{})

	_, err := a.UploadBook(context.Background(), "b.pdf", strings.NewReader("x"), 1, "T", "D", nil)
	if err == nil {
		t.Fatal("upload succeeded despite blob write failure")
	}
	books, _ := st.ListBooks()
	if len(books) != 0 {
		t.Fatalf("orphan rows = %d, want 0", len(books))
	}
}

func TestOpenBookFileDistinguishesMissingRowFromMissingBlob(t *testing.T) {
	a, _, booksDir, _ := newTestApp(t)
	ctx := context.Background()

	if _, err := a.OpenBookFile(ctx, 7); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("missing row = %v, want ErrBookNotFound", err)
	}

	book := uploadPDF(t, a, "T", []byte("pdf"), nil)
	if err := os.Remove(filepath.Join(booksDir, book.PDFKey())); err != nil {
		t.Fatalf("remove blob: %v", err)
	}
	if _, err := a.OpenBookFile(ctx, book.ID); !errors.Is(err, domain.ErrBookFileNotFound) {
		t.Fatalf("missing blob = %v, want ErrBookFileNotFound", err)
	}
}

func TestUpdateCoverReplacesOldBlob(t *testing.T) {
	a, st, _, coversDir := newTestApp(t)
	ctx := context.Background()
	book := uploadPDF(t, a, "T", []byte("pdf"), nil)

	if _, err := a.UpdateCover(ctx, book.ID, "x.png", strings.NewReader("first"), 5); err != nil {
		t.Fatalf("first cover update: %v", err)
	}
	got, _, _ := st.GetBook(book.ID)
	if got.Cover != "x.png" {
		t.Fatalf("cover = %q, want x.png", got.Cover)
	}
	if _, err := os.Stat(filepath.Join(coversDir, "x.png")); err != nil {
		t.Fatalf("cover blob missing: %v", err)
	}

	if _, err := a.UpdateCover(ctx, book.ID, "y.png", strings.NewReader("second"), 6); err != nil {
		t.Fatalf("second cover update: %v", err)
	}
	got, _, _ = st.GetBook(book.ID)
	if got.Cover != "y.png" {
		t.Fatalf("cover = %q, want y.png", got.Cover)
	}
	if _, err := os.Stat(filepath.Join(coversDir, "x.png")); !os.IsNotExist(err) {
		t.Fatalf("old cover blob not cleaned up: %v", err)
	}
	rc, err := a.OpenCover(ctx, "y.png")
	if err != nil {
		t.Fatalf("open new cover: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "second" {
		t.Fatalf("cover bytes = %q, want %q", data, "second")
	}
}

func TestUpdateCoverMissingBook(t *testing.T) {
	a, _, _, _ := newTestApp(t)
	_, err := a.UpdateCover(context.Background(), 9, "x.png", strings.NewReader("x"), 1)
	if !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("update cover = %v, want ErrBookNotFound", err)
	}
}

func TestUpdateBookTrustsCoverString(t *testing.T) {
	a, _, _, _ := newTestApp(t)
	ctx := context.Background()
	book := uploadPDF(t, a, "T", []byte("pdf"), nil)

	cover := "ghost.png"
	updated, err := a.UpdateBook(ctx, book.ID, "T2", "D2", &cover)
	if err != nil {
		t.Fatalf("update book: %v", err)
	}
	if updated.Cover != "ghost.png" {
		t.Fatalf("cover = %q, want ghost.png", updated.Cover)
	}
	// The blob is not verified at write time; the mismatch surfaces on read.
	if _, err := a.OpenCover(ctx, "ghost.png"); !errors.Is(err, domain.ErrCoverNotFound) {
		t.Fatalf("open ghost cover = %v, want ErrCoverNotFound", err)
	}
}

func TestDeleteBookRemovesRowAndBlobs(t *testing.T) {
	a, st, booksDir, coversDir := newTestApp(t)
	ctx := context.Background()
	book := uploadPDF(t, a, "T", []byte("pdf"), nil)
	if _, err := a.UpdateCover(ctx, book.ID, "c.png", strings.NewReader("img"), 3); err != nil {
		t.Fatalf("update cover: %v", err)
	}

	if err := a.DeleteBook(ctx, book.ID); err != nil {
		t.Fatalf("delete book: %v", err)
	}
	if _, ok, _ := st.GetBook(book.ID); ok {
		t.Fatal("row still present after delete")
	}
	if _, err := os.Stat(filepath.Join(booksDir, book.PDFKey())); !os.IsNotExist(err) {
		t.Fatalf("pdf blob still present: %v", err)
	}
	if _, err := os.Stat(filepath.Join(coversDir, "c.png")); !os.IsNotExist(err) {
		t.Fatalf("cover blob still present: %v", err)
	}

	if err := a.DeleteBook(ctx, book.ID); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("second delete = %v, want ErrBookNotFound", err)
	}
}

func TestListBooksByCategoryMissing(t *testing.T) {
	a, _, _, _ := newTestApp(t)
	_, _, err := a.ListBooksByCategory(context.Background(), 5)
	if !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("list by missing category = %v, want ErrCategoryNotFound", err)
	}
}

func TestCreateCategoryDuplicate(t *testing.T) {
	a, st, _, _ := newTestApp(t)
	ctx := context.Background()

	if _, err := a.CreateCategory(ctx, "fiction"); err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := a.CreateCategory(ctx, "fiction"); !errors.Is(err, domain.ErrCategoryExists) {
		t.Fatalf("duplicate = %v, want ErrCategoryExists", err)
	}
	categories, _ := st.ListCategories()
	if len(categories) != 1 {
		t.Fatalf("category count = %d, want 1", len(categories))
	}
}
