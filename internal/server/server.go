package server

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"bookcatalog/internal/app"
	"bookcatalog/internal/domain"
	"bookcatalog/internal/util"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App            *app.App
	MaxUploadBytes int64
}

// Server exposes the catalog HTTP endpoints.
type Server struct {
	app            *app.App
	mux            *http.ServeMux
	maxUploadBytes int64
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	maxUploadBytes := cfg.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = 50 * 1024 * 1024
	}
	s := &Server{
		app:            cfg.App,
		mux:            http.NewServeMux(),
		maxUploadBytes: maxUploadBytes,
	}
	s.routes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog(s.mux))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleHome)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/categories/", s.handleCategories)
	s.mux.HandleFunc("/books/", s.handleBooks)
	s.mux.HandleFunc("/covers/", s.handleCover)
	s.mux.HandleFunc("/upload/", s.handleUpload)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	// "/" is the mux fallback; anything else under it is unknown.
	if r.URL.Path != "/" {
		notFound(w, r, "not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "API is running")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// /categories/ or /categories/{id}/books
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/categories/")
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			s.handleListCategories(w, r)
		case http.MethodPost:
			s.handleCreateCategory(w, r)
		default:
			methodNotAllowed(w, r)
		}
		return
	}
	parts := strings.Split(strings.TrimSuffix(path, "/"), "/")
	if len(parts) != 2 || parts[1] != "books" {
		notFound(w, r, "not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	id, ok := parseID(w, r, parts[0])
	if !ok {
		return
	}
	s.handleBooksByCategory(w, r, id)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.app.ListCategories(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categoriesResponse(categories)})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid form data")
		return
	}
	cat, err := s.app.CreateCategory(r.Context(), r.PostFormValue("name"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse{ID: cat.ID, Name: cat.Name})
}

func (s *Server) handleBooksByCategory(w http.ResponseWriter, r *http.Request, id uint) {
	cat, books, err := s.app.ListBooksByCategory(r.Context(), id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category": cat.Name,
		"books":    booksResponse(books),
	})
}

// /books/, /books/{id}, /books/{id}/info, /books/{id}/update-cover/
func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/books/")
	if path == "" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r)
			return
		}
		s.handleListBooks(w, r)
		return
	}
	parts := strings.SplitN(strings.TrimSuffix(path, "/"), "/", 2)
	id, ok := parseID(w, r, parts[0])
	if !ok {
		return
	}
	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleBookFile(w, r, id)
		case http.MethodPut:
			s.handleUpdateBook(w, r, id)
		case http.MethodDelete:
			s.handleDeleteBook(w, r, id)
		default:
			methodNotAllowed(w, r)
		}
		return
	}
	switch parts[1] {
	case "info":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r)
			return
		}
		s.handleBookInfo(w, r, id)
	case "update-cover":
		if r.Method != http.MethodPut {
			methodNotAllowed(w, r)
			return
		}
		s.handleUpdateCover(w, r, id)
	default:
		notFound(w, r, "not found")
	}
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.app.ListBooks(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": booksResponse(books)})
}

func (s *Server) handleBookFile(w http.ResponseWriter, r *http.Request, id uint) {
	rc, err := s.app.OpenBookFile(r.Context(), id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	defer rc.Close()
	w.Header().Set("Content-Type", "application/pdf")
	_, _ = io.Copy(w, rc)
}

func (s *Server) handleBookInfo(w http.ResponseWriter, r *http.Request, id uint) {
	book, err := s.app.GetBookInfo(r.Context(), id)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookInfoResponse{
		ID:          book.ID,
		Title:       book.Title,
		Description: book.Description,
		Cover:       book.Cover,
	})
}

// /covers/{filename}
func (s *Server) handleCover(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	filename := strings.TrimPrefix(r.URL.Path, "/covers/")
	if filename == "" {
		notFound(w, r, "not found")
		return
	}
	rc, err := s.app.OpenCover(r.Context(), filename)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	defer rc.Close()
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = io.Copy(w, rc)
}

// POST /upload/ — multipart file plus title/description/category_id fields.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/upload/" {
		notFound(w, r, "not found")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid form data")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file is required (field: file)")
		return
	}
	defer file.Close()

	var categoryID *uint
	if raw := strings.TrimSpace(r.FormValue("category_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid category_id")
			return
		}
		id := uint(parsed)
		categoryID = &id
	}

	book, err := s.app.UploadBook(r.Context(), header.Filename, file, header.Size,
		r.FormValue("title"), r.FormValue("description"), categoryID)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		Info: "file " + header.Filename + " saved",
		ID:   book.ID,
	})
}

// PUT /books/{id}/update-cover/ — multipart file.
func (s *Server) handleUpdateCover(w http.ResponseWriter, r *http.Request, id uint) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid form data")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file is required (field: file)")
		return
	}
	defer file.Close()

	book, err := s.app.UpdateCover(r.Context(), id, header.Filename, file, header.Size)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, infoResponse{Info: "cover " + book.Cover + " saved"})
}

// PUT /books/{id} — form title/description and optional cover filename.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request, id uint) {
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid form data")
		return
	}
	var cover *string
	if r.PostForm.Has("cover") {
		if value := r.PostFormValue("cover"); value != "" {
			cover = &value
		}
	}
	if _, err := s.app.UpdateBook(r.Context(), id, r.PostFormValue("title"), r.PostFormValue("description"), cover); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, infoResponse{Info: "book updated"})
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request, id uint) {
	if err := s.app.DeleteBook(r.Context(), id); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, infoResponse{Info: "book deleted"})
}

func parseID(w http.ResponseWriter, r *http.Request, raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		writeError(w, r, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// writeAppError maps service errors onto HTTP statuses. Anything outside
// the domain taxonomy is an internal error and logged with its cause.
func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrBookNotFound),
		errors.Is(err, domain.ErrBookFileNotFound),
		errors.Is(err, domain.ErrCoverNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrCategoryExists):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnsupportedFileType),
		errors.Is(err, domain.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		util.LoggerFromContext(r.Context()).Error("request failed",
			"method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func notFound(w http.ResponseWriter, r *http.Request, msg string) {
	writeError(w, r, http.StatusNotFound, msg)
}
