package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"bookcatalog/internal/domain"
)

// Response schemas are enumerated per endpoint rather than dumping rows.

type categoryResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type bookResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Cover       string `json:"cover,omitempty"`
	CategoryID  *uint  `json:"categoryId,omitempty"`
}

type bookInfoResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Cover       string `json:"cover,omitempty"`
}

type uploadResponse struct {
	Info string `json:"info"`
	ID   uint   `json:"id"`
}

type infoResponse struct {
	Info string `json:"info"`
}

func categoriesResponse(categories []domain.Category) []categoryResponse {
	res := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		res = append(res, categoryResponse{ID: c.ID, Name: c.Name})
	}
	return res
}

func booksResponse(books []domain.Book) []bookResponse {
	res := make([]bookResponse, 0, len(books))
	for _, b := range books {
		res = append(res, bookResponse{
			ID:          b.ID,
			Title:       b.Title,
			Description: b.Description,
			Cover:       b.Cover,
			CategoryID:  b.CategoryID,
		})
	}
	return res
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Code:      errorCode(status, msg),
		RequestID: strings.TrimSpace(w.Header().Get("X-Request-Id")),
	})
}

func errorCode(status int, msg string) string {
	message := strings.ToLower(strings.TrimSpace(msg))
	switch {
	case message == "category not found":
		return "CATALOG_CATEGORY_NOT_FOUND"
	case message == "category name already exists":
		return "CATALOG_CATEGORY_EXISTS"
	case message == "book not found":
		return "CATALOG_BOOK_NOT_FOUND"
	case message == "book file not found":
		return "CATALOG_BOOK_FILE_NOT_FOUND"
	case message == "cover not found":
		return "CATALOG_COVER_NOT_FOUND"
	case strings.Contains(message, "unsupported file type"):
		return "CATALOG_UNSUPPORTED_FILE_TYPE"
	case strings.Contains(message, "file is required"):
		return "CATALOG_FILE_REQUIRED"
	case message == "invalid form data":
		return "CATALOG_INVALID_UPLOAD_FORM"
	case message == "method not allowed":
		return "SYSTEM_METHOD_NOT_ALLOWED"
	}

	switch status {
	case http.StatusBadRequest:
		return "CATALOG_INVALID_REQUEST"
	case http.StatusNotFound:
		return "CATALOG_NOT_FOUND"
	case http.StatusConflict:
		return "CATALOG_CONFLICT"
	case http.StatusMethodNotAllowed:
		return "SYSTEM_METHOD_NOT_ALLOWED"
	default:
		if status >= http.StatusInternalServerError {
			return "SYSTEM_INTERNAL_ERROR"
		}
		return "REQUEST_ERROR"
	}
}
