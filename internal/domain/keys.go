package domain

import "strconv"

// PDFKeyFor derives the blob-store key for a book id. The key depends on
// the id, so the row must be created (id allocated) before the blob write.
func PDFKeyFor(id uint) string {
	return strconv.FormatUint(uint64(id), 10) + ".pdf"
}
