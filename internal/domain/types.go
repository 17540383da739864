package domain

// Category groups books under a unique name.
type Category struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Book is the catalog record for one uploaded PDF. The PDF bytes and the
// cover image live in the blob store, not in the row: the PDF is keyed by
// "<id>.pdf" and the cover by the filename held in Cover.
type Book struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Cover       string `json:"cover,omitempty"`
	CategoryID  *uint  `json:"categoryId,omitempty"`
}

// PDFKey returns the blob-store key for the book's PDF.
func (b Book) PDFKey() string {
	return PDFKeyFor(b.ID)
}
