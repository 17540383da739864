package store

// GORM models used for persistence.
type CategoryModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

func (CategoryModel) TableName() string { return "categories" }

type BookModel struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"not null;index"`
	Description string `gorm:"not null"`
	Cover       string
	CategoryID  *uint          `gorm:"index"`
	Category    *CategoryModel `gorm:"foreignKey:CategoryID"`
}

func (BookModel) TableName() string { return "books" }
