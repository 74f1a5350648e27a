package models

import (
	"time"
)

// DefaultNoteTitle is the placeholder title for notes created without one.
const DefaultNoteTitle = "Note Title"

// Category groups a user's notes. Categories are exclusively scoped to one
// user and a user cannot have two categories with the same name.
type Category struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"type:char(36);not null;index:idx_user_category,unique"`
	Name      string `gorm:"size:100;not null;index:idx_user_category,unique"`
	Color     string `gorm:"type:char(7);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Note is a single note owned by exactly one user. The owning user never
// changes after creation. Deleting a category clears the reference instead
// of removing the note.
type Note struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	UserID     string    `gorm:"type:char(36);not null;index"`
	CategoryID *uint64   `gorm:"index"`
	Title      string    `gorm:"size:255;not null;default:'Note Title'"`
	Content    string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`

	User     User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

// TableName overrides the table name for Category
func (Category) TableName() string {
	return "categories"
}

// TableName overrides the table name for Note
func (Note) TableName() string {
	return "notes"
}
