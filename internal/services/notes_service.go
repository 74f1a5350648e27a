package services

import (
	"errors"

	"github.com/turbonotes/backend/internal/models"
	"github.com/turbonotes/backend/internal/types"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a record does not exist or is owned by
// someone else. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("not found")

// noteCountExpr computes the live note count per category. Scoped to the
// category owner so another user's rows can never inflate the count.
const noteCountExpr = "categories.*, " +
	"(SELECT COUNT(*) FROM notes WHERE notes.category_id = categories.id " +
	"AND notes.user_id = categories.user_id) AS note_count"

// CategoryWithCount is a category annotated with its current note count,
// computed at query time rather than stored.
type CategoryWithCount struct {
	models.Category
	NoteCount int64
}

// NoteInput carries the writable note fields. CategoryID distinguishes
// absent from explicit null so partial updates can clear the category.
type NoteInput struct {
	Title      *string                          `json:"title"`
	Content    *string                          `json:"content"`
	CategoryID types.Optional[types.FlexUint64] `json:"category_id"`
}

// ListCategories returns all categories owned by the user, ordered by name
func ListCategories(db *gorm.DB, userID string) ([]CategoryWithCount, error) {
	var categories []CategoryWithCount
	err := db.Model(&models.Category{}).
		Select(noteCountExpr).
		Where("categories.user_id = ?", userID).
		Order("categories.name").
		Find(&categories).Error
	return categories, err
}

// GetCategory returns one category owned by the user
func GetCategory(db *gorm.DB, userID string, categoryID uint64) (*CategoryWithCount, error) {
	var category CategoryWithCount
	err := db.Model(&models.Category{}).
		Select(noteCountExpr).
		Where("categories.user_id = ? AND categories.id = ?", userID, categoryID).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// ListNotes returns the user's notes, newest change first. A category filter
// intersects with the ownership filter: a nonexistent or foreign category id
// yields an empty result, never an error.
func ListNotes(db *gorm.DB, userID string, categoryID *uint64) ([]models.Note, error) {
	query := db.Preload("Category").
		Where("notes.user_id = ?", userID).
		Order("notes.updated_at DESC")

	if categoryID != nil {
		query = query.Where("notes.category_id = ?", *categoryID)
	}

	var notes []models.Note
	err := query.Find(&notes).Error
	return notes, err
}

// GetNote returns one note owned by the user
func GetNote(db *gorm.DB, userID string, noteID uint64) (*models.Note, error) {
	var note models.Note
	err := db.Preload("Category").
		Where("notes.user_id = ? AND notes.id = ?", userID, noteID).
		First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// CreateNote persists a new note owned by the user. An explicit category must
// be owned by the user; without one the user's "Random Thoughts" category is
// assigned when present.
func CreateNote(db *gorm.DB, userID string, input NoteInput) (*models.Note, error) {
	note := models.Note{
		UserID: userID,
		Title:  models.DefaultNoteTitle,
	}
	if input.Title != nil && *input.Title != "" {
		note.Title = *input.Title
	}
	if input.Content != nil {
		note.Content = *input.Content
	}

	if input.CategoryID.Set && input.CategoryID.Valid {
		categoryID, err := resolveOwnCategory(db, userID, input.CategoryID.Value.Uint64())
		if err != nil {
			return nil, err
		}
		note.CategoryID = categoryID
	} else {
		// Both an absent and an explicit-null category fall back to the
		// default category when the user still has one.
		var defaultCategory models.Category
		err := db.Where("user_id = ? AND name = ?", userID, "Random Thoughts").
			First(&defaultCategory).Error
		if err == nil {
			note.CategoryID = &defaultCategory.ID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if err := db.Create(&note).Error; err != nil {
		return nil, err
	}

	return GetNote(db, userID, note.ID)
}

// UpdateNote applies the supplied fields to a note owned by the user and
// refreshes its updated_at timestamp.
func UpdateNote(db *gorm.DB, userID string, noteID uint64, input NoteInput) (*models.Note, error) {
	if _, err := GetNote(db, userID, noteID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Content != nil {
		updates["content"] = *input.Content
	}
	if input.CategoryID.Set {
		if input.CategoryID.Valid {
			categoryID, err := resolveOwnCategory(db, userID, input.CategoryID.Value.Uint64())
			if err != nil {
				return nil, err
			}
			updates["category_id"] = *categoryID
		} else {
			updates["category_id"] = nil
		}
	}

	if len(updates) > 0 {
		// Update through a scoped statement, not the fetched struct: a
		// model carrying a preloaded Category would re-save the old
		// association and overwrite a changed or cleared category_id.
		err := db.Model(&models.Note{}).
			Where("user_id = ? AND id = ?", userID, noteID).
			Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}

	return GetNote(db, userID, noteID)
}

// DeleteNote removes a note owned by the user
func DeleteNote(db *gorm.DB, userID string, noteID uint64) error {
	result := db.Where("user_id = ? AND id = ?", userID, noteID).
		Delete(&models.Note{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// resolveOwnCategory validates that a category belongs to the user. A foreign
// category is invalid input, not a permission error: the lookup is scoped to
// the user's own categories only.
func resolveOwnCategory(db *gorm.DB, userID string, categoryID uint64) (*uint64, error) {
	var category models.Category
	err := db.Where("user_id = ? AND id = ?", userID, categoryID).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NewValidationError("category_id", "Invalid category.")
		}
		return nil, err
	}
	return &category.ID, nil
}
