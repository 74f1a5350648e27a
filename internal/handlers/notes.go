package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/turbonotes/backend/internal/middleware"
	"github.com/turbonotes/backend/internal/models"
	"github.com/turbonotes/backend/internal/services"
	"github.com/turbonotes/backend/internal/types"
	"github.com/turbonotes/backend/internal/utils"
	"gorm.io/gorm"
)

// NotesHandler handles category and note routes. Every operation is scoped
// to the authenticated caller.
type NotesHandler struct {
	DB *gorm.DB
}

type categoryResponse struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	NoteCount int64  `json:"note_count"`
}

// categoryRef is the minimal category shape embedded in note bodies
type categoryRef struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type noteResponse struct {
	ID        uint64       `json:"id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	Category  *categoryRef `json:"category"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func newNoteResponse(note *models.Note) noteResponse {
	resp := noteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
	if note.Category != nil {
		resp.Category = &categoryRef{
			ID:    note.Category.ID,
			Name:  note.Category.Name,
			Color: note.Category.Color,
		}
	}
	return resp
}

// ListCategories handles GET /api/categories/
func (h *NotesHandler) ListCategories(c *fiber.Ctx) error {
	userID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}

	categories, err := services.ListCategories(h.DB, userID)
	if err != nil {
		return serviceError(c, err)
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		out = append(out, categoryResponse{
			ID:        cat.ID,
			Name:      cat.Name,
			Color:     cat.Color,
			NoteCount: cat.NoteCount,
		})
	}

	return c.Status(fiber.StatusOK).JSON(out)
}

// GetCategory handles GET /api/categories/:id/
func (h *NotesHandler) GetCategory(c *fiber.Ctx) error {
	userID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}

	categoryID, err := parseID(c)
	if err != nil {
		return utils.NotFoundResponse(c, "Not found.")
	}

	category, err := services.GetCategory(h.DB, userID, categoryID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(categoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		Color:     category.Color,
		NoteCount: category.NoteCount,
	})
}

// ListNotes handles GET /api/notes/?category={id}
func (h *NotesHandler) ListNotes(c *fiber.Ctx) error {
	userID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}

	var categoryID *uint64
	if raw := c.Query("category"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			// An unparsable filter matches nothing, same as a
			// nonexistent or foreign category id.
			return c.Status(fiber.StatusOK).JSON([]noteResponse{})
		}
		categoryID = &id
	}

	notes, err := services.ListNotes(h.DB, userID, categoryID)
	if err != nil {
		return serviceError(c, err)
	}

	out := make([]noteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, newNoteResponse(&notes[i]))
	}

	return c.Status(fiber.StatusOK).JSON(out)
}

// GetNote handles GET /api/notes/:id/
func (h *NotesHandler) GetNote(c *fiber.Ctx) error {
	userID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}

	noteID, err := parseID(c)
	if err != nil {
		return utils.NotFoundResponse(c, "Not found.")
	}

	note, err := services.GetNote(h.DB, userID, noteID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(newNoteResponse(note))
}

// CreateNote handles POST /api/notes/
func (h *NotesHandler) CreateNote(c *fiber.Ctx) error {
	userID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}

	var input services.NoteInput
	if err := c.BodyParser(&input); err != nil {
		return serviceError(c, types.NewValidationError("non_field_errors", "Malformed request body."))
	}

	note, err := services.CreateNote(h.DB, userID, input)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(newNoteResponse(note))
}

// UpdateNote handles PATCH /api/notes/:id/
func (h *NotesHandler) UpdateNote(c *fiber.Ctx) error {
	userID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}

	noteID, err := parseID(c)
	if err != nil {
		return utils.NotFoundResponse(c, "Not found.")
	}

	var input services.NoteInput
	if err := c.BodyParser(&input); err != nil {
		return serviceError(c, types.NewValidationError("non_field_errors", "Malformed request body."))
	}

	note, err := services.UpdateNote(h.DB, userID, noteID, input)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(newNoteResponse(note))
}

// DeleteNote handles DELETE /api/notes/:id/
func (h *NotesHandler) DeleteNote(c *fiber.Ctx) error {
	userID, err := middleware.CallerID(c)
	if err != nil {
		return err
	}

	noteID, err := parseID(c)
	if err != nil {
		return utils.NotFoundResponse(c, "Not found.")
	}

	if err := services.DeleteNote(h.DB, userID, noteID); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// parseID reads the numeric :id path parameter. A non-numeric id can never
// match a record, so callers turn the error into a 404.
func parseID(c *fiber.Ctx) (uint64, error) {
	return strconv.ParseUint(c.Params("id"), 10, 64)
}
