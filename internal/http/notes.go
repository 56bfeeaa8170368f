package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/owaspnotes/notesapp/internal/auth"
	notesdb "github.com/owaspnotes/notesapp/internal/database/notes"
	"github.com/owaspnotes/notesapp/internal/entities"
)

// NotesStore defines database operations for note management.
type NotesStore interface {
	ListByUser(userID uint) ([]entities.Note, error)
	GetByID(id uint) (*entities.Note, error)
	Create(note *entities.Note) error
	Update(id uint, upd entities.NoteUpdate) (*entities.Note, error)
	Delete(id uint) error
}

// NotesController serves the note CRUD endpoints. Every handler runs
// behind the session guard; ownership is enforced per resource here.
type NotesController struct {
	store  NotesStore
	stepUp *auth.StepUpTickets
}

func NewNotesController(store NotesStore, stepUp *auth.StepUpTickets) *NotesController {
	return &NotesController{store: store, stepUp: stepUp}
}

// RegisterRoutes registers note routes behind the session guard.
func (nc *NotesController) RegisterRoutes(api *gin.RouterGroup, guard gin.HandlerFunc) {
	notes := api.Group("/notes", guard)
	notes.GET("", nc.ListNotes)
	notes.POST("", nc.CreateNote)
	notes.GET("/:id", nc.GetNote)
	notes.PUT("/:id", nc.UpdateNote)
	notes.DELETE("/:id", nc.DeleteNote)
}

type createNoteRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	IsPrivate *bool  `json:"isPrivate"`
}

// ListNotes returns the authenticated user's notes.
// GET /api/notes
func (nc *NotesController) ListNotes(c *gin.Context) {
	notes, err := nc.store.ListByUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list notes")
		return
	}
	c.JSON(http.StatusOK, notes)
}

// CreateNote creates a note owned by the authenticated user.
// POST /api/notes
func (nc *NotesController) CreateNote(c *gin.Context) {
	var req createNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.Title == "" || req.Content == "" {
		respondBadRequest(c, "please add a title and content")
		return
	}

	// Notes are private unless the caller says otherwise.
	isPrivate := true
	if req.IsPrivate != nil {
		isPrivate = *req.IsPrivate
	}

	note := &entities.Note{
		UserID:    GetUserID(c),
		Title:     req.Title,
		Content:   req.Content,
		IsPrivate: isPrivate,
	}

	if err := nc.store.Create(note); err != nil {
		respondInternalError(c, err, "create note")
		return
	}

	c.JSON(http.StatusCreated, note)
}

// GetNote returns a single owned note.
// GET /api/notes/:id
func (nc *NotesController) GetNote(c *gin.Context) {
	note, ok := nc.loadOwnedNote(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, note)
}

// UpdateNote applies a partial update to an owned note. Omitted fields
// keep their stored value; isPrivate:false still overwrites. Editing a
// note whose stored private flag is set requires a step-up ticket from a
// recent verify-password call, so the password check cannot be bypassed
// by calling the update endpoint directly.
// PUT /api/notes/:id
func (nc *NotesController) UpdateNote(c *gin.Context) {
	note, ok := nc.loadOwnedNote(c)
	if !ok {
		return
	}

	var upd entities.NoteUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if note.IsPrivate && nc.stepUp != nil {
		ticket := c.GetHeader(auth.HeaderStepUpTicket)
		if !nc.stepUp.Redeem(ticket, GetUserID(c)) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "password verification required"})
			return
		}
	}

	updated, err := nc.store.Update(note.ID, upd)
	if err != nil {
		if errors.Is(err, notesdb.ErrNoteNotFound) {
			respondNotFound(c, "note")
			return
		}
		respondInternalError(c, err, "update note")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteNote removes an owned note.
// DELETE /api/notes/:id
func (nc *NotesController) DeleteNote(c *gin.Context) {
	note, ok := nc.loadOwnedNote(c)
	if !ok {
		return
	}

	if err := nc.store.Delete(note.ID); err != nil {
		if errors.Is(err, notesdb.ErrNoteNotFound) {
			respondNotFound(c, "note")
			return
		}
		respondInternalError(c, err, "delete note")
		return
	}

	respondSuccess(c, "note removed")
}

// loadOwnedNote is the ownership guard: it loads the note from the :id
// parameter and checks the owner against the session identity. Absence is
// 404; an owner mismatch is 403 and discloses nothing beyond existence.
func (nc *NotesController) loadOwnedNote(c *gin.Context) (*entities.Note, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	note, err := nc.store.GetByID(id)
	if err != nil {
		if errors.Is(err, notesdb.ErrNoteNotFound) {
			respondNotFound(c, "note")
			return nil, false
		}
		respondInternalError(c, err, "load note")
		return nil, false
	}

	if note.UserID != GetUserID(c) {
		respondForbidden(c, "not authorized to access this note")
		return nil, false
	}

	return note, true
}
