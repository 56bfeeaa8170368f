// Package notes provides database operations for note management.
//
// This package implements the NotesStore interface defined in
// internal/http/notes.go.
//
// # Interface Implementation
//
//	var _ http.NotesStore = (*Repository)(nil)
package notes

import (
	"errors"

	"gorm.io/gorm"

	"github.com/owaspnotes/notesapp/internal/entities"
)

var ErrNoteNotFound = errors.New("note not found")

// Repository handles all note database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new notes repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByUser returns all notes owned by a user, most recently updated first.
func (r *Repository) ListByUser(userID uint) ([]entities.Note, error) {
	var notes []entities.Note
	err := r.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&notes).Error
	return notes, err
}

// GetByID retrieves a note by ID regardless of owner. The ownership check
// happens at the controller layer so that "not found" and "not yours"
// remain distinct outcomes.
func (r *Repository) GetByID(id uint) (*entities.Note, error) {
	var note entities.Note
	err := r.db.First(&note, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return &note, nil
}

// Create stores a new note for the given owner.
func (r *Repository) Create(note *entities.Note) error {
	return r.db.Create(note).Error
}

// Update applies a partial update to a note. Only non-nil fields of upd
// are written; a non-nil *false IsPrivate still overwrites. The owner
// column is never touched.
func (r *Repository) Update(id uint, upd entities.NoteUpdate) (*entities.Note, error) {
	updates := map[string]any{}
	if upd.Title != nil {
		updates["title"] = *upd.Title
	}
	if upd.Content != nil {
		updates["content"] = *upd.Content
	}
	if upd.IsPrivate != nil {
		updates["is_private"] = *upd.IsPrivate
	}

	if len(updates) > 0 {
		result := r.db.Model(&entities.Note{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, ErrNoteNotFound
		}
	}

	return r.GetByID(id)
}

// Delete removes a note by ID.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Note{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}
