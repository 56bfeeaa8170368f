package entities

import (
	"time"
)

// Note is an owned resource. UserID is set at creation and never changes;
// every mutating operation must verify it against the authenticated user.
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"userId"`
	Title     string    `gorm:"size:512" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	IsPrivate bool      `gorm:"default:true" json:"isPrivate"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteUpdate carries a partial update. Nil fields keep their stored value;
// non-nil fields overwrite, including IsPrivate set to false. Pointer
// fields are what let the merge tell "absent" from "present and falsy".
type NoteUpdate struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	IsPrivate *bool   `json:"isPrivate"`
}

func (Note) TableName() string {
	return "notes"
}
