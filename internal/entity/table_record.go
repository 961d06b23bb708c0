package entity

import "time"

// TableRecord is one persisted canonical table, JSON-encoded in Content.
// PersonID is copied from the owning file at creation time and is not kept
// in sync if the file's person changes later; callers must treat it as a
// snapshot, not a derived relation.
type TableRecord struct {
	ID        int64     `json:"id"`
	FileID    int64     `json:"file_id"`
	PersonID  *int64    `json:"person_id,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
