package entity

import "time"

// FileRecord represents one ingested source document. PersonID is optional:
// a file may be unattributed. Rows are never updated after creation, and
// deleting one does not cascade to its table records.
type FileRecord struct {
	ID        int64     `json:"id"`
	PersonID  *int64    `json:"person_id,omitempty"`
	FileName  string    `json:"file_name"`
	FilePath  string    `json:"file_path"`
	FileType  string    `json:"file_type"`
	CreatedAt time.Time `json:"created_at"`
}
