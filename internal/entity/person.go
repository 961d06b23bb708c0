package entity

import "time"

// Person represents a person row for data transfer between layers.
// Identity is the integer id; the name is freeform and non-unique.
type Person struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
