package models

import "time"

// File is a stored avatar asset. URL is filled in by the API layer from the
// configured base URL, it is not persisted.
type File struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
