// Package models defines the wire types shared between the API client and
// the dashboard layer. JSON tags follow the backend's snake_case fields.
package models

import "time"

// FileRecord represents one stored object in the user's library.
// The server is the single source of truth for every field: records are
// created by a successful upload response and only ever updated by a
// server-driven refresh, never patched locally.
type FileRecord struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`      // server-assigned storage name
	OriginalName string    `json:"original_name"` // name the user uploaded with
	Size         int64     `json:"size"`
	MimeType     string    `json:"mime_type"`
	IsShared     bool      `json:"is_shared"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// DisplayName returns the user-facing name for the file.
func (f FileRecord) DisplayName() string {
	if f.OriginalName != "" {
		return f.OriginalName
	}
	return f.Filename
}
