// Package model defines the data structures used throughout the application.
package model

import "time"

// Entry is a single glossary record: a phrase, its translation and optional
// usage/pronunciation/audio metadata.
//
// Optional fields are pointers so that "no value" round-trips to SQL NULL and
// JSON null. A non-nil optional field is never blank.
type Entry struct {
	ID            int64     `json:"id"`
	Phrase        string    `json:"phrase"`
	Translation   string    `json:"translation"`
	UsageContext  *string   `json:"usageContext"`
	Pronunciation *string   `json:"pronunciation"`
	AudioURL      *string   `json:"audioUrl"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// EntryInput carries the fields of a create request.
type EntryInput struct {
	Phrase        string
	Translation   string
	UsageContext  string
	Pronunciation string
	AudioURL      string
}

// EntryPatch carries a partial update. A nil field keeps the stored value;
// a blank optional field clears it.
type EntryPatch struct {
	Phrase        *string
	Translation   *string
	UsageContext  *string
	Pronunciation *string
	AudioURL      *string
}
