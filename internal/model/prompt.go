package model

import "time"

// Prompt is a user-owned prompt template persisted in the prompts table.
type Prompt struct {
	ID          string    `db:"id"          json:"id"` // ULID
	UserID      string    `db:"user_id"     json:"user_id"`
	Name        string    `db:"name"        json:"name"`
	Description string    `db:"description" json:"description"`
	Content     string    `db:"content"     json:"content"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}

// FreePromptLimit is the number of prompts a free-tier user may keep.
const FreePromptLimit = 3
