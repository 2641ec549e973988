package models

import "time"

// MaxCommentLength bounds comment content.
const MaxCommentLength = 1000

// Comment is an immutable note on a task. Comments can be created and
// deleted but never edited.
type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	// User carries the author's summary for display.
	User *UserRef `json:"user,omitempty"`
}
