package models

import "time"

// Project is the top-level organizational unit. A project owns zero or
// more tasks; deleting a project cascades to its tasks.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProjectRef is a lightweight project summary attached to tasks so
// clients can display the project name without a second fetch.
type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
