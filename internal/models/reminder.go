package models

import "time"

type Reminder struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReminderInput is the create payload shared by the JSON API and the HTML form.
type ReminderInput struct {
	Title       string `json:"title" validate:"required,utf8,max=255"`
	Description string `json:"description" validate:"required,utf8,max=5000"`
}
