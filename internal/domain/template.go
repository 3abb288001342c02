package domain

import "errors"

var ErrTemplateNotFound = errors.New("template not found")

// Template is a fixed note template. Body is markdown source; the
// service renders it to markup when instantiating a note.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Body        string `json:"-"`
}
