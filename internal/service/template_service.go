package service

import (
	"context"

	"github.com/inkwell-notes/inkwell-backend/internal/domain"
	"github.com/inkwell-notes/inkwell-backend/internal/markdown"
)

// templateCatalog is the fixed set of note templates. Bodies are
// markdown, rendered once when a note is instantiated.
var templateCatalog = []domain.Template{
	{
		ID:          "meeting-notes",
		Name:        "Meeting Notes",
		Description: "Agenda, attendees and action items",
		Body: `# Meeting Notes

**Date:**
**Attendees:**

## Agenda

-

## Notes

## Action Items

- [ ] `,
	},
	{
		ID:          "daily-journal",
		Name:        "Daily Journal",
		Description: "A dated entry with prompts",
		Body: `# Daily Journal

## What happened today

## What went well

## What to improve`,
	},
	{
		ID:          "todo-list",
		Name:        "To-Do List",
		Description: "A simple checklist",
		Body: `# To-Do

- [ ] First task
- [ ] Second task`,
	},
	{
		ID:          "project-plan",
		Name:        "Project Plan",
		Description: "Goals, milestones and risks",
		Body: `# Project Plan

## Goal

## Milestones

1.

## Risks

-`,
	},
}

// TemplateService serves the fixed template catalog and instantiates
// notes from it
type TemplateService struct {
	noteService *NoteService
	renderer    *markdown.Renderer
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(noteService *NoteService, renderer *markdown.Renderer) *TemplateService {
	return &TemplateService{
		noteService: noteService,
		renderer:    renderer,
	}
}

// ListTemplates returns the catalog
func (s *TemplateService) ListTemplates() []domain.Template {
	return templateCatalog
}

// GetTemplate returns a template by ID
func (s *TemplateService) GetTemplate(id string) (*domain.Template, error) {
	for i := range templateCatalog {
		if templateCatalog[i].ID == id {
			return &templateCatalog[i], nil
		}
	}
	return nil, domain.ErrTemplateNotFound
}

// InstantiateTemplate renders a template body and creates a note from
// it in the given workspace
func (s *TemplateService) InstantiateTemplate(ctx context.Context, workspaceID int32, templateID string) (*domain.Note, error) {
	tmpl, err := s.GetTemplate(templateID)
	if err != nil {
		return nil, err
	}

	html, err := s.renderer.ToHTML([]byte(tmpl.Body))
	if err != nil {
		return nil, err
	}

	return s.noteService.CreateNote(ctx, workspaceID, CreateNoteInput{
		Title:      tmpl.Name,
		Content:    string(html),
		PlainText:  markdown.Flatten(string(html)),
		TemplateID: &tmpl.ID,
	})
}
