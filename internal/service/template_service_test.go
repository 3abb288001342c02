package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/inkwell-notes/inkwell-backend/internal/domain"
	"github.com/inkwell-notes/inkwell-backend/internal/markdown"
	"github.com/inkwell-notes/inkwell-backend/internal/testutil"
)

func setupTemplateService() (*TemplateService, *testutil.MockNoteRepository) {
	repo := testutil.NewMockNoteRepository()
	noteSvc := NewNoteService(repo, nil, nil)
	return NewTemplateService(noteSvc, markdown.NewRenderer()), repo
}

func TestTemplateService_ListTemplates(t *testing.T) {
	svc, _ := setupTemplateService()

	templates := svc.ListTemplates()
	if len(templates) == 0 {
		t.Fatal("expected a non-empty template catalog")
	}
	for _, tmpl := range templates {
		if tmpl.ID == "" || tmpl.Name == "" {
			t.Errorf("template missing ID or name: %+v", tmpl)
		}
	}
}

func TestTemplateService_GetTemplate(t *testing.T) {
	svc, _ := setupTemplateService()

	tmpl, err := svc.GetTemplate("meeting-notes")
	if err != nil {
		t.Fatalf("GetTemplate failed: %v", err)
	}
	if tmpl.Name != "Meeting Notes" {
		t.Errorf("expected 'Meeting Notes', got %q", tmpl.Name)
	}

	if _, err := svc.GetTemplate("nonexistent"); !errors.Is(err, domain.ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestTemplateService_InstantiateTemplate(t *testing.T) {
	svc, repo := setupTemplateService()

	note, err := svc.InstantiateTemplate(context.Background(), testWorkspaceID, "todo-list")
	if err != nil {
		t.Fatalf("InstantiateTemplate failed: %v", err)
	}
	if note.Title != "To-Do List" {
		t.Errorf("expected title 'To-Do List', got %q", note.Title)
	}
	if !strings.Contains(note.Content, "<h1") {
		t.Errorf("expected rendered heading in content, got %q", note.Content)
	}
	if note.TemplateID == nil || *note.TemplateID != "todo-list" {
		t.Errorf("expected template ID recorded, got %v", note.TemplateID)
	}
	if strings.Contains(note.PlainText, "<") {
		t.Errorf("plain text still contains markup: %q", note.PlainText)
	}

	stored, err := repo.GetByID(context.Background(), testWorkspaceID, note.ID)
	if err != nil {
		t.Fatalf("instantiated note not persisted: %v", err)
	}
	if stored.Content != note.Content {
		t.Error("stored content differs from returned content")
	}
}

func TestTemplateService_InstantiateUnknownTemplate(t *testing.T) {
	svc, _ := setupTemplateService()

	if _, err := svc.InstantiateTemplate(context.Background(), testWorkspaceID, "missing"); !errors.Is(err, domain.ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
}
