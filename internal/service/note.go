package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daybook/daybook/internal/metrics"
	"github.com/daybook/daybook/internal/model"
	"github.com/daybook/daybook/internal/repository"
)

// Note service errors.
var (
	// ErrNoteNotFound covers absent notes and notes owned by someone else.
	ErrNoteNotFound = errors.New("note not found")
)

// Note listing defaults.
const (
	defaultItemsPerPage = 10
)

// NoteService handles note and tag lifecycle business logic.
type NoteService struct {
	repo    *repository.Repository
	metrics metrics.Recorder
}

// NewNoteService creates a new NoteService.
func NewNoteService(repo *repository.Repository, recorder metrics.Recorder) *NoteService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &NoteService{
		repo:    repo,
		metrics: recorder,
	}
}

// CreateNoteInput defines input for creating a note.
type CreateNoteInput struct {
	Title    string
	Content  string
	MemoDate string
	Tags     []string
}

// CreateNote creates a note owned by the given user.
// Tag names are deduplicated preserving order; each name reuses an
// existing tag row or creates one lazily.
func (s *NoteService) CreateNote(ctx context.Context, userID string, input CreateNoteInput) (*model.Note, error) {
	now := time.Now().UTC()
	note := &model.Note{
		ID:        model.NewID(),
		UserID:    userID,
		Title:     input.Title,
		Content:   input.Content,
		MemoDate:  input.MemoDate,
		Tags:      model.DedupeTags(input.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	s.metrics.IncNoteCreated()

	return note, nil
}

// NoteList is a page of a user's notes.
// TotalCount is the full count matching the owner filter, not the page size.
type NoteList struct {
	TotalCount   int           `json:"total_count"`
	Page         int           `json:"page"`
	ItemsPerPage int           `json:"items_per_page"`
	Notes        []*model.Note `json:"notes"`
}

// ListNotes retrieves a page of the user's notes. Page is 1-based.
func (s *NoteService) ListNotes(ctx context.Context, userID string, page, itemsPerPage int) (*NoteList, error) {
	if page < 1 {
		page = 1
	}
	if itemsPerPage <= 0 {
		itemsPerPage = defaultItemsPerPage
	}

	offset := (page - 1) * itemsPerPage

	notes, total, err := s.repo.ListNotes(ctx, userID, offset, itemsPerPage)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []*model.Note{}
	}

	return &NoteList{
		TotalCount:   total,
		Page:         page,
		ItemsPerPage: itemsPerPage,
		Notes:        notes,
	}, nil
}

// GetNote retrieves a note by owner and id.
func (s *NoteService) GetNote(ctx context.Context, userID, id string) (*model.Note, error) {
	note, err := s.repo.GetNote(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

// UpdateNote applies a partial update to a note.
// A supplied tag list replaces the note's tag set wholesale; omitting it
// leaves existing associations unchanged.
func (s *NoteService) UpdateNote(ctx context.Context, userID, id string, patch model.NotePatch) (*model.Note, error) {
	note, err := s.GetNote(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(note)

	replaceTags := patch.Tags != nil
	if replaceTags {
		note.Tags = model.DedupeTags(*patch.Tags)
	}

	note.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateNote(ctx, note, replaceTags); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	s.metrics.IncNoteUpdated()

	return note, nil
}

// DeleteNote removes a note and sweeps tags it leaves orphaned.
func (s *NoteService) DeleteNote(ctx context.Context, userID, id string) error {
	if err := s.repo.DeleteNote(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return ErrNoteNotFound
		}
		return err
	}

	s.metrics.IncNoteDeleted()

	return nil
}
