package dto

import (
	"errors"
	"fmt"
	"time"

	"github.com/daybook/daybook/internal/model"
)

// CreateNoteRequest represents the request body for creating a note.
type CreateNoteRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	MemoDate string   `json:"memo_date"`
	Tags     []string `json:"tags,omitempty"`
}

// Validate checks the note fields.
func (r CreateNoteRequest) Validate() error {
	if r.Title == "" || len(r.Title) > 64 {
		return errors.New("title must be 1-64 characters")
	}
	if r.Content == "" {
		return errors.New("content must not be empty")
	}
	if err := validateMemoDate(r.MemoDate); err != nil {
		return err
	}
	return validateTags(r.Tags)
}

// UpdateNoteRequest represents the request body for updating a note.
// Omitted fields are left unchanged; a supplied tag list replaces the
// note's tag set wholesale.
type UpdateNoteRequest struct {
	Title    *string   `json:"title,omitempty"`
	Content  *string   `json:"content,omitempty"`
	MemoDate *string   `json:"memo_date,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
}

// Validate checks the supplied fields.
func (r UpdateNoteRequest) Validate() error {
	if r.Title != nil && (*r.Title == "" || len(*r.Title) > 64) {
		return errors.New("title must be 1-64 characters")
	}
	if r.Content != nil && *r.Content == "" {
		return errors.New("content must not be empty")
	}
	if r.MemoDate != nil {
		if err := validateMemoDate(*r.MemoDate); err != nil {
			return err
		}
	}
	if r.Tags != nil {
		return validateTags(*r.Tags)
	}
	return nil
}

// ToPatch converts the request into a domain patch.
func (r UpdateNoteRequest) ToPatch() model.NotePatch {
	return model.NotePatch{
		Title:    r.Title,
		Content:  r.Content,
		MemoDate: r.MemoDate,
		Tags:     r.Tags,
	}
}

// NoteResponse represents a note in API responses.
type NoteResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	MemoDate  string    `json:"memo_date"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteListResponse represents a page of notes.
type NoteListResponse struct {
	TotalCount   int            `json:"total_count"`
	Page         int            `json:"page"`
	ItemsPerPage int            `json:"items_per_page"`
	Notes        []NoteResponse `json:"notes"`
}

// ToNoteResponse converts a Note model to NoteResponse DTO.
func ToNoteResponse(note *model.Note) *NoteResponse {
	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}
	return &NoteResponse{
		ID:        note.ID,
		UserID:    note.UserID,
		Title:     note.Title,
		Content:   note.Content,
		MemoDate:  note.MemoDate,
		Tags:      tags,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

// ToNoteListResponse converts a page of Note models to a response DTO.
func ToNoteListResponse(totalCount, page, itemsPerPage int, notes []*model.Note) *NoteListResponse {
	responses := make([]NoteResponse, len(notes))
	for i, note := range notes {
		responses[i] = *ToNoteResponse(note)
	}
	return &NoteListResponse{
		TotalCount:   totalCount,
		Page:         page,
		ItemsPerPage: itemsPerPage,
		Notes:        responses,
	}
}

func validateMemoDate(memoDate string) error {
	if len(memoDate) != 8 {
		return errors.New("memo_date must be exactly 8 characters (YYYYMMDD)")
	}
	return nil
}

func validateTags(tags []string) error {
	for _, tag := range tags {
		if tag == "" || len(tag) > 64 {
			return fmt.Errorf("tag %q must be 1-64 characters", tag)
		}
	}
	return nil
}
