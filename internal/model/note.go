// Package model defines domain entities for the application.
package model

import "time"

// Note represents a dated journal entry owned by exactly one user.
// Tags holds the attached tag names in attachment order.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	MemoDate  string    `json:"memo_date"` // 8-char caller-supplied date string
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tag is a shared label, many-to-many with notes.
// A tag with zero associated notes is orphaned and swept automatically.
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NotePatch lists the optional fields a note update may supply.
// A nil field leaves the stored value untouched. A non-nil Tags replaces
// the note's tag set wholesale.
type NotePatch struct {
	Title    *string
	Content  *string
	MemoDate *string
	Tags     *[]string
}

// IsEmpty returns true if the patch changes nothing.
func (p NotePatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.MemoDate == nil && p.Tags == nil
}

// Apply merges the patch into the note, field by field.
// Tag replacement is excluded: association changes are handled by the
// note store, which also sweeps orphaned tags afterwards.
func (p NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.MemoDate != nil {
		n.MemoDate = *p.MemoDate
	}
}

// DedupeTags returns names with duplicates removed, preserving first-seen
// order. Tag names attached to a note must be unique within that note.
func DedupeTags(names []string) []string {
	if len(names) == 0 {
		return []string{}
	}

	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}
