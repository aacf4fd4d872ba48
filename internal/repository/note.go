package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/daybook/daybook/internal/model"
)

// Common errors for note repository operations.
var (
	// ErrNoteNotFound covers both absent notes and notes owned by another
	// user; the two cases are intentionally indistinguishable.
	ErrNoteNotFound = errors.New("note not found")
)

// CreateNote inserts a new note and attaches its tags.
// Tag rows are created lazily or reused by name; the whole operation runs
// in one transaction.
func (r *Repository) CreateNote(ctx context.Context, note *model.Note) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO notes (id, user_id, title, content, memo_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.Exec(ctx, query,
		note.ID,
		note.UserID,
		note.Title,
		note.Content,
		note.MemoDate,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	if err := attachTags(ctx, tx, note.ID, note.Tags, note.CreatedAt); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit note creation: %w", err)
	}

	return nil
}

// GetNote retrieves a note by owner and id.
// A note belonging to another user is indistinguishable from a
// nonexistent one.
func (r *Repository) GetNote(ctx context.Context, userID, id string) (*model.Note, error) {
	query := `
		SELECT id, user_id, title, content, memo_date, created_at, updated_at
		FROM notes
		WHERE user_id = $1 AND id = $2
	`

	note, err := scanNote(r.pool.QueryRow(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}

	if err := r.loadTags(ctx, []*model.Note{note}); err != nil {
		return nil, err
	}

	return note, nil
}

// ListNotes retrieves a page of the owner's notes in primary-key order
// together with the total count matching the owner filter.
func (r *Repository) ListNotes(ctx context.Context, userID string, offset, limit int) ([]*model.Note, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notes WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notes: %w", err)
	}

	query := `
		SELECT id, user_id, title, content, memo_date, created_at, updated_at
		FROM notes
		WHERE user_id = $1
		ORDER BY id
		OFFSET $2 LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, userID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*model.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating notes: %w", err)
	}

	if err := r.loadTags(ctx, notes); err != nil {
		return nil, 0, err
	}

	return notes, total, nil
}

// UpdateNote updates a note's mutable fields.
// When replaceTags is true the tag set is replaced wholesale and tags
// orphaned by the replacement are swept, all in the same transaction.
func (r *Repository) UpdateNote(ctx context.Context, note *model.Note, replaceTags bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE notes
		SET title = $3, content = $4, memo_date = $5, updated_at = $6
		WHERE user_id = $1 AND id = $2
	`

	result, err := tx.Exec(ctx, query,
		note.UserID,
		note.ID,
		note.Title,
		note.Content,
		note.MemoDate,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNoteNotFound
	}

	if replaceTags {
		if _, err := tx.Exec(ctx, `DELETE FROM note_tags WHERE note_id = $1`, note.ID); err != nil {
			return fmt.Errorf("failed to detach tags: %w", err)
		}
		if err := attachTags(ctx, tx, note.ID, note.Tags, note.UpdatedAt); err != nil {
			return err
		}
		if err := sweepOrphanTags(ctx, tx); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit note update: %w", err)
	}

	return nil
}

// DeleteNote removes a note, severs its tag associations and sweeps tags
// left with zero notes.
func (r *Repository) DeleteNote(ctx context.Context, userID, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `DELETE FROM notes WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNoteNotFound
	}

	if err := sweepOrphanTags(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit note deletion: %w", err)
	}

	return nil
}

// TagExists checks if a tag row with the given name exists.
func (r *Repository) TagExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tags WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check tag existence: %w", err)
	}
	return exists, nil
}

// CountTags returns the total number of tag rows.
func (r *Repository) CountTags(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tags`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tags: %w", err)
	}
	return count, nil
}

// attachTags creates-or-reuses a tag row per name and links it to the note.
// The insert-then-select dance relies on the unique constraint on tags.name:
// a concurrent insert of the same name makes ON CONFLICT DO NOTHING a no-op
// and the follow-up select picks up the winner's row.
func attachTags(ctx context.Context, tx pgx.Tx, noteID string, names []string, now time.Time) error {
	for position, name := range names {
		_, err := tx.Exec(ctx,
			`INSERT INTO tags (id, name, created_at, updated_at)
			 VALUES ($1, $2, $3, $3)
			 ON CONFLICT (name) DO NOTHING`,
			model.NewID(), name, now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert tag %q: %w", name, err)
		}

		var tagID string
		if err := tx.QueryRow(ctx, `SELECT id FROM tags WHERE name = $1`, name).Scan(&tagID); err != nil {
			return fmt.Errorf("failed to resolve tag %q: %w", name, err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO note_tags (note_id, tag_id, position) VALUES ($1, $2, $3)`,
			noteID, tagID, position,
		)
		if err != nil {
			return fmt.Errorf("failed to attach tag %q: %w", name, err)
		}
	}

	return nil
}

// sweepOrphanTags deletes every tag with zero remaining note associations.
// Runs after any operation that can orphan a tag, inside that operation's
// transaction.
func sweepOrphanTags(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DELETE FROM tags t
		WHERE NOT EXISTS (
			SELECT 1 FROM note_tags nt WHERE nt.tag_id = t.id
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to sweep orphan tags: %w", err)
	}
	return nil
}

// loadTags populates Tags for each note in attachment order.
func (r *Repository) loadTags(ctx context.Context, notes []*model.Note) error {
	if len(notes) == 0 {
		return nil
	}

	byID := make(map[string]*model.Note, len(notes))
	ids := make([]string, 0, len(notes))
	for _, note := range notes {
		note.Tags = []string{}
		byID[note.ID] = note
		ids = append(ids, note.ID)
	}

	query := `
		SELECT nt.note_id, t.name
		FROM note_tags nt
		JOIN tags t ON t.id = nt.tag_id
		WHERE nt.note_id = ANY($1)
		ORDER BY nt.note_id, nt.position
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var noteID, name string
		if err := rows.Scan(&noteID, &name); err != nil {
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		if note, ok := byID[noteID]; ok {
			note.Tags = append(note.Tags, name)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating tags: %w", err)
	}

	return nil
}

// scanNote scans a single row into a Note model.
func scanNote(row pgx.Row) (*model.Note, error) {
	var note model.Note
	err := row.Scan(
		&note.ID,
		&note.UserID,
		&note.Title,
		&note.Content,
		&note.MemoDate,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &note, nil
}
