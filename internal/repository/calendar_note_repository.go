package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tutorly-app/scheduler/internal/model"
	"github.com/tutorly-app/scheduler/internal/repository/base"
)

// CalendarNoteRepository persists calendar notes and their tutor
// assignments.
type CalendarNoteRepository struct {
	*base.Repository
}

func NewCalendarNoteRepository(pool *pgxpool.Pool) *CalendarNoteRepository {
	return &CalendarNoteRepository{Repository: base.NewRepository(pool)}
}

// Create inserts the note and its tutor rows in one transaction and fills
// in the note's id and creation time.
func (r *CalendarNoteRepository) Create(ctx context.Context, note *model.CalendarNote) error {
	tx, err := r.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO calendar_note (description, start_time, end_time, creator_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, query, note.Description, note.Range.Start, note.Range.End, note.CreatorID).
		Scan(&note.ID, &note.CreatedAt)
	if err != nil {
		return fmt.Errorf("create calendar note: %w", err)
	}

	for _, tutorID := range note.TutorIDs {
		_, err = tx.Exec(ctx,
			`INSERT INTO calendar_note_tutor (note_id, tutor_id) VALUES ($1, $2)`,
			note.ID, tutorID)
		if err != nil {
			return fmt.Errorf("assign note to tutor %d: %w", tutorID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID fetches a note with its tutor assignments. Returns nil without
// error when the id is unknown.
func (r *CalendarNoteRepository) GetByID(ctx context.Context, id int64) (*model.CalendarNote, error) {
	query := `
		SELECT id, description, start_time, end_time, creator_id, created_at
		FROM calendar_note
		WHERE id = $1
	`

	var note model.CalendarNote
	err := r.QueryRow(ctx, query, id).Scan(
		&note.ID,
		&note.Description,
		&note.Range.Start,
		&note.Range.End,
		&note.CreatorID,
		&note.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get calendar note by id: %w", err)
	}

	note.TutorIDs, err = r.tutorIDs(ctx, note.ID)
	if err != nil {
		return nil, err
	}

	return &note, nil
}

// Delete removes a note; its tutor rows go with it via the foreign key
// cascade.
func (r *CalendarNoteRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM calendar_note WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete calendar note: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("calendar note %d not found", id)
	}
	return nil
}

// GetAll returns every note with its tutor assignments, used to rebuild
// the conflict index at startup.
func (r *CalendarNoteRepository) GetAll(ctx context.Context) ([]*model.CalendarNote, error) {
	query := `
		SELECT n.id, n.description, n.start_time, n.end_time, n.creator_id, n.created_at, t.tutor_id
		FROM calendar_note n
		JOIN calendar_note_tutor t ON t.note_id = n.id
		ORDER BY n.id
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get calendar notes: %w", err)
	}
	defer rows.Close()

	var notes []*model.CalendarNote
	byID := make(map[int64]*model.CalendarNote)
	for rows.Next() {
		var (
			note    model.CalendarNote
			tutorID int64
		)
		err := rows.Scan(
			&note.ID,
			&note.Description,
			&note.Range.Start,
			&note.Range.End,
			&note.CreatorID,
			&note.CreatedAt,
			&tutorID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan calendar note: %w", err)
		}

		existing, ok := byID[note.ID]
		if !ok {
			existing = &note
			byID[note.ID] = existing
			notes = append(notes, existing)
		}
		existing.TutorIDs = append(existing.TutorIDs, tutorID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calendar notes: %w", err)
	}

	return notes, nil
}

func (r *CalendarNoteRepository) tutorIDs(ctx context.Context, noteID int64) ([]int64, error) {
	rows, err := r.Query(ctx, `SELECT tutor_id FROM calendar_note_tutor WHERE note_id = $1 ORDER BY tutor_id`, noteID)
	if err != nil {
		return nil, fmt.Errorf("get note tutors: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan note tutor: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate note tutors: %w", err)
	}

	return ids, nil
}
