package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tutorly-app/scheduler/internal/model"
	"github.com/tutorly-app/scheduler/internal/repository/base"
	"github.com/tutorly-app/scheduler/internal/schedule"
)

// ParticipantRepository is the read adapter over the tutor and student
// directory tables. The engine never writes these; tutor and student
// management belongs to the admin layer.
type ParticipantRepository struct {
	*base.Repository
}

func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{Repository: base.NewRepository(pool)}
}

// tableFor maps a role to its directory table. Roles come from typed
// constants, never from user input, so this is also the injection guard.
func tableFor(role schedule.Role) (string, error) {
	switch role {
	case schedule.RoleTutor:
		return "tutor", nil
	case schedule.RoleStudent:
		return "student", nil
	default:
		return "", fmt.Errorf("unknown participant role %q", role)
	}
}

// Get looks up a participant by key. Returns nil without error when the
// participant does not exist.
func (r *ParticipantRepository) Get(ctx context.Context, key schedule.ParticipantKey) (*model.Participant, error) {
	table, err := tableFor(key.Role)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id, status FROM %s WHERE id = $1`, table)

	p := model.Participant{Role: key.Role}
	err = r.QueryRow(ctx, query, key.ID).Scan(&p.ID, &p.Status)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s by id: %w", key.Role, err)
	}

	return &p, nil
}

// Exists reports whether the participant is present in the directory.
func (r *ParticipantRepository) Exists(ctx context.Context, key schedule.ParticipantKey) (bool, error) {
	p, err := r.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return p != nil, nil
}

// IsActive reports whether the participant exists and is eligible for
// new bookings.
func (r *ParticipantRepository) IsActive(ctx context.Context, key schedule.ParticipantKey) (bool, error) {
	p, err := r.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return p != nil && p.IsActive(), nil
}
