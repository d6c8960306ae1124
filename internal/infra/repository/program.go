package repository

import (
	"context"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/infra"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type ProgramRepository struct {
	db DB
}

func NewProgramRepository(db DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// DecrementClassRepSpots releases one class-rep seat. The floor guard keeps a
// double compensation from driving the counter negative.
func (r *ProgramRepository) DecrementClassRepSpots(ctx context.Context, programID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE programs
		SET class_rep_spots_taken = class_rep_spots_taken - 1,
			updated_at = now()
		WHERE id = $1 AND class_rep_spots_taken > 0`,
		programID,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to decrement class-rep spots", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("program not found or counter already at zero", nil, infra.KindNotFound)
	}
	return nil
}

// SubjectTitle resolves what a purchase paid for, preferring the program over
// the event reference.
func (r *ProgramRepository) SubjectTitle(ctx context.Context, programID, eventID *uuid.UUID) (string, error) {
	var (
		table string
		id    uuid.UUID
	)
	switch {
	case programID != nil:
		table, id = "programs", *programID
	case eventID != nil:
		table, id = "events", *eventID
	default:
		return "", infra.WrapRepoErr("purchase references no program or event", nil, infra.KindNotFound)
	}

	var title string
	err := r.db.QueryRow(ctx, `SELECT title FROM `+table+` WHERE id = $1`, id).Scan(&title)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return "", infra.WrapRepoErr("subject not found", err, infra.KindNotFound)
		}
		return "", infra.WrapRepoErr("failed to resolve subject title", err)
	}
	return title, nil
}
