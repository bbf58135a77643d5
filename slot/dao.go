package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"doctor-booking/apperr"
	"doctor-booking/database"

	"github.com/google/uuid"
)

const insertSlotQuery = `INSERT INTO slots (id, doctor_id, time) VALUES ($1, $2, $3)`

func (a *Accessor) requireDoctor(ctx context.Context, doctorID uuid.UUID) error {
	d, err := a.doctorAccessor.GetDoctor(ctx, doctorID)
	if err != nil {
		return fmt.Errorf("get doctor: %w", err)
	}
	if d == nil {
		return apperr.NotFound("doctor not found")
	}
	return nil
}

// CreateSlot stores one slot for an existing doctor. Identical
// (doctor, instant) pairs are accepted and produce distinct slots.
func (a *Accessor) CreateSlot(ctx context.Context, doctorID uuid.UUID, instant time.Time) (*Slot, error) {
	if instant.IsZero() {
		return nil, apperr.Validation("slot time is required")
	}
	if err := a.requireDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	s := Slot{ID: uuid.New(), DoctorID: doctorID, Time: instant.UTC()}
	if err := insertSlot(ctx, a.db, s); err != nil {
		return nil, err
	}
	return &s, nil
}

func insertSlot(ctx context.Context, execer database.Execer, s Slot) error {
	if _, err := execer.ExecContext(ctx, insertSlotQuery, s.ID, s.DoctorID, s.Time); err != nil {
		// the doctor was deleted between the lookup and the insert
		if database.IsForeignKeyViolation(err) {
			return apperr.NotFound("doctor not found")
		}
		return apperr.Storage("insert slot", err)
	}
	return nil
}

// GetSlotsForDoctor returns the doctor's slots ordered by time.
func (a *Accessor) GetSlotsForDoctor(ctx context.Context, doctorID uuid.UUID) ([]Slot, error) {
	if err := a.requireDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	slots := []Slot{}

	query := `SELECT id, doctor_id, time FROM slots WHERE doctor_id = $1 ORDER BY time ASC`
	rows, err := a.db.QueryContext(ctx, query, doctorID)
	if err != nil {
		return nil, apperr.Storage("query slots", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.ID, &s.DoctorID, &s.Time); err != nil {
			return nil, apperr.Storage("scan slot", err)
		}
		s.Time = s.Time.UTC()
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate slots", err)
	}

	return slots, nil
}

// CreateSlotsForDate creates one slot per time of day on date, all in a
// single transaction: on any failure no slot is kept.
func (a *Accessor) CreateSlotsForDate(ctx context.Context, doctorID uuid.UUID, date string, times []string, loc *time.Location) ([]Slot, error) {
	instants, err := Compose(date, times, loc)
	if err != nil {
		return nil, err
	}

	slots := make([]Slot, len(instants))
	for i, instant := range instants {
		slots[i] = Slot{ID: uuid.New(), DoctorID: doctorID, Time: instant.UTC()}
	}

	err = database.WithTx(ctx, a.db, func(ctx context.Context, tx *sql.Tx) error {
		// FOR SHARE keeps a concurrent delete from removing the doctor mid-batch.
		var id uuid.UUID
		err := tx.QueryRowContext(ctx, `SELECT id FROM doctors WHERE id = $1 FOR SHARE`, doctorID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("doctor not found")
		}
		if err != nil {
			return apperr.Storage("lock doctor", err)
		}

		for _, s := range slots {
			if err := insertSlot(ctx, tx, s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrStorage) {
			return nil, err
		}
		return nil, apperr.Storage("create slots", err)
	}

	return slots, nil
}
