package doctor

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

const doctorColumns = `id, name, specialty, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanDoctor(row scanner) (Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Specialty, &d.CreatedAt)
	return d, err
}

func (a *Accessor) CreateDoctor(ctx context.Context, doctor Doctor, now time.Time) (*Doctor, error) {
	doctor.Normalize()
	if err := doctor.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	id := uuid.New()
	createdAt := now.UTC()

	query := `INSERT INTO doctors (id, name, specialty, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := a.db.ExecContext(ctx, query, id, doctor.Name, doctor.Specialty, createdAt); err != nil {
		if database.IsCheckViolation(err) {
			return nil, apperr.Validation("doctor name is required")
		}
		return nil, apperr.Storage("insert doctor", err)
	}

	return &Doctor{
		ID:        id,
		Name:      doctor.Name,
		Specialty: doctor.Specialty,
		CreatedAt: createdAt,
	}, nil
}

// GetDoctors returns every doctor, most recently created first.
func (a *Accessor) GetDoctors(ctx context.Context) ([]Doctor, error) {
	doctors := []Doctor{}

	query := `SELECT ` + doctorColumns + ` FROM doctors ORDER BY created_at DESC`
	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperr.Storage("query doctors", err)
	}
	defer rows.Close()

	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, apperr.Storage("scan doctor", err)
		}
		doctors = append(doctors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("iterate doctors", err)
	}

	return doctors, nil
}

// GetDoctor returns nil, nil when no doctor has the given id.
func (a *Accessor) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return getDoctor(ctx, a.db, id, false)
}

func getDoctor(ctx context.Context, execer database.Execer, id uuid.UUID, lock bool) (*Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	d, err := scanDoctor(execer.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperr.Storage("select doctor", err)
	}
	return &d, nil
}

// DeleteDoctor removes the doctor together with its slots and their bookings
// in a single transaction. Either the whole subtree goes or nothing does.
func (a *Accessor) DeleteDoctor(ctx context.Context, id uuid.UUID) (*DeleteResult, error) {
	var result DeleteResult

	err := database.WithTx(ctx, a.db, func(ctx context.Context, tx *sql.Tx) error {
		d, err := getDoctor(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if d == nil {
			return apperr.NotFound("doctor not found")
		}
		result.Doctor = *d

		res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE slot_id IN (SELECT id FROM slots WHERE doctor_id = $1)`, id)
		if err != nil {
			return apperr.Storage("delete bookings", err)
		}
		result.BookingsDeleted, _ = res.RowsAffected()

		res, err = tx.ExecContext(ctx, `DELETE FROM slots WHERE doctor_id = $1`, id)
		if err != nil {
			return apperr.Storage("delete slots", err)
		}
		result.SlotsDeleted, _ = res.RowsAffected()

		res, err = tx.ExecContext(ctx, `DELETE FROM doctors WHERE id = $1`, id)
		if err != nil {
			return apperr.Storage("delete doctor", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("doctor not found")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrStorage) {
			return nil, err
		}
		return nil, apperr.Storage("delete doctor", err)
	}

	return &result, nil
}
