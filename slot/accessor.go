package slot

import (
	"context"
	"database/sql"

	"doctor-booking/doctor"

	"github.com/google/uuid"
)

type DoctorAccessor interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error)
}

type Accessor struct {
	db             *sql.DB
	doctorAccessor DoctorAccessor
}

func NewAccessor(db *sql.DB, doctorAccessor DoctorAccessor) *Accessor {
	return &Accessor{
		db:             db,
		doctorAccessor: doctorAccessor,
	}
}
