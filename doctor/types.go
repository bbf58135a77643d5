package doctor

import (
	"strings"
	"time"

	"doctor-booking/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

type Doctor struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name" validate:"required"`
	Specialty string    `json:"specialty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Normalize trims surrounding whitespace from the text fields.
func (d *Doctor) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Specialty = strings.TrimSpace(d.Specialty)
}

func (d *Doctor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return apperr.Validation("doctor name is required")
	}
	if err := validate.Struct(d); err != nil {
		return apperr.Validation(validationMessage(err))
	}
	return nil
}

// DeleteResult describes what a cascading delete removed.
type DeleteResult struct {
	Doctor          Doctor `json:"doctor"`
	SlotsDeleted    int64  `json:"slotsDeleted"`
	BookingsDeleted int64  `json:"bookingsDeleted"`
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return "doctor " + field + " is required"
	default:
		return "doctor " + field + " is invalid"
	}
}
