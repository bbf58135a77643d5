package api

import (
	"net/http"
	"time"

	"doctor-booking/apperr"
	"doctor-booking/doctor"
	"doctor-booking/slot"

	"github.com/google/uuid"
)

func (a *API) slotAccessor() *slot.Accessor {
	return slot.NewAccessor(a.db, doctor.NewAccessor(a.db))
}

type slotsResponse struct {
	Slots []slot.Slot `json:"slots"`
}

func (a *API) getDoctorSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, err := pathID(r, "doctorId")
	if err != nil {
		a.Error(w, r, err)
		return
	}

	slots, err := a.slotAccessor().GetSlotsForDoctor(r.Context(), doctorID)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, slotsResponse{Slots: slots})
}

type createSlotRequest struct {
	DoctorID string `json:"doctorId" validate:"required,uuid"`
	Time     string `json:"time" validate:"required"`
}

func (a *API) createSlot(w http.ResponseWriter, r *http.Request) {
	var req createSlotRequest
	if err := decode(w, r, &req); err != nil {
		a.Error(w, r, err)
		return
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		a.Error(w, r, apperr.Validation("invalid doctorId"))
		return
	}
	// RFC 3339 also covers the fractional seconds of JavaScript's toISOString.
	instant, err := time.Parse(time.RFC3339, req.Time)
	if err != nil {
		a.Error(w, r, apperr.Validation("invalid time, expected an ISO-8601 instant"))
		return
	}

	s, err := a.slotAccessor().CreateSlot(r.Context(), doctorID, instant)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, s)
}

type createSlotsForDateRequest struct {
	Date  string   `json:"date" validate:"required"`
	Times []string `json:"times" validate:"required,min=1"`
}

// createSlotsForDate is the atomic counterpart of issuing one POST /slots per time.
func (a *API) createSlotsForDate(w http.ResponseWriter, r *http.Request) {
	doctorID, err := pathID(r, "doctorId")
	if err != nil {
		a.Error(w, r, err)
		return
	}

	var req createSlotsForDateRequest
	if err := decode(w, r, &req); err != nil {
		a.Error(w, r, err)
		return
	}

	slots, err := a.slotAccessor().CreateSlotsForDate(r.Context(), doctorID, req.Date, req.Times, a.location)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, slotsResponse{Slots: slots})
}
