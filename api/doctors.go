package api

import (
	"net/http"

	"doctor-booking/doctor"
)

type getDoctorsResponse struct {
	Doctors []doctor.Doctor `json:"doctors"`
}

func (a *API) getDoctors(w http.ResponseWriter, r *http.Request) {
	doctorAccessor := doctor.NewAccessor(a.db)
	doctors, err := doctorAccessor.GetDoctors(r.Context())
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusOK, getDoctorsResponse{Doctors: doctors})
}

type createDoctorRequest struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

func (a *API) createDoctor(w http.ResponseWriter, r *http.Request) {
	var req createDoctorRequest
	if err := decode(w, r, &req); err != nil {
		a.Error(w, r, err)
		return
	}

	doctorAccessor := doctor.NewAccessor(a.db)
	d, err := doctorAccessor.CreateDoctor(r.Context(), doctor.Doctor{
		Name:      req.Name,
		Specialty: req.Specialty,
	}, a.now())
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.Response(w, http.StatusCreated, d)
}

func (a *API) deleteDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.Error(w, r, err)
		return
	}

	doctorAccessor := doctor.NewAccessor(a.db)
	result, err := doctorAccessor.DeleteDoctor(r.Context(), id)
	if err != nil {
		a.Error(w, r, err)
		return
	}
	a.logger.Printf("deleted doctor %s with %d slots and %d bookings", id, result.SlotsDeleted, result.BookingsDeleted)
	a.Response(w, http.StatusOK, result)
}
