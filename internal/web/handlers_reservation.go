package web

import (
	"errors"
	"net/http"

	"winter-feast/internal/models"
	"winter-feast/internal/services/reservation"
)

type reservedData struct {
	Message string
	Form    reservation.ReserveRequest
}

// Reserved shows the table booking form and places a reservation on POST.
func (h *Handler) Reserved(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	data := reservedData{}

	if r.Method == http.MethodPost {
		data.Form = reservation.ReserveRequest{
			TableType:    r.PostFormValue("table_type"),
			TimeStartRaw: r.PostFormValue("time_start"),
			GuestName:    r.PostFormValue("guest_name"),
			GuestPhone:   r.PostFormValue("guest_phone"),
			GuestEmail:   r.PostFormValue("guest_email"),
			GuestNotes:   r.PostFormValue("guest_notes"),
			GuestAddress: r.PostFormValue("guest_address"),
		}

		_, err := h.reservations.Reserve(r.Context(), userFrom(r.Context()).ID, data.Form)
		switch {
		case errors.Is(err, models.ErrMissingFields):
			data.Message = "Please fill in every field of the form."
		case errors.Is(err, models.ErrInvalidTime):
			data.Message = "The start time could not be understood."
		case errors.Is(err, models.ErrUnknownTableType):
			data.Message = "Please pick one of the offered table sizes."
		case errors.Is(err, models.ErrReservationExists):
			data.Message = "You already hold a reservation. Cancel it first to book another table."
		case errors.Is(err, models.ErrNoCapacity):
			data.Message = "All tables of this size are taken. Try another size."
		case err != nil:
			h.serverError(w, r, "reserve_failed", err)
			return
		default:
			sess.AddFlash("success", "Your table is reserved!")
			h.redirect(w, r, "/my_reservations")
			return
		}
	}

	h.render(w, r, http.StatusOK, "reserved", data)
}

// MyReservations lists the user's reservation and cancels it on POST.
func (h *Handler) MyReservations(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if r.Method == http.MethodPost {
		h.cancelReservation(w, r, user)
		return
	}

	reservations, err := h.reservations.ListMine(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, r, "my_reservations_failed", err)
		return
	}

	h.render(w, r, http.StatusOK, "my_reservations", struct {
		Reservations []models.Reservation
	}{reservations})
}

func (h *Handler) cancelReservation(w http.ResponseWriter, r *http.Request, user *models.User) {
	sess := sessionFrom(r.Context())

	id := formInt(r, "reserv_id")
	err := h.reservations.Cancel(r.Context(), id, user)
	if errors.Is(err, models.ErrReservationNotFound) {
		sess.AddFlash("danger", "Reservation not found.")
		h.redirect(w, r, "/my_reservations")
		return
	}
	if err != nil {
		h.serverError(w, r, "cancel_reservation_failed", err)
		return
	}

	sess.AddFlash("info", "Reservation cancelled.")
	h.redirect(w, r, "/my_reservations")
}
