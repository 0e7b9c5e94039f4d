package web

import (
	"errors"
	"net/http"
	"strconv"

	"winter-feast/internal/models"
	"winter-feast/internal/services/menu"
)

func formInt(r *http.Request, field string) int {
	n, _ := strconv.Atoi(r.PostFormValue(field))
	return n
}

// AddPosition shows the new-dish form and creates the position on POST.
// The dish image arrives as a multipart upload.
func (h *Handler) AddPosition(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	if r.Method == http.MethodPost {
		req := menu.CreateItemRequest{
			Name:        r.PostFormValue("name"),
			Weight:      r.PostFormValue("weight"),
			Ingredients: r.PostFormValue("ingredients"),
			Description: r.PostFormValue("description"),
			PriceRaw:    r.PostFormValue("price"),
		}

		file, header, err := r.FormFile("img")
		if err != nil {
			sess.AddFlash("danger", "Please attach an image of the dish.")
			h.render(w, r, http.StatusOK, "add_position", nil)
			return
		}
		defer file.Close()

		_, err = h.menu.CreateItem(r.Context(), req, file, header.Filename)
		switch {
		case errors.Is(err, models.ErrMissingFields):
			sess.AddFlash("danger", "Please fill in all fields.")
		case errors.Is(err, models.ErrInvalidPrice):
			sess.AddFlash("danger", "The price must be a non-negative number.")
		case errors.Is(err, models.ErrDuplicateMenuItem):
			sess.AddFlash("danger", "A position with this name already exists.")
		case err != nil:
			h.serverError(w, r, "add_position_failed", err)
			return
		default:
			sess.AddFlash("success", "New position added to the menu!")
			h.redirect(w, r, "/menu_check")
			return
		}
	}

	h.render(w, r, http.StatusOK, "add_position", nil)
}

// MenuCheck lists every position, active or not; POST toggles visibility
// or deletes a position together with its image.
func (h *Handler) MenuCheck(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	if r.Method == http.MethodPost {
		id := formInt(r, "pos_id")
		var err error
		switch r.PostFormValue("action") {
		case "toggle":
			err = h.menu.ToggleActive(r.Context(), id)
		case "delete":
			err = h.menu.DeleteItem(r.Context(), id)
		}
		if errors.Is(err, models.ErrMenuItemNotFound) {
			sess.AddFlash("danger", "Position not found.")
		} else if err != nil {
			h.serverError(w, r, "menu_check_failed", err)
			return
		}
		h.redirect(w, r, "/menu_check")
		return
	}

	positions, err := h.menu.ListAll(r.Context())
	if err != nil {
		h.serverError(w, r, "menu_check_failed", err)
		return
	}
	h.render(w, r, http.StatusOK, "menu_check", struct {
		Positions []models.MenuItem
	}{positions})
}

// OrdersCheck lists every order with its owner's nickname.
func (h *Handler) OrdersCheck(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		h.serverError(w, r, "orders_check_failed", err)
		return
	}
	h.render(w, r, http.StatusOK, "orders_check", struct {
		Orders []models.AdminOrder
	}{orders})
}

// AllUsers lists the registered accounts.
func (h *Handler) AllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.ListUsers(r.Context())
	if err != nil {
		h.serverError(w, r, "all_users_failed", err)
		return
	}
	h.render(w, r, http.StatusOK, "all_users", struct {
		Users []models.User
	}{users})
}

// ReservationsCheck lists every reservation; POST deletes one by ID.
func (h *Handler) ReservationsCheck(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	if r.Method == http.MethodPost {
		err := h.reservations.Cancel(r.Context(), formInt(r, "reserv_id"), userFrom(r.Context()))
		if errors.Is(err, models.ErrReservationNotFound) {
			sess.AddFlash("danger", "Reservation not found.")
		} else if err != nil {
			h.serverError(w, r, "reservations_check_failed", err)
			return
		} else {
			sess.AddFlash("info", "Reservation removed.")
		}
		h.redirect(w, r, "/reservations_check")
		return
	}

	reservations, err := h.reservations.ListAll(r.Context())
	if err != nil {
		h.serverError(w, r, "reservations_check_failed", err)
		return
	}
	h.render(w, r, http.StatusOK, "reservations_check", struct {
		Reservations []models.AdminReservation
	}{reservations})
}
