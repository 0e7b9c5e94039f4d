package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"winter-feast/internal/basket"
	"winter-feast/internal/models"
)

// Home shows the landing page with the three cheapest active positions.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	highlights, err := h.menu.Highlights(r.Context())
	if err != nil {
		h.serverError(w, r, "home_failed", err)
		return
	}
	h.render(w, r, http.StatusOK, "home", struct {
		Highlights []models.MenuItem
	}{highlights})
}

// MenuPage lists active menu positions.
func (h *Handler) MenuPage(w http.ResponseWriter, r *http.Request) {
	positions, err := h.menu.ListActive(r.Context())
	if err != nil {
		h.serverError(w, r, "menu_failed", err)
		return
	}
	h.render(w, r, http.StatusOK, "menu", struct {
		Positions []models.MenuItem
	}{positions})
}

// Position shows a single dish; POST adds it to the session basket.
func (h *Handler) Position(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	sess := sessionFrom(r.Context())

	item, err := h.menu.GetActiveByName(r.Context(), name)
	if errors.Is(err, models.ErrMenuItemNotFound) {
		sess.AddFlash("danger", "This position is not available.")
		h.redirect(w, r, "/menu")
		return
	}
	if err != nil {
		h.serverError(w, r, "position_failed", err)
		return
	}

	if r.Method == http.MethodPost {
		basket.Add(sess, item.Name, r.PostFormValue("num"))
		sess.AddFlash("success", "Added to your basket!")
		h.redirect(w, r, "/position/"+item.Name)
		return
	}

	h.render(w, r, http.StatusOK, "position", struct {
		Position *models.MenuItem
	}{item})
}

// TestBasket dumps the session basket as JSON.
func (h *Handler) TestBasket(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(basket.View(sessionFrom(r.Context())))
}
