package web

import (
	"errors"
	"net/http"

	"winter-feast/internal/models"
)

type credentialsForm struct {
	Nickname string
	Email    string
}

// Register creates an account and authenticates the session immediately.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	form := credentialsForm{}

	if r.Method == http.MethodPost {
		form.Nickname = r.PostFormValue("nickname")
		form.Email = r.PostFormValue("email")

		user, err := h.auth.Register(r.Context(), form.Nickname, form.Email, r.PostFormValue("password"))
		switch {
		case errors.Is(err, models.ErrPasswordTooShort):
			sess.AddFlash("danger", "Password must be at least 8 characters long.")
		case errors.Is(err, models.ErrMissingFields):
			sess.AddFlash("danger", "Please fill in all fields.")
		case errors.Is(err, models.ErrDuplicateUser):
			sess.AddFlash("danger", "A user with these details already exists.")
		case err != nil:
			h.serverError(w, r, "register_failed", err)
			return
		default:
			sess.UserID = user.ID
			sess.AddFlash("success", "Welcome to the winter feast!")
			h.redirect(w, r, "/")
			return
		}
	}

	h.render(w, r, http.StatusOK, "register", form)
}

// Login authenticates a returning user. The admin persona insists on the
// distinguished administrator account; the guest persona refuses it.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	form := credentialsForm{}

	if r.Method == http.MethodPost {
		form.Nickname = r.PostFormValue("nickname")
		password := r.PostFormValue("password")
		persona := r.PostFormValue("persona")
		if persona == "" {
			persona = "guest"
		}

		if persona == "guest" && form.Nickname == h.adminNickname {
			sess.AddFlash("warning", "The administrator account is only available in admin mode.")
			h.render(w, r, http.StatusOK, "login", form)
			return
		}

		user, err := h.auth.Login(r.Context(), form.Nickname, password)
		switch {
		case errors.Is(err, models.ErrUserNotFound):
			sess.AddFlash("danger", "User not found.")
		case errors.Is(err, models.ErrWrongPassword):
			sess.AddFlash("danger", "Wrong password.")
		case err != nil:
			h.serverError(w, r, "login_failed", err)
			return
		case persona == "admin" && !user.IsAdmin():
			sess.AddFlash("danger", "Use the administrator credentials for admin mode.")
		default:
			sess.UserID = user.ID
			sess.AddFlash("success", "You have entered the winter hall!")
			h.redirect(w, r, "/")
			return
		}
	}

	h.render(w, r, http.StatusOK, "login", form)
}

// Logout drops the user binding; the session (and its basket) survives.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if sess.UserID != 0 {
		sess.UserID = 0
		sess.AddFlash("info", "Until the next winter gathering!")
	}
	h.redirect(w, r, "/")
}
