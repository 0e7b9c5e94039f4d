package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"winter-feast/internal/models"
	"winter-feast/internal/session"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// AppName is the public name of the restaurant.
const AppName = "Winter Feast"

var pageNames = []string{
	"home", "menu", "position", "register", "login",
	"create_order", "my_orders", "my_order",
	"reserved", "my_reservations",
	"add_position", "menu_check", "orders_check", "all_users", "reservations_check",
	"not_found",
}

func parseTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(pageNames))
	for _, page := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/base.tmpl", "templates/"+page+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[page] = t
	}
	return templates, nil
}

// pageData is the envelope every template receives.
type pageData struct {
	AppName   string
	Year      int
	User      *models.User
	IsAdmin   bool
	CSRFToken string
	Flashes   []session.Flash
	Data      interface{}
}

// render writes the named page. Flash messages are consumed here, so the
// session is persisted before the body goes out.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data interface{}) {
	pd := pageData{
		AppName: AppName,
		Year:    time.Now().UTC().Year(),
		User:    userFrom(r.Context()),
		Data:    data,
	}
	pd.IsAdmin = pd.User.IsAdmin()

	if sess := sessionFrom(r.Context()); sess != nil {
		pd.CSRFToken = sess.CSRFToken
		pd.Flashes = sess.PopFlashes()
		h.saveSession(r)
	}

	t, ok := h.templates[page]
	if !ok {
		h.log.Error("render_failed", "Unknown template", requestIDFrom(r.Context()), nil,
			map[string]interface{}{"page": page})
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", pd); err != nil {
		h.log.Error("render_failed", "Failed to execute template", requestIDFrom(r.Context()), err,
			map[string]interface{}{"page": page})
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// redirect persists the session (flashes queued by the handler included)
// and sends the browser elsewhere.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, url string) {
	h.saveSession(r)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// serverError is the top-level catch for unexpected failures: log, queue a
// generic notice and send the user home.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, action string, err error) {
	h.log.Error(action, "Unexpected server error", requestIDFrom(r.Context()), err, nil)
	if sess := sessionFrom(r.Context()); sess != nil {
		sess.AddFlash("danger", "Something went wrong. Please try again.")
	}
	h.redirect(w, r, "/")
}

func (h *Handler) saveSession(r *http.Request) {
	sess := sessionFrom(r.Context())
	if sess == nil {
		return
	}
	if err := h.sessions.Save(r.Context(), sess); err != nil {
		h.log.Error("session_save_failed", "Failed to save session", requestIDFrom(r.Context()), err, nil)
	}
}
