package web

import (
	"html/template"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"winter-feast/internal/config"
	"winter-feast/internal/logger"
	"winter-feast/internal/services/auth"
	"winter-feast/internal/services/menu"
	"winter-feast/internal/services/order"
	"winter-feast/internal/services/reservation"
	"winter-feast/internal/session"
)

// Handler wires the HTTP surface to the application services.
type Handler struct {
	auth         *auth.Service
	menu         *menu.Service
	orders       *order.Service
	reservations *reservation.Service
	sessions     session.Store
	log          *logger.Logger

	secret         string
	adminNickname  string
	uploadDir      string
	maxUploadBytes int64
	templates      map[string]*template.Template
}

// NewHandler creates the web handler with all its dependencies.
func NewHandler(
	cfg *config.Config,
	authSvc *auth.Service,
	menuSvc *menu.Service,
	orderSvc *order.Service,
	reservationSvc *reservation.Service,
	sessions session.Store,
	log *logger.Logger,
) (*Handler, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &Handler{
		auth:           authSvc,
		menu:           menuSvc,
		orders:         orderSvc,
		reservations:   reservationSvc,
		sessions:       sessions,
		log:            log,
		secret:         cfg.Session.Secret,
		adminNickname:  cfg.Admin.Nickname,
		uploadDir:      cfg.Uploads.Dir,
		maxUploadBytes: cfg.Uploads.MaxSizeBytes,
		templates:      templates,
	}, nil
}

// SetupRoutes builds the full route table with the middleware chain.
func (h *Handler) SetupRoutes() http.Handler {
	r := mux.NewRouter()
	r.Use(h.withLogging)
	r.Use(securityHeaders)
	r.Use(h.withSession)
	r.Use(h.requireCSRF)

	// Public pages
	r.HandleFunc("/", h.Home).Methods(http.MethodGet)
	r.HandleFunc("/home", h.Home).Methods(http.MethodGet)
	r.HandleFunc("/menu", h.MenuPage).Methods(http.MethodGet)
	r.HandleFunc("/position/{name}", h.Position).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/test_basket", h.TestBasket).Methods(http.MethodGet)
	r.HandleFunc("/register", h.Register).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/logout", h.Logout).Methods(http.MethodGet)

	// Pages requiring a logged-in user
	authed := r.NewRoute().Subrouter()
	authed.Use(h.requireAuth)
	authed.HandleFunc("/create_order", h.CreateOrder).Methods(http.MethodGet, http.MethodPost)
	authed.HandleFunc("/my_orders", h.MyOrders).Methods(http.MethodGet)
	authed.HandleFunc("/my_order/{id:[0-9]+}", h.MyOrder).Methods(http.MethodGet, http.MethodPost)
	authed.HandleFunc("/cancel_order/{id:[0-9]+}", h.CancelOrder).Methods(http.MethodPost)
	authed.HandleFunc("/reserved", h.Reserved).Methods(http.MethodGet, http.MethodPost)
	authed.HandleFunc("/my_reservations", h.MyReservations).Methods(http.MethodGet, http.MethodPost)

	// Administrator pages
	admin := authed.NewRoute().Subrouter()
	admin.Use(h.requireAdmin)
	admin.HandleFunc("/add_position", h.AddPosition).Methods(http.MethodGet, http.MethodPost)
	admin.HandleFunc("/menu_check", h.MenuCheck).Methods(http.MethodGet, http.MethodPost)
	admin.HandleFunc("/orders_check", h.OrdersCheck).Methods(http.MethodGet)
	admin.HandleFunc("/all_users", h.AllUsers).Methods(http.MethodGet)
	admin.HandleFunc("/reservations_check", h.ReservationsCheck).Methods(http.MethodGet, http.MethodPost)

	// Uploaded menu images, then the embedded site assets
	r.PathPrefix("/static/menu/").Handler(
		http.StripPrefix("/static/menu/", http.FileServer(http.Dir(h.uploadDir))))
	r.PathPrefix("/static/").Handler(http.FileServer(http.FS(staticFS)))

	r.NotFoundHandler = http.HandlerFunc(h.NotFound)

	return cors.Default().Handler(r)
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "not_found", nil)
}
