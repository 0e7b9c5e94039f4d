package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"winter-feast/internal/logger"
	"winter-feast/internal/models"
	"winter-feast/internal/session"
)

type contextKey string

const (
	sessionContextKey   contextKey = "session"
	userContextKey      contextKey = "user"
	requestIDContextKey contextKey = "request_id"
)

// SessionCookieName is the browser cookie carrying the signed session ID.
const SessionCookieName = "feast_session"

func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionContextKey).(*session.Session)
	return sess
}

func userFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// withLogging logs every request with its status and duration.
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := logger.GenerateRequestID()
		r = r.WithContext(context.WithValue(r.Context(), requestIDContextKey, requestID))

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		h.log.Debug("request_completed",
			fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, rw.statusCode),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": rw.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_addr": r.RemoteAddr,
			})
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// securityHeaders sets the headers every response carries.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}

// withSession loads the visitor's session from the signed cookie, creating
// one for first-time visitors so the basket and CSRF secret exist before
// login. The authenticated user, when any, is resolved into the context.
func (h *Handler) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var sess *session.Session
		if cookie, err := r.Cookie(SessionCookieName); err == nil {
			if id, ok := session.VerifyID(h.secret, cookie.Value); ok {
				loaded, err := h.sessions.Load(ctx, id)
				if err != nil {
					h.log.Error("session_load_failed", "Failed to load session",
						requestIDFrom(ctx), err, nil)
				} else {
					sess = loaded
				}
			}
		}

		if sess == nil {
			sess = session.NewSession()
			if err := h.sessions.Save(ctx, sess); err != nil {
				h.log.Error("session_create_failed", "Failed to create session",
					requestIDFrom(ctx), err, nil)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    session.SignID(h.secret, sess.ID),
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteStrictMode,
			})
		}
		ctx = context.WithValue(ctx, sessionContextKey, sess)

		var user *models.User
		if sess.UserID != 0 {
			loaded, err := h.auth.GetUser(ctx, sess.UserID)
			if err != nil {
				// Account deleted since login: drop the stale binding.
				sess.UserID = 0
			} else {
				user = loaded
			}
		}
		ctx = context.WithValue(ctx, userContextKey, user)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireCSRF rejects any state-changing request whose form token does not
// match the per-session secret. The rejection is a hard 403, never a flash.
func (h *Handler) requireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

			sess := sessionFrom(r.Context())
			if sess == nil || !sess.ValidCSRF(r.PostFormValue("csrf_token")) {
				h.log.Debug("csrf_rejected", "Blocked request with bad CSRF token",
					requestIDFrom(r.Context()), map[string]interface{}{"path": r.URL.Path})
				http.Error(w, "Request blocked", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth redirects anonymous visitors to the login page.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userFrom(r.Context()) == nil {
			if sess := sessionFrom(r.Context()); sess != nil {
				sess.AddFlash("warning", "Please log in first.")
			}
			h.redirect(w, r, "/login")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin gates administrator pages on the role claim.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !userFrom(r.Context()).IsAdmin() {
			if sess := sessionFrom(r.Context()); sess != nil {
				sess.AddFlash("danger", "This page is for the administrator only.")
			}
			h.redirect(w, r, "/")
			return
		}
		next.ServeHTTP(w, r)
	})
}
