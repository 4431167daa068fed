package pos

import (
	"net/http"

	"github.com/gorilla/mux"

	"tablepay/internal/domain"
	"tablepay/internal/logger"
	"tablepay/internal/session"
)

// Staff identity headers. Authentication itself lives in front of this
// service; by the time a request lands here the gateway has already
// verified who is calling and stamps these two headers.
const (
	HeaderStaffID   = "X-Staff-ID"
	HeaderStaffRole = "X-Staff-Role"
)

// SessionMiddleware builds the per-request session from the staff
// headers and rejects requests without a usable identity.
func SessionMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			staffID := r.Header.Get(HeaderStaffID)
			role := domain.Role(r.Header.Get(HeaderStaffRole))

			if staffID == "" || !role.Valid() {
				log.Action("session_rejected").Warn("Request without valid staff identity",
					"path", r.URL.Path, "role", string(role))
				jsonError(w, http.StatusUnauthorized, "missing or invalid staff identity")
				return
			}

			ctx := session.WithSession(r.Context(), session.Session{StaffID: staffID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
