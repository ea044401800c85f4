package event

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/chronicle/pkg/httputil"
	"github.com/platinummonkey/chronicle/pkg/middleware"
)

// RegisterAdminRoutes registers the development-only seed and reset
// endpoints behind the system scope. The caller must only register these
// outside production-like environments.
func (h *Handlers) RegisterAdminRoutes(router *mux.Router, auth *middleware.ScopeAuth) {
	admin := router.NewRoute().Subrouter()
	admin.Use(auth.Require(middleware.ScopeSystem))
	admin.HandleFunc("/drop_data", h.dropData).Methods("POST")
	admin.HandleFunc("/seed_data", h.seedData).Methods("POST")
}

// dropData handles POST /drop_data: a single destructive truncate.
func (h *Handlers) dropData(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteSuccessMessage(w, "all event data dropped", nil)
}

// seedData handles POST /seed_data with an array of seed rows.
func (h *Handlers) seedData(w http.ResponseWriter, r *http.Request) {
	var rows []SeedEvent
	if !httputil.ParseJSONOrError(w, r, &rows) {
		return
	}

	if err := h.service.Seed(r.Context(), rows); err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteCreated(w, map[string]int{"created": len(rows)})
}
