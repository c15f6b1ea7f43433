package http

import (
	"net/http"

	"github.com/paperbark/journal/internal/auth/store"
	"github.com/paperbark/journal/pkg/httpx"
)

// LivezHandler answers liveness probes. It only proves the process serves
// requests.
type LivezHandler struct{}

func (LivezHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyzHandler answers readiness probes by pinging the store.
type ReadyzHandler struct {
	Store store.Store
}

func (h *ReadyzHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
