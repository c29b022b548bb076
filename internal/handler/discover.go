package handler

import (
	"net/http"

	"floorlink/internal/discovery"
	"floorlink/internal/domain"
)

// SetScanDefaults sets the scanner options used by POST /api/discover
// before any request overrides.
func (h *Handler) SetScanDefaults(opts ...discovery.Option) {
	h.scan = opts
}

// DiscoverRequest asks for a network scan. Empty fields keep the defaults.
type DiscoverRequest struct {
	Targets          []string `json:"targets"`
	Ports            string   `json:"ports,omitempty"`
	ServiceDetection *bool    `json:"service_detection,omitempty"`
}

// Discover scans the requested targets and places every new host. The
// request blocks for the duration of the scan.
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	var req DiscoverRequest
	if !decode(w, r, &req) {
		return
	}

	opts := append([]discovery.Option(nil), h.scan...)
	if req.Ports != "" {
		opts = append(opts, discovery.WithPortRange(req.Ports))
	}
	if req.ServiceDetection != nil {
		opts = append(opts, discovery.WithServiceDetection(*req.ServiceDetection))
	}

	scanner, err := discovery.NewScanner(req.Targets, opts...)
	if err != nil {
		h.fail(w, "Invalid scan request", err)
		return
	}
	placed, err := h.svc.Discover(r.Context(), scanner)
	if err != nil {
		h.fail(w, "Discovery failed", err)
		return
	}
	if placed == nil {
		placed = []domain.Item{}
	}
	writeJSON(w, placed, http.StatusOK)
}
