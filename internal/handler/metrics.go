package handler

import (
	"fmt"
	"net/http"

	"github.com/storefront/storefront/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "storefront_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "storefront_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "storefront_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)
	writeMetric(w, "storefront_password_hash_duration_seconds_count %d\n", snap.PasswordHashCount)
	writeMetric(w, "storefront_password_hash_duration_seconds_sum %.6f\n", float64(snap.PasswordHashTotalNs)/1e9)

	writeMetric(w, "storefront_products_created_total %d\n", snap.ProductsCreated)
	writeMetric(w, "storefront_products_updated_total %d\n", snap.ProductsUpdated)
	writeMetric(w, "storefront_products_deleted_total %d\n", snap.ProductsDeleted)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
