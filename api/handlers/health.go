package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/OpenRecords/foi-request-services/db"
)

// Healthz reports whether the service can reach its database.
func Healthz(rdb *db.RequestsDB) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := rdb.DB.PingContext(ctx); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
