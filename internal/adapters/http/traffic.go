package httpadapter

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"
)

const msgServerBusy = "Server is busy, retry later"

// backpressureMiddleware caps concurrent requests. A request waits up to
// wait for a slot before it is refused with 503.
func backpressureMiddleware(next http.Handler, maxInFlight int, wait time.Duration) http.Handler {
	slots := semaphore.NewWeighted(int64(maxInFlight))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), wait)
		err := slots.Acquire(ctx, 1)
		cancel()
		if err != nil {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusServiceUnavailable, msgServerBusy)
			return
		}
		defer slots.Release(1)
		next.ServeHTTP(w, r)
	})
}
