package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/cloo-solutions/docqa/internal/api"
	"github.com/cloo-solutions/docqa/internal/telemetry"
)

// Recover turns handler panics into a JSON 500 so one bad request cannot
// take down the server.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}
			log.Printf("panic serving %s %s (request_id=%s): %v\n%s",
				r.Method, r.URL.Path, GetRequestID(r.Context()), err, debug.Stack())
			telemetry.CaptureError(r.Context(), err)

			api.Error(w, http.StatusInternalServerError, "internal server error")
		}()

		next.ServeHTTP(w, r)
	})
}
