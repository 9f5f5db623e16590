package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
)

// Recovery turns a panicking handler into a 500 with a JSON error body.
// If the handler already started its response, the panic is only logged.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := newStatusRecorder(w)
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic recovered: %v\n%s", err, debug.Stack())
				if rec.wroteHeader {
					return
				}
				rec.Header().Set("Content-Type", "application/json")
				rec.WriteHeader(http.StatusInternalServerError)
				rec.Write([]byte(`{"error":"internal server error"}` + "\n"))
			}
		}()
		next.ServeHTTP(rec, r)
	})
}
