// Package middleware holds HTTP middleware shared by the seqalign server.
package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/shenwei356/go-logging"
)

var log = logging.MustGetLogger("seqalign")

// Logger logs one line per request: method, path, status, response size,
// duration and the chi request id.
func Logger(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			line := []interface{}{r.Method, r.URL.Path, status, ww.BytesWritten(), time.Since(start)}
			if id := middleware.GetReqID(r.Context()); id != "" {
				log.Infof("%s %s %d %dB in %s [%s]", append(line, id)...)
				return
			}
			log.Infof("%s %s %d %dB in %s", line...)
		}()

		next.ServeHTTP(ww, r)
	}
	return http.HandlerFunc(fn)
}
