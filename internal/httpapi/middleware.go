package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mazen160/go-random"
)

const requestIdHeader = "X-Request-Id"

type requestIdKeyType int

const requestIdKey requestIdKeyType = 0

func requestIdFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIdKey).(string)
	return id
}

// requestId tags every request with a random id, a client supplied id is kept.
func (s *Server) requestId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIdHeader)
		if id == "" {
			generated, err := random.String(16)
			if err != nil {
				s.tel.ReportBroken(report_request, err, "generate request id")
			}
			id = generated
		}
		if id != "" {
			w.Header().Set(requestIdHeader, id)
			r = r.WithContext(context.WithValue(r.Context(), requestIdKey, id))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.tel.ReportDebug(
			"request",
			r.Method,
			r.URL.Path,
			ww.Status(),
			time.Since(start).String(),
			requestIdFrom(r.Context()),
		)
	})
}

func allowCors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("access-control-allow-origin", "*")
		w.Header().Set("access-control-allow-methods", "GET, POST, OPTIONS")
		w.Header().Set("access-control-allow-headers", "content-type, x-request-id")
		w.Header().Set("access-control-expose-headers", requestIdHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
