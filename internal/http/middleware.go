package httpapp

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/inkwell-news/inkwell/internal/identity"
)

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// corsAllowAll is the permissive outer CORS layer applied to every
// response.
func (s *Server) corsAllowAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, PUT, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		next.ServeHTTP(w, r)
	})
}

// corsOrigin is the second, restrictive layer: it narrows the allowed
// browser origin to the configured development origin and widens the
// header allow-list with the legacy authtoken header, which clients still
// send although no handler reads it. It also answers preflight requests.
func (s *Server) corsOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AllowOrigin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", s.cfg.AllowOrigin)
			h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, authtoken")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// attachIdentity verifies the bearer token when one is present. A request
// without an Authorization header proceeds as anonymous; a request with a
// token that fails verification is rejected here, before any handler runs,
// and the verifier's error stays out of the response body.
func (s *Server) attachIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			s.render(w, r, ErrUnauthorized)
			return
		}
		ident, err := s.verifier.Verify(r.Context(), strings.TrimSpace(token))
		if err != nil {
			s.log.Infow("token rejected", "error", err)
			s.render(w, r, ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(identity.NewContext(r.Context(), ident)))
	})
}

// requireIdentity gates a route group on a verified identity being
// attached. The rejection payload is per-group so each route keeps its
// documented error message.
func (s *Server) requireIdentity(rejection render.Renderer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := identity.FromContext(r.Context()); !ok {
				s.render(w, r, rejection)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
