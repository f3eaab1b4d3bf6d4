package httpapp

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/inkwell-news/inkwell/internal/config"
	"github.com/inkwell-news/inkwell/internal/identity"
	"github.com/inkwell-news/inkwell/internal/model"
	"github.com/inkwell-news/inkwell/internal/store"
)

type Server struct {
	store    store.Store
	verifier identity.Verifier
	cfg      config.Config
	log      *zap.SugaredLogger
}

func NewServer(st store.Store, verifier identity.Verifier, cfg config.Config, log *zap.SugaredLogger) *Server {
	return &Server{store: st, verifier: verifier, cfg: cfg, log: log}
}

// Routes builds the middleware chain and routing table. Registration order
// is load-bearing: the public GET is registered before the gated groups.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(s.corsAllowAll)
	r.Use(s.corsOrigin)
	r.Use(s.attachIdentity)

	r.Route("/api/articles/{articleID}", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/", s.handleGetArticle)
		r.Group(func(r chi.Router) {
			r.Use(s.requireIdentity(ErrUnauthorized))
			r.Put("/upvote", s.handleUpvote)
		})
		r.Group(func(r chi.Router) {
			r.Use(s.requireIdentity(ErrNotAuthenticated))
			r.Post("/comment", s.handleAddComment)
		})
	})

	fileServer(r, "/", assets())

	return r
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := articleID(r)
	if err != nil {
		s.render(w, r, ErrArticleNotFound)
		return
	}
	article, err := s.store.GetArticle(r.Context(), id)
	if err != nil {
		s.renderStoreError(w, r, err, "fetch article", id)
		return
	}
	s.render(w, r, s.articleResponse(r, article))
}

func (s *Server) handleUpvote(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok {
		s.render(w, r, ErrUnauthorized)
		return
	}
	id, err := articleID(r)
	if err != nil {
		s.render(w, r, ErrArticleNotFound)
		return
	}
	article, err := s.store.UpvoteArticle(r.Context(), id, ident.Subject)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUpvote) {
			s.render(w, r, ErrAlreadyUpvoted)
			return
		}
		s.renderStoreError(w, r, err, "upvote article", id)
		return
	}
	s.render(w, r, s.articleResponse(r, article))
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	ident, ok := identity.FromContext(r.Context())
	if !ok || ident.Email == "" {
		s.render(w, r, ErrNotAuthenticated)
		return
	}
	id, err := articleID(r)
	if err != nil {
		s.render(w, r, ErrArticleNotFound)
		return
	}
	data := &CommentRequest{}
	if err := render.Bind(r, data); err != nil {
		s.render(w, r, ErrInvalidRequest(err))
		return
	}
	article, err := s.store.AddComment(r.Context(), id, data.Text, ident.Email)
	if err != nil {
		s.renderStoreError(w, r, err, "add comment", id)
		return
	}
	s.render(w, r, s.articleResponse(r, article))
}

// articleResponse derives the response-only canUpvote field; it is never
// persisted. Anonymous requests always see false.
func (s *Server) articleResponse(r *http.Request, article model.Article) *ArticleResponse {
	resp := &ArticleResponse{Article: article}
	if ident, ok := identity.FromContext(r.Context()); ok {
		resp.CanUpvote = !article.HasUpvoted(ident.Subject)
	}
	return resp
}

func (s *Server) renderStoreError(w http.ResponseWriter, r *http.Request, err error, op string, id int64) {
	if errors.Is(err, store.ErrNotFound) {
		s.render(w, r, ErrArticleNotFound)
		return
	}
	s.log.Errorw(op, "article_id", id, "error", err)
	s.render(w, r, ErrInternal)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, v render.Renderer) {
	if err := render.Render(w, r, v); err != nil {
		s.log.Errorw("render response", "error", err)
	}
}

func articleID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "articleID"), 10, 64)
	if err != nil {
		return 0, err
	}
	return id, nil
}
