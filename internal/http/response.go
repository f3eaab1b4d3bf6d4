package httpapp

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/inkwell-news/inkwell/internal/model"
)

// ArticleResponse is the response payload for an article, extended with the
// derived canUpvote field.
type ArticleResponse struct {
	model.Article
	CanUpvote bool `json:"canUpvote"`
}

func (rd *ArticleResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// CommentRequest is the body of POST .../comment.
type CommentRequest struct {
	Text string `json:"text"`
}

// Bind is a no-op: comment text is stored verbatim, any string goes.
func (c *CommentRequest) Bind(r *http.Request) error {
	return nil
}

// ErrResponse is an error payload keyed "error", used for authorization
// failures and business-rule rejections.
type ErrResponse struct {
	HTTPStatusCode int    `json:"-"`
	ErrorText      string `json:"error"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

// MsgResponse is an error payload keyed "message", used for the article
// routes' not-found and server-error answers.
type MsgResponse struct {
	HTTPStatusCode int    `json:"-"`
	Message        string `json:"message"`
}

func (m *MsgResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, m.HTTPStatusCode)
	return nil
}

var (
	ErrArticleNotFound  = &MsgResponse{HTTPStatusCode: http.StatusNotFound, Message: "Article not found"}
	ErrInternal         = &MsgResponse{HTTPStatusCode: http.StatusInternalServerError, Message: "Internal Server Error"}
	ErrUnauthorized     = &ErrResponse{HTTPStatusCode: http.StatusForbidden, ErrorText: "Unauthorized"}
	ErrNotAuthenticated = &ErrResponse{HTTPStatusCode: http.StatusForbidden, ErrorText: "User not authenticated"}
	ErrAlreadyUpvoted   = &ErrResponse{HTTPStatusCode: http.StatusForbidden, ErrorText: "You have already upvoted this article"}
)

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{HTTPStatusCode: http.StatusBadRequest, ErrorText: err.Error()}
}
