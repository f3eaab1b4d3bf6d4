package store

import (
	"context"
	"errors"

	"github.com/inkwell-news/inkwell/internal/model"
)

var (
	ErrNotFound        = errors.New("article not found")
	ErrDuplicateUpvote = errors.New("duplicate upvote")
)

// Store owns the article table. A missing row is always ErrNotFound, never
// a generic error. UpvoteArticle enforces exactly-once membership per
// (article, subject) at the storage layer, so two concurrent upvotes by the
// same subject cannot both succeed.
type Store interface {
	GetArticle(ctx context.Context, id int64) (model.Article, error)
	UpvoteArticle(ctx context.Context, id int64, subject string) (model.Article, error)
	AddComment(ctx context.Context, id int64, text, email string) (model.Article, error)

	// CreateArticle exists for the seed tool and tests. Articles are never
	// created over HTTP.
	CreateArticle(ctx context.Context, article *model.Article) (int64, error)

	Close() error
}
