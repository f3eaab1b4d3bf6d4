package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/inkwell-news/inkwell/internal/model"
	"github.com/inkwell-news/inkwell/internal/store"
)

type Store struct {
	db *sqlx.DB
}

func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY when
	// upvotes race.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// migrations is an ordered list of SQL migrations.
// Each migration runs exactly once, tracked by the schema_version table.
var migrations = []string{
	// Migration 1: Initial schema
	`
CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	content TEXT,
	upvote INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS article_upvotes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	article_id INTEGER NOT NULL,
	subject TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY(article_id) REFERENCES articles(id)
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_article_upvotes_unique ON article_upvotes(article_id, subject);

CREATE TABLE IF NOT EXISTS article_comments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	article_id INTEGER NOT NULL,
	display TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	FOREIGN KEY(article_id) REFERENCES articles(id)
);
CREATE INDEX IF NOT EXISTS idx_article_comments_article_id ON article_comments(article_id);
`,
	// Future migrations go here:
	// Migration 2: `ALTER TABLE ...`,
}

func applySchema(db *sqlx.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return err
	}

	var currentVersion int
	row := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	if err := row.Scan(&currentVersion); err != nil {
		return err
	}

	for i := currentVersion; i < len(migrations); i++ {
		if _, err := db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
	}

	return nil
}

type articleRow struct {
	ID        int64          `db:"id"`
	Title     string         `db:"title"`
	Content   sql.NullString `db:"content"`
	Upvote    int            `db:"upvote"`
	CreatedAt int64          `db:"created_at"`
}

func (r articleRow) toModel() model.Article {
	return model.Article{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content.String,
		Upvote:    r.Upvote,
		UpvoteIDs: []string{},
		Comments:  []string{},
		CreatedAt: time.Unix(r.CreatedAt, 0),
	}
}

func (s *Store) CreateArticle(ctx context.Context, article *model.Article) (int64, error) {
	created := article.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `
INSERT INTO articles (title, content, upvote, created_at)
VALUES (?, ?, ?, ?)
`, article.Title, nullIfEmpty(article.Content), article.Upvote, created.Unix())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	article.ID = id
	return id, nil
}

func (s *Store) GetArticle(ctx context.Context, id int64) (model.Article, error) {
	var row articleRow
	err := s.db.GetContext(ctx, &row, `
SELECT id, title, content, upvote, created_at
FROM articles
WHERE id = ?
`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Article{}, store.ErrNotFound
		}
		return model.Article{}, err
	}
	article := row.toModel()

	if err := s.db.SelectContext(ctx, &article.UpvoteIDs, `
SELECT subject FROM article_upvotes WHERE article_id = ? ORDER BY id
`, id); err != nil {
		return model.Article{}, err
	}
	if err := s.db.SelectContext(ctx, &article.Comments, `
SELECT display FROM article_comments WHERE article_id = ? ORDER BY id
`, id); err != nil {
		return model.Article{}, err
	}
	if article.UpvoteIDs == nil {
		article.UpvoteIDs = []string{}
	}
	if article.Comments == nil {
		article.Comments = []string{}
	}
	return article, nil
}

func (s *Store) UpvoteArticle(ctx context.Context, id int64, subject string) (model.Article, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Article{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM articles WHERE id = ?`, id); err != nil {
		return model.Article{}, err
	}
	if exists == 0 {
		return model.Article{}, store.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO article_upvotes (article_id, subject, created_at)
VALUES (?, ?, ?)
`, id, subject, time.Now().Unix()); err != nil {
		if isUniqueViolation(err) {
			return model.Article{}, store.ErrDuplicateUpvote
		}
		return model.Article{}, err
	}
	// The counter moves in the same transaction as the membership row, so
	// the two cannot diverge.
	if _, err := tx.ExecContext(ctx, `UPDATE articles SET upvote = upvote + 1 WHERE id = ?`, id); err != nil {
		return model.Article{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Article{}, err
	}

	return s.GetArticle(ctx, id)
}

func (s *Store) AddComment(ctx context.Context, id int64, text, email string) (model.Article, error) {
	// Display format is part of the API contract, leading space included.
	// The text is stored verbatim.
	display := fmt.Sprintf(" %s - %s", text, email)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Article{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM articles WHERE id = ?`, id); err != nil {
		return model.Article{}, err
	}
	if exists == 0 {
		return model.Article{}, store.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO article_comments (article_id, display, created_at)
VALUES (?, ?, ?)
`, id, display, time.Now().Unix()); err != nil {
		return model.Article{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Article{}, err
	}

	return s.GetArticle(ctx, id)
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}
