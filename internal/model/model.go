package model

import "time"

// Article is one row of the article table together with its upvote
// membership and comment sequences, loaded as a unit.
type Article struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content,omitempty"`
	Upvote    int       `db:"upvote" json:"upvote"`
	UpvoteIDs []string  `db:"-" json:"upvoteIds"`
	Comments  []string  `db:"-" json:"comments"`
	CreatedAt time.Time `db:"-" json:"-"`
}

// HasUpvoted reports whether subject already appears in the upvote set.
func (a Article) HasUpvoted(subject string) bool {
	for _, s := range a.UpvoteIDs {
		if s == subject {
			return true
		}
	}
	return false
}
