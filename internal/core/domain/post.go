package domain

import (
	"errors"
	"time"
)

var ErrPostNotFound = errors.New("post not found")

// Post is a piece of user content. Title and Content are stored exactly as
// submitted; escaping happens only when a post is rendered.
type Post struct {
	ID                string
	Title             string
	Content           string
	AuthorID          string
	AuthorUsername    string
	AuthorDisplayName string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
