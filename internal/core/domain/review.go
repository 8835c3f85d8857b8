package domain

import "time"

const (
	MinScore = 1
	MaxScore = 10
)

// Review is a scored opinion on a title. Each author may review a title once.
type Review struct {
	ID         string    `json:"id"`
	TitleID    string    `json:"-"`
	AuthorID   string    `json:"-"`
	AuthorName string    `json:"author"`
	Text       string    `json:"text"`
	Score      int       `json:"score"`
	PubDate    time.Time `json:"pub_date"`
}

// OwnerID returns the id of the account that wrote the review.
func (r *Review) OwnerID() string { return r.AuthorID }

// Comment is a reply attached to a review.
type Comment struct {
	ID         string    `json:"id"`
	TitleID    string    `json:"-"`
	ReviewID   string    `json:"-"`
	AuthorID   string    `json:"-"`
	AuthorName string    `json:"author"`
	Text       string    `json:"text"`
	PubDate    time.Time `json:"pub_date"`
}

// OwnerID returns the id of the account that wrote the comment.
func (c *Comment) OwnerID() string { return c.AuthorID }
