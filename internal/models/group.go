package models

import "time"

type Group struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	OwnerName   string
	MemberCount int
	CreatedAt   time.Time
}

type Member struct {
	UserID   string
	Name     string
	JoinedAt time.Time
}

// Message is immutable once stored. AuthorName is captured when sent.
type Message struct {
	ID         string
	GroupID    string
	UserID     string
	AuthorName string
	Body       string
	CreatedAt  time.Time
}
