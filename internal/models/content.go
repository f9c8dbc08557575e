package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

type ContentKind string

const (
	KindPost      ContentKind = "post"
	KindComplaint ContentKind = "complaint"
	KindReview    ContentKind = "review"
)

type ComplaintStatus string

const (
	ComplaintSubmitted  ComplaintStatus = "Submitted"
	ComplaintInReview   ComplaintStatus = "In Review"
	ComplaintInProgress ComplaintStatus = "In Progress"
	ComplaintResolved   ComplaintStatus = "Resolved"
)

var complaintStatuses = []ComplaintStatus{
	ComplaintSubmitted,
	ComplaintInReview,
	ComplaintInProgress,
	ComplaintResolved,
}

func ComplaintStatuses() []ComplaintStatus {
	out := make([]ComplaintStatus, len(complaintStatuses))
	copy(out, complaintStatuses)
	return out
}

func ParseComplaintStatus(value string) (ComplaintStatus, error) {
	for _, status := range complaintStatuses {
		if string(status) == value {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown complaint status %q", value)
}

type Priority string

const (
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
)

func ParsePriority(value string) (Priority, error) {
	switch Priority(value) {
	case "", PriorityNormal:
		return PriorityNormal, nil
	case PriorityHigh:
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("unknown priority %q", value)
	}
}

const (
	MinRating = 1
	MaxRating = 5
)

type Post struct {
	ID         string
	UserID     string
	AuthorName string
	Content    string
	Image      string
	Likes      int
	Supports   int
	CreatedAt  time.Time
}

type Comment struct {
	ID         string
	PostID     string
	UserID     string
	AuthorName string
	Body       string
	CreatedAt  time.Time
}

type Complaint struct {
	ID          string
	UserID      string
	AuthorName  string
	Category    string
	Description string
	Location    string
	Image       string
	Status      ComplaintStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Review struct {
	ID          string
	UserID      string
	AuthorName  string
	ServiceName string
	Rating      int
	Comment     string
	Approved    bool
	CreatedAt   time.Time
}

type Announcement struct {
	ID        string
	Title     string
	Message   string
	Priority  Priority
	CreatedAt time.Time
}

// ModerationItem is one row of the admin moderation queue.
type ModerationItem struct {
	Kind       ContentKind
	ID         string
	Title      string
	Status     string
	AuthorName string
	CreatedAt  time.Time
}

const titleLimit = 50

// Title cuts text to the first 50 characters, marking the cut with "...".
func Title(text string) string {
	if utf8.RuneCountInString(text) <= titleLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:titleLimit]) + "..."
}

func ReviewTitle(serviceName string, rating int) string {
	return fmt.Sprintf("Review: %s (%d Star)", serviceName, rating)
}
