package handlers

import (
	"time"

	"cityconnect/internal/models"
)

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUser(u models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

type postResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	AuthorName string    `json:"username"`
	Content    string    `json:"content"`
	Image      string    `json:"image,omitempty"`
	Likes      int       `json:"likes"`
	Supports   int       `json:"supportCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toPost(p models.Post) postResponse {
	return postResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		AuthorName: p.AuthorName,
		Content:    p.Content,
		Image:      p.Image,
		Likes:      p.Likes,
		Supports:   p.Supports,
		CreatedAt:  p.CreatedAt,
	}
}

type commentResponse struct {
	ID         string    `json:"id"`
	PostID     string    `json:"postId"`
	UserID     string    `json:"userId"`
	AuthorName string    `json:"username"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toComment(c models.Comment) commentResponse {
	return commentResponse{
		ID:         c.ID,
		PostID:     c.PostID,
		UserID:     c.UserID,
		AuthorName: c.AuthorName,
		Comment:    c.Body,
		CreatedAt:  c.CreatedAt,
	}
}

type complaintResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	AuthorName  string    `json:"username"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	Image       string    `json:"image,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toComplaint(c models.Complaint) complaintResponse {
	return complaintResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		AuthorName:  c.AuthorName,
		Category:    c.Category,
		Description: c.Description,
		Location:    c.Location,
		Image:       c.Image,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type reviewResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	AuthorName  string    `json:"username"`
	ServiceName string    `json:"serviceName"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	Approved    bool      `json:"isApproved"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toReview(r models.Review) reviewResponse {
	return reviewResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		AuthorName:  r.AuthorName,
		ServiceName: r.ServiceName,
		Rating:      r.Rating,
		Comment:     r.Comment,
		Approved:    r.Approved,
		CreatedAt:   r.CreatedAt,
	}
}

type announcementResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
}

func toAnnouncement(a models.Announcement) announcementResponse {
	return announcementResponse{
		ID:        a.ID,
		Title:     a.Title,
		Message:   a.Message,
		Priority:  string(a.Priority),
		CreatedAt: a.CreatedAt,
	}
}

type groupResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"ownerId"`
	OwnerName   string    `json:"ownerName,omitempty"`
	MemberCount int       `json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toGroup(g models.Group) groupResponse {
	return groupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		OwnerID:     g.OwnerID,
		OwnerName:   g.OwnerName,
		MemberCount: g.MemberCount,
		CreatedAt:   g.CreatedAt,
	}
}

type memberResponse struct {
	UserID   string    `json:"userId"`
	Name     string    `json:"username"`
	JoinedAt time.Time `json:"joinedAt"`
}

type messageResponse struct {
	ID         string    `json:"id"`
	GroupID    string    `json:"groupId"`
	UserID     string    `json:"userId"`
	AuthorName string    `json:"username"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toMessage(m models.Message) messageResponse {
	return messageResponse{
		ID:         m.ID,
		GroupID:    m.GroupID,
		UserID:     m.UserID,
		AuthorName: m.AuthorName,
		Message:    m.Body,
		CreatedAt:  m.CreatedAt,
	}
}

type moderationResponse struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	AuthorName string    `json:"username"`
	CreatedAt  time.Time `json:"createdAt"`
}

// mapSlice converts a model slice, always yielding a non-nil slice so
// empty lists encode as [].
func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
