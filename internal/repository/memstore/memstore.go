// Package memstore holds in-memory versions of the repositories. They
// return the same sentinel errors as the postgres ones and back the
// service and handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"cityconnect/internal/models"
	"cityconnect/internal/repository"
)

// Store shares one lock and one clock across every table.
type Store struct {
	mu    sync.Mutex
	clock time.Time

	users         map[string]models.User
	posts         map[string]models.Post
	comments      []models.Comment
	supports      map[[2]string]struct{}
	complaints    map[string]models.Complaint
	reviews       map[string]models.Review
	announcements map[string]models.Announcement
	groups        map[string]models.Group
	members       map[string][]models.Member
	messages      map[string][]models.Message
}

func New() *Store {
	return &Store{
		clock:         time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		users:         make(map[string]models.User),
		posts:         make(map[string]models.Post),
		supports:      make(map[[2]string]struct{}),
		complaints:    make(map[string]models.Complaint),
		reviews:       make(map[string]models.Review),
		announcements: make(map[string]models.Announcement),
		groups:        make(map[string]models.Group),
		members:       make(map[string][]models.Member),
		messages:      make(map[string][]models.Message),
	}
}

// tick advances the clock one second per write so ordering is stable.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) nameOf(userID string) string {
	return s.users[userID].Name
}

func (s *Store) Users() *Users                 { return &Users{s} }
func (s *Store) Posts() *Posts                 { return &Posts{s} }
func (s *Store) Complaints() *Complaints       { return &Complaints{s} }
func (s *Store) Reviews() *Reviews             { return &Reviews{s} }
func (s *Store) Announcements() *Announcements { return &Announcements{s} }
func (s *Store) Groups() *Groups               { return &Groups{s} }
func (s *Store) Moderation() *Moderation       { return &Moderation{s} }

type Users struct{ s *Store }

func (u *Users) Create(_ context.Context, user models.User) (models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, existing := range u.s.users {
		if existing.Email == user.Email {
			return models.User{}, repository.ErrEmailTaken
		}
	}
	user.CreatedAt = u.s.tick()
	u.s.users[user.ID] = user
	return user, nil
}

func (u *Users) FindByEmail(_ context.Context, email string) (models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, user := range u.s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (u *Users) GetByID(_ context.Context, id string) (models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (u *Users) UpdateRole(_ context.Context, email string, role models.Role) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for id, user := range u.s.users {
		if user.Email == email {
			user.Role = role
			u.s.users[id] = user
			return nil
		}
	}
	return repository.ErrUserNotFound
}

type Posts struct{ s *Store }

func (p *Posts) Create(_ context.Context, post models.Post) (models.Post, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	post.CreatedAt = p.s.tick()
	post.AuthorName = p.s.nameOf(post.UserID)
	p.s.posts[post.ID] = post
	return post, nil
}

func (p *Posts) List(_ context.Context) ([]models.Post, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	out := make([]models.Post, 0, len(p.s.posts))
	for _, post := range p.s.posts {
		post.AuthorName = p.s.nameOf(post.UserID)
		post.Supports = 0
		for key := range p.s.supports {
			if key[0] == post.ID {
				post.Supports++
			}
		}
		out = append(out, post)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (p *Posts) Like(_ context.Context, id string) (int, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	post, ok := p.s.posts[id]
	if !ok {
		return 0, repository.ErrPostNotFound
	}
	post.Likes++
	p.s.posts[id] = post
	return post.Likes, nil
}

func (p *Posts) ToggleSupport(_ context.Context, postID, userID string) (bool, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.posts[postID]; !ok {
		return false, repository.ErrPostNotFound
	}
	key := [2]string{postID, userID}
	if _, ok := p.s.supports[key]; ok {
		delete(p.s.supports, key)
		return false, nil
	}
	p.s.supports[key] = struct{}{}
	return true, nil
}

func (p *Posts) AddComment(_ context.Context, comment models.Comment) (models.Comment, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.posts[comment.PostID]; !ok {
		return models.Comment{}, repository.ErrPostNotFound
	}
	comment.CreatedAt = p.s.tick()
	comment.AuthorName = p.s.nameOf(comment.UserID)
	p.s.comments = append(p.s.comments, comment)
	return comment, nil
}

func (p *Posts) Comments(_ context.Context, postID string) ([]models.Comment, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	var out []models.Comment
	for _, c := range p.s.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (p *Posts) Delete(_ context.Context, id string, ownerID string) (models.Post, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	post, ok := p.s.posts[id]
	if !ok {
		return models.Post{}, repository.ErrPostNotFound
	}
	if ownerID != "" && post.UserID != ownerID {
		return models.Post{}, repository.ErrNotPostOwner
	}

	kept := p.s.comments[:0]
	for _, c := range p.s.comments {
		if c.PostID != id {
			kept = append(kept, c)
		}
	}
	p.s.comments = kept
	for key := range p.s.supports {
		if key[0] == id {
			delete(p.s.supports, key)
		}
	}
	delete(p.s.posts, id)
	return post, nil
}

// CommentCount and SupportCount expose row counts for cascade checks.
func (p *Posts) CommentCount(postID string) int {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	n := 0
	for _, c := range p.s.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n
}

func (p *Posts) SupportCount(postID string) int {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	n := 0
	for key := range p.s.supports {
		if key[0] == postID {
			n++
		}
	}
	return n
}

type Complaints struct{ s *Store }

func (c *Complaints) Create(_ context.Context, complaint models.Complaint) (models.Complaint, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	now := c.s.tick()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now
	complaint.AuthorName = c.s.nameOf(complaint.UserID)
	c.s.complaints[complaint.ID] = complaint
	return complaint, nil
}

func (c *Complaints) ListByUser(_ context.Context, userID string) ([]models.Complaint, error) {
	return c.list(func(m models.Complaint) bool { return m.UserID == userID }), nil
}

func (c *Complaints) ListAll(_ context.Context, status *models.ComplaintStatus) ([]models.Complaint, error) {
	return c.list(func(m models.Complaint) bool { return status == nil || m.Status == *status }), nil
}

func (c *Complaints) list(keep func(models.Complaint) bool) []models.Complaint {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	out := make([]models.Complaint, 0)
	for _, m := range c.s.complaints {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (c *Complaints) UpdateStatus(_ context.Context, id string, status models.ComplaintStatus) (models.Complaint, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	complaint, ok := c.s.complaints[id]
	if !ok {
		return models.Complaint{}, repository.ErrComplaintNotFound
	}
	complaint.Status = status
	complaint.UpdatedAt = c.s.tick()
	c.s.complaints[id] = complaint
	return complaint, nil
}

type Reviews struct{ s *Store }

func (r *Reviews) Create(_ context.Context, review models.Review) (models.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	review.CreatedAt = r.s.tick()
	review.Approved = false
	review.AuthorName = r.s.nameOf(review.UserID)
	r.s.reviews[review.ID] = review
	return review, nil
}

func (r *Reviews) ListApproved(_ context.Context) ([]models.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Review, 0)
	for _, review := range r.s.reviews {
		if review.Approved {
			out = append(out, review)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Reviews) Approve(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	review, ok := r.s.reviews[id]
	if !ok {
		return repository.ErrReviewNotFound
	}
	review.Approved = true
	r.s.reviews[id] = review
	return nil
}

func (r *Reviews) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[id]; !ok {
		return repository.ErrReviewNotFound
	}
	delete(r.s.reviews, id)
	return nil
}

type Announcements struct{ s *Store }

func (a *Announcements) Create(_ context.Context, ann models.Announcement) (models.Announcement, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	ann.CreatedAt = a.s.tick()
	a.s.announcements[ann.ID] = ann
	return ann, nil
}

func (a *Announcements) ListRecent(_ context.Context, limit int) ([]models.Announcement, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	out := make([]models.Announcement, 0, len(a.s.announcements))
	for _, ann := range a.s.announcements {
		out = append(out, ann)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *Announcements) Delete(_ context.Context, id string) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if _, ok := a.s.announcements[id]; !ok {
		return repository.ErrAnnouncementNotFound
	}
	delete(a.s.announcements, id)
	return nil
}

type Groups struct{ s *Store }

func (g *Groups) Create(_ context.Context, group models.Group) (models.Group, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	now := g.s.tick()
	group.CreatedAt = now
	group.OwnerName = g.s.nameOf(group.OwnerID)
	g.s.groups[group.ID] = group
	g.s.members[group.ID] = []models.Member{{UserID: group.OwnerID, Name: group.OwnerName, JoinedAt: now}}
	group.MemberCount = 1
	return group, nil
}

func (g *Groups) Get(_ context.Context, id string) (models.Group, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	group, ok := g.s.groups[id]
	if !ok {
		return models.Group{}, repository.ErrGroupNotFound
	}
	group.MemberCount = len(g.s.members[id])
	return group, nil
}

func (g *Groups) List(_ context.Context) ([]models.Group, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	out := make([]models.Group, 0, len(g.s.groups))
	for id, group := range g.s.groups {
		group.MemberCount = len(g.s.members[id])
		out = append(out, group)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (g *Groups) AddMember(_ context.Context, groupID, userID string) (bool, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	if _, ok := g.s.groups[groupID]; !ok {
		return false, repository.ErrGroupNotFound
	}
	for _, m := range g.s.members[groupID] {
		if m.UserID == userID {
			return false, nil
		}
	}
	g.s.members[groupID] = append(g.s.members[groupID], models.Member{
		UserID:   userID,
		Name:     g.s.nameOf(userID),
		JoinedAt: g.s.tick(),
	})
	return true, nil
}

func (g *Groups) Members(_ context.Context, groupID string) ([]models.Member, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	return append([]models.Member(nil), g.s.members[groupID]...), nil
}

func (g *Groups) AppendMessage(_ context.Context, msg models.Message) (models.Message, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	if _, ok := g.s.groups[msg.GroupID]; !ok {
		return models.Message{}, repository.ErrGroupNotFound
	}
	msg.CreatedAt = g.s.clock
	g.s.messages[msg.GroupID] = append(g.s.messages[msg.GroupID], msg)
	return msg, nil
}

func (g *Groups) Messages(_ context.Context, groupID string) ([]models.Message, error) {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	return append([]models.Message(nil), g.s.messages[groupID]...), nil
}

func (g *Groups) Delete(_ context.Context, id string) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	if _, ok := g.s.groups[id]; !ok {
		return repository.ErrGroupNotFound
	}
	delete(g.s.messages, id)
	delete(g.s.members, id)
	delete(g.s.groups, id)
	return nil
}

type Moderation struct{ s *Store }

func (m *Moderation) PendingComplaints(_ context.Context) ([]models.ModerationItem, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]models.ModerationItem, 0)
	for _, c := range m.s.complaints {
		if c.Status == models.ComplaintResolved {
			continue
		}
		out = append(out, models.ModerationItem{
			Kind:       models.KindComplaint,
			ID:         c.ID,
			Title:      models.Title(c.Description),
			Status:     string(c.Status),
			AuthorName: m.s.nameOf(c.UserID),
			CreatedAt:  c.CreatedAt,
		})
	}
	sortItems(out)
	return out, nil
}

func (m *Moderation) PendingReviews(_ context.Context) ([]models.ModerationItem, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]models.ModerationItem, 0)
	for _, r := range m.s.reviews {
		if r.Approved {
			continue
		}
		out = append(out, models.ModerationItem{
			Kind:       models.KindReview,
			ID:         r.ID,
			Title:      models.ReviewTitle(r.ServiceName, r.Rating),
			Status:     "Pending",
			AuthorName: m.s.nameOf(r.UserID),
			CreatedAt:  r.CreatedAt,
		})
	}
	sortItems(out)
	return out, nil
}

func (m *Moderation) Posts(_ context.Context) ([]models.ModerationItem, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]models.ModerationItem, 0)
	for _, p := range m.s.posts {
		out = append(out, models.ModerationItem{
			Kind:       models.KindPost,
			ID:         p.ID,
			Title:      models.Title(p.Content),
			Status:     "Published",
			AuthorName: m.s.nameOf(p.UserID),
			CreatedAt:  p.CreatedAt,
		})
	}
	sortItems(out)
	return out, nil
}

func sortItems(items []models.ModerationItem) {
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
}
