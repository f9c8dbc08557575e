package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cityconnect/internal/middleware"
	"cityconnect/internal/realtime"
	"cityconnect/internal/security"
	"cityconnect/internal/service"
)

// Pinger is satisfied by the postgres pool and adapted for redis.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StreamSource opens live group chat subscriptions.
type StreamSource interface {
	Subscribe(ctx context.Context, groupID string) (*realtime.Subscription, error)
}

type Services struct {
	Auth          *service.AuthService
	Posts         *service.PostService
	Complaints    *service.ComplaintService
	Reviews       *service.ReviewService
	Announcements *service.AnnouncementService
	Groups        *service.GroupService
	Moderation    *service.ModerationService
	Uploads       *service.UploadService
}

type Deps struct {
	Services    Services
	Tokens      middleware.TokenVerifier
	Environment string
	// AuthLimit guards register and login. Nil disables it.
	AuthLimit gin.HandlerFunc
	// Stream is optional; without it the stream route is not mounted.
	Stream   StreamSource
	Database Pinger
	Cache    Pinger
}

type HandlerSet struct {
	log  zerolog.Logger
	deps Deps
	svc  Services
}

func NewHandlerSet(log zerolog.Logger, deps Deps) HandlerSet {
	registerValidators()
	return HandlerSet{
		log:  log,
		deps: deps,
		svc:  deps.Services,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	authed := middleware.Auth(h.deps.Tokens)
	admin := []gin.HandlerFunc{authed, middleware.RequireAdmin()}

	public := router.Group("")
	if h.deps.AuthLimit != nil {
		public.POST("/register", h.deps.AuthLimit, h.RegisterUser)
		public.POST("/login", h.deps.AuthLimit, h.Login)
	} else {
		public.POST("/register", h.RegisterUser)
		public.POST("/login", h.Login)
	}
	router.GET("/auth/me", authed, h.Me)

	router.GET("/uploads/:name", h.ServeUpload)

	router.GET("/posts", h.ListPosts)
	router.POST("/posts", authed, h.CreatePost)
	router.DELETE("/posts/:id", authed, h.DeletePost)
	router.PUT("/posts/:id/like", authed, h.LikePost)
	router.POST("/posts/:id/support", authed, h.ToggleSupport)
	router.GET("/posts/:id/comments", h.ListComments)
	router.POST("/posts/:id/comments", authed, h.AddComment)

	router.GET("/complaints/my", authed, h.MyComplaints)
	router.POST("/complaints", authed, h.CreateComplaint)

	router.GET("/reviews", h.ListReviews)
	router.POST("/reviews", authed, h.CreateReview)

	router.GET("/announcements", h.ListAnnouncements)

	groups := router.Group("/groups")
	groups.GET("", h.ListGroups)
	groups.POST("", authed, h.CreateGroup)
	groups.POST("/:id/join", authed, h.JoinGroup)
	groups.GET("/:id/messages", h.ListMessages)
	groups.POST("/:id/messages", authed, h.PostMessage)
	groups.GET("/:id/members", h.ListMembers)
	if h.deps.Stream != nil {
		groups.GET("/:id/stream", authed, h.StreamMessages)
	}

	adminGroup := router.Group("/admin", admin...)
	adminGroup.GET("/moderation", h.ModerationQueue)
	adminGroup.GET("/complaints", h.AdminListComplaints)
	adminGroup.PUT("/complaints/:id", h.UpdateComplaintStatus)
	adminGroup.PUT("/reviews/:id/approve", h.ApproveReview)
	adminGroup.DELETE("/reviews/:id", h.DeleteReview)
	adminGroup.POST("/announcements", h.CreateAnnouncement)
	adminGroup.DELETE("/announcements/:id", h.DeleteAnnouncement)
	adminGroup.DELETE("/groups/:id", h.DeleteGroup)
}

// respondError logs unexpected failures in full and answers with the
// generic body; known kinds go back with their own message.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	if _, code := middleware.ErrorStatus(err); code == "internal_error" {
		h.log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", middleware.RequestIDFrom(c)).
			Msg("request failed")
	}
	middleware.AbortWithError(c, err)
}

// principal is only called behind middleware.Auth.
func principal(c *gin.Context) security.Principal {
	p, _ := middleware.CurrentPrincipal(c)
	return p
}
