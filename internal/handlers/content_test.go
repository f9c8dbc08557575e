package handlers

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG.
var tinyPNG, _ = base64.StdEncoding.DecodeString("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

func multipartRequest(t *testing.T, path, token string, fields map[string]string, filename string, file []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
		h.Set("Content-Type", "image/png")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestReviewModerationEndToEnd(t *testing.T) {
	api := newTestAPI(t)
	citizen := api.register("Cara", "cara@example.org")
	admin := api.registerAdmin("Ari", "ari@example.org")

	rec := api.do(http.MethodPost, "/api/reviews", citizen, gin.H{"serviceName": "Transit", "rating": 4, "comment": "mostly on time"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	review := decode[reviewResponse](t, rec)
	assert.False(t, review.Approved)

	rec = api.do(http.MethodGet, "/api/reviews", "", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/admin/moderation", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	queue := decode[[]moderationResponse](t, rec)
	require.Len(t, queue, 1)
	assert.Equal(t, "review", queue[0].Type)
	assert.Equal(t, "Review: Transit (4 Star)", queue[0].Title)

	rec = api.do(http.MethodPut, "/api/admin/reviews/"+review.ID+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/api/reviews", "", nil)
	feed := decode[[]reviewResponse](t, rec)
	require.Len(t, feed, 1)
	assert.Equal(t, review.ID, feed[0].ID)
	assert.Equal(t, "Cara", feed[0].AuthorName)

	rec = api.do(http.MethodDelete, "/api/admin/reviews/"+review.ID, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/api/reviews", "", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = api.do(http.MethodDelete, "/api/admin/reviews/"+review.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewRatingValidated(t *testing.T) {
	api := newTestAPI(t)
	citizen := api.register("Cara", "cara@example.org")

	rec := api.do(http.MethodPost, "/api/reviews", citizen, gin.H{"serviceName": "Transit", "rating": 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComplaintWithImageAndStatus(t *testing.T) {
	api := newTestAPI(t)
	citizen := api.register("Cara", "cara@example.org")
	admin := api.registerAdmin("Ari", "ari@example.org")

	req := multipartRequest(t, "/api/complaints", citizen, map[string]string{
		"category":    "Roads",
		"description": "Deep pothole near the school",
		"location":    "Elm St",
	}, "pothole.png", tinyPNG)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	complaint := decode[complaintResponse](t, rec)
	assert.Equal(t, "Submitted", complaint.Status)
	require.NotEmpty(t, complaint.Image)

	rec = api.do(http.MethodGet, "/api/uploads/"+complaint.Image, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, tinyPNG, body)

	rec = api.do(http.MethodPut, "/api/admin/complaints/"+complaint.ID, admin, gin.H{"status": "Closed"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPut, "/api/admin/complaints/"+complaint.ID, admin, gin.H{"status": "In Progress"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "In Progress", decode[complaintResponse](t, rec).Status)

	rec = api.do(http.MethodGet, "/api/complaints/my", citizen, nil)
	mine := decode[[]complaintResponse](t, rec)
	require.Len(t, mine, 1)
	assert.Equal(t, "In Progress", mine[0].Status)

	rec = api.do(http.MethodGet, "/api/admin/complaints?status=Resolved", admin, nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestComplaintRejectsNonImageUpload(t *testing.T) {
	api := newTestAPI(t)
	citizen := api.register("Cara", "cara@example.org")

	req := multipartRequest(t, "/api/complaints", citizen, map[string]string{
		"category":    "Roads",
		"description": "Broken light",
	}, "light.png", []byte("this is not an image"))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostDeleteByOwnerOrAdmin(t *testing.T) {
	api := newTestAPI(t)
	author := api.register("Cara", "cara@example.org")
	other := api.register("Dan", "dan@example.org")
	admin := api.registerAdmin("Ari", "ari@example.org")

	rec := api.do(http.MethodPost, "/api/posts", author, gin.H{"content": "New benches in the park"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	post := decode[postResponse](t, rec)

	rec = api.do(http.MethodPost, "/api/posts/"+post.ID+"/comments", other, gin.H{"comment": "Nice"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = api.do(http.MethodPost, "/api/posts/"+post.ID+"/support", other, nil)
	assert.JSONEq(t, `{"status":"supported"}`, rec.Body.String())
	rec = api.do(http.MethodPut, "/api/posts/"+post.ID+"/like", other, nil)
	assert.JSONEq(t, `{"likes":1}`, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/posts", "", nil)
	posts := decode[[]postResponse](t, rec)
	require.Len(t, posts, 1)
	assert.Equal(t, 1, posts[0].Supports)
	assert.Equal(t, "Cara", posts[0].AuthorName)

	rec = api.do(http.MethodDelete, "/api/posts/"+post.ID, other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodDelete, "/api/posts/"+post.ID, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, api.store.Posts().CommentCount(post.ID))
	assert.Zero(t, api.store.Posts().SupportCount(post.ID))

	rec = api.do(http.MethodGet, "/api/posts", "", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestAnnouncements(t *testing.T) {
	api := newTestAPI(t)
	citizen := api.register("Cara", "cara@example.org")
	admin := api.registerAdmin("Ari", "ari@example.org")

	rec := api.do(http.MethodPost, "/api/admin/announcements", citizen, gin.H{"title": "Water", "message": "Outage"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, "/api/admin/announcements", admin, gin.H{"title": "Water", "message": "Outage", "priority": "Urgent"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/admin/announcements", admin, gin.H{"title": "Water", "message": "Outage", "priority": "High"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[announcementResponse](t, rec)

	rec = api.do(http.MethodGet, "/api/announcements", "", nil)
	list := decode[[]announcementResponse](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "High", list[0].Priority)

	rec = api.do(http.MethodDelete, "/api/admin/announcements/"+created.ID, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(http.MethodGet, "/api/announcements", "", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUnknownUploadIsNotFound(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/api/uploads/nothing-here.png", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
