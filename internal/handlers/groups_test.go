package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityconnect/internal/realtime"
	"cityconnect/internal/repository/memstore"
	"cityconnect/internal/service"
)

func TestGroupMembershipAndMessages(t *testing.T) {
	api := newTestAPI(t)
	owner := api.register("Cara", "cara@example.org")
	joiner := api.register("Dan", "dan@example.org")

	rec := api.do(http.MethodPost, "/api/groups", owner, gin.H{"name": "Gardeners", "description": "Community plots"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	group := decode[groupResponse](t, rec)
	assert.Equal(t, 1, group.MemberCount)

	for i, want := range []bool{false, true} {
		rec = api.do(http.MethodPost, "/api/groups/"+group.ID+"/join", joiner, nil)
		require.Equal(t, http.StatusOK, rec.Code, "join %d", i)
		assert.Equal(t, want, decode[map[string]any](t, rec)["alreadyMember"])
	}

	rec = api.do(http.MethodGet, "/api/groups/"+group.ID+"/members", "", nil)
	members := decode[[]memberResponse](t, rec)
	require.Len(t, members, 2)
	assert.Equal(t, "Cara", members[0].Name)
	assert.Equal(t, "Dan", members[1].Name)

	rec = api.do(http.MethodPost, "/api/groups/"+group.ID+"/messages", joiner, gin.H{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for i := 0; i < 3; i++ {
		rec = api.do(http.MethodPost, "/api/groups/"+group.ID+"/messages", owner, gin.H{"message": fmt.Sprintf("hello %d", i)})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = api.do(http.MethodGet, "/api/groups/"+group.ID+"/messages", "", nil)
	messages := decode[[]messageResponse](t, rec)
	require.Len(t, messages, 3)
	for i, msg := range messages {
		assert.Equal(t, fmt.Sprintf("hello %d", i), msg.Message)
		assert.Equal(t, "Cara", msg.AuthorName)
	}

	rec = api.do(http.MethodGet, "/api/groups/missing/messages", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminDeletesGroup(t *testing.T) {
	api := newTestAPI(t)
	owner := api.register("Cara", "cara@example.org")
	admin := api.registerAdmin("Ari", "ari@example.org")

	rec := api.do(http.MethodPost, "/api/groups", owner, gin.H{"name": "Temporary"})
	require.Equal(t, http.StatusCreated, rec.Code)
	group := decode[groupResponse](t, rec)

	rec = api.do(http.MethodDelete, "/api/admin/groups/"+group.ID, owner, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodDelete, "/api/admin/groups/"+group.ID, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/api/groups", "", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestStreamDeliversNewMessages(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	broker := realtime.NewBroker(client)

	api := newTestAPI(t, func(d *Deps, store *memstore.Store) {
		d.Stream = broker
		d.Services.Groups = service.NewGroupService(store.Groups(), store.Users(), broker, zerolog.Nop())
	})
	owner := api.register("Cara", "cara@example.org")

	rec := api.do(http.MethodPost, "/api/groups", owner, gin.H{"name": "Live"})
	require.Equal(t, http.StatusCreated, rec.Code)
	group := decode[groupResponse](t, rec)

	srv := httptest.NewServer(api.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/groups/" + group.ID + "/stream?token=" + owner
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	rec = api.do(http.MethodPost, "/api/groups/"+group.ID+"/messages", owner, gin.H{"message": "live hello"})
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event realtime.Event
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, group.ID, event.GroupID)
	assert.Equal(t, "live hello", event.Message)
	assert.Equal(t, "Cara", event.AuthorName)
}

func TestStreamRequiresToken(t *testing.T) {
	api := newTestAPI(t, func(d *Deps, _ *memstore.Store) {
		d.Stream = realtime.NewBroker(redis.NewClient(&redis.Options{Addr: miniredis.RunT(t).Addr()}))
	})

	rec := api.do(http.MethodGet, "/api/groups/any/stream", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing_token", errorCode(t, rec))
}
