package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cityconnect/internal/apperr"
	"cityconnect/internal/models"
	"cityconnect/internal/repository/memstore"
	"cityconnect/internal/security"
)

func newGroups(t *testing.T, publisher MessagePublisher) (*GroupService, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	seedUser(t, store, citizen, "Cara")
	seedUser(t, store, admin, "Ari")
	return NewGroupService(store.Groups(), store.Users(), publisher, zerolog.Nop()), store
}

func TestCreateGroupEnrollsCreator(t *testing.T) {
	ctx := context.Background()
	groups, _ := newGroups(t, nil)

	group, err := groups.Create(ctx, citizen, "Gardeners", "Community gardens")
	require.NoError(t, err)
	assert.Equal(t, 1, group.MemberCount)

	members, err := groups.Members(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, citizen.UserID, members[0].UserID)
	assert.Equal(t, "Cara", members[0].Name)

	_, err = groups.Create(ctx, citizen, "   ", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestJoinIsIdempotent(t *testing.T) {
	ctx := context.Background()
	groups, _ := newGroups(t, nil)
	group, err := groups.Create(ctx, citizen, "Cyclists", "")
	require.NoError(t, err)

	first, err := groups.Join(ctx, admin, group.ID)
	require.NoError(t, err)
	assert.False(t, first.AlreadyMember)

	second, err := groups.Join(ctx, admin, group.ID)
	require.NoError(t, err)
	assert.True(t, second.AlreadyMember)

	members, err := groups.Members(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, []string{citizen.UserID, admin.UserID}, []string{members[0].UserID, members[1].UserID})

	_, err = groups.Join(ctx, admin, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMessagesKeepSendOrder(t *testing.T) {
	ctx := context.Background()
	publisher := new(mockPublisher)
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("models.Message")).Return(nil)
	groups, _ := newGroups(t, publisher)
	group, err := groups.Create(ctx, citizen, "Neighbours", "")
	require.NoError(t, err)

	const n = 5
	for i := 0; i < n; i++ {
		_, err := groups.PostMessage(ctx, citizen, group.ID, fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	messages, err := groups.Messages(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, messages, n)
	for i, msg := range messages {
		assert.Equal(t, fmt.Sprintf("message %d", i), msg.Body)
		assert.Equal(t, "Cara", msg.AuthorName)
	}
	publisher.AssertNumberOfCalls(t, "Publish", n)
}

func TestPostMessageRejections(t *testing.T) {
	ctx := context.Background()
	groups, _ := newGroups(t, nil)
	group, err := groups.Create(ctx, citizen, "Neighbours", "")
	require.NoError(t, err)

	_, err = groups.PostMessage(ctx, citizen, group.ID, " \t\n")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = groups.PostMessage(ctx, citizen, "missing", "hello")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	stranger := security.Principal{UserID: "ghost", Role: models.RoleCitizen}
	_, err = groups.PostMessage(ctx, stranger, group.ID, "hello")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPublishFailureDoesNotFailPost(t *testing.T) {
	ctx := context.Background()
	publisher := new(mockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("redis down"))
	groups, _ := newGroups(t, publisher)
	group, err := groups.Create(ctx, citizen, "Neighbours", "")
	require.NoError(t, err)

	msg, err := groups.PostMessage(ctx, citizen, group.ID, "still stored")
	require.NoError(t, err)
	assert.Equal(t, group.ID, msg.GroupID)
}

func TestDeleteGroup(t *testing.T) {
	ctx := context.Background()
	groups, _ := newGroups(t, nil)
	group, err := groups.Create(ctx, citizen, "Temporary", "")
	require.NoError(t, err)

	require.NoError(t, groups.Delete(ctx, admin, group.ID))
	_, err = groups.Messages(ctx, group.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, groups.Delete(ctx, admin, group.ID), apperr.ErrNotFound)
}
