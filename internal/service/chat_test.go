package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habithero/internal/config"
	"habithero/internal/domain"
	"habithero/internal/ws"
	apperrors "habithero/pkg/errors"
)

func testChatConfig() config.ChatConfig {
	return config.ChatConfig{
		DedupWindow:  2 * time.Second,
		EditWindow:   15 * time.Minute,
		DeleteWindow: 5 * time.Minute,
		PageSize:     50,
	}
}

type chatFixture struct {
	svc      ChatService
	chatRepo *fakeChatRepo
	userRepo *fakeUserRepo
	friends  *fakeFriendRepo
	emitter  *fakeEmitter
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	userRepo := newFakeUserRepo(
		&domain.User{ID: 1, Username: "alice", IsOnline: false, LastSeenAt: time.Now()},
		&domain.User{ID: 2, Username: "bob", IsOnline: true, LastSeenAt: time.Now()},
		&domain.User{ID: 3, Username: "carol", IsOnline: false, LastSeenAt: time.Now()},
	)
	friends := newFakeFriendRepo()
	friends.accept(1, 2)

	chatRepo := newFakeChatRepo()
	emitter := &fakeEmitter{}

	return &chatFixture{
		svc:      NewChatService(chatRepo, friends, userRepo, emitter, testChatConfig(), testLogger()),
		chatRepo: chatRepo,
		userRepo: userRepo,
		friends:  friends,
		emitter:  emitter,
	}
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to online receiver", func(t *testing.T) {
		f := newChatFixture(t)

		msg, duplicate, err := f.svc.SendMessage(ctx, 1, 2, "hello")
		require.NoError(t, err)
		assert.False(t, duplicate)
		assert.Equal(t, domain.MessageStatusDelivered, msg.Status)
		assert.Len(t, f.emitter.eventsFor(2, ws.EventNewMessage), 1)
		assert.Len(t, f.chatRepo.notifications, 1)
	})

	t.Run("sent status for offline receiver", func(t *testing.T) {
		f := newChatFixture(t)
		f.friends.accept(2, 3)

		msg, _, err := f.svc.SendMessage(ctx, 2, 3, "hi carol")
		require.NoError(t, err)
		assert.Equal(t, domain.MessageStatusSent, msg.Status)
	})

	t.Run("absorbs duplicate within window", func(t *testing.T) {
		f := newChatFixture(t)

		first, _, err := f.svc.SendMessage(ctx, 1, 2, "hello")
		require.NoError(t, err)

		second, duplicate, err := f.svc.SendMessage(ctx, 1, 2, "hello")
		require.NoError(t, err)
		assert.True(t, duplicate)
		assert.Equal(t, first.ID, second.ID)

		// Повтор не рождает второго события и уведомления
		assert.Len(t, f.emitter.eventsFor(2, ws.EventNewMessage), 1)
		assert.Len(t, f.chatRepo.notifications, 1)
	})

	t.Run("rejects non-friends", func(t *testing.T) {
		f := newChatFixture(t)

		_, _, err := f.svc.SendMessage(ctx, 1, 3, "hello stranger")
		assert.ErrorIs(t, err, apperrors.ErrNotFriends)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		f := newChatFixture(t)

		_, _, err := f.svc.SendMessage(ctx, 1, 2, "   ")
		assert.ErrorIs(t, err, apperrors.ErrEmptyContent)
	})

	t.Run("rejects self-send", func(t *testing.T) {
		f := newChatFixture(t)

		_, _, err := f.svc.SendMessage(ctx, 1, 1, "me")
		assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	})
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()

	t.Run("notifies sender per message and in bulk", func(t *testing.T) {
		f := newChatFixture(t)

		_, _, err := f.svc.SendMessage(ctx, 1, 2, "one")
		require.NoError(t, err)
		_, _, err = f.svc.SendMessage(ctx, 1, 2, "two")
		require.NoError(t, err)

		ids, err := f.svc.MarkRead(ctx, 2, 1)
		require.NoError(t, err)
		assert.Len(t, ids, 2)

		assert.Len(t, f.emitter.eventsFor(1, ws.EventStatusUpdate), 2)
		assert.Len(t, f.emitter.eventsFor(1, ws.EventMessagesRead), 1)
	})

	t.Run("no events when nothing unread", func(t *testing.T) {
		f := newChatFixture(t)

		ids, err := f.svc.MarkRead(ctx, 2, 1)
		require.NoError(t, err)
		assert.Empty(t, ids)
		assert.Empty(t, f.emitter.eventsFor(1, ws.EventMessagesRead))
	})

	t.Run("idempotent", func(t *testing.T) {
		f := newChatFixture(t)

		_, _, err := f.svc.SendMessage(ctx, 1, 2, "one")
		require.NoError(t, err)

		first, err := f.svc.MarkRead(ctx, 2, 1)
		require.NoError(t, err)
		assert.Len(t, first, 1)

		second, err := f.svc.MarkRead(ctx, 2, 1)
		require.NoError(t, err)
		assert.Empty(t, second)
	})
}

func TestConfirmDelivered(t *testing.T) {
	ctx := context.Background()

	t.Run("upgrades sent to delivered", func(t *testing.T) {
		f := newChatFixture(t)
		f.friends.accept(2, 3)

		msg, _, err := f.svc.SendMessage(ctx, 2, 3, "hi")
		require.NoError(t, err)
		require.Equal(t, domain.MessageStatusSent, msg.Status)

		require.NoError(t, f.svc.ConfirmDelivered(ctx, 3, msg.ID))

		stored, err := f.chatRepo.GetMessageByID(ctx, msg.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.MessageStatusDelivered, stored.Status)
		assert.Len(t, f.emitter.eventsFor(2, ws.EventStatusUpdate), 1)
	})

	t.Run("never demotes read", func(t *testing.T) {
		f := newChatFixture(t)

		msg, _, err := f.svc.SendMessage(ctx, 1, 2, "hi")
		require.NoError(t, err)

		_, err = f.svc.MarkRead(ctx, 2, 1)
		require.NoError(t, err)

		require.NoError(t, f.svc.ConfirmDelivered(ctx, 2, msg.ID))

		stored, err := f.chatRepo.GetMessageByID(ctx, msg.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.MessageStatusRead, stored.Status)
		assert.True(t, stored.IsRead)
	})

	t.Run("only receiver may confirm", func(t *testing.T) {
		f := newChatFixture(t)

		msg, _, err := f.svc.SendMessage(ctx, 1, 2, "hi")
		require.NoError(t, err)

		err = f.svc.ConfirmDelivered(ctx, 1, msg.ID)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestEditMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("sender edits within window", func(t *testing.T) {
		f := newChatFixture(t)

		msg, _, err := f.svc.SendMessage(ctx, 1, 2, "helo")
		require.NoError(t, err)

		edited, err := f.svc.EditMessage(ctx, 1, msg.ID, "hello")
		require.NoError(t, err)
		assert.Equal(t, "hello", edited.Content)
		assert.True(t, edited.Edited)
		assert.Len(t, f.emitter.eventsFor(2, ws.EventMessageEdited), 1)
	})

	t.Run("non-sender rejected", func(t *testing.T) {
		f := newChatFixture(t)

		msg, _, err := f.svc.SendMessage(ctx, 1, 2, "hi")
		require.NoError(t, err)

		_, err = f.svc.EditMessage(ctx, 2, msg.ID, "hacked")
		assert.ErrorIs(t, err, apperrors.ErrNotMessageSender)
	})

	t.Run("expired window rejected", func(t *testing.T) {
		f := newChatFixture(t)

		msg, _, err := f.svc.SendMessage(ctx, 1, 2, "hi")
		require.NoError(t, err)

		f.chatRepo.mu.Lock()
		f.chatRepo.messages[msg.ID].Timestamp = time.Now().UTC().Add(-16 * time.Minute)
		f.chatRepo.mu.Unlock()

		_, err = f.svc.EditMessage(ctx, 1, msg.ID, "late")
		assert.ErrorIs(t, err, apperrors.ErrTimeWindowExpired)
	})
}

func TestDeleteMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("delete for everyone removes row and notifies", func(t *testing.T) {
		f := newChatFixture(t)

		msg, _, err := f.svc.SendMessage(ctx, 1, 2, "oops")
		require.NoError(t, err)

		require.NoError(t, f.svc.DeleteMessage(ctx, 1, msg.ID, domain.DeleteTypeEveryone))

		_, err = f.chatRepo.GetMessageByID(ctx, msg.ID)
		assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)
		assert.Len(t, f.emitter.eventsFor(2, ws.EventMessageDeleted), 1)
	})

	t.Run("delete for everyone expired window", func(t *testing.T) {
		f := newChatFixture(t)

		msg, _, err := f.svc.SendMessage(ctx, 1, 2, "old")
		require.NoError(t, err)

		f.chatRepo.mu.Lock()
		f.chatRepo.messages[msg.ID].Timestamp = time.Now().UTC().Add(-6 * time.Minute)
		f.chatRepo.mu.Unlock()

		err = f.svc.DeleteMessage(ctx, 1, msg.ID, domain.DeleteTypeEveryone)
		assert.ErrorIs(t, err, apperrors.ErrTimeWindowExpired)
	})

	t.Run("delete for me hides only for requester", func(t *testing.T) {
		f := newChatFixture(t)

		msg, _, err := f.svc.SendMessage(ctx, 1, 2, "hide me")
		require.NoError(t, err)

		require.NoError(t, f.svc.DeleteMessage(ctx, 2, msg.ID, domain.DeleteTypeMe))

		forReceiver, _, err := f.chatRepo.ListConversation(ctx, 2, 1, 50, 0)
		require.NoError(t, err)
		assert.Empty(t, forReceiver)

		forSender, _, err := f.chatRepo.ListConversation(ctx, 1, 2, 50, 0)
		require.NoError(t, err)
		assert.Len(t, forSender, 1)
	})

	t.Run("outsider cannot delete", func(t *testing.T) {
		f := newChatFixture(t)

		msg, _, err := f.svc.SendMessage(ctx, 1, 2, "private")
		require.NoError(t, err)

		err = f.svc.DeleteMessage(ctx, 3, msg.ID, domain.DeleteTypeMe)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)

		err = f.svc.DeleteMessage(ctx, 3, msg.ID, domain.DeleteTypeEveryone)
		assert.ErrorIs(t, err, apperrors.ErrNotMessageSender)
	})
}

func TestForwardMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("creates new message with back-reference", func(t *testing.T) {
		f := newChatFixture(t)
		f.friends.accept(2, 3)

		original, _, err := f.svc.SendMessage(ctx, 1, 2, "forward me")
		require.NoError(t, err)

		forwarded, err := f.svc.ForwardMessage(ctx, 2, original.ID, 3)
		require.NoError(t, err)
		assert.True(t, forwarded.IsForwarded)
		require.NotNil(t, forwarded.OriginalMessageID)
		assert.Equal(t, original.ID, *forwarded.OriginalMessageID)
		assert.Equal(t, original.Content, forwarded.Content)
		assert.Equal(t, int64(2), forwarded.SenderID)
		assert.Len(t, f.emitter.eventsFor(3, ws.EventNewMessage), 1)
	})

	t.Run("requires friendship with target", func(t *testing.T) {
		f := newChatFixture(t)

		original, _, err := f.svc.SendMessage(ctx, 1, 2, "secret")
		require.NoError(t, err)

		_, err = f.svc.ForwardMessage(ctx, 1, original.ID, 3)
		assert.ErrorIs(t, err, apperrors.ErrNotFriends)
	})

	t.Run("only participants may forward", func(t *testing.T) {
		f := newChatFixture(t)
		f.friends.accept(2, 3)

		original, _, err := f.svc.SendMessage(ctx, 1, 2, "secret")
		require.NoError(t, err)

		_, err = f.svc.ForwardMessage(ctx, 3, original.ID, 2)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestGetMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("first page marks conversation read", func(t *testing.T) {
		f := newChatFixture(t)

		_, _, err := f.svc.SendMessage(ctx, 1, 2, "unread")
		require.NoError(t, err)

		page, err := f.svc.GetMessages(ctx, 2, 1, 1)
		require.NoError(t, err)
		require.Len(t, page.Messages, 1)

		// Возвращённый снимок уже отражает прочтение, не догоняет его
		assert.True(t, page.Messages[0].IsRead)
		assert.Equal(t, domain.MessageStatusRead, page.Messages[0].Status)
		assert.Len(t, f.emitter.eventsFor(1, ws.EventMessagesRead), 1)
	})

	t.Run("opening chat clears its notifications", func(t *testing.T) {
		f := newChatFixture(t)

		_, _, err := f.svc.SendMessage(ctx, 1, 2, "ping")
		require.NoError(t, err)
		require.Len(t, f.chatRepo.notifications, 1)
		require.False(t, f.chatRepo.notifications[0].IsRead)

		_, err = f.svc.GetMessages(ctx, 2, 1, 1)
		require.NoError(t, err)
		assert.True(t, f.chatRepo.notifications[0].IsRead)
	})

	t.Run("requires friendship", func(t *testing.T) {
		f := newChatFixture(t)

		_, err := f.svc.GetMessages(ctx, 1, 3, 1)
		assert.ErrorIs(t, err, apperrors.ErrNotFriends)
	})
}
