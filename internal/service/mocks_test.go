package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"habithero/internal/domain"
	apperrors "habithero/pkg/errors"
	"habithero/pkg/logger"
)

// Общие фейки для тестов сервисного слоя: хранилища в памяти плюс
// запись всех отправленных событий

type emittedEvent struct {
	UserID int64
	Event  string
	Data   any
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []emittedEvent
}

func (e *fakeEmitter) EmitToUser(userID int64, event string, data any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emittedEvent{UserID: userID, Event: event, Data: data})
}

func (e *fakeEmitter) eventsFor(userID int64, event string) []emittedEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []emittedEvent
	for _, ev := range e.events {
		if ev.UserID == userID && ev.Event == event {
			out = append(out, ev)
		}
	}
	return out
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int64]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[int64]*domain.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = int64(len(r.users) + 1)
	// Храним копию: последующие правки аргумента не должны менять "строку"
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return apperrors.ErrUserNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) SetPresence(ctx context.Context, userID int64, isOnline bool, lastSeenAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.IsOnline = isOnline
	user.LastSeenAt = lastSeenAt
	return nil
}

func (r *fakeUserRepo) ListIdleOnline(ctx context.Context, olderThan time.Time) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var idle []*domain.User
	for _, user := range r.users {
		if user.IsOnline && user.LastSeenAt.Before(olderThan) {
			copied := *user
			idle = append(idle, &copied)
		}
	}
	return idle, nil
}

type fakeFriendRepo struct {
	mu          sync.Mutex
	friendships map[int64]*domain.Friendship
	nextID      int64
}

func newFakeFriendRepo() *fakeFriendRepo {
	return &fakeFriendRepo{friendships: make(map[int64]*domain.Friendship), nextID: 1}
}

func (r *fakeFriendRepo) accept(userID, friendID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.friendships[r.nextID] = &domain.Friendship{
		ID: r.nextID, UserID: userID, FriendID: friendID,
		Status: domain.FriendStatusAccepted, CreatedAt: time.Now(),
	}
	r.nextID++
}

func (r *fakeFriendRepo) IsAccepted(ctx context.Context, userID, otherID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.friendships {
		if f.Status != domain.FriendStatusAccepted {
			continue
		}
		if (f.UserID == userID && f.FriendID == otherID) || (f.UserID == otherID && f.FriendID == userID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFriendRepo) ListAcceptedIDs(ctx context.Context, userID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for _, f := range r.friendships {
		if f.Status != domain.FriendStatusAccepted {
			continue
		}
		if f.UserID == userID {
			ids = append(ids, f.FriendID)
		} else if f.FriendID == userID {
			ids = append(ids, f.UserID)
		}
	}
	return ids, nil
}

func (r *fakeFriendRepo) GetBetween(ctx context.Context, userID, otherID int64) (*domain.Friendship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.friendships {
		if (f.UserID == userID && f.FriendID == otherID) || (f.UserID == otherID && f.FriendID == userID) {
			copied := *f
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeFriendRepo) GetByID(ctx context.Context, requestID int64) (*domain.Friendship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.friendships[requestID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *f
	return &copied, nil
}

func (r *fakeFriendRepo) CreateRequest(ctx context.Context, friendship *domain.Friendship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	friendship.ID = r.nextID
	r.nextID++
	copied := *friendship
	r.friendships[copied.ID] = &copied
	return nil
}

func (r *fakeFriendRepo) UpdateStatus(ctx context.Context, requestID int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.friendships[requestID]
	if !ok {
		return apperrors.ErrNotFound
	}
	f.Status = status
	return nil
}

func (r *fakeFriendRepo) Delete(ctx context.Context, requestID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.friendships, requestID)
	return nil
}

func (r *fakeFriendRepo) ListForUser(ctx context.Context, userID int64, status string) ([]*domain.Friendship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Friendship
	for _, f := range r.friendships {
		if f.Status == status && (f.UserID == userID || f.FriendID == userID) {
			copied := *f
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeChatRepo struct {
	mu            sync.Mutex
	messages      map[int64]*domain.ChatMessage
	notifications []*domain.Notification
	nextID        int64
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{messages: make(map[int64]*domain.ChatMessage), nextID: 1}
}

func (r *fakeChatRepo) CreateMessage(ctx context.Context, message *domain.ChatMessage, notification *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	message.ID = r.nextID
	r.nextID++

	// Монотонность per-sender как в SQL: максимум из now() и последнего timestamp
	ts := time.Now().UTC()
	for _, m := range r.messages {
		if m.SenderID == message.SenderID && m.Timestamp.After(ts) {
			ts = m.Timestamp
		}
	}
	message.Timestamp = ts

	copied := *message
	r.messages[copied.ID] = &copied
	if notification != nil {
		r.notifications = append(r.notifications, notification)
	}
	return nil
}

func (r *fakeChatRepo) FindRecentDuplicate(ctx context.Context, senderID, receiverID int64, content string, window time.Duration) (*domain.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().UTC().Add(-window)
	for _, m := range r.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID && m.Content == content && m.Timestamp.After(cutoff) {
			copied := *m
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeChatRepo) GetMessageByID(ctx context.Context, messageID int64) (*domain.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[messageID]
	if !ok {
		return nil, apperrors.ErrMessageNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeChatRepo) ListConversation(ctx context.Context, viewerID, otherID int64, limit, offset int) ([]*domain.ChatMessage, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ChatMessage
	for _, m := range r.messages {
		between := (m.SenderID == viewerID && m.ReceiverID == otherID) || (m.SenderID == otherID && m.ReceiverID == viewerID)
		if !between {
			continue
		}
		if m.SenderID == viewerID && m.DeletedForSender {
			continue
		}
		if m.ReceiverID == viewerID && m.DeletedForReceiver {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (r *fakeChatRepo) MarkConversationRead(ctx context.Context, senderID, receiverID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for _, m := range r.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID && !m.IsRead {
			m.IsRead = true
			m.Status = domain.MessageStatusRead
			ids = append(ids, m.ID)
		}
	}
	if len(ids) > 0 {
		for _, n := range r.notifications {
			if n.UserID == receiverID && n.Link == fmt.Sprintf("/chat/%d", senderID) {
				n.IsRead = true
			}
		}
	}
	return ids, nil
}

func (r *fakeChatRepo) MarkDelivered(ctx context.Context, messageID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[messageID]
	if !ok {
		return false, apperrors.ErrMessageNotFound
	}
	if m.Status != domain.MessageStatusSent {
		return false, nil
	}
	m.Status = domain.MessageStatusDelivered
	return true, nil
}

func (r *fakeChatRepo) UpdateContent(ctx context.Context, messageID int64, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[messageID]
	if !ok {
		return apperrors.ErrMessageNotFound
	}
	m.Content = content
	m.Edited = true
	return nil
}

func (r *fakeChatRepo) DeleteMessage(ctx context.Context, messageID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.messages, messageID)
	return nil
}

func (r *fakeChatRepo) SetDeletedFor(ctx context.Context, messageID int64, forSender bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[messageID]
	if !ok {
		return apperrors.ErrMessageNotFound
	}
	if forSender {
		m.DeletedForSender = true
	} else {
		m.DeletedForReceiver = true
	}
	return nil
}

func (r *fakeChatRepo) ListRecentChats(ctx context.Context, userID int64, limit int) ([]*domain.ChatPreview, error) {
	return nil, nil
}

func testLogger() logger.Logger {
	return logger.New("error")
}
