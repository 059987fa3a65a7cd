package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialcore/internal/mail"
	"socialcore/internal/model"
)

// =============================================================================
// MOCKS
// =============================================================================

type mockStore struct {
	createFn func(ctx context.Context, n *model.Notification) error
	created  []*model.Notification
}

func (m *mockStore) Create(ctx context.Context, n *model.Notification) error {
	if m.createFn != nil {
		if err := m.createFn(ctx, n); err != nil {
			return err
		}
	}
	m.created = append(m.created, n)
	return nil
}

type mockUsers map[string]*model.User

func (m mockUsers) GetByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, model.ErrUserNotFound
}

type mockMailer struct {
	mu     sync.Mutex
	sendFn func(ctx context.Context, msg mail.Message) error
	sent   []mail.Message
}

func (m *mockMailer) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	if m.sendFn != nil {
		return m.sendFn(ctx, msg)
	}
	return nil
}

const (
	aliceID = "0190a6f4-0000-7000-8000-00000000000a"
	bobID   = "0190a6f4-0000-7000-8000-00000000000b"
	postID  = "0190a6f4-0000-7000-8000-0000000000f1"
)

func testUsers() mockUsers {
	return mockUsers{
		aliceID: {ID: aliceID, Name: "Alice", Email: "alice@example.com"},
		bobID:   {ID: bobID, Name: "Bob", Email: "bob@example.com"},
	}
}

func newTestDispatcher(t *testing.T, store *mockStore, mailer mail.Mailer) *Dispatcher {
	t.Helper()
	renderer, err := NewRenderer("https://example.com")
	require.NoError(t, err)
	return NewDispatcher(store, testUsers(), mailer, renderer, zap.NewNop())
}

// =============================================================================
// NOTIFY TESTS
// =============================================================================

func TestDispatcher_Notify_CreatesRecordAndSendsEmail(t *testing.T) {
	store := &mockStore{}
	mailer := &mockMailer{}
	d := newTestDispatcher(t, store, mailer)
	pid := postID

	err := d.Notify(context.Background(), Notice{
		Type:        model.NotificationTypeComment,
		RecipientID: aliceID,
		ActorID:     bobID,
		PostID:      &pid,
		PostTitle:   "Hello",
		Excerpt:     "Nice post",
	})

	require.NoError(t, err)
	require.Len(t, store.created, 1)
	n := store.created[0]
	assert.Equal(t, aliceID, n.UserID)
	assert.Equal(t, bobID, n.RelatedUserID)
	assert.Equal(t, model.NotificationTypeComment, n.Type)
	assert.Equal(t, &pid, n.RelatedPostID)
	assert.NotEmpty(t, n.ID)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "alice@example.com", mailer.sent[0].To)
	assert.Equal(t, "New Comment on Your Post: Hello", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].HTML, "Nice post")
	assert.Equal(t, model.NotificationTypeComment, mailer.sent[0].Tag)
}

func TestDispatcher_Notify_SkipsSelf(t *testing.T) {
	store := &mockStore{}
	mailer := &mockMailer{}
	d := newTestDispatcher(t, store, mailer)

	err := d.Notify(context.Background(), Notice{
		Type:        model.NotificationTypeLike,
		RecipientID: aliceID,
		ActorID:     aliceID,
	})

	require.NoError(t, err)
	assert.Empty(t, store.created)
	assert.Empty(t, mailer.sent)
}

func TestDispatcher_Notify_UnknownType(t *testing.T) {
	store := &mockStore{}
	d := newTestDispatcher(t, store, &mockMailer{})

	err := d.Notify(context.Background(), Notice{Type: "mention", RecipientID: aliceID, ActorID: bobID})

	assert.Error(t, err)
	assert.Empty(t, store.created)
}

func TestDispatcher_Notify_RecordFailureIsReturned(t *testing.T) {
	store := &mockStore{
		createFn: func(ctx context.Context, n *model.Notification) error { return errors.New("insert failed") },
	}
	mailer := &mockMailer{}
	d := newTestDispatcher(t, store, mailer)

	err := d.Notify(context.Background(), Notice{
		Type:        model.NotificationTypeFollow,
		RecipientID: aliceID,
		ActorID:     bobID,
	})

	require.Error(t, err)
	assert.Equal(t, model.KindDependencyFailure, model.KindOf(err))
	assert.Empty(t, mailer.sent, "no email without a record")
}

func TestDispatcher_Notify_EmailFailureIsSwallowed(t *testing.T) {
	store := &mockStore{}
	mailer := &mockMailer{
		sendFn: func(ctx context.Context, msg mail.Message) error { return errors.New("ses throttled") },
	}
	d := newTestDispatcher(t, store, mailer)

	err := d.Notify(context.Background(), Notice{
		Type:        model.NotificationTypeFollow,
		RecipientID: aliceID,
		ActorID:     bobID,
	})

	require.NoError(t, err)
	assert.Len(t, store.created, 1)
	assert.Len(t, mailer.sent, 1, "exactly one attempt, no retry")
}

func TestDispatcher_Notify_EmailPanicIsSwallowed(t *testing.T) {
	store := &mockStore{}
	mailer := &mockMailer{
		sendFn: func(ctx context.Context, msg mail.Message) error { panic("nil client") },
	}
	d := newTestDispatcher(t, store, mailer)

	assert.NotPanics(t, func() {
		err := d.Notify(context.Background(), Notice{
			Type:        model.NotificationTypeFollow,
			RecipientID: aliceID,
			ActorID:     bobID,
		})
		assert.NoError(t, err)
	})
	assert.Len(t, store.created, 1)
}

func TestDispatcher_Notify_MissingRecipientSkipsEmailOnly(t *testing.T) {
	store := &mockStore{}
	mailer := &mockMailer{}
	d := newTestDispatcher(t, store, mailer)

	err := d.Notify(context.Background(), Notice{
		Type:        model.NotificationTypeFollow,
		RecipientID: "0190a6f4-0000-7000-8000-0000000000ff",
		ActorID:     bobID,
	})

	require.NoError(t, err)
	assert.Len(t, store.created, 1)
	assert.Empty(t, mailer.sent)
}

func TestDispatcher_Notify_RecipientWithoutEmail(t *testing.T) {
	store := &mockStore{}
	mailer := &mockMailer{}
	users := testUsers()
	users[aliceID].Email = ""
	renderer, err := NewRenderer("")
	require.NoError(t, err)
	d := NewDispatcher(store, users, mailer, renderer, zap.NewNop())

	err = d.Notify(context.Background(), Notice{
		Type:        model.NotificationTypeFollow,
		RecipientID: aliceID,
		ActorID:     bobID,
	})

	require.NoError(t, err)
	assert.Len(t, store.created, 1)
	assert.Empty(t, mailer.sent)
}

func TestDispatcher_Notify_NilMailerOnlyRecords(t *testing.T) {
	store := &mockStore{}
	d := NewDispatcher(store, testUsers(), nil, nil, zap.NewNop())

	err := d.Notify(context.Background(), Notice{
		Type:        model.NotificationTypeFollow,
		RecipientID: aliceID,
		ActorID:     bobID,
	})

	require.NoError(t, err)
	assert.Len(t, store.created, 1)
}

// =============================================================================
// BEST EFFORT TESTS
// =============================================================================

func TestBestEffort(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	assert.True(t, BestEffort(ctx, log, "ok", func(ctx context.Context) error { return nil }))
	assert.False(t, BestEffort(ctx, log, "fails", func(ctx context.Context) error { return errors.New("x") }))
	assert.False(t, BestEffort(ctx, log, "panics", func(ctx context.Context) error { panic("boom") }))
}
