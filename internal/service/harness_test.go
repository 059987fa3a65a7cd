package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialcore/internal/counter"
	"socialcore/internal/mail"
	"socialcore/internal/model"
	"socialcore/internal/notify"
	"socialcore/internal/testutil"
)

// =============================================================================
// TEST HARNESS
// =============================================================================
//
// Services are wired the way serve wires them, but on the in-memory store,
// with a recording mailer in place of SES.

type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *recordingMailer) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	for i, msg := range m.sent {
		out[i] = msg.Subject
	}
	return out
}

type harness struct {
	store    *testutil.Store
	mailer   *recordingMailer
	counters *counter.Reconciler

	likes         *LikeService
	follows       *FollowService
	comments      *CommentService
	bookmarks     *BookmarkService
	notifications *NotificationService

	alice, bob, carol *model.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := testutil.NewStore()
	log := zap.NewNop()

	renderer, err := notify.NewRenderer("https://example.com")
	require.NoError(t, err)

	mailer := &recordingMailer{}
	dispatcher := notify.NewDispatcher(store.Notifications(), store.Users(), mailer, renderer, log)
	counters := counter.NewReconciler(store.Counters(), log)

	return &harness{
		store:    store,
		mailer:   mailer,
		counters: counters,

		likes:         NewLikeService(store.Likes(), store.Posts(), store.Comments(), counters, dispatcher, log),
		follows:       NewFollowService(store.Follows(), store.Users(), counters, dispatcher, log),
		comments:      NewCommentService(store.Comments(), store.Posts(), store.Users(), dispatcher, log),
		bookmarks:     NewBookmarkService(store.Bookmarks(), store.Posts(), log),
		notifications: NewNotificationService(store.Notifications(), log),

		alice: store.AddUser("Alice", "alice@example.com"),
		bob:   store.AddUser("Bob", "bob@example.com"),
		carol: store.AddUser("Carol", "carol@example.com"),
	}
}

// comment creates a comment and fails the test on error.
func (h *harness) comment(t *testing.T, actorID, postID string, parentID *string, content string) *model.CommentView {
	t.Helper()
	view, err := h.comments.Create(context.Background(), actorID, model.CreateCommentRequest{
		PostID:          postID,
		Content:         content,
		ParentCommentID: parentID,
	})
	require.NoError(t, err)
	return view
}

func typesOf(notifications []model.Notification) []string {
	out := make([]string, len(notifications))
	for i, n := range notifications {
		out[i] = n.Type
	}
	return out
}

func longText(n int) string {
	return strings.Repeat("é", n)
}
