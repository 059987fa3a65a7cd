package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialcore/internal/counter"
	"socialcore/internal/handler"
	"socialcore/internal/httputil"
	"socialcore/internal/mail"
	"socialcore/internal/model"
	"socialcore/internal/notify"
	"socialcore/internal/service"
	"socialcore/internal/testutil"
	transport "socialcore/internal/transport/http"
)

const testSecret = "router-test-secret"

type testServer struct {
	router http.Handler
	store  *testutil.Store
	t      *testing.T
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := testutil.NewStore()
	log := zap.NewNop()

	renderer, err := notify.NewRenderer("")
	require.NoError(t, err)
	dispatcher := notify.NewDispatcher(store.Notifications(), store.Users(), mail.NewLogMailer(log), renderer, log)
	counters := counter.NewReconciler(store.Counters(), log)

	router := transport.NewRouter(transport.RouterConfig{
		LikeHandler: handler.NewLikeHandler(
			service.NewLikeService(store.Likes(), store.Posts(), store.Comments(), counters, dispatcher, log), log),
		FollowHandler: handler.NewFollowHandler(
			service.NewFollowService(store.Follows(), store.Users(), counters, dispatcher, log), log),
		CommentHandler: handler.NewCommentHandler(
			service.NewCommentService(store.Comments(), store.Posts(), store.Users(), dispatcher, log), log),
		BookmarkHandler: handler.NewBookmarkHandler(
			service.NewBookmarkService(store.Bookmarks(), store.Posts(), log), log),
		NotificationHandler: handler.NewNotificationHandler(
			service.NewNotificationService(store.Notifications(), log), log),
		JWTSecret: testSecret,
	})

	return &testServer{router: router, store: store, t: t}
}

// do sends a request as userID ("" for anonymous) and decodes the JSON
// response into out when out is non-nil.
func (s *testServer) do(method, path, userID string, body interface{}, out interface{}) int {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": userID,
			"exp":     time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte(testSecret))
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if out != nil {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func errorCode(t *testing.T, s *testServer, method, path, userID string, body interface{}) (int, string) {
	t.Helper()
	var resp httputil.ErrorResponse
	status := s.do(method, path, userID, body, &resp)
	return status, resp.Error.Code
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)
	var body map[string]string
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "", nil, &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_RequiresAuth(t *testing.T) {
	s := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/likes/toggle"},
		{http.MethodPost, "/comments"},
		{http.MethodPost, "/users/" + model.NewID() + "/follow"},
		{http.MethodGet, "/bookmarks"},
		{http.MethodGet, "/notifications"},
	} {
		status, code := errorCode(t, s, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, route.path)
		assert.Equal(t, httputil.ErrCodeUnauthorized, code, route.path)
	}
}

func TestRouter_LikeFlow(t *testing.T) {
	s := newTestServer(t)
	alice := s.store.AddUser("Alice", "alice@example.com")
	bob := s.store.AddUser("Bob", "bob@example.com")
	post := s.store.AddPost(alice.ID, "Sunset")

	var toggled struct {
		Message string `json:"message"`
		Liked   bool   `json:"liked"`
	}
	status := s.do(http.MethodPost, "/likes/toggle", bob.ID,
		model.ToggleLikeRequest{TargetType: model.TargetPost, TargetID: post.ID}, &toggled)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, toggled.Liked)
	assert.Equal(t, "Post liked", toggled.Message)

	var count map[string]int
	s.do(http.MethodGet, "/likes/count?targetType=Post&targetId="+post.ID, "", nil, &count)
	assert.Equal(t, 1, count["count"])

	var liked map[string]bool
	s.do(http.MethodGet, "/likes/status?targetType=Post&targetId="+post.ID, bob.ID, nil, &liked)
	assert.True(t, liked["liked"])

	var list model.LikeListResponse
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/users/"+bob.ID+"/likes", "", nil, &list))
	assert.Len(t, list.Likes, 1)
	assert.Equal(t, 10, list.Pagination.Limit)
	require.NotNil(t, list.Likes[0].Target)
	assert.Equal(t, post.ID, list.Likes[0].Target.ID)

	s.do(http.MethodGet, "/users/"+bob.ID+"/likes?targetType=Comment", "", nil, &list)
	assert.Empty(t, list.Likes)

	status, _ = errorCode(t, s, http.MethodGet, "/users/"+bob.ID+"/likes?targetType=Story", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, code := errorCode(t, s, http.MethodPost, "/likes/toggle", bob.ID,
		map[string]string{"targetType": "Story", "targetId": post.ID})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, httputil.ErrCodeBadRequest, code)

	status, code = errorCode(t, s, http.MethodPost, "/likes/toggle", bob.ID,
		model.ToggleLikeRequest{TargetType: model.TargetPost, TargetID: model.NewID()})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, httputil.ErrCodeNotFound, code)
}

func TestRouter_FollowFlow(t *testing.T) {
	s := newTestServer(t)
	alice := s.store.AddUser("Alice", "alice@example.com")
	bob := s.store.AddUser("Bob", "bob@example.com")

	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/users/"+alice.ID+"/follow", bob.ID, nil, nil))

	status, code := errorCode(t, s, http.MethodPost, "/users/"+alice.ID+"/follow", bob.ID, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, httputil.ErrCodeConflict, code)

	status, _ = errorCode(t, s, http.MethodPost, "/users/"+bob.ID+"/follow", bob.ID, nil)
	assert.Equal(t, http.StatusConflict, status)

	var followers model.FollowListResponse
	s.do(http.MethodGet, "/users/"+alice.ID+"/followers", alice.ID, nil, &followers)
	require.Len(t, followers.Users, 1)
	assert.Equal(t, bob.ID, followers.Users[0].ID)

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/users/"+alice.ID+"/follow", bob.ID, nil, nil))
	status, _ = errorCode(t, s, http.MethodDelete, "/users/"+alice.ID+"/follow", bob.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouter_CommentFlow(t *testing.T) {
	s := newTestServer(t)
	alice := s.store.AddUser("Alice", "alice@example.com")
	bob := s.store.AddUser("Bob", "bob@example.com")
	post := s.store.AddPost(alice.ID, "Sunset")

	var created model.CommentView
	status := s.do(http.MethodPost, "/comments", bob.ID,
		model.CreateCommentRequest{PostID: post.ID, Content: "Nice"}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, created.IsOwner)

	var reply model.CommentView
	status = s.do(http.MethodPost, "/comments", alice.ID,
		model.CreateCommentRequest{PostID: post.ID, Content: "Thanks", ParentCommentID: &created.ID}, &reply)
	require.Equal(t, http.StatusCreated, status)

	status, code := errorCode(t, s, http.MethodPost, "/comments", bob.ID,
		model.CreateCommentRequest{PostID: post.ID, Content: "Deeper", ParentCommentID: &reply.ID})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, httputil.ErrCodeConflict, code)

	status, _ = errorCode(t, s, http.MethodPost, "/comments", bob.ID, map[string]string{"postId": post.ID})
	assert.Equal(t, http.StatusBadRequest, status)

	var thread model.CommentListResponse
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/posts/"+post.ID+"/comments", "", nil, &thread))
	require.Len(t, thread.Comments, 1)
	require.Len(t, thread.Comments[0].Replies, 1)
	assert.Equal(t, reply.ID, thread.Comments[0].Replies[0].ID)

	status, code = errorCode(t, s, http.MethodPatch, "/comments/"+created.ID, alice.ID,
		model.UpdateCommentRequest{Content: "Rewritten"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, httputil.ErrCodeForbidden, code)

	var updated model.CommentView
	assert.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/comments/"+created.ID, bob.ID,
		model.UpdateCommentRequest{Content: "Very nice"}, &updated))
	assert.True(t, updated.IsEdited)

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/comments/"+created.ID, alice.ID, nil, nil))
	assert.Zero(t, s.store.CommentCount())

	status, _ = errorCode(t, s, http.MethodGet, "/comments/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouter_CommentDeleteLostToConcurrentDelete(t *testing.T) {
	s := newTestServer(t)
	alice := s.store.AddUser("Alice", "alice@example.com")
	bob := s.store.AddUser("Bob", "bob@example.com")
	post := s.store.AddPost(alice.ID, "Sunset")

	var created model.CommentView
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/comments", bob.ID,
		model.CreateCommentRequest{PostID: post.ID, Content: "Nice"}, &created))

	// The post owner removes the comment between our lookup and our delete.
	s.store.Before("comments.Delete", func() {
		_, err := s.store.Comments().Delete(context.Background(), created.ID)
		require.NoError(t, err)
	})

	status, code := errorCode(t, s, http.MethodDelete, "/comments/"+created.ID, bob.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, httputil.ErrCodeNotFound, code)
	assert.Zero(t, s.store.CommentCount())
}

func TestRouter_BookmarkFlow(t *testing.T) {
	s := newTestServer(t)
	alice := s.store.AddUser("Alice", "alice@example.com")
	bob := s.store.AddUser("Bob", "bob@example.com")
	post := s.store.AddPost(alice.ID, "Sunset")

	assert.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/posts/"+post.ID+"/bookmark", bob.ID, nil, nil))
	status, _ := errorCode(t, s, http.MethodPost, "/posts/"+post.ID+"/bookmark", bob.ID, nil)
	assert.Equal(t, http.StatusConflict, status)

	var list model.BookmarkListResponse
	s.do(http.MethodGet, "/bookmarks?limit=5", bob.ID, nil, &list)
	require.Len(t, list.Bookmarks, 1)
	assert.Equal(t, 5, list.Pagination.Limit)

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/posts/"+post.ID+"/bookmark", bob.ID, nil, nil))
}

func TestRouter_NotificationFlow(t *testing.T) {
	s := newTestServer(t)
	alice := s.store.AddUser("Alice", "alice@example.com")
	bob := s.store.AddUser("Bob", "bob@example.com")
	carol := s.store.AddUser("Carol", "carol@example.com")

	s.do(http.MethodPost, "/users/"+alice.ID+"/follow", bob.ID, nil, nil)
	s.do(http.MethodPost, "/users/"+alice.ID+"/follow", carol.ID, nil, nil)

	var list model.NotificationListResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/notifications", alice.ID, nil, &list))
	require.Len(t, list.Notifications, 2)
	assert.Equal(t, 2, list.UnreadCount)

	var read model.Notification
	assert.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/notifications/"+list.Notifications[0].ID+"/read", alice.ID, nil, &read))
	assert.True(t, read.Read)

	status, _ := errorCode(t, s, http.MethodPatch, "/notifications/"+list.Notifications[1].ID+"/read", bob.ID, nil)
	assert.Equal(t, http.StatusNotFound, status)

	s.do(http.MethodGet, "/notifications?unread=true", alice.ID, nil, &list)
	assert.Len(t, list.Notifications, 1)

	status, _ = errorCode(t, s, http.MethodGet, "/notifications?unread=maybe", alice.ID, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var all struct {
		Updated int64 `json:"updated"`
	}
	s.do(http.MethodPatch, "/notifications/read-all", alice.ID, nil, &all)
	assert.Equal(t, int64(1), all.Updated)

	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/notifications/"+list.Notifications[0].ID, alice.ID, nil, nil))
	assert.Len(t, s.store.NotificationsFor(alice.ID), 1)
}

func TestRouter_BadPageParams(t *testing.T) {
	s := newTestServer(t)
	alice := s.store.AddUser("Alice", "alice@example.com")

	status, code := errorCode(t, s, http.MethodGet, "/users/"+alice.ID+"/followers?page=zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, httputil.ErrCodeBadRequest, code)
}
