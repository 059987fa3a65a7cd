// Package testutil provides an in-memory persistence gateway with the same
// uniqueness and ownership rules as the Postgres repositories, plus fault
// and interleaving hooks for exercising partial failures and races.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lib/pq"

	"socialcore/internal/counter"
	"socialcore/internal/model"
	"socialcore/internal/relation"
	"socialcore/internal/repository"
)

// Store is safe for concurrent use. Records are ordered by insertion
// sequence, which stands in for created_at.
type Store struct {
	mu  sync.Mutex
	seq int64
	now time.Time

	users         map[string]*model.User
	posts         map[string]*model.Post
	comments      map[string]*model.Comment
	likes         map[relation.Key]*model.Like
	follows       map[relation.Key]*model.Follow
	bookmarks     map[relation.Key]*model.Bookmark
	notifications map[string]*model.Notification
	order         map[string]int64

	faults map[string]error
	hooks  map[string]func()
}

func NewStore() *Store {
	return &Store{
		now:           time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		users:         make(map[string]*model.User),
		posts:         make(map[string]*model.Post),
		comments:      make(map[string]*model.Comment),
		likes:         make(map[relation.Key]*model.Like),
		follows:       make(map[relation.Key]*model.Follow),
		bookmarks:     make(map[relation.Key]*model.Bookmark),
		notifications: make(map[string]*model.Notification),
		order:         make(map[string]int64),
		faults:        make(map[string]error),
		hooks:         make(map[string]func()),
	}
}

// FailOn makes op (for example "notifications.Create") return err until
// cleared with a nil err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

// Before runs fn once, right before op executes and outside the store lock,
// so fn may itself call the store. It is used to interleave a competing
// request between a read and a write.
func (s *Store) Before(op string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks[op] = fn
}

// enter fires the hook for op and takes the lock. The caller must unlock.
func (s *Store) enter(op string) error {
	s.mu.Lock()
	hook := s.hooks[op]
	delete(s.hooks, op)
	s.mu.Unlock()

	if hook != nil {
		hook()
	}

	s.mu.Lock()
	return s.faults[op]
}

// stamp assigns the next sequence number and timestamp to id.
func (s *Store) stamp(id string) time.Time {
	s.seq++
	s.order[id] = s.seq
	return s.now.Add(time.Duration(s.seq) * time.Second)
}

// Seeding helpers

func (s *Store) AddUser(name, email string) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.User{ID: model.NewID(), Name: name, Email: email}
	u.CreatedAt = s.stamp(u.ID)
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return copyUser(u)
}

func (s *Store) AddPost(ownerID, title string) *model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &model.Post{
		ID:      model.NewID(),
		UserID:  ownerID,
		Title:   title,
		Content: title + " body",
		Status:  model.PostStatusPublished,
		LikedBy: pq.StringArray{},
	}
	p.CreatedAt = s.stamp(p.ID)
	p.UpdatedAt = p.CreatedAt
	s.posts[p.ID] = p
	return copyPost(p)
}

func (s *Store) User(id string) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return copyUser(u)
	}
	return nil
}

func (s *Store) Post(id string) *model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.posts[id]; ok {
		return copyPost(p)
	}
	return nil
}

func (s *Store) Comment(id string) *model.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.comments[id]; ok {
		return copyComment(c)
	}
	return nil
}

// DeleteUser removes a user row only, leaving relation records dangling the
// way a concurrent account deletion would.
func (s *Store) DeleteUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// DeletePost removes a post row only, leaving likes and notifications that
// point at it in place.
func (s *Store) DeletePost(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.posts, id)
}

// SetPostLikes overwrites a post's counter to simulate drift.
func (s *Store) SetPostLikes(id string, likes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.posts[id]; ok {
		p.Likes = likes
	}
}

func (s *Store) SetFollowCounts(id string, followers, following int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.FollowersCount = followers
		u.FollowingCount = following
	}
}

func (s *Store) CommentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.comments)
}

func (s *Store) LikeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.likes)
}

func (s *Store) FollowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.follows)
}

func (s *Store) BookmarkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookmarks)
}

// NotificationsFor returns the notifications of a recipient, oldest first.
func (s *Store) NotificationsFor(userID string) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sortAsc(s, out, func(n model.Notification) string { return n.ID })
	return out
}

// Repository views

func (s *Store) Users() repository.UserRepository                 { return userView{s} }
func (s *Store) Posts() repository.PostRepository                 { return postView{s} }
func (s *Store) Comments() repository.CommentRepository           { return commentView{s} }
func (s *Store) Likes() repository.LikeRepository                 { return likeView{s} }
func (s *Store) Follows() repository.FollowRepository             { return followView{s} }
func (s *Store) Bookmarks() repository.BookmarkRepository         { return bookmarkView{s} }
func (s *Store) Notifications() repository.NotificationRepository { return notificationView{s} }
func (s *Store) Counters() repository.CounterRepository           { return counterView{s} }

type userView struct{ s *Store }

func (v userView) GetByID(_ context.Context, id string) (*model.User, error) {
	s := v.s
	if err := s.enter("users.GetByID"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	out := copyUser(u)
	out.FollowersCount = max(out.FollowersCount, 0)
	out.FollowingCount = max(out.FollowingCount, 0)
	return out, nil
}

func (v userView) Exists(_ context.Context, id string) (bool, error) {
	s := v.s
	if err := s.enter("users.Exists"); err != nil {
		s.mu.Unlock()
		return false, err
	}
	defer s.mu.Unlock()
	_, ok := s.users[id]
	return ok, nil
}

type postView struct{ s *Store }

func (v postView) GetByID(_ context.Context, id string) (*model.Post, error) {
	s := v.s
	if err := s.enter("posts.GetByID"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	out := copyPost(p)
	out.Likes = max(out.Likes, 0)
	return out, nil
}

type commentView struct{ s *Store }

func (v commentView) Create(_ context.Context, c *model.Comment) error {
	s := v.s
	if err := s.enter("comments.Create"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	c.CreatedAt = s.stamp(c.ID)
	c.UpdatedAt = c.CreatedAt
	c.LikedBy = pq.StringArray{}
	s.comments[c.ID] = copyComment(c)
	return nil
}

func (v commentView) GetByID(_ context.Context, id string) (*model.Comment, error) {
	s := v.s
	if err := s.enter("comments.GetByID"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	out := copyComment(c)
	out.Likes = max(out.Likes, 0)
	return out, nil
}

func (v commentView) Update(_ context.Context, id, userID, content string, editedAt time.Time) (*model.Comment, error) {
	s := v.s
	if err := s.enter("comments.Update"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, model.ErrCommentNotFound
	}
	if c.UserID != userID {
		return nil, model.ErrNotCommentOwner
	}
	c.Content = content
	c.IsEdited = true
	at := editedAt
	c.EditedAt = &at
	c.UpdatedAt = editedAt
	return copyComment(c), nil
}

func (v commentView) DeleteReplies(_ context.Context, parentID string) (int64, error) {
	s := v.s
	if err := s.enter("comments.DeleteReplies"); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	defer s.mu.Unlock()
	var n int64
	for id, c := range s.comments {
		if c.ParentCommentID != nil && *c.ParentCommentID == parentID {
			delete(s.comments, id)
			n++
		}
	}
	return n, nil
}

func (v commentView) Delete(_ context.Context, id string) (bool, error) {
	s := v.s
	if err := s.enter("comments.Delete"); err != nil {
		s.mu.Unlock()
		return false, err
	}
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return false, nil
	}
	delete(s.comments, id)
	return true, nil
}

func (v commentView) ListTopLevel(_ context.Context, postID string, page model.Page) ([]model.CommentView, error) {
	s := v.s
	if err := s.enter("comments.ListTopLevel"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	var all []model.CommentView
	for _, c := range s.comments {
		if c.PostID == postID && c.ParentCommentID == nil {
			all = append(all, s.commentView(c))
		}
	}
	sortDesc(s, all, func(c model.CommentView) string { return c.ID })
	return paginate(all, page), nil
}

func (v commentView) CountTopLevel(_ context.Context, postID string) (int, error) {
	s := v.s
	if err := s.enter("comments.CountTopLevel"); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.comments {
		if c.PostID == postID && c.ParentCommentID == nil {
			n++
		}
	}
	return n, nil
}

func (v commentView) ListReplies(_ context.Context, parentIDs []string) ([]model.CommentView, error) {
	s := v.s
	if err := s.enter("comments.ListReplies"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	parents := make(map[string]bool, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = true
	}
	var out []model.CommentView
	for _, c := range s.comments {
		if c.ParentCommentID != nil && parents[*c.ParentCommentID] {
			out = append(out, s.commentView(c))
		}
	}
	sortAsc(s, out, func(c model.CommentView) string { return c.ID })
	return out, nil
}

func (s *Store) commentView(c *model.Comment) model.CommentView {
	view := model.CommentView{Comment: *copyComment(c)}
	view.Likes = max(view.Likes, 0)
	if u, ok := s.users[c.UserID]; ok {
		view.Author = u.Summary()
	}
	return view
}

type likeView struct{ s *Store }

func (v likeView) Exists(_ context.Context, key relation.Key) (bool, error) {
	s := v.s
	if err := s.enter("likes.Exists"); err != nil {
		s.mu.Unlock()
		return false, err
	}
	defer s.mu.Unlock()
	_, ok := s.likes[key]
	return ok, nil
}

func (v likeView) Insert(_ context.Context, key relation.Key) error {
	s := v.s
	if err := s.enter("likes.Insert"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	if _, ok := s.likes[key]; ok {
		return model.ErrRelationExists
	}
	l := &model.Like{ID: model.NewID(), UserID: key.ActorID, TargetType: key.TargetType, TargetID: key.TargetID}
	l.CreatedAt = s.stamp(l.ID)
	s.likes[key] = l
	return nil
}

func (v likeView) Delete(_ context.Context, key relation.Key) error {
	s := v.s
	if err := s.enter("likes.Delete"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	if _, ok := s.likes[key]; !ok {
		return model.ErrRelationAbsent
	}
	delete(s.likes, key)
	return nil
}

func (v likeView) CountByTarget(_ context.Context, targetType, targetID string) (int, error) {
	s := v.s
	if err := s.enter("likes.CountByTarget"); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	defer s.mu.Unlock()
	n := 0
	for k := range s.likes {
		if k.TargetType == targetType && k.TargetID == targetID {
			n++
		}
	}
	return n, nil
}

func (v likeView) ListByUser(_ context.Context, userID, targetType string, page model.Page) ([]model.Like, error) {
	s := v.s
	if err := s.enter("likes.ListByUser"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	var all []model.Like
	for _, l := range s.likes {
		if l.UserID != userID || (targetType != "" && l.TargetType != targetType) {
			continue
		}
		out := *l
		out.Target = s.likeTarget(l)
		all = append(all, out)
	}
	sortDesc(s, all, func(l model.Like) string { return l.ID })
	return paginate(all, page), nil
}

// likeTarget mirrors the LEFT JOIN onto posts or comments. Caller holds mu.
func (s *Store) likeTarget(l *model.Like) *model.LikeTarget {
	if l.TargetType == model.TargetPost {
		if p, ok := s.posts[l.TargetID]; ok {
			title := p.Title
			return &model.LikeTarget{ID: p.ID, Title: &title, Content: p.Content}
		}
		return nil
	}
	if c, ok := s.comments[l.TargetID]; ok {
		return &model.LikeTarget{ID: c.ID, Content: c.Content}
	}
	return nil
}

func (v likeView) CountByUser(_ context.Context, userID, targetType string) (int, error) {
	s := v.s
	if err := s.enter("likes.CountByUser"); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.likes {
		if l.UserID == userID && (targetType == "" || l.TargetType == targetType) {
			n++
		}
	}
	return n, nil
}

type followView struct{ s *Store }

func (v followView) Exists(_ context.Context, key relation.Key) (bool, error) {
	s := v.s
	if err := s.enter("follows.Exists"); err != nil {
		s.mu.Unlock()
		return false, err
	}
	defer s.mu.Unlock()
	_, ok := s.follows[key]
	return ok, nil
}

func (v followView) Insert(_ context.Context, key relation.Key) error {
	s := v.s
	if err := s.enter("follows.Insert"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	if key.ActorID == key.TargetID {
		return model.ErrCannotFollowSelf
	}
	if _, ok := s.follows[key]; ok {
		return model.ErrRelationExists
	}
	f := &model.Follow{ID: model.NewID(), FollowerID: key.ActorID, FollowingID: key.TargetID}
	f.CreatedAt = s.stamp(f.ID)
	s.follows[key] = f
	return nil
}

func (v followView) Delete(_ context.Context, key relation.Key) error {
	s := v.s
	if err := s.enter("follows.Delete"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	if _, ok := s.follows[key]; !ok {
		return model.ErrRelationAbsent
	}
	delete(s.follows, key)
	return nil
}

func (v followView) GetFollowers(_ context.Context, userID string, page model.Page) ([]model.UserSummary, error) {
	return v.list("follows.GetFollowers", page, func(f *model.Follow) (string, bool) {
		return f.FollowerID, f.FollowingID == userID
	})
}

func (v followView) GetFollowing(_ context.Context, userID string, page model.Page) ([]model.UserSummary, error) {
	return v.list("follows.GetFollowing", page, func(f *model.Follow) (string, bool) {
		return f.FollowingID, f.FollowerID == userID
	})
}

// list joins matching follows to users, most recent follow first.
func (v followView) list(op string, page model.Page, match func(*model.Follow) (string, bool)) ([]model.UserSummary, error) {
	s := v.s
	if err := s.enter(op); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	var matched []*model.Follow
	for _, f := range s.follows {
		if _, ok := match(f); ok {
			matched = append(matched, f)
		}
	}
	sortDesc(s, matched, func(f *model.Follow) string { return f.ID })

	var users []model.UserSummary
	for _, f := range matched {
		id, _ := match(f)
		if u, ok := s.users[id]; ok {
			users = append(users, *u.Summary())
		}
	}
	return paginate(users, page), nil
}

func (v followView) CountFollowers(_ context.Context, userID string) (int, error) {
	return v.count("follows.CountFollowers", func(f *model.Follow) bool { return f.FollowingID == userID })
}

func (v followView) CountFollowing(_ context.Context, userID string) (int, error) {
	return v.count("follows.CountFollowing", func(f *model.Follow) bool { return f.FollowerID == userID })
}

func (v followView) count(op string, match func(*model.Follow) bool) (int, error) {
	s := v.s
	if err := s.enter(op); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	defer s.mu.Unlock()
	n := 0
	for _, f := range s.follows {
		if match(f) {
			if _, ok := s.users[f.FollowerID]; !ok {
				continue
			}
			if _, ok := s.users[f.FollowingID]; !ok {
				continue
			}
			n++
		}
	}
	return n, nil
}

func (v followView) CheckFollows(_ context.Context, followerID string, followingIDs []string) (map[string]bool, error) {
	s := v.s
	if err := s.enter("follows.CheckFollows"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	out := make(map[string]bool, len(followingIDs))
	for _, id := range followingIDs {
		_, ok := s.follows[relation.Key{
			Kind:       relation.KindFollow,
			ActorID:    followerID,
			TargetType: relation.TargetUser,
			TargetID:   id,
		}]
		out[id] = ok
	}
	return out, nil
}

type bookmarkView struct{ s *Store }

func (v bookmarkView) Exists(_ context.Context, key relation.Key) (bool, error) {
	s := v.s
	if err := s.enter("bookmarks.Exists"); err != nil {
		s.mu.Unlock()
		return false, err
	}
	defer s.mu.Unlock()
	_, ok := s.bookmarks[key]
	return ok, nil
}

func (v bookmarkView) Insert(_ context.Context, key relation.Key) error {
	s := v.s
	if err := s.enter("bookmarks.Insert"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	if _, ok := s.bookmarks[key]; ok {
		return model.ErrRelationExists
	}
	b := &model.Bookmark{ID: model.NewID(), UserID: key.ActorID, PostID: key.TargetID}
	b.CreatedAt = s.stamp(b.ID)
	s.bookmarks[key] = b
	return nil
}

func (v bookmarkView) Delete(_ context.Context, key relation.Key) error {
	s := v.s
	if err := s.enter("bookmarks.Delete"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	if _, ok := s.bookmarks[key]; !ok {
		return model.ErrRelationAbsent
	}
	delete(s.bookmarks, key)
	return nil
}

func (v bookmarkView) ListByUser(_ context.Context, userID string, page model.Page) ([]model.Bookmark, error) {
	s := v.s
	if err := s.enter("bookmarks.ListByUser"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	var all []model.Bookmark
	for _, b := range s.bookmarks {
		if b.UserID != userID {
			continue
		}
		p, ok := s.posts[b.PostID]
		if !ok {
			continue
		}
		out := *b
		out.Post = copyPost(p)
		all = append(all, out)
	}
	sortDesc(s, all, func(b model.Bookmark) string { return b.ID })
	return paginate(all, page), nil
}

func (v bookmarkView) CountByUser(_ context.Context, userID string) (int, error) {
	s := v.s
	if err := s.enter("bookmarks.CountByUser"); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.bookmarks {
		if b.UserID == userID {
			n++
		}
	}
	return n, nil
}

type notificationView struct{ s *Store }

func (v notificationView) Create(_ context.Context, n *model.Notification) error {
	s := v.s
	if err := s.enter("notifications.Create"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	n.CreatedAt = s.stamp(n.ID)
	n.Read = false
	cp := *n
	s.notifications[n.ID] = &cp
	return nil
}

func (v notificationView) List(_ context.Context, userID string, unreadOnly bool, page model.Page) ([]model.Notification, error) {
	s := v.s
	if err := s.enter("notifications.List"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	var all []model.Notification
	for _, n := range s.notifications {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out := *n
		if u, ok := s.users[n.RelatedUserID]; ok {
			out.RelatedUser = u.Summary()
		}
		if n.RelatedPostID != nil {
			if p, ok := s.posts[*n.RelatedPostID]; ok {
				out.RelatedPost = &model.PostRef{ID: p.ID, Title: p.Title}
			}
		}
		if n.RelatedCommentID != nil {
			if c, ok := s.comments[*n.RelatedCommentID]; ok {
				out.RelatedComment = &model.CommentRef{ID: c.ID, Content: c.Content}
			}
		}
		all = append(all, out)
	}
	sortDesc(s, all, func(n model.Notification) string { return n.ID })
	return paginate(all, page), nil
}

func (v notificationView) Count(_ context.Context, userID string, unreadOnly bool) (int, error) {
	s := v.s
	if err := s.enter("notifications.Count"); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	defer s.mu.Unlock()
	c := 0
	for _, n := range s.notifications {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			c++
		}
	}
	return c, nil
}

func (v notificationView) MarkAsRead(_ context.Context, id, userID string) (*model.Notification, error) {
	s := v.s
	if err := s.enter("notifications.MarkAsRead"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return nil, model.ErrNotificationNotFound
	}
	n.Read = true
	out := *n
	return &out, nil
}

func (v notificationView) MarkAllAsRead(_ context.Context, userID string) (int64, error) {
	s := v.s
	if err := s.enter("notifications.MarkAllAsRead"); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	defer s.mu.Unlock()
	var c int64
	for _, n := range s.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			c++
		}
	}
	return c, nil
}

func (v notificationView) Delete(_ context.Context, id, userID string) error {
	s := v.s
	if err := s.enter("notifications.Delete"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return model.ErrNotificationNotFound
	}
	delete(s.notifications, id)
	return nil
}

type counterView struct{ s *Store }

func (v counterView) Increment(_ context.Context, adj counter.Adjustment) (bool, error) {
	s := v.s
	if err := s.enter("counters.Increment"); err != nil {
		s.mu.Unlock()
		return false, err
	}
	defer s.mu.Unlock()

	switch adj.Entity {
	case counter.EntityPost:
		p, ok := s.posts[adj.EntityID]
		if !ok {
			return false, nil
		}
		p.Likes += adj.Delta
		p.LikedBy = mutateSet(p.LikedBy, adj.Member, adj.Delta > 0)
	case counter.EntityComment:
		c, ok := s.comments[adj.EntityID]
		if !ok {
			return false, nil
		}
		c.Likes += adj.Delta
		c.LikedBy = mutateSet(c.LikedBy, adj.Member, adj.Delta > 0)
	case counter.EntityUser:
		u, ok := s.users[adj.EntityID]
		if !ok {
			return false, nil
		}
		if adj.Field == counter.FieldFollowersCount {
			u.FollowersCount += adj.Delta
		} else {
			u.FollowingCount += adj.Delta
		}
	}
	return true, nil
}

func (v counterView) Rebuild(_ context.Context) (counter.RebuildStats, error) {
	s := v.s
	if err := s.enter("counters.Rebuild"); err != nil {
		s.mu.Unlock()
		return counter.RebuildStats{}, err
	}
	defer s.mu.Unlock()

	var stats counter.RebuildStats
	likedBy := make(map[string][]string)
	var likes []*model.Like
	for _, l := range s.likes {
		likes = append(likes, l)
	}
	sortAsc(s, likes, func(l *model.Like) string { return l.ID })
	for _, l := range likes {
		likedBy[l.TargetID] = append(likedBy[l.TargetID], l.UserID)
	}

	for id, p := range s.posts {
		users := likedBy[id]
		if p.Likes != len(users) || !sameSet(p.LikedBy, users) {
			p.Likes = len(users)
			p.LikedBy = append(pq.StringArray{}, users...)
			stats.Posts++
		}
	}
	for id, c := range s.comments {
		users := likedBy[id]
		if c.Likes != len(users) || !sameSet(c.LikedBy, users) {
			c.Likes = len(users)
			c.LikedBy = append(pq.StringArray{}, users...)
			stats.Comments++
		}
	}

	followers := make(map[string]int)
	following := make(map[string]int)
	for _, f := range s.follows {
		followers[f.FollowingID]++
		following[f.FollowerID]++
	}
	for id, u := range s.users {
		if u.FollowersCount != followers[id] || u.FollowingCount != following[id] {
			u.FollowersCount = followers[id]
			u.FollowingCount = following[id]
			stats.Users++
		}
	}
	return stats, nil
}

func mutateSet(set pq.StringArray, member string, add bool) pq.StringArray {
	for i, m := range set {
		if m == member {
			if add {
				return set
			}
			return append(set[:i:i], set[i+1:]...)
		}
	}
	if add {
		return append(set, member)
	}
	return set
}

func sameSet(a pq.StringArray, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, x := range a {
		seen[x] = true
	}
	for _, x := range b {
		if !seen[x] {
			return false
		}
	}
	return true
}

func paginate[T any](items []T, page model.Page) []T {
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+page.Limit, len(items))
	return items[start:end]
}

// sortAsc orders items by insertion sequence, oldest first.
func sortAsc[T any](s *Store, items []T, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return s.order[id(items[i])] < s.order[id(items[j])]
	})
}

// sortDesc orders items by insertion sequence, newest first.
func sortDesc[T any](s *Store, items []T, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return s.order[id(items[i])] > s.order[id(items[j])]
	})
}

func copyUser(u *model.User) *model.User {
	out := *u
	return &out
}

func copyPost(p *model.Post) *model.Post {
	out := *p
	out.LikedBy = append(pq.StringArray{}, p.LikedBy...)
	return &out
}

func copyComment(c *model.Comment) *model.Comment {
	out := *c
	out.LikedBy = append(pq.StringArray{}, c.LikedBy...)
	if c.ParentCommentID != nil {
		parent := *c.ParentCommentID
		out.ParentCommentID = &parent
	}
	return &out
}
