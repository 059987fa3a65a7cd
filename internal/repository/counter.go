package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"socialcore/internal/counter"
)

type counterRepository struct {
	db *sqlx.DB
}

func NewCounterRepository(db *sqlx.DB) CounterRepository {
	return &counterRepository{db: db}
}

type counterTarget struct {
	entity counter.Entity
	field  counter.Field
	add    bool
}

// incrementQueries is the closed set of counter statements. Each one touches
// a single row, so the counter and the likedBy set move together.
// $1 entity id, $2 delta, $3 member.
var incrementQueries = map[counterTarget]string{
	{counter.EntityPost, counter.FieldLikes, true}:     likesAddQuery("posts"),
	{counter.EntityPost, counter.FieldLikes, false}:    likesRemoveQuery("posts"),
	{counter.EntityComment, counter.FieldLikes, true}:  likesAddQuery("comments"),
	{counter.EntityComment, counter.FieldLikes, false}: likesRemoveQuery("comments"),

	{counter.EntityUser, counter.FieldFollowersCount, true}:  `UPDATE users SET followers_count = followers_count + $2 WHERE id = $1`,
	{counter.EntityUser, counter.FieldFollowersCount, false}: `UPDATE users SET followers_count = followers_count + $2 WHERE id = $1`,
	{counter.EntityUser, counter.FieldFollowingCount, true}:  `UPDATE users SET following_count = following_count + $2 WHERE id = $1`,
	{counter.EntityUser, counter.FieldFollowingCount, false}: `UPDATE users SET following_count = following_count + $2 WHERE id = $1`,
}

func likesAddQuery(table string) string {
	return `UPDATE ` + table + `
		SET likes = likes + $2,
		    liked_by = CASE WHEN $3::uuid = ANY(liked_by) THEN liked_by ELSE array_append(liked_by, $3::uuid) END
		WHERE id = $1`
}

func likesRemoveQuery(table string) string {
	return `UPDATE ` + table + `
		SET likes = likes + $2,
		    liked_by = array_remove(liked_by, $3::uuid)
		WHERE id = $1`
}

func (r *counterRepository) Increment(ctx context.Context, adj counter.Adjustment) (bool, error) {
	query, ok := incrementQueries[counterTarget{adj.Entity, adj.Field, adj.Delta > 0}]
	if !ok {
		return false, fmt.Errorf("no counter %s.%s", adj.Entity, adj.Field)
	}

	args := []interface{}{adj.EntityID, adj.Delta}
	if adj.Field == counter.FieldLikes {
		args = append(args, adj.Member)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("increment %s.%s: %w", adj.Entity, adj.Field, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// Rebuild recomputes counters from relation rows and rewrites only the rows
// that drifted. Each statement stands alone; rerunning is harmless.
func (r *counterRepository) Rebuild(ctx context.Context) (counter.RebuildStats, error) {
	var stats counter.RebuildStats
	var err error

	if stats.Posts, err = r.exec(ctx, rebuildLikesQuery("posts", "Post")); err != nil {
		return stats, fmt.Errorf("rebuild post likes: %w", err)
	}
	if stats.Comments, err = r.exec(ctx, rebuildLikesQuery("comments", "Comment")); err != nil {
		return stats, fmt.Errorf("rebuild comment likes: %w", err)
	}
	if stats.Users, err = r.exec(ctx, rebuildFollowsQuery); err != nil {
		return stats, fmt.Errorf("rebuild follow counts: %w", err)
	}
	return stats, nil
}

func (r *counterRepository) exec(ctx context.Context, query string) (int64, error) {
	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func rebuildLikesQuery(table, targetType string) string {
	return `
		UPDATE ` + table + ` t
		SET likes = s.cnt, liked_by = s.users
		FROM (
			SELECT x.id,
			       COUNT(l.id)::int AS cnt,
			       COALESCE(array_agg(l.user_id ORDER BY l.created_at) FILTER (WHERE l.id IS NOT NULL), '{}'::uuid[]) AS users
			FROM ` + table + ` x
			LEFT JOIN likes l ON l.target_type = '` + targetType + `' AND l.target_id = x.id
			GROUP BY x.id
		) s
		WHERE t.id = s.id AND (t.likes <> s.cnt OR t.liked_by IS DISTINCT FROM s.users)
	`
}

const rebuildFollowsQuery = `
	UPDATE users t
	SET followers_count = s.followers, following_count = s.following
	FROM (
		SELECT u.id,
		       (SELECT COUNT(*) FROM follows f WHERE f.following_id = u.id)::int AS followers,
		       (SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.id)::int AS following
		FROM users u
	) s
	WHERE t.id = s.id AND (t.followers_count <> s.followers OR t.following_count <> s.following)
`
