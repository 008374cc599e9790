package repository

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"focusflow-backend/internal/models"
)

type SocialRepo struct {
	pool *pgxpool.Pool
}

func NewSocialRepo(pool *pgxpool.Pool) *SocialRepo {
	return &SocialRepo{pool: pool}
}

// OrderPair returns the two ids in canonical (byte-ascending) order, the
// order friendship rows are stored in.
func OrderPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) > 0 {
		return b, a
	}
	return a, b
}

func (r *SocialRepo) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.Friend, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT f.id,
		       u.id, u.full_name, u.email,
		       f.status, f.created_at
		FROM friendships f
		JOIN users u ON u.id = CASE WHEN f.user_id_1 = $1 THEN f.user_id_2 ELSE f.user_id_1 END
		WHERE f.user_id_1 = $1 OR f.user_id_2 = $1
		ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	friends := []models.Friend{}
	for rows.Next() {
		var f models.Friend
		if err := rows.Scan(&f.ID, &f.UserID, &f.FullName, &f.Email, &f.Status, &f.Since); err != nil {
			return nil, err
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

// FriendshipBetween returns the row for the pair in either status, or nil.
func (r *SocialRepo) FriendshipBetween(ctx context.Context, a, b uuid.UUID) (*models.Friendship, error) {
	uid1, uid2 := OrderPair(a, b)

	f := &models.Friendship{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id_1, user_id_2, status, initiated_by, created_at
		FROM friendships
		WHERE user_id_1 = $1 AND user_id_2 = $2`, uid1, uid2).Scan(
		&f.ID, &f.UserID1, &f.UserID2, &f.Status, &f.InitiatedBy, &f.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *SocialRepo) CreateFriendship(ctx context.Context, f *models.Friendship) error {
	f.ID = uuid.New()
	f.UserID1, f.UserID2 = OrderPair(f.UserID1, f.UserID2)

	return r.pool.QueryRow(ctx, `
		INSERT INTO friendships (id, user_id_1, user_id_2, status, initiated_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		f.ID, f.UserID1, f.UserID2, f.Status, f.InitiatedBy,
	).Scan(&f.CreatedAt)
}

// AcceptFriendship flips a pending invite to accepted. Only a participant who
// did not initiate it can accept; returns false when no such row exists.
func (r *SocialRepo) AcceptFriendship(ctx context.Context, userID, friendshipID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE friendships
		SET status = $3
		WHERE id = $1
		  AND status = $4
		  AND initiated_by <> $2
		  AND (user_id_1 = $2 OR user_id_2 = $2)`,
		friendshipID, userID, models.FriendshipAccepted, models.FriendshipPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *SocialRepo) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	f, err := r.FriendshipBetween(ctx, a, b)
	if err != nil {
		return false, err
	}
	return f != nil && f.Status == models.FriendshipAccepted, nil
}

func (r *SocialRepo) ListGroups(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT g.id, g.name, g.created_by, g.created_at, COUNT(gm.user_id)
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE g.id IN (SELECT group_id FROM group_members WHERE user_id = $1)
		GROUP BY g.id
		ORDER BY g.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedBy, &g.CreatedAt, &g.MemberCount); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// CreateGroup inserts the group and its creator as the first member in one
// transaction.
func (r *SocialRepo) CreateGroup(ctx context.Context, g *models.Group) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	g.ID = uuid.New()
	err = tx.QueryRow(ctx, `
		INSERT INTO groups (id, name, created_by)
		VALUES ($1, $2, $3)
		RETURNING created_at`, g.ID, g.Name, g.CreatedBy).Scan(&g.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO group_members (id, group_id, user_id)
		VALUES ($1, $2, $3)`, uuid.New(), g.ID, g.CreatedBy)
	if err != nil {
		return err
	}

	g.MemberCount = 1
	return tx.Commit(ctx)
}

func (r *SocialRepo) IsGroupMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2
		)`, groupID, userID).Scan(&exists)
	return exists, err
}

// GroupLeaderboard sums completed-session focus per member since the cutoff,
// ordered most-focused first. Members with no sessions still appear.
func (r *SocialRepo) GroupLeaderboard(ctx context.Context, groupID uuid.UUID, since time.Time) ([]models.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.full_name,
		       COALESCE(SUM(s.focused_seconds), 0),
		       COUNT(s.id)
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		LEFT JOIN sessions s ON s.user_id = u.id AND s.is_complete = TRUE AND s.start_time >= $2
		WHERE gm.group_id = $1
		GROUP BY u.id, u.full_name
		ORDER BY 3 DESC, u.full_name ASC`, groupID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.LeaderboardEntry{}
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.FullName, &e.FocusedSeconds, &e.SessionCount); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SocialRepo) AddSocialEvent(ctx context.Context, fromUserID, toUserID uuid.UUID, eventType, message string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO social_events (id, from_user_id, to_user_id, event_type, message)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), fromUserID, toUserID, eventType, message)
	return err
}
