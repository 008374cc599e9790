package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"focusflow-backend/internal/models"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, s *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, start_time)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	s.ID = uuid.New()
	if s.StartTime.IsZero() {
		s.StartTime = time.Now().UTC()
	}

	return r.pool.QueryRow(ctx, query, s.ID, s.UserID, s.StartTime).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// SessionByID returns the user's session, or nil when it does not exist or
// belongs to someone else.
func (r *SessionRepo) SessionByID(ctx context.Context, userID, sessionID uuid.UUID) (*models.Session, error) {
	s := &models.Session{}
	query := `
		SELECT id, user_id, start_time, end_time, duration_seconds, focused_seconds,
		       distraction_count, is_complete, created_at, updated_at
		FROM sessions
		WHERE id = $1 AND user_id = $2`

	err := r.pool.QueryRow(ctx, query, sessionID, userID).Scan(
		&s.ID, &s.UserID, &s.StartTime, &s.EndTime, &s.DurationSeconds, &s.FocusedSeconds,
		&s.DistractionCount, &s.IsComplete, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepo) Complete(ctx context.Context, userID, sessionID uuid.UUID, req models.CompleteSessionRequest) (*models.Session, error) {
	endTime := time.Now().UTC()
	if req.EndTime != nil {
		endTime = req.EndTime.UTC()
	}

	s := &models.Session{}
	query := `
		UPDATE sessions
		SET end_time = $3,
		    duration_seconds = $4,
		    focused_seconds = $5,
		    distraction_count = $6,
		    is_complete = TRUE,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, start_time, end_time, duration_seconds, focused_seconds,
		          distraction_count, is_complete, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, sessionID, userID,
		endTime, req.DurationSeconds, req.FocusedSeconds, req.DistractionCount,
	).Scan(
		&s.ID, &s.UserID, &s.StartTime, &s.EndTime, &s.DurationSeconds, &s.FocusedSeconds,
		&s.DistractionCount, &s.IsComplete, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Session, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, start_time, end_time, duration_seconds, focused_seconds,
		       distraction_count, is_complete, created_at, updated_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY start_time DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

func (r *SessionRepo) AddEvent(ctx context.Context, e *models.SessionEvent) error {
	query := `
		INSERT INTO session_events (id, session_id, event_type, timestamp, app_name, duration_seconds, metadata_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id, event_type, timestamp) DO NOTHING
		RETURNING created_at`

	e.ID = uuid.New()
	err := r.pool.QueryRow(ctx, query,
		e.ID, e.SessionID, e.EventType, e.Timestamp, e.AppName, e.DurationSeconds, e.MetadataJSON,
	).Scan(&e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Duplicate (session_id, event_type, timestamp) — treated as already recorded.
		return nil
	}
	return err
}

// ─── Read store for the insights and coaching engines ───

func (r *SessionRepo) CompletedSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, start_time, end_time, duration_seconds, focused_seconds,
		       distraction_count, is_complete, created_at, updated_at
		FROM sessions
		WHERE user_id = $1 AND is_complete = TRUE AND start_time >= $2`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

func (r *SessionRepo) CompletedWithDuration(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, start_time, end_time, duration_seconds, focused_seconds,
		       distraction_count, is_complete, created_at, updated_at
		FROM sessions
		WHERE user_id = $1 AND is_complete = TRUE AND duration_seconds > 0`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessions(rows)
}

func (r *SessionRepo) DistractionEventsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.SessionEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.id, e.session_id, e.event_type, e.timestamp, e.app_name, e.duration_seconds, e.created_at
		FROM session_events e
		JOIN sessions s ON s.id = e.session_id
		WHERE s.user_id = $1
		  AND s.start_time >= $2
		  AND e.event_type = 'DISTRACTION'
		  AND e.app_name IS NOT NULL`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.SessionEvent, 0)
	for rows.Next() {
		var e models.SessionEvent
		if err := rows.Scan(&e.ID, &e.SessionID, &e.EventType, &e.Timestamp, &e.AppName, &e.DurationSeconds, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DailyTotalsSince groups completed sessions by calendar date. Date
// truncation is the store's job so the engine never re-derives it.
func (r *SessionRepo) DailyTotalsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.DailyTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT start_time::date::text AS day,
		       COALESCE(SUM(focused_seconds), 0),
		       COUNT(id),
		       COALESCE(SUM(distraction_count), 0)
		FROM sessions
		WHERE user_id = $1 AND is_complete = TRUE AND start_time >= $2
		GROUP BY day
		ORDER BY day`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]models.DailyTotal, 0)
	for rows.Next() {
		var t models.DailyTotal
		if err := rows.Scan(&t.Date, &t.FocusedSeconds, &t.SessionCount, &t.DistractionCount); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *SessionRepo) PeriodTotals(ctx context.Context, userID uuid.UUID, start, end time.Time) (models.PeriodTotals, error) {
	var t models.PeriodTotals
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(focused_seconds), 0),
		       COALESCE(SUM(duration_seconds), 0),
		       COUNT(id),
		       COALESCE(SUM(distraction_count), 0)
		FROM sessions
		WHERE user_id = $1 AND is_complete = TRUE AND start_time >= $2 AND start_time < $3`,
		userID, start, end,
	).Scan(&t.FocusedSeconds, &t.TotalSeconds, &t.SessionCount, &t.DistractionCount)
	return t, err
}

// SessionDaysDesc returns the distinct calendar dates with at least one
// completed session, newest first. Feeds the streak walk.
func (r *SessionRepo) SessionDaysDesc(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT start_time::date AS day
		FROM sessions
		WHERE user_id = $1 AND is_complete = TRUE
		GROUP BY day
		ORDER BY day DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := make([]time.Time, 0)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func scanSessions(rows pgx.Rows) ([]models.Session, error) {
	sessions := make([]models.Session, 0)
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.StartTime, &s.EndTime, &s.DurationSeconds, &s.FocusedSeconds,
			&s.DistractionCount, &s.IsComplete, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
