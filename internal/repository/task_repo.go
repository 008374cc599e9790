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

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

func (r *TaskRepo) Create(ctx context.Context, t *models.Task) error {
	query := `
		INSERT INTO tasks (id, user_id, project_id, title, estimate_minutes, priority, status, due_date, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	t.ID = uuid.New()
	return r.pool.QueryRow(ctx, query,
		t.ID, t.UserID, t.ProjectID, t.Title, t.EstimateMinutes, t.Priority, t.Status, t.DueDate, t.SortOrder,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepo) GetByID(ctx context.Context, userID, taskID uuid.UUID) (*models.Task, error) {
	t := &models.Task{}
	query := `
		SELECT id, user_id, project_id, title, estimate_minutes, priority, status, due_date, sort_order, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND user_id = $2`

	err := r.pool.QueryRow(ctx, query, taskID, userID).Scan(
		&t.ID, &t.UserID, &t.ProjectID, &t.Title, &t.EstimateMinutes, &t.Priority,
		&t.Status, &t.DueDate, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TaskRepo) ListByUser(ctx context.Context, userID uuid.UUID, status *int) ([]models.Task, error) {
	query := `
		SELECT id, user_id, project_id, title, estimate_minutes, priority, status, due_date, sort_order, created_at, updated_at
		FROM tasks
		WHERE user_id = $1`
	args := []interface{}{userID}
	if status != nil {
		query += " AND status = $2"
		args = append(args, *status)
	}
	query += " ORDER BY sort_order, created_at"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.ProjectID, &t.Title, &t.EstimateMinutes, &t.Priority,
			&t.Status, &t.DueDate, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepo) Update(ctx context.Context, t *models.Task) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET project_id = $3, title = $4, estimate_minutes = $5, priority = $6,
		    status = $7, due_date = $8, sort_order = $9, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`,
		t.ID, t.UserID, t.ProjectID, t.Title, t.EstimateMinutes, t.Priority, t.Status, t.DueDate, t.SortOrder,
	)
	return err
}

func (r *TaskRepo) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1 AND user_id = $2", taskID, userID)
	return err
}

// TasksDoneBetween counts tasks marked done whose last update falls inside
// the window. The coaching engine uses it to credit a session with the tasks
// finished while it ran.
func (r *TaskRepo) TasksDoneBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(id)
		FROM tasks
		WHERE user_id = $1 AND status = $2 AND updated_at >= $3 AND updated_at <= $4`,
		userID, models.TaskStatusDone, start, end,
	).Scan(&count)
	return count, err
}
