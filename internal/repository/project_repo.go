package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"focusflow-backend/internal/models"
)

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

func (r *ProjectRepo) Create(ctx context.Context, p *models.Project) error {
	query := `
		INSERT INTO projects (id, user_id, name, color)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	p.ID = uuid.New()
	return r.pool.QueryRow(ctx, query, p.ID, p.UserID, p.Name, p.Color).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProjectRepo) GetByID(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error) {
	p := &models.Project{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, name, color, created_at, updated_at
		FROM projects
		WHERE id = $1 AND user_id = $2`, projectID, userID,
	).Scan(&p.ID, &p.UserID, &p.Name, &p.Color, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, color, created_at, updated_at
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Color, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepo) Update(ctx context.Context, p *models.Project) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE projects SET name = $3, color = $4, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`,
		p.ID, p.UserID, p.Name, p.Color,
	)
	return err
}

func (r *ProjectRepo) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM projects WHERE id = $1 AND user_id = $2", projectID, userID)
	return err
}
