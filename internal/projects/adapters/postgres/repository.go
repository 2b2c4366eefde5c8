package postgres

import (
	"context"
	"database/sql"
	"errors"

	"event-telemetry/internal/projects/core/domain"
	"event-telemetry/internal/projects/core/ports"
)

type DB interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type ProjectRepository struct {
	db DB
}

func NewProjectRepository(db DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

var _ ports.ProjectReaderPort = (*ProjectRepository)(nil)

const projectByAPIKeySQL = `
SELECT project_id, name, api_key, retention_days
FROM projects
WHERE api_key = $1`

const projectByIDSQL = `
SELECT project_id, name, api_key, retention_days
FROM projects
WHERE project_id = $1`

func (r *ProjectRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Project, error) {
	return r.scanProject(r.db.QueryRowContext(ctx, projectByAPIKeySQL, apiKey))
}

func (r *ProjectRepository) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	return r.scanProject(r.db.QueryRowContext(ctx, projectByIDSQL, projectID))
}

func (r *ProjectRepository) scanProject(row *sql.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ProjectID, &p.Name, &p.APIKey, &p.RetentionDays)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
